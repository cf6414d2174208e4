package app

import (
	"fmt"
	"strings"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/ports"
	"go.uber.org/zap"
)

var _ socket.UserStore = (*App)(nil)

// Profile returns the saved profile, or nil when none is stored.
func (a *App) Profile() (*ports.UserProfile, error) {
	return a.Store.LoadProfile()
}

// SaveProfile normalizes and stores p. The profile's state must be a known
// state key.
func (a *App) SaveProfile(p *ports.UserProfile) error {
	if p == nil {
		return fmt.Errorf("save profile: %w", ports.ErrInvalidProfile)
	}
	n := p.Normalized()
	if n.State != "" && !a.Catalog.IsState(n.State) {
		return fmt.Errorf("save profile: unknown state %q", p.State)
	}
	if err := a.Store.SaveProfile(&n); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	a.Log.Info("profile saved", zap.String("state", n.State), zap.String("occupation", n.Occupation))
	return nil
}

// ClearProfile removes the saved profile.
func (a *App) ClearProfile() error {
	return a.Store.ClearProfile()
}

// Settings returns the saved settings; zero values when unset.
func (a *App) Settings() (ports.Settings, error) {
	st, err := a.Store.LoadSettings()
	if err != nil {
		return ports.Settings{}, err
	}
	return *st, nil
}

// SaveSettings validates and stores st. An empty State selects all of India.
func (a *App) SaveSettings(st ports.Settings) error {
	st.State = strings.ToLower(strings.TrimSpace(st.State))
	if st.State != "" && !a.Catalog.IsState(st.State) {
		return fmt.Errorf("save settings: unknown state %q", st.State)
	}
	if st.Lang != "" && st.Lang != "en" && st.Lang != "hi" {
		return fmt.Errorf("save settings: unsupported language %q", st.Lang)
	}
	if err := a.Store.SaveSettings(&st); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Wipe deletes the cached corpus, profile and settings. The corpus already
// being served stays in memory until the next load.
func (a *App) Wipe() error {
	if err := a.Store.Wipe(); err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	a.Log.Info("store wiped")
	return nil
}
