package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths under the sahayak home directory.
// All fields are pre-computed strings.
type Paths struct {
	Root string // ~/.sahayak/
	DB   string // ~/.sahayak/sahayak.db

	LogDir    string // ~/.sahayak/log/
	DaemonLog string // ~/.sahayak/log/daemon.log

	RunDir   string // ~/.sahayak/run/
	PIDFile  string // ~/.sahayak/run/daemon.pid
	AddrFile string // ~/.sahayak/run/http.addr
}

// NewPaths constructs all resolved paths from a home directory.
func NewPaths(home string) *Paths {
	return &Paths{
		Root: home,
		DB:   filepath.Join(home, "sahayak.db"),

		LogDir:    filepath.Join(home, "log"),
		DaemonLog: filepath.Join(home, "log", "daemon.log"),

		RunDir:   filepath.Join(home, "run"),
		PIDFile:  filepath.Join(home, "run", "daemon.pid"),
		AddrFile: filepath.Join(home, "run", "http.addr"),
	}
}

// EnsureDirs creates the home directory and its subdirectories. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes ephemeral runtime files (PID file and address file).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.AddrFile)
}
