package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/corey/sahayak/internal/ports"
)

// Client connects to the sahayak daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Search sends a search request and returns the result.
func (c *Client) Search(query string, opts ports.SearchOptions) (*SearchResult, error) {
	var result SearchResult
	err := c.do(Request{
		ID:     "1",
		Method: MethodSearch,
		Params: SearchParams{Query: query, Options: opts},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Ask routes a chat query through the daemon.
func (c *Client) Ask(params AskParams) (*AskResult, error) {
	var result AskResult
	if err := c.do(Request{ID: "1", Method: MethodAsk, Params: params}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Eligible asks which schemes the profile qualifies for.
func (c *Client) Eligible(params EligibleParams) (*EligibleResult, error) {
	var result EligibleResult
	if err := c.do(Request{ID: "1", Method: MethodEligible, Params: params}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Schemes lists schemes matching opts.
func (c *Client) Schemes(opts ports.SearchOptions) (*SchemesResult, error) {
	var result SchemesResult
	err := c.do(Request{
		ID:     "1",
		Method: MethodSchemes,
		Params: SchemesParams{Options: opts},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Scheme fetches one scheme by ID or slug.
func (c *Client) Scheme(idOrSlug string) (*ports.SchemeRecord, error) {
	var result SchemesResult
	err := c.do(Request{
		ID:     "1",
		Method: MethodSchemes,
		Params: SchemesParams{ID: idOrSlug},
	}, &result)
	if err != nil {
		return nil, err
	}
	if len(result.Schemes) == 0 {
		return nil, fmt.Errorf("scheme not found: %s", idOrSlug)
	}
	return result.Schemes[0], nil
}

// Categories lists catalog categories with their scheme counts.
func (c *Client) Categories(lang string) ([]CategoryInfo, error) {
	var result CategoriesResult
	if err := c.do(Request{ID: "1", Method: MethodCategories, Params: LangParams{Lang: lang}}, &result); err != nil {
		return nil, err
	}
	return result.Categories, nil
}

// States lists states and union territories.
func (c *Client) States(lang string) ([]StateInfo, error) {
	var result StatesResult
	if err := c.do(Request{ID: "1", Method: MethodStates, Params: LangParams{Lang: lang}}, &result); err != nil {
		return nil, err
	}
	return result.States, nil
}

// Profile returns the daemon's saved profile, or nil when none is stored.
func (c *Client) Profile() (*ports.UserProfile, error) {
	return c.profile(ProfileParams{Action: ProfileGet})
}

// SaveProfile replaces the saved profile.
func (c *Client) SaveProfile(p *ports.UserProfile) error {
	_, err := c.profile(ProfileParams{Action: ProfileSet, Profile: p})
	return err
}

// ClearProfile removes the saved profile.
func (c *Client) ClearProfile() error {
	_, err := c.profile(ProfileParams{Action: ProfileClear})
	return err
}

func (c *Client) profile(params ProfileParams) (*ports.UserProfile, error) {
	var result ProfileResult
	if err := c.do(Request{ID: "1", Method: MethodProfile, Params: params}, &result); err != nil {
		return nil, err
	}
	return result.Profile, nil
}

// Settings returns the daemon's saved settings.
func (c *Client) Settings() (*ports.Settings, error) {
	var result ports.Settings
	if err := c.do(Request{ID: "1", Method: MethodSettings}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveSettings replaces the saved settings.
func (c *Client) SaveSettings(st *ports.Settings) error {
	var result ports.Settings
	return c.do(Request{ID: "1", Method: MethodSettings, Params: SettingsParams{Set: st}}, &result)
}

// Wipe deletes the daemon's cached corpus, profile and settings.
func (c *Client) Wipe() error {
	_, err := c.call(Request{ID: "1", Method: MethodWipe})
	return err
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.do(Request{ID: "1", Method: MethodHealth}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reload asks the daemon to re-read its corpus source, with an extended timeout.
func (c *Client) Reload() (*ReloadResult, error) {
	resp, err := c.callWithTimeout(Request{
		ID:     "1",
		Method: MethodReload,
	}, 60*time.Second)
	if err != nil {
		return nil, err
	}
	var result ReloadResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{
		ID:     "1",
		Method: MethodShutdown,
	})
	return err
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (c *Client) do(req Request, result any) error {
	resp, err := c.call(req)
	if err != nil {
		return err
	}
	return decodeResult(resp, result)
}

// decodeResult re-marshals the generic result into the method's typed struct.
func decodeResult(resp *Response, v any) error {
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, v); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) call(req Request) (*Response, error) {
	return c.callWithTimeout(req, 5*time.Second)
}

func (c *Client) callWithTimeout(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 4*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}
