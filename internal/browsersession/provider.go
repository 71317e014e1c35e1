// Package browsersession is the Browser Session Provider (spec §4.6): it
// starts an isolated browser profile via an external profile service,
// attaches chromedp to its DevTools endpoint, health-checks it, and
// guarantees teardown on every exit path — including a panic unwinding
// through the Worker Loop's per-row recover().
package browsersession

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/chromedp/chromedp"
)

// Config tunes the provider. Mirrors the teacher's small, flat config
// structs passed into its constructors rather than reading globals.
type Config struct {
	ProfileServiceURL string
	ConnectTimeout    time.Duration
	StartRetries      int
	MemoryCeilingMB   uint64
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 15 * time.Second
	}
	if c.StartRetries <= 0 {
		c.StartRetries = 3
	}
	if c.MemoryCeilingMB == 0 {
		c.MemoryCeilingMB = 1536
	}
	return c
}

// Provider opens and tears down sessions for a profile id.
type Provider struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Provider {
	return &Provider{cfg: cfg.withDefaults(), client: &http.Client{Timeout: 30 * time.Second}}
}

// Session is one attempt's browser handle. Not reused across ticks —
// one attempt is exactly one session (spec §4.6).
type Session struct {
	ctx           context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	provider      *Provider
	profileID     string
	devtoolsURL   string

	// ShouldRecycle is set by a soft memory-pressure hint; the Workflow
	// may check it between states and prefer to abort early rather than
	// run the process out of memory.
	ShouldRecycle bool
}

type startResponse struct {
	DevToolsURL string `json:"devtoolsUrl"`
}

// Open starts the named profile and returns a ready, health-checked
// session.
func (p *Provider) Open(ctx context.Context, profileID string) (*Session, error) {
	devtoolsURL, err := p.startProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("browsersession: start profile %s: %w", profileID, err)
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, p.cfg.ConnectTimeout)
	defer cancelConnect()

	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(connectCtx, devtoolsURL)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx: browserCtx, cancelAlloc: cancelAlloc, cancelBrowser: cancelBrowser,
		provider: p, profileID: profileID, devtoolsURL: devtoolsURL,
	}

	if err := s.HealthCheck(ctx); err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("browsersession: health probe failed for %s: %w", profileID, err)
	}
	return s, nil
}

func (p *Provider) startProfile(ctx context.Context, profileID string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < p.cfg.StartRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		url, err := p.requestStart(ctx, profileID)
		if err == nil {
			return url, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (p *Provider) requestStart(ctx context.Context, profileID string) (string, error) {
	body, _ := json.Marshal(map[string]string{"profileId": profileID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.ProfileServiceURL+"/start", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("profile service returned status %d", resp.StatusCode)
	}

	var out startResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode start response: %w", err)
	}
	if out.DevToolsURL == "" {
		return "", fmt.Errorf("profile service returned empty devtools url")
	}
	return out.DevToolsURL, nil
}

// HealthCheck runs a trivial DOM-free evaluation to confirm the
// DevTools connection is alive.
func (s *Session) HealthCheck(ctx context.Context) error {
	var result int
	checkCtx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	if err := chromedp.Run(checkCtx, chromedp.Evaluate("1+1", &result)); err != nil {
		return err
	}
	if result != 2 {
		return fmt.Errorf("unexpected health probe result: %d", result)
	}
	s.checkMemoryPressure()
	return nil
}

func (s *Session) checkMemoryPressure() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.Alloc/(1024*1024) >= s.provider.cfg.MemoryCeilingMB {
		s.ShouldRecycle = true
	}
}

// Context returns the session's chromedp-bound context, for callers
// (authdriver, workflow) that need to derive per-step timeouts with
// context.WithTimeout before calling Run.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Run drives the session's chromedp actions against the given context,
// which must derive from Context(). Kept thin — authdriver and workflow
// build the action lists; Session only owns the underlying connection
// and lifecycle.
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	return chromedp.Run(ctx, actions...)
}

// Close cancels the chromedp context and tells the profile service to
// stop the profile. Always safe to call more than once; always called
// via defer at the Worker Loop's attempt boundary so teardown happens
// even on panic (spec §4.6, §4.10).
func (s *Session) Close(ctx context.Context) {
	if s.cancelBrowser != nil {
		s.cancelBrowser()
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}

	stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	body, _ := json.Marshal(map[string]string{"profileId": s.profileID})
	req, err := http.NewRequestWithContext(stopCtx, http.MethodPost, s.provider.cfg.ProfileServiceURL+"/stop", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.provider.client.Do(req)
	if err == nil {
		resp.Body.Close()
	}
}
