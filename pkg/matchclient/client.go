// Package matchclient is the team-side helper for watching match
// status. It polls the server in the background so the robot's main
// loop can block on the accessors.
package matchclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Poll at 200ms normally, but 50ms while waiting for match start.
const (
	pollIntervalSlow     = 200 * time.Millisecond
	pollIntervalPrematch = 50 * time.Millisecond
)

// Status is the match status payload served by the /match endpoint.
type Status struct {
	Mode       string  `json:"mode"`
	Match      int     `json:"match"`
	MatchStart bool    `json:"matchStart"`
	TimeRemain float64 `json:"timeRemain"`
	InMatch    bool    `json:"inMatch"`
	Team       int     `json:"team"`
}

// Client polls the server for match status on a background goroutine.
type Client struct {
	server  string
	team    int
	authKey string
	verbose bool

	httpClient *http.Client

	mu       sync.Mutex
	status   *Status
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a polling client. server includes scheme and port. If
// authKey is empty the team number is used, matching LAB/HOME mode
// authentication.
func New(server string, team int, authKey string, verbose bool) *Client {
	if authKey == "" {
		authKey = strconv.Itoa(team)
	}
	return &Client{
		server:  server,
		team:    team,
		authKey: authKey,
		verbose: verbose,
		httpClient: &http.Client{
			Timeout: 2 * time.Second,
		},
		interval: pollIntervalSlow,
	}
}

// Start launches the background poll loop. Call Stop when done.
func (c *Client) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx)
}

// Stop ends the poll loop and waits for it to exit.
func (c *Client) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)
	for {
		c.poll(ctx)

		if !c.AuthOK() && c.IsConnected() {
			log.Printf("matchclient: authentication error for team %d", c.team)
		}

		c.mu.Lock()
		interval := c.interval
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// poll fetches /match once and updates the cached status.
func (c *Client) poll(ctx context.Context) {
	url := fmt.Sprintf("%s/match?auth=%s", c.server, c.authKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.setStatus(nil)
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setStatus(nil)
		if c.verbose {
			log.Printf("matchclient: poll failed: %v", err)
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.setStatus(nil)
		if c.verbose {
			log.Printf("matchclient: match endpoint returned %d", resp.StatusCode)
		}
		return
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		c.setStatus(nil)
		return
	}

	c.mu.Lock()
	wasConnected := c.status != nil
	c.status = &status

	// Accelerate polling while waiting for an imminent match start.
	if status.InMatch && !status.MatchStart {
		c.interval = pollIntervalPrematch
	} else {
		c.interval = pollIntervalSlow
	}
	c.mu.Unlock()

	if !wasConnected {
		log.Printf("matchclient: connected to %s", c.server)
	}
}

func (c *Client) setStatus(s *Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// snapshot returns the last polled status, nil while disconnected.
func (c *Client) snapshot() *Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// IsConnected reports whether the last poll succeeded.
func (c *Client) IsConnected() bool {
	return c.snapshot() != nil
}

// IsMatchStarted reports whether the match has started. False while
// disconnected.
func (c *Client) IsMatchStarted() bool {
	s := c.snapshot()
	return s != nil && s.MatchStart
}

// IsMatchFinished reports whether the match has started and run out of
// time. False while disconnected.
func (c *Client) IsMatchFinished() bool {
	s := c.snapshot()
	return s != nil && s.MatchStart && s.TimeRemain < 0
}

// IsInMatch reports whether this team is in the current or upcoming
// match. False while disconnected.
func (c *Client) IsInMatch() bool {
	s := c.snapshot()
	return s != nil && s.InMatch
}

// AuthOK reports whether the server resolved our auth to our team
// number. False while disconnected.
func (c *Client) AuthOK() bool {
	s := c.snapshot()
	return s != nil && s.Team == c.team
}

// WaitForConnection blocks until the server responds or ctx ends.
func (c *Client) WaitForConnection(ctx context.Context) error {
	return c.waitFor(ctx, c.IsConnected)
}

// WaitForMatch blocks until a match including this team has started or
// ctx ends.
func (c *Client) WaitForMatch(ctx context.Context) error {
	return c.waitFor(ctx, func() bool {
		return c.IsInMatch() && c.IsMatchStarted()
	})
}

func (c *Client) waitFor(ctx context.Context, cond func() bool) error {
	// No reason to re-check faster than the polls go out.
	ticker := time.NewTicker(pollIntervalPrematch)
	defer ticker.Stop()
	for {
		if cond() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
