package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrTrackingNotFound is returned when the courier has no record of
// the AWB.
var ErrTrackingNotFound = errors.New("shipment not found")

// Checkpoint is one scan event in a shipment's journey.
type Checkpoint struct {
	Status   string `json:"status"`
	Location string `json:"location"`
	Date     string `json:"date"`
}

// Tracking is the courier's view of one shipment.
type Tracking struct {
	AWB         string       `json:"awb"`
	Courier     string       `json:"courier"`
	Status      string       `json:"status"`
	ETA         string       `json:"eta,omitempty"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// Client talks to the courier aggregator's REST API. The API issues
// short-lived bearer tokens from an email/password login; the client
// holds the current token in a lease and re-logs-in at most once per
// request when the lease has gone stale.
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	password   string
	limiter    *rate.Limiter

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(baseURL, email, password string, rps int) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		email:      email,
		password:   password,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
	}
}

// tokenLeaseTTL is shorter than the API's advertised ten days so a
// lease is always refreshed before the server would reject it.
const tokenLeaseTTL = 9 * 24 * time.Hour

type loginResp struct {
	Token string `json:"token"`
}

// leaseToken returns the current token, logging in when the lease is
// missing, expired, or force-refreshed after a 401.
func (c *Client) leaseToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{"email": c.email, "password": c.password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/external/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("courier login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("courier login: unexpected status code: %d", resp.StatusCode)
	}
	var lr loginResp
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("courier login: %w", err)
	}
	if lr.Token == "" {
		return "", errors.New("courier login: empty token")
	}

	c.token = lr.Token
	c.tokenExpiry = time.Now().Add(tokenLeaseTTL)
	return c.token, nil
}

// Track fetches the current tracking state for an AWB. A stale-token
// 401 triggers exactly one forced re-login and retry.
func (c *Client) Track(ctx context.Context, awb string) (Tracking, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.leaseToken(ctx, attempt > 0)
		if err != nil {
			return Tracking{}, err
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return Tracking{}, err
		}

		u := fmt.Sprintf("%s/v1/external/courier/track/awb/%s", c.baseURL, url.PathEscape(awb))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return Tracking{}, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return Tracking{}, fmt.Errorf("track %s: %w", awb, err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var tr Tracking
			err := json.NewDecoder(resp.Body).Decode(&tr)
			resp.Body.Close()
			if err != nil {
				return Tracking{}, fmt.Errorf("track %s: %w", awb, err)
			}
			if tr.AWB == "" {
				tr.AWB = awb
			}
			return tr, nil
		case http.StatusUnauthorized:
			resp.Body.Close()
			lastErr = fmt.Errorf("track %s: token rejected", awb)
			continue
		case http.StatusNotFound:
			resp.Body.Close()
			return Tracking{}, ErrTrackingNotFound
		default:
			resp.Body.Close()
			return Tracking{}, fmt.Errorf("track %s: unexpected status code: %d", awb, resp.StatusCode)
		}
	}
	return Tracking{}, lastErr
}
