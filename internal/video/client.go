// Package video wraps the external call-provisioning provider: call
// creation, go-live, teardown, and user token issuance. Everything
// real-time (media, recording, participant state) lives provider-side.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rahulxcodes/Demo-Webinars-sub000/config"
)

// Client is the call-provisioning collaborator consumed by the webinar
// lifecycle service.
type Client interface {
	// CreateCall gets or creates the provider call for a webinar.
	CreateCall(ctx context.Context, params CreateCallParams) (*CallInfo, error)
	// StartCall transitions the call to a live broadcast state.
	StartCall(ctx context.Context, callID string) error
	// EndCall stops the broadcast and tears the call down.
	EndCall(ctx context.Context, callID string) error
	// IssueUserToken returns a short-lived signed credential scoping a
	// user to join calls (iss/sub/iat/exp claims).
	IssueUserToken(userID string) (string, error)
}

// CreateCallParams describes the call to provision.
type CreateCallParams struct {
	CallID          string    `json:"id"`
	CreatedBy       string    `json:"created_by"`
	Title           string    `json:"title"`
	StartsAt        time.Time `json:"starts_at"`
	MaxParticipants int       `json:"max_participants"`
}

// CallInfo is the provider's view of a call.
type CallInfo struct {
	CallID    string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Live      bool      `json:"live"`
}

type httpClient struct {
	baseURL  string
	apiKey   string
	secret   string
	tokenTTL time.Duration
	client   *http.Client
}

// NewClient creates a provider client from config.
func NewClient(cfg config.VideoConfig) Client {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := time.Duration(cfg.TokenTTLSec) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &httpClient{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		secret:   cfg.APISecret,
		tokenTTL: ttl,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) CreateCall(ctx context.Context, params CreateCallParams) (*CallInfo, error) {
	var info CallInfo
	if err := c.post(ctx, "/calls", params, &info); err != nil {
		return nil, fmt.Errorf("create call: %w", err)
	}
	return &info, nil
}

func (c *httpClient) StartCall(ctx context.Context, callID string) error {
	if err := c.post(ctx, "/calls/"+callID+"/go_live", nil, nil); err != nil {
		return fmt.Errorf("start call: %w", err)
	}
	return nil
}

func (c *httpClient) EndCall(ctx context.Context, callID string) error {
	if err := c.post(ctx, "/calls/"+callID+"/end", nil, nil); err != nil {
		return fmt.Errorf("end call: %w", err)
	}
	return nil
}

func (c *httpClient) IssueUserToken(userID string) (string, error) {
	return SignUserToken(c.apiKey, c.secret, userID, c.tokenTTL)
}

func (c *httpClient) post(ctx context.Context, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	serverToken, err := SignUserToken(c.apiKey, c.secret, "server", c.tokenTTL)
	if err != nil {
		return fmt.Errorf("sign server token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+serverToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("provider status %d: %s", resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
