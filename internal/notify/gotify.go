package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Gotify pushes notifications to a Gotify server.
type Gotify struct {
	url    string
	token  string
	client *http.Client
}

// NewGotify creates a new Gotify client for the given base URL and app token.
func NewGotify(url, token string) *Gotify {
	return &Gotify{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Push sends one message to the Gotify /message endpoint.
func (g *Gotify) Push(ctx context.Context, title, body string, priority int) error {
	reqBody := map[string]any{
		"title":    title,
		"message":  body,
		"priority": priority,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.url+"/message", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gotify-Key", g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gotify api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gotify api status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
