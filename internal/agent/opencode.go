package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// OpenCodeClient talks to an OpenCode server (opencode serve --port 3000).
// Every Submit creates a fresh session so agents never see each other's
// context; the server owns all conversation state beyond that.
type OpenCodeClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

type messagePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messageOptions struct {
	Model string `json:"model"`
}

type messageRequest struct {
	Parts   []messagePart   `json:"parts"`
	Options *messageOptions `json:"options,omitempty"`
}

type messageResponse struct {
	Parts []messagePart `json:"parts"`
}

func NewOpenCodeClient(baseURL string, timeout time.Duration) *OpenCodeClient {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	if timeout <= 0 {
		// Drafting a full document can take minutes on a local model.
		timeout = 10 * time.Minute
	}
	return &OpenCodeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Submit creates a session, posts the prompt, and returns the concatenated
// text parts of the reply.
func (c *OpenCodeClient) Submit(ctx context.Context, prompt, model string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	sessionID, err := c.createSession(ctx, model)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	reqBody := messageRequest{
		Parts: []messagePart{{Type: "text", Text: prompt}},
	}
	if model != "" {
		reqBody.Options = &messageOptions{Model: model}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/session/%s/message", c.baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("message request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("opencode returned status %d", resp.StatusCode)
	}

	var msg messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return "", fmt.Errorf("failed to decode message response: %w", err)
	}

	var b strings.Builder
	for _, part := range msg.Parts {
		if part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

func (c *OpenCodeClient) createSession(ctx context.Context, model string) (string, error) {
	payload := map[string]any{}
	if model != "" {
		payload["model"] = model
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/session", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("opencode returned status %d", resp.StatusCode)
	}

	var session struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}
	if session.ID == "" {
		return "", fmt.Errorf("session response missing id")
	}
	return session.ID, nil
}

// IsAvailable checks that the server answers at all. Used once at startup so
// a dead server fails the run before the first prompt is built.
func (c *OpenCodeClient) IsAvailable(ctx context.Context) error {
	req, _ := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/session", nil)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("opencode not available: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("opencode returned status %d", resp.StatusCode)
	}
	return nil
}
