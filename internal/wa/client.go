// Package wa sends WhatsApp messages through the Fonnte gateway.
package wa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hadirmu/hadirmu-server/internal/observability"
)

type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewClient(token, baseURL string) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Send posts one message to one target. Fonnte answers 200 with
// {"status": false, "reason": "..."} on application-level failure, so the
// body is checked, not just the status code.
func (c *Client) Send(ctx context.Context, target, message string) error {
	if c.token == "" {
		return fmt.Errorf("FONNTE_TOKEN kosong")
	}

	form := url.Values{}
	form.Set("target", target)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		observability.CaptureErr(err)
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("fonnte: http %d", resp.StatusCode)
	}

	var body struct {
		Status bool   `json:"status"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("fonnte: decode response: %w", err)
	}
	if !body.Status {
		if body.Reason == "" {
			body.Reason = "unknown"
		}
		return fmt.Errorf("fonnte: %s", body.Reason)
	}
	return nil
}
