package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// NotifyClient delivers best-effort user notifications through the
// notification service. Every failure is logged and swallowed: a missed
// notification must never roll back the state change that triggered it.
type NotifyClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewNotifyClient(baseURL, token string) *NotifyClient {
	return &NotifyClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *NotifyClient) PostBlocked(ctx context.Context, userID, postID string) {
	c.send(ctx, map[string]interface{}{
		"type":    "post_blocked",
		"user_id": userID,
		"post_id": postID,
	})
}

func (c *NotifyClient) ChallengeCreated(ctx context.Context, challengeID, title string) {
	c.send(ctx, map[string]interface{}{
		"type":         "new_challenge",
		"challenge_id": challengeID,
		"title":        title,
		"broadcast":    true,
	})
}

func (c *NotifyClient) send(ctx context.Context, payload map[string]interface{}) {
	if c.BaseURL == "" {
		return
	}
	jsonData, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/v1/notifications", c.BaseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		log.Printf("❌ [Notify] failed to build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("❌ [Notify] failed to call notification service: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("❌ [Notify] notification service returned %d: %s", resp.StatusCode, string(body))
	}
}
