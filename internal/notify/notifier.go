package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Payload is what a participant receives when their team is formed.
type Payload struct {
	HackathonID      uuid.UUID `json:"hackathon_id"`
	HackathonTitle   string    `json:"hackathon_title"`
	TeamID           uuid.UUID `json:"team_id"`
	TeamName         string    `json:"team_name"`
	ProblemStatement string    `json:"problem_statement"`
	Teammates        []string  `json:"teammates"`
}

// Notifier is the external delivery channel. Delivery failures are the
// caller's problem to record; implementations just report them.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, p Payload) error
}

// WebhookNotifier POSTs each notification to a configured endpoint.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, recipientID uuid.UUID, p Payload) error {
	body, err := json.Marshal(map[string]any{
		"recipient_id": recipientID,
		"notification": p,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier is the local-dev fallback when no webhook is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, recipientID uuid.UUID, p Payload) error {
	log.Printf("📣 notify user=%s team=%q hackathon=%q statement=%q", recipientID, p.TeamName, p.HackathonTitle, p.ProblemStatement)
	return nil
}
