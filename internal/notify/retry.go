package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hackorbit/team-service/internal/metrics"
	"github.com/hackorbit/team-service/internal/models"
)

// DLQStore is the slice of the store the retry worker needs.
type DLQStore interface {
	UnresolvedNotifications(ctx context.Context, limit int) ([]models.NotificationDLQ, error)
	ResolveNotification(ctx context.Context, id int64) error
}

// RetryWorker re-attempts failed formation notifications on a fixed cadence.
// A delivery that fails again simply stays unresolved for the next pass.
type RetryWorker struct {
	Store    DLQStore
	Notifier Notifier
	Interval time.Duration
}

func (w *RetryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RetryOnce(ctx)
		}
	}
}

func (w *RetryWorker) RetryOnce(ctx context.Context) {
	dlqs, err := w.Store.UnresolvedNotifications(ctx, 50)
	if err != nil {
		log.Printf("notification DLQ fetch error: %v", err)
		return
	}
	for _, d := range dlqs {
		log.Printf("♻️ Retrying notification dlq_id=%d hackathon=%s team=%s recipient=%s", d.ID, d.HackathonID, d.TeamID, d.RecipientID)

		var p Payload
		if err := json.Unmarshal(d.Payload, &p); err != nil {
			log.Printf("❌ unmarshal DLQ payload dlq_id=%d: %v", d.ID, err)
			continue
		}
		if err := w.Notifier.Notify(ctx, d.RecipientID, p); err != nil {
			log.Printf("❌ retry failed dlq_id=%d: %v", d.ID, err)
			continue
		}
		if err := w.Store.ResolveNotification(ctx, d.ID); err != nil {
			log.Printf("❌ resolve dlq_id=%d: %v", d.ID, err)
			continue
		}
		metrics.NotifyDelivered.Inc()
		log.Printf("✅ notification dlq_id=%d resolved", d.ID)
	}
}
