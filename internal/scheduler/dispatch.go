package scheduler

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hackorbit/team-service/internal/metrics"
	"github.com/hackorbit/team-service/internal/models"
	"github.com/hackorbit/team-service/internal/notify"
)

// dispatch fans out formation notifications after a successful commit.
// Deliveries run concurrently and are strictly best-effort: a failed
// recipient is recorded in the notification DLQ and never rolls back or
// re-runs the committed partition.
func (w *Worker) dispatch(ctx context.Context, h *models.Hackathon, teams []models.Team) {
	names := make(map[uuid.UUID]string, len(h.Participants))
	for _, u := range h.Participants {
		names[u.ID] = u.Username
	}

	var delivered, failed int64
	var wg sync.WaitGroup
	for _, t := range teams {
		for i, m := range t.Members {
			// Each recipient gets the names of the others, not their own.
			teammates := make([]string, 0, len(t.Members)-1)
			for j, other := range t.Members {
				if j == i {
					continue
				}
				teammates = append(teammates, names[other.UserID])
			}
			payload := notify.Payload{
				HackathonID:      h.ID,
				HackathonTitle:   h.Title,
				TeamID:           t.ID,
				TeamName:         t.Name,
				ProblemStatement: t.ProblemStatement,
				Teammates:        teammates,
			}
			wg.Add(1)
			go func(teamID, recipient uuid.UUID, p notify.Payload) {
				defer wg.Done()
				if err := w.notifier.Notify(ctx, recipient, p); err != nil {
					atomic.AddInt64(&failed, 1)
					metrics.NotifyFailed.Inc()
					body, _ := json.Marshal(p)
					rec := &models.NotificationDLQ{
						HackathonID: h.ID,
						TeamID:      teamID,
						RecipientID: recipient,
						Payload:     body,
						ErrorMsg:    err.Error(),
					}
					if derr := w.store.RecordFailedNotification(ctx, rec); derr != nil {
						log.Printf("❌ record failed notification hackathon=%s recipient=%s: %v", h.ID, recipient, derr)
					}
					log.Printf("💀 notification failed hackathon=%s team=%s recipient=%s: %v", h.ID, teamID, recipient, err)
					return
				}
				atomic.AddInt64(&delivered, 1)
				metrics.NotifyDelivered.Inc()
			}(t.ID, m.UserID, payload)
		}
	}
	wg.Wait()
	log.Printf("📨 hackathon=%s notifications delivered=%d failed=%d", h.ID, delivered, failed)
}
