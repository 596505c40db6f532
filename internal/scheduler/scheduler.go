package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/hackorbit/team-service/internal/metrics"
	"github.com/hackorbit/team-service/internal/models"
	"github.com/hackorbit/team-service/internal/notify"
)

// ErrAlreadyProcessed is returned by Store.CommitFormation when the
// hackathon is no longer in registration_open. The status flip is the
// single source of truth for "already processed", so a second matching
// of the same hackathon is a no-op, not an error.
var ErrAlreadyProcessed = errors.New("hackathon already processed")

// Store is the persistence the formation worker needs.
type Store interface {
	// DueHackathons returns active hackathons whose registration deadline
	// has passed, that are still in registration_open, and that have at
	// least one participant. Participant snapshots (id, username, email,
	// skills) are resolved on the returned records.
	DueHackathons(ctx context.Context, now time.Time) ([]models.Hackathon, error)

	// CommitFormation persists one hackathon's partition atomically:
	// teams, team members, participant back-references, and the status
	// flip to registration_closed all commit together or not at all.
	CommitFormation(ctx context.Context, hackathonID uuid.UUID, drafts []TeamDraft) ([]models.Team, error)

	// RecordFailedNotification stores a failed delivery for later retry.
	RecordFailedNotification(ctx context.Context, rec *models.NotificationDLQ) error
}

// Worker turns closed registrations into teams on a fixed cadence.
type Worker struct {
	store    Store
	notifier notify.Notifier
	interval time.Duration
	rng      *rand.Rand
	now      func() time.Time
}

func New(st Store, n notify.Notifier, interval time.Duration) *Worker {
	return &Worker{
		store:    st,
		notifier: n,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Tick(ctx); err != nil {
				log.Printf("formation worker error: %v", err)
			}
		}
	}
}

// Tick runs a single formation pass. Failures local to one hackathon do
// not abort processing of the others.
func (w *Worker) Tick(ctx context.Context) error {
	due, err := w.store.DueHackathons(ctx, w.now())
	if err != nil {
		return fmt.Errorf("scan due hackathons: %w", err)
	}
	for i := range due {
		h := &due[i]
		if err := w.process(ctx, h); err != nil {
			metrics.FormationFailures.Inc()
			log.Printf("❌ formation failed hackathon=%s (%s): %v", h.ID, h.Title, err)
		}
	}
	return nil
}

func (w *Worker) process(ctx context.Context, h *models.Hackathon) error {
	var statements []string
	if len(h.ProblemStatements) > 0 {
		if err := json.Unmarshal(h.ProblemStatements, &statements); err != nil {
			return fmt.Errorf("decode problem statements: %w", err)
		}
	}
	ids := make([]uuid.UUID, len(h.Participants))
	for i, u := range h.Participants {
		ids[i] = u.ID
	}

	part, err := BuildPartition(ids, h.MaxTeamSize, h.MinTeamSize, statements, w.rng)
	if err != nil {
		// Precondition failure: hackathon left untouched, next tick will
		// look at it again.
		log.Printf("⚠️ skipping hackathon=%s (%s): %v", h.ID, h.Title, err)
		return nil
	}
	if len(part.Teams) == 0 {
		log.Printf("⚠️ skipping hackathon=%s (%s): %d participants below min team size %d", h.ID, h.Title, len(ids), h.MinTeamSize)
		return nil
	}

	teams, err := w.store.CommitFormation(ctx, h.ID, part.Teams)
	if errors.Is(err, ErrAlreadyProcessed) {
		log.Printf("hackathon=%s already processed, skipping", h.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("commit formation: %w", err)
	}

	metrics.HackathonsProcessed.Inc()
	metrics.TeamsFormed.Add(float64(len(teams)))
	if n := len(part.Unallocated); n > 0 {
		metrics.ParticipantsUnallocated.Add(float64(n))
		log.Printf("⚠️ hackathon=%s: %d participants left unallocated: %v", h.ID, n, part.Unallocated)
	}
	log.Printf("✅ hackathon=%s (%s): formed %d teams for %d participants", h.ID, h.Title, len(teams), len(ids)-len(part.Unallocated))

	w.dispatch(ctx, h, teams)
	return nil
}
