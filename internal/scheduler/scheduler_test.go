package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hackorbit/team-service/internal/models"
	"github.com/hackorbit/team-service/internal/notify"
	"gorm.io/datatypes"
)

// fakeStore implements Store in memory with the same transactional
// semantics as the gorm implementation: CommitFormation either applies
// every write or none, and refuses hackathons no longer in
// registration_open.
type fakeStore struct {
	mu         sync.Mutex
	hackathons map[uuid.UUID]*models.Hackathon
	teams      []models.Team
	userRefs   map[uuid.UUID]uuid.UUID // user -> current hackathon
	dlq        []models.NotificationDLQ

	scanErr    error
	failCommit map[uuid.UUID]bool // force rollback per hackathon
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hackathons: make(map[uuid.UUID]*models.Hackathon),
		userRefs:   make(map[uuid.UUID]uuid.UUID),
		failCommit: make(map[uuid.UUID]bool),
	}
}

func (s *fakeStore) DueHackathons(_ context.Context, now time.Time) ([]models.Hackathon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	var due []models.Hackathon
	for _, h := range s.hackathons {
		if h.IsActive && h.Status == models.StatusRegistrationOpen &&
			!h.RegistrationDeadline.After(now) && len(h.Participants) > 0 {
			due = append(due, *h)
		}
	}
	return due, nil
}

func (s *fakeStore) CommitFormation(_ context.Context, hackathonID uuid.UUID, drafts []TeamDraft) ([]models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hackathons[hackathonID]
	if !ok {
		return nil, fmt.Errorf("hackathon %s not found", hackathonID)
	}
	if h.Status != models.StatusRegistrationOpen {
		return nil, ErrAlreadyProcessed
	}
	if s.failCommit[hackathonID] {
		// Simulated transaction failure: nothing is applied.
		return nil, errors.New("forced commit failure")
	}

	var created []models.Team
	for _, d := range drafts {
		team := models.Team{
			ID:               uuid.New(),
			HackathonID:      hackathonID,
			Name:             d.Name,
			ProblemStatement: d.ProblemStatement,
			TeamSize:         len(d.MemberIDs),
			SubmissionStatus: models.SubmissionNotSubmitted,
		}
		for i, userID := range d.MemberIDs {
			role := models.RoleDeveloper
			if i == 0 {
				role = models.RoleLeader
			}
			team.Members = append(team.Members, models.TeamMember{
				TeamID: team.ID,
				UserID: userID,
				Role:   role,
				Status: models.MemberStatusActive,
			})
			s.userRefs[userID] = hackathonID
		}
		s.teams = append(s.teams, team)
		created = append(created, team)
	}
	h.Status = models.StatusRegistrationClosed
	h.TeamsFormed = true
	return created, nil
}

func (s *fakeStore) RecordFailedNotification(_ context.Context, rec *models.NotificationDLQ) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dlq = append(s.dlq, *rec)
	return nil
}

// flakyNotifier fails for a chosen set of recipients.
type flakyNotifier struct {
	mu       sync.Mutex
	failFor  map[uuid.UUID]bool
	sent     []uuid.UUID
	payloads map[uuid.UUID]notify.Payload
}

func (n *flakyNotifier) Notify(_ context.Context, recipientID uuid.UUID, p notify.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[recipientID] {
		return errors.New("delivery refused")
	}
	n.sent = append(n.sent, recipientID)
	if n.payloads == nil {
		n.payloads = make(map[uuid.UUID]notify.Payload)
	}
	n.payloads[recipientID] = p
	return nil
}

func testWorker(t *testing.T, st Store, n notify.Notifier, now time.Time) *Worker {
	t.Helper()
	w := New(st, n, time.Minute)
	w.rng = rand.New(rand.NewSource(1))
	w.now = func() time.Time { return now }
	return w
}

func addHackathon(st *fakeStore, participants int, maxSize, minSize int, statements []string, deadline time.Time) *models.Hackathon {
	raw, _ := json.Marshal(statements)
	h := &models.Hackathon{
		ID:                   uuid.New(),
		Title:                fmt.Sprintf("hack-%d", len(st.hackathons)+1),
		RegistrationDeadline: deadline,
		IsActive:             true,
		Status:               models.StatusRegistrationOpen,
		ProblemStatements:    datatypes.JSON(raw),
		MaxTeamSize:          maxSize,
		MinTeamSize:          minSize,
	}
	if len(statements) == 0 {
		h.ProblemStatements = nil
	}
	for i := 0; i < participants; i++ {
		h.Participants = append(h.Participants, models.User{
			ID:       uuid.New(),
			Username: fmt.Sprintf("user-%d", i),
		})
	}
	st.hackathons[h.ID] = h
	return h
}

func TestTickFormsTeams(t *testing.T) {
	st := newFakeStore()
	now := time.Now()
	h := addHackathon(st, 10, 3, 2, []string{"s1"}, now.Add(-time.Second))
	notifier := &flakyNotifier{}

	w := testWorker(t, st, notifier, now)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if got := st.hackathons[h.ID].Status; got != models.StatusRegistrationClosed {
		t.Fatalf("status = %q, want registration_closed", got)
	}
	if !st.hackathons[h.ID].TeamsFormed {
		t.Fatal("teamsFormed not set")
	}
	if len(st.teams) != 4 {
		t.Fatalf("got %d teams, want 4", len(st.teams))
	}
	for _, team := range st.teams {
		leaders := 0
		for _, m := range team.Members {
			if m.Role == models.RoleLeader {
				leaders++
			}
		}
		if leaders != 1 {
			t.Fatalf("team %s has %d leaders, want 1", team.Name, leaders)
		}
		if team.TeamSize != len(team.Members) {
			t.Fatalf("team %s declared size %d but has %d members", team.Name, team.TeamSize, len(team.Members))
		}
	}
	for _, u := range h.Participants {
		if st.userRefs[u.ID] != h.ID {
			t.Fatalf("user %s back-reference not set", u.ID)
		}
	}
	if len(notifier.sent) != 10 {
		t.Fatalf("notified %d recipients, want 10", len(notifier.sent))
	}
}

func TestTickIdempotent(t *testing.T) {
	st := newFakeStore()
	now := time.Now()
	addHackathon(st, 10, 3, 2, []string{"s1"}, now.Add(-time.Second))

	w := testWorker(t, st, &flakyNotifier{}, now)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("first Tick: %v", err)
	}
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("second Tick: %v", err)
	}
	if len(st.teams) != 4 {
		t.Fatalf("got %d teams after two ticks, want 4", len(st.teams))
	}
}

func TestTickSkipsFutureDeadline(t *testing.T) {
	st := newFakeStore()
	now := time.Now()
	h := addHackathon(st, 10, 3, 2, []string{"s1"}, now.Add(time.Hour))

	w := testWorker(t, st, &flakyNotifier{}, now)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(st.teams) != 0 {
		t.Fatalf("got %d teams, want 0", len(st.teams))
	}
	if st.hackathons[h.ID].Status != models.StatusRegistrationOpen {
		t.Fatalf("status changed to %q", st.hackathons[h.ID].Status)
	}
}

func TestTickNoProblemStatements(t *testing.T) {
	st := newFakeStore()
	now := time.Now()
	h := addHackathon(st, 5, 3, 2, nil, now.Add(-time.Second))
	notifier := &flakyNotifier{}

	w := testWorker(t, st, notifier, now)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(st.teams) != 0 {
		t.Fatalf("got %d teams, want 0", len(st.teams))
	}
	if st.hackathons[h.ID].Status != models.StatusRegistrationOpen {
		t.Fatalf("status = %q, want registration_open", st.hackathons[h.ID].Status)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("notifier called %d times, want 0", len(notifier.sent))
	}
}

func TestTickTooFewParticipants(t *testing.T) {
	st := newFakeStore()
	now := time.Now()
	h := addHackathon(st, 2, 4, 3, []string{"s1"}, now.Add(-time.Second))

	w := testWorker(t, st, &flakyNotifier{}, now)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(st.teams) != 0 {
		t.Fatalf("got %d teams, want 0", len(st.teams))
	}
	if st.hackathons[h.ID].TeamsFormed {
		t.Fatal("teamsFormed set even though no teams were formed")
	}
}

func TestCommitFailureLeavesHackathonOpen(t *testing.T) {
	st := newFakeStore()
	now := time.Now()
	h := addHackathon(st, 10, 3, 2, []string{"s1"}, now.Add(-time.Second))
	st.failCommit[h.ID] = true
	notifier := &flakyNotifier{}

	w := testWorker(t, st, notifier, now)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(st.teams) != 0 {
		t.Fatalf("got %d teams after rollback, want 0", len(st.teams))
	}
	if st.hackathons[h.ID].Status != models.StatusRegistrationOpen {
		t.Fatalf("status = %q, want registration_open", st.hackathons[h.ID].Status)
	}
	if len(notifier.sent) != 0 {
		t.Fatal("notifications sent despite failed commit")
	}

	// The hackathon stays eligible; a later tick picks it up.
	st.failCommit[h.ID] = false
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("retry Tick: %v", err)
	}
	if len(st.teams) != 4 {
		t.Fatalf("got %d teams on retry, want 4", len(st.teams))
	}
}

func TestTickIsolatesHackathonFailures(t *testing.T) {
	st := newFakeStore()
	now := time.Now()
	bad := addHackathon(st, 6, 3, 2, []string{"s1"}, now.Add(-time.Second))
	good := addHackathon(st, 6, 3, 2, []string{"s1"}, now.Add(-time.Second))
	st.failCommit[bad.ID] = true

	w := testWorker(t, st, &flakyNotifier{}, now)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if st.hackathons[good.ID].Status != models.StatusRegistrationClosed {
		t.Fatal("healthy hackathon was not processed")
	}
	if st.hackathons[bad.ID].Status != models.StatusRegistrationOpen {
		t.Fatal("failed hackathon should stay in registration_open")
	}
}

func TestDispatchRecordsPartialFailures(t *testing.T) {
	st := newFakeStore()
	now := time.Now()
	h := addHackathon(st, 5, 5, 2, []string{"s1"}, now.Add(-time.Second))
	notifier := &flakyNotifier{failFor: map[uuid.UUID]bool{
		h.Participants[0].ID: true,
		h.Participants[1].ID: true,
	}}

	w := testWorker(t, st, notifier, now)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	// Partition committed in full despite two failed deliveries.
	if len(st.teams) != 1 || len(st.teams[0].Members) != 5 {
		t.Fatalf("team not fully persisted: %+v", st.teams)
	}
	if len(notifier.sent) != 3 {
		t.Fatalf("delivered %d, want 3", len(notifier.sent))
	}
	if len(st.dlq) != 2 {
		t.Fatalf("dlq has %d records, want 2", len(st.dlq))
	}
	for _, rec := range st.dlq {
		if rec.HackathonID != h.ID {
			t.Fatalf("dlq record has hackathon %s, want %s", rec.HackathonID, h.ID)
		}
		var p notify.Payload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			t.Fatalf("dlq payload not decodable: %v", err)
		}
		if p.TeamName == "" {
			t.Fatal("dlq payload missing team name")
		}
	}
}

func TestDispatchExcludesRecipientFromTeammates(t *testing.T) {
	st := newFakeStore()
	now := time.Now()
	h := addHackathon(st, 5, 5, 2, []string{"s1"}, now.Add(-time.Second))
	names := make(map[uuid.UUID]string, len(h.Participants))
	for _, u := range h.Participants {
		names[u.ID] = u.Username
	}
	notifier := &flakyNotifier{}

	w := testWorker(t, st, notifier, now)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if len(notifier.payloads) != 5 {
		t.Fatalf("got %d payloads, want 5", len(notifier.payloads))
	}
	for recipient, p := range notifier.payloads {
		if len(p.Teammates) != 4 {
			t.Fatalf("recipient %s got %d teammates, want 4", recipient, len(p.Teammates))
		}
		for _, name := range p.Teammates {
			if name == names[recipient] {
				t.Fatalf("recipient %s listed among their own teammates", names[recipient])
			}
		}
	}
}

func TestTickScanError(t *testing.T) {
	st := newFakeStore()
	st.scanErr = errors.New("store unreachable")

	w := testWorker(t, st, &flakyNotifier{}, time.Now())
	if err := w.Tick(context.Background()); err == nil {
		t.Fatal("expected scan error to surface")
	}
}
