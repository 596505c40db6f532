// Package store is the gorm-backed persistence layer behind the
// formation worker and the notification retry worker.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hackorbit/team-service/internal/models"
	"github.com/hackorbit/team-service/internal/scheduler"
	"github.com/hackorbit/team-service/internal/services"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DueHackathons finds active hackathons still in registration_open whose
// deadline has passed and that have at least one registered participant.
// Scanning on deadline <= now (rather than a trailing tick window) means a
// hackathon missed during downtime is still picked up on the next tick;
// the status flip in CommitFormation keeps this from double-processing.
//
// Participant snapshots carry only id, username, email and skills.
func (s *Store) DueHackathons(ctx context.Context, now time.Time) ([]models.Hackathon, error) {
	var hackathons []models.Hackathon
	err := s.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "email", "skills")
		}).
		Where("registration_deadline <= ? AND is_active = ? AND status = ?", now, true, models.StatusRegistrationOpen).
		Where("EXISTS (SELECT 1 FROM hackathon_participants hp WHERE hp.hackathon_id = hackathons.id)").
		Find(&hackathons).Error
	if err != nil {
		return nil, err
	}
	return hackathons, nil
}

// CommitFormation persists one hackathon's partition in a single
// transaction: team rows, team member rows, the participants'
// current_hackathon_id back-references, the status flip and the outbox
// events for search-index sync. Everything commits together or not at all.
//
// The status flip runs first and doubles as the idempotence guard: it only
// matches rows still in registration_open, so a hackathon that was already
// processed (or processed concurrently by an overlapping tick) yields
// scheduler.ErrAlreadyProcessed and no writes.
func (s *Store) CommitFormation(ctx context.Context, hackathonID uuid.UUID, drafts []scheduler.TeamDraft) ([]models.Team, error) {
	var created []models.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Hackathon{}).
			Where("id = ? AND status = ?", hackathonID, models.StatusRegistrationOpen).
			Updates(map[string]any{
				"status":       models.StatusRegistrationClosed,
				"teams_formed": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return scheduler.ErrAlreadyProcessed
		}

		for _, d := range drafts {
			team := models.Team{
				HackathonID:      hackathonID,
				Name:             d.Name,
				ProblemStatement: d.ProblemStatement,
				TeamSize:         len(d.MemberIDs),
				SubmissionStatus: models.SubmissionNotSubmitted,
			}
			if err := tx.Create(&team).Error; err != nil {
				return err
			}
			for i, userID := range d.MemberIDs {
				role := models.RoleDeveloper
				if i == 0 {
					role = models.RoleLeader
				}
				member := models.TeamMember{
					TeamID: team.ID,
					UserID: userID,
					Role:   role,
					Status: models.MemberStatusActive,
				}
				if err := tx.Create(&member).Error; err != nil {
					return err
				}
				team.Members = append(team.Members, member)
			}
			if err := tx.Model(&models.User{}).
				Where("id IN ?", d.MemberIDs).
				Update("current_hackathon_id", hackathonID).Error; err != nil {
				return err
			}
			if err := services.AddOutboxEvent(tx, "team", team.ID, "UPSERT", team); err != nil {
				return err
			}
			// Placed members got a new current_hackathon_id; reindex them.
			if err := services.AddBatchOutboxEvents(tx, "user", "UPSERT", d.MemberIDs); err != nil {
				return err
			}
			created = append(created, team)
		}

		return services.AddOutboxEvent(tx, "hackathon", hackathonID, "UPSERT", nil)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RecordFailedNotification stores one failed delivery for the retry worker.
func (s *Store) RecordFailedNotification(ctx context.Context, rec *models.NotificationDLQ) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *Store) UnresolvedNotifications(ctx context.Context, limit int) ([]models.NotificationDLQ, error) {
	var dlqs []models.NotificationDLQ
	err := s.db.WithContext(ctx).Where("resolved = false").Limit(limit).Find(&dlqs).Error
	return dlqs, err
}

func (s *Store) ResolveNotification(ctx context.Context, id int64) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.NotificationDLQ{}).
		Where("id = ?", id).
		Updates(map[string]any{"resolved": true, "retried_at": &now}).Error
}
