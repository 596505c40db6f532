package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hackorbit/team-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRegistrationClosed = errors.New("hackathon is not open for registration")
	ErrAlreadyInHackathon = errors.New("user is already placed in a hackathon")
)

// RegisterParticipant adds a user to a hackathon's participant set.
// Registration is refused once the user has been placed into a team of
// any hackathon (CurrentHackathonID set) or once registration closed.
func RegisterParticipant(db *gorm.DB, hackathonID, userID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var h models.Hackathon
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&h, "id = ?", hackathonID).Error; err != nil {
			return err
		}
		if !h.IsActive || h.Status != models.StatusRegistrationOpen {
			return ErrRegistrationClosed
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		if user.CurrentHackathonID != nil {
			return ErrAlreadyInHackathon
		}

		if err := tx.Model(&h).Association("Participants").Append(&user); err != nil {
			return err
		}
		if err := AddOutboxEvent(tx, "hackathon", h.ID, "UPSERT", h); err != nil {
			return err
		}

		log.Printf("📤 user %s registered for hackathon %q", user.Username, h.Title)
		return nil
	})
}

// CreateHackathon validates and inserts a new hackathon.
func CreateHackathon(db *gorm.DB, h *models.Hackathon) error {
	if h.MinTeamSize < 1 || h.MaxTeamSize < h.MinTeamSize {
		return fmt.Errorf("invalid team size bounds min=%d max=%d", h.MinTeamSize, h.MaxTeamSize)
	}
	var statements []string
	if len(h.ProblemStatements) > 0 {
		_ = json.Unmarshal(h.ProblemStatements, &statements)
	}
	if len(statements) == 0 {
		return errors.New("hackathon needs at least one problem statement")
	}
	if !h.RegistrationDeadline.After(time.Now()) {
		return errors.New("registration deadline must be in the future")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(h).Error; err != nil {
			return err
		}
		return AddOutboxEvent(tx, "hackathon", h.ID, "UPSERT", h)
	})
}
