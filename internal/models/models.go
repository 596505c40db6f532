package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Hackathon lifecycle statuses. The formation worker owns exactly one
// transition: registration_open -> registration_closed.
const (
	StatusUpcoming           = "upcoming"
	StatusRegistrationOpen   = "registration_open"
	StatusRegistrationClosed = "registration_closed"
	StatusOngoing            = "ongoing"
	StatusWinnerToAnnounced  = "winner_to_announced"
	StatusCompleted          = "completed"
	StatusCancelled          = "cancelled"
)

const (
	RoleLeader    = "leader"
	RoleDeveloper = "developer"

	MemberStatusActive = "active"

	SubmissionNotSubmitted = "not_submitted"
)

// ---------------- USERS ----------------
type User struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username           string    `gorm:"uniqueIndex;not null"`
	Email              string    `gorm:"uniqueIndex;not null"`
	Skills             datatypes.JSON // store []string as JSON
	College            string
	CurrentHackathonID *uuid.UUID `gorm:"type:uuid;index"` // set when placed into a team
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ---------------- HACKATHONS ----------------
type Hackathon struct {
	ID                   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title                string    `gorm:"uniqueIndex;not null"`
	Location             string
	RegistrationDeadline time.Time `gorm:"index;not null"`
	StartAt              time.Time
	EndAt                time.Time
	IsActive             bool           `gorm:"default:true"`
	Status               string         `gorm:"index;not null;default:'upcoming'"`
	Tracks               datatypes.JSON // e.g. ["AI","Web3"]
	ProblemStatements    datatypes.JSON // []string, must be non-empty for team formation
	MaxTeamSize          int            `gorm:"not null;default:4"`
	MinTeamSize          int            `gorm:"not null;default:2"`
	TeamsFormed          bool           `gorm:"default:false"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Participants         []User `gorm:"many2many:hackathon_participants"`
	Teams                []Team `gorm:"foreignKey:HackathonID"`
}

// ---------------- TEAMS ----------------
type Team struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HackathonID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Name             string    `gorm:"uniqueIndex;not null"`
	ProblemStatement string    `gorm:"not null"`
	TeamSize         int       `gorm:"not null"`
	SubmissionStatus string    `gorm:"not null;default:'not_submitted'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Members          []TeamMember `gorm:"foreignKey:TeamID"`
}

// ---------------- TEAM MEMBERS ----------------
type TeamMember struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	TeamID    uuid.UUID `gorm:"type:uuid;index;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Role      string    `gorm:"not null"` // leader | developer
	Status    string    `gorm:"not null;default:'active'"`
	CreatedAt time.Time
}

// ---------------- OUTBOX (for search-index sync) ----------------
type Outbox struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	EntityType string    `gorm:"index;not null"` // user | hackathon | team
	EntityID   uuid.UUID `gorm:"type:uuid;not null"`
	Op         string    `gorm:"not null"` // UPSERT | DELETE
	Payload    datatypes.JSON
	CreatedAt  time.Time
	Processed  bool `gorm:"default:false"`
}
