package search

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hackorbit/team-service/internal/models"
)

type UserDoc struct {
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	Skills             []string   `json:"skills"`
	College            string     `json:"college"`
	CurrentHackathonID *uuid.UUID `json:"current_hackathon_id"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func BuildUserDoc(u models.User) ([]byte, error) {
	var skills []string
	_ = json.Unmarshal(u.Skills, &skills)
	return json.Marshal(UserDoc{
		Username:           u.Username,
		Email:              u.Email,
		Skills:             skills,
		College:            u.College,
		CurrentHackathonID: u.CurrentHackathonID,
		UpdatedAt:          u.UpdatedAt,
	})
}

type HackathonDoc struct {
	Title                string    `json:"title"`
	Location             string    `json:"location"`
	Tracks               []string  `json:"tracks"`
	Status               string    `json:"status"`
	TeamsFormed          bool      `json:"teams_formed"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	StartAt              time.Time `json:"start_at"`
	EndAt                time.Time `json:"end_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func BuildHackathonDoc(h models.Hackathon) ([]byte, error) {
	var tracks []string
	_ = json.Unmarshal(h.Tracks, &tracks)
	return json.Marshal(HackathonDoc{
		Title:                h.Title,
		Location:             h.Location,
		Tracks:               tracks,
		Status:               h.Status,
		TeamsFormed:          h.TeamsFormed,
		RegistrationDeadline: h.RegistrationDeadline,
		StartAt:              h.StartAt,
		EndAt:                h.EndAt,
		UpdatedAt:            h.UpdatedAt,
	})
}

type TeamDoc struct {
	Name             string    `json:"name"`
	HackathonID      uuid.UUID `json:"hackathon_id"`
	ProblemStatement string    `json:"problem_statement"`
	TeamSize         int       `json:"team_size"`
	SubmissionStatus string    `json:"submission_status"`
	MemberIDs        []string  `json:"member_ids"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func BuildTeamDoc(t models.Team) ([]byte, error) {
	members := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		members = append(members, m.UserID.String())
	}
	return json.Marshal(TeamDoc{
		Name:             t.Name,
		HackathonID:      t.HackathonID,
		ProblemStatement: t.ProblemStatement,
		TeamSize:         t.TeamSize,
		SubmissionStatus: t.SubmissionStatus,
		MemberIDs:        members,
		UpdatedAt:        t.UpdatedAt,
	})
}
