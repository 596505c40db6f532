package search

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hackorbit/team-service/internal/models"
	"gorm.io/datatypes"
)

func TestBuildUserDoc(t *testing.T) {
	skills, _ := json.Marshal([]string{"Go", "Postgres"})
	hackID := uuid.New()
	u := models.User{
		ID:                 uuid.New(),
		Username:           "hacker01",
		Email:              "hacker01@example.com",
		Skills:             datatypes.JSON(skills),
		College:            "PESU",
		CurrentHackathonID: &hackID,
		UpdatedAt:          time.Now(),
	}

	raw, err := BuildUserDoc(u)
	if err != nil {
		t.Fatalf("BuildUserDoc: %v", err)
	}
	var doc UserDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal doc: %v", err)
	}
	if doc.Username != "hacker01" {
		t.Fatalf("username = %q", doc.Username)
	}
	if len(doc.Skills) != 2 || doc.Skills[0] != "Go" {
		t.Fatalf("skills = %v", doc.Skills)
	}
	if doc.CurrentHackathonID == nil || *doc.CurrentHackathonID != hackID {
		t.Fatalf("current_hackathon_id = %v, want %s", doc.CurrentHackathonID, hackID)
	}
}

func TestBuildTeamDoc(t *testing.T) {
	teamID := uuid.New()
	hackID := uuid.New()
	u1, u2 := uuid.New(), uuid.New()
	team := models.Team{
		ID:               teamID,
		HackathonID:      hackID,
		Name:             "team-ab12cd",
		ProblemStatement: "Realtime disaster relief coordination",
		TeamSize:         2,
		SubmissionStatus: models.SubmissionNotSubmitted,
		UpdatedAt:        time.Now(),
		Members: []models.TeamMember{
			{TeamID: teamID, UserID: u1, Role: models.RoleLeader},
			{TeamID: teamID, UserID: u2, Role: models.RoleDeveloper},
		},
	}

	raw, err := BuildTeamDoc(team)
	if err != nil {
		t.Fatalf("BuildTeamDoc: %v", err)
	}
	var doc TeamDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal doc: %v", err)
	}
	if doc.HackathonID != hackID {
		t.Fatalf("hackathon_id = %s, want %s", doc.HackathonID, hackID)
	}
	if len(doc.MemberIDs) != 2 || doc.MemberIDs[0] != u1.String() {
		t.Fatalf("member_ids = %v", doc.MemberIDs)
	}
	if doc.SubmissionStatus != "not_submitted" {
		t.Fatalf("submission_status = %q", doc.SubmissionStatus)
	}
}

func TestBuildHackathonDoc(t *testing.T) {
	tracks, _ := json.Marshal([]string{"AI", "Web"})
	h := models.Hackathon{
		Title:       "DevFest",
		Location:    "Bengaluru",
		Status:      models.StatusRegistrationClosed,
		TeamsFormed: true,
		Tracks:      datatypes.JSON(tracks),
	}
	raw, err := BuildHackathonDoc(h)
	if err != nil {
		t.Fatalf("BuildHackathonDoc: %v", err)
	}
	var doc HackathonDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal doc: %v", err)
	}
	if doc.Status != models.StatusRegistrationClosed || !doc.TeamsFormed {
		t.Fatalf("doc = %+v", doc)
	}
	if len(doc.Tracks) != 2 {
		t.Fatalf("tracks = %v", doc.Tracks)
	}
}
