package db

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hackorbit/team-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed inserts a demo hackathon with registered participants so the
// formation worker has something to pick up shortly after startup.
func Seed(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("🌱 Data already exists, skipping seed.")
		return
	}

	// Wrap in a transaction for atomicity
	db.Transaction(func(tx *gorm.DB) error {
		skillSets := [][]string{
			{"Go", "React"},
			{"Python", "ML"},
			{"Rust", "Systems"},
			{"Go", "Kubernetes"},
			{"JS", "Design"},
			{"Java", "Android"},
			{"C++", "Graphics"},
			{"Go", "Postgres"},
			{"Swift", "iOS"},
			{"Python", "Data"},
		}
		users := make([]models.User, 0, len(skillSets))
		for i, s := range skillSets {
			skills, _ := json.Marshal(s)
			u := models.User{
				Username: fmt.Sprintf("hacker%02d", i+1),
				Email:    fmt.Sprintf("hacker%02d@example.com", i+1),
				Skills:   datatypes.JSON(skills),
				College:  "PESU",
			}
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
			users = append(users, u)
		}

		tracks, _ := json.Marshal([]string{"AI", "Web"})
		statements, _ := json.Marshal([]string{
			"Accessibility assistant for the visually impaired",
			"Campus energy usage dashboard",
			"Realtime disaster relief coordination",
		})
		hackathon := models.Hackathon{
			Title:                "DevFest",
			Location:             "Bengaluru",
			RegistrationDeadline: time.Now().Add(2 * time.Minute),
			StartAt:              time.Now().Add(24 * time.Hour),
			EndAt:                time.Now().Add(72 * time.Hour),
			IsActive:             true,
			Status:               models.StatusRegistrationOpen,
			Tracks:               datatypes.JSON(tracks),
			ProblemStatements:    datatypes.JSON(statements),
			MaxTeamSize:          3,
			MinTeamSize:          2,
		}
		if err := tx.Create(&hackathon).Error; err != nil {
			return err
		}
		if err := tx.Model(&hackathon).Association("Participants").Append(&users); err != nil {
			return err
		}

		log.Println("🌱 Sample data inserted successfully.")
		return nil
	})
}
