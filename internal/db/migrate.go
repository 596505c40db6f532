package db

import (
	"log"

	"github.com/hackorbit/team-service/internal/models"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Hackathon{},
		&models.Team{},
		&models.TeamMember{},
		&models.Outbox{},
		&models.SyncDLQ{},
		&models.NotificationDLQ{},
	)
	if err != nil {
		log.Fatalf("❌ migration failed: %v", err)
	}
	log.Println("✅ database migrated successfully")
}
