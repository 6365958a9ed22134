package handlers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"discord-check-notify/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("fail to open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.SubmissionReminder{},
		&models.ReactionCheck{},
		&models.SentReminder{},
		&models.Member{},
		&models.DailySchedule{},
		&models.Team{},
		&models.User{},
	)
	if err != nil {
		t.Fatalf("fail to migrate test db: %v", err)
	}

	return db
}
