package services

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

// createDailySchedule はテスト用の稼働表レコードを作る
func createDailySchedule(t *testing.T, db *gorm.DB, teamID, date string, availability map[string][]string, unavailable map[string]bool) {
	t.Helper()

	schedule := models.DailySchedule{
		ID:     teamID + "-" + date,
		TeamID: teamID,
		Date:   date,
	}
	if availability != nil {
		if err := schedule.SetAvailabilityMap(availability); err != nil {
			t.Fatalf("fail to set availability: %v", err)
		}
	}
	if unavailable != nil {
		if err := schedule.SetUnavailableMap(unavailable); err != nil {
			t.Fatalf("fail to set unavailable: %v", err)
		}
	}

	if err := db.Create(&schedule).Error; err != nil {
		t.Fatalf("fail to create daily schedule: %v", err)
	}
}
