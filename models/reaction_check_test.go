package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReactionCheckTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("fail to open test db: %v", err)
	}

	if err := db.AutoMigrate(&ReactionCheck{}, &SentReminder{}); err != nil {
		t.Fatalf("fail to migrate test db: %v", err)
	}

	return db
}

func TestReactionCheck_TargetUserList(t *testing.T) {
	check := ReactionCheck{}

	// 重複は最初に現れた順で排除される
	check.SetTargetUserList([]string{"U1", "U2", "U1", " U3 ", "", "U2"})
	assert.Equal(t, "U1,U2,U3", check.TargetUserIDs)
	assert.Equal(t, []string{"U1", "U2", "U3"}, check.TargetUserList())

	empty := ReactionCheck{}
	assert.Empty(t, empty.TargetUserList())
}

func TestReactionCheck_HasRequiredIdentifiers(t *testing.T) {
	complete := ReactionCheck{
		GuildID:           "G1",
		MessageID:         "MSG1",
		PostChannelID:     "C1",
		ReminderChannelID: "C2",
	}
	assert.True(t, complete.HasRequiredIdentifiers())

	missing := complete
	missing.ReminderChannelID = ""
	assert.False(t, missing.HasRequiredIdentifiers())

	missing = complete
	missing.GuildID = ""
	assert.False(t, missing.HasRequiredIdentifiers())
}

func TestReactionCheck_SentRemindersAppend(t *testing.T) {
	db := setupReactionCheckTestDB(t)

	check := ReactionCheck{ID: "check1", GuildID: "G1", MessageID: "MSG1"}
	assert.NoError(t, db.Create(&check).Error)

	db.Create(&SentReminder{ReactionCheckID: "check1", MessageID: "R1", ChannelID: "C2"})
	db.Create(&SentReminder{ReactionCheckID: "check1", MessageID: "R2", ChannelID: "C2"})

	var saved ReactionCheck
	err := db.Preload("SentReminders").Where("id = ?", "check1").First(&saved).Error
	assert.NoError(t, err)
	assert.Len(t, saved.SentReminders, 2)
	assert.Equal(t, "R1", saved.SentReminders[0].MessageID)
	assert.Equal(t, "R2", saved.SentReminders[1].MessageID)
}
