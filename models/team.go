package models

import (
	"time"

	"gorm.io/gorm"
)

// Team はDiscordサーバーと紐づくチームを保持する
type Team struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	OwnerID   string
	GuildID   string `gorm:"index"`
	GuildName string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
