package models

import (
	"time"

	"gorm.io/gorm"
)

// Member はチームの構成メンバーを保持する
// 稼働表（DailySchedule）のマップはこのIDをキーにする
type Member struct {
	ID        string `gorm:"primaryKey"`
	TeamID    string `gorm:"index:idx_member_team_user,unique"`
	UserID    string `gorm:"index:idx_member_team_user,unique"` // 連携済みUserのID（空も可）
	Name      string
	DiscordID string // 空の場合はメンション不可（表示名で代替する）
	Order     int    // UI上の並び順
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
