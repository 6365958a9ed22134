package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ReactionCheck は既読確認の対象となるお知らせ投稿を保持する
type ReactionCheck struct {
	ID                string `gorm:"primaryKey"`
	TeamID            string `gorm:"index"`
	GuildID           string
	MessageID         string // お知らせ本体のメッセージID
	PostChannelID     string // お知らせを投稿したチャンネル
	ReminderChannelID string // リマインドの送信先（PostChannelIDと同じこともある）
	Content           string
	TargetUserIDs     string `gorm:"index"` // 確認対象ユーザーID（カンマ区切り、重複なし）
	IsEveryone        bool   // @everyone指定で作成されたかどうかの目印
	ReminderDate      string `gorm:"index"` // チェック実行日（YYYY-MM-DD）
	ReactionDeadline  string // 表示用のリアクション期限（YYYY-MM-DD）
	IsSent            bool
	SentReminders     []SentReminder `gorm:"foreignKey:ReactionCheckID"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// SentReminder は送信済みリマインドメッセージの記録
// 追記のみで、レコード削除時にまとめて消す
type SentReminder struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	ReactionCheckID string `gorm:"index"`
	MessageID       string
	ChannelID       string
	CreatedAt       time.Time
}

// TargetUserList はカンマ区切りの対象ユーザーIDをスライスに展開する
func (c *ReactionCheck) TargetUserList() []string {
	if c.TargetUserIDs == "" {
		return []string{}
	}

	ids := strings.Split(c.TargetUserIDs, ",")
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// SetTargetUserList は対象ユーザーIDを重複排除して保存形式に変換する
// 順序は最初に現れた順を保つ
func (c *ReactionCheck) SetTargetUserList(ids []string) {
	seen := make(map[string]bool)
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		unique = append(unique, trimmed)
	}
	c.TargetUserIDs = strings.Join(unique, ",")
}

// HasRequiredIdentifiers はリアクション照会に必要なIDが揃っているかを返す
func (c *ReactionCheck) HasRequiredIdentifiers() bool {
	return c.GuildID != "" && c.PostChannelID != "" && c.ReminderChannelID != "" && c.MessageID != ""
}
