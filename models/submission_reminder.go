package models

import (
	"time"

	"gorm.io/gorm"
)

// SubmissionReminder は稼働表の提出チェック予定を保持する
// リマインド当日にスキャンされ、処理後に IsSent が立つ（1レコード1回のみ）
type SubmissionReminder struct {
	ID                 string `gorm:"primaryKey"`
	TeamID             string `gorm:"index"` // 空の場合はシングルテナント扱い
	ReminderDate       string `gorm:"index"` // チェック実行日（YYYY-MM-DD）
	ScheduleStartDate  string // 確認対象期間の開始日（YYYY-MM-DD）
	ScheduleEndDate    string // 確認対象期間の終了日（YYYY-MM-DD、両端含む）
	SubmissionDeadline string // 表示用の提出期限ラベル
	ChannelID          string // 通知先チャンネル
	IsSent             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}
