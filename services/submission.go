package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"discord-check-notify/models"
)

// SubmissionReport は1回のスキャンの処理結果
type SubmissionReport struct {
	Processed int // 処理したレコード数
	Notified  int // 通知を送ったレコード数
}

// RunSubmissionCheck は当日分の稼働表リマインダーをスキャンして処理する
// レコードは条件付きUPDATEで先にクレームするので、同時に2回呼ばれても二重通知しない
// 通知の失敗は処理済み扱いを妨げない（再実行での重複通知を避けるため）
func RunSubmissionCheck(db *gorm.DB, notifier *Notifier, asOf string) (SubmissionReport, error) {
	var report SubmissionReport

	var reminders []models.SubmissionReminder
	result := db.Where("reminder_date = ? AND is_sent = ?", asOf, false).Find(&reminders)
	if result.Error != nil {
		return report, fmt.Errorf("submission reminder scan error: %w", result.Error)
	}

	if len(reminders) == 0 {
		log.Printf("no submission reminder due on %s", asOf)
		return report, nil
	}

	for _, reminder := range reminders {
		if !claimSubmissionReminder(db, reminder.ID) {
			continue
		}
		report.Processed++

		start, end, err := parseInterval(reminder.ScheduleStartDate, reminder.ScheduleEndDate)
		if err != nil {
			// 日付が壊れているレコードは再試行しても直らないので処理済みのまま残す
			log.Printf("submission reminder has broken dates (id: %s): %v", reminder.ID, err)
			continue
		}

		nonSubmitters, err := FindNonSubmitters(db, reminder.TeamID, start, end)
		if err != nil {
			// ストア読み取りの失敗は一時的なものとみなし、クレームを戻して次回スキャンで再試行する
			log.Printf("non submitter check error (id: %s): %v", reminder.ID, err)
			releaseSubmissionReminder(db, reminder.ID)
			report.Processed--
			continue
		}

		if len(nonSubmitters) == 0 {
			log.Printf("all members submitted (id: %s)", reminder.ID)
			continue
		}

		if err := notifier.SendSubmissionReminder(reminder, nonSubmitters); err != nil {
			log.Printf("submission reminder notify error (id: %s): %v", reminder.ID, err)
			continue
		}

		report.Notified++
		log.Printf("submission reminder sent (id: %s, non submitters: %d)", reminder.ID, len(nonSubmitters))
	}

	return report, nil
}

// FindNonSubmitters は期間内に一度も稼働表を記入していないメンバーを集める
func FindNonSubmitters(db *gorm.DB, teamID string, start, end time.Time) ([]NonSubmitter, error) {
	var members []models.Member
	query := db.Order("`order`")
	if teamID != "" {
		query = query.Where("team_id = ?", teamID)
	}
	if err := query.Find(&members).Error; err != nil {
		return nil, fmt.Errorf("member list error: %w", err)
	}

	nonSubmitters := make([]NonSubmitter, 0)
	for _, member := range members {
		submitted, err := IsCompliant(db, teamID, member.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("compliance check error (member: %s): %w", member.ID, err)
		}
		if !submitted {
			nonSubmitters = append(nonSubmitters, NonSubmitter{Name: member.Name, DiscordID: member.DiscordID})
		}
	}
	return nonSubmitters, nil
}

// claimSubmissionReminder は is_sent を条件付きで立ててレコードをクレームする
// 既に他のスキャンが取っていた場合はfalse
func claimSubmissionReminder(db *gorm.DB, id string) bool {
	result := db.Model(&models.SubmissionReminder{}).
		Where("id = ? AND is_sent = ?", id, false).
		Update("is_sent", true)
	if result.Error != nil {
		log.Printf("submission reminder claim error (id: %s): %v", id, result.Error)
		return false
	}
	return result.RowsAffected > 0
}

func releaseSubmissionReminder(db *gorm.DB, id string) {
	if err := db.Model(&models.SubmissionReminder{}).
		Where("id = ?", id).
		Update("is_sent", false).Error; err != nil {
		log.Printf("submission reminder release error (id: %s): %v", id, err)
	}
}

func parseInterval(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date parse error: %w", err)
	}
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end date parse error: %w", err)
	}
	return start, end, nil
}
