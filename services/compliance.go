package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"discord-check-notify/models"
)

// DateLayout はレコード上の日付文字列の形式
const DateLayout = "2006-01-02"

// DatesBetween はstartからendまで（両端含む）の日付列を返す
// 時刻成分は切り捨てて日単位に正規化する。endがstartより前なら空
func DatesBetween(start, end time.Time) []time.Time {
	startDay := truncateToDate(start)
	endDay := truncateToDate(end)

	if endDay.Before(startDay) {
		return []time.Time{}
	}

	dates := make([]time.Time, 0)
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsCompliant はメンバーが期間内のどこか1日でも稼働表を記入しているかを判定する
// 1日分でも「稼働枠あり」か「稼働不可」の記入が見つかれば提出済みとみなす
// 全日程の網羅チェックではない。稼働表レコード自体がない日は情報なしとしてスキップする
func IsCompliant(db *gorm.DB, teamID, memberID string, start, end time.Time) (bool, error) {
	for _, d := range DatesBetween(start, end) {
		var schedule models.DailySchedule
		err := db.Where("team_id = ? AND date = ?", teamID, d.Format(DateLayout)).First(&schedule).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}

		if slots := schedule.AvailabilityMap()[memberID]; len(slots) > 0 {
			return true, nil
		}
		if schedule.UnavailableMap()[memberID] {
			return true, nil
		}
	}

	// 1日も記入が見つからなければ未提出
	return false, nil
}
