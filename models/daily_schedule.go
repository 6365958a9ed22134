package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// DailySchedule は1日分の稼働表を保持する
// 書き込みはスケジュールUI側が行い、チェック処理からは読み取り専用
type DailySchedule struct {
	ID           string `gorm:"primaryKey"`
	TeamID       string `gorm:"index:idx_team_date,unique"`
	Date         string `gorm:"index:idx_team_date,unique"` // YYYY-MM-DD
	Availability string // JSON: メンバーID -> 稼働枠のリスト
	Unavailable  string // JSON: メンバーID -> 稼働不可フラグ
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// AvailabilityMap はAvailabilityのJSONをマップに展開する
// 壊れたJSONは空扱い
func (s *DailySchedule) AvailabilityMap() map[string][]string {
	result := make(map[string][]string)
	if s.Availability == "" {
		return result
	}
	if err := json.Unmarshal([]byte(s.Availability), &result); err != nil {
		return make(map[string][]string)
	}
	return result
}

// UnavailableMap はUnavailableのJSONをマップに展開する
func (s *DailySchedule) UnavailableMap() map[string]bool {
	result := make(map[string]bool)
	if s.Unavailable == "" {
		return result
	}
	if err := json.Unmarshal([]byte(s.Unavailable), &result); err != nil {
		return make(map[string]bool)
	}
	return result
}

// SetAvailabilityMap はマップをJSONにして保存形式に変換する（テスト用のセットアップにも使う）
func (s *DailySchedule) SetAvailabilityMap(m map[string][]string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	s.Availability = string(data)
	return nil
}

// SetUnavailableMap はマップをJSONにして保存形式に変換する
func (s *DailySchedule) SetUnavailableMap(m map[string]bool) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	s.Unavailable = string(data)
	return nil
}
