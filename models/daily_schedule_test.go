package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDailySchedule_AvailabilityMap(t *testing.T) {
	schedule := DailySchedule{}
	err := schedule.SetAvailabilityMap(map[string][]string{
		"M1": {"10:00-12:00", "14:00-18:00"},
		"M2": {},
	})
	assert.NoError(t, err)

	m := schedule.AvailabilityMap()
	assert.Equal(t, []string{"10:00-12:00", "14:00-18:00"}, m["M1"])
	assert.Empty(t, m["M2"])
	assert.Empty(t, m["M3"])
}

func TestDailySchedule_UnavailableMap(t *testing.T) {
	schedule := DailySchedule{}
	err := schedule.SetUnavailableMap(map[string]bool{"M1": true, "M2": false})
	assert.NoError(t, err)

	m := schedule.UnavailableMap()
	assert.True(t, m["M1"])
	assert.False(t, m["M2"])
	assert.False(t, m["M3"])
}

func TestDailySchedule_EmptyAndBrokenJSON(t *testing.T) {
	// 未設定は空マップ扱い
	empty := DailySchedule{}
	assert.Empty(t, empty.AvailabilityMap())
	assert.Empty(t, empty.UnavailableMap())

	// 壊れたJSONも空マップ扱いで落とさない
	broken := DailySchedule{Availability: "{broken", Unavailable: "[1,2"}
	assert.Empty(t, broken.AvailabilityMap())
	assert.Empty(t, broken.UnavailableMap())
}
