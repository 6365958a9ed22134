package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"discord-check-notify/models"
	"discord-check-notify/services"
)

func testConfig() services.Config {
	return services.Config{Location: time.UTC}
}

func TestHandleRunReminder(t *testing.T) {
	db := setupTestDB(t)
	gin.SetMode(gin.TestMode)

	mock := &services.MockDiscordClient{
		ReactorsResult: services.ReactorsResult{Status: services.ReactionFetchOK, UserIDs: []string{}},
	}
	cfg := testConfig()
	today := cfg.Today()

	// 当日分の稼働表リマインダーを1件用意する
	reminder := models.SubmissionReminder{
		ID:                 "rem1",
		TeamID:             "team1",
		ReminderDate:       today,
		ScheduleStartDate:  "2024-06-01",
		ScheduleEndDate:    "2024-06-03",
		SubmissionDeadline: "6月10日",
		ChannelID:          "C100",
	}
	db.Create(&reminder)
	db.Create(&models.Member{ID: "M1", TeamID: "team1", Name: "田中", DiscordID: "111111"})

	r := gin.New()
	r.GET("/run-reminder", HandleRunReminder(db, mock, cfg))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/run-reminder", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "すべてのチェック処理が完了しました")

	// 未提出のM1に通知が飛び、レコードは処理済みになる
	assert.Len(t, mock.Posted, 1)
	var saved models.SubmissionReminder
	db.Where("id = ?", "rem1").First(&saved)
	assert.True(t, saved.IsSent)
}

func TestHandleRemindNow(t *testing.T) {
	db := setupTestDB(t)
	gin.SetMode(gin.TestMode)

	mock := &services.MockDiscordClient{
		ReactorsResult: services.ReactorsResult{Status: services.ReactionFetchOK, UserIDs: []string{"U1"}},
	}

	check := models.ReactionCheck{
		ID:                "check1",
		TeamID:            "team1",
		GuildID:           "G1",
		MessageID:         "MSG1",
		PostChannelID:     "C-post",
		ReminderChannelID: "C-remind",
		ReminderDate:      "2030-01-01", // スキャン対象日はまだ先
	}
	check.SetTargetUserList([]string{"U1", "U2"})
	db.Create(&check)

	r := gin.New()
	r.POST("/api/remind-now", HandleRemindNow(db, mock))

	body, _ := json.Marshal(gin.H{"postId": "check1", "teamId": "team1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/remind-now", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, mock.Posted, 1)
	assert.Contains(t, mock.Posted[0].Message.Content, "<@U2>")

	// 今すぐリマインドは定期スキャンの処理済みフラグを立てない
	var saved models.ReactionCheck
	db.Where("id = ?", "check1").First(&saved)
	assert.False(t, saved.IsSent)
}

func TestHandleRemindNow_NotFound(t *testing.T) {
	db := setupTestDB(t)
	gin.SetMode(gin.TestMode)

	mock := &services.MockDiscordClient{}

	r := gin.New()
	r.POST("/api/remind-now", HandleRemindNow(db, mock))

	body, _ := json.Marshal(gin.H{"postId": "missing"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/remind-now", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, mock.Posted)
}
