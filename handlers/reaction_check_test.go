package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"discord-check-notify/models"
	"discord-check-notify/services"
)

func TestHandlePostReactionCheck_CreatesRecord(t *testing.T) {
	db := setupTestDB(t)
	gin.SetMode(gin.TestMode)

	mock := &services.MockDiscordClient{}

	r := gin.New()
	r.POST("/post-reaction-check", HandlePostReactionCheck(db, mock))

	body, _ := json.Marshal(gin.H{
		"content":           "来週の予定について",
		"targetUsers":       []string{"U1", "U2", "U1"}, // 重複あり
		"reminderDate":      "2024-06-10",
		"reactionDeadline":  "2024-06-09",
		"postChannelId":     "C-post",
		"reminderChannelId": "C-remind",
		"guildId":           "G1",
		"teamId":            "team1",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/post-reaction-check", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// お知らせが投稿される
	assert.Len(t, mock.Posted, 1)
	assert.Equal(t, "C-post", mock.Posted[0].ChannelID)
	content := mock.Posted[0].Message.Content
	assert.Contains(t, content, "<@U1> <@U2>")
	assert.Contains(t, content, "来週の予定について")
	assert.Contains(t, content, "6月9日")
	assert.Contains(t, content, ":white_check_mark:")

	// レコードが作成され、対象は重複排除されている
	var check models.ReactionCheck
	err := db.Where("team_id = ?", "team1").First(&check).Error
	assert.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2"}, check.TargetUserList())
	assert.Equal(t, "2024-06-10", check.ReminderDate)
	assert.False(t, check.IsSent)
	assert.NotEmpty(t, check.MessageID)
}

func TestHandlePostReactionCheck_ExpandsEveryone(t *testing.T) {
	db := setupTestDB(t)
	gin.SetMode(gin.TestMode)

	mock := &services.MockDiscordClient{
		Members: []*discordgo.Member{
			{User: &discordgo.User{ID: "U1", Username: "alice"}},
			{User: &discordgo.User{ID: "U2", Username: "bob"}},
			{User: &discordgo.User{ID: "B1", Username: "checkbot", Bot: true}},
		},
	}

	r := gin.New()
	r.POST("/post-reaction-check", HandlePostReactionCheck(db, mock))

	body, _ := json.Marshal(gin.H{
		"content":           "全体連絡",
		"targetUsers":       []string{"everyone"},
		"reminderDate":      "2024-06-10",
		"postChannelId":     "C-post",
		"reminderChannelId": "C-remind",
		"guildId":           "G1",
		"teamId":            "team1",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/post-reaction-check", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// Botを除く全メンバーが対象に展開される
	var check models.ReactionCheck
	db.Where("team_id = ?", "team1").First(&check)
	assert.Equal(t, []string{"U1", "U2"}, check.TargetUserList())
	assert.True(t, check.IsEveryone)
	assert.Contains(t, mock.Posted[0].Message.Content, "@everyone")
}

func TestHandlePostReactionCheck_ExpandsRoles(t *testing.T) {
	db := setupTestDB(t)
	gin.SetMode(gin.TestMode)

	mock := &services.MockDiscordClient{
		Members: []*discordgo.Member{
			{User: &discordgo.User{ID: "U1"}, Roles: []string{"R1"}},
			{User: &discordgo.User{ID: "U2"}, Roles: []string{"R2"}},
			{User: &discordgo.User{ID: "U3"}, Roles: []string{"R1", "R2"}},
		},
	}

	r := gin.New()
	r.POST("/post-reaction-check", HandlePostReactionCheck(db, mock))

	body, _ := json.Marshal(gin.H{
		"content":           "役職向け連絡",
		"targetRoles":       []string{"R1"},
		"reminderDate":      "2024-06-10",
		"postChannelId":     "C-post",
		"reminderChannelId": "C-remind",
		"guildId":           "G1",
		"teamId":            "team1",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/post-reaction-check", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var check models.ReactionCheck
	db.Where("team_id = ?", "team1").First(&check)
	assert.Equal(t, []string{"U1", "U3"}, check.TargetUserList())
	assert.Contains(t, mock.Posted[0].Message.Content, "<@&R1>")
}

func TestHandlePostReactionCheck_RequiresTeamID(t *testing.T) {
	db := setupTestDB(t)
	gin.SetMode(gin.TestMode)

	mock := &services.MockDiscordClient{}

	r := gin.New()
	r.POST("/post-reaction-check", HandlePostReactionCheck(db, mock))

	body, _ := json.Marshal(gin.H{"content": "連絡", "postChannelId": "C-post"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/post-reaction-check", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mock.Posted)
}

func TestHandleDeleteMessage_DeletesRemindersToo(t *testing.T) {
	db := setupTestDB(t)
	gin.SetMode(gin.TestMode)

	mock := &services.MockDiscordClient{}

	check := models.ReactionCheck{
		ID:            "check1",
		TeamID:        "team1",
		GuildID:       "G1",
		MessageID:     "MSG1",
		PostChannelID: "C-post",
	}
	db.Create(&check)
	db.Create(&models.SentReminder{ReactionCheckID: "check1", MessageID: "R1", ChannelID: "C-remind"})
	db.Create(&models.SentReminder{ReactionCheckID: "check1", MessageID: "R2", ChannelID: "C-remind"})

	r := gin.New()
	r.DELETE("/api/delete-message", HandleDeleteMessage(db, mock))

	body, _ := json.Marshal(gin.H{
		"postId":    "check1",
		"messageId": "MSG1",
		"channelId": "C-post",
		"teamId":    "team1",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/delete-message", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// リマインド2件と本体の計3件が削除される
	assert.Equal(t, []string{"C-remind/R1", "C-remind/R2", "C-post/MSG1"}, mock.Deleted)

	var count int64
	db.Model(&models.ReactionCheck{}).Where("id = ?", "check1").Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.SentReminder{}).Where("reaction_check_id = ?", "check1").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestHandleEditMessage_RebuildsMentions(t *testing.T) {
	db := setupTestDB(t)
	gin.SetMode(gin.TestMode)

	mock := &services.MockDiscordClient{}

	check := models.ReactionCheck{
		ID:            "check1",
		TeamID:        "team1",
		GuildID:       "G1",
		MessageID:     "MSG1",
		PostChannelID: "C-post",
		Content:       "以前の内容",
	}
	check.SetTargetUserList([]string{"U1", "U2"})
	db.Create(&check)

	r := gin.New()
	r.PATCH("/api/edit-message", HandleEditMessage(db, mock))

	body, _ := json.Marshal(gin.H{
		"postId":     "check1",
		"messageId":  "MSG1",
		"channelId":  "C-post",
		"newContent": "新しい内容",
		"teamId":     "team1",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/edit-message", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"C-post/MSG1"}, mock.Edited)

	var saved models.ReactionCheck
	db.Where("id = ?", "check1").First(&saved)
	assert.Equal(t, "新しい内容", saved.Content)
}
