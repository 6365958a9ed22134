package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"discord-check-notify/models"
	"discord-check-notify/services"
)

// ギルドメンバー展開の取得上限
const guildMemberFetchLimit = 1000

type postReactionCheckRequest struct {
	Content           string   `json:"content"`
	TargetUsers       []string `json:"targetUsers"`
	TargetRoles       []string `json:"targetRoles"`
	ReminderDate      string   `json:"reminderDate"`
	ReactionDeadline  string   `json:"reactionDeadline"`
	PostChannelID     string   `json:"postChannelId"`
	ReminderChannelID string   `json:"reminderChannelId"`
	GuildID           string   `json:"guildId"`
	TeamID            string   `json:"teamId"`
}

// HandlePostReactionCheck はお知らせを投稿し、既読確認レコードを作成する
// targetUsersに"everyone"が含まれる場合やロール指定時はギルドメンバー一覧から対象を展開する（Botは除外）
func HandlePostReactionCheck(db *gorm.DB, discord services.DiscordClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req postReactionCheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "不正なリクエストです。"})
			return
		}
		if req.TeamID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "チームIDが必要です。"})
			return
		}

		isEveryone := false
		directTargets := make([]string, 0, len(req.TargetUsers))
		for _, id := range req.TargetUsers {
			if id == "everyone" {
				isEveryone = true
				continue
			}
			directTargets = append(directTargets, id)
		}

		targets := directTargets
		mentions := make([]string, 0, len(directTargets))
		for _, id := range directTargets {
			mentions = append(mentions, fmt.Sprintf("<@%s>", id))
		}

		// @everyoneやロール指定はメンバー一覧を引いて個別のユーザーIDに展開する
		if isEveryone || len(req.TargetRoles) > 0 {
			members, err := discord.GuildMembers(req.GuildID, guildMemberFetchLimit)
			if err != nil {
				log.Printf("guild member fetch error (guild: %s): %v", req.GuildID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "サーバー内部でエラーが発生しました。"})
				return
			}

			if isEveryone {
				mentions = []string{"@everyone"}
				for _, member := range members {
					if member.User != nil && !member.User.Bot {
						targets = append(targets, member.User.ID)
					}
				}
			}

			if len(req.TargetRoles) > 0 {
				roleSet := make(map[string]bool, len(req.TargetRoles))
				for _, roleID := range req.TargetRoles {
					roleSet[roleID] = true
				}
				for _, member := range members {
					if member.User == nil || member.User.Bot {
						continue
					}
					for _, roleID := range member.Roles {
						if roleSet[roleID] {
							targets = append(targets, member.User.ID)
							break
						}
					}
				}
				for _, roleID := range req.TargetRoles {
					mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
				}
			}
		}

		content := buildAnnouncementContent(mentions, req.Content, req.ReactionDeadline)
		messageID, err := discord.PostMessage(req.PostChannelID, &discordgo.MessageSend{
			Content: content,
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Parse: []discordgo.AllowedMentionType{
					discordgo.AllowedMentionTypeUsers,
					discordgo.AllowedMentionTypeRoles,
					discordgo.AllowedMentionTypeEveryone,
				},
			},
		})
		if err != nil {
			log.Printf("announcement post error (channel: %s): %v", req.PostChannelID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "サーバー内部でエラーが発生しました。"})
			return
		}

		check := models.ReactionCheck{
			ID:                uuid.NewString(),
			TeamID:            req.TeamID,
			GuildID:           req.GuildID,
			MessageID:         messageID,
			PostChannelID:     req.PostChannelID,
			ReminderChannelID: req.ReminderChannelID,
			Content:           req.Content,
			IsEveryone:        isEveryone,
			ReminderDate:      req.ReminderDate,
			ReactionDeadline:  req.ReactionDeadline,
			IsSent:            false,
		}
		check.SetTargetUserList(targets)

		if err := db.Create(&check).Error; err != nil {
			log.Printf("reaction check create error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "サーバー内部でエラーが発生しました。"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "メッセージを投稿しました。"})
	}
}

// buildAnnouncementContent はお知らせ本文を組み立てる
// 期限はM月D日の表記にする（パースできなければそのまま載せる）
func buildAnnouncementContent(mentions []string, content, deadline string) string {
	formattedDeadline := deadline
	if d, err := time.Parse(services.DateLayout, deadline); err == nil {
		formattedDeadline = fmt.Sprintf("%d月%d日", int(d.Month()), d.Day())
	}

	return fmt.Sprintf("%s\n\n**【重要なお知らせ】**\n%s\n\n---\n**%s**までに、このメッセージに :white_check_mark: のリアクションをお願いします。",
		strings.Join(mentions, " "), content, formattedDeadline)
}

// HandleListReactionChecks はギルド・チームの既読確認レコード一覧を返す
// 対象ユーザーIDはメンバー表の名前に解決して添える
func HandleListReactionChecks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		guildID := c.Query("guildId")
		teamID := c.Query("teamId")
		if guildID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "サーバーIDが必要です。"})
			return
		}

		var checks []models.ReactionCheck
		query := db.Preload("SentReminders").Where("guild_id = ?", guildID).Order("created_at desc")
		if teamID != "" {
			query = query.Where("team_id = ?", teamID)
		}
		if err := query.Find(&checks).Error; err != nil {
			log.Printf("reaction check list error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "投稿一覧の取得に失敗しました。"})
			return
		}

		var members []models.Member
		memberQuery := db
		if teamID != "" {
			memberQuery = memberQuery.Where("team_id = ?", teamID)
		}
		if err := memberQuery.Find(&members).Error; err != nil {
			log.Printf("member list error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "投稿一覧の取得に失敗しました。"})
			return
		}

		nameByDiscordID := make(map[string]string, len(members))
		for _, m := range members {
			if m.DiscordID != "" {
				nameByDiscordID[m.DiscordID] = m.Name
			}
		}

		type targetUserDetail struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		type reactionCheckView struct {
			models.ReactionCheck
			TargetUserDetails []targetUserDetail `json:"targetUserDetails"`
		}

		views := make([]reactionCheckView, 0, len(checks))
		for _, check := range checks {
			details := make([]targetUserDetail, 0)
			for _, id := range check.TargetUserList() {
				name, ok := nameByDiscordID[id]
				if !ok {
					name = "不明なユーザー"
				}
				details = append(details, targetUserDetail{ID: id, Name: name})
			}
			views = append(views, reactionCheckView{ReactionCheck: check, TargetUserDetails: details})
		}

		c.JSON(http.StatusOK, views)
	}
}

// HandleEditMessage はお知らせ本文を編集する
// メンション部分はレコードの対象ユーザーから作り直す
func HandleEditMessage(db *gorm.DB, discord services.DiscordClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PostID     string `json:"postId"`
			MessageID  string `json:"messageId"`
			ChannelID  string `json:"channelId"`
			NewContent string `json:"newContent"`
			TeamID     string `json:"teamId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.TeamID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "チームIDが必要です。"})
			return
		}

		var check models.ReactionCheck
		if err := db.Where("id = ? AND team_id = ?", req.PostID, req.TeamID).First(&check).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "元の投稿データが見つかりません。"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "メッセージの編集に失敗しました。"})
			return
		}

		mentions := make([]string, 0)
		for _, id := range check.TargetUserList() {
			mentions = append(mentions, fmt.Sprintf("<@%s>", id))
		}
		content := fmt.Sprintf("%s\n\n**【重要なお知らせ】**\n%s\n\n---\n内容を確認したら、このメッセージに :white_check_mark: のリアクションをお願いします。",
			strings.Join(mentions, " "), req.NewContent)

		if err := discord.EditMessage(req.ChannelID, req.MessageID, content); err != nil {
			log.Printf("message edit error (message: %s): %v", req.MessageID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "メッセージの編集に失敗しました。"})
			return
		}

		if err := db.Model(&check).Update("content", req.NewContent).Error; err != nil {
			log.Printf("reaction check content update error (id: %s): %v", check.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "メッセージの編集に失敗しました。"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "メッセージを更新しました。"})
	}
}

// HandleDeleteMessage はお知らせと関連リマインド、管理レコードを削除する
// リマインドメッセージの削除失敗は警告ログのみで処理を続ける
func HandleDeleteMessage(db *gorm.DB, discord services.DiscordClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PostID    string `json:"postId"`
			MessageID string `json:"messageId"`
			ChannelID string `json:"channelId"`
			TeamID    string `json:"teamId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.TeamID == "" || req.PostID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "チームIDと投稿IDは必須です。"})
			return
		}

		var check models.ReactionCheck
		err := db.Preload("SentReminders").Where("id = ? AND team_id = ?", req.PostID, req.TeamID).First(&check).Error
		if err == nil {
			for _, reminder := range check.SentReminders {
				if err := discord.DeleteMessage(reminder.ChannelID, reminder.MessageID); err != nil {
					log.Printf("sent reminder delete failed (message: %s): %v", reminder.MessageID, err)
				}
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "メッセージの削除に失敗しました。"})
			return
		}

		if err := discord.DeleteMessage(req.ChannelID, req.MessageID); err != nil {
			log.Printf("announcement delete error (message: %s): %v", req.MessageID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "メッセージの削除に失敗しました。"})
			return
		}

		if check.ID != "" {
			if err := db.Where("reaction_check_id = ?", check.ID).Delete(&models.SentReminder{}).Error; err != nil {
				log.Printf("sent reminder record delete error (id: %s): %v", check.ID, err)
			}
			if err := db.Delete(&check).Error; err != nil {
				log.Printf("reaction check delete error (id: %s): %v", check.ID, err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "メッセージと関連リマインダーを削除しました。"})
	}
}
