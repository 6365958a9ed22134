package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"discord-check-notify/models"
)

// HandleCreateTeam はチームを作成し、作成者を最初のメンバーとして登録する
func HandleCreateTeam(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UID       string `json:"uid"`
			TeamName  string `json:"teamName"`
			GuildID   string `json:"guildId"`
			GuildName string `json:"guildName"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.UID == "" || req.TeamName == "" || req.GuildID == "" || req.GuildName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "不正なリクエストです。"})
			return
		}

		var user models.User
		if err := db.Where("id = ?", req.UID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "ユーザーが見つかりません。"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "サーバーでエラーが発生しました。"})
			return
		}

		team := models.Team{
			ID:        uuid.NewString(),
			Name:      req.TeamName,
			OwnerID:   req.UID,
			GuildID:   req.GuildID,
			GuildName: req.GuildName,
		}
		if err := db.Create(&team).Error; err != nil {
			log.Printf("team create error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "サーバーでエラーが発生しました。"})
			return
		}

		user.AddTeam(team.ID)
		if err := db.Model(&user).Update("teams", user.Teams).Error; err != nil {
			log.Printf("user team list update error (uid: %s): %v", req.UID, err)
		}

		member := models.Member{
			ID:        uuid.NewString(),
			TeamID:    team.ID,
			UserID:    req.UID,
			Name:      user.Name,
			DiscordID: user.DiscordID,
			Order:     0,
		}
		if err := db.Create(&member).Error; err != nil {
			log.Printf("member create error (team: %s): %v", team.ID, err)
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "teamId": team.ID})
	}
}

// HandleJoinTeam は既存チームにユーザーをメンバーとして追加する
func HandleJoinTeam(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UID    string `json:"uid"`
			TeamID string `json:"teamId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.UID == "" || req.TeamID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "不正なリクエストです。"})
			return
		}

		var team models.Team
		if err := db.Where("id = ?", req.TeamID).First(&team).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "指定されたチームが見つかりません。"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "サーバーでエラーが発生しました。"})
			return
		}

		var user models.User
		if err := db.Where("id = ?", req.UID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "ユーザーが見つかりません。"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "サーバーでエラーが発生しました。"})
			return
		}

		user.AddTeam(team.ID)
		if err := db.Model(&user).Update("teams", user.Teams).Error; err != nil {
			log.Printf("user team list update error (uid: %s): %v", req.UID, err)
		}

		// 後から並び替えられるように末尾相当の大きな値を入れておく
		member := models.Member{
			ID:        uuid.NewString(),
			TeamID:    team.ID,
			UserID:    req.UID,
			Name:      user.Name,
			DiscordID: user.DiscordID,
			Order:     999,
		}
		if err := db.Create(&member).Error; err != nil {
			log.Printf("member create error (team: %s): %v", team.ID, err)
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "teamId": team.ID})
	}
}
