package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"discord-check-notify/models"
	"discord-check-notify/services"
)

// HandleRunReminder は定期トリガーの入口
// 稼働表チェックと既読確認チェックを順に実行する
// 個々のレコードの失敗はサービス側でログに落ちるので、ここが500を返すのはスキャン自体が失敗したときだけ
func HandleRunReminder(db *gorm.DB, discord services.DiscordClient, cfg services.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		today := cfg.Today()
		log.Printf("reminder check start (date: %s)", today)

		notifier := services.NewNotifier(discord, cfg)
		subReport, err := services.RunSubmissionCheck(db, notifier, today)
		if err != nil {
			log.Printf("submission check scan error: %v", err)
			c.String(http.StatusInternalServerError, "エラーが発生しました。")
			return
		}

		reactReport, err := services.RunReactionCheck(db, discord, today)
		if err != nil {
			log.Printf("reaction check scan error: %v", err)
			c.String(http.StatusInternalServerError, "エラーが発生しました。")
			return
		}

		c.String(http.StatusOK, fmt.Sprintf(
			"すべてのチェック処理が完了しました。稼働表: %d件処理（%d件通知）、既読確認: %d件処理（%d件リマインド）",
			subReport.Processed, subReport.Notified, reactReport.Processed, reactReport.Reminded))
	}
}

// HandleRemindNow は1件の既読確認レコードを指定して即時リマインドする
// 定期スキャンと違い is_sent は変更しない
func HandleRemindNow(db *gorm.DB, discord services.DiscordClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PostID string `json:"postId" binding:"required"`
			TeamID string `json:"teamId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "postIdが必要です。"})
			return
		}

		var check models.ReactionCheck
		query := db.Where("id = ?", req.PostID)
		if req.TeamID != "" {
			query = query.Where("team_id = ?", req.TeamID)
		}
		if err := query.First(&check).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "対象の投稿が見つかりません。"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "リマインドの送信に失敗しました。"})
			return
		}

		if _, err := services.CheckAndRemind(db, discord, &check); err != nil {
			log.Printf("remind now error (id: %s): %v", check.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "リマインドの送信に失敗しました。"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "リマインドを送信しました。"})
	}
}
