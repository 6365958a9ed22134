package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"discord-check-notify/models"
	"discord-check-notify/services"
)

// HandleAuthRedirect はDiscordの認可画面へリダイレクトする
// フロントエンドのUIDをstateに載せてコールバックまで引き回す
func HandleAuthRedirect(cfg services.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.Query("uid")
		if uid == "" {
			c.String(http.StatusBadRequest, "uidが必要です。")
			return
		}

		authURL := cfg.OAuth().AuthCodeURL(uid, oauth2.SetAuthURLParam("prompt", "consent"))
		c.Redirect(http.StatusFound, authURL)
	}
}

type discordUserResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
}

// HandleAuthCallback は認可コードをトークンに交換し、Discordアカウント情報をユーザーに紐づける
// 成否はフロントエンドへのリダイレクトで伝える
func HandleAuthCallback(db *gorm.DB, cfg services.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("code")
		uid := c.Query("state")
		if code == "" || uid == "" {
			c.String(http.StatusBadRequest, "codeとstateが必要です。")
			return
		}

		oauthConfig := cfg.OAuth()
		token, err := oauthConfig.Exchange(c.Request.Context(), code)
		if err != nil {
			log.Printf("oauth token exchange error (uid: %s): %v", uid, err)
			c.Redirect(http.StatusFound, cfg.FrontendURL+"/signup.html?discord=error")
			return
		}

		discordUser, err := fetchDiscordUser(c, oauthConfig, token)
		if err != nil {
			log.Printf("discord user fetch error (uid: %s): %v", uid, err)
			c.Redirect(http.StatusFound, cfg.FrontendURL+"/signup.html?discord=error")
			return
		}

		user := models.User{
			ID:              uid,
			DiscordID:       discordUser.ID,
			DiscordUsername: discordUser.Username + "#" + discordUser.Discriminator,
			AccessToken:     token.AccessToken,
			RefreshToken:    token.RefreshToken,
			TokenExpiresAt:  token.Expiry,
		}
		err = db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"discord_id", "discord_username", "access_token", "refresh_token", "token_expires_at",
			}),
		}).Create(&user).Error
		if err != nil {
			log.Printf("user upsert error (uid: %s): %v", uid, err)
			c.Redirect(http.StatusFound, cfg.FrontendURL+"/signup.html?discord=error")
			return
		}

		c.Redirect(http.StatusFound, cfg.FrontendURL+"/signup.html?discord=success")
	}
}

// fetchDiscordUser は取得したトークンで本人のDiscordアカウント情報を引く
func fetchDiscordUser(c *gin.Context, oauthConfig *oauth2.Config, token *oauth2.Token) (*discordUserResponse, error) {
	client := oauthConfig.Client(c.Request.Context(), token)
	resp, err := client.Get("https://discord.com/api/users/@me")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var user discordUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
