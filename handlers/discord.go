package handlers

import (
	"log"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"discord-check-notify/services"
)

// HandleListGuildMembers はギルドのメンバー一覧を返す（Botは除外、名前順）
// 表示名はニックネーム優先
func HandleListGuildMembers(discord services.DiscordClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		guildID := c.Query("guildId")
		if guildID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "サーバーIDが必要です。"})
			return
		}

		members, err := discord.GuildMembers(guildID, guildMemberFetchLimit)
		if err != nil {
			log.Printf("guild member fetch error (guild: %s): %v", guildID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "メンバーの取得に失敗しました。"})
			return
		}

		type memberView struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		list := make([]memberView, 0, len(members))
		for _, member := range members {
			if member.User == nil || member.User.Bot {
				continue
			}
			name := member.Nick
			if name == "" {
				name = member.User.Username
			}
			list = append(list, memberView{ID: member.User.ID, Name: name})
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

		c.JSON(http.StatusOK, list)
	}
}

// HandleListGuildChannels はギルドのテキストチャンネル一覧を返す
func HandleListGuildChannels(discord services.DiscordClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		guildID := c.Query("guildId")
		if guildID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "サーバーIDが必要です。"})
			return
		}

		channels, err := discord.GuildTextChannels(guildID)
		if err != nil {
			log.Printf("guild channel fetch error (guild: %s): %v", guildID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "チャンネルの取得に失敗しました。"})
			return
		}

		type channelView struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		list := make([]channelView, 0, len(channels))
		for _, ch := range channels {
			list = append(list, channelView{ID: ch.ID, Name: ch.Name})
		}

		c.JSON(http.StatusOK, list)
	}
}

// HandleListGuildRoles はギルドのロール一覧を返す
// @everyoneとBot管理のロールは除外する
func HandleListGuildRoles(discord services.DiscordClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		guildID := c.Query("guildId")
		if guildID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "サーバーIDが必要です。"})
			return
		}

		roles, err := discord.GuildRoles(guildID)
		if err != nil {
			log.Printf("guild role fetch error (guild: %s): %v", guildID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "ロールの取得に失敗しました。"})
			return
		}

		type roleView struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Color int    `json:"color"`
		}
		list := make([]roleView, 0, len(roles))
		for _, role := range roles {
			if role.Name == "@everyone" || role.Managed {
				continue
			}
			list = append(list, roleView{ID: role.ID, Name: role.Name, Color: role.Color})
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

		c.JSON(http.StatusOK, list)
	}
}
