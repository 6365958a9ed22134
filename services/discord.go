package services

import (
	"net/http"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// ReactionFetchStatus はリアクション照会の結果を分類する
type ReactionFetchStatus int

const (
	// ReactionFetchOK は照会成功（0件も含む）
	ReactionFetchOK ReactionFetchStatus = iota
	// ReactionFetchNoData はメッセージにまだリアクションが一度も付いていない状態
	// Discord APIはこのとき404を返すが、エラーではなく「リアクター0人」と同義
	ReactionFetchNoData
	// ReactionFetchTransient はネットワーク障害や5xxなど、再試行で解消しうる失敗
	ReactionFetchTransient
	// ReactionFetchPermanent は権限不足など、再試行しても解消しない失敗
	ReactionFetchPermanent
)

// ReactorsResult はリアクション照会の結果
// Statusで分岐し、UserIDsはReactionFetchOKのときだけ有効
type ReactorsResult struct {
	Status  ReactionFetchStatus
	UserIDs []string
	Err     error
}

// DiscordClient はチェック処理が使うDiscord API操作の抽象
// テストではフェイク実装に差し替える
type DiscordClient interface {
	GetReactors(channelID, messageID, emoji string, limit int) ReactorsResult
	PostMessage(channelID string, msg *discordgo.MessageSend) (messageID string, err error)
	EditMessage(channelID, messageID, content string) error
	DeleteMessage(channelID, messageID string) error
	GuildMembers(guildID string, limit int) ([]*discordgo.Member, error)
	GuildTextChannels(guildID string) ([]*discordgo.Channel, error)
	GuildRoles(guildID string) ([]*discordgo.Role, error)
}

type discordClient struct {
	session *discordgo.Session
}

// NewDiscordClient はBotトークンからREST専用のクライアントを作る
// Gateway接続（session.Open）はしない
func NewDiscordClient(botToken string) (DiscordClient, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, err
	}
	return &discordClient{session: session}, nil
}

func (c *discordClient) GetReactors(channelID, messageID, emoji string, limit int) ReactorsResult {
	users, err := c.session.MessageReactions(channelID, messageID, emoji, limit, "", "")
	if err != nil {
		return ReactorsResult{Status: classifyRESTError(err), Err: err}
	}

	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	return ReactorsResult{Status: ReactionFetchOK, UserIDs: ids}
}

func (c *discordClient) PostMessage(channelID string, msg *discordgo.MessageSend) (string, error) {
	posted, err := c.session.ChannelMessageSendComplex(channelID, msg)
	if err != nil {
		return "", err
	}
	return posted.ID, nil
}

func (c *discordClient) EditMessage(channelID, messageID, content string) error {
	_, err := c.session.ChannelMessageEdit(channelID, messageID, content)
	return err
}

func (c *discordClient) DeleteMessage(channelID, messageID string) error {
	return c.session.ChannelMessageDelete(channelID, messageID)
}

func (c *discordClient) GuildMembers(guildID string, limit int) ([]*discordgo.Member, error) {
	return c.session.GuildMembers(guildID, "", limit)
}

// GuildTextChannels はテキストチャンネルのみを名前順で返す
func (c *discordClient) GuildTextChannels(guildID string) ([]*discordgo.Channel, error) {
	channels, err := c.session.GuildChannels(guildID)
	if err != nil {
		return nil, err
	}

	textChannels := make([]*discordgo.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText {
			textChannels = append(textChannels, ch)
		}
	}
	sort.Slice(textChannels, func(i, j int) bool {
		return textChannels[i].Name < textChannels[j].Name
	})
	return textChannels, nil
}

func (c *discordClient) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	return c.session.GuildRoles(guildID)
}

// classifyRESTError はDiscord APIのエラーを再試行可否で分類する
// 404はリアクション未付与の正常系なのでNoData扱い
func classifyRESTError(err error) ReactionFetchStatus {
	restErr, ok := err.(*discordgo.RESTError)
	if !ok || restErr.Response == nil {
		// HTTPまで到達していない（ネットワーク断など）は再試行に回す
		return ReactionFetchTransient
	}

	status := restErr.Response.StatusCode
	switch {
	case status == http.StatusNotFound:
		return ReactionFetchNoData
	case status >= 500 || status == http.StatusTooManyRequests:
		return ReactionFetchTransient
	default:
		return ReactionFetchPermanent
	}
}
