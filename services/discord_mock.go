package services

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// PostedMessage はMockDiscordClientが記録した送信内容
type PostedMessage struct {
	ChannelID string
	Message   *discordgo.MessageSend
}

// MockDiscordClient はテスト用のDiscordClient実装
// 外部呼び出しの代わりに内容を記録し、フィールドで応答を差し替えられる
type MockDiscordClient struct {
	ReactorsResult ReactorsResult
	PostErr        error
	EditErr        error
	DeleteErr      error
	Members        []*discordgo.Member
	MembersErr     error
	Channels       []*discordgo.Channel
	Roles          []*discordgo.Role

	Posted     []PostedMessage
	Edited     []string // "channelID/messageID" 形式
	Deleted    []string
	nextPostID int
}

func (m *MockDiscordClient) GetReactors(channelID, messageID, emoji string, limit int) ReactorsResult {
	return m.ReactorsResult
}

func (m *MockDiscordClient) PostMessage(channelID string, msg *discordgo.MessageSend) (string, error) {
	if m.PostErr != nil {
		return "", m.PostErr
	}
	m.nextPostID++
	m.Posted = append(m.Posted, PostedMessage{ChannelID: channelID, Message: msg})
	return fmt.Sprintf("posted-%d", m.nextPostID), nil
}

func (m *MockDiscordClient) EditMessage(channelID, messageID, content string) error {
	if m.EditErr != nil {
		return m.EditErr
	}
	m.Edited = append(m.Edited, channelID+"/"+messageID)
	return nil
}

func (m *MockDiscordClient) DeleteMessage(channelID, messageID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, channelID+"/"+messageID)
	return nil
}

func (m *MockDiscordClient) GuildMembers(guildID string, limit int) ([]*discordgo.Member, error) {
	if m.MembersErr != nil {
		return nil, m.MembersErr
	}
	return m.Members, nil
}

func (m *MockDiscordClient) GuildTextChannels(guildID string) ([]*discordgo.Channel, error) {
	return m.Channels, nil
}

func (m *MockDiscordClient) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	return m.Roles, nil
}
