package services

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/slack-go/slack"

	"discord-check-notify/models"
)

// 提出リマインダーのembedカラー（赤系）
const reminderEmbedColor = 15158332

// NonSubmitter は稼働表が未提出のメンバー
type NonSubmitter struct {
	Name      string
	DiscordID string
}

// Notifier は未提出・未反応の通知メッセージを組み立てて送信する
// 送信失敗は呼び出し元でログに残すだけで、レコードの処理完了扱いは妨げない
type Notifier struct {
	discord    DiscordClient
	webhookURL string
}

func NewNotifier(discord DiscordClient, cfg Config) *Notifier {
	return &Notifier{
		discord:    discord,
		webhookURL: cfg.WebhookURL,
	}
}

// MentionList はメンション文字列のリストを作る
// DiscordIDがないメンバーは表示名のまま載せる
func MentionList(nonSubmitters []NonSubmitter) []string {
	mentions := make([]string, 0, len(nonSubmitters))
	for _, m := range nonSubmitters {
		if m.DiscordID != "" {
			mentions = append(mentions, fmt.Sprintf("<@%s>", m.DiscordID))
		} else {
			mentions = append(mentions, m.Name)
		}
	}
	return mentions
}

// SendSubmissionReminder は未提出者への稼働表リマインダーを送信する
// 通知先チャンネルが指定されていればembed付きでDiscordに投稿し、
// なければ設定済みのIncoming Webhookにプレーンテキストで送る
func (n *Notifier) SendSubmissionReminder(reminder models.SubmissionReminder, nonSubmitters []NonSubmitter) error {
	mentions := MentionList(nonSubmitters)

	if reminder.ChannelID != "" {
		embed := n.buildReminderEmbed(reminder, mentions)
		msg := &discordgo.MessageSend{
			Content: strings.Join(mentions, " "),
			Embeds:  []*discordgo.MessageEmbed{embed},
		}
		_, err := n.discord.PostMessage(reminder.ChannelID, msg)
		return err
	}

	if n.webhookURL != "" {
		text := n.buildReminderText(reminder, mentions)
		return slack.PostWebhook(n.webhookURL, &slack.WebhookMessage{Text: text})
	}

	return fmt.Errorf("no notify destination: reminder %s has no channel and no webhook is configured", reminder.ID)
}

func (n *Notifier) buildReminderEmbed(reminder models.SubmissionReminder, mentions []string) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(mentions))
	for _, m := range mentions {
		lines = append(lines, "- "+m)
	}

	return &discordgo.MessageEmbed{
		Title: "【稼働表提出リマインダー🔔】",
		Description: fmt.Sprintf("**%s** が提出期限です！\n**%s** までの稼働表が未提出のため、ご協力をお願いします。",
			reminder.SubmissionDeadline, reminder.ScheduleEndDate),
		Color: reminderEmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "未提出者",
				Value: strings.Join(lines, "\n"),
			},
		},
	}
}

func (n *Notifier) buildReminderText(reminder models.SubmissionReminder, mentions []string) string {
	return fmt.Sprintf("【稼働表提出リマインダー】%s が提出期限です。%s までの稼働表が未提出です: %s",
		reminder.SubmissionDeadline, reminder.ScheduleEndDate, strings.Join(mentions, " "))
}

// BuildReactionReminderContent は既読確認リマインドの本文を組み立てる
// 元のお知らせメッセージへのリンクを含める
func BuildReactionReminderContent(check *models.ReactionCheck, nonReactors []string) string {
	mentions := make([]string, 0, len(nonReactors))
	for _, id := range nonReactors {
		mentions = append(mentions, fmt.Sprintf("<@%s>", id))
	}

	link := MessageLink(check.GuildID, check.PostChannelID, check.MessageID)
	return fmt.Sprintf("%s\n\n**【確認リマインダー】**\n下記のメッセージをまだ確認していません。内容を確認の上、リアクションをお願いします。\n%s",
		strings.Join(mentions, " "), link)
}

// MessageLink はDiscordのメッセージへの直リンクを作る
func MessageLink(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}
