package services

import (
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// Config は起動時に環境変数から組み立てて各ハンドラ・サービスに注入する
// サービス側で os.Getenv を直接読まないこと（テストで差し替えられなくなる）
type Config struct {
	BotToken     string
	ClientID     string
	ClientSecret string
	AppBaseURL   string // OAuthコールバックの組み立てに使う自分自身のURL
	FrontendURL  string
	WebhookURL   string // 通知先チャンネル未指定時のフォールバック（Incoming Webhook）
	DBPath       string
	ListenAddr   string
	Location     *time.Location
	// CheckInterval が0より大きい場合、プロセス内タイマーでも定期チェックを回す
	CheckInterval time.Duration
}

// LoadConfig は環境変数からConfigを組み立てる
// .env の読み込みはmain側で godotenv が行う
func LoadConfig() Config {
	cfg := Config{
		BotToken:     os.Getenv("DISCORD_BOT_TOKEN"),
		ClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		ClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		AppBaseURL:   os.Getenv("APP_BASE_URL"),
		FrontendURL:  os.Getenv("FRONTEND_URL"),
		WebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),
		DBPath:       os.Getenv("DB_PATH"),
		ListenAddr:   os.Getenv("LISTEN_ADDR"),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = "check_notify.db"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.UTC
	}
	cfg.Location = loc

	if v := os.Getenv("CHECK_INTERVAL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.CheckInterval = time.Duration(minutes) * time.Minute
		}
	}

	return cfg
}

// Today は設定タイムゾーンでの今日の日付文字列を返す
func (c Config) Today() string {
	return time.Now().In(c.Location).Format(DateLayout)
}

// OAuth はDiscordのOAuth2認可コードフロー用の設定を返す
func (c Config) OAuth() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.AppBaseURL + "/api/discord/callback",
		Scopes:       []string{"identify", "guilds"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://discord.com/api/oauth2/authorize",
			TokenURL:  "https://discord.com/api/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
