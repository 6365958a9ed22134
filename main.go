package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"discord-check-notify/handlers"
	"discord-check-notify/models"
	"discord-check-notify/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := services.LoadConfig()

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	err = db.AutoMigrate(
		&models.SubmissionReminder{},
		&models.ReactionCheck{},
		&models.SentReminder{},
		&models.Member{},
		&models.DailySchedule{},
		&models.Team{},
		&models.User{},
	)
	if err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	discord, err := services.NewDiscordClient(cfg.BotToken)
	if err != nil {
		log.Fatalf("discord client error: %v", err)
	}

	// 外部のcronからのHTTPトリガーに加えて、設定があればプロセス内でも定期実行する
	// レコードは条件付きUPDATEでクレームするので二重に走っても重複通知にはならない
	if cfg.CheckInterval > 0 {
		go runScheduledChecks(db, discord, cfg)
	}

	r := gin.Default()

	r.GET("/run-reminder", handlers.HandleRunReminder(db, discord, cfg))
	r.POST("/post-reaction-check", handlers.HandlePostReactionCheck(db, discord))
	r.POST("/api/remind-now", handlers.HandleRemindNow(db, discord))
	r.GET("/api/reaction-checks", handlers.HandleListReactionChecks(db))
	r.PATCH("/api/edit-message", handlers.HandleEditMessage(db, discord))
	r.DELETE("/api/delete-message", handlers.HandleDeleteMessage(db, discord))

	r.GET("/api/discord/members", handlers.HandleListGuildMembers(discord))
	r.GET("/api/discord/channels", handlers.HandleListGuildChannels(discord))
	r.GET("/api/discord/roles", handlers.HandleListGuildRoles(discord))

	r.GET("/auth/discord", handlers.HandleAuthRedirect(cfg))
	r.GET("/api/discord/callback", handlers.HandleAuthCallback(db, cfg))

	r.POST("/api/create-team", handlers.HandleCreateTeam(db))
	r.POST("/api/join-team", handlers.HandleJoinTeam(db))

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}

func runScheduledChecks(db *gorm.DB, discord services.DiscordClient, cfg services.Config) {
	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for range ticker.C {
		today := cfg.Today()
		notifier := services.NewNotifier(discord, cfg)

		if _, err := services.RunSubmissionCheck(db, notifier, today); err != nil {
			log.Printf("scheduled submission check error: %v", err)
		}
		if _, err := services.RunReactionCheck(db, discord, today); err != nil {
			log.Printf("scheduled reaction check error: %v", err)
		}
	}
}
