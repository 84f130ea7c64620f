package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"github.com/sunqar/zhk-support-bot/internal/config"
	"github.com/sunqar/zhk-support-bot/internal/database"
	"github.com/sunqar/zhk-support-bot/internal/dialog"
	"github.com/sunqar/zhk-support-bot/internal/handler"
	"github.com/sunqar/zhk-support-bot/internal/notify"
	"github.com/sunqar/zhk-support-bot/internal/queue"
	"github.com/sunqar/zhk-support-bot/internal/report"
	"github.com/sunqar/zhk-support-bot/internal/repository"
	"github.com/sunqar/zhk-support-bot/internal/router"
	"github.com/sunqar/zhk-support-bot/internal/service"
	"github.com/sunqar/zhk-support-bot/internal/session"
	"github.com/sunqar/zhk-support-bot/internal/telegram"
	"github.com/sunqar/zhk-support-bot/internal/ticket"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	users := repository.NewUserRepo(db)
	residents := repository.NewResidentRepo(db)
	tickets := repository.NewTicketRepo(db)

	adminResidentID, err := service.EnsureAdminProfile(ctx, users, residents, cfg.DirectorChatID)
	if err != nil {
		log.Fatalf("bootstrap admin profile: %v", err)
	}

	// Redis is preferred for sessions; a dead Redis degrades to in-process
	// storage instead of refusing to start.
	var sessions session.Store
	if rdb := config.NewRedisClient(); rdb != nil {
		sessions = session.NewRedisStore(rdb)
	} else {
		log.Println("redis unavailable, using in-memory sessions")
		sessions = session.NewMemoryStore()
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	sender := telegram.NewSender(api)

	publisher := queue.NewPublisher(cfg.AMQPURL)
	engine := ticket.NewEngine(tickets, residents, publisher, cfg.Triage.UrgentKeywords, adminResidentID)
	exporter := report.NewExporter(tickets, os.Getenv("REPORT_FONT"))
	resolver := service.NewRoleResolver(users, residents, cfg.DirectorChatID)
	machine := dialog.New(cfg.Triage)

	// Notification worker: consumes ticket events and fans them out to chat.
	dispatcher := notify.NewDispatcher(sender, cfg.NotifyThrottle)
	notifier := notify.NewNotifier(dispatcher, users, cfg.DirectorChatID)
	go queue.StartConsumer(ctx, cfg.AMQPURL, notifier.Handle)

	// Operational HTTP server: health check and the staff read API.
	e := echo.New()
	e.HideBanner = true
	auth := handler.NewAuthHandler(cfg.JWTSecret, cfg.StaffAPIHash, cfg.AccessTTLMin)
	ticketAPI := handler.NewTicketHandler(engine, exporter, cfg.PageSize)
	router.RegisterRoutes(e, db, auth, ticketAPI, cfg.JWTSecret)
	go func() {
		if err := e.Start(":" + cfg.HTTPPort); err != nil {
			log.Printf("http server: %v", err)
		}
	}()

	h := telegram.NewHandler(machine, sessions, resolver, engine, users, residents, exporter, sender, cfg.PageSize)
	bot := telegram.NewBot(api, h)
	log.Printf("support bot starting (env=%s)", cfg.Env)
	bot.Run(ctx)

	if err := e.Shutdown(context.Background()); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	log.Println("support bot stopped")
}
