package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"leadmonitor/internal/config"
	"leadmonitor/internal/handler"
	"leadmonitor/internal/matcher"
	"leadmonitor/internal/monitor"
	"leadmonitor/internal/reddit"
	"leadmonitor/internal/repository"
	"leadmonitor/internal/scanner"
	"leadmonitor/internal/scheduler"
	"leadmonitor/internal/server"
	"leadmonitor/internal/service"
	"leadmonitor/internal/sink"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		cfgPath = env
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Initialize stores
	seenStore := repository.NewSeenStore(db, logger)
	leadRepo := repository.NewLeadRepository(db, logger)
	convoRepo := repository.NewConversationRepository(db, logger)

	// Initialize sinks
	collectorClient := sink.NewCollectorClient(cfg.Sinks.BackendURL, logger)
	if !collectorClient.Enabled() {
		logger.Info("Collector sync disabled (no backend URL configured)")
	}

	var notifiers []sink.Notifier
	webhookNotifier := sink.NewWebhookNotifier(cfg.Sinks.WebhookURL, logger)
	if cfg.Sinks.WebhookURL != "" {
		notifiers = append(notifiers, webhookNotifier)
	} else {
		logger.Info("Webhook notifications disabled (no URL configured)")
	}
	telegramNotifier, err := sink.NewTelegramNotifier(cfg.Sinks.TelegramToken, cfg.Sinks.TelegramChatID, logger)
	if err != nil {
		logger.Warn("Failed to initialize Telegram notifier, continuing without it", zap.Error(err))
	} else if telegramNotifier != nil {
		notifiers = append(notifiers, telegramNotifier)
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize scheduler and the engine jobs. Missing Reddit
	// credentials leave the dashboard API running on its own.
	sched := scheduler.New(logger)
	redditClient, err := reddit.NewClient(
		cfg.Reddit.ClientID,
		cfg.Reddit.ClientSecret,
		cfg.Reddit.RefreshToken,
		cfg.Reddit.Username,
		logger,
	)
	if err != nil {
		if errors.Is(err, reddit.ErrNoCredentials) {
			logger.Warn("Reddit credentials not configured, engine jobs disabled")
		} else {
			logger.Fatal("Failed to create Reddit client", zap.Error(err))
		}
	} else {
		postScanner := scanner.New(
			redditClient,
			collectorClient,
			seenStore,
			leadRepo,
			collectorClient,
			notifiers,
			matcher.New(cfg.Discovery.Keywords),
			scanner.Config{
				Subreddits: cfg.Discovery.Subreddits,
				PostLimit:  cfg.Discovery.PostLimit,
				LeadScore:  cfg.Discovery.LeadScore,
			},
			logger,
		)
		dmMonitor := monitor.New(
			redditClient,
			seenStore,
			convoRepo,
			collectorClient,
			notifiers,
			monitor.Config{
				AutoReplyEnabled: cfg.Conversation.AutoReplyEnabled,
				ReplySubject:     cfg.Conversation.ReplySubject,
				ReplyBody:        cfg.Conversation.ReplyBody,
			},
			logger,
		)

		sched.Register(handler.JobMonitorPosts, time.Duration(cfg.Discovery.IntervalSeconds)*time.Second, postScanner.Scan)
		sched.Register(handler.JobCheckDMs, time.Duration(cfg.Conversation.IntervalSeconds)*time.Second, dmMonitor.CheckMessages)

		if err := sched.Start(ctx, handler.JobMonitorPosts); err != nil {
			logger.Error("Failed to start post monitor", zap.Error(err))
		}
		if err := sched.Start(ctx, handler.JobCheckDMs); err != nil {
			logger.Error("Failed to start DM monitor", zap.Error(err))
		}
	}

	// Initialize auth for the operator surface
	authService, err := service.NewAuthService(cfg.Server.AdminUsername, cfg.Server.AdminPassword, cfg.Server.JWTSecret, logger)
	if err != nil {
		logger.Fatal("Failed to initialize auth service", zap.Error(err))
	}

	// Initialize and run the server
	srv := server.NewServer(db, sched, authService, ctx, logger)
	go func() {
		if err := srv.Run(cfg.Server.Port); err != nil {
			logger.Error("Server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	sched.Wait()
	logger.Info("Application stopped.")
}
