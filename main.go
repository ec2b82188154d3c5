package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/langflix/internal/bot"
	"github.com/example/langflix/internal/catalog"
	"github.com/example/langflix/internal/config"
	"github.com/example/langflix/internal/database"
	"github.com/example/langflix/internal/logger"
	"github.com/example/langflix/internal/progress"
	"github.com/example/langflix/internal/scheduler"
	"github.com/example/langflix/internal/server"
	"github.com/example/langflix/internal/subtitles"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open progress backend", "backend", cfg.ProgressBackend, "error", err)
	}
	defer closeBackend()
	store := progress.NewStore(backend, log)

	cat, err := catalog.LoadDir(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to load catalog", "dir", cfg.DataDir, "error", err)
	}
	cat.ApplyTranslations(cfg.TranslationsDir(), log)

	sessions := server.NewSessionStore()
	handler := server.NewHandler(cat, store, subtitles.NewCache(cfg.SubtitlesDir(), log), sessions, log)
	srv := server.NewServer(server.RouterConfig{
		Handler:        handler,
		Sessions:       sessions,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
	}, ":"+cfg.Port)

	go func() {
		log.Info("Server running", "port", cfg.Port, "backend", cfg.ProgressBackend)
		if err := srv.Run(); err != nil {
			log.Error("Server error", "error", err)
			cancel()
		}
	}()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					log.Debug("Expired sessions removed", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	var tg *bot.Bot
	var sched *scheduler.Scheduler
	if cfg.TelegramToken != "" {
		tg, err = bot.New(cfg.TelegramToken, cat, store, log)
		if err != nil {
			log.Fatal("Failed to create bot", "error", err)
		}
		sched = scheduler.New(tg, store, cat, cfg.ReminderStart, cfg.ReminderEnd, log)
		tg.SetReminders(sched)
		go func() {
			if err := tg.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Bot error", "error", err)
			}
		}()

		if err := sched.Start(); err != nil {
			log.Error("Failed to start reminders", "error", err)
		}
	} else {
		log.Info("TELEGRAM_BOT_TOKEN not set, Telegram practice disabled")
	}

	select {
	case sig := <-sigChan:
		log.Info("Received signal", "signal", sig.String())
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if sched != nil {
		sched.Stop()
	}
	if tg != nil {
		tg.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}
	log.Info("Stopped")
}

// openBackend builds the configured progress backend and a function releasing it
func openBackend(ctx context.Context, cfg *config.Config) (progress.Backend, func(), error) {
	switch cfg.ProgressBackend {
	case config.BackendSQLite, config.BackendPostgres:
		driver := database.DriverSQLite
		if cfg.ProgressBackend == config.BackendPostgres {
			driver = database.DriverPostgres
		}
		db, err := database.Connect(driver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return database.NewUserProgressRepository(db), func() { db.Close() }, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return progress.NewRedisBackend(client, cfg.RedisKey), func() { client.Close() }, nil
	default:
		return progress.NewFileBackend(cfg.ProgressFile()), func() {}, nil
	}
}
