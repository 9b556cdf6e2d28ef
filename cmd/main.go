package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"campusreport/backend/internal/access"
	"campusreport/backend/internal/api/handler"
	"campusreport/backend/internal/config"
	"campusreport/backend/internal/localization"
	"campusreport/backend/internal/objectstore"
	"campusreport/backend/internal/observability"
	"campusreport/backend/internal/report"
	"campusreport/backend/internal/storage"
	"campusreport/backend/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupStorage(cfg *config.Config) storage.Storage {
	if cfg.StorageDriver == config.DriverMemory {
		log.Println("WARNING: Using in-memory storage, data is lost on restart")
		return storage.NewMemoryStore()
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database connection established, migrations complete.")
	return storage.NewStorageService(db)
}

func setupGuard(ctx context.Context, cfg *config.Config) access.LookupGuard {
	if cfg.RedisAddr == "" {
		return access.NewMemoryGuard(config.LookupMaxFailures, config.LookupWindow)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}
	return access.NewRedisGuard(rdb, config.LookupMaxFailures, config.LookupWindow)
}

func setupObjects(ctx context.Context, cfg *config.Config) objectstore.Store {
	if cfg.S3Endpoint == "" && cfg.S3AccessKey == "" {
		log.Println("WARNING: No object storage configured, attachments are kept in memory")
		return objectstore.NewMemory()
	}

	store, err := objectstore.NewS3Store(ctx, objectstore.S3ClientConfig{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		log.Fatalf("Failed to configure object storage: %v", err)
	}
	return store
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting campus report backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	localizer, err := localization.New()
	if err != nil {
		log.Fatalf("Failed to load locales: %v", err)
	}
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	svc := report.NewService(setupStorage(cfg), setupObjects(ctx, cfg))
	svc.Guard = setupGuard(ctx, cfg)
	svc.Metrics = metrics
	svc.Location = cfg.Location
	svc.AttachmentBucket = cfg.AttachmentBucket
	svc.DonationBucket = cfg.DonationBucket

	if cfg.TelegramBotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			log.Fatalf("Failed to start Telegram bot: %v", err)
		}
		log.Printf("INFO: Authorized on Telegram account %s", bot.Self.UserName)
		if cfg.TelegramAdminChatID != 0 {
			svc.Notifier = telegram.NewAdminNotifier(bot, cfg.TelegramAdminChatID, localizer)
		}
		go telegram.NewBotService(bot, svc, cfg.TelegramAdminChatID, localizer).Run(ctx)
	}

	h := handler.NewHandler(svc, localizer, metrics)
	h.JWTSecret = cfg.AuthJWTSecret
	h.JWTIssuer = cfg.AuthJWTIssuer
	h.TrustedProxies = cfg.TrustedProxies
	if h.JWTSecret == "" {
		log.Println("WARNING: AUTH_JWT_SECRET is empty, admin routes will reject every request")
	}

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        handler.NewRouter(h),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("INFO: Listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("INFO: Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Graceful shutdown failed: %v", err)
	}
}
