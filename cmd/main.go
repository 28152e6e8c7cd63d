package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wanderlink/backend/internal/alert"
	"wanderlink/backend/internal/api/handler"
	"wanderlink/backend/internal/badge"
	"wanderlink/backend/internal/changebus"
	"wanderlink/backend/internal/chat"
	"wanderlink/backend/internal/config"
	"wanderlink/backend/internal/contacts"
	"wanderlink/backend/internal/docstore"
	"wanderlink/backend/internal/events"
	"wanderlink/backend/internal/expert"
	"wanderlink/backend/internal/logger"
	"wanderlink/backend/internal/notify"
	"wanderlink/backend/internal/sos"
)

// openStore builds the configured document store backend. Postgres also
// returns the gorm handle so the expert catalog can share the connection.
func openStore(cfg *config.Config) (docstore.Store, *gorm.DB, error) {
	switch cfg.Store.Backend {
	case "memory":
		return docstore.NewMemoryStore(), nil, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return docstore.NewRedisStore(rdb, cfg.Redis.Prefix), nil, nil
	case "pebble":
		store, err := docstore.OpenPebbleStore(cfg.Store.PebblePath)
		return store, nil, err
	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.Store.PostgresDSN), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		store, err := docstore.NewPostgresStore(db)
		return store, db, err
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Store.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, nil, fmt.Errorf("mongo ping: %w", err)
		}
		return docstore.NewMongoStore(client, cfg.Store.MongoDB), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func main() {
	// Optional: containers inject the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("WANDERLINK_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.App.Env == "development"); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	logger.Log.Infow("starting wanderlink engine", "backend", cfg.Store.Backend, "port", cfg.App.Port)

	store, db, err := openStore(cfg)
	if err != nil {
		logger.Log.Fatalw("store init failed", "error", err)
	}
	store = docstore.WithMetrics(store, cfg.Store.Backend)

	bus := changebus.New(store, cfg.Bus.PollInterval)
	defer bus.Close()

	var pub events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		pub = kp
	}

	var alerter sos.Alerter
	if cfg.Telegram.Token != "" {
		relay, err := alert.NewTelegramRelay(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			logger.Log.Warnw("telegram relay disabled", "error", err)
		} else {
			alerter = relay
		}
	}

	notifySvc := notify.NewService(store, pub)
	contactsWf := contacts.NewWorkflow(store, notifySvc, pub)
	sosWf := sos.NewWorkflow(store, notifySvc, pub, alerter)
	chatSvc := chat.NewService(store, notifySvc, pub)
	badgeAgg := badge.NewAggregator(store)
	catalog, err := expert.NewCatalog(db)
	if err != nil {
		logger.Log.Fatalw("expert catalog init failed", "error", err)
	}

	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handler.NewHandler(cfg.App.JWTSecret, bus, notifySvc, contactsWf, sosWf, chatSvc, badgeAgg, catalog)
	h.Register(r)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.App.Port),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Infow("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Warnw("shutdown incomplete", "error", err)
	}
}
