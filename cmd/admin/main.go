// Admin tool for operating on a live document store: inspecting records,
// resolving stuck SOS requests, purging notification lists.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wanderlink/backend/internal/config"
	"wanderlink/backend/internal/docstore"
	"wanderlink/backend/internal/logger"
	"wanderlink/backend/internal/models"
	"wanderlink/backend/internal/notify"
	"wanderlink/backend/internal/sos"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: admin <command> [args]

commands:
  list-docs [prefix]           list record names
  show <name>                  dump one record
  list-sos                     list SOS requests with status
  resolve-sos <requestId>      force-resolve a stuck request
  purge-notifications <userId> drop a user's notification list`)
	os.Exit(2)
}

func openStore(cfg *config.Config) (docstore.Store, error) {
	switch cfg.Store.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			return nil, err
		}
		return docstore.NewRedisStore(rdb, cfg.Redis.Prefix), nil
	case "pebble":
		return docstore.OpenPebbleStore(cfg.Store.PebblePath)
	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.Store.PostgresDSN), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		return docstore.NewPostgresStore(db)
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Store.MongoURI))
		if err != nil {
			return nil, err
		}
		return docstore.NewMongoStore(client, cfg.Store.MongoDB), nil
	default:
		return nil, fmt.Errorf("backend %q has no shared state to administer", cfg.Store.Backend)
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	_ = godotenv.Load()
	if err := logger.Init(true); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("WANDERLINK_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "store:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "list-docs":
		prefix := ""
		if len(os.Args) > 2 {
			prefix = os.Args[2]
		}
		names, err := store.List(ctx, prefix)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, name := range names {
			fmt.Println(name)
		}

	case "show":
		if len(os.Args) < 3 {
			usage()
		}
		doc, err := store.Read(ctx, os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("version %d\n%s\n", doc.Version, doc.Value)

	case "list-sos":
		doc, err := store.Read(ctx, sos.RecordName)
		if err == docstore.ErrNotFound {
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		var requests []models.SOSRequest
		if err := json.Unmarshal(doc.Value, &requests); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, req := range requests {
			fmt.Printf("%s\t%s\t%s\t%s\t%d helpers\n", req.ID, req.Status, req.UrgencyLevel, req.UserPseudo, len(req.Helpers))
		}

	case "resolve-sos":
		if len(os.Args) < 3 {
			usage()
		}
		id := os.Args[2]
		_, err := docstore.Update(ctx, store, sos.RecordName, func(current []byte) ([]byte, error) {
			list := docstore.DecodeList[models.SOSRequest](sos.RecordName, current)
			for i := range list {
				if list[i].ID == id {
					list[i].Status = models.SOSResolved
					return json.Marshal(list)
				}
			}
			return nil, fmt.Errorf("request %s not found", id)
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("resolved", id)

	case "purge-notifications":
		if len(os.Args) < 3 {
			usage()
		}
		if err := store.Remove(ctx, notify.RecordName(os.Args[2])); err != nil && err != docstore.ErrNotFound {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("purged", os.Args[2])

	default:
		usage()
	}
}
