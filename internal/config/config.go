package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env       string `mapstructure:"env"`
	Port      int    `mapstructure:"port"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type StoreConfig struct {
	// Backend selects the document store implementation:
	// memory, redis, pebble, postgres or mongo.
	Backend     string `mapstructure:"backend"`
	PebblePath  string `mapstructure:"pebble_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	MongoURI    string `mapstructure:"mongo_uri"`
	MongoDB     string `mapstructure:"mongo_db"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

type BusConfig struct {
	PollSeconds int `mapstructure:"poll_seconds"`

	// derived
	PollInterval time.Duration
}

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Store    StoreConfig    `mapstructure:"store"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Bus      BusConfig      `mapstructure:"bus"`
}

// Load reads configuration from an optional yaml file plus the environment.
// Every field has a default so a bare process comes up on the memory backend.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("wanderlink")
	v.AutomaticEnv()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.jwt_secret", "change-me-in-production")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.pebble_path", "./data/wanderlink")
	v.SetDefault("store.mongo_db", "wanderlink")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "wl:")
	v.SetDefault("kafka.topic", "wanderlink.events")
	v.SetDefault("bus.poll_seconds", 3)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Bus.PollSeconds <= 0 {
		c.Bus.PollSeconds = 3
	}
	c.Bus.PollInterval = time.Duration(c.Bus.PollSeconds) * time.Second
	return &c, nil
}
