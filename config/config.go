package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database  DatabaseConfigs  `toml:"database"`
	ApiServer APIServerConfigs `toml:"api_server"`
	Auth      AuthConfigs      `toml:"auth"`
	Storage   S3Configs        `toml:"storage"`
	File      FileConfigs      `toml:"file"`
	Quest     QuestConfigs     `toml:"quest"`
	Redis     RedisConfigs     `toml:"redis"`
	Kafka     KafkaConfigs     `toml:"kafka"`
	Social    SocialConfigs    `toml:"social"`
	Snowflake SnowflakeConfigs `toml:"snowflake"`
}

type DatabaseConfigs struct {
	// Driver is one of mysql, postgres or sqlite.
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	LogLevel string `toml:"log_level"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			d.Host,
			d.Port,
			d.User,
			d.Password,
			d.Database,
		)
	case "sqlite":
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User,
			d.Password,
			d.Host,
			d.Port,
			d.Database,
		)
	}
}

type APIServerConfigs struct {
	ServerConfigs

	MaxLimit     int `toml:"max_limit"`
	DefaultLimit int `toml:"default_limit"`

	// RequestsPerSecond and Burst configure the per-user token bucket applied
	// to write endpoints.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`

	// BehindProxy makes the rate limiter trust the X-Forwarded-For header.
	BehindProxy bool `toml:"behind_proxy"`

	AllowedOrigins []string `toml:"allowed_origins"`
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	TokenSecret string       `toml:"token_secret"`
	AccessToken TokenConfigs `toml:"access_token"`
}

type TokenConfigs struct {
	Name       string        `toml:"name"`
	Expiration time.Duration `toml:"expiration"`
}

type S3Configs struct {
	Region         string `toml:"region"`
	Endpoint       string `toml:"endpoint"`
	PublicEndpoint string `toml:"public_endpoint"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	Bucket         string `toml:"bucket"`
	SSLDisabled    bool   `toml:"ssl_disabled"`
}

type FileConfigs struct {
	MaxSize int64 `toml:"max_size"`
}

type QuestConfigs struct {
	// PostToSocial enables cross-posting of photo evidence using the game's
	// social credentials.
	PostToSocial bool `toml:"post_to_social"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr              string `toml:"addr"`
	NotificationTopic string `toml:"notification_topic"`
}

type SocialConfigs struct {
	Twitter   TwitterConfigs   `toml:"twitter"`
	Facebook  FacebookConfigs  `toml:"facebook"`
	Instagram InstagramConfigs `toml:"instagram"`
}

type TwitterConfigs struct {
	APIEndpoints []string `toml:"api_endpoints"`
}

type FacebookConfigs struct {
	GraphEndpoint string `toml:"graph_endpoint"`
}

type InstagramConfigs struct {
	GraphEndpoint string `toml:"graph_endpoint"`
}

type SnowflakeConfigs struct {
	NodeID int64 `toml:"node_id"`
}

// Default returns the configurations used when no config file is given.
func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver:   "sqlite",
			Database: "questbycycle.db",
		},
		ApiServer: APIServerConfigs{
			ServerConfigs:     ServerConfigs{Port: "8080"},
			MaxLimit:          50,
			DefaultLimit:      10,
			RequestsPerSecond: 5,
			Burst:             30,
			AllowedOrigins:    []string{"*"},
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: 24 * time.Hour,
			},
		},
		File: FileConfigs{MaxSize: 10 << 20},
		Kafka: KafkaConfigs{
			NotificationTopic: "notification",
		},
		Social: SocialConfigs{
			Facebook:  FacebookConfigs{GraphEndpoint: "https://graph.facebook.com/v19.0"},
			Instagram: InstagramConfigs{GraphEndpoint: "https://graph.facebook.com/v19.0"},
		},
	}
}

// Load reads the toml file at path on top of the default configurations.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if _, err := toml.Decode(string(b), &cfg); err != nil {
		return cfg, fmt.Errorf("cannot decode %s: %w", path, err)
	}

	return cfg, nil
}
