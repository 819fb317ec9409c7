// Package config builds the process configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const configFileEnvName = "TOYSHOP_CONFIG_FILE"

// MissingValueError reports a required setting that was not provided.
type MissingValueError struct {
	Key string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("missing required configuration value %s", e.Key)
}

// InvalidValueError reports a setting that is present but malformed.
type InvalidValueError struct {
	Key    string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid configuration value %s: %s", e.Key, e.Reason)
}

type Database struct {
	// Driver is one of postgres, sqlite or memory.
	Driver string
	DSN    string
}

type Session struct {
	TTL          time.Duration
	CookieSecure bool
}

type Admin struct {
	Email        string
	PasswordHash string
	Password     string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Events struct {
	// Backend is one of none, amqp or nats.
	Backend string
	URL     string
	Topic   string
}

type Assets struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
	Folder    string
	UseSSL    bool
}

type Log struct {
	Level       string
	File        string
	Development bool
}

// Config is the whole process configuration.
type Config struct {
	AppPort        string
	AllowedOrigins string
	JWTSecret      string
	LoginRateLimit int
	Database       Database
	Session        Session
	Admin          Admin
	Redis          Redis
	Events         Events
	Assets         Assets
	Log            Log
	Shop           ShopConfig
}

// Load reads .env (when present), an optional config file chosen by --config or
// TOYSHOP_CONFIG_FILE, and the environment, then validates the result.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		zap.S().Warnf("could not load .env file: %v", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := configFilePath(args); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("LOGIN_RATE_LIMIT", 5)
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=toyshop port=5432 sslmode=disable")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("ADMIN_EMAIL", "admin")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("EVENTS_BACKEND", "none")
	v.SetDefault("EVENTS_TOPIC", "toyshop.products")
	v.SetDefault("ASSETS_FOLDER", "my_project")
	v.SetDefault("ASSETS_USE_SSL", true)
	v.SetDefault("LOG_LEVEL", "info")
}

func configFilePath(args []string) string {
	flags := pflag.NewFlagSet("toyshop", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	path := flags.String("config", "", "config file (yaml, json or toml)")
	_ = flags.Parse(args)
	if env, ok := os.LookupEnv(configFileEnvName); ok && env != "" {
		return env
	}
	return *path
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort:        v.GetString("APP_PORT"),
		AllowedOrigins: v.GetString("ALLOWED_ORIGINS"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		LoginRateLimit: v.GetInt("LOGIN_RATE_LIMIT"),
		Database: Database{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Session: Session{
			TTL:          v.GetDuration("SESSION_TTL"),
			CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
		},
		Admin: Admin{
			Email:        v.GetString("ADMIN_EMAIL"),
			PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
			Password:     v.GetString("ADMIN_PASSWORD"),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Events: Events{
			Backend: strings.ToLower(v.GetString("EVENTS_BACKEND")),
			URL:     v.GetString("EVENTS_URL"),
			Topic:   v.GetString("EVENTS_TOPIC"),
		},
		Assets: Assets{
			Endpoint:  v.GetString("ASSETS_ENDPOINT"),
			AccessKey: v.GetString("ASSETS_ACCESS_KEY"),
			SecretKey: v.GetString("ASSETS_SECRET_KEY"),
			Bucket:    v.GetString("ASSETS_BUCKET"),
			PublicURL: v.GetString("ASSETS_PUBLIC_URL"),
			Folder:    v.GetString("ASSETS_FOLDER"),
			UseSSL:    v.GetBool("ASSETS_USE_SSL"),
		},
		Log: Log{
			Level:       v.GetString("LOG_LEVEL"),
			File:        v.GetString("LOG_FILE"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
		Shop: ShopConfig{
			Name:        v.GetString("SHOP_NAME"),
			Phone:       v.GetString("SHOP_TEL"),
			Email:       v.GetString("SHOP_EMAIL"),
			Address:     v.GetString("SHOP_ADDRESS"),
			FacebookURL: v.GetString("SHOP_FACEBOOK_LINK"),
		},
	}
}

// Validate checks the settings every deployment needs.
func (c *Config) Validate() error {
	if err := c.Shop.Validate(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return &MissingValueError{Key: "JWT_SECRET"}
	}
	if c.Admin.Email == "" {
		return &MissingValueError{Key: "ADMIN_EMAIL"}
	}
	if c.Admin.PasswordHash == "" && c.Admin.Password == "" {
		return &MissingValueError{Key: "ADMIN_PASSWORD_HASH"}
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			return &MissingValueError{Key: "DATABASE_DSN"}
		}
	case "memory":
	default:
		return &InvalidValueError{Key: "DATABASE_DRIVER", Reason: "must be postgres, sqlite or memory"}
	}
	switch c.Events.Backend {
	case "", "none":
	case "amqp", "nats":
		if c.Events.URL == "" {
			return &MissingValueError{Key: "EVENTS_URL"}
		}
	default:
		return &InvalidValueError{Key: "EVENTS_BACKEND", Reason: "must be none, amqp or nats"}
	}
	if c.Assets.Endpoint != "" && c.Assets.Bucket == "" {
		return &MissingValueError{Key: "ASSETS_BUCKET"}
	}
	if c.Session.TTL <= 0 {
		return &InvalidValueError{Key: "SESSION_TTL", Reason: "must be a positive duration"}
	}
	return nil
}

var shopValidator = validator.New()

// envKeys maps ShopConfig fields to the settings they come from.
var envKeys = map[string]string{
	"Name":        "SHOP_NAME",
	"Phone":       "SHOP_TEL",
	"Email":       "SHOP_EMAIL",
	"Address":     "SHOP_ADDRESS",
	"FacebookURL": "SHOP_FACEBOOK_LINK",
}

// ShopConfig holds the storefront contact details shown on every page.
type ShopConfig struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Address     string `json:"address" validate:"required"`
	FacebookURL string `json:"facebookUrl" validate:"required,url"`
}

// Validate returns a *MissingValueError or *InvalidValueError for the first bad field.
func (s ShopConfig) Validate() error {
	err := shopValidator.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("shop configuration: %w", err)
	}
	first := validationErrors[0]
	key := envKeys[first.Field()]
	if first.Tag() == "required" {
		return &MissingValueError{Key: key}
	}
	return &InvalidValueError{Key: key, Reason: "failed on the '" + first.Tag() + "' rule"}
}

// MessengerHandle is the last non-empty path segment of the Facebook profile URL.
func (s ShopConfig) MessengerHandle() string {
	segments := strings.Split(s.FacebookURL, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

// MessengerLink is the messaging deep link derived from the Facebook profile.
func (s ShopConfig) MessengerLink() string {
	return "https://m.me/" + s.MessengerHandle()
}

// ZaloLink is the chat link for the shop phone number.
func (s ShopConfig) ZaloLink() string {
	return "https://zalo.me/" + s.Phone
}
