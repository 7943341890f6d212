package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/pelletier/go-toml/v2"
)

const (
	name    = "invite-share"
	version = "1.2.0"
)

type LogLevel string

const (
	Debug   LogLevel = "debug"
	Info    LogLevel = "info"
	Notice  LogLevel = "notice"
	Warning LogLevel = "warning"
	Error   LogLevel = "error"
)

// Config holds process-level settings. Business settings such as the invite
// price live in the database and are managed by the setting service.
type Config struct {
	DBPath   string
	Listen   string
	Port     int
	BasePath string
	Debug    bool
	LogLevel LogLevel

	// RefreshSpec is the cron spec of the automatic refresh job, empty disables it.
	RefreshSpec    string
	// TodayResetSpec 清零今日新增的 cron 表达式，空则不清零
	TodayResetSpec string
	CacheExpiry    time.Duration
	CacheIdle      time.Duration

	SessionSecret string

	TgBotToken     string
	TgBotChatIds   string
	TgBotProxy     string
	TgBotAPIServer string
}

// fileConfig mirrors the optional TOML file. Durations are kept as strings.
type fileConfig struct {
	DBPath        string `toml:"db_path"`
	Listen        string `toml:"listen"`
	Port          int    `toml:"port"`
	BasePath      string `toml:"base_path"`
	Debug         bool   `toml:"debug"`
	LogLevel      string `toml:"log_level"`
	RefreshSpec   string `toml:"refresh_spec"`
	TodayReset    string `toml:"today_reset_spec"`
	CacheExpiry   string `toml:"cache_expiry"`
	CacheIdle     string `toml:"cache_idle"`
	SessionSecret string `toml:"session_secret"`
	Telegram      struct {
		Token     string `toml:"token"`
		ChatIds   string `toml:"chat_ids"`
		Proxy     string `toml:"proxy"`
		APIServer string `toml:"api_server"`
	} `toml:"telegram"`
}

func GetName() string {
	return name
}

func GetVersion() string {
	return version
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("INVITE_SHARE_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "db"
	}
	return dbFolderPath
}

func defaultConfig() *Config {
	return &Config{
		DBPath:         filepath.Join(GetDBFolderPath(), name+".db"),
		Listen:         "127.0.0.1",
		Port:           8080,
		BasePath:       "/",
		LogLevel:       Info,
		RefreshSpec:    "@every 30s",
		TodayResetSpec: "@midnight",
		CacheExpiry:    10 * time.Second,
		CacheIdle:      30 * time.Minute,
		SessionSecret:  "invite-share-session-secret",
	}
}

// Load builds the configuration from defaults, the optional TOML file named by
// INVITE_SHARE_CONFIG, and INVITE_SHARE_* environment variables (a .env file in
// the working directory is loaded first), in that order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	if path := os.Getenv("INVITE_SHARE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	cfg.BasePath = normalizeBasePath(cfg.BasePath)
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if fc.DBPath != "" {
		c.DBPath = fc.DBPath
	}
	if fc.Listen != "" {
		c.Listen = fc.Listen
	}
	if fc.Port != 0 {
		c.Port = fc.Port
	}
	if fc.BasePath != "" {
		c.BasePath = fc.BasePath
	}
	if fc.Debug {
		c.Debug = true
	}
	if fc.LogLevel != "" {
		c.LogLevel = LogLevel(strings.ToLower(fc.LogLevel))
	}
	if fc.RefreshSpec != "" {
		c.RefreshSpec = fc.RefreshSpec
	}
	if fc.TodayReset != "" {
		c.TodayResetSpec = fc.TodayReset
	}
	if fc.CacheExpiry != "" {
		d, err := time.ParseDuration(fc.CacheExpiry)
		if err != nil {
			return fmt.Errorf("cache_expiry: %w", err)
		}
		c.CacheExpiry = d
	}
	if fc.CacheIdle != "" {
		d, err := time.ParseDuration(fc.CacheIdle)
		if err != nil {
			return fmt.Errorf("cache_idle: %w", err)
		}
		c.CacheIdle = d
	}
	if fc.SessionSecret != "" {
		c.SessionSecret = fc.SessionSecret
	}
	c.TgBotToken = fc.Telegram.Token
	c.TgBotChatIds = fc.Telegram.ChatIds
	c.TgBotProxy = fc.Telegram.Proxy
	c.TgBotAPIServer = fc.Telegram.APIServer
	return nil
}

func (c *Config) loadEnv() error {
	if v := os.Getenv("INVITE_SHARE_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("INVITE_SHARE_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("INVITE_SHARE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("INVITE_SHARE_PORT: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("INVITE_SHARE_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("INVITE_SHARE_DEBUG"); v != "" {
		c.Debug = v == "true" || v == "1"
	}
	if v := os.Getenv("INVITE_SHARE_LOG_LEVEL"); v != "" {
		c.LogLevel = LogLevel(strings.ToLower(v))
	}
	if v, ok := os.LookupEnv("INVITE_SHARE_REFRESH_SPEC"); ok {
		c.RefreshSpec = v
	}
	if v, ok := os.LookupEnv("INVITE_SHARE_TODAY_RESET_SPEC"); ok {
		c.TodayResetSpec = v
	}
	if v := os.Getenv("INVITE_SHARE_CACHE_EXPIRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("INVITE_SHARE_CACHE_EXPIRY: %w", err)
		}
		c.CacheExpiry = d
	}
	if v := os.Getenv("INVITE_SHARE_CACHE_IDLE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("INVITE_SHARE_CACHE_IDLE: %w", err)
		}
		c.CacheIdle = d
	}
	if v := os.Getenv("INVITE_SHARE_SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("INVITE_SHARE_TGBOT_TOKEN"); v != "" {
		c.TgBotToken = v
	}
	if v := os.Getenv("INVITE_SHARE_TGBOT_CHAT_IDS"); v != "" {
		c.TgBotChatIds = v
	}
	if v := os.Getenv("INVITE_SHARE_TGBOT_PROXY"); v != "" {
		c.TgBotProxy = v
	}
	if v := os.Getenv("INVITE_SHARE_TGBOT_API_SERVER"); v != "" {
		c.TgBotAPIServer = v
	}
	return nil
}

// GetLoggingLevel maps the configured level onto go-logging, falling back to INFO.
func (c *Config) GetLoggingLevel() logging.Level {
	switch c.LogLevel {
	case Debug:
		return logging.DEBUG
	case Notice:
		return logging.NOTICE
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	default:
		return logging.INFO
	}
}

func (c *Config) Address() string {
	return net.JoinHostPort(c.Listen, strconv.Itoa(c.Port))
}

func normalizeBasePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
