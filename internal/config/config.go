package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	IdP      IdPConfig      `yaml:"idp"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Redis    RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	Host             string `yaml:"host"`
	Port             string `yaml:"port"`
	Mode             string `yaml:"mode"` // debug, release, test
	LogRetentionDays int    `yaml:"log_retention_days"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// AuthConfig controls inbound bearer-token verification.
// When Issuer is set, tokens are verified against the identity provider's
// published signing keys. When empty, tokens are verified locally with the
// HS256 LocalSecret (development and tests).
type AuthConfig struct {
	Issuer       string   `yaml:"issuer"`
	Audience     string   `yaml:"audience"`
	AdminScopes  []string `yaml:"admin_scopes"`
	LocalSecret  string   `yaml:"local_secret"`
	LegacyDemote bool     `yaml:"legacy_demote"` // demote re-assigns instead of revoking
}

// IdPConfig holds machine-to-machine credentials for the identity provider
// management API.
type IdPConfig struct {
	Domain       string `yaml:"domain"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Audience     string `yaml:"audience"`
}

type SMTPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"` // notification recipient(s), comma-separated
	UseTLS   bool   `yaml:"use_tls"`
}

// RedisConfig for the optional async notification queue
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.overrideFromEnv()
	if len(cfg.Auth.AdminScopes) == 0 {
		cfg.Auth.AdminScopes = DefaultConfig().Auth.AdminScopes
	}
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             "5000",
			Mode:             "debug",
			LogRetentionDays: 30,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "grantly.db",
		},
		Auth: AuthConfig{
			AdminScopes: []string{"get:adminLocal", "get:adminProduction", "get:adminStaging"},
			LocalSecret: "grantly-local-secret-change-in-production",
		},
		SMTP: SMTPConfig{
			Enabled: false,
			Port:    587,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if days := os.Getenv("LOG_RETENTION_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			c.Server.LogRetentionDays = d
		}
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Database.DSN = dsn
	}
	if issuer := os.Getenv("AUTH_ISSUER"); issuer != "" {
		c.Auth.Issuer = issuer
	}
	if audience := os.Getenv("AUTH_AUDIENCE"); audience != "" {
		c.Auth.Audience = audience
	}
	if scopes := os.Getenv("AUTH_ADMIN_SCOPES"); scopes != "" {
		c.Auth.AdminScopes = splitAndTrim(scopes)
	}
	if secret := os.Getenv("AUTH_LOCAL_SECRET"); secret != "" {
		c.Auth.LocalSecret = secret
	}
	if domain := os.Getenv("IDP_DOMAIN"); domain != "" {
		c.IdP.Domain = domain
	}
	if clientID := os.Getenv("IDP_CLIENT_ID"); clientID != "" {
		c.IdP.ClientID = clientID
	}
	if clientSecret := os.Getenv("IDP_CLIENT_SECRET"); clientSecret != "" {
		c.IdP.ClientSecret = clientSecret
	}
	if audience := os.Getenv("IDP_AUDIENCE"); audience != "" {
		c.IdP.Audience = audience
	}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		c.SMTP.Enabled = true
		c.SMTP.Host = host
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.SMTP.Port = p
		}
	}
	if user := os.Getenv("SMTP_USER"); user != "" {
		c.SMTP.Username = user
	}
	if pass := os.Getenv("SMTP_PASS"); pass != "" {
		c.SMTP.Password = pass
	}
	if from := os.Getenv("SMTP_FROM"); from != "" {
		c.SMTP.From = from
	}
	if to := os.Getenv("SMTP_TO"); to != "" {
		c.SMTP.To = to
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}
