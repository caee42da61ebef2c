package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the account service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig describes both Credential Store backends.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
}

// PostgresConfig holds the relational store connection options.
type PostgresConfig struct {
	URI             string        `mapstructure:"uri"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// MongoConfig holds the document store connection options.
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// AuthConfig captures all authentication-related settings.
type AuthConfig struct {
	JWT        JWTSettings        `mapstructure:"jwt"`
	Password   PasswordSettings   `mapstructure:"password"`
	Revocation RevocationSettings `mapstructure:"revocation"`
}

// JWTSettings configures bearer tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// PasswordSettings configures the password hasher.
type PasswordSettings struct {
	Cost int `mapstructure:"cost"`
}

// RevocationSettings configures the revocation sweep.
type RevocationSettings struct {
	SweepSchedule string `mapstructure:"sweep_schedule"`
}

// envBindings maps configuration keys to the plain environment variables the
// service has always read.
var envBindings = map[string]string{
	"server.port":             "PORT",
	"server.log_level":        "LOG_LEVEL",
	"auth.jwt.secret":         "JWT_SECRET",
	"database.postgres.uri":   "POSTGRES_URI",
	"database.mongo.uri":      "MONGO_URI",
	"database.mongo.database": "MONGO_DATABASE",
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
// Values come from defaults, then an optional config.yaml, then the environment.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("ACCOUNTD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, "ACCOUNTD_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Auth.JWT.Secret) == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if strings.TrimSpace(c.Database.Postgres.URI) == "" {
		problems = append(problems, "POSTGRES_URI is required")
	}
	if strings.TrimSpace(c.Database.Mongo.URI) == "" {
		problems = append(problems, "MONGO_URI is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d", c.Server.Port))
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.postgres.max_open_conns", 10)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", "30m")
	v.SetDefault("database.mongo.database", "accountd")
	v.SetDefault("database.mongo.connect_timeout", "10s")

	v.SetDefault("auth.jwt.ttl", "8760h") // 1 year
	v.SetDefault("auth.password.cost", 10)
	v.SetDefault("auth.revocation.sweep_schedule", "@every 10m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
