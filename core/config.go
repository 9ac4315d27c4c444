package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Port                      int
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
	}

	SessionConfig struct {
		Backend  string // "memory" | "redis"
		TTL      time.Duration
		RedisURL string
	}

	DatabaseConfig struct {
		Path string
	}

	// WarehouseConfig holds the free-form warehouse connector secrets.
	// ServerHostname, HTTPPath and AccessToken must all be set for the
	// connector to be considered configured.
	WarehouseConfig struct {
		ServerHostname string
		HTTPPath       string
		AccessToken    string
		Catalog        string
		Schema         string
		Timeout        time.Duration
	}

	Config struct {
		Env              string // DEV (default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		DefaultFromEmail string
		SendgridAPIKey   string
		RollbarToken     string
		Build            string

		Server    ServerConfig
		Session   SessionConfig
		Database  DatabaseConfig
		Warehouse WarehouseConfig
	}
)

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsConfigured reports whether all required warehouse connection keys are
// present; the second value lists the missing ones.
func (c WarehouseConfig) IsConfigured() (bool, []string) {
	var missing []string
	if c.ServerHostname == "" {
		missing = append(missing, "server_hostname")
	}
	if c.HTTPPath == "" {
		missing = append(missing, "http_path")
	}
	if c.AccessToken == "" {
		missing = append(missing, "access_token")
	}
	return len(missing) == 0, missing
}

// NewConfig loads the application configuration: defaults first, then an
// optional env-specific .env file, then environment variables prefixed with
// the current ENV name.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Darasa")
	v.SetDefault("secretKey", "y0v-2+p9d&)5p$k#-dem0-0nly-n0t-f0r-pr0d-%wz8^#qj")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridAPIKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("build", "dev")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", 40*time.Minute)
	v.SetDefault("session.redisURL", "")

	v.SetDefault("database.path", "darasa.db")

	v.SetDefault("warehouse.serverHostname", "")
	v.SetDefault("warehouse.httpPath", "")
	v.SetDefault("warehouse.accessToken", "")
	v.SetDefault("warehouse.catalog", "main")
	v.SetDefault("warehouse.schema", "default")
	v.SetDefault("warehouse.timeout", 30*time.Second)

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{Env: env}
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}
	return conf, nil
}
