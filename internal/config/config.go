package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "PRICEBOARD"

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Log struct {
		Level string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		BcryptCost      int
		ProtectAdmin    bool
	}
	Users struct {
		File string
	}
	Prices struct {
		Backend string
		Dir     string
	}
	Database struct {
		Path string
	}
	Images struct {
		Backend  string
		Dir      string
		MaxBytes int64
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
}

// TokenTTL returns the configured lifetime of issued tokens.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// .env never overrides variables that are already set
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:3001")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("auth.protectadmin", false)
	v.SetDefault("users.file", "data/users.json")
	v.SetDefault("prices.backend", "file")
	v.SetDefault("prices.dir", "data/prices")
	v.SetDefault("database.path", "data/prices.db")
	v.SetDefault("images.backend", "local")
	v.SetDefault("images.dir", "uploads")
	v.SetDefault("images.maxbytes", int64(10<<20))
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "images")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Prices.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown prices backend %q", c.Prices.Backend)
	}
	switch c.Images.Backend {
	case "local", "s3":
	default:
		return fmt.Errorf("unknown images backend %q", c.Images.Backend)
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("auth token ttl must be positive")
	}
	return nil
}
