package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port          string    `yaml:"port"           env:"PORT"            env-default:"8080"`
	DBPath        string    `yaml:"db_path"        env:"DB_PATH"         env-default:"./data/timesheet.db"`
	JWTSecret     string    `yaml:"jwt_secret"     env:"JWT_SECRET"      env-default:"change-this-secret"`
	TokenTTLHours int       `yaml:"token_ttl_hours" env:"TOKEN_TTL_HOURS" env-default:"72"`
	CORSOrigins   []string  `yaml:"cors_origins"   env:"CORS_ORIGINS"    env-default:"http://localhost:5173,http://127.0.0.1:5173" env-separator:","`
	MigrationsDir string    `yaml:"migrations_dir" env:"MIGRATIONS_DIR"  env-default:"./migrations"`
	GinMode       string    `yaml:"gin_mode"       env:"GIN_MODE"        env-default:"release"`
	Log           LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// Load reads CONFIG_PATH (YAML) when it is set, then the environment.
// Environment values win over the file; tags supply the defaults.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}

	cfg.CORSOrigins = trimList(cfg.CORSOrigins)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("port is required")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.TokenTTLHours <= 0 {
		return fmt.Errorf("token_ttl_hours must be > 0 (got %d)", c.TokenTTLHours)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("gin_mode must be debug, release or test (got %q)", c.GinMode)
	}
	return nil
}

func trimList(values []string) []string {
	items := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
