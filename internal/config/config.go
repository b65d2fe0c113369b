package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Banks struct {
		Dir     string `yaml:"dir"`
		BaseURL string `yaml:"baseUrl"`
		TTL     string `yaml:"ttl"`
	} `yaml:"banks"`
	Quiz struct {
		Duration string   `yaml:"duration"`
		Tick     string   `yaml:"tick"`
		Themes   []string `yaml:"themes"`
	} `yaml:"quiz"`
	Results struct {
		TTL string `yaml:"ttl"`
	} `yaml:"results"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file is not an error; a .env file is loaded if present.
func Load(path string) (Config, error) {
	cfg := Config{}
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "QUIZ_PORT")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	setString(&cfg.Postgres.URL, "DATABASE_URL")
	setString(&cfg.Banks.Dir, "BANKS_DIR")
	setString(&cfg.Banks.BaseURL, "BANKS_BASE_URL")
	setString(&cfg.Redis.TTL, "REDIS_TTL")
	setString(&cfg.Banks.TTL, "BANKS_TTL")
	setString(&cfg.Quiz.Duration, "QUIZ_DURATION")
	setString(&cfg.Quiz.Tick, "QUIZ_TICK")
	setString(&cfg.Results.TTL, "RESULTS_TTL")
	if v := os.Getenv("QUIZ_THEMES"); v != "" {
		cfg.Quiz.Themes = strings.Split(v, ",")
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// QuizSeconds returns quiz.duration as whole seconds, rounded to the nearest
// second. Unset means fallback; anything unparsable or under one second is an error.
func (c Config) QuizSeconds(fallback int) (int, error) {
	raw := c.Quiz.Duration
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("quiz.duration %q: %w", raw, err)
	}
	if d < time.Second {
		return 0, fmt.Errorf("quiz.duration %q: must be at least 1s", raw)
	}
	return int(d.Round(time.Second) / time.Second), nil
}
