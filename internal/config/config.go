package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CandidateSourceStatic   = "static"
	CandidateSourcePostgres = "postgres"
)

type Config struct {
	Env        string           `yaml:"env"`
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Redis      RedisConfig      `yaml:"redis"`
	Match      MatchConfig      `yaml:"match"`
	Premium    PremiumConfig    `yaml:"premium"`
	Sessions   SessionsConfig   `yaml:"sessions"`
	SwipeRate  SwipeRateConfig  `yaml:"swipe_rate"`
	Candidates CandidatesConfig `yaml:"candidates"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MatchConfig struct {
	CommitDelay   time.Duration `yaml:"commit_delay"`
	Probability   float64       `yaml:"probability"`
	RandomSeed    int64         `yaml:"random_seed"`
	RetractOnUndo bool          `yaml:"retract_on_undo"`
}

type PremiumConfig struct {
	DefaultIsPremium bool `yaml:"default_is_premium"`
	FreeUndo         bool `yaml:"free_undo"`
	FreeExtend       bool `yaml:"free_extend"`
	FreeFullPool     bool `yaml:"free_full_pool"`
	FreePoolSize     int  `yaml:"free_pool_size"`
}

type SessionsConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	MaxSessions   int           `yaml:"max_sessions"`
}

type SwipeRateConfig struct {
	PerMinute    int `yaml:"per_minute"`
	Per10Seconds int `yaml:"per_10sec"`
}

type CandidatesConfig struct {
	Source string            `yaml:"source"`
	Limit  int               `yaml:"limit"`
	Static []CandidateConfig `yaml:"static"`
}

type CandidateConfig struct {
	ID         string  `yaml:"id"`
	Gender     string  `yaml:"gender"`
	Name       string  `yaml:"name"`
	Species    string  `yaml:"species"`
	Breed      string  `yaml:"breed"`
	DistanceKM float64 `yaml:"distance_km"`
}

func Default() Config {
	return Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
		Log: LogConfig{Level: "debug"},
		Postgres: PostgresConfig{
			DSN: "",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		Match: MatchConfig{
			CommitDelay:   300 * time.Millisecond,
			Probability:   0.7,
			RandomSeed:    0,
			RetractOnUndo: false,
		},
		Premium: PremiumConfig{
			DefaultIsPremium: false,
			FreeUndo:         false,
			FreeExtend:       false,
			FreeFullPool:     false,
			FreePoolSize:     20,
		},
		Sessions: SessionsConfig{
			IdleTTL:       2 * time.Hour,
			SweepInterval: 5 * time.Minute,
			MaxSessions:   10000,
		},
		SwipeRate: SwipeRateConfig{
			PerMinute:    60,
			Per10Seconds: 15,
		},
		Candidates: CandidatesConfig{
			Source: CandidateSourceStatic,
			Limit:  200,
			Static: []CandidateConfig{
				{ID: "pet-luna", Gender: "female", Name: "Luna", Species: "dog", Breed: "Golden Retriever", DistanceKM: 1.2},
				{ID: "pet-max", Gender: "male", Name: "Max", Species: "dog", Breed: "Beagle", DistanceKM: 2.4},
				{ID: "pet-mochi", Gender: "female", Name: "Mochi", Species: "cat", Breed: "Scottish Fold", DistanceKM: 3.1},
				{ID: "pet-rocky", Gender: "male", Name: "Rocky", Species: "dog", Breed: "Boxer", DistanceKM: 4.8},
				{ID: "pet-bella", Gender: "female", Name: "Bella", Species: "dog", Breed: "Corgi", DistanceKM: 6.5},
				{ID: "pet-oliver", Gender: "male", Name: "Oliver", Species: "cat", Breed: "Maine Coon", DistanceKM: 7.0},
			},
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Match.Probability < 0 || c.Match.Probability > 1 {
		return fmt.Errorf("match.probability must be within [0,1], got %v", c.Match.Probability)
	}
	if c.Match.CommitDelay < 0 {
		return fmt.Errorf("match.commit_delay must not be negative, got %s", c.Match.CommitDelay)
	}
	if c.Premium.FreePoolSize < 0 {
		return fmt.Errorf("premium.free_pool_size must not be negative, got %d", c.Premium.FreePoolSize)
	}
	switch c.Candidates.Source {
	case CandidateSourceStatic:
	case CandidateSourcePostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return fmt.Errorf("candidates.source %q requires postgres.dsn", CandidateSourcePostgres)
		}
	default:
		return fmt.Errorf("candidates.source must be %q or %q, got %q", CandidateSourceStatic, CandidateSourcePostgres, c.Candidates.Source)
	}
	return nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if err := overrideDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if err := overrideInt("REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}

	if err := overrideDuration("MATCH_COMMIT_DELAY", &cfg.Match.CommitDelay); err != nil {
		return err
	}
	if err := overrideFloat("MATCH_PROBABILITY", &cfg.Match.Probability); err != nil {
		return err
	}
	if err := overrideInt64("MATCH_RANDOM_SEED", &cfg.Match.RandomSeed); err != nil {
		return err
	}
	if err := overrideBool("MATCH_RETRACT_ON_UNDO", &cfg.Match.RetractOnUndo); err != nil {
		return err
	}

	if err := overrideBool("PREMIUM_DEFAULT", &cfg.Premium.DefaultIsPremium); err != nil {
		return err
	}
	if err := overrideInt("PREMIUM_FREE_POOL_SIZE", &cfg.Premium.FreePoolSize); err != nil {
		return err
	}

	if err := overrideDuration("SESSION_IDLE_TTL", &cfg.Sessions.IdleTTL); err != nil {
		return err
	}
	if err := overrideDuration("SESSION_SWEEP_INTERVAL", &cfg.Sessions.SweepInterval); err != nil {
		return err
	}

	if err := overrideInt("SWIPE_RATE_PER_MINUTE", &cfg.SwipeRate.PerMinute); err != nil {
		return err
	}
	if err := overrideInt("SWIPE_RATE_PER_10SEC", &cfg.SwipeRate.Per10Seconds); err != nil {
		return err
	}

	if v := os.Getenv("CANDIDATES_SOURCE"); v != "" {
		cfg.Candidates.Source = strings.ToLower(strings.TrimSpace(v))
	}

	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}

func overrideInt64(key string, target *int64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s int64: %w", key, err)
	}
	*target = n
	return nil
}

func overrideFloat(key string, target *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("parse %s float: %w", key, err)
	}
	*target = f
	return nil
}

func overrideBool(key string, target *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s bool: %w", key, err)
	}
	*target = b
	return nil
}
