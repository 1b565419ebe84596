package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds process-level settings read from the environment
type Config struct {
	MongoURI  string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB   string `env:"MONGO_DB" envDefault:"reviewpilot"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	HTTPPort  string `env:"PORT" envDefault:"8080"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"super-secret-key-change-in-production"`
	LogMode   string `env:"LOG_MODE" envDefault:"dev"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	Pool PoolConfig
}

// PoolConfig tunes the review suggestion pool
type PoolConfig struct {
	BatchSize   int           `env:"REVIEW_POOL_BATCH_SIZE" envDefault:"15"`
	SampleSize  int           `env:"REVIEW_POOL_SAMPLE_SIZE" envDefault:"5"`
	LockEnabled bool          `env:"POOL_LOCK_ENABLED" envDefault:"false"`
	LockTTL     time.Duration `env:"POOL_LOCK_TTL" envDefault:"30s"`
	LockWait    time.Duration `env:"POOL_LOCK_WAIT" envDefault:"5s"`
}

// Load reads the optional dotenv file and parses the environment into a Config.
// A missing dotenv file is not an error.
func Load() (*Config, error) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	cfg.RedisAddr = strings.TrimPrefix(cfg.RedisAddr, "redis://")
	if cfg.Pool.BatchSize < 2 {
		return nil, errors.New("REVIEW_POOL_BATCH_SIZE must be at least 2")
	}
	if cfg.Pool.SampleSize < 1 {
		return nil, errors.New("REVIEW_POOL_SAMPLE_SIZE must be at least 1")
	}
	return &cfg, nil
}
