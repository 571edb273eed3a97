package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"5s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logger struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logger"`
	Upstream struct {
		BaseURL  string        `yaml:"base_url" default:"https://www.sg-zertifikate.de/EmcWebApi/api" validate:"required,url"`
		PageSize int           `yaml:"page_size" default:"100" validate:"gte=1,lte=500"`
		MaxPages int           `yaml:"max_pages" default:"10" validate:"gte=1"`
		Timeout  time.Duration `yaml:"timeout" default:"15s"`
		RPS      float64       `yaml:"rps" default:"10" validate:"gt=0"`
		Burst    int           `yaml:"burst" default:"20" validate:"gte=1"`
		Breaker  struct {
			MaxFailures uint32        `yaml:"max_failures" default:"5" validate:"gte=1"`
			OpenTimeout time.Duration `yaml:"open_timeout" default:"30s"`
			Interval    time.Duration `yaml:"interval" default:"60s"`
		} `yaml:"breaker"`
	} `yaml:"upstream"`
	Ranking struct {
		Lookback        int           `yaml:"lookback" default:"20" validate:"gte=2"`
		VaRConfidence   float64       `yaml:"var_confidence" default:"0.95" validate:"gt=0,lt=1"`
		Workers         int           `yaml:"workers" default:"20" validate:"gte=1"`
		RetryLimit      int           `yaml:"retry_limit" default:"1" validate:"gte=0,lte=5"`
		RetryDelay      time.Duration `yaml:"retry_delay" default:"250ms"`
		SpotCacheTTL    time.Duration `yaml:"spot_cache_ttl" default:"5m"`
		RefreshInterval time.Duration `yaml:"refresh_interval" default:"60s"`
		Weights         Weights       `yaml:"weights"`
	} `yaml:"ranking"`
	Cache struct {
		Backend string `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"inlinerank:spot:"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" validate:"required_if=Enabled true"`
		Topic        string   `yaml:"topic" default:"inline-warrant-rankings"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"500"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost" validate:"required_if=Enabled true"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"inlinerank"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
}

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads a YAML configuration file, fills defaults and validates it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse is Load without the file.
func Parse(b []byte) (*Config, error) {
	// defaults first so explicit zero values in the file (cors: false) survive
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides deployment-specific values.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("INLINERANK_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("SG_BASE_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Backend = "redis"
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
}

// Weights of the composite scores. Each group must sum to at most 1 so the
// scores stay in [0, 1].
type Weights struct {
	Return    float64 `yaml:"return" default:"0.25" validate:"gte=0,lte=1"`
	Distance  float64 `yaml:"distance" default:"0.20" validate:"gte=0,lte=1"`
	Bollinger float64 `yaml:"bollinger" default:"0.15" validate:"gte=0,lte=1"`
	VaR       float64 `yaml:"var" default:"0.15" validate:"gte=0,lte=1"`
	Expiry    float64 `yaml:"expiry" default:"0.25" validate:"gte=0,lte=1"`

	Prob           float64 `yaml:"prob" default:"0.45" validate:"gte=0,lte=1"`
	ExpectedReturn float64 `yaml:"expected_return" default:"0.30" validate:"gte=0,lte=1"`
	Sigma          float64 `yaml:"sigma" default:"0.15" validate:"gte=0,lte=1"`
	TailRisk       float64 `yaml:"tail_risk" default:"0.10" validate:"gte=0,lte=1"`
}

const weightSumTolerance = 1e-9

var validate = validator.New()

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	w := c.Ranking.Weights
	if sum := w.Return + w.Distance + w.Bollinger + w.VaR + w.Expiry; sum > 1+weightSumTolerance {
		return fmt.Errorf("ranking.weights: score weights sum to %g, want at most 1", sum)
	}
	if sum := w.Prob + w.ExpectedReturn + w.Sigma + w.TailRisk; sum > 1+weightSumTolerance {
		return fmt.Errorf("ranking.weights: optimized weights sum to %g, want at most 1", sum)
	}
	return nil
}
