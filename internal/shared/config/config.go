package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Upstream       UpstreamConfig       `mapstructure:"upstream"`
	Pool           PoolConfig           `mapstructure:"pool"`
	Poll           PollConfig           `mapstructure:"poll"`
	Redis          RedisConfig          `mapstructure:"redis"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Log            LogConfig            `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// UpstreamConfig holds the generative media backend's regional endpoints and
// request signing material.
type UpstreamConfig struct {
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	DefaultRegion   string        `mapstructure:"default_region"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	UploadTimeout   time.Duration `mapstructure:"upload_timeout"`
}

// PoolConfig holds session/token pool configuration.
type PoolConfig struct {
	Tokens          string        `mapstructure:"tokens"`
	MaxSessions     int           `mapstructure:"max_sessions"`
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
	AcquireTimeout  time.Duration `mapstructure:"acquire_timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// PollConfig holds smart-poller pacing settings. The orchestrator does not
// read this section; its poller pacing comes from poll.DefaultConfig.
type PollConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	StableRounds    int           `mapstructure:"stable_rounds"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CircuitBreakerConfig holds per-endpoint-class circuit breaker tuning.
type CircuitBreakerConfig struct {
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	FailureRatio     float64       `mapstructure:"failure_ratio"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
	HalfOpenMaxCalls uint32        `mapstructure:"half_open_max_calls"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/genbridge")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("GENBRIDGE")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if key := os.Getenv("GENBRIDGE_UPSTREAM_SECRET_ACCESS_KEY"); key != "" {
		cfg.Upstream.SecretAccessKey = key
	}
	if id := os.Getenv("GENBRIDGE_UPSTREAM_ACCESS_KEY_ID"); id != "" {
		cfg.Upstream.AccessKeyID = id
	}
	if password := os.Getenv("GENBRIDGE_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if tokens := os.Getenv("GENBRIDGE_POOL_TOKENS"); tokens != "" {
		cfg.Pool.Tokens = tokens
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("upstream.default_region", "cn")
	v.SetDefault("upstream.request_timeout", 30*time.Second)
	v.SetDefault("upstream.upload_timeout", 60*time.Second)

	v.SetDefault("pool.max_sessions", 64)
	v.SetDefault("pool.idle_ttl", 10*time.Minute)
	v.SetDefault("pool.acquire_timeout", 5*time.Second)
	v.SetDefault("pool.refresh_interval", time.Minute)

	v.SetDefault("poll.initial_interval", 2*time.Second)
	v.SetDefault("poll.max_interval", 5*time.Second)
	v.SetDefault("poll.max_attempts", 40)
	v.SetDefault("poll.stable_rounds", 3)
	v.SetDefault("poll.timeout", 180*time.Second)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("circuit_breaker.failure_threshold", 5)
	v.SetDefault("circuit_breaker.failure_ratio", 0.6)
	v.SetDefault("circuit_breaker.open_timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.half_open_max_calls", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
