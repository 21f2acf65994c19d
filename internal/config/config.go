package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Probe     ProbeConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port    string
	Env     string
	BaseURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

type RateLimitConfig struct {
	SubmitPerMin int
	ProbePerMin  int
}

type ProbeConfig struct {
	BudgetSeconds int
	PollMS        int
	MaxConcurrent int
}

type WorkerConfig struct {
	Enabled     bool
	Concurrency int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.jwt_secret", "change-me-in-production")
	viper.SetDefault("ratelimit.submit_per_min", 30)
	viper.SetDefault("ratelimit.probe_per_min", 60)
	viper.SetDefault("probe.budget_seconds", 10)
	viper.SetDefault("probe.poll_ms", 100)
	viper.SetDefault("probe.max_concurrent", 4)
	viper.SetDefault("worker.enabled", true)
	viper.SetDefault("worker.concurrency", 4)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:    viper.GetString("server.port"),
			Env:     viper.GetString("server.env"),
			BaseURL: viper.GetString("server.base_url"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			Enabled:   viper.GetBool("auth.enabled"),
			JWTSecret: viper.GetString("auth.jwt_secret"),
		},
		RateLimit: RateLimitConfig{
			SubmitPerMin: viper.GetInt("ratelimit.submit_per_min"),
			ProbePerMin:  viper.GetInt("ratelimit.probe_per_min"),
		},
		Probe: ProbeConfig{
			BudgetSeconds: viper.GetInt("probe.budget_seconds"),
			PollMS:        viper.GetInt("probe.poll_ms"),
			MaxConcurrent: viper.GetInt("probe.max_concurrent"),
		},
		Worker: WorkerConfig{
			Enabled:     viper.GetBool("worker.enabled"),
			Concurrency: viper.GetInt("worker.concurrency"),
		},
	}

	return cfg, nil
}
