package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	MongoURI      string   `mapstructure:"MONGO_URI"`
	MongoDatabase string   `mapstructure:"MONGO_DATABASE"`
	JWTSecret     string   `mapstructure:"JWT_SECRET"`
	JWTTTLHours   int      `mapstructure:"JWT_TTL_HOURS"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`

	// Login brute-force protection. RPS of 0 disables the limiter.
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// Empty secret skips captcha verification on the strict login route.
	RecaptchaSecret string `mapstructure:"RECAPTCHA_SECRET"`

	SMSGatewayURL string `mapstructure:"SMS_GATEWAY_URL"`
	SMSGatewayKey string `mapstructure:"SMS_GATEWAY_KEY"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("MONGO_DATABASE", "medihub")
	v.SetDefault("JWT_TTL_HOURS", 24)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 1)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("MONGO_URI")
	v.BindEnv("MONGO_DATABASE")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("JWT_TTL_HOURS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("RECAPTCHA_SECRET")
	v.BindEnv("SMS_GATEWAY_URL")
	v.BindEnv("SMS_GATEWAY_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}
