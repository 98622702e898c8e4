// Package config はアプリケーション設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Capability token
	TokenSecret string

	// Provider（外部スクレイピングプロバイダー）
	ProviderBaseURL    string
	ProviderAPIToken   string
	ProviderTimeout    time.Duration
	ProviderMaxRecords int

	// Price validation
	// 現地通貨建て価格の妥当性下限。上流の単位・小数点誤報告への防御であり、
	// 閾値そのものはプロダクト側で検証されるべきヒューリスティック。
	PriceMinPlausibleMGA float64

	// Rate Limit
	RateLimitExport int // req/min per client

	// Webhook
	WebhookTimeout time.Duration

	// Server
	ServerPort string

	// CORS
	// カンマ区切りの許可オリジン。未知のオリジンには先頭エントリを返す。
	CORSAllowedOrigins []string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	if cfg.TokenSecret == "" {
		missing = append(missing, "TOKEN_SECRET")
	}

	cfg.ProviderBaseURL = os.Getenv("PROVIDER_BASE_URL")
	if cfg.ProviderBaseURL == "" {
		missing = append(missing, "PROVIDER_BASE_URL")
	}

	cfg.ProviderAPIToken = os.Getenv("PROVIDER_API_TOKEN")
	if cfg.ProviderAPIToken == "" {
		missing = append(missing, "PROVIDER_API_TOKEN")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ProviderTimeout = getEnvDuration("PROVIDER_TIMEOUT", 15*time.Second)
	cfg.ProviderMaxRecords = getEnvInt("PROVIDER_MAX_RECORDS", 1000)
	cfg.PriceMinPlausibleMGA = getEnvFloat("PRICE_MIN_PLAUSIBLE_MGA", 1000)
	cfg.RateLimitExport = getEnvInt("RATE_LIMIT_EXPORT", 30)
	cfg.WebhookTimeout = getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigins = splitOrigins(getEnvString("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))

	return cfg, nil
}

// splitOrigins はカンマ区切りのオリジンリストを分割する。空要素は除外する。
func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
