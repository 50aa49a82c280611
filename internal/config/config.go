package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string
	Port               string
	BackendURL         string
	BackendTimeout     time.Duration
	CachePath          string
	SessionSecret      string
	GinMode            string
	LogLevel           string
	TemplateGlob       string
	LoginRatePerMinute int
	DefaultLanguage    string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 若当前目录存在 .env 文件，会先加载其中的变量（不覆盖已设置的环境变量）。
func Load() AppConfig {
	_ = godotenv.Load()

	port := envOr("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	backendURL := strings.TrimRight(envOr("BACKEND_URL", "http://localhost:8071/v1"), "/")

	timeout := 10 * time.Second
	if raw := strings.TrimSpace(os.Getenv("BACKEND_TIMEOUT")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			timeout = parsed
		}
	}

	loginRate := 10
	if raw := strings.TrimSpace(os.Getenv("LOGIN_RATE_PER_MINUTE")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			loginRate = parsed
		}
	}

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		BackendURL:         backendURL,
		BackendTimeout:     timeout,
		CachePath:          envOr("CACHE_PATH", "tagboard.db"),
		SessionSecret:      envOr("SESSION_SECRET", "tagboard-dev-secret"),
		GinMode:            envOr("GIN_MODE", "release"),
		LogLevel:           envOr("LOG_LEVEL", "info"),
		TemplateGlob:       envOr("TEMPLATE_GLOB", "web/template/*.html"),
		LoginRatePerMinute: loginRate,
		DefaultLanguage:    envOr("DEFAULT_LANGUAGE", "zh"),
	}
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
