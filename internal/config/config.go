package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server   ServerConfig
	Analysis AnalysisConfig
	Log      LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	analysis, err := loadAnalysisConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Analysis: analysis, Log: loadLogConfig()}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr         string
	SecureCookie bool
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	secure, err := parseBoolEnv("COOKIE_SECURE", false)
	if err != nil {
		return ServerConfig{}, err
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, SecureCookie: secure}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, SecureCookie: secure}, nil
}

// AnalysisConfig 描述远端情绪分析接口的配置。
type AnalysisConfig struct {
	BaseURL   string
	Path      string
	CSRFToken string
	CSRFPage  string
	CSRFField string
	UserID    string
	Timeout   time.Duration
}

// TokenPageURL 返回用于抓取 CSRF 隐藏字段的页面地址。
func (c AnalysisConfig) TokenPageURL() string {
	if strings.HasPrefix(c.CSRFPage, "http://") || strings.HasPrefix(c.CSRFPage, "https://") {
		return c.CSRFPage
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.CSRFPage, "/")
}

func loadAnalysisConfig() (AnalysisConfig, error) {
	// 默认不设超时：单次请求，由传输层自行决定何时放弃。
	var timeout time.Duration
	seconds, err := parseOptionalIntEnv("ANALYSIS_TIMEOUT")
	if err != nil {
		return AnalysisConfig{}, err
	}
	if seconds != nil {
		if *seconds < 0 {
			return AnalysisConfig{}, fmt.Errorf("invalid ANALYSIS_TIMEOUT value %d: must not be negative", *seconds)
		}
		timeout = time.Duration(*seconds) * time.Second
	}

	return AnalysisConfig{
		BaseURL:   getEnvOrDefault("ANALYSIS_BASE_URL", "http://localhost:8000"),
		Path:      getEnvOrDefault("ANALYSIS_PATH", "/chat/api/analyze/"),
		CSRFToken: strings.TrimSpace(os.Getenv("ANALYSIS_CSRF_TOKEN")),
		CSRFPage:  getEnvOrDefault("ANALYSIS_CSRF_PAGE", "/chat/"),
		CSRFField: getEnvOrDefault("ANALYSIS_CSRF_FIELD", "csrfmiddlewaretoken"),
		UserID:    strings.TrimSpace(os.Getenv("ANALYSIS_USER_ID")),
		Timeout:   timeout,
	}, nil
}

// LogConfig 描述日志级别与格式。
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
