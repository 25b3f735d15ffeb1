package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"resume-ai-go/internal/gemini"
	"resume-ai-go/internal/prompt"
)

// GeminiConfig 生成接口配置
type GeminiConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	APIVersion string `yaml:"api_version"`
	Model      string `yaml:"model"`
	Timeout    string `yaml:"timeout"` // 例如 "90s"
}

// ExtractionConfig 文档提取配置
type ExtractionConfig struct {
	SalvageOnOptimize bool     `yaml:"salvage_on_optimize"`
	SnippetRadius     int      `yaml:"snippet_radius"`
	PlaceholderFields []string `yaml:"placeholder_fields"`
}

// RedisConfig 回答缓存使用的 Redis 配置，Address 为空表示不启用缓存
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	PoolSize     int `yaml:"pool_size"`      // 连接池大小
	MinIdleConns int `yaml:"min_idle_conns"` // 最小空闲连接数

	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`

	MaxRetries int `yaml:"max_retries"` // 仅针对 Redis 命令

	CacheTTL string `yaml:"cache_ttl"` // 回答缓存有效期，例如 "24h"
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Address         string   `yaml:"address"` // 例如 ":8080"
	APIKeys         []string `yaml:"api_keys"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	MaxRequestBody  int      `yaml:"max_request_body"` // 字节
}

// RateLimitConfig 调用模型的限流配置，QPM <= 0 表示不限流
type RateLimitConfig struct {
	QPM      int `yaml:"qpm"`
	Capacity int `yaml:"capacity"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`       // debug, info, warn, error
	Format       string `yaml:"format"`      // json, pretty
	TimeFormat   string `yaml:"time_format"` // 时间格式
	ReportCaller bool   `yaml:"report_caller"`
}

// Config 应用配置
type Config struct {
	Gemini     GeminiConfig     `yaml:"gemini"`
	Generation prompt.Settings  `yaml:"generation"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Redis      RedisConfig      `yaml:"redis"`
	Server     ServerConfig     `yaml:"server"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit"`
	Logger     LoggerConfig     `yaml:"logger"`
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.Gemini.BaseURL = gemini.DefaultBaseURL
	cfg.Gemini.APIVersion = gemini.DefaultAPIVersion
	cfg.Gemini.Model = gemini.DefaultModel
	cfg.Gemini.Timeout = gemini.DefaultTimeout.String()

	cfg.Generation = prompt.DefaultSettings()

	cfg.Extraction.SalvageOnOptimize = true
	cfg.Extraction.SnippetRadius = 80
	cfg.Extraction.PlaceholderFields = []string{"photo"}

	cfg.Redis.PoolSize = 10
	cfg.Redis.MinIdleConns = 2
	cfg.Redis.DialTimeoutSeconds = 5
	cfg.Redis.ReadTimeoutSeconds = 3
	cfg.Redis.WriteTimeoutSeconds = 3
	cfg.Redis.MaxRetries = 3
	cfg.Redis.CacheTTL = "24h"

	cfg.Server.Address = ":8080"
	cfg.Server.ShutdownTimeout = "10s"
	cfg.Server.MaxRequestBody = 16 << 20

	cfg.RateLimit.QPM = 60

	cfg.Logger.Level = "info"
	cfg.Logger.Format = "pretty"
	cfg.Logger.TimeFormat = "2006-01-02 15:04:05"
	return cfg
}

// LoadConfig 加载配置：默认值 < 配置文件 < .env < 环境变量。
// configPath 为空时按顺序查找常见位置，都找不到时只使用默认值与环境变量。
func LoadConfig(configPath string) (*Config, error) {
	// .env 不存在不是错误
	_ = godotenv.Load()

	cfg := Default()
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFromFileOnly 从文件加载配置，不读取环境变量
func LoadConfigFromFileOnly(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("必须提供配置文件路径")
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	searchPaths := []string{"config.yaml", "configs/config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".resume-ai", "config.yaml"))
	}
	if execPath, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(filepath.Dir(execPath), "config.yaml"))
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// applyEnv 环境变量覆盖配置；GEMINI_API_KEY 优先于 API_KEY
func applyEnv(cfg *Config) {
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_BASE_URL"); v != "" {
		cfg.Gemini.BaseURL = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("GEMINI_QPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.QPM = n
		}
	}
}

// Validate 检查配置中的时长字段；缺少密钥不在这里报错，调用时再按 MissingCredential 处理
func (c *Config) Validate() error {
	durations := map[string]string{
		"gemini.timeout":          c.Gemini.Timeout,
		"redis.cache_ttl":         c.Redis.CacheTTL,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	}
	for name, v := range durations {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("配置项 %s 不是合法时长 %q: %w", name, v, err)
		}
	}
	if c.Extraction.SnippetRadius < 0 {
		return fmt.Errorf("配置项 extraction.snippet_radius 不能为负数")
	}
	return nil
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
