package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel               = "gemini-2.5-flash"
	DefaultHTTPAddr            = ":8080"
	DefaultMinRequestInterval  = 2 * time.Second
	DefaultQuotaCooldown       = 60 * time.Second
	DefaultDetectionInterval   = 3 * time.Second
	DefaultConfidenceThreshold = 70

	minDetectionInterval = time.Second
	maxDetectionInterval = 10 * time.Second
	minConfidence        = 50
	maxConfidence        = 100
)

type Config struct {
	GoogleAPIKey  string
	GeminiModel   string
	TelegramToken string
	HTTPAddr      string
	CORSOrigins   []string
	CameraDevice  string

	MinRequestInterval  time.Duration
	QuotaCooldown       time.Duration
	DetectionInterval   time.Duration
	ConfidenceThreshold int
	SharedQuota         bool

	Log LogConfig
}

// LogConfig параметры логирования
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// fileConfig формат YAML-файла; длительности строками ("2s" или "2").
type fileConfig struct {
	GoogleAPIKey        string    `yaml:"google_api_key"`
	GeminiModel         string    `yaml:"gemini_model"`
	TelegramToken       string    `yaml:"telegram_token"`
	HTTPAddr            string    `yaml:"http_addr"`
	CORSOrigins         []string  `yaml:"cors_origins"`
	CameraDevice        string    `yaml:"camera_device"`
	MinRequestInterval  string    `yaml:"min_request_interval"`
	QuotaCooldown       string    `yaml:"quota_cooldown"`
	DetectionInterval   string    `yaml:"detection_interval"`
	ConfidenceThreshold int       `yaml:"confidence_threshold"`
	SharedQuota         *bool     `yaml:"shared_quota"`
	Log                 LogConfig `yaml:"log"`
}

// MockMode ключа API нет, работают демо-ответы
func (c *Config) MockMode() bool {
	return c.GoogleAPIKey == ""
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	cfg.normalize()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		GeminiModel:         DefaultModel,
		HTTPAddr:            DefaultHTTPAddr,
		CORSOrigins:         []string{"*"},
		MinRequestInterval:  DefaultMinRequestInterval,
		QuotaCooldown:       DefaultQuotaCooldown,
		DetectionInterval:   DefaultDetectionInterval,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&c.GoogleAPIKey, fc.GoogleAPIKey)
	setString(&c.GeminiModel, fc.GeminiModel)
	setString(&c.TelegramToken, fc.TelegramToken)
	setString(&c.HTTPAddr, fc.HTTPAddr)
	setString(&c.CameraDevice, fc.CameraDevice)
	setString(&c.Log.Level, fc.Log.Level)
	setString(&c.Log.Format, fc.Log.Format)
	setString(&c.Log.Output, fc.Log.Output)
	if len(fc.CORSOrigins) > 0 {
		c.CORSOrigins = fc.CORSOrigins
	}
	if fc.ConfidenceThreshold != 0 {
		c.ConfidenceThreshold = fc.ConfidenceThreshold
	}
	if fc.SharedQuota != nil {
		c.SharedQuota = *fc.SharedQuota
	}

	for key, field := range map[string]struct {
		raw string
		dst *time.Duration
	}{
		"min_request_interval": {fc.MinRequestInterval, &c.MinRequestInterval},
		"quota_cooldown":       {fc.QuotaCooldown, &c.QuotaCooldown},
		"detection_interval":   {fc.DetectionInterval, &c.DetectionInterval},
	} {
		if field.raw == "" {
			continue
		}
		d, err := ParseDuration(field.raw)
		if err != nil {
			return fmt.Errorf("config file %s: %w", key, err)
		}
		*field.dst = d
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.GoogleAPIKey, os.Getenv("GOOGLE_API_KEY"))
	setString(&c.GeminiModel, os.Getenv("GEMINI_MODEL"))
	setString(&c.TelegramToken, os.Getenv("TELEGRAM_TOKEN"))
	setString(&c.HTTPAddr, os.Getenv("HTTP_ADDR"))
	setString(&c.CameraDevice, os.Getenv("CAMERA_DEVICE"))
	setString(&c.Log.Level, os.Getenv("LOG_LEVEL"))
	setString(&c.Log.Format, os.Getenv("LOG_FORMAT"))

	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		c.CORSOrigins = splitList(v)
	}

	for key, dst := range map[string]*time.Duration{
		"MIN_REQUEST_INTERVAL": &c.MinRequestInterval,
		"QUOTA_COOLDOWN":       &c.QuotaCooldown,
		"DETECTION_INTERVAL":   &c.DetectionInterval,
	} {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	if v := strings.TrimSpace(os.Getenv("CONFIDENCE_THRESHOLD")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CONFIDENCE_THRESHOLD: %w", err)
		}
		c.ConfidenceThreshold = n
	}

	if v := strings.TrimSpace(os.Getenv("SHARED_QUOTA")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SHARED_QUOTA: %w", err)
		}
		c.SharedQuota = b
	}
	return nil
}

// normalize приводит значения к допустимым диапазонам.
func (c *Config) normalize() {
	c.GoogleAPIKey = strings.TrimSpace(c.GoogleAPIKey)
	if c.MinRequestInterval < 0 {
		c.MinRequestInterval = 0
	}
	if c.QuotaCooldown <= 0 {
		c.QuotaCooldown = DefaultQuotaCooldown
	}
	c.DetectionInterval = min(max(c.DetectionInterval, minDetectionInterval), maxDetectionInterval)
	c.ConfidenceThreshold = min(max(c.ConfidenceThreshold, minConfidence), maxConfidence)
}

// ParseDuration принимает синтаксис Go ("2s", "1m30s") или число секунд ("2", "2.5").
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return d, nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
