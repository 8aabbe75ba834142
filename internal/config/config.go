package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"bookwidget/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Embed      EmbedConfig      `yaml:"embed"`
	Widget     WidgetConfig     `yaml:"widget"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// EmbedConfig mirrors the inert embed attributes read once at load time.
type EmbedConfig struct {
	BaseURL         string `yaml:"base_url"`
	ClientID        string `yaml:"client_id"`
	AccentColor     string `yaml:"accent_color"`
	TriggerSelector string `yaml:"trigger_selector"`
	FloatingButton  *bool  `yaml:"floating_button"`
}

// FloatingButtonVisible defaults to true when the toggle is omitted.
func (e EmbedConfig) FloatingButtonVisible() bool {
	return e.FloatingButton == nil || *e.FloatingButton
}

type WidgetConfig struct {
	HTTPPort          int                `yaml:"http_port"`
	SessionTTL        int                `yaml:"session_ttl"`
	CacheTTL          int                `yaml:"cache_ttl"`
	RateLimit         WidgetRateLimit    `yaml:"rate_limit"`
	AvailabilityLimit AvailabilityLimit  `yaml:"availability_limit"`
}

type WidgetRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// AvailabilityLimit throttles client-side availability fetches.
type AvailabilityLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env подхватывается при наличии, отсутствие файла не ошибка
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	return c.Embed.Validate()
}

// Validate enforces the attach-time contract: the widget refuses to
// initialize without a client identifier and a parseable backend URL.
func (e EmbedConfig) Validate() error {
	if e.ClientID == "" {
		return errors.New("embed client_id is required")
	}
	if e.BaseURL == "" {
		return errors.New("embed base_url is required")
	}
	if _, err := url.Parse(e.BaseURL); err != nil {
		return fmt.Errorf("embed base_url is invalid: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Widget.HTTPPort == 0 {
		c.Widget.HTTPPort = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Widget.SessionTTL == 0 {
		c.Widget.SessionTTL = models.DefaultSessionTTL
	}
	if c.Widget.CacheTTL == 0 {
		c.Widget.CacheTTL = models.DefaultCacheTTL
	}
	if c.Widget.RateLimit.RPS == 0 {
		c.Widget.RateLimit.RPS = float64(models.RateLimitActions) / float64(models.RateLimitWindow)
	}
	if c.Widget.RateLimit.Burst == 0 {
		c.Widget.RateLimit.Burst = 10
	}
	if c.Widget.AvailabilityLimit.RPS == 0 {
		c.Widget.AvailabilityLimit.RPS = 5
	}
	if c.Widget.AvailabilityLimit.Burst == 0 {
		c.Widget.AvailabilityLimit.Burst = 5
	}
	if c.Embed.AccentColor == "" {
		c.Embed.AccentColor = "#2f6fde"
	}
}
