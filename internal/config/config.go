package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию клиента
type Config struct {
	// Адрес API (без /api/v1)
	APIBaseURL string `envconfig:"TADOKU_API_BASE_URL" default:"http://localhost:8080"`

	// Таймаут исходящих HTTP запросов
	HTTPTimeout time.Duration `envconfig:"TADOKU_HTTP_TIMEOUT" default:"15s"`

	// Настройки логирования
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"console"`

	// Каталог локального хранилища сессии (пусто = ~/.tadoku)
	SessionDir string `envconfig:"TADOKU_SESSION_DIR"`

	// Размер страницы списка историй
	PageSize int `envconfig:"TADOKU_PAGE_SIZE" default:"10"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации клиента: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid TADOKU_API_BASE_URL %q: %w", cfg.APIBaseURL, err)
	}

	if cfg.SessionDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory for session storage: %w", err)
		}
		cfg.SessionDir = filepath.Join(home, ".tadoku")
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}

	return &cfg, nil
}
