package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию процесса.
type AppConfig struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	TZ       string `envconfig:"TZ" default:"Europe/Amsterdam"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	Bot struct {
		ConfigPath string `envconfig:"BOT_CONFIG_PATH" default:"config.json"`
		LogsDir    string `envconfig:"BOT_LOGS_DIR" default:"logs"`
	} `envconfig:""`

	WhatsApp struct {
		SessionDSN     string        `envconfig:"WA_SESSION_DSN" default:"file:store/whatsapp.db?_foreign_keys=on"`
		ReconnectDelay time.Duration `envconfig:"WA_RECONNECT_DELAY" default:"3s"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
