package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"wa-distribution-bot/internal/domain"
)

// FileStore хранит конфигурацию бота в JSON файле. Отсутствующий файл
// создаётся с настройками по умолчанию, повреждённый подменяется ими в
// памяти — ошибка конфигурации никогда не валит процесс.
type FileStore struct {
	path string
	log  zerolog.Logger
}

// NewFileStore создаёт файловое хранилище конфигурации.
func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

var _ domain.ConfigStore = (*FileStore)(nil)

// fileSettings использует указатели, чтобы отличить отсутствующее поле
// от явного false: logAllGroupsIfEmpty по умолчанию true.
type fileSettings struct {
	LogAllGroupsIfEmpty     *bool `json:"logAllGroupsIfEmpty"`
	CaseSensitiveGroupNames *bool `json:"caseSensitiveGroupNames"`
	DiscoveryMode           *bool `json:"discoveryMode"`
}

type fileConfig struct {
	TargetGroups []domain.MonitoredGroup   `json:"targetGroups"`
	Settings     fileSettings              `json:"settings"`
	Firebase     domain.DistributionConfig `json:"firebase"`
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() *domain.AppConfig {
	return &domain.AppConfig{
		TargetGroups: []domain.MonitoredGroup{},
		Settings: domain.FilterSettings{
			LogAllGroupsIfEmpty: true,
		},
	}
}

// Load читает конфигурацию из файла.
func (s *FileStore) Load() (*domain.AppConfig, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		if saveErr := s.Save(cfg); saveErr != nil {
			s.log.Warn().Err(saveErr).Str("path", s.path).Msg("не удалось записать конфиг по умолчанию")
		} else {
			s.log.Info().Str("path", s.path).Msg("создан конфиг по умолчанию")
		}
		return cfg, nil
	}
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("конфиг недоступен, используются настройки по умолчанию")
		return DefaultConfig(), nil
	}

	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("конфиг повреждён, используются настройки по умолчанию")
		return DefaultConfig(), nil
	}

	cfg := &domain.AppConfig{
		TargetGroups: raw.TargetGroups,
		Settings: domain.FilterSettings{
			LogAllGroupsIfEmpty:     boolOr(raw.Settings.LogAllGroupsIfEmpty, true),
			CaseSensitiveGroupNames: boolOr(raw.Settings.CaseSensitiveGroupNames, false),
			DiscoveryMode:           boolOr(raw.Settings.DiscoveryMode, false),
		},
		Firebase: raw.Firebase,
	}
	if cfg.TargetGroups == nil {
		cfg.TargetGroups = []domain.MonitoredGroup{}
	}
	return cfg, nil
}

// Save атомарно записывает конфигурацию: сначала во временный файл,
// затем переименование.
func (s *FileStore) Save(cfg *domain.AppConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация конфига: %w", err)
	}
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("создание каталога конфига: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("запись конфига: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("замена конфига: %w", err)
	}
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
