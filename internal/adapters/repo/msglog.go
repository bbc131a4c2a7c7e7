package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"wa-distribution-bot/internal/domain"
)

// MessageLog дописывает записи в журнал сообщений: один JSON массив на
// календарную дату, файлы вида messages-2024-05-01.json.
type MessageLog struct {
	dir string
	log zerolog.Logger
}

// NewMessageLog создаёт журнал в указанном каталоге.
func NewMessageLog(dir string, log zerolog.Logger) *MessageLog {
	return &MessageLog{dir: dir, log: log}
}

var _ domain.MessageLogRepo = (*MessageLog)(nil)

// Append добавляет запись в файл текущего дня. Повреждённый существующий
// файл считается пустым: журнал начинается заново с предупреждением.
func (m *MessageLog) Append(entry domain.MessageLogEntry) error {
	path := m.dayPath(time.Now())
	entries := m.readExisting(path)
	entries = append(entries, entry)

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("создание каталога журнала: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация журнала: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("запись журнала: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("замена журнала: %w", err)
	}
	return nil
}

func (m *MessageLog) dayPath(day time.Time) string {
	return filepath.Join(m.dir, fmt.Sprintf("messages-%s.json", day.Format("2006-01-02")))
}

func (m *MessageLog) readExisting(path string) []domain.MessageLogEntry {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		m.log.Warn().Err(err).Str("path", path).Msg("журнал за день недоступен, начинается заново")
		return nil
	}
	var entries []domain.MessageLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		m.log.Warn().Err(err).Str("path", path).Msg("журнал за день повреждён, начинается заново")
		return nil
	}
	return entries
}
