package log

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ConsoleTimeFormat — формат времени консольной строки журнала.
const ConsoleTimeFormat = "2006-01-02 15:04:05"

// Дополнительные уровни консольного журнала поверх стандартных zerolog.
const (
	KindMessage   = "message"
	KindDiscovery = "discovery"
)

// NewLogger создаёт настроенный zerolog с консольным форматом
// «[время] [УРОВЕНЬ] текст». Поле kind, если оно задано, подставляется
// на место уровня: так появляются строки MESSAGE и DISCOVERY.
func NewLogger(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "dev" {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: true}
	writer.FormatTimestamp = func(i interface{}) string {
		ts, ok := i.(string)
		if !ok {
			return fmt.Sprintf("[%v]", i)
		}
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return "[" + ts + "]"
		}
		return "[" + parsed.Format(ConsoleTimeFormat) + "]"
	}
	writer.FormatLevel = func(i interface{}) string {
		if lvl, ok := i.(string); ok && lvl != "" {
			return "[" + strings.ToUpper(lvl) + "]"
		}
		return "[INFO]"
	}
	writer.FormatPrepare = func(evt map[string]interface{}) error {
		if kind, ok := evt["kind"].(string); ok && kind != "" {
			evt[zerolog.LevelFieldName] = kind
			delete(evt, "kind")
		}
		return nil
	}

	return zerolog.New(writer).With().Timestamp().Logger().Level(level)
}

// MessageEvent возвращает событие с уровнем MESSAGE для записи
// пропущенного фильтром сообщения группы.
func MessageEvent(l zerolog.Logger) *zerolog.Event {
	return l.Info().Str("kind", KindMessage)
}

// DiscoveryEvent возвращает событие с уровнем DISCOVERY для анонса
// обнаруженной группы.
func DiscoveryEvent(l zerolog.Logger) *zerolog.Event {
	return l.Info().Str("kind", KindDiscovery)
}
