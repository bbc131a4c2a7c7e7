package whatsapp

import (
	"fmt"

	"github.com/rs/zerolog"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// zerologAdapter направляет внутренний журнал whatsmeow в общий zerolog.
type zerologAdapter struct {
	log zerolog.Logger
}

// NewLogger создаёт waLog.Logger поверх zerolog для указанного модуля.
func NewLogger(log zerolog.Logger, module string) waLog.Logger {
	return &zerologAdapter{log: log.With().Str("module", module).Logger()}
}

func (a *zerologAdapter) Errorf(msg string, args ...interface{}) {
	a.log.Error().Msg(fmt.Sprintf(msg, args...))
}

func (a *zerologAdapter) Warnf(msg string, args ...interface{}) {
	a.log.Warn().Msg(fmt.Sprintf(msg, args...))
}

func (a *zerologAdapter) Infof(msg string, args ...interface{}) {
	a.log.Info().Msg(fmt.Sprintf(msg, args...))
}

func (a *zerologAdapter) Debugf(msg string, args ...interface{}) {
	a.log.Debug().Msg(fmt.Sprintf(msg, args...))
}

func (a *zerologAdapter) Sub(module string) waLog.Logger {
	return &zerologAdapter{log: a.log.With().Str("module", module).Logger()}
}
