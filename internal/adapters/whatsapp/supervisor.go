package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"

	"wa-distribution-bot/internal/domain"
)

// ErrLoggedOut возвращается, когда аккаунт вышел из сессии: для текущего
// запуска процесса это терминальное состояние, переподключение не
// выполняется.
var ErrLoggedOut = errors.New("выполнен выход из аккаунта WhatsApp")

const eventBuffer = 256

// connection — минимальная поверхность клиента, нужная циклу событий.
type connection interface {
	Connect() error
	Disconnect()
	IsConnected() bool
}

// Supervisor владеет жизненным циклом соединения: QR-авторизация,
// переподключение после обрыва и раздача событий конвейеру. События
// читаются из одного канала и обрабатываются строго последовательно —
// это гарантия порядка для всего конвейера.
type Supervisor struct {
	client         *whatsmeow.Client
	conn           connection
	handler        domain.MessageHandler
	cfg            *domain.AppConfig
	log            zerolog.Logger
	reconnectDelay time.Duration
	events         chan interface{}
}

// NewSupervisor создаёт супервизор соединения и подписывается на события
// клиента.
func NewSupervisor(client *whatsmeow.Client, handler domain.MessageHandler, cfg *domain.AppConfig, reconnectDelay time.Duration, log zerolog.Logger) *Supervisor {
	s := &Supervisor{
		client:         client,
		conn:           client,
		handler:        handler,
		cfg:            cfg,
		log:            log,
		reconnectDelay: reconnectDelay,
		events:         make(chan interface{}, eventBuffer),
	}
	client.AddEventHandler(func(evt interface{}) {
		s.events <- evt
	})
	return s
}

// Run подключается и обрабатывает события до отмены контекста или
// выхода из аккаунта.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}
	return s.loop(ctx)
}

func (s *Supervisor) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.conn.Disconnect()
			return ctx.Err()
		case evt := <-s.events:
			if err := s.handleEvent(ctx, evt); err != nil {
				return err
			}
		}
	}
}

// handleEvent решает судьбу одного события. Ненулевая ошибка завершает
// цикл: обрыв соединения переживается переподключением, выход из
// аккаунта — терминален.
func (s *Supervisor) handleEvent(ctx context.Context, evt interface{}) error {
	switch v := evt.(type) {
	case *events.Message:
		s.handler.Handle(ctx, toInbound(v))
	case *events.Connected:
		s.announceGroups()
	case *events.Disconnected:
		s.log.Warn().Msg("соединение с WhatsApp потеряно")
		s.reconnect(ctx)
	case *events.LoggedOut:
		s.log.Error().Msg("аккаунт вышел из сессии, требуется повторная авторизация")
		s.conn.Disconnect()
		return ErrLoggedOut
	}
	return nil
}

// connect устанавливает соединение; при отсутствии сохранённой сессии
// выводит QR-код в терминал и ждёт авторизации.
func (s *Supervisor) connect(ctx context.Context) error {
	if s.client.Store.ID == nil {
		qrChan, err := s.client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("QR канал: %w", err)
		}
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("подключение: %w", err)
		}
		for evt := range qrChan {
			switch evt.Event {
			case "code":
				s.log.Info().Msg("отсканируйте QR-код в приложении WhatsApp")
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
			case "success":
				s.log.Info().Msg("авторизация выполнена")
			default:
				s.log.Warn().Str("event", evt.Event).Msg("QR канал завершился без авторизации")
			}
		}
		return nil
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("подключение: %w", err)
	}
	return nil
}

// reconnect пытается восстановить соединение с фиксированной задержкой,
// пока не получится или контекст не будет отменён.
func (s *Supervisor) reconnect(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}
		if s.conn.IsConnected() {
			return
		}
		s.log.Info().Msg("переподключение к WhatsApp")
		if err := s.conn.Connect(); err != nil {
			s.log.Error().Err(err).Msg("переподключение не удалось")
			continue
		}
		return
	}
}

// announceGroups печатает активный набор отслеживаемых групп после
// каждого успешного подключения.
func (s *Supervisor) announceGroups() {
	s.log.Info().Msg("соединение с WhatsApp установлено")
	var names []string
	for _, g := range s.cfg.TargetGroups {
		if g.Enabled {
			names = append(names, g.Name)
		}
	}
	if len(names) == 0 {
		if s.cfg.Settings.LogAllGroupsIfEmpty {
			s.log.Info().Msg("отслеживаются все группы")
		} else {
			s.log.Info().Msg("отслеживаемых групп нет")
		}
		return
	}
	s.log.Info().Strs("groups", names).Msg("отслеживаемые группы")
}
