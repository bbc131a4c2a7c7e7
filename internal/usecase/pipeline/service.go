package pipeline

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"wa-distribution-bot/internal/domain"
	infralog "wa-distribution-bot/internal/infra/log"
	"wa-distribution-bot/internal/infra/metrics"
	"wa-distribution-bot/internal/usecase/distribution"
	"wa-distribution-bot/internal/usecase/groups"
)

// Service прогоняет каждое входящее сообщение через полный конвейер:
// проверка отправителя и чата, извлечение содержимого, фильтр групп,
// журнал, разбор команды дистрибуции и ответ в группу.
//
// Handle вызывается строго последовательно из одного цикла событий,
// поэтому кэши мутируются без блокировок. Список групп защищает фильтр:
// его читают и HTTP-хендлеры.
type Service struct {
	log        zerolog.Logger
	cfg        *domain.AppConfig
	filter     *groups.Service
	dispatcher *distribution.Service
	msgs       domain.MessageLogRepo
	chat       domain.ChatResolver
	sender     domain.ReplySender

	// Кэши на время жизни процесса: ограничивают повторный вывод
	// discovery-анонсов и debug-строк об отфильтрованных группах.
	discovered map[string]struct{}
	filtered   map[string]struct{}
}

// NewService создаёт конвейер обработки сообщений.
func NewService(cfg *domain.AppConfig, filter *groups.Service, dispatcher *distribution.Service, msgs domain.MessageLogRepo, chat domain.ChatResolver, sender domain.ReplySender, log zerolog.Logger) *Service {
	return &Service{
		log:        log,
		cfg:        cfg,
		filter:     filter,
		dispatcher: dispatcher,
		msgs:       msgs,
		chat:       chat,
		sender:     sender,
		discovered: make(map[string]struct{}),
		filtered:   make(map[string]struct{}),
	}
}

var _ domain.MessageHandler = (*Service)(nil)

// Handle обрабатывает одно сообщение до конца. Никакая ошибка внутри не
// прерывает процесс: сбои журналирования, дистрибуции и ответа только
// логируются.
func (s *Service) Handle(ctx context.Context, msg domain.InboundMessage) {
	if msg.IsFromMe {
		return
	}
	if !msg.IsGroup {
		return
	}
	metrics.MessagesReceived.Inc()

	groupName := s.resolveGroupName(ctx, msg.ChatJID)

	if s.cfg.Settings.DiscoveryMode {
		s.announceDiscovery(msg.ChatJID, groupName)
	}

	if !s.filter.ShouldMonitor(s.cfg, msg.ChatJID, groupName) {
		metrics.MessagesFiltered.Inc()
		if _, seen := s.filtered[msg.ChatJID]; !seen {
			s.filtered[msg.ChatJID] = struct{}{}
			s.log.Debug().Str("group", groupName).Str("id", msg.ChatJID).Msg("группа не отслеживается, сообщения пропускаются")
		}
		return
	}

	senderName := s.resolveSenderName(ctx, msg)
	content := msg.Content.Display()

	infralog.MessageEvent(s.log).Msgf("[%s] %s: %s", groupName, senderName, content)
	metrics.MessagesLogged.Inc()

	entry := domain.MessageLogEntry{
		Timestamp:  msg.Timestamp,
		GroupID:    msg.ChatJID,
		GroupName:  groupName,
		SenderID:   msg.SenderJID,
		SenderName: senderName,
		MessageID:  msg.MessageID,
		Content:    content,
	}
	if err := s.msgs.Append(entry); err != nil {
		s.log.Warn().Err(err).Str("group", groupName).Msg("не удалось записать сообщение в журнал")
	}

	s.maybeDispatch(ctx, msg)
}

// maybeDispatch разбирает текстовые сообщения как команды дистрибуции.
// Нетекстовые виды содержимого парсеру не предлагаются.
func (s *Service) maybeDispatch(ctx context.Context, msg domain.InboundMessage) {
	if !msg.Content.IsText() {
		return
	}
	req, ok := distribution.ParseRequest(msg.Content.Text)
	if !ok {
		return
	}

	s.log.Info().Str("email", req.Email).Str("platform", req.Platform).Msg("получена команда дистрибуции")
	result := s.dispatcher.AddTester(ctx, req)

	prefix := "✅ "
	if !result.Success {
		prefix = "❌ "
	}
	if err := s.sender.Reply(ctx, msg.ChatJID, prefix+result.Message); err != nil {
		metrics.ReplyErrors.Inc()
		s.log.Error().Err(err).Str("chat", msg.ChatJID).Msg("не удалось отправить ответ в группу")
	}
}

// announceDiscovery выводит DISCOVERY-строку один раз на группу за всё
// время жизни процесса, независимо от решения фильтра.
func (s *Service) announceDiscovery(groupID, groupName string) {
	if _, seen := s.discovered[groupID]; seen {
		return
	}
	s.discovered[groupID] = struct{}{}
	metrics.GroupsDiscovered.Inc()
	infralog.DiscoveryEvent(s.log).Msgf("группа: %s (%s)", groupName, groupID)
}

func (s *Service) resolveGroupName(ctx context.Context, groupJID string) string {
	name, err := s.chat.GroupName(ctx, groupJID)
	if err != nil || name == "" {
		s.log.Debug().Err(err).Str("id", groupJID).Msg("имя группы недоступно, используется JID")
		return groupJID
	}
	return name
}

func (s *Service) resolveSenderName(ctx context.Context, msg domain.InboundMessage) string {
	name, err := s.chat.SenderName(ctx, msg.SenderJID)
	if err == nil && name != "" {
		return name
	}
	if msg.PushName != "" {
		return msg.PushName
	}
	if idx := strings.Index(msg.SenderJID, "@"); idx > 0 {
		return msg.SenderJID[:idx]
	}
	return msg.SenderJID
}
