package domain

import "context"

// ConfigStore загружает и сохраняет конфигурацию бота.
type ConfigStore interface {
	Load() (*AppConfig, error)
	Save(cfg *AppConfig) error
}

// ConfigSaver сохраняет конфигурацию после мемоизации ID группы.
// Вызывается асинхронно; ошибка логируется и никогда не прерывает
// обработку сообщений.
type ConfigSaver interface {
	Save(cfg *AppConfig) error
}

// MessageLogRepo дописывает записи в журнал сообщений за день.
type MessageLogRepo interface {
	Append(entry MessageLogEntry) error
}

// ReleaseClient — клиент внешнего API управления релизами.
type ReleaseClient interface {
	// ListReleases возвращает релизы приложения, отсортированные API
	// от новых к старым. Клиент порядок не меняет.
	ListReleases(ctx context.Context, appID string) ([]Release, error)
	// DistributeRelease выдаёт релиз перечисленным тестировщикам.
	DistributeRelease(ctx context.Context, releaseName string, testerEmails []string) error
}

// ChatResolver получает отображаемые имена групп и отправителей.
type ChatResolver interface {
	GroupName(ctx context.Context, groupJID string) (string, error)
	SenderName(ctx context.Context, senderJID string) (string, error)
}

// ReplySender отправляет текстовый ответ в исходный чат.
type ReplySender interface {
	Reply(ctx context.Context, chatJID, text string) error
}

// MessageHandler обрабатывает одно входящее сообщение до конца.
type MessageHandler interface {
	Handle(ctx context.Context, msg InboundMessage)
}
