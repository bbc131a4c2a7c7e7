package domain

import "time"

// Платформы, для которых настраивается дистрибуция сборок.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// MonitoredGroup описывает группу WhatsApp, которую бот отслеживает.
// Пока ID не известен, группа идентифицируется по имени; после первого
// совпадения ID запоминается и больше никогда не сбрасывается.
type MonitoredGroup struct {
	Name    string `json:"name"`
	ID      string `json:"id,omitempty"`
	Enabled bool   `json:"enabled"`
}

// FilterSettings содержит глобальные настройки фильтрации групп.
type FilterSettings struct {
	LogAllGroupsIfEmpty     bool `json:"logAllGroupsIfEmpty"`
	CaseSensitiveGroupNames bool `json:"caseSensitiveGroupNames"`
	DiscoveryMode           bool `json:"discoveryMode"`
}

// DistributionConfig содержит параметры Firebase App Distribution.
type DistributionConfig struct {
	ServiceAccountKeyPath string `json:"serviceAccountKeyPath"`
	ProjectID             string `json:"projectId"`
	AndroidAppID          string `json:"androidAppId"`
	IOSAppID              string `json:"iosAppId"`
}

// AppID возвращает идентификатор приложения для платформы и имя
// соответствующего ключа конфигурации.
func (c DistributionConfig) AppID(platform string) (string, string) {
	switch platform {
	case PlatformAndroid:
		return c.AndroidAppID, "androidAppId"
	case PlatformIOS:
		return c.IOSAppID, "iosAppId"
	}
	return "", ""
}

// AppConfig — конфигурация бота, загружаемая из JSON файла.
type AppConfig struct {
	TargetGroups []MonitoredGroup   `json:"targetGroups"`
	Settings     FilterSettings     `json:"settings"`
	Firebase     DistributionConfig `json:"firebase"`
}

// Clone возвращает независимую копию конфигурации для отложенного
// сохранения.
func (c *AppConfig) Clone() *AppConfig {
	cp := *c
	cp.TargetGroups = make([]MonitoredGroup, len(c.TargetGroups))
	copy(cp.TargetGroups, c.TargetGroups)
	return &cp
}

// DistributionRequest — распарсенная команда добавления тестировщика.
// Живёт только в пределах обработки одного сообщения.
type DistributionRequest struct {
	Email    string
	Platform string
}

// DistributionResult описывает исход попытки добавить тестировщика.
type DistributionResult struct {
	Success bool
	Message string
}

// Release представляет релиз в Firebase App Distribution.
type Release struct {
	Name           string
	DisplayVersion string
	BuildVersion   string
}

// MessageLogEntry — запись в журнале сообщений за день.
type MessageLogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	GroupID    string    `json:"groupId"`
	GroupName  string    `json:"groupName"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	MessageID  string    `json:"messageId"`
	Content    string    `json:"content"`
}

// ContentKind — вид содержимого входящего сообщения.
type ContentKind string

const (
	ContentText         ContentKind = "text"
	ContentExtendedText ContentKind = "extendedText"
	ContentImage        ContentKind = "image"
	ContentVideo        ContentKind = "video"
	ContentAudio        ContentKind = "audio"
	ContentDocument     ContentKind = "document"
	ContentSticker      ContentKind = "sticker"
	ContentOther        ContentKind = "other"
)

// MessageContent — размеченное содержимое сообщения: ровно один вид
// на сообщение, извлечённый единственным разбором полезной нагрузки.
type MessageContent struct {
	Kind     ContentKind
	Text     string
	Caption  string
	Filename string
}

// IsText сообщает, содержит ли сообщение обычный текст, пригодный для
// разбора команд дистрибуции.
func (c MessageContent) IsText() bool {
	return c.Kind == ContentText || c.Kind == ContentExtendedText
}

// Display возвращает отображаемую строку для журнала.
func (c MessageContent) Display() string {
	switch c.Kind {
	case ContentText, ContentExtendedText:
		return c.Text
	case ContentImage:
		return withCaption("[Изображение]", c.Caption)
	case ContentVideo:
		return withCaption("[Видео]", c.Caption)
	case ContentAudio:
		return "[Аудио]"
	case ContentDocument:
		return withCaption("[Документ]", c.Filename)
	case ContentSticker:
		return "[Стикер]"
	}
	return "[Неизвестный тип сообщения]"
}

func withCaption(label, caption string) string {
	if caption == "" {
		return label
	}
	return label + " " + caption
}

// InboundMessage — входящее сообщение после извлечения полей из транспорта.
type InboundMessage struct {
	ChatJID   string
	SenderJID string
	PushName  string
	MessageID string
	Timestamp time.Time
	IsFromMe  bool
	IsGroup   bool
	Content   MessageContent
}
