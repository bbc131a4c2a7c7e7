package whatsapp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"

	"wa-distribution-bot/internal/domain"
)

// Resolver получает отображаемые имена групп и отправителей через
// подключённого клиента.
type Resolver struct {
	client *whatsmeow.Client
	log    zerolog.Logger
}

// NewResolver создаёт резолвер имён.
func NewResolver(client *whatsmeow.Client, log zerolog.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

var _ domain.ChatResolver = (*Resolver)(nil)

// GroupName возвращает название группы. Ошибка не фатальна: вызывающая
// сторона подставляет сырой JID.
func (r *Resolver) GroupName(ctx context.Context, groupJID string) (string, error) {
	jid, err := types.ParseJID(groupJID)
	if err != nil {
		return "", fmt.Errorf("разбор JID группы: %w", err)
	}
	info, err := r.client.GetGroupInfo(jid)
	if err != nil {
		return "", fmt.Errorf("запрос информации о группе: %w", err)
	}
	return info.Name, nil
}

// SenderName возвращает имя контакта отправителя, если оно известно.
func (r *Resolver) SenderName(ctx context.Context, senderJID string) (string, error) {
	jid, err := types.ParseJID(senderJID)
	if err != nil {
		return "", fmt.Errorf("разбор JID отправителя: %w", err)
	}
	contact, err := r.client.Store.Contacts.GetContact(ctx, jid)
	if err != nil {
		return "", fmt.Errorf("запрос контакта: %w", err)
	}
	if contact.FullName != "" {
		return contact.FullName, nil
	}
	return contact.PushName, nil
}
