package whatsapp

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"

	"wa-distribution-bot/internal/domain"
	"wa-distribution-bot/internal/infra/metrics"
)

// Sender отправляет текстовые ответы в исходный чат.
type Sender struct {
	client *whatsmeow.Client
	log    zerolog.Logger
}

// NewSender создаёт отправителя ответов.
func NewSender(client *whatsmeow.Client, log zerolog.Logger) *Sender {
	return &Sender{client: client, log: log}
}

var _ domain.ReplySender = (*Sender)(nil)

// Reply отправляет текст в указанный чат.
func (s *Sender) Reply(ctx context.Context, chatJID, text string) error {
	jid, err := types.ParseJID(chatJID)
	if err != nil {
		return fmt.Errorf("разбор JID чата: %w", err)
	}
	msg := &waProto.Message{Conversation: proto.String(text)}
	start := time.Now()
	_, err = s.client.SendMessage(ctx, jid, msg)
	metrics.ObserveNetworkRequest("whatsapp", "send_message", jid.User, start, err)
	if err != nil {
		return fmt.Errorf("отправка сообщения: %w", err)
	}
	return nil
}
