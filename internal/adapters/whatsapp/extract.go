package whatsapp

import (
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"wa-distribution-bot/internal/domain"
)

// ExtractContent классифицирует полезную нагрузку сообщения: ровно один
// вид содержимого на сообщение, единственным разбором.
func ExtractContent(msg *waProto.Message) domain.MessageContent {
	switch {
	case msg == nil:
		return domain.MessageContent{Kind: domain.ContentOther}
	case msg.GetConversation() != "":
		return domain.MessageContent{Kind: domain.ContentText, Text: msg.GetConversation()}
	case msg.GetExtendedTextMessage() != nil:
		return domain.MessageContent{Kind: domain.ContentExtendedText, Text: msg.GetExtendedTextMessage().GetText()}
	case msg.GetImageMessage() != nil:
		return domain.MessageContent{Kind: domain.ContentImage, Caption: msg.GetImageMessage().GetCaption()}
	case msg.GetVideoMessage() != nil:
		return domain.MessageContent{Kind: domain.ContentVideo, Caption: msg.GetVideoMessage().GetCaption()}
	case msg.GetAudioMessage() != nil:
		return domain.MessageContent{Kind: domain.ContentAudio}
	case msg.GetDocumentMessage() != nil:
		return domain.MessageContent{
			Kind:     domain.ContentDocument,
			Filename: msg.GetDocumentMessage().GetFileName(),
			Caption:  msg.GetDocumentMessage().GetCaption(),
		}
	case msg.GetStickerMessage() != nil:
		return domain.MessageContent{Kind: domain.ContentSticker}
	}
	return domain.MessageContent{Kind: domain.ContentOther}
}

// toInbound переводит событие whatsmeow в транспортно-независимое
// входящее сообщение.
func toInbound(evt *events.Message) domain.InboundMessage {
	return domain.InboundMessage{
		ChatJID:   evt.Info.Chat.String(),
		SenderJID: evt.Info.Sender.String(),
		PushName:  evt.Info.PushName,
		MessageID: evt.Info.ID,
		Timestamp: evt.Info.Timestamp,
		IsFromMe:  evt.Info.IsFromMe,
		IsGroup:   evt.Info.Chat.Server == types.GroupServer,
		Content:   ExtractContent(evt.Message),
	}
}
