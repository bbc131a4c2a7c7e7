package whatsapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"wa-distribution-bot/internal/domain"
)

type fakeConn struct {
	connected   bool
	connectErr  error
	connects    int
	disconnects int
}

func (f *fakeConn) Connect() error {
	f.connects++
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeConn) Disconnect() { f.disconnects++ }

func (f *fakeConn) IsConnected() bool { return f.connected }

type fakeHandler struct {
	msgs []domain.InboundMessage
}

func (f *fakeHandler) Handle(ctx context.Context, msg domain.InboundMessage) {
	f.msgs = append(f.msgs, msg)
}

func newTestSupervisor(conn *fakeConn, handler *fakeHandler) *Supervisor {
	return &Supervisor{
		conn:           conn,
		handler:        handler,
		cfg:            &domain.AppConfig{},
		log:            zerolog.Nop(),
		reconnectDelay: time.Millisecond,
		events:         make(chan interface{}, eventBuffer),
	}
}

func TestLoopLoggedOutTerminal(t *testing.T) {
	conn := &fakeConn{connected: true}
	s := newTestSupervisor(conn, &fakeHandler{})
	s.events <- &events.LoggedOut{}

	err := s.loop(context.Background())
	if !errors.Is(err, ErrLoggedOut) {
		t.Fatalf("ожидали ErrLoggedOut, получили %v", err)
	}
	if conn.disconnects != 1 {
		t.Fatalf("ожидали отключение клиента, вызовов %d", conn.disconnects)
	}
	if conn.connects != 0 {
		t.Fatal("после выхода из аккаунта переподключаться нельзя")
	}
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	conn := &fakeConn{connected: true}
	s := newTestSupervisor(conn, &fakeHandler{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.loop(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ожидали context.Canceled, получили %v", err)
	}
	if conn.disconnects != 1 {
		t.Fatalf("ожидали отключение клиента, вызовов %d", conn.disconnects)
	}
}

func TestHandleEventDisconnectedReconnects(t *testing.T) {
	conn := &fakeConn{connected: false}
	s := newTestSupervisor(conn, &fakeHandler{})

	if err := s.handleEvent(context.Background(), &events.Disconnected{}); err != nil {
		t.Fatalf("обрыв соединения не должен завершать цикл: %v", err)
	}
	if conn.connects != 1 {
		t.Fatalf("ожидали одну попытку переподключения, было %d", conn.connects)
	}
	if !conn.connected {
		t.Fatal("после переподключения соединение должно быть активно")
	}
}

func TestHandleEventDisconnectedRetriesUntilConnected(t *testing.T) {
	conn := &fakeConn{connectErr: errors.New("сеть недоступна")}
	s := newTestSupervisor(conn, &fakeHandler{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := s.handleEvent(ctx, &events.Disconnected{}); err != nil {
		t.Fatalf("обрыв соединения не должен завершать цикл: %v", err)
	}
	if conn.connects < 2 {
		t.Fatalf("ожидали повторные попытки подключения, было %d", conn.connects)
	}
}

func TestHandleEventMessageForwarded(t *testing.T) {
	conn := &fakeConn{connected: true}
	handler := &fakeHandler{}
	s := newTestSupervisor(conn, handler)

	evt := &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:   types.NewJID("120363041234567890", types.GroupServer),
				Sender: types.NewJID("79001234567", types.DefaultUserServer),
			},
			ID: "m1",
		},
		Message: &waProto.Message{Conversation: proto.String("привет")},
	}
	if err := s.handleEvent(context.Background(), evt); err != nil {
		t.Fatalf("сообщение не должно завершать цикл: %v", err)
	}
	if len(handler.msgs) != 1 {
		t.Fatalf("ожидали одно сообщение в конвейере, получили %d", len(handler.msgs))
	}
	if handler.msgs[0].ChatJID != "120363041234567890@g.us" {
		t.Fatalf("неожиданный JID чата: %s", handler.msgs[0].ChatJID)
	}
}
