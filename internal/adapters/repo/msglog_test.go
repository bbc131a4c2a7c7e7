package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wa-distribution-bot/internal/domain"
)

func todayPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("messages-%s.json", time.Now().Format("2006-01-02")))
}

func readEntries(t *testing.T, path string) []domain.MessageLogEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("не удалось прочитать журнал: %v", err)
	}
	var entries []domain.MessageLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("журнал должен быть валидным JSON массивом: %v", err)
	}
	return entries
}

func TestAppendCreatesDayFile(t *testing.T) {
	dir := t.TempDir()
	log := NewMessageLog(dir, zerolog.Nop())

	entry := domain.MessageLogEntry{
		Timestamp: time.Now(),
		GroupID:   "qa@g.us",
		GroupName: "QA",
		SenderID:  "u@s.whatsapp.net",
		MessageID: "m1",
		Content:   "привет",
	}
	if err := log.Append(entry); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	entry.MessageID = "m2"
	if err := log.Append(entry); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	entries := readEntries(t, todayPath(dir))
	if len(entries) != 2 {
		t.Fatalf("ожидали 2 записи, получили %d", len(entries))
	}
	if entries[1].MessageID != "m2" {
		t.Fatalf("записи должны дописываться в конец, получили %q", entries[1].MessageID)
	}
}

func TestAppendCorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(todayPath(dir), []byte("мусор"), 0o644); err != nil {
		t.Fatal(err)
	}
	log := NewMessageLog(dir, zerolog.Nop())

	if err := log.Append(domain.MessageLogEntry{MessageID: "m1", Timestamp: time.Now()}); err != nil {
		t.Fatalf("повреждённый журнал не должен приводить к ошибке: %v", err)
	}

	entries := readEntries(t, todayPath(dir))
	if len(entries) != 1 {
		t.Fatalf("ожидали 1 запись после перезапуска журнала, получили %d", len(entries))
	}
}
