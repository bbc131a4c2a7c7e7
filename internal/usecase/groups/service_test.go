package groups

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wa-distribution-bot/internal/domain"
)

type fakeSaver struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func (f *fakeSaver) Save(cfg *domain.AppConfig) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{done: make(chan struct{}, 8)}
}

func TestShouldMonitorEmptyList(t *testing.T) {
	s := NewService(newFakeSaver(), zerolog.Nop())
	cfg := &domain.AppConfig{Settings: domain.FilterSettings{LogAllGroupsIfEmpty: true}}
	if !s.ShouldMonitor(cfg, "abc@g.us", "Любая группа") {
		t.Fatal("ожидали true при пустом списке групп")
	}
	cfg.Settings.LogAllGroupsIfEmpty = false
	if s.ShouldMonitor(cfg, "abc@g.us", "Любая группа") {
		t.Fatal("ожидали false при выключенном logAllGroupsIfEmpty")
	}
}

func TestShouldMonitorMemoizesID(t *testing.T) {
	saver := newFakeSaver()
	s := NewService(saver, zerolog.Nop())
	cfg := &domain.AppConfig{
		TargetGroups: []domain.MonitoredGroup{{Name: "Test Group", Enabled: true}},
	}

	if !s.ShouldMonitor(cfg, "abc@g.us", "Test Group") {
		t.Fatal("ожидали совпадение по имени")
	}
	select {
	case <-saver.done:
	case <-time.After(time.Second):
		t.Fatal("ожидали сохранение конфигурации после мемоизации")
	}
	if cfg.TargetGroups[0].ID != "abc@g.us" {
		t.Fatalf("ожидали запомненный ID, получили %q", cfg.TargetGroups[0].ID)
	}

	// Повторные совпадения не должны перезаписывать конфиг.
	s.ShouldMonitor(cfg, "abc@g.us", "Test Group")
	s.ShouldMonitor(cfg, "abc@g.us", "Test Group")
	select {
	case <-saver.done:
		t.Fatal("не ожидали повторного сохранения")
	case <-time.After(100 * time.Millisecond):
	}
	if saver.count() != 1 {
		t.Fatalf("ожидали ровно одно сохранение, получили %d", saver.count())
	}
}

// Snapshot читается HTTP-хендлером из чужой горутины, пока
// ShouldMonitor мемоизирует ID. Тест ловит гонку под -race.
func TestSnapshotConcurrentWithMemoization(t *testing.T) {
	saver := &fakeSaver{done: make(chan struct{}, 16)}
	s := NewService(saver, zerolog.Nop())
	cfg := &domain.AppConfig{
		TargetGroups: []domain.MonitoredGroup{
			{Name: "QA", Enabled: true},
			{Name: "Dev", Enabled: true},
		},
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := json.Marshal(s.Snapshot(cfg)); err != nil {
				return
			}
		}
	}()
	for i := 0; i < 200; i++ {
		s.ShouldMonitor(cfg, "qa@g.us", "QA")
		s.ShouldMonitor(cfg, "dev@g.us", "Dev")
	}
	wg.Wait()

	groups := s.Snapshot(cfg)
	if groups[0].ID != "qa@g.us" || groups[1].ID != "dev@g.us" {
		t.Fatalf("ожидали мемоизированные ID, получили %+v", groups)
	}
}

func TestShouldMonitorDisabledEntriesNeverMatch(t *testing.T) {
	s := NewService(newFakeSaver(), zerolog.Nop())
	cfg := &domain.AppConfig{
		TargetGroups: []domain.MonitoredGroup{{Name: "Test Group", ID: "abc@g.us", Enabled: false}},
	}
	if s.ShouldMonitor(cfg, "abc@g.us", "Test Group") {
		t.Fatal("выключенная запись не должна совпадать")
	}
}

func TestShouldMonitorDisabledFallsBackToLogAll(t *testing.T) {
	s := NewService(newFakeSaver(), zerolog.Nop())
	cfg := &domain.AppConfig{
		TargetGroups: []domain.MonitoredGroup{{Name: "Test Group", Enabled: false}},
		Settings:     domain.FilterSettings{LogAllGroupsIfEmpty: true},
	}
	if !s.ShouldMonitor(cfg, "other@g.us", "Другая группа") {
		t.Fatal("при отсутствии включённых записей ожидали поведение пустого списка")
	}
}

func TestShouldMonitorCaseSensitivity(t *testing.T) {
	s := NewService(newFakeSaver(), zerolog.Nop())
	cfg := &domain.AppConfig{
		TargetGroups: []domain.MonitoredGroup{{Name: "Team Chat", Enabled: true}},
	}
	if !s.ShouldMonitor(cfg, "x@g.us", "team chat") {
		t.Fatal("ожидали совпадение без учёта регистра")
	}

	cfg = &domain.AppConfig{
		TargetGroups: []domain.MonitoredGroup{{Name: "Team Chat", Enabled: true}},
		Settings:     domain.FilterSettings{CaseSensitiveGroupNames: true},
	}
	if s.ShouldMonitor(cfg, "x@g.us", "team chat") {
		t.Fatal("не ожидали совпадения с учётом регистра")
	}
}

func TestShouldMonitorByID(t *testing.T) {
	s := NewService(newFakeSaver(), zerolog.Nop())
	cfg := &domain.AppConfig{
		TargetGroups: []domain.MonitoredGroup{{Name: "Старое имя", ID: "abc@g.us", Enabled: true}},
	}
	if !s.ShouldMonitor(cfg, "abc@g.us", "Совсем другое имя") {
		t.Fatal("ожидали совпадение по ID независимо от имени")
	}
}
