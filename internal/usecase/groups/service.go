package groups

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"wa-distribution-bot/internal/domain"
	"wa-distribution-bot/internal/infra/metrics"
)

// Service решает, относится ли группа к отслеживаемым. Единственный
// побочный эффект — мемоизация ID группы при первом совпадении по имени
// с отложенным сохранением конфигурации.
//
// Мьютекс защищает список групп от конкурентного чтения HTTP-хендлерами:
// ShouldMonitor пишет ID в записи списка, а Snapshot отдаёт копию.
type Service struct {
	saver domain.ConfigSaver
	log   zerolog.Logger

	mu sync.Mutex
}

// NewService создаёт фильтр групп.
func NewService(saver domain.ConfigSaver, log zerolog.Logger) *Service {
	return &Service{saver: saver, log: log}
}

// ShouldMonitor возвращает true, если сообщение группы нужно обрабатывать.
// Пустой список групп (или список без включённых записей) означает
// «логировать все группы», если это разрешено настройкой.
func (s *Service) ShouldMonitor(cfg *domain.AppConfig, groupID, groupName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(cfg.TargetGroups) == 0 {
		return cfg.Settings.LogAllGroupsIfEmpty
	}

	anyEnabled := false
	for i := range cfg.TargetGroups {
		entry := &cfg.TargetGroups[i]
		if !entry.Enabled {
			continue
		}
		anyEnabled = true
		if entry.ID != "" && entry.ID == groupID {
			return true
		}
		if nameMatches(entry.Name, groupName, cfg.Settings.CaseSensitiveGroupNames) {
			if entry.ID == "" {
				entry.ID = groupID
				s.persist(cfg, entry.Name, groupID)
			}
			return true
		}
	}

	if !anyEnabled {
		return cfg.Settings.LogAllGroupsIfEmpty
	}
	return false
}

// persist запускает отложенное сохранение конфигурации. Ошибка сохранения
// логируется и не влияет на обработку сообщений.
func (s *Service) persist(cfg *domain.AppConfig, name, groupID string) {
	snapshot := cfg.Clone()
	go func() {
		if err := s.saver.Save(snapshot); err != nil {
			metrics.ConfigSaveErrors.Inc()
			s.log.Warn().Err(err).Str("group", name).Msg("не удалось сохранить ID группы")
			return
		}
		s.log.Info().Str("group", name).Str("id", groupID).Msg("ID группы запомнен")
	}()
}

// Snapshot возвращает копию списка групп, безопасную для чтения из
// других горутин.
func (s *Service) Snapshot(cfg *domain.AppConfig) []domain.MonitoredGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.MonitoredGroup, len(cfg.TargetGroups))
	copy(out, cfg.TargetGroups)
	return out
}

func nameMatches(entryName, groupName string, caseSensitive bool) bool {
	if entryName == "" || groupName == "" {
		return false
	}
	if caseSensitive {
		return entryName == groupName
	}
	return strings.EqualFold(entryName, groupName)
}
