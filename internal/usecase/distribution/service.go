package distribution

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"wa-distribution-bot/internal/domain"
	"wa-distribution-bot/internal/infra/metrics"
)

// Service добавляет тестировщиков к последнему релизу платформы.
// Повторные запросы не дедуплицируются: идемпотентность повторного
// добавления тестировщика обеспечивает сам Firebase API.
type Service struct {
	client domain.ReleaseClient
	cfg    domain.DistributionConfig
	log    zerolog.Logger
}

// NewService создаёт диспетчер дистрибуции. client может быть nil, если
// сервисный аккаунт не настроен — тогда каждая команда завершается
// отказом без сетевых вызовов.
func NewService(client domain.ReleaseClient, cfg domain.DistributionConfig, log zerolog.Logger) *Service {
	return &Service{client: client, cfg: cfg, log: log}
}

// AddTester выполняет команду добавления тестировщика. Ошибки внешнего
// API не ретраятся: повтор — ответственность отправителя команды.
func (s *Service) AddTester(ctx context.Context, req domain.DistributionRequest) domain.DistributionResult {
	result := s.addTester(ctx, req)
	metrics.IncDistribution(req.Platform, result.Success)
	return result
}

func (s *Service) addTester(ctx context.Context, req domain.DistributionRequest) domain.DistributionResult {
	if s.client == nil {
		return domain.DistributionResult{Message: "Сервис дистрибуции не инициализирован"}
	}

	appID, key := s.cfg.AppID(req.Platform)
	if appID == "" {
		return domain.DistributionResult{Message: fmt.Sprintf("В конфигурации не задан %s для платформы %s", key, req.Platform)}
	}

	releases, err := s.client.ListReleases(ctx, appID)
	if err != nil {
		s.log.Error().Err(err).Str("platform", req.Platform).Msg("не удалось получить список релизов")
		return domain.DistributionResult{Message: fmt.Sprintf("Ошибка получения релизов: %v", err)}
	}
	if len(releases) == 0 {
		return domain.DistributionResult{Message: fmt.Sprintf("Для платформы %s нет ни одного релиза", req.Platform)}
	}

	// API возвращает релизы от новых к старым, берём первый как есть.
	latest := releases[0]
	if err := s.client.DistributeRelease(ctx, latest.Name, []string{req.Email}); err != nil {
		s.log.Error().Err(err).Str("release", latest.Name).Str("email", req.Email).Msg("не удалось добавить тестировщика")
		return domain.DistributionResult{Message: fmt.Sprintf("Ошибка добавления тестировщика: %v", err)}
	}

	version := latest.DisplayVersion
	if version == "" {
		version = latest.Name
	}
	s.log.Info().Str("email", req.Email).Str("platform", req.Platform).Str("release", latest.Name).Msg("тестировщик добавлен")
	return domain.DistributionResult{
		Success: true,
		Message: fmt.Sprintf("Тестировщик %s добавлен к релизу %s (%s)", req.Email, version, req.Platform),
	}
}
