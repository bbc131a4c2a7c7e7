package appdistribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	fad "google.golang.org/api/firebaseappdistribution/v1"
	"google.golang.org/api/option"

	"wa-distribution-bot/internal/domain"
	"wa-distribution-bot/internal/infra/metrics"
)

const releasesPageSize = 25

// Client реализует domain.ReleaseClient поверх Firebase App Distribution API.
type Client struct {
	svc       *fad.Service
	projectID string
	log       zerolog.Logger
}

// NewClient создаёт клиент по файлу сервисного аккаунта. Ошибка
// инициализации означает, что дистрибуция останется выключенной, но не
// фатальна для процесса.
func NewClient(ctx context.Context, cfg domain.DistributionConfig, log zerolog.Logger) (*Client, error) {
	if cfg.ServiceAccountKeyPath == "" {
		return nil, errors.New("не задан путь к ключу сервисного аккаунта")
	}
	if cfg.ProjectID == "" {
		return nil, errors.New("не задан projectId")
	}
	svc, err := fad.NewService(ctx, option.WithCredentialsFile(cfg.ServiceAccountKeyPath))
	if err != nil {
		return nil, fmt.Errorf("инициализация Firebase клиента: %w", err)
	}
	return &Client{svc: svc, projectID: cfg.ProjectID, log: log}, nil
}

var _ domain.ReleaseClient = (*Client)(nil)

// ListReleases возвращает релизы приложения в порядке, который отдаёт
// API: от новых к старым.
func (c *Client) ListReleases(ctx context.Context, appID string) ([]domain.Release, error) {
	parent := fmt.Sprintf("projects/%s/apps/%s", c.projectID, appID)
	start := time.Now()
	resp, err := c.svc.Projects.Apps.Releases.List(parent).PageSize(releasesPageSize).Context(ctx).Do()
	metrics.ObserveNetworkRequest("firebase", "list_releases", appID, start, err)
	if err != nil {
		return nil, fmt.Errorf("получение релизов: %w", err)
	}

	releases := make([]domain.Release, 0, len(resp.Releases))
	for _, r := range resp.Releases {
		releases = append(releases, domain.Release{
			Name:           r.Name,
			DisplayVersion: r.DisplayVersion,
			BuildVersion:   r.BuildVersion,
		})
	}
	return releases, nil
}

// DistributeRelease выдаёт релиз перечисленным тестировщикам.
func (c *Client) DistributeRelease(ctx context.Context, releaseName string, testerEmails []string) error {
	req := &fad.GoogleFirebaseAppdistroV1DistributeReleaseRequest{
		TesterEmails: testerEmails,
	}
	start := time.Now()
	_, err := c.svc.Projects.Apps.Releases.Distribute(releaseName, req).Context(ctx).Do()
	metrics.ObserveNetworkRequest("firebase", "distribute_release", releaseName, start, err)
	if err != nil {
		return fmt.Errorf("выдача релиза: %w", err)
	}
	return nil
}
