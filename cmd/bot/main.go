package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"

	"wa-distribution-bot/internal/adapters/appdistribution"
	"wa-distribution-bot/internal/adapters/repo"
	wa "wa-distribution-bot/internal/adapters/whatsapp"
	"wa-distribution-bot/internal/domain"
	"wa-distribution-bot/internal/infra/config"
	infrahttp "wa-distribution-bot/internal/infra/http"
	"wa-distribution-bot/internal/infra/log"
	"wa-distribution-bot/internal/infra/metrics"
	"wa-distribution-bot/internal/usecase/distribution"
	"wa-distribution-bot/internal/usecase/groups"
	"wa-distribution-bot/internal/usecase/pipeline"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	store := repo.NewFileStore(cfg.Bot.ConfigPath, logger)
	botCfg, err := store.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось загрузить конфигурацию бота")
	}
	msgLog := repo.NewMessageLog(cfg.Bot.LogsDir, logger)

	ctx := context.Background()

	var releaseClient domain.ReleaseClient
	if fadClient, err := appdistribution.NewClient(ctx, botCfg.Firebase, logger); err != nil {
		logger.Warn().Err(err).Msg("дистрибуция отключена: Firebase клиент не инициализирован")
	} else {
		releaseClient = fadClient
	}

	dispatcher := distribution.NewService(releaseClient, botCfg.Firebase, logger)
	filter := groups.NewService(store, logger)

	container, err := sqlstore.New(ctx, "sqlite3", cfg.WhatsApp.SessionDSN, wa.NewLogger(logger, "Database"))
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось открыть хранилище сессии")
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Fatal().Err(err).Msg("не удалось получить устройство из хранилища")
		}
		device = container.NewDevice()
		logger.Info().Msg("создано новое устройство, потребуется QR-авторизация")
	}
	waClient := whatsmeow.NewClient(device, wa.NewLogger(logger, "Client"))

	resolver := wa.NewResolver(waClient, logger)
	sender := wa.NewSender(waClient, logger)
	pipe := pipeline.NewService(botCfg, filter, dispatcher, msgLog, resolver, sender, logger)
	supervisor := wa.NewSupervisor(waClient, pipe, botCfg, cfg.WhatsApp.ReconnectDelay, logger)

	srv := infrahttp.NewServer(logger)
	srv.Router.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{
			"connected": waClient.IsConnected(),
			"loggedIn":  waClient.IsLoggedIn(),
		})
	})
	srv.Router.Get("/groups", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(filter.Snapshot(botCfg))
	})
	go func() {
		if err := srv.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- supervisor.Run(runCtx)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	exitCode := 0
	select {
	case <-stop:
		logger.Info().Msg("остановка бота")
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("соединение завершено")
			exitCode = 1
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	os.Exit(exitCode)
}
