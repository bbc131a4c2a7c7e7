package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messages_received_total",
		Help: "Входящие сообщения групп после проверки отправителя",
	})
	MessagesLogged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messages_logged_total",
		Help: "Сообщения, пропущенные фильтром и записанные в журнал",
	})
	MessagesFiltered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messages_filtered_total",
		Help: "Сообщения, отклонённые фильтром групп",
	})
	GroupsDiscovered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "groups_discovered_total",
		Help: "Группы, анонсированные в режиме discovery",
	})
	DistributionRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "distribution_requests_total",
		Help: "Команды добавления тестировщика по платформе и исходу",
	}, []string{"platform", "status"})
	ReplyErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reply_errors_total",
		Help: "Ошибки отправки ответов в группу",
	})
	ConfigSaveErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "config_save_errors_total",
		Help: "Ошибки фонового сохранения конфигурации",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		MessagesReceived,
		MessagesLogged,
		MessagesFiltered,
		GroupsDiscovered,
		DistributionRequests,
		ReplyErrors,
		ConfigSaveErrors,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncDistribution увеличивает счётчик команд дистрибуции.
func IncDistribution(platform string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	DistributionRequests.WithLabelValues(platform, status).Inc()
}
