package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Метрики аутентификации и авторизации
// =============================================================================

// AuthRegistrations - регистрации пользователей
var AuthRegistrations = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Total number of user registrations",
	},
)

// AuthLogins - попытки входа
// Labels: result = success | failed
var AuthLogins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"result"},
)

// AuthTokensIssued - выданные токены
var AuthTokensIssued = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "auth_tokens_issued_total",
		Help: "Total number of issued access tokens",
	},
)

// AuthTokensRevoked - отозванные токены (logout до истечения срока)
var AuthTokensRevoked = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "auth_tokens_revoked_total",
		Help: "Total number of revoked access tokens",
	},
)

// AuthDenied - отклоненные запросы
// Labels: reason = unauthenticated | forbidden
var AuthDenied = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_denied_total",
		Help: "Total number of denied requests",
	},
	[]string{"reason"},
)

// PermissionChecks - проверки разрешений резолвером
// Labels: result = allowed | denied
var PermissionChecks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_permission_checks_total",
		Help: "Total number of permission checks",
	},
	[]string{"result"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

// KafkaMessagesProduced - отправленные события аудита
var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

// KafkaErrors - ошибки публикации
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic"},
)
