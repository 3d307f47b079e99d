package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures, labeled by command name.
// The cache package increments it from its client hook.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "duskblog_redis_errors_total",
		Help: "Total number of Redis command errors",
	},
	[]string{"command"},
)

// MailFailures counts mail-delivery failures, labeled by kind of mail.
var MailFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "duskblog_mail_failures_total",
		Help: "Total number of failed mail deliveries",
	},
	[]string{"kind"},
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-metrics middleware handler.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
