package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CampaignTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthcheck", Name: "campaign_transitions_total", Help: "Campaign status transitions",
	}, []string{"to"})
	NotificationsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthcheck", Name: "notifications_sent_total", Help: "Consent notifications delivered",
	})
	NotificationsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthcheck", Name: "notifications_failed_total", Help: "Consent notification delivery failures",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "healthcheck", Name: "handler_errors_total", Help: "HTTP handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "healthcheck", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(CampaignTransitions, NotificationsSent, NotificationsFailed, HandlerErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
