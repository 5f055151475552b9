package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScanResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hadirmu", Name: "scan_results_total", Help: "QR scan outcomes by result",
	}, []string{"result"})
	OTPIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hadirmu", Name: "otp_issued_total", Help: "One-time codes issued by purpose",
	}, []string{"purpose"})
	OTPVerified = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hadirmu", Name: "otp_verified_total", Help: "One-time code verifications by purpose and result",
	}, []string{"purpose", "result"})
	DispatchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hadirmu", Name: "dispatch_failures_total", Help: "Outbound message dispatch failures by channel",
	}, []string{"channel"})
	StaleCodes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hadirmu", Name: "stale_codes", Help: "Expired but unconsumed one-time codes in storage",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hadirmu", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ScanResults, OTPIssued, OTPVerified, DispatchFailures, StaleCodes, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
