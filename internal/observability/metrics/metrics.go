package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                     sync.Once
	metricsRouter            *chi.Mux
	dbLatency                *prometheus.HistogramVec
	ledgerClientLatency      *prometheus.HistogramVec
	pollerDurationHistogram  *prometheus.HistogramVec
	poolOperationCounter     *prometheus.CounterVec
	queuePublishErrorCounter prometheus.Counter
	rewardPoolRemainingGauge *prometheus.GaugeVec
	totalStakedGauge         *prometheus.GaugeVec
	poolAccountsGauge        *prometheus.GaugeVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_duration_seconds",
			Help:    "Histogram of db method durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	ledgerClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_client_duration_seconds",
			Help:    "Histogram of ledger node client request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller run durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"poller_name", "status"},
	)

	poolOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_operations_total",
			Help: "Total number of pool entry-point invocations by type and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	queuePublishErrorCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "queue_publish_error_count",
		Help: "Total number of failed event publishes.",
	})

	rewardPoolRemainingGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pool_reward_remaining",
			Help: "Undistributed reward units remaining per pool.",
		},
		[]string{"pool_id"},
	)

	totalStakedGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pool_total_staked",
			Help: "Sum of staked balances per pool.",
		},
		[]string{"pool_id"},
	)

	poolAccountsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pool_accounts",
			Help: "Number of participant accounts per pool.",
		},
		[]string{"pool_id"},
	)

	prometheus.MustRegister(
		dbLatency,
		ledgerClientLatency,
		pollerDurationHistogram,
		poolOperationCounter,
		queuePublishErrorCounter,
		rewardPoolRemainingGauge,
		totalStakedGauge,
		poolAccountsGauge,
	)
}

func ObserveDbLatency(method string, duration time.Duration, failure bool) {
	if dbLatency == nil {
		return
	}
	dbLatency.WithLabelValues(method, strconv.FormatBool(!failure)).Observe(duration.Seconds())
}

func ObserveLedgerClientLatency(method string, duration time.Duration, failure bool) {
	if ledgerClientLatency == nil {
		return
	}
	ledgerClientLatency.WithLabelValues(method, strconv.FormatBool(!failure)).Observe(duration.Seconds())
}

func RecordPollerDuration(pollerName string, duration time.Duration, failure bool) {
	if pollerDurationHistogram == nil {
		return
	}
	status := Success
	if failure {
		status = Error
	}
	pollerDurationHistogram.WithLabelValues(pollerName, status.String()).Observe(duration.Seconds())
}

func IncPoolOperation(operation string, outcome Outcome) {
	if poolOperationCounter == nil {
		return
	}
	poolOperationCounter.WithLabelValues(operation, outcome.String()).Inc()
}

func RecordQueuePublishError() {
	if queuePublishErrorCounter == nil {
		return
	}
	queuePublishErrorCounter.Inc()
}

func RecordPoolGauges(poolID string, rewardRemaining, totalStaked uint64, accounts int64) {
	if rewardPoolRemainingGauge == nil {
		return
	}
	rewardPoolRemainingGauge.WithLabelValues(poolID).Set(float64(rewardRemaining))
	totalStakedGauge.WithLabelValues(poolID).Set(float64(totalStaked))
	poolAccountsGauge.WithLabelValues(poolID).Set(float64(accounts))
}
