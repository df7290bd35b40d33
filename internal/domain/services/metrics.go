package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"insafe-lab/internal/domain/models"
)

// Metrics holds the Prometheus collectors for scoring activity
type Metrics struct {
	scansTotal        *prometheus.CounterVec
	scanDuration      *prometheus.HistogramVec
	scanConfidence    *prometheus.HistogramVec
	signalUnavailable *prometheus.CounterVec
	learnTotal        *prometheus.CounterVec
	retrainsTotal     prometheus.Counter
	modelAccuracy     *prometheus.GaugeVec
	reportsTotal      *prometheus.CounterVec
	jobRuns           *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		scansTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "insafe_scans_total",
			Help: "Total number of scored scans",
		}, []string{"type", "verdict"}),

		scanDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "insafe_scan_duration_seconds",
			Help:    "Time spent scoring one scan, including external signals",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),

		scanConfidence: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "insafe_scan_confidence",
			Help:    "Distribution of final scan confidence",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}, []string{"type"}),

		signalUnavailable: f.NewCounterVec(prometheus.CounterOpts{
			Name: "insafe_signal_unavailable_total",
			Help: "External signals that could not be obtained",
		}, []string{"kind"}),

		learnTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "insafe_learning_events_total",
			Help: "Learning events by outcome",
		}, []string{"type", "success"}),

		retrainsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "insafe_model_retrains_total",
			Help: "Completed retraining passes",
		}),

		modelAccuracy: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "insafe_model_accuracy",
			Help: "Current self-tuned accuracy per learning model",
		}, []string{"type"}),

		reportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "insafe_reports_total",
			Help: "Community reports received",
		}, []string{"type"}),

		jobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "insafe_scheduler_job_runs_total",
			Help: "Scheduler job executions by status",
		}, []string{"job", "status"}),
	}
}

func (m *Metrics) ObserveScan(ct models.ContentType, res models.DetectionResult, took time.Duration) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(string(ct), string(res.Verdict)).Inc()
	m.scanDuration.WithLabelValues(string(ct)).Observe(took.Seconds())
	m.scanConfidence.WithLabelValues(string(ct)).Observe(float64(res.Confidence))
	for _, s := range res.Signals {
		if !s.Available {
			m.signalUnavailable.WithLabelValues(string(s.Kind)).Inc()
		}
	}
}

func (m *Metrics) ObserveLearn(ct models.ContentType, ok bool) {
	if m == nil {
		return
	}
	success := "false"
	if ok {
		success = "true"
	}
	m.learnTotal.WithLabelValues(string(ct), success).Inc()
}

func (m *Metrics) ObserveRetrain(status models.LearningStatus) {
	if m == nil {
		return
	}
	m.retrainsTotal.Inc()
	for ct, ms := range status.Models {
		m.modelAccuracy.WithLabelValues(string(ct)).Set(ms.Accuracy)
	}
}

func (m *Metrics) ObserveReport(t models.ReportType) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) ObserveJob(name string, status JobStatus) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(name, string(status)).Inc()
}
