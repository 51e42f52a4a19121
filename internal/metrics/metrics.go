package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Row outcomes
const (
	OutcomeAnnotated = "annotated"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Recorder collects counters for one batch run on its own registry
type Recorder struct {
	registry     *prometheus.Registry
	rows         *prometheus.CounterVec
	verdicts     *prometheus.CounterVec
	cacheHits    prometheus.Counter
	sheets       *prometheus.CounterVec
	callDuration prometheus.Histogram
	lastRun      prometheus.Gauge
}

// NewRecorder creates a recorder with all collectors registered
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keyword_tagger_rows_total",
			Help: "Rows handled by outcome",
		}, []string{"outcome"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keyword_tagger_verdicts_total",
			Help: "Verdicts by keyword set and whether keywords were found",
		}, []string{"keyword_set", "contains"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keyword_tagger_cache_hits_total",
			Help: "Verdicts served from the cache",
		}),
		sheets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keyword_tagger_sheets_total",
			Help: "Sheets written back by result",
		}, []string{"result"}),
		callDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "keyword_tagger_service_call_seconds",
			Help:    "Duration of verdict service calls",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keyword_tagger_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
	r.registry.MustRegister(r.rows, r.verdicts, r.cacheHits, r.sheets, r.callDuration, r.lastRun)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Row counts one row outcome
func (r *Recorder) Row(outcome string) {
	r.rows.WithLabelValues(outcome).Inc()
}

// Verdict counts one verdict for a keyword set
func (r *Recorder) Verdict(keywordSet string, contains, fromCache bool) {
	r.verdicts.WithLabelValues(keywordSet, fmt.Sprintf("%t", contains)).Inc()
	if fromCache {
		r.cacheHits.Inc()
	}
}

// ServiceCall observes the duration of one service call
func (r *Recorder) ServiceCall(d time.Duration) {
	r.callDuration.Observe(d.Seconds())
}

// Sheet counts a sheet write result
func (r *Recorder) Sheet(ok bool) {
	if ok {
		r.sheets.WithLabelValues("written").Inc()
		return
	}
	r.sheets.WithLabelValues("failed").Inc()
}

// Finish stamps the end of the run
func (r *Recorder) Finish(at time.Time) {
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile exports the registry for the node exporter textfile collector
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
