package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	analysisStartedTotal    atomic.Uint64
	analysisCompletedTotal  atomic.Uint64
	analysisFailedTotal     atomic.Uint64
	analysisSupersededTotal atomic.Uint64
	invalidFileTotal        atomic.Uint64
	healthProbeLiveTotal    atomic.Uint64
	healthProbeDemoTotal    atomic.Uint64

	modeMu       sync.RWMutex
	providerMode = "unknown"

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 1500, 2000, 5000, 10000, 30000, 60000})
)

var providerModes = []string{"unknown", "live", "demo"}

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStartedTotal.Add(1)
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Add(1)
}

// IncAnalysisFailed increments the failed counter.
func IncAnalysisFailed() {
	analysisFailedTotal.Add(1)
}

// IncAnalysisSuperseded counts analyses whose result was discarded after a newer upload.
func IncAnalysisSuperseded() {
	analysisSupersededTotal.Add(1)
}

// IncInvalidFile counts uploads rejected by the plain-text check.
func IncInvalidFile() {
	invalidFileTotal.Add(1)
}

// IncHealthProbe counts a liveness probe by outcome.
func IncHealthProbe(live bool) {
	if live {
		healthProbeLiveTotal.Add(1)
		return
	}
	healthProbeDemoTotal.Add(1)
}

// SetProviderMode records the current provider mode.
func SetProviderMode(mode string) {
	modeMu.Lock()
	providerMode = mode
	modeMu.Unlock()
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analysis_started_total", "Total analyses started", analysisStartedTotal.Load())
	writeCounter(&buf, "analysis_completed_total", "Total analyses completed", analysisCompletedTotal.Load())
	writeCounter(&buf, "analysis_failed_total", "Total analyses failed", analysisFailedTotal.Load())
	writeCounter(&buf, "analysis_superseded_total", "Total analyses discarded after a newer upload", analysisSupersededTotal.Load())
	writeCounter(&buf, "intake_invalid_file_total", "Total uploads rejected as not plain text", invalidFileTotal.Load())
	fmt.Fprintf(&buf, "# HELP provider_health_probe_total Provider liveness probes by resulting mode\n")
	fmt.Fprintf(&buf, "# TYPE provider_health_probe_total counter\n")
	fmt.Fprintf(&buf, "provider_health_probe_total{mode=\"live\"} %d\n", healthProbeLiveTotal.Load())
	fmt.Fprintf(&buf, "provider_health_probe_total{mode=\"demo\"} %d\n", healthProbeDemoTotal.Load())
	writeModeGauge(&buf)
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	// Observe already counts a value in every bucket whose bound it fits under.
	for i, bound := range snap.buckets {
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), snap.counts[i])
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func writeModeGauge(buf *bytes.Buffer) {
	modeMu.RLock()
	current := providerMode
	modeMu.RUnlock()
	fmt.Fprintf(buf, "# HELP provider_mode Current provider mode (1 for the active mode)\n")
	fmt.Fprintf(buf, "# TYPE provider_mode gauge\n")
	for _, mode := range providerModes {
		v := 0
		if mode == current {
			v = 1
		}
		fmt.Fprintf(buf, "provider_mode{mode=\"%s\"} %d\n", mode, v)
	}
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
