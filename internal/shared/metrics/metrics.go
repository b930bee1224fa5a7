package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	extractStartedTotal  atomic.Uint64
	extractEmptyTotal    atomic.Uint64
	inboundMessagesTotal atomic.Uint64
	inboundSkippedTotal  atomic.Uint64
	candidatesCreated    atomic.Uint64
	candidatesMerged     atomic.Uint64

	extractDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000})
)

// IncExtractStarted increments the extraction-started counter.
func IncExtractStarted() {
	extractStartedTotal.Add(1)
}

// IncExtractEmpty increments the counter of extractions that yielded no text.
func IncExtractEmpty() {
	extractEmptyTotal.Add(1)
}

// IncInboundMessage increments the inbound-message counter.
func IncInboundMessage() {
	inboundMessagesTotal.Add(1)
}

// IncInboundSkipped increments the counter of inbound messages skipped.
func IncInboundSkipped() {
	inboundSkippedTotal.Add(1)
}

// IncCandidateCreated increments the created-candidates counter.
func IncCandidateCreated() {
	candidatesCreated.Add(1)
}

// IncCandidateMerged increments the merged-candidates counter.
func IncCandidateMerged() {
	candidatesMerged.Add(1)
}

// ObserveExtractDurationMs records an extraction duration in milliseconds.
func ObserveExtractDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	extractDuration.Observe(value)
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
	writeCounter(&buf, "cv_extract_started_total", "Total CV text extractions started", extractStartedTotal.Load())
	writeCounter(&buf, "cv_extract_empty_total", "Total CV text extractions that yielded no text", extractEmptyTotal.Load())
	writeCounter(&buf, "inbound_messages_total", "Total inbound mail messages processed", inboundMessagesTotal.Load())
	writeCounter(&buf, "inbound_skipped_total", "Total inbound mail messages skipped", inboundSkippedTotal.Load())
	writeCounter(&buf, "candidates_created_total", "Total candidate profiles created", candidatesCreated.Load())
	writeCounter(&buf, "candidates_merged_total", "Total candidate profiles merged by identity resolution", candidatesMerged.Load())
	writeHistogram(&buf, "cv_extract_duration_ms", "CV text extraction duration in milliseconds", extractDuration.Snapshot())
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
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
