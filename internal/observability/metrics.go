package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	latencyTotal map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		latencyTotal: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latencyTotal[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Counter is one row of a metrics snapshot.
type Counter struct {
	Key         string        `json:"key"`
	Count       int64         `json:"count"`
	MeanLatency time.Duration `json:"mean_latency,omitempty"`
}

// Snapshot is a point-in-time copy of the counters, sorted by key.
type Snapshot struct {
	Requests []Counter `json:"requests"`
	Errors   []Counter `json:"errors"`
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var snap Snapshot
	for key, n := range m.requestCount {
		snap.Requests = append(snap.Requests, Counter{
			Key:         key,
			Count:       n,
			MeanLatency: m.latencyTotal[key] / time.Duration(n),
		})
	}
	for key, n := range m.errorCount {
		snap.Errors = append(snap.Errors, Counter{Key: key, Count: n})
	}
	sort.Slice(snap.Requests, func(i, j int) bool { return snap.Requests[i].Key < snap.Requests[j].Key })
	sort.Slice(snap.Errors, func(i, j int) bool { return snap.Errors[i].Key < snap.Errors[j].Key })
	return snap
}

// Log writes the snapshot as a single structured line.
func (m *Metrics) Log(logger *zap.Logger) {
	snap := m.Snapshot()
	logger.Info("metrics snapshot",
		zap.Any("requests", snap.Requests),
		zap.Any("errors", snap.Errors),
	)
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
