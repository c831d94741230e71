package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// ServiceMetrics tracks latency and counters for deck import, simulation and card lookup.
type ServiceMetrics struct {
	ImportLatency     *Histogram
	SimulationLatency *Histogram
	LookupLatency     *Histogram

	DecksImported   atomic.Uint64
	SimulationsRun  atomic.Uint64
	LookupRequests  atomic.Uint64
	LookupErrors    atomic.Uint64
	CacheHits       atomic.Uint64
	CacheMisses     atomic.Uint64
	ParseFailures   atomic.Uint64
	EnrichedCards   atomic.Uint64
	UnresolvedCards atomic.Uint64

	startTime time.Time
	mu        sync.RWMutex
}

// NewServiceMetrics creates a new metrics collector.
func NewServiceMetrics() *ServiceMetrics {
	return &ServiceMetrics{
		ImportLatency:     NewHistogram(defaultHistogramSize),
		SimulationLatency: NewHistogram(defaultHistogramSize),
		LookupLatency:     NewHistogram(defaultHistogramSize),
		startTime:         time.Now(),
	}
}

// RecordImport records a completed deck import.
func (m *ServiceMetrics) RecordImport(d time.Duration, resolved, unresolved int) {
	m.ImportLatency.Record(d)
	m.DecksImported.Add(1)
	m.EnrichedCards.Add(uint64(resolved))
	m.UnresolvedCards.Add(uint64(unresolved))
}

// RecordParseFailure counts a rejected deck file.
func (m *ServiceMetrics) RecordParseFailure() {
	m.ParseFailures.Add(1)
}

// RecordSimulation records a completed simulation.
func (m *ServiceMetrics) RecordSimulation(d time.Duration) {
	m.SimulationLatency.Record(d)
	m.SimulationsRun.Add(1)
}

// RecordLookup records a catalog request and whether it failed.
func (m *ServiceMetrics) RecordLookup(d time.Duration, err error) {
	m.LookupLatency.Record(d)
	m.LookupRequests.Add(1)
	if err != nil {
		m.LookupErrors.Add(1)
	}
}

// RecordCacheHit increments the count of card cache hits.
func (m *ServiceMetrics) RecordCacheHit() {
	m.CacheHits.Add(1)
}

// RecordCacheMiss increments the count of card cache misses.
func (m *ServiceMetrics) RecordCacheMiss() {
	m.CacheMisses.Add(1)
}

// Stats contains the computed statistics from metrics.
type Stats struct {
	ImportLatency     LatencyStats `json:"import_latency"`
	SimulationLatency LatencyStats `json:"simulation_latency"`
	LookupLatency     LatencyStats `json:"lookup_latency"`

	DecksImported     uint64  `json:"decks_imported"`
	SimulationsRun    uint64  `json:"simulations_run"`
	ParseFailures     uint64  `json:"parse_failures"`
	EnrichedCards     uint64  `json:"enriched_cards"`
	UnresolvedCards   uint64  `json:"unresolved_cards"`
	LookupRequests    uint64  `json:"lookup_requests"`
	LookupErrors      uint64  `json:"lookup_errors"`
	CacheHits         uint64  `json:"cache_hits"`
	CacheMisses       uint64  `json:"cache_misses"`
	CacheHitRate      float64 `json:"cache_hit_rate"`      // percentage
	LookupSuccessRate float64 `json:"lookup_success_rate"` // percentage

	Uptime string `json:"uptime"`
}

// GetStats returns a snapshot of the current statistics.
func (m *ServiceMetrics) GetStats() *Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	requests := m.LookupRequests.Load()
	lookupErrors := m.LookupErrors.Load()
	hits := m.CacheHits.Load()
	misses := m.CacheMisses.Load()

	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}

	successRate := 0.0
	if requests > 0 {
		successRate = float64(requests-lookupErrors) / float64(requests) * 100
	}

	return &Stats{
		ImportLatency:     m.ImportLatency.Stats(),
		SimulationLatency: m.SimulationLatency.Stats(),
		LookupLatency:     m.LookupLatency.Stats(),
		DecksImported:     m.DecksImported.Load(),
		SimulationsRun:    m.SimulationsRun.Load(),
		ParseFailures:     m.ParseFailures.Load(),
		EnrichedCards:     m.EnrichedCards.Load(),
		UnresolvedCards:   m.UnresolvedCards.Load(),
		LookupRequests:    requests,
		LookupErrors:      lookupErrors,
		CacheHits:         hits,
		CacheMisses:       misses,
		CacheHitRate:      hitRate,
		LookupSuccessRate: successRate,
		Uptime:            time.Since(m.startTime).Round(time.Second).String(),
	}
}

// Reset clears all metrics.
func (m *ServiceMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ImportLatency.Reset()
	m.SimulationLatency.Reset()
	m.LookupLatency.Reset()

	for _, c := range []*atomic.Uint64{
		&m.DecksImported, &m.SimulationsRun, &m.ParseFailures, &m.EnrichedCards,
		&m.UnresolvedCards, &m.LookupRequests, &m.LookupErrors, &m.CacheHits, &m.CacheMisses,
	} {
		c.Store(0)
	}

	m.startTime = time.Now()
}
