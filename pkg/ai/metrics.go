package ai

import (
	"math"
	"sync"
)

// Metrics accumulates token usage across requests. Adapters embed it.
type Metrics struct {
	mu      sync.Mutex
	metrics ModelMetrics
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	m.metrics = ModelMetrics{}
	m.mu.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (m *Metrics) GetMetrics() ModelMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// Record adds the usage of one request.
func (m *Metrics) Record(u Usage, durationMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.InputTokens += u.InputTokens
	m.metrics.OutputTokens += u.OutputTokens
	m.metrics.TotalTokens += u.TotalTokens
	m.metrics.DurationMs += durationMs
	m.metrics.Requests++

	if m.metrics.DurationMs > 0 {
		tokensPerSecond := (float64(m.metrics.TotalTokens) * 1000.0) / float64(m.metrics.DurationMs)
		m.metrics.TokenPerSecond = float32(math.Round(tokensPerSecond*100) / 100)
	}
}
