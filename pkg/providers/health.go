package providers

import (
	"sync"
	"time"
)

// unhealthyThreshold is the number of consecutive failures after which a
// provider reports itself unhealthy.
const unhealthyThreshold = 3

// HealthTracker records call outcomes for a provider. Adapters embed it to
// implement IsHealthy and GetHealth.
type HealthTracker struct {
	mu     sync.RWMutex
	health ProviderHealth
}

// NewHealthTracker returns a tracker that starts healthy.
func NewHealthTracker() *HealthTracker {
	return &HealthTracker{health: ProviderHealth{IsHealthy: true}}
}

// RecordResult records the outcome of one call.
func (h *HealthTracker) RecordResult(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.health.LastCheck = now
	h.health.TotalRequests++

	if err != nil {
		h.health.FailedRequests++
		h.health.ConsecutiveFailures++
		h.health.LastError = err
		if h.health.ConsecutiveFailures >= unhealthyThreshold {
			h.health.IsHealthy = false
		}
		return
	}

	h.health.ConsecutiveFailures = 0
	h.health.LastError = nil
	h.health.LastSuccessfulRequest = now
	h.health.IsHealthy = true
}

// IsHealthy reports the current health status.
func (h *HealthTracker) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.health.IsHealthy
}

// GetHealth returns a snapshot of the health information.
func (h *HealthTracker) GetHealth() ProviderHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.health
}
