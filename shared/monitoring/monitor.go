package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Monitor tracks the outcome of the most recent agent run for the health
// endpoints. Partial failures do not flip health.
type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastRunSummary string
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastRunSummary = summary
	m.mu.Unlock()

	log.Printf("✅ Run completed successfully - %s (took %v)", summary, duration)
}

func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	// Don't change health status for partial failures
	log.Printf("⚠️  PARTIAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastRunSummary = err.Error()
	m.mu.Unlock()

	log.Printf("🚨 CRITICAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet, assume healthy
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}

	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last run %s: %s", m.lastRunTime.Format("Jan 2 15:04"), m.lastRunSummary)
	}
	return fmt.Sprintf("❌ Last run failed %s: %s", m.lastRunTime.Format("Jan 2 15:04"), m.lastRunSummary)
}
