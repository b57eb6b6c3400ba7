package pipeline

import (
	"fmt"

	"github.com/MeKo-Tech/derivans/internal/common"
)

// StepMetrics holds timing and memory-allocation diagnostics for a single
// pipeline step, in the spirit of the teacher's per-stage inference metrics.
type StepMetrics struct {
	Kind          StepKind
	PagesHandled  int
	Duration      int64 // nanoseconds
	MemoryBefore  common.MemoryStats
	MemoryAfter   common.MemoryStats
	ThroughputPPS float64 // pages per second
	Error         error
}

// String returns a one-line human-readable summary, used in verbose run logs.
func (m StepMetrics) String() string {
	if m.Error != nil {
		return fmt.Sprintf("%s: ERROR - %v", m.Kind, m.Error)
	}
	memDiff := int64(m.MemoryAfter.Alloc) - int64(m.MemoryBefore.Alloc) //nolint:gosec // display only
	return fmt.Sprintf("%s: %d pages, %.1f pages/s, mem: %+d KB",
		m.Kind, m.PagesHandled, m.ThroughputPPS, memDiff/1024)
}

// measureStep runs fn, timing it with a common.Timer and bracketing it with
// memory snapshots, and returns the resulting StepMetrics alongside fn's error.
func measureStep(kind StepKind, pagesHandled int, fn func() error) (StepMetrics, error) {
	timer := common.NewNamedTimer(string(kind))
	before := common.GetMemoryStats()

	err := fn()

	duration := timer.Stop()
	after := common.GetMemoryStats()

	metrics := StepMetrics{
		Kind:         kind,
		PagesHandled: pagesHandled,
		Duration:     duration.Nanoseconds(),
		MemoryBefore: before,
		MemoryAfter:  after,
		Error:        err,
	}
	if seconds := duration.Seconds(); seconds > 0 {
		metrics.ThroughputPPS = float64(pagesHandled) / seconds
	}
	return metrics, err
}
