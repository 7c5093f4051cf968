package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests    uint64
	errorRequests    uint64
	rateLimited      uint64
	totalDurationMs  uint64
	submissions      uint64
	reportFailures   uint64
	reportsMu        sync.Mutex
	reportsGenerated map[string]uint64
}

func New() *Collector {
	return &Collector{reportsGenerated: map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// ReportGenerated counts one produced report of the given kind.
func (c *Collector) ReportGenerated(kind string) {
	c.reportsMu.Lock()
	c.reportsGenerated[kind]++
	c.reportsMu.Unlock()
}

// ReportFetchFailed counts a row fetch that degraded a report to empty.
func (c *Collector) ReportFetchFailed() {
	atomic.AddUint64(&c.reportFailures, 1)
}

func (c *Collector) EvaluationSubmitted() {
	atomic.AddUint64(&c.submissions, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.reportsMu.Lock()
	reports := make(map[string]uint64, len(c.reportsGenerated))
	for kind, count := range c.reportsGenerated {
		reports[kind] = count
	}
	c.reportsMu.Unlock()

	return map[string]any{
		"requestsTotal":             total,
		"errorsTotal":               errs,
		"rateLimitedTotal":          limited,
		"avgDurationMs":             avg,
		"totalDurationMs":           totalMs,
		"evaluationsSubmittedTotal": atomic.LoadUint64(&c.submissions),
		"reportFetchFailuresTotal":  atomic.LoadUint64(&c.reportFailures),
		"reportsGenerated":          reports,
	}
}
