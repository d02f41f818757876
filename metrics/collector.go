// Package metrics provides a lightweight in-process collector for the
// protocol core's operational counters and gauges (blocks proposed, proven,
// verified, the cached basefee, the gas-excess counter).
package metrics

import (
	"sync"
	"time"
)

// Entry is a single recorded data point.
type Entry struct {
	// Name is the dot-separated metric name (e.g. "protocol.blocks.proposed").
	Name string

	// Value is the observed value. Counters carry their running total.
	Value float64

	// Type is "counter" or "gauge".
	Type string

	// Timestamp is the unix time of the most recent update.
	Timestamp int64
}

// Collector aggregates counters and gauges. All methods are safe for
// concurrent use.
type Collector struct {
	mu     sync.RWMutex
	latest map[string]Entry
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{latest: make(map[string]Entry)}
}

// Inc adds delta to the named counter, creating it at zero if absent.
func (c *Collector) Inc(name string, delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.latest[name]
	e.Name = name
	e.Value += delta
	e.Type = "counter"
	e.Timestamp = time.Now().Unix()
	c.latest[name] = e
}

// SetGauge records the current value of the named gauge.
func (c *Collector) SetGauge(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest[name] = Entry{
		Name:      name,
		Value:     value,
		Type:      "gauge",
		Timestamp: time.Now().Unix(),
	}
}

// Get returns the latest entry for the named metric and whether it exists.
func (c *Collector) Get(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.latest[name]
	return e, ok
}

// Snapshot returns a copy of every metric's latest entry.
func (c *Collector) Snapshot() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Entry, len(c.latest))
	for name, e := range c.latest {
		out[name] = e
	}
	return out
}
