// Package annotations provides a low-overhead event system for tracing the
// search performed by queries: rule calls, fact scans, solutions and errors.
package annotations

import (
	"sync"
	"time"
)

// Event name constants following hierarchical naming pattern
const (
	// Query lifecycle
	QueryInvoked  = "query/invoked"
	QuerySolution = "query/solution"
	QueryComplete = "query/completed"

	// Rule invocation
	RuleEntered       = "rule/entered"
	RuleSplitFailed   = "rule/split-failed"
	RuleDepthExceeded = "rule/depth-exceeded"

	// Relation operations
	RelationFactsScanned = "relation/facts-scanned"

	// Storage
	StoreLoaded = "store/loaded"

	// Errors
	ErrorStatement = "error/statement"
)

// Event represents a single annotation event during query execution.
type Event struct {
	Name    string                 // Event name using hierarchical constants above
	Start   time.Time              // Start timestamp
	End     time.Time              // End timestamp
	Latency time.Duration          // Duration (End - Start)
	Data    map[string]interface{} // Additional event-specific data
	Caller  string                 // Optional: file:line where event occurred
}

// Handler processes annotation events as they occur.
type Handler func(event Event)

// Collector accumulates events during query execution.
type Collector struct {
	enabled bool
	handler Handler

	mu     sync.Mutex // Protects events
	events []Event
}

// NewCollector creates a new annotation collector. A nil handler yields a
// disabled collector that records nothing.
func NewCollector(handler Handler) *Collector {
	return &Collector{
		enabled: handler != nil,
		handler: handler,
		events:  make([]Event, 0, 32),
	}
}

// Enabled reports whether events are being recorded.
func (c *Collector) Enabled() bool {
	return c.enabled
}

// Handler returns the underlying event handler.
func (c *Collector) Handler() Handler {
	return c.handler
}

// Add records a new event.
// Thread-safe for concurrent access.
func (c *Collector) Add(event Event) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()

	// Call handler outside the lock to avoid deadlocks
	c.handler(event)
}

// AddTiming records an event with timing information.
func (c *Collector) AddTiming(name string, start time.Time, data map[string]interface{}) {
	if !c.enabled {
		return
	}

	end := time.Now()
	c.Add(Event{
		Name:    name,
		Start:   start,
		End:     end,
		Latency: end.Sub(start),
		Data:    data,
	})
}

// Events returns all collected events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	eventsCopy := make([]Event, len(c.events))
	copy(eventsCopy, c.events)
	return eventsCopy
}

// Reset clears the collector for reuse.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
}
