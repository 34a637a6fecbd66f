package executor

import (
	"time"

	"github.com/google/uuid"
	"github.com/wbrown/atomicdb/atomic"
	"github.com/wbrown/atomicdb/atomic/annotations"
)

// Context provides clean annotation points for query execution tracking.
type Context interface {
	// Query lifecycle
	QueryBegin(query string)
	QuerySolution(index int, env atomic.Bindings)
	QueryComplete(solutionCount int, err error)

	// Rule invocation
	RuleEntered(name atomic.RelationID, clause, depth int)
	RuleSplitFailed(name atomic.RelationID, clause int)
	RuleDepthExceeded(name atomic.RelationID, depth, maxDepth int)

	// Relation operations
	FactsScanned(name atomic.RelationID, start time.Time, facts, matches int)

	// Get underlying collector
	Collector() *annotations.Collector

	// QueryID identifies the query in every event it emits
	QueryID() string

	// Metadata operations
	SetMetadata(key string, value interface{})
	GetMetadata(key string) (interface{}, bool)
}

// BaseContext provides a no-op implementation with zero overhead.
type BaseContext struct {
	metadata map[string]interface{}
}

// NewContext creates an appropriate context based on whether annotations are needed.
func NewContext(handler annotations.Handler) Context {
	if handler == nil {
		return &BaseContext{}
	}
	return &AnnotatedContext{
		collector: annotations.NewCollector(handler),
		id:        uuid.NewString(),
	}
}

// BaseContext implementations - all are simple pass-throughs

func (c *BaseContext) QueryBegin(query string) {}

func (c *BaseContext) QuerySolution(index int, env atomic.Bindings) {}

func (c *BaseContext) QueryComplete(solutionCount int, err error) {}

func (c *BaseContext) RuleEntered(name atomic.RelationID, clause, depth int) {}

func (c *BaseContext) RuleSplitFailed(name atomic.RelationID, clause int) {}

func (c *BaseContext) RuleDepthExceeded(name atomic.RelationID, depth, maxDepth int) {}

func (c *BaseContext) FactsScanned(name atomic.RelationID, start time.Time, facts, matches int) {}

func (c *BaseContext) Collector() *annotations.Collector {
	return nil
}

func (c *BaseContext) QueryID() string { return "" }

func (c *BaseContext) SetMetadata(key string, value interface{}) {
	if c.metadata == nil {
		c.metadata = make(map[string]interface{})
	}
	c.metadata[key] = value
}

func (c *BaseContext) GetMetadata(key string) (interface{}, bool) {
	if c.metadata == nil {
		return nil, false
	}
	val, ok := c.metadata[key]
	return val, ok
}

// AnnotatedContext provides full annotation tracking
type AnnotatedContext struct {
	BaseContext
	collector  *annotations.Collector
	id         string
	queryStart time.Time
}

func (c *AnnotatedContext) QueryBegin(query string) {
	c.queryStart = time.Now()
	c.collector.Add(annotations.Event{
		Name:  annotations.QueryInvoked,
		Start: c.queryStart,
		Data: map[string]interface{}{
			"query":    query,
			"query.id": c.id,
		},
	})
}

func (c *AnnotatedContext) QuerySolution(index int, env atomic.Bindings) {
	c.collector.AddTiming(annotations.QuerySolution, c.queryStart, map[string]interface{}{
		"query.id":       c.id,
		"solution.index": index,
		"bindings":       env.String(),
	})
}

func (c *AnnotatedContext) QueryComplete(solutionCount int, err error) {
	data := map[string]interface{}{
		"query.id":       c.id,
		"solution.count": solutionCount,
		"success":        err == nil,
	}

	if err != nil {
		data["error"] = err.Error()
	}

	c.collector.AddTiming(annotations.QueryComplete, c.queryStart, data)
}

func (c *AnnotatedContext) RuleEntered(name atomic.RelationID, clause, depth int) {
	c.collector.Add(annotations.Event{
		Name:  annotations.RuleEntered,
		Start: time.Now(),
		Data: map[string]interface{}{
			"query.id":     c.id,
			"relation":     string(name),
			"clause.index": clause,
			"depth":        depth,
		},
	})
}

func (c *AnnotatedContext) RuleSplitFailed(name atomic.RelationID, clause int) {
	c.collector.Add(annotations.Event{
		Name:  annotations.RuleSplitFailed,
		Start: time.Now(),
		Data: map[string]interface{}{
			"query.id":     c.id,
			"relation":     string(name),
			"clause.index": clause,
		},
	})
}

func (c *AnnotatedContext) RuleDepthExceeded(name atomic.RelationID, depth, maxDepth int) {
	c.collector.Add(annotations.Event{
		Name:  annotations.RuleDepthExceeded,
		Start: time.Now(),
		Data: map[string]interface{}{
			"query.id":  c.id,
			"relation":  string(name),
			"depth":     depth,
			"max.depth": maxDepth,
		},
	})
}

func (c *AnnotatedContext) FactsScanned(name atomic.RelationID, start time.Time, facts, matches int) {
	c.collector.AddTiming(annotations.RelationFactsScanned, start, map[string]interface{}{
		"query.id":      c.id,
		"relation":      string(name),
		"facts.count":   facts,
		"matches.count": matches,
	})
}

func (c *AnnotatedContext) Collector() *annotations.Collector {
	return c.collector
}

func (c *AnnotatedContext) QueryID() string { return c.id }
