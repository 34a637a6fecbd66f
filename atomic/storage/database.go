// Package storage holds the fact and rule tables that queries run against,
// and the optional BadgerDB journal that makes them durable.
package storage

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/wbrown/atomicdb/atomic"
)

var (
	// ErrTupleTooShort is returned for a fact with fewer than two elements
	ErrTupleTooShort = errors.New("fact needs at least two elements")
	// ErrBadRelationID is returned when the second element of a fact is not a relation id
	ErrBadRelationID = errors.New("second element of a fact must be a relation id")
)

// Journal records insertions so they can be replayed into a new Database
type Journal interface {
	// AppendFact records a fact tuple in source order, relation id included
	AppendFact(tuple []atomic.Value) error
	// AppendRule records one clause of the named rule
	AppendRule(name atomic.RelationID, clause atomic.Clause) error
}

// relation is one entry of the relation table. Facts and clauses are
// append-only, so a reader can keep a slice it took under the read lock.
type relation struct {
	mu      sync.RWMutex
	facts   [][]atomic.Value
	clauses []atomic.Clause
}

// Database maps relation names to their facts and rule clauses.
// It is safe for concurrent use; a Database must not be copied.
type Database struct {
	mu        sync.RWMutex
	relations map[atomic.RelationID]*relation
	journal   Journal
}

// NewDatabase creates an empty in-memory database
func NewDatabase() *Database {
	return &Database{relations: make(map[atomic.RelationID]*relation)}
}

// SetJournal attaches a journal. Every later insertion is recorded in it
// before it becomes visible.
func (d *Database) SetJournal(j Journal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.journal = j
}

// Close closes the attached journal, if it has anything to close
func (d *Database) Close() error {
	d.mu.Lock()
	j := d.journal
	d.journal = nil
	d.mu.Unlock()

	if c, ok := j.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// lookup returns the named relation, or nil. Names match case-insensitively.
func (d *Database) lookup(name atomic.RelationID) *relation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.relations[atomic.NewRelationID(string(name))]
}

// entry returns the named relation, creating it if needed
func (d *Database) entry(name atomic.RelationID) (*relation, Journal) {
	name = atomic.NewRelationID(string(name))
	d.mu.RLock()
	r, ok := d.relations[name]
	j := d.journal
	d.mu.RUnlock()
	if ok {
		return r, j
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok = d.relations[name]; !ok {
		r = &relation{}
		d.relations[name] = r
	}
	return r, d.journal
}

// InsertFact stores a fact. The tuple is in source order: its second
// element names the relation and is dropped from the stored tuple.
func (d *Database) InsertFact(tuple []atomic.Value) error {
	return d.insertFact(tuple, true)
}

func (d *Database) insertFact(tuple []atomic.Value, journal bool) error {
	if len(tuple) < 2 {
		return fmt.Errorf("%w: got %d", ErrTupleTooShort, len(tuple))
	}
	name, ok := tuple[1].(atomic.RelationID)
	if !ok {
		return fmt.Errorf("%w: got %s", ErrBadRelationID, tuple[1])
	}

	stored := make([]atomic.Value, 0, len(tuple)-1)
	stored = append(stored, tuple[0])
	stored = append(stored, tuple[2:]...)

	r, j := d.entry(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if journal && j != nil {
		if err := j.AppendFact(tuple); err != nil {
			return fmt.Errorf("failed to journal fact: %w", err)
		}
	}
	r.facts = append(r.facts, stored)
	return nil
}

// InsertRule adds a clause to the named rule. Clauses are tried in the
// order they were inserted.
func (d *Database) InsertRule(name atomic.RelationID, params []atomic.Term, body []atomic.Constraint) error {
	return d.insertRule(name, atomic.Clause{Params: params, Body: body}, true)
}

func (d *Database) insertRule(name atomic.RelationID, clause atomic.Clause, journal bool) error {
	if name == "" {
		return fmt.Errorf("%w: empty rule name", ErrBadRelationID)
	}
	r, j := d.entry(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if journal && j != nil {
		if err := j.AppendRule(name, clause); err != nil {
			return fmt.Errorf("failed to journal rule %s: %w", name, err)
		}
	}
	r.clauses = append(r.clauses, clause)
	return nil
}

// Facts returns the stored tuples of a relation in insertion order.
// The result must not be modified.
func (d *Database) Facts(name atomic.RelationID) [][]atomic.Value {
	r := d.lookup(name)
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.facts[:len(r.facts):len(r.facts)]
}

// Clauses returns the clauses of a rule in declaration order.
// The result must not be modified.
func (d *Database) Clauses(name atomic.RelationID) []atomic.Clause {
	r := d.lookup(name)
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clauses[:len(r.clauses):len(r.clauses)]
}

// Relations lists the known relation names in sorted order
func (d *Database) Relations() []atomic.RelationID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]atomic.RelationID, 0, len(d.relations))
	for name := range d.relations {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Stats summarizes the contents of a database
type Stats struct {
	Relations int // relations with at least one fact
	Facts     int
	Rules     int // rules with at least one clause
	Clauses   int
}

// Stats counts relations, facts and rules
func (d *Database) Stats() Stats {
	var s Stats
	for _, name := range d.Relations() {
		r := d.lookup(name)
		r.mu.RLock()
		if len(r.facts) > 0 {
			s.Relations++
			s.Facts += len(r.facts)
		}
		if len(r.clauses) > 0 {
			s.Rules++
			s.Clauses += len(r.clauses)
		}
		r.mu.RUnlock()
	}
	return s
}
