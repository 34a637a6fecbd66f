package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/wbrown/atomicdb/atomic"
	"github.com/wbrown/atomicdb/atomic/parser"
)

// Journal entry kinds
const (
	entryFact byte = 'f'
	entryRule byte = 'r'
)

var (
	journalPrefix = []byte("j/")
	sequenceKey   = []byte("seq/journal")
)

// BadgerJournal is a Journal backed by BadgerDB. Entries are keyed by a
// monotonically increasing sequence number so replay sees them in insertion
// order. Facts are stored in the binary value encoding; rule clauses are
// stored as source text.
type BadgerJournal struct {
	db  *badger.DB
	seq *badger.Sequence
}

// OpenBadgerJournal opens or creates a journal in the directory at path.
// An empty path opens an in-memory journal.
func OpenBadgerJournal(path string) (*BadgerJournal, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable BadgerDB logs
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	seq, err := db.GetSequence(sequenceKey, 128)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open journal sequence: %w", err)
	}

	return &BadgerJournal{db: db, seq: seq}, nil
}

// AppendFact implements Journal
func (j *BadgerJournal) AppendFact(tuple []atomic.Value) error {
	return j.append(entryFact, atomic.TupleBytes(tuple))
}

// AppendRule implements Journal
func (j *BadgerJournal) AppendRule(name atomic.RelationID, clause atomic.Clause) error {
	value := binary.AppendUvarint(nil, uint64(len(name)))
	value = append(value, name...)
	value = append(value, parser.FormatClause(clause)...)
	return j.append(entryRule, value)
}

func (j *BadgerJournal) append(kind byte, payload []byte) error {
	n, err := j.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to allocate journal sequence: %w", err)
	}

	key := make([]byte, len(journalPrefix), len(journalPrefix)+8)
	copy(key, journalPrefix)
	key = binary.BigEndian.AppendUint64(key, n)

	value := make([]byte, 0, len(payload)+1)
	value = append(value, kind)
	value = append(value, payload...)

	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Replay inserts every journaled entry into db in the order it was
// recorded. Entries are not journaled again. It returns the number of
// entries replayed.
func (j *BadgerJournal) Replay(db *Database) (int, error) {
	count := 0
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = journalPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				return replayEntry(db, val)
			})
			if err != nil {
				return fmt.Errorf("journal entry %x: %w", item.Key(), err)
			}
			count++
		}
		return nil
	})
	return count, err
}

func replayEntry(db *Database, val []byte) error {
	if len(val) == 0 {
		return fmt.Errorf("empty entry")
	}
	switch val[0] {
	case entryFact:
		tuple, err := atomic.TupleFromBytes(val[1:])
		if err != nil {
			return err
		}
		return db.insertFact(tuple, false)

	case entryRule:
		data := val[1:]
		n, w := binary.Uvarint(data)
		if w <= 0 || uint64(len(data)-w) < n {
			return fmt.Errorf("truncated rule name")
		}
		name := atomic.RelationID(data[w : w+int(n)])
		clause, err := parser.ParseClause(string(data[w+int(n):]))
		if err != nil {
			return fmt.Errorf("rule %s: %w", name, err)
		}
		return db.insertRule(name, clause, false)
	}
	return fmt.Errorf("unknown entry kind %q", val[0])
}

// Close releases the sequence and closes the underlying BadgerDB
func (j *BadgerJournal) Close() error {
	if err := j.seq.Release(); err != nil {
		j.db.Close()
		return fmt.Errorf("failed to release journal sequence: %w", err)
	}
	return j.db.Close()
}

// Open opens the journal at path, replays it into a new Database and
// attaches it so later insertions are recorded. Closing the Database
// closes the journal.
func Open(path string) (*Database, error) {
	j, err := OpenBadgerJournal(path)
	if err != nil {
		return nil, err
	}
	db := NewDatabase()
	if _, err := j.Replay(db); err != nil {
		j.Close()
		return nil, fmt.Errorf("failed to replay journal: %w", err)
	}
	db.SetJournal(j)
	return db, nil
}
