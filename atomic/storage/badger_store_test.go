package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/atomicdb/atomic"
)

func TestBadgerJournalReplay(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir)
	require.NoError(t, err)

	f, err := atomic.ParseFloat("-2.50")
	require.NoError(t, err)
	require.NoError(t, db.InsertFact(atomic.Fact(atomic.Text("alice"), "parent_of", atomic.Text("bob"))))
	require.NoError(t, db.InsertFact(atomic.Fact(atomic.Text("bob"), "parent_of", atomic.Text("carol"))))
	require.NoError(t, db.InsertFact(atomic.Fact(atomic.List{atomic.Int(1), f}, "sample")))

	body := []atomic.Constraint{
		atomic.Call(atomic.Var("X"), "parent_of", atomic.Var("T")),
		atomic.Call(atomic.Var("T"), "parent_of", atomic.Var("Y")),
		atomic.Not{Inner: atomic.Comparison{Op: atomic.EqualTo, Left: atomic.Var("X"), Right: atomic.Var("Y")}},
	}
	require.NoError(t, db.InsertRule(atomic.Rel("grandparent_of"), []atomic.Term{atomic.Var("X"), atomic.Var("Y")}, body))
	require.NoError(t, db.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, Stats{Relations: 2, Facts: 3, Rules: 1, Clauses: 1}, reopened.Stats())

	facts := reopened.Facts(atomic.Rel("parent_of"))
	require.Len(t, facts, 2)
	assert.Equal(t, atomic.Text("bob"), facts[0][1])
	assert.Equal(t, atomic.Text("carol"), facts[1][1])

	sample := reopened.Facts(atomic.Rel("sample"))
	require.Len(t, sample, 1)
	assert.True(t, atomic.Equal(atomic.List{atomic.Int(1), f}, sample[0][0]))

	clauses := reopened.Clauses(atomic.Rel("grandparent_of"))
	require.Len(t, clauses, 1)
	assert.Equal(t, atomic.Clause{Params: []atomic.Term{atomic.Var("X"), atomic.Var("Y")}, Body: body}.String(), clauses[0].String())

	// New insertions keep journaling after a replay.
	require.NoError(t, reopened.InsertFact(atomic.Fact(atomic.Text("carol"), "parent_of", atomic.Text("dave"))))
}

func TestBadgerJournalInMemory(t *testing.T) {
	j, err := OpenBadgerJournal("")
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.AppendFact(atomic.Fact(atomic.Int(1), "n")))
	require.NoError(t, j.AppendRule(atomic.Rel("any"), atomic.Clause{Params: []atomic.Term{atomic.Var("A")}, Body: []atomic.Constraint{atomic.Succeed{}}}))
	require.NoError(t, j.AppendFact(atomic.Fact(atomic.Int(2), "n")))

	db := NewDatabase()
	n, err := j.Replay(db)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	facts := db.Facts(atomic.Rel("n"))
	require.Len(t, facts, 2)
	assert.Equal(t, "1", facts[0][0].String())
	assert.Equal(t, "2", facts[1][0].String())
	assert.Len(t, db.Clauses(atomic.Rel("any")), 1)
}
