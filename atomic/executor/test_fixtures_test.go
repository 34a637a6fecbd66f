package executor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wbrown/atomicdb/atomic"
	"github.com/wbrown/atomicdb/atomic/parser"
	"github.com/wbrown/atomicdb/atomic/storage"
)

const family = `
% four generations
"alice" parent_of "bob".
"bob" parent_of "carol".
"carol" parent_of "dave".
"bob" parent_of "erin".

A grandparent_of C : A parent_of B, B parent_of C.

A ancestor_of C : A parent_of C.
A ancestor_of C : A parent_of B, B ancestor_of C.
`

// load evaluates a source file of facts and rules into a fresh database
func load(t *testing.T, src string) *storage.Database {
	t.Helper()
	db := storage.NewDatabase()
	statements, err := parser.ParseFile(src)
	require.NoError(t, err)
	for _, stmt := range statements {
		q, err := Evaluate(db, atomic.Bindings{}, stmt)
		require.NoError(t, err, "evaluating %s", stmt)
		require.Nil(t, q, "fixtures hold only facts and rules")
	}
	return db
}

// ask runs a query and renders each solution's query variables
func ask(t *testing.T, db Database, src string, opts ...Option) []map[string]string {
	t.Helper()
	c, err := parser.ParseQuery(src)
	require.NoError(t, err)
	q, err := Evaluate(db, atomic.Bindings{}, atomic.QueryStatement{Constraint: c}, opts...)
	require.NoError(t, err)
	require.NotNil(t, q)
	defer q.Close()

	vars := atomic.Variables(c)
	out := []map[string]string{}
	for q.Next() {
		row := make(map[string]string, len(vars))
		for _, b := range Project(q.Bindings(), vars) {
			row[string(b.Name)] = b.Value.String()
		}
		out = append(out, row)
	}
	return out
}

// row builds an expected solution from name/value pairs
func row(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}
