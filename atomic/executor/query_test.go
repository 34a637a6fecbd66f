package executor

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/atomicdb/atomic"
	"github.com/wbrown/atomicdb/atomic/annotations"
	"github.com/wbrown/atomicdb/atomic/parser"
	"github.com/wbrown/atomicdb/atomic/storage"
)

func TestFacts(t *testing.T) {
	db := load(t, family)

	t.Run("InsertionOrder", func(t *testing.T) {
		got := ask(t, db, `X parent_of Y`)
		assert.Equal(t, []map[string]string{
			row("X", `"alice"`, "Y", `"bob"`),
			row("X", `"bob"`, "Y", `"carol"`),
			row("X", `"carol"`, "Y", `"dave"`),
			row("X", `"bob"`, "Y", `"erin"`),
		}, got)
	})

	t.Run("BoundArgument", func(t *testing.T) {
		got := ask(t, db, `"bob" parent_of Y`)
		assert.Equal(t, []map[string]string{row("Y", `"carol"`), row("Y", `"erin"`)}, got)
	})

	t.Run("GroundQuery", func(t *testing.T) {
		assert.Len(t, ask(t, db, `"alice" parent_of "bob"`), 1)
		assert.Empty(t, ask(t, db, `"alice" parent_of "dave"`))
	})

	t.Run("EmptyRelationHasNoSolutions", func(t *testing.T) {
		assert.Empty(t, ask(t, db, `X nobody_knows Y`))
	})
}

func TestRules(t *testing.T) {
	db := load(t, family)

	t.Run("Grandparent", func(t *testing.T) {
		got := ask(t, db, `X grandparent_of Y`)
		assert.Equal(t, []map[string]string{
			row("X", `"alice"`, "Y", `"carol"`),
			row("X", `"alice"`, "Y", `"erin"`),
			row("X", `"bob"`, "Y", `"dave"`),
		}, got)
	})

	t.Run("RecursiveClausesInOrder", func(t *testing.T) {
		got := ask(t, db, `"alice" ancestor_of Y`)
		assert.Equal(t, []map[string]string{
			row("Y", `"bob"`),
			row("Y", `"carol"`),
			row("Y", `"erin"`),
			row("Y", `"dave"`),
		}, got)
	})

	t.Run("BoundSecondArgument", func(t *testing.T) {
		got := ask(t, db, `X ancestor_of "dave"`)
		assert.Equal(t, []map[string]string{
			row("X", `"carol"`),
			row("X", `"alice"`),
			row("X", `"bob"`),
		}, got)
	})

	t.Run("BodyVariablesDoNotLeak", func(t *testing.T) {
		q := NewQuery(db, []atomic.Constraint{mustQuery(t, `X grandparent_of Y`)}, atomic.Bindings{})
		defer q.Close()
		require.True(t, q.Next())
		assert.Equal(t, []atomic.Variable{"X", "Y"}, q.Bindings().Names())
	})

	t.Run("ParameterNamesDoNotCapture", func(t *testing.T) {
		// The rule's own variables are named A, B and C.
		got := ask(t, db, `C grandparent_of A`)
		assert.Equal(t, row("C", `"alice"`, "A", `"carol"`), got[0])
		got = ask(t, db, `B grandparent_of B`)
		assert.Empty(t, got, "nobody is their own grandparent")
	})

	t.Run("ParametersUnifiedInBody", func(t *testing.T) {
		db := load(t, `A eq B : A ~ B.`)
		assert.Equal(t, []map[string]string{row("X", "1", "Y", "1")}, ask(t, db, `X eq Y, X ~ 1`))
		assert.Equal(t, []map[string]string{row("X", "2", "Y", "2")}, ask(t, db, `X eq Y, Y ~ 2`))
		assert.Empty(t, ask(t, db, `X eq Y, X ~ 1, Y ~ 2`))
		assert.Len(t, ask(t, db, `X eq X`), 1)
	})
}

func TestRuleParameters(t *testing.T) {
	db := load(t, `
		"alice" special : succeed.
		N small : N < 10.
		X twice Y : Y ~ $(X * 2).
		{H ..} first H : succeed.
	`)

	t.Run("LiteralParameterBindsCaller", func(t *testing.T) {
		assert.Equal(t, []map[string]string{row("X", `"alice"`)}, ask(t, db, `X special`))
		assert.Empty(t, ask(t, db, `"bob" special`))
	})

	t.Run("ComparisonInBody", func(t *testing.T) {
		assert.Len(t, ask(t, db, `5 small`), 1)
		assert.Empty(t, ask(t, db, `50 small`))
		got := ask(t, db, `X small`)
		assert.Equal(t, []map[string]string{row("X", "X")}, got, "an unresolved comparison holds")
	})

	t.Run("OutputThroughExpression", func(t *testing.T) {
		assert.Equal(t, []map[string]string{row("Y", "42")}, ask(t, db, `21 twice Y`))
		assert.Len(t, ask(t, db, `$(10 + 11) twice 42`), 1)
	})

	t.Run("PatternParameter", func(t *testing.T) {
		assert.Equal(t, []map[string]string{row("F", "1")}, ask(t, db, `[1 2 3] first F`))
		assert.Empty(t, ask(t, db, `"text" first F`))
	})
}

func TestConstraints(t *testing.T) {
	db := load(t, family+`
		[1 2 3] seq.
		[4 5] seq.
	`)

	t.Run("ClosedWorldNot", func(t *testing.T) {
		got := ask(t, db, `X parent_of Y, !(Y parent_of Z)`)
		assert.Equal(t, []map[string]string{
			row("X", `"carol"`, "Y", `"dave"`, "Z", "Z"),
			row("X", `"bob"`, "Y", `"erin"`, "Z", "Z"),
		}, got)
	})

	t.Run("NotNeverBinds", func(t *testing.T) {
		assert.Empty(t, ask(t, db, `!X parent_of Y`))
		assert.Len(t, ask(t, db, `!X nobody_knows Y`), 1)
	})

	t.Run("AlternativesInOrder", func(t *testing.T) {
		got := ask(t, db, `X ~ 1; X ~ 2; X ~ 3`)
		assert.Equal(t, []map[string]string{row("X", "1"), row("X", "2"), row("X", "3")}, got)
	})

	t.Run("GroupedIntersections", func(t *testing.T) {
		got := ask(t, db, `(X ~ 1, Y ~ 2); X ~ 3`)
		assert.Equal(t, []map[string]string{
			row("X", "1", "Y", "2"),
			row("X", "3", "Y", "Y"),
		}, got)
	})

	t.Run("SelfComparisonAlwaysHolds", func(t *testing.T) {
		assert.Len(t, ask(t, db, `X = X`), 1)
		assert.Len(t, ask(t, db, `X ~ 3, X = X`), 1)
	})

	t.Run("FailAndSucceed", func(t *testing.T) {
		assert.Empty(t, ask(t, db, `fail`))
		assert.Len(t, ask(t, db, `succeed`), 1)
		assert.Len(t, ask(t, db, `fail; succeed`), 1)
		assert.Empty(t, ask(t, db, `succeed, fail`))
	})

	t.Run("Comparisons", func(t *testing.T) {
		got := ask(t, db, `X ~ 1; X ~ 5; X ~ 9, X > 3`)
		assert.Equal(t, []map[string]string{row("X", "1"), row("X", "5"), row("X", "9")}, got,
			"the comparison only joins the last alternative")
		got = ask(t, db, `(X ~ 1; X ~ 5; X ~ 9), X > 3`)
		assert.Equal(t, []map[string]string{row("X", "5"), row("X", "9")}, got)
	})

	t.Run("GlobPatterns", func(t *testing.T) {
		assert.Equal(t, []map[string]string{row("H", "1"), row("H", "4")}, ask(t, db, `{H ..} seq`))
		assert.Equal(t, []map[string]string{row("L", "3"), row("L", "5")}, ask(t, db, `{.. L} seq`))
		assert.Equal(t, []map[string]string{row("N", "3")}, ask(t, db, `{.. 2 N ..} seq`))
	})

	t.Run("Expressions", func(t *testing.T) {
		assert.Equal(t, []map[string]string{row("X", "5")}, ask(t, db, `X ~ $(2 + 3)`))
		assert.Equal(t, []map[string]string{row("X", "4", "Y", "16")}, ask(t, db, `X ~ 4, Y ~ $(X ^ 2)`))
	})
}

func TestQueryIteration(t *testing.T) {
	db := load(t, family)

	t.Run("EmptyConstraintListYieldsNothing", func(t *testing.T) {
		q := NewQuery(db, nil, atomic.Bindings{})
		assert.False(t, q.Next())
		assert.Equal(t, 0, q.Count())
	})

	t.Run("StartEnvironment", func(t *testing.T) {
		start := atomic.Bindings{}.With("X", atomic.Lit(atomic.Text("alice")))
		q := NewQuery(db, []atomic.Constraint{mustQuery(t, `X parent_of Y`)}, start)
		solutions := q.All()
		require.Len(t, solutions, 1)
		y, ok := atomic.Resolve(solutions[0], atomic.Var("Y"))
		require.True(t, ok)
		assert.Equal(t, atomic.Text("bob"), y)
	})

	t.Run("CloseAbandonsSearch", func(t *testing.T) {
		q := NewQuery(db, []atomic.Constraint{mustQuery(t, `"alice" ancestor_of Y`)}, atomic.Bindings{})
		require.True(t, q.Next())
		require.NoError(t, q.Close())
		require.NoError(t, q.Close())
		assert.False(t, q.Next())
		assert.Equal(t, 1, q.Count())
	})

	t.Run("ExhaustedStaysExhausted", func(t *testing.T) {
		q := NewQuery(db, []atomic.Constraint{mustQuery(t, `"carol" parent_of Y`)}, atomic.Bindings{})
		assert.Len(t, q.All(), 1)
		assert.False(t, q.Next())
	})
}

func TestMaxDepth(t *testing.T) {
	db := load(t, family+`
		X loop : X loop.
	`)

	var mu sync.Mutex
	var exceeded int
	handler := func(e annotations.Event) {
		if e.Name == annotations.RuleDepthExceeded {
			mu.Lock()
			exceeded++
			mu.Unlock()
		}
	}

	assert.Empty(t, ask(t, db, `1 loop`, WithMaxDepth(8), WithHandler(handler)))
	assert.Equal(t, 1, exceeded)

	got := ask(t, db, `"alice" ancestor_of Y`, WithMaxDepth(2))
	assert.Equal(t, []map[string]string{row("Y", `"bob"`), row("Y", `"carol"`), row("Y", `"erin"`)}, got,
		"dave is three calls deep")
}

func TestDeepRecursion(t *testing.T) {
	db := load(t, `
		0 down : succeed.
		N down : N > 0, $(N - 1) down.
	`)

	assert.Len(t, ask(t, db, `2000 down`), 1)
	assert.Empty(t, ask(t, db, `"x" down`), "text never compares to a number")
}

func TestAnnotations(t *testing.T) {
	db := load(t, family)

	var events []annotations.Event
	handler := func(e annotations.Event) { events = append(events, e) }

	got := ask(t, db, `X grandparent_of Y`, WithHandler(handler))
	require.Len(t, got, 3)
	require.NotEmpty(t, events)

	first, last := events[0], events[len(events)-1]
	assert.Equal(t, annotations.QueryInvoked, first.Name)
	assert.Equal(t, annotations.QueryComplete, last.Name)
	assert.Equal(t, 3, last.Data["solution.count"])
	assert.Equal(t, first.Data["query.id"], last.Data["query.id"])
	assert.NotEmpty(t, first.Data["query.id"])

	counts := map[string]int{}
	for _, e := range events {
		counts[e.Name]++
	}
	assert.Equal(t, 1, counts[annotations.QueryInvoked], "nested queries are not announced")
	assert.Equal(t, 3, counts[annotations.QuerySolution])
	assert.Equal(t, 1, counts[annotations.RuleEntered])
	assert.True(t, counts[annotations.RelationFactsScanned] > 0)

	events = nil
	ask(t, load(t, `"alice" special : succeed.`), `"bob" special`, WithHandler(handler))
	counts = map[string]int{}
	for _, e := range events {
		counts[e.Name]++
	}
	assert.Equal(t, 1, counts[annotations.RuleSplitFailed])
}

func TestEvaluate(t *testing.T) {
	db := storage.NewDatabase()

	q, err := Evaluate(db, atomic.Bindings{}, mustStatement(t, `"alice" parent_of "bob".`))
	require.NoError(t, err)
	assert.Nil(t, q)

	q, err = Evaluate(db, atomic.Bindings{}, mustStatement(t, `A grandparent_of C : A parent_of B, B parent_of C.`))
	require.NoError(t, err)
	assert.Nil(t, q)
	assert.Equal(t, storage.Stats{Relations: 1, Facts: 1, Rules: 1, Clauses: 1}, db.Stats())

	var reported []string
	handler := func(e annotations.Event) { reported = append(reported, e.Name) }
	bad := atomic.RuleStatement{Signature: []atomic.Term{atomic.Var("X"), atomic.Var("Y")}}
	_, err = Evaluate(db, atomic.Bindings{}, bad, WithHandler(handler))
	assert.ErrorIs(t, err, ErrMissingRelationID)
	assert.Equal(t, []string{annotations.ErrorStatement}, reported)

	_, err = Evaluate(db, atomic.Bindings{}, atomic.FactStatement{Values: []atomic.Value{atomic.Text("x")}})
	assert.ErrorIs(t, err, storage.ErrTupleTooShort)

	q, err = Evaluate(db, atomic.Bindings{}, mustStatement(t, `X parent_of Y.`))
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Len(t, q.All(), 1)
}

func TestProject(t *testing.T) {
	env := atomic.NewBindings(map[atomic.Variable]atomic.Term{
		"X": atomic.Var("Y"),
		"Y": atomic.Lit(atomic.Int(7)),
	})
	got := Project(env, []atomic.Variable{"X", "Z"})
	require.Len(t, got, 2)
	assert.Equal(t, "X ~ 7", got[0].String())
	assert.Equal(t, atomic.Var("Z"), got[1].Value)
}

func TestConcurrentQueries(t *testing.T) {
	db := load(t, family)
	want := ask(t, db, `X ancestor_of Y`)
	require.Len(t, want, 8)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := parser.ParseQuery(`X ancestor_of Y`)
			if err != nil {
				errs <- err.Error()
				return
			}
			q := NewQuery(db, []atomic.Constraint{c}, atomic.Bindings{})
			if n := len(q.All()); n != len(want) {
				errs <- fmt.Sprintf("got %d solutions", n)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if err := db.InsertFact(atomic.Fact(atomic.Int(int64(i)), "noise")); err != nil {
				errs <- err.Error()
			}
		}
	}()
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
	assert.Len(t, db.Facts(atomic.Rel("noise")), 100)
}

func mustQuery(t *testing.T, src string) atomic.Constraint {
	t.Helper()
	c, err := parser.ParseQuery(src)
	require.NoError(t, err)
	return c
}

func mustStatement(t *testing.T, src string) atomic.Statement {
	t.Helper()
	s, err := parser.ParseStatement(src)
	require.NoError(t, err)
	return s
}
