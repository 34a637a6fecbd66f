package unify

import (
	"github.com/wbrown/atomicdb/atomic"
)

// MatchPattern unifies a list pattern against a list value and returns the
// new bindings made by the pattern's explicit terms.
//
// A pattern without a glob lines its terms up with the whole list. A glob
// pattern pins the front (GlobHead), the end (GlobTail) or any contiguous
// window (GlobMiddle) of the list and ignores the rest. As with every
// sequence unification the pairing is zipped: when the list is shorter than
// the pattern only the overlapping positions are checked.
func MatchPattern(p atomic.PatternMatch, list atomic.List, current, outer atomic.Bindings) (atomic.Bindings, bool) {
	delta, _, ok := matchPattern(p, list, scope{current, outer})
	return delta, ok
}

func matchPattern(p atomic.PatternMatch, list atomic.List, s scope) (atomic.Bindings, int, bool) {
	n := len(p.Explicit)
	if !p.IsGlob {
		return matchWindow(p.Explicit, list, s)
	}

	switch p.Position {
	case atomic.GlobHead:
		if len(list) > n {
			list = list[:n]
		}
		return matchWindow(p.Explicit, list, s)

	case atomic.GlobTail:
		// The last n elements pair up with the terms in list order, not reversed.
		if len(list) > n {
			list = list[len(list)-n:]
		}
		return matchWindow(p.Explicit, list, s)

	case atomic.GlobMiddle:
		return matchMiddle(p.Explicit, list, s)
	}
	return atomic.Bindings{}, 0, false
}

// matchMiddle tries every window of the pattern's length in order and keeps
// the first that matches completely. When none does, the reported failure
// is the window that matched the most positions, the earliest on ties.
func matchMiddle(explicit []atomic.Term, list atomic.List, s scope) (atomic.Bindings, int, bool) {
	n := len(explicit)
	best := atomic.Bindings{}
	bestMatched := -1
	for start := 0; start+n <= len(list); start++ {
		delta, matched, ok := matchWindow(explicit, list[start:start+n], s)
		if ok {
			return delta, matched, true
		}
		if matched > bestMatched {
			best, bestMatched = delta, matched
		}
	}
	if bestMatched < 0 {
		bestMatched = 0
	}
	return best, bestMatched, false
}

func matchWindow(explicit []atomic.Term, window atomic.List, s scope) (atomic.Bindings, int, bool) {
	delta, _, matched, ok := unifySeq(explicit, atomic.Terms(window...), s)
	return delta, matched, ok
}
