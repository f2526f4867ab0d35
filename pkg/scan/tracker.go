/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tracker.go
Description: Two-state accumulator merging consecutive windows with the same
prediction into one range.
*/

package scan

// guess is an active run of windows sharing one label.
type guess struct {
	arch       string
	start, end int
}

// tracker is either idle (cur == nil) or holds an active labelled guess.
// Windows without a prediction put it back to idle.
type tracker struct {
	cur *guess
	// minLen is the exclusive lower bound on the length of an emitted run.
	minLen int
}

func newTracker(halfWidth int) *tracker {
	return &tracker{minLen: 2 * halfWidth}
}

// observe feeds one window prediction. It returns the closed run when that
// run is long enough to be reported.
func (t *tracker) observe(arch string, ok bool, start, end int) (guess, bool) {
	if ok && t.cur != nil && t.cur.arch == arch {
		t.cur.end = end
		return guess{}, false
	}

	closed, emit := t.close()
	if ok {
		t.cur = &guess{arch: arch, start: start, end: end}
	}
	return closed, emit
}

// close ends the active guess, if any, and reports whether it is long enough.
func (t *tracker) close() (guess, bool) {
	if t.cur == nil {
		return guess{}, false
	}
	g := *t.cur
	t.cur = nil
	return g, g.end-g.start > t.minLen
}
