package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerTransitions(t *testing.T) {
	tr := newTracker(0x100)

	_, emit := tr.observe("", false, 0, 0x200)
	assert.False(t, emit)
	assert.Nil(t, tr.cur)

	_, emit = tr.observe("ARMel", true, 0x100, 0x300)
	assert.False(t, emit)
	_, emit = tr.observe("ARMel", true, 0x200, 0x400)
	assert.False(t, emit)
	assert.Equal(t, &guess{arch: "ARMel", start: 0x100, end: 0x400}, tr.cur)

	g, emit := tr.observe("MIPSel", true, 0x300, 0x500)
	assert.True(t, emit)
	assert.Equal(t, guess{arch: "ARMel", start: 0x100, end: 0x400}, g)

	// A single window never exceeds 2*halfWidth.
	_, emit = tr.observe("", false, 0x400, 0x600)
	assert.False(t, emit)
	assert.Nil(t, tr.cur)

	_, emit = tr.close()
	assert.False(t, emit)
}
