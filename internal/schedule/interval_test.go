package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	a := TimeWindow{Start: 420, End: 480}

	assert.True(t, Overlaps(a, TimeWindow{Start: 450, End: 510}))
	assert.True(t, Overlaps(a, TimeWindow{Start: 400, End: 430}))
	assert.True(t, Overlaps(a, TimeWindow{Start: 430, End: 440}), "contained window overlaps")
	assert.True(t, Overlaps(a, TimeWindow{Start: 400, End: 500}), "containing window overlaps")

	// Half-open semantics: touching endpoints do not overlap.
	assert.False(t, Overlaps(a, TimeWindow{Start: 480, End: 540}))
	assert.False(t, Overlaps(a, TimeWindow{Start: 360, End: 420}))
	assert.False(t, Overlaps(a, TimeWindow{Start: 500, End: 560}))
}

func TestContains(t *testing.T) {
	w := TimeWindow{Start: 420, End: 1200}

	assert.True(t, Contains(w, 420, 10))
	assert.True(t, Contains(w, 1190, 10), "probe may end exactly at the window end")
	assert.False(t, Contains(w, 1195, 10), "probe spilling past the end is out")
	assert.False(t, Contains(w, 419, 10))
	assert.True(t, Contains(w, 420, 780), "probe may fill the whole window")
	assert.False(t, Contains(w, 420, 781))
}
