package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour int) time.Time {
	return time.Date(2024, 6, 1, hour, 0, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	base := NewInterval(at(10), 2) // 10:00-12:00

	assert.True(t, base.Overlaps(NewInterval(at(11), 2)), "11-13 overlaps")
	assert.True(t, base.Overlaps(NewInterval(at(9), 2)), "9-11 overlaps")
	assert.True(t, base.Overlaps(NewInterval(at(10), 1)), "same start overlaps")
	assert.True(t, base.Overlaps(NewInterval(at(8), 6)), "enclosing overlaps")
	assert.False(t, base.Overlaps(NewInterval(at(12), 1)), "back-to-back after")
	assert.False(t, base.Overlaps(NewInterval(at(8), 2)), "back-to-back before")
}

func TestIntervalOverlapsIsSymmetric(t *testing.T) {
	for s1 := 0; s1 < 20; s1++ {
		for s2 := 0; s2 < 20; s2++ {
			a := NewInterval(at(s1), 1+s1%4)
			b := NewInterval(at(s2), 1+s2%3)
			assert.Equal(t, a.Overlaps(b), b.Overlaps(a))
		}
	}
}

func TestFirstOverlap(t *testing.T) {
	existing := []Interval{NewInterval(at(8), 1), NewInterval(at(10), 2)}
	assert.Equal(t, 1, FirstOverlap(NewInterval(at(11), 2), existing))
	assert.Equal(t, -1, FirstOverlap(NewInterval(at(12), 1), existing))
	assert.Equal(t, -1, FirstOverlap(NewInterval(at(9), 1), existing))
}
