package workflow

import "time"

// Interval - полуоткрытый интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval строит интервал длительностью hours часов
func NewInterval(start time.Time, hours int) Interval {
	return Interval{Start: start, End: start.Add(time.Duration(hours) * time.Hour)}
}

// Overlaps: a.Start < b.End && b.Start < a.End. Соседние интервалы не пересекаются.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// FirstOverlap возвращает индекс первого пересекающегося интервала или -1
func FirstOverlap(candidate Interval, existing []Interval) int {
	for i, iv := range existing {
		if candidate.Overlaps(iv) {
			return i
		}
	}
	return -1
}
