package engine

import "humidmon/internal/model"

// SeverityWindow is the day's status history reduced to severity levels,
// oldest first. Tail queries look at the most recent n entries.
type SeverityWindow struct {
	levels []int
}

func NewSeverityWindow(history []model.Status) *SeverityWindow {
	levels := make([]int, len(history))
	for i, s := range history {
		levels[i] = s.Severity()
	}
	return &SeverityWindow{levels: levels}
}

func (w *SeverityWindow) Len() int {
	return len(w.levels)
}

func (w *SeverityWindow) tail(n int) []int {
	if n <= 0 {
		return nil
	}
	start := len(w.levels) - n
	if start < 0 {
		start = 0
	}
	return w.levels[start:]
}

// TailMean returns the arithmetic mean of the last n severities.
func (w *SeverityWindow) TailMean(n int) float64 {
	tail := w.tail(n)
	if len(tail) == 0 {
		return 0
	}
	sum := 0
	for _, lvl := range tail {
		sum += lvl
	}
	return float64(sum) / float64(len(tail))
}

// TailContains reports whether level appears in the last n severities.
func (w *SeverityWindow) TailContains(n, level int) bool {
	for _, lvl := range w.tail(n) {
		if lvl == level {
			return true
		}
	}
	return false
}
