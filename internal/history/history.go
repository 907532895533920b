// Package history maintains the bounded per-day value window behind the
// charts and derives completion-rate figures from habit snapshots.
package history

import (
	"math"
	"time"

	"github.com/sandeepkv93/habitd/internal/model"
)

const DefaultWindow = 7

// Baseline supplies the seeded value for the i-th point, oldest first.
type Baseline func(i int) float64

// Zero is the baseline for user-created habits.
func Zero(int) float64 { return 0 }

// Seed returns n consecutive calendar days ending on today's day, oldest first.
func Seed(today time.Time, n int, baseline Baseline) []model.HistoryPoint {
	if n <= 0 {
		n = DefaultWindow
	}
	if baseline == nil {
		baseline = Zero
	}
	end := model.Day(today)
	out := make([]model.HistoryPoint, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.HistoryPoint{
			Date:  end.AddDate(0, 0, i-(n-1)),
			Value: baseline(i),
		})
	}
	return out
}

// Record writes value for today's day into the window. A trailing point for
// the same day is overwritten; a later day is appended and the oldest points
// are evicted so the window never exceeds n. A day earlier than the trailing
// point leaves the window untouched. The input slice is never modified.
func Record(points []model.HistoryPoint, today time.Time, value float64, n int) []model.HistoryPoint {
	if n <= 0 {
		n = DefaultWindow
	}
	day := model.Day(today)
	out := make([]model.HistoryPoint, len(points), len(points)+1)
	copy(out, points)

	if len(out) > 0 {
		last := out[len(out)-1]
		if model.SameDay(last.Date, day) {
			out[len(out)-1].Value = value
			return trim(out, n)
		}
		if day.Before(last.Date) {
			return trim(out, n)
		}
	}
	out = append(out, model.HistoryPoint{Date: day, Value: value})
	return trim(out, n)
}

func trim(points []model.HistoryPoint, n int) []model.HistoryPoint {
	if len(points) <= n {
		return points
	}
	return append([]model.HistoryPoint(nil), points[len(points)-n:]...)
}

// CompletionRate is progress as a percentage of goal. It is not clamped so
// over-achievement stays visible.
func CompletionRate(h model.Habit) float64 {
	if h.Goal <= 0 {
		return 0
	}
	return h.Progress / h.Goal * 100
}

// DisplayRate clamps a rate to [0, 100] for progress bars.
func DisplayRate(rate float64) float64 {
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

type Completion struct {
	HabitID string
	Name    string
	Color   string
	Rate    float64
}

func Summaries(habits []model.Habit) []Completion {
	out := make([]Completion, 0, len(habits))
	for _, h := range habits {
		out = append(out, Completion{
			HabitID: h.ID,
			Name:    h.Name,
			Color:   h.Color,
			Rate:    CompletionRate(h),
		})
	}
	return out
}

func Average(points []model.HistoryPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range points {
		total += p.Value
	}
	return total / float64(len(points))
}

// DaysMet counts window days whose value reached goal.
func DaysMet(points []model.HistoryPoint, goal float64) int {
	count := 0
	for _, p := range points {
		if p.Value >= goal {
			count++
		}
	}
	return count
}

// Max returns the largest value in the window, or zero when empty.
func Max(points []model.HistoryPoint) float64 {
	out := 0.0
	for _, p := range points {
		if p.Value > out {
			out = p.Value
		}
	}
	return out
}
