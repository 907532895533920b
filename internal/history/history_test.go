package history

import (
	"testing"
	"time"

	"github.com/sandeepkv93/habitd/internal/model"
)

func TestSeedProducesConsecutiveDaysEndingToday(t *testing.T) {
	today := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	points := Seed(today, 7, nil)
	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}
	want := []string{"Feb 24", "Feb 25", "Feb 26", "Feb 27", "Feb 28", "Mar 01", "Mar 02"}
	for i, p := range points {
		if p.Label() != want[i] {
			t.Fatalf("point[%d] label = %s, want %s", i, p.Label(), want[i])
		}
		if p.Value != 0 {
			t.Fatalf("point[%d] value = %v, want 0", i, p.Value)
		}
		if p.Date.Hour() != 0 {
			t.Fatalf("point[%d] not truncated to day: %s", i, p.Date)
		}
	}
}

func TestSeedUsesBaseline(t *testing.T) {
	points := Seed(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 3, func(i int) float64 { return float64(i * 10) })
	for i, p := range points {
		if p.Value != float64(i*10) {
			t.Fatalf("point[%d] value = %v", i, p.Value)
		}
	}
}

func TestSeedDefaultsWindow(t *testing.T) {
	if got := len(Seed(time.Now(), 0, Zero)); got != DefaultWindow {
		t.Fatalf("expected default window %d, got %d", DefaultWindow, got)
	}
}

func TestRecordReplacesTodayInPlace(t *testing.T) {
	today := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	points := Seed(today, 7, Zero)
	next := Record(points, today.Add(5*time.Hour), 4, 7)
	if len(next) != 7 {
		t.Fatalf("expected 7 points, got %d", len(next))
	}
	if next[6].Value != 4 || next[6].Label() != "Mar 02" {
		t.Fatalf("unexpected trailing point: %+v", next[6])
	}
	if points[6].Value != 0 {
		t.Fatal("record mutated its input")
	}
}

func TestRecordSlidingWindowEvictsOldest(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	points := Seed(start, 7, func(i int) float64 { return float64(100 + i) })
	oldest := points[0].Date

	for i := 1; i <= 8; i++ {
		points = Record(points, start.AddDate(0, 0, i), float64(i), 7)
		if len(points) != 7 {
			t.Fatalf("after update %d: expected 7 points, got %d", i, len(points))
		}
	}
	for _, p := range points {
		if p.Date.Equal(oldest) {
			t.Fatal("oldest seeded point was not evicted")
		}
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Date.Before(points[i].Date) {
			t.Fatalf("history out of order at %d", i)
		}
	}
	if points[6].Value != 8 || points[0].Value != 2 {
		t.Fatalf("unexpected window values: first=%v last=%v", points[0].Value, points[6].Value)
	}
}

func TestRecordIgnoresEarlierDay(t *testing.T) {
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	points := Seed(today, 7, Zero)
	next := Record(points, today.AddDate(0, 0, -3), 9, 7)
	for i := range next {
		if next[i] != points[i] {
			t.Fatalf("earlier day changed window at %d: %+v", i, next[i])
		}
	}
}

func TestRecordOnEmptyHistory(t *testing.T) {
	next := Record(nil, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 2, 7)
	if len(next) != 1 || next[0].Value != 2 {
		t.Fatalf("unexpected history: %+v", next)
	}
}

func TestCompletionRate(t *testing.T) {
	over := model.Habit{Goal: 120, Progress: 185}
	if got := CompletionRate(over); got <= 100 {
		t.Fatalf("expected unclamped rate above 100, got %v", got)
	}
	if got := DisplayRate(CompletionRate(over)); got != 100 {
		t.Fatalf("expected display rate 100, got %v", got)
	}
	half := model.Habit{Goal: 30, Progress: 15}
	if got := CompletionRate(half); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := DisplayRate(-5); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := CompletionRate(model.Habit{}); got != 0 {
		t.Fatalf("expected 0 for zero goal, got %v", got)
	}
}

func TestSummariesAndWindowStats(t *testing.T) {
	habits := []model.Habit{
		{ID: "1", Name: "Sleep", Goal: 8, Progress: 4, Color: "#8b5cf6"},
		{ID: "2", Name: "Read", Goal: 1, Progress: 1},
	}
	sum := Summaries(habits)
	if len(sum) != 2 || sum[0].Rate != 50 || sum[1].Rate != 100 || sum[0].Color != "#8b5cf6" {
		t.Fatalf("unexpected summaries: %+v", sum)
	}

	points := []model.HistoryPoint{{Value: 2}, {Value: 8}, {Value: 9}, {Value: 5}}
	if got := Average(points); got != 6 {
		t.Fatalf("average = %v", got)
	}
	if got := DaysMet(points, 8); got != 2 {
		t.Fatalf("days met = %d", got)
	}
	if got := Max(points); got != 9 {
		t.Fatalf("max = %v", got)
	}
	if Average(nil) != 0 {
		t.Fatal("expected zero average for empty window")
	}
}
