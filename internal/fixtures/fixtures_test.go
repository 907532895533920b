package fixtures

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var today = time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)

func TestDemoBuildsFourHabits(t *testing.T) {
	habits, err := Build(Demo(), today, 7, rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatalf("build demo: %v", err)
	}
	if len(habits) != 4 {
		t.Fatalf("expected 4 demo habits, got %d", len(habits))
	}
	water := habits[0]
	if water.ID != "1" || water.Name != "Water intake" || water.Goal != 8 || water.Streak != 7 || water.Progress != 6 {
		t.Fatalf("unexpected water habit: %+v", water)
	}
	if habits[1].Progress != 7.5 || habits[3].Color != "#f59e0b" {
		t.Fatalf("unexpected demo values: %+v %+v", habits[1], habits[3])
	}
	for _, h := range habits {
		if len(h.History) != 7 {
			t.Fatalf("%s: expected 7 history points, got %d", h.Name, len(h.History))
		}
		if h.History[6].Label() != "Feb 09" {
			t.Fatalf("%s: history must end today, got %s", h.Name, h.History[6].Label())
		}
	}
	for _, p := range water.History {
		if p.Value < 4 || p.Value > 8 || p.Value != float64(int(p.Value)) {
			t.Fatalf("water history value out of range: %v", p.Value)
		}
	}
	for _, p := range habits[1].History {
		if p.Value < 5 || p.Value >= 9 {
			t.Fatalf("sleep history value out of range: %v", p.Value)
		}
	}
	for _, p := range habits[3].History {
		if p.Value < 100 || p.Value > 279 {
			t.Fatalf("screen time history value out of range: %v", p.Value)
		}
	}
}

func TestBuildIsDeterministicForSeed(t *testing.T) {
	a, err := Build(Demo(), today, 7, rand.New(rand.NewPCG(42, 7)))
	if err != nil {
		t.Fatalf("build a: %v", err)
	}
	b, err := Build(Demo(), today, 7, rand.New(rand.NewPCG(42, 7)))
	if err != nil {
		t.Fatalf("build b: %v", err)
	}
	for i := range a {
		for j := range a[i].History {
			if a[i].History[j] != b[i].History[j] {
				t.Fatalf("history differs at habit %d point %d", i, j)
			}
		}
	}
}

func TestLoadCustomFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.yaml")
	body := `habits:
  - name: Reading
    goal: 20
    unit: pages
    history:
      values: [5, 10, 20]
  - name: Stretch
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	specs, err := Load(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	habits, err := Build(specs, today, 5, nil)
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	reading := habits[0]
	if reading.ID != "fixture-1" || reading.Icon == "" {
		t.Fatalf("unexpected defaults: %+v", reading)
	}
	want := []float64{0, 0, 5, 10, 20}
	for i, p := range reading.History {
		if p.Value != want[i] {
			t.Fatalf("reading history[%d] = %v, want %v", i, p.Value, want[i])
		}
	}
	stretch := habits[1]
	if stretch.Goal != 1 || stretch.Unit != "times" {
		t.Fatalf("unexpected stretch defaults: %+v", stretch)
	}
}

func TestBuildRejectsBadRange(t *testing.T) {
	_, err := Build([]HabitSpec{{Name: "Bad", History: HistorySpec{Min: 10, Max: 2}}}, today, 7, nil)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("habits: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}
