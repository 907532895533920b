package views

import (
	"strings"
	"testing"
)

func sampleCards() []HabitCardData {
	return []HabitCardData{
		{
			ID: "1", Name: "Water intake", Icon: "💧", Color: "#3b82f6", Goal: 8, Progress: 6, Unit: "glasses", Streak: 7,
			History: []BarData{{Label: "Feb 08", Value: 8}, {Label: "Feb 09", Value: 6}},
		},
		{
			ID: "2", Name: "Sleep", Icon: "😴", Color: "#8b5cf6", Goal: 8, Progress: 7.5, Unit: "hours", Streak: 1,
			History: []BarData{{Label: "Feb 08", Value: 0}, {Label: "Feb 09", Value: 7.5}},
		},
	}
}

func TestRenderDashboardSections(t *testing.T) {
	out := RenderDashboardPanel(DashboardPanelData{Theme: LightTheme, Habits: sampleCards()})
	for _, want := range []string{"Today's Progress", "Weekly Overview", "Current Streaks", "6/8 glasses", "7.5/8 hours", "7 days", "1 day"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dashboard missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDashboardEmpty(t *testing.T) {
	out := RenderDashboardPanel(DashboardPanelData{Theme: DarkTheme})
	if !strings.Contains(out, "no habits yet") {
		t.Fatalf("expected empty-state hint, got:\n%s", out)
	}
}

func TestRenderHabitsPanelShowsSelection(t *testing.T) {
	out := RenderHabitsPanel(HabitsPanelData{Theme: LightTheme, Habits: sampleCards(), Cursor: 1, SliderAt: 7.5})
	for _, want := range []string{"> ", "Goal: 8 hours per day", "Today's progress: 7.5 / 8 hours", "Feb 09", " 16"} {
		if !strings.Contains(out, want) {
			t.Fatalf("habits panel missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStatsFormatsRate(t *testing.T) {
	out := RenderStatsPanel(StatsPanelData{Theme: LightTheme, Rows: []StatRowData{
		{Name: "Water intake", Icon: "💧", Color: "#3b82f6", Rate: 75, Share: 42.9},
		{Name: "Screen time", Icon: "📱", Color: "#f59e0b", Rate: 100, Share: 57.1},
	}})
	if !strings.Contains(out, "75.0%") || !strings.Contains(out, "100.0%") {
		t.Fatalf("stats missing formatted rates:\n%s", out)
	}
}

func TestFormatRate(t *testing.T) {
	if got := FormatRate(154.16666); got != "154.2%" {
		t.Fatalf("FormatRate = %q", got)
	}
	if got := FormatRate(0); got != "0.0%" {
		t.Fatalf("FormatRate(0) = %q", got)
	}
}

func TestSparklineScalesToGoal(t *testing.T) {
	line := Sparkline([]BarData{{Value: 0}, {Value: 4}, {Value: 8}}, 8)
	runes := []rune(line)
	if runes[len(runes)-1] != '█' {
		t.Fatalf("goal-level point should be a full block, got %q", line)
	}
	if runes[0] != ' ' {
		t.Fatalf("zero point should be blank, got %q", line)
	}
}

func TestHistoryChartRowsPerDay(t *testing.T) {
	out := HistoryChart([]BarData{{Label: "Feb 08", Value: 2}, {Label: "Feb 09", Value: 10}}, 8, 20, "#ef4444", LightTheme)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "┊") {
		t.Fatalf("short bar should show the goal marker:\n%s", lines[0])
	}
	if !strings.HasSuffix(lines[1], " 10") {
		t.Fatalf("row should end with the value:\n%s", lines[1])
	}
}

func TestSliderBounds(t *testing.T) {
	if Slider(1, 0, 10, LightTheme) != "" {
		t.Fatal("zero-range slider should render nothing")
	}
	out := Slider(16, 16, 10, LightTheme)
	if !strings.HasPrefix(out, "0 ─────────") || !strings.HasSuffix(out, " 16") {
		t.Fatalf("unexpected full slider: %q", out)
	}
}

func TestThemeByName(t *testing.T) {
	if ThemeByName("DARK").Name != "dark" || ThemeByName("sepia").Name != "light" {
		t.Fatal("unexpected theme lookup")
	}
}

func TestRenderAppIncludesToastAndTabs(t *testing.T) {
	out := RenderApp(AppData{
		Theme:        DarkTheme,
		Header:       "habitd",
		Tabs:         []string{"Dashboard", "My Habits", "Statistics"},
		ActiveTab:    1,
		LeftPane:     "left",
		StatusLine:   "ready",
		Notification: "Added new habit: Floss",
	})
	for _, want := range []string{"habitd", "My Habits", "Added new habit: Floss", "left"} {
		if !strings.Contains(out, want) {
			t.Fatalf("app view missing %q:\n%s", want, out)
		}
	}
}
