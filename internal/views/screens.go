package views

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type BarData struct {
	Label string
	Value float64
}

type HabitCardData struct {
	ID       string
	Name     string
	Icon     string
	Color    string
	Goal     float64
	Progress float64
	Unit     string
	Streak   int
	// BarView is the pre-rendered progress bar for today's value.
	BarView string
	History []BarData
}

type DashboardPanelData struct {
	Theme  Theme
	Habits []HabitCardData
}

type HabitsPanelData struct {
	Theme    Theme
	Habits   []HabitCardData
	Cursor   int
	SliderAt float64
}

type StatRowData struct {
	Name  string
	Icon  string
	Color string
	// Rate is already clamped for display.
	Rate  float64
	Share float64
}

type StatsPanelData struct {
	Theme Theme
	Rows  []StatRowData
}

type HelpPanelData struct {
	CurrentTab string
	Bindings   []string
	HelpView   string
	Markdown   string
}

const sparkRunes = "▁▂▃▄▅▆▇█"

func RenderDashboardPanel(data DashboardPanelData) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(data.Theme.Text)
	muted := lipgloss.NewStyle().Foreground(data.Theme.Muted)

	var b strings.Builder
	b.WriteString(title.Render("Today's Progress") + "\n")
	if len(data.Habits) == 0 {
		b.WriteString(muted.Render("(no habits yet, press a to add one)"))
		return b.String()
	}
	for _, h := range data.Habits {
		b.WriteString(fmt.Sprintf("%s %-16s %s/%s %s\n", h.Icon, truncate(h.Name, 16), FormatNumber(h.Progress), FormatNumber(h.Goal), h.Unit))
		if h.BarView != "" {
			b.WriteString("   " + h.BarView + "\n")
		}
	}

	b.WriteString("\n" + title.Render("Weekly Overview") + "\n")
	if labels := weekLabels(data.Habits); labels != "" {
		b.WriteString(muted.Render(fmt.Sprintf("%-19s %s", "", labels)) + "\n")
	}
	for _, h := range data.Habits {
		line := lipgloss.NewStyle().Foreground(lipgloss.Color(h.Color)).Render(Sparkline(h.History, h.Goal))
		b.WriteString(fmt.Sprintf("%s %-16s %s\n", h.Icon, truncate(h.Name, 16), line))
	}

	b.WriteString("\n" + title.Render("Current Streaks") + "\n")
	for _, h := range data.Habits {
		streak := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(h.Color)).Render(strconv.Itoa(h.Streak))
		b.WriteString(fmt.Sprintf("%s %-16s %s %s\n", h.Icon, truncate(h.Name, 16), streak, pluralDays(h.Streak)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderHabitsPanel(data HabitsPanelData) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(data.Theme.Text)
	muted := lipgloss.NewStyle().Foreground(data.Theme.Muted)
	selected := lipgloss.NewStyle().Bold(true).Foreground(data.Theme.Accent)

	var b strings.Builder
	b.WriteString(title.Render("My Habits") + "\n")
	if len(data.Habits) == 0 {
		b.WriteString(muted.Render("(no habits yet, press a to add one)"))
		return b.String()
	}
	for i, h := range data.Habits {
		cursor := " "
		line := fmt.Sprintf("%s %s  🔥 %d", h.Icon, h.Name, h.Streak)
		if i == data.Cursor {
			cursor = ">"
			line = selected.Render(line)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", cursor, line))
	}

	if data.Cursor < 0 || data.Cursor >= len(data.Habits) {
		return strings.TrimRight(b.String(), "\n")
	}
	h := data.Habits[data.Cursor]
	b.WriteString("\n" + title.Render(fmt.Sprintf("%s %s", h.Icon, h.Name)) + "\n")
	b.WriteString(muted.Render(fmt.Sprintf("Goal: %s %s per day", FormatNumber(h.Goal), h.Unit)) + "\n")
	b.WriteString(HistoryChart(h.History, h.Goal, 28, h.Color, data.Theme) + "\n")
	b.WriteString(fmt.Sprintf("Today's progress: %s / %s %s\n", FormatNumber(data.SliderAt), FormatNumber(h.Goal), h.Unit))
	b.WriteString(Slider(data.SliderAt, 2*h.Goal, 28, data.Theme))
	return b.String()
}

func RenderStatsPanel(data StatsPanelData) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(data.Theme.Text)
	muted := lipgloss.NewStyle().Foreground(data.Theme.Muted)

	var b strings.Builder
	b.WriteString(title.Render("Overall Completion Rate") + "\n")
	if len(data.Rows) == 0 {
		b.WriteString(muted.Render("(no habits to summarize)"))
		return b.String()
	}
	for _, row := range data.Rows {
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(row.Color)).Render(blockBar(row.Rate/100, 20))
		b.WriteString(fmt.Sprintf("%s %-16s %s %s", row.Icon, truncate(row.Name, 16), bar, FormatRate(row.Rate)))
		b.WriteString(muted.Render(fmt.Sprintf("  share %.0f%%", row.Share)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderAddModal shows the add-habit dialog while it is open.
func RenderAddModal(active bool, inputView string, th Theme) string {
	if !active {
		return ""
	}
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(th.Accent).Padding(0, 1)
	return box.Render("Add New Habit\n" + inputView + "\n[enter] add  [esc] cancel")
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", inputView)
}

func RenderHelpPanel(data HelpPanelData) string {
	out := fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentTab),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
	if data.Markdown != "" {
		out += "\n\n" + data.Markdown
	}
	return out
}

// FormatRate renders a completion percentage with one decimal.
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}

func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Sparkline scales points against the larger of their max and goal.
func Sparkline(points []BarData, goal float64) string {
	runes := []rune(sparkRunes)
	top := goal
	for _, p := range points {
		top = math.Max(top, p.Value)
	}
	var b strings.Builder
	for _, p := range points {
		if top <= 0 || p.Value <= 0 {
			b.WriteRune(' ')
			b.WriteRune(' ')
			continue
		}
		idx := int(math.Round(p.Value / top * float64(len(runes)-1)))
		if idx >= len(runes) {
			idx = len(runes) - 1
		}
		b.WriteRune(runes[idx])
		b.WriteRune(' ')
	}
	return strings.TrimRight(b.String(), " ")
}

// HistoryChart draws one horizontal bar per day with a goal marker column.
func HistoryChart(points []BarData, goal float64, width int, color string, th Theme) string {
	if len(points) == 0 {
		return ""
	}
	top := goal
	for _, p := range points {
		top = math.Max(top, p.Value)
	}
	if top <= 0 {
		top = 1
	}
	goalCol := int(math.Round(goal / top * float64(width)))
	if goalCol >= width {
		goalCol = width - 1
	}
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	goalStyle := lipgloss.NewStyle().Foreground(th.Danger)

	var b strings.Builder
	for _, p := range points {
		filled := int(math.Round(p.Value / top * float64(width)))
		if filled > width {
			filled = width
		}
		var row strings.Builder
		for col := 0; col < width; col++ {
			switch {
			case col == goalCol && col >= filled:
				row.WriteString(goalStyle.Render("┊"))
			case col < filled:
				row.WriteString(barStyle.Render("█"))
			default:
				row.WriteString(" ")
			}
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", p.Label, row.String(), FormatNumber(p.Value)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Slider renders value on a 0..limit track.
func Slider(value, limit float64, width int, th Theme) string {
	if limit <= 0 || width <= 0 {
		return ""
	}
	pos := int(math.Round(value / limit * float64(width-1)))
	if pos < 0 {
		pos = 0
	}
	if pos > width-1 {
		pos = width - 1
	}
	knob := lipgloss.NewStyle().Bold(true).Foreground(th.Accent).Render("●")
	return fmt.Sprintf("0 %s%s%s %s", strings.Repeat("─", pos), knob, strings.Repeat("─", width-1-pos), FormatNumber(limit))
}

func blockBar(fraction float64, width int) string {
	if fraction < 0 || math.IsNaN(fraction) {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(math.Round(fraction * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func weekLabels(habits []HabitCardData) string {
	for _, h := range habits {
		if len(h.History) == 0 {
			continue
		}
		parts := make([]string, 0, len(h.History))
		for _, p := range h.History {
			// Day of month only; the sparkline uses two columns per point.
			label := p.Label
			if i := strings.LastIndex(label, " "); i >= 0 {
				label = label[i+1:]
			}
			parts = append(parts, label)
		}
		return strings.Join(parts, "")
	}
	return ""
}

func pluralDays(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
