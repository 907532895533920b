package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Name    string
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Success lipgloss.Color
	Danger  lipgloss.Color
	Toast   lipgloss.Color
}

var (
	LightTheme = Theme{
		Name:    "light",
		Accent:  lipgloss.Color("#4f46e5"),
		Text:    lipgloss.Color("#1f2937"),
		Muted:   lipgloss.Color("#6b7280"),
		Border:  lipgloss.Color("#d1d5db"),
		Success: lipgloss.Color("#16a34a"),
		Danger:  lipgloss.Color("#dc2626"),
		Toast:   lipgloss.Color("#ffffff"),
	}
	DarkTheme = Theme{
		Name:    "dark",
		Accent:  lipgloss.Color("#818cf8"),
		Text:    lipgloss.Color("#e5e7eb"),
		Muted:   lipgloss.Color("#9ca3af"),
		Border:  lipgloss.Color("#4b5563"),
		Success: lipgloss.Color("#4ade80"),
		Danger:  lipgloss.Color("#f87171"),
		Toast:   lipgloss.Color("#111827"),
	}
)

// ThemeByName falls back to LightTheme for unknown names.
func ThemeByName(name string) Theme {
	if strings.EqualFold(strings.TrimSpace(name), DarkTheme.Name) {
		return DarkTheme
	}
	return LightTheme
}

type AppData struct {
	Theme        Theme
	Header       string
	Tabs         []string
	ActiveTab    int
	LeftPane     string
	RightPane    string
	StatusLine   string
	Footer       string
	Notification string
}

func RenderApp(data AppData) string {
	th := data.Theme
	if th.Name == "" {
		th = LightTheme
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(th.Accent)
	statusStyle := lipgloss.NewStyle().Foreground(th.Success)
	errorStyle := lipgloss.NewStyle().Foreground(th.Danger)
	panelStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(th.Border).Padding(0, 1)
	footerStyle := lipgloss.NewStyle().Foreground(th.Muted)

	left := panelStyle.Width(62).Render(data.LeftPane)
	row := left
	if strings.TrimSpace(data.RightPane) != "" {
		right := panelStyle.Width(48).Render(data.RightPane)
		row = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	status := statusStyle.Render(data.StatusLine)
	if strings.Contains(strings.ToLower(data.StatusLine), "error") {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{headerStyle.Render(data.Header)}
	if len(data.Tabs) > 0 {
		lines = append(lines, RenderTabs(th, data.Tabs, data.ActiveTab))
	}
	lines = append(lines, row, status)
	if data.Notification != "" {
		lines = append(lines, RenderToast(th, data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderTabs(th Theme, tabs []string, active int) string {
	activeStyle := lipgloss.NewStyle().Bold(true).Padding(0, 2).Background(th.Accent).Foreground(th.Toast)
	idleStyle := lipgloss.NewStyle().Padding(0, 2).Foreground(th.Muted)
	rendered := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		if i == active {
			rendered = append(rendered, activeStyle.Render(tab))
			continue
		}
		rendered = append(rendered, idleStyle.Render(tab))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// RenderToast draws the single notification slot.
func RenderToast(th Theme, msg string) string {
	if strings.TrimSpace(msg) == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Background(th.Accent).
		Foreground(th.Toast).
		Padding(0, 2).
		Render(msg)
}

func RenderMarkdown(md string, th Theme) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	style := "light"
	if th.Name == DarkTheme.Name {
		style = "dark"
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
