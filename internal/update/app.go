package update

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/habitd/internal/config"
	"github.com/sandeepkv93/habitd/internal/history"
	"github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/views"
	"go.uber.org/zap"
)

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.AddOpen {
			return m.handleAddKey(typed), nil
		}
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed), nil
		}
		return m.handleKey(typed)
	case StateChangedMsg:
		m.refresh()
		return m, nil
	case SwitchTabMsg:
		if isKnownTab(typed.Tab) {
			m.CurrentTab = typed.Tab
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.logger.Error("Shell error", zap.Error(typed.Err))
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Dashboard:
		m.CurrentTab = TabDashboard
	case m.Keys.Habits:
		m.CurrentTab = TabHabits
	case m.Keys.Stats:
		m.CurrentTab = TabStatistics
	case "tab":
		m.CurrentTab = (m.CurrentTab + 1) % Tab(len(tabTitles))
	case "shift+tab":
		m.CurrentTab = (m.CurrentTab + Tab(len(tabTitles)) - 1) % Tab(len(tabTitles))
	case m.Keys.Add:
		m.AddOpen = true
		m.addInput.SetValue("")
		m.addInput.Focus()
		m.Status = StatusBar{Text: "add habit"}
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
	case m.Keys.Theme:
		next := config.ThemeDark
		if m.Theme == config.ThemeDark {
			next = config.ThemeLight
		}
		m.setTheme(next)
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "l", "right":
		if m.CurrentTab == TabHabits {
			m.nudgeSlider(SliderStep)
		}
	case "h", "left":
		if m.CurrentTab == TabHabits {
			m.nudgeSlider(-SliderStep)
		}
	case m.Keys.Delete, "x":
		if m.CurrentTab == TabHabits {
			m.deleteSelected()
		}
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.AddOpen = false
		m.addInput.SetValue("")
		m.addInput.Blur()
		m.Status = StatusBar{Text: "add cancelled"}
	case "enter":
		h, err := m.backend.AddHabit(m.addInput.Value())
		m.refresh()
		if err != nil {
			// the store already raised the prompt; keep the dialog open
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		m.AddOpen = false
		m.addInput.SetValue("")
		m.addInput.Blur()
		m.selectHabit(h.ID)
		m.Status = StatusBar{Text: fmt.Sprintf("added %s", h.Name)}
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.addInput.SetValue(m.addInput.Value() + string(msg.Runes))
			return m
		}
		m.addInput, _ = m.addInput.Update(msg)
	}
	return m
}

// refresh re-reads the store into the view state.
func (m *Model) refresh() {
	if m.backend == nil {
		return
	}
	m.Habits = m.backend.List()
	m.Stats = m.backend.Stats()
	m.Notification = m.backend.CurrentNotification()
	if m.Cursor >= len(m.Habits) {
		m.Cursor = len(m.Habits) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.syncSlider()
}

func (m *Model) syncSlider() {
	if h, ok := m.selected(); ok {
		m.SliderAt = h.Progress
		return
	}
	m.SliderAt = 0
}

func (m Model) selected() (model.Habit, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Habits) {
		return model.Habit{}, false
	}
	return m.Habits[m.Cursor], true
}

func (m *Model) selectHabit(id string) {
	for i, h := range m.Habits {
		if h.ID == id {
			m.Cursor = i
			m.syncSlider()
			return
		}
	}
}

func (m *Model) moveCursor(delta int) {
	if len(m.Habits) == 0 {
		return
	}
	m.Cursor += delta
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor >= len(m.Habits) {
		m.Cursor = len(m.Habits) - 1
	}
	m.syncSlider()
}

// nudgeSlider moves the slider within 0..2×goal and commits the value.
func (m *Model) nudgeSlider(delta float64) {
	h, ok := m.selected()
	if !ok {
		return
	}
	next := math.Round((m.SliderAt+delta)/SliderStep) * SliderStep
	next = math.Max(0, math.Min(next, 2*h.Goal))
	if next == h.Progress {
		return
	}
	m.backend.UpdateProgress(h.ID, next)
	m.refresh()
}

func (m *Model) deleteSelected() {
	h, ok := m.selected()
	if !ok {
		return
	}
	if m.backend.DeleteHabit(h.ID) {
		m.Status = StatusBar{Text: fmt.Sprintf("deleted %s", h.Name)}
	}
	m.refresh()
}

func (m *Model) setTheme(theme string) {
	m.Theme = theme
	m.Status = StatusBar{Text: fmt.Sprintf("theme: %s", theme)}
	if m.saveTheme == nil {
		return
	}
	if err := m.saveTheme(theme); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("save theme: %v", err), IsError: true}
		m.logger.Warn("Failed to persist theme", zap.String("theme", theme), zap.Error(err))
		return
	}
	if m.backend != nil {
		m.backend.Notify(MsgSettingsSaved)
		m.Notification = m.backend.CurrentNotification()
	}
}

func (m Model) View() string {
	th := views.ThemeByName(m.Theme)
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	switch m.CurrentTab {
	case TabDashboard:
		leftPane = views.RenderDashboardPanel(views.DashboardPanelData{Theme: th, Habits: m.cards(true)})
	case TabHabits:
		leftPane = views.RenderHabitsPanel(views.HabitsPanelData{Theme: th, Habits: m.cards(false), Cursor: m.Cursor, SliderAt: m.SliderAt})
	case TabStatistics:
		leftPane = views.RenderStatsPanel(views.StatsPanelData{Theme: th, Rows: statRows(m.Stats, m.Habits)})
	}

	rightPane := strings.TrimSpace(strings.Join([]string{
		views.RenderAddModal(m.AddOpen, m.addInput.View(), th),
		views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()),
		m.renderHelpIfVisible(th),
	}, "\n"))

	return views.RenderApp(views.AppData{
		Theme:        th,
		Header:       fmt.Sprintf("habitd | %s | habits: %d | theme: %s", m.CurrentTab, len(m.Habits), m.Theme),
		Tabs:         tabTitles,
		ActiveTab:    int(m.CurrentTab),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: m.Notification,
		Footer: fmt.Sprintf("keys: %s dash | %s habits | %s stats | %s add | / cmd | %s theme | %s help | %s quit",
			m.Keys.Dashboard, m.Keys.Habits, m.Keys.Stats, m.Keys.Add, m.Keys.Theme, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) cards(withBars bool) []views.HabitCardData {
	out := make([]views.HabitCardData, 0, len(m.Habits))
	for _, h := range m.Habits {
		card := views.HabitCardData{
			ID:       h.ID,
			Name:     h.Name,
			Icon:     h.Icon,
			Color:    h.Color,
			Goal:     h.Goal,
			Progress: h.Progress,
			Unit:     h.Unit,
			Streak:   h.Streak,
			History:  make([]views.BarData, 0, len(h.History)),
		}
		for _, p := range h.History {
			card.History = append(card.History, views.BarData{Label: p.Label(), Value: p.Value})
		}
		if withBars {
			bar := progress.New(progress.WithSolidFill(h.Color), progress.WithWidth(m.barWidth), progress.WithoutPercentage())
			card.BarView = bar.ViewAs(todayFraction(h))
		}
		out = append(out, card)
	}
	return out
}

// todayFraction is the progress-bar fill, capped at a full bar.
func todayFraction(h model.Habit) float64 {
	if h.Goal <= 0 {
		return 0
	}
	return math.Min(1, h.Progress/h.Goal)
}

// statRows pairs display rates with each habit's share of the summed rates.
func statRows(stats []history.Completion, habits []model.Habit) []views.StatRowData {
	icons := make(map[string]string, len(habits))
	for _, h := range habits {
		icons[h.ID] = h.Icon
	}
	total := 0.0
	for _, s := range stats {
		total += math.Max(0, s.Rate)
	}
	out := make([]views.StatRowData, 0, len(stats))
	for _, s := range stats {
		share := 0.0
		if total > 0 {
			share = math.Max(0, s.Rate) / total * 100
		}
		out = append(out, views.StatRowData{
			Name:  s.Name,
			Icon:  icons[s.HabitID],
			Color: s.Color,
			Rate:  history.DisplayRate(s.Rate),
			Share: share,
		})
	}
	return out
}

func isKnownTab(t Tab) bool {
	return t >= TabDashboard && t <= TabStatistics
}
