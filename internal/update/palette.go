package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/habitd/internal/commands"
	"go.uber.org/zap"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		m.commandInput, _ = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.logger.Debug("Palette command", zap.String("input", raw))

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.closePalette()
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			h, addErr := m.backend.AddHabit(a.Name)
			if addErr != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: addErr.Error()}
			}
			m.refresh()
			m.selectHabit(h.ID)
			return commands.Result{Message: fmt.Sprintf("added %s", h.Name)}, nil
		},
		Progress: func(p commands.ProgressArgs) (commands.Result, error) {
			id, ok := p.Target.Resolve(m.habitIDs())
			if !ok || !m.backend.UpdateProgress(id, p.Value) {
				return commands.Result{}, unknownHabit(p.Target)
			}
			return commands.Result{Message: fmt.Sprintf("progress set for %s", id)}, nil
		},
		Delete: func(d commands.DeleteArgs) (commands.Result, error) {
			id, ok := d.Target.Resolve(m.habitIDs())
			if !ok || !m.backend.DeleteHabit(id) {
				return commands.Result{}, unknownHabit(d.Target)
			}
			return commands.Result{Message: fmt.Sprintf("deleted %s", id)}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			switch s.Tab {
			case commands.TabHabits:
				m.CurrentTab = TabHabits
			case commands.TabStatistics:
				m.CurrentTab = TabStatistics
			default:
				m.CurrentTab = TabDashboard
			}
			return commands.Result{Message: fmt.Sprintf("show %s", s.Tab)}, nil
		},
		Theme: func(t commands.ThemeArgs) (commands.Result, error) {
			m.setTheme(t.Theme)
			if m.Status.IsError {
				return commands.Result{}, m.LastError
			}
			return commands.Result{Message: fmt.Sprintf("theme: %s", t.Theme)}, nil
		},
	})
	m.refresh()
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else {
		m.Status = StatusBar{Text: res.Message}
	}
	m.closePalette()
	return m
}

func (m Model) habitIDs() []string {
	ids := make([]string, 0, len(m.Habits))
	for _, h := range m.Habits {
		ids = append(ids, h.ID)
	}
	return ids
}

func unknownHabit(ref commands.HabitRef) error {
	return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown habit: %s", ref)}
}
