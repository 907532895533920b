package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/habitd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

const paletteHelp = `### Commands

- ` + "`/add <name>`" + ` add a habit
- ` + "`/progress <habit> <value>`" + ` set today's progress
- ` + "`/delete <habit>`" + ` remove a habit
- ` + "`/show dashboard|habits|stats`" + ` switch tab
- ` + "`/theme light|dark`" + ` change theme

` + "`<habit>`" + ` is a list position (1, 2, ...) or a habit id.`

func (m Model) renderHelpIfVisible(th views.Theme) string {
	if !m.HelpVisible {
		return ""
	}
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.tabBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentTab: m.CurrentTab.String(),
		Bindings:   plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
		Markdown: views.RenderMarkdown(paletteHelp, th),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Dashboard, Action: "switch to Dashboard"},
		{Key: m.Keys.Habits, Action: "switch to My Habits"},
		{Key: m.Keys.Stats, Action: "switch to Statistics"},
		{Key: m.Keys.Add, Action: "add habit"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Theme, Action: "toggle light/dark"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) tabBindings() []KeyBinding {
	switch m.CurrentTab {
	case TabHabits:
		return []KeyBinding{
			{Key: "j/k", Action: "select habit"},
			{Key: "h/l", Action: "adjust today's progress"},
			{Key: m.Keys.Delete, Action: "delete selected habit"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.tabBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.tabBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
