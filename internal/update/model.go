package update

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/habitd/internal/config"
	"github.com/sandeepkv93/habitd/internal/history"
	"github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/store"
	"go.uber.org/zap"
)

type Tab int

const (
	TabDashboard Tab = iota
	TabHabits
	TabStatistics
)

var tabTitles = []string{"Dashboard", "My Habits", "Statistics"}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabTitles) {
		return "Unknown"
	}
	return tabTitles[t]
}

// MsgSettingsSaved confirms a persisted settings change.
const MsgSettingsSaved = "Settings saved successfully!"

// SliderStep matches the 0.5 increments of the progress slider.
const SliderStep = 0.5

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Dashboard string
	Habits    string
	Stats     string
	Add       string
	Delete    string
	Theme     string
	Help      string
	Quit      string
}

// Backend is the slice of the habit store the shell drives.
type Backend interface {
	List() []model.Habit
	Stats() []history.Completion
	AddHabit(name string) (model.Habit, error)
	UpdateProgress(id string, value float64) bool
	DeleteHabit(id string) bool
	CurrentNotification() string
	Notify(msg string)
}

var _ Backend = (*store.Store)(nil)

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	CurrentTab   Tab
	Habits       []model.Habit
	Stats        []history.Completion
	Notification string
	Cursor       int
	SliderAt     float64
	AddOpen      bool
	Palette      CommandPaletteState
	HelpVisible  bool
	Theme        string
	Status       StatusBar
	Keys         GlobalKeyMap
	Quitting     bool
	LastError    error

	backend   Backend
	logger    *zap.Logger
	saveTheme func(theme string) error
	barWidth  int
	// Bubble components used for rich TUI controls
	addInput     textinput.Model
	commandInput textinput.Model
	helpModel    help.Model
}

type Option func(*Model)

func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithTheme(theme string) Option {
	return func(m *Model) {
		if t, ok := config.NormalizeTheme(theme); ok {
			m.Theme = t
		}
	}
}

// WithThemeSaver persists the theme whenever the user changes it.
func WithThemeSaver(fn func(theme string) error) Option {
	return func(m *Model) {
		m.saveTheme = fn
	}
}

type SwitchTabMsg struct {
	Tab Tab
}

// StateChangedMsg tells the shell to re-read the store.
type StateChangedMsg struct {
	Kind    store.ChangeKind
	HabitID string
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

func NewModel(backend Backend, opts ...Option) Model {
	m := Model{
		CurrentTab: TabDashboard,
		Theme:      config.ThemeLight,
		Keys: GlobalKeyMap{
			Dashboard: "1",
			Habits:    "2",
			Stats:     "3",
			Add:       "a",
			Delete:    "d",
			Theme:     "t",
			Help:      "?",
			Quit:      "q",
		},
		backend:  backend,
		logger:   zap.NewNop(),
		barWidth: 30,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.initBubbleComponents()
	m.refresh()
	return m
}

func (m *Model) initBubbleComponents() {
	m.addInput = textinput.New()
	m.addInput.Prompt = "name> "
	m.addInput.Placeholder = "e.g. Read a book"
	m.addInput.CharLimit = 64
	m.addInput.Width = 36

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 40

	m.helpModel = help.New()
}

// Bridge forwards store changes into a running program. Changes raised from
// inside Update would block on a synchronous send, so delivery is async.
func Bridge(s *store.Store, send func(tea.Msg)) func() {
	return s.Subscribe(func(ch store.Change) {
		msg := StateChangedMsg{Kind: ch.Kind, HabitID: ch.HabitID}
		go send(msg)
	})
}
