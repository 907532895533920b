package commands

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeProgress Type = "progress"
	TypeDelete   Type = "delete"
	TypeShow     Type = "show"
	TypeTheme    Type = "theme"
)

// Tab names accepted by show.
const (
	TabDashboard  = "dashboard"
	TabHabits     = "habits"
	TabStatistics = "statistics"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs may carry an empty name; the store owns the empty-name prompt.
type AddArgs struct {
	Name string
}

// HabitRef is either a 1-based position in the list or a habit id.
type HabitRef string

type ProgressArgs struct {
	Target HabitRef
	Value  float64
}

type DeleteArgs struct {
	Target HabitRef
}

type ShowArgs struct {
	Tab string
}

type ThemeArgs struct {
	Theme string
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Progress *ProgressArgs
	Delete   *DeleteArgs
	Show     *ShowArgs
	Theme    *ThemeArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeProgress, "set":
		return parseProgress(input, args)
	case TypeDelete, "rm":
		return parseDelete(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeTheme:
		return parseTheme(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Name: strings.TrimSpace(strings.Join(args, " "))}}, nil
}

func parseProgress(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "progress requires a habit and a value"}
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid progress value: %s", args[1])}
	}
	return Command{Type: TypeProgress, Raw: raw, Progress: &ProgressArgs{Target: HabitRef(args[0]), Value: v}}, nil
}

func parseDelete(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "delete requires a habit"}
	}
	return Command{Type: TypeDelete, Raw: raw, Delete: &DeleteArgs{Target: HabitRef(args[0])}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a tab"}
	}
	var tab string
	switch strings.ToLower(args[0]) {
	case TabDashboard, "home", "1":
		tab = TabDashboard
	case TabHabits, "2":
		tab = TabHabits
	case TabStatistics, "stats", "3":
		tab = TabStatistics
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown tab: %s", args[0])}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Tab: tab}}, nil
}

func parseTheme(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "theme requires light or dark"}
	}
	theme := strings.ToLower(args[0])
	if theme != "light" && theme != "dark" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown theme: %s", args[0])}
	}
	return Command{Type: TypeTheme, Raw: raw, Theme: &ThemeArgs{Theme: theme}}, nil
}

// Resolve maps ref onto a habit id from ids, which must be in display order.
// Exact id matches win over positions.
func (ref HabitRef) Resolve(ids []string) (string, bool) {
	s := strings.TrimSpace(string(ref))
	for _, id := range ids {
		if id == s {
			return id, true
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > len(ids) {
		return "", false
	}
	return ids[n-1], true
}
