package storage

import "time"

// Setting keys understood by the shell.
const (
	SettingTheme = "theme"
)

// HistoryDayLayout is the on-disk form of a history point's calendar day.
const HistoryDayLayout = "2006-01-02"

type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
