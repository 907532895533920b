package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/habitd/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	// SaveHabits replaces the stored collection with habits, keeping their order.
	SaveHabits(ctx context.Context, habits []model.Habit) error
	// SaveHabit writes a single habit without touching the others.
	SaveHabit(ctx context.Context, h model.Habit) error
	ListHabits(ctx context.Context) ([]model.Habit, error)
	DeleteHabit(ctx context.Context, id string) error

	GetSetting(ctx context.Context, key string) (Setting, error)
	SetSetting(ctx context.Context, key, value string) error
}
