package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sandeepkv93/habitd/internal/model"
	"go.uber.org/zap"
)

const sqliteTimeLayout = time.RFC3339Nano

var _ Repository = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

type RepositoryOption func(*SQLiteRepository)

func WithLogger(logger *zap.Logger) RepositoryOption {
	return func(r *SQLiteRepository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithClock(now func() time.Time) RepositoryOption {
	return func(r *SQLiteRepository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewSQLiteRepository(db *sql.DB, opts ...RepositoryOption) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	r := &SQLiteRepository{db: db, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// OpenSQLite opens path, applies pending migrations and wraps the handle.
func OpenSQLite(path string, opts ...RepositoryOption) (*SQLiteRepository, error) {
	// foreign_keys is per connection; the DSN flag covers pooled connections too.
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveHabits(ctx context.Context, habits []model.Habit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM habit_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM habits`); err != nil {
		return fmt.Errorf("clear habits: %w", err)
	}
	updated := mustTime(r.now())
	for i, h := range habits {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO habits (id, position, name, icon, goal, unit, progress, streak, color, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			h.ID, i, h.Name, h.Icon, h.Goal, h.Unit, h.Progress, h.Streak, h.Color, updated,
		); err != nil {
			return fmt.Errorf("insert habit %q: %w", h.ID, err)
		}
		if err := insertHistory(ctx, tx, h); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	r.logger.Debug("Saved habits", zap.Int("count", len(habits)))
	return nil
}

// SaveHabit upserts one habit and replaces its history. A new habit is
// placed after every stored one; an existing habit keeps its position.
func (r *SQLiteRepository) SaveHabit(ctx context.Context, h model.Habit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save %q: %w", h.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO habits (id, position, name, icon, goal, unit, progress, streak, color, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM habits), ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			goal = excluded.goal,
			unit = excluded.unit,
			progress = excluded.progress,
			streak = excluded.streak,
			color = excluded.color,
			updated_at = excluded.updated_at`,
		h.ID, h.Name, h.Icon, h.Goal, h.Unit, h.Progress, h.Streak, h.Color, mustTime(r.now()),
	); err != nil {
		return fmt.Errorf("upsert habit %q: %w", h.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM habit_history WHERE habit_id = ?`, h.ID); err != nil {
		return fmt.Errorf("clear history for %q: %w", h.ID, err)
	}
	if err := insertHistory(ctx, tx, h); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save %q: %w", h.ID, err)
	}
	r.logger.Debug("Saved habit", zap.String("id", h.ID), zap.Int("history", len(h.History)))
	return nil
}

func (r *SQLiteRepository) ListHabits(ctx context.Context) ([]model.Habit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, icon, goal, unit, progress, streak, color
		FROM habits ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	out := make([]model.Habit, 0)
	for rows.Next() {
		h, scanErr := scanHabit(rows)
		if scanErr != nil {
			_ = rows.Close()
			return nil, scanErr
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for i := range out {
		points, histErr := r.loadHistory(ctx, out[i].ID)
		if histErr != nil {
			return nil, histErr
		}
		out[i].History = points
	}
	return out, nil
}

// DeleteHabit removes id and, through the foreign key, its history.
func (r *SQLiteRepository) DeleteHabit(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (Setting, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM settings WHERE key = ?`, key)
	var out Setting
	var updated string
	if err := row.Scan(&out.Key, &out.Value, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Setting{}, ErrNotFound
		}
		return Setting{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Setting{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, mustTime(r.now()),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	r.logger.Debug("Saved setting", zap.String("key", key), zap.String("value", value))
	return nil
}

func (r *SQLiteRepository) loadHistory(ctx context.Context, habitID string) ([]model.HistoryPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day, value FROM habit_history WHERE habit_id = ? ORDER BY day ASC`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HistoryPoint
	for rows.Next() {
		var day string
		var value float64
		if err := rows.Scan(&day, &value); err != nil {
			return nil, err
		}
		date, err := time.ParseInLocation(HistoryDayLayout, day, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse history day %q: %w", day, err)
		}
		out = append(out, model.HistoryPoint{Date: date, Value: value})
	}
	return out, rows.Err()
}

func insertHistory(ctx context.Context, tx *sql.Tx, h model.Habit) error {
	for _, p := range h.History {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO habit_history (habit_id, day, value) VALUES (?, ?, ?)
			ON CONFLICT(habit_id, day) DO UPDATE SET value = excluded.value`,
			h.ID, model.Day(p.Date).Format(HistoryDayLayout), p.Value,
		); err != nil {
			return fmt.Errorf("insert history for %q: %w", h.ID, err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(s scanner) (model.Habit, error) {
	var out model.Habit
	if err := s.Scan(&out.ID, &out.Name, &out.Icon, &out.Goal, &out.Unit, &out.Progress, &out.Streak, &out.Color); err != nil {
		return model.Habit{}, err
	}
	return out, nil
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
