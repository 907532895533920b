package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/habitd/internal/config"
	"github.com/sandeepkv93/habitd/internal/storage"
	"github.com/sandeepkv93/habitd/internal/store"
	"go.uber.org/zap"
)

var now = time.Date(2026, 2, 9, 9, 0, 0, 0, time.Local)

func openRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "habitd.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestLoadInitialHabitsSeedsDemo(t *testing.T) {
	repo := openRepo(t)
	cfg := config.Default()

	habits, seeded, err := loadInitialHabits(context.Background(), repo, cfg, newRand(7, now), now)
	if err != nil {
		t.Fatalf("load initial habits: %v", err)
	}
	if !seeded || len(habits) != 4 || habits[0].Name != "Water intake" {
		t.Fatalf("expected demo habits, seeded=%v habits=%d", seeded, len(habits))
	}
	if len(habits[0].History) != cfg.HistoryDays {
		t.Fatalf("expected %d history points, got %d", cfg.HistoryDays, len(habits[0].History))
	}
}

func TestLoadInitialHabitsPrefersStored(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	cfg := config.Default()

	demo, _, err := loadInitialHabits(ctx, repo, cfg, newRand(7, now), now)
	if err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	if err := repo.SaveHabits(ctx, demo[:2]); err != nil {
		t.Fatalf("save habits: %v", err)
	}

	habits, seeded, err := loadInitialHabits(ctx, repo, cfg, newRand(7, now), now)
	if err != nil {
		t.Fatalf("load stored habits: %v", err)
	}
	if seeded || len(habits) != 2 {
		t.Fatalf("expected stored habits, seeded=%v habits=%d", seeded, len(habits))
	}
}

func TestLoadInitialHabitsFromFixtureAndEmpty(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "habits.yaml")
	if err := os.WriteFile(path, []byte("habits:\n  - id: read\n    name: Reading\n    goal: 20\n    unit: pages\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg := config.Default()
	cfg.FixtureFile = path
	habits, seeded, err := loadInitialHabits(ctx, repo, cfg, newRand(1, now), now)
	if err != nil {
		t.Fatalf("load fixture habits: %v", err)
	}
	if !seeded || len(habits) != 1 || habits[0].ID != "read" {
		t.Fatalf("unexpected fixture habits: %+v", habits)
	}

	cfg = config.Default()
	cfg.Demo = false
	habits, seeded, err = loadInitialHabits(ctx, repo, cfg, newRand(1, now), now)
	if err != nil {
		t.Fatalf("load without demo: %v", err)
	}
	if seeded || len(habits) != 0 {
		t.Fatalf("expected empty start, seeded=%v habits=%d", seeded, len(habits))
	}
}

func TestPersistOnChangeWritesSnapshot(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	st, err := store.New(store.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer st.Close()
	defer st.Subscribe(persistOnChange(ctx, repo, zap.NewNop()))()

	h, err := st.AddHabit("Floss")
	if err != nil {
		t.Fatalf("add habit: %v", err)
	}
	st.UpdateProgress(h.ID, 1)
	if _, err := st.AddHabit("  "); err == nil {
		t.Fatal("expected blank name rejection")
	}

	stored, err := repo.ListHabits(ctx)
	if err != nil {
		t.Fatalf("list stored: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != h.ID || stored[0].Progress != 1 || stored[0].Streak != 1 {
		t.Fatalf("unexpected persisted habits: %+v", stored)
	}

	st.DeleteHabit(h.ID)
	stored, err = repo.ListHabits(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected delete persisted, got %+v", stored)
	}
}

func TestResolveTheme(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	logger := zap.NewNop()

	if got := resolveTheme(ctx, repo, config.ThemeLight, false, logger); got != config.ThemeLight {
		t.Fatalf("missing setting should fall back, got %q", got)
	}
	if err := repo.SetSetting(ctx, storage.SettingTheme, config.ThemeDark); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if got := resolveTheme(ctx, repo, config.ThemeLight, false, logger); got != config.ThemeDark {
		t.Fatalf("stored theme should win, got %q", got)
	}
	if got := resolveTheme(ctx, repo, config.ThemeLight, true, logger); got != config.ThemeLight {
		t.Fatalf("explicit theme should win, got %q", got)
	}
}

func TestApplyFlagsOnlyOverridesChanged(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Parse([]string{"--db", "other.db", "--theme", "Dark", "--seed", "9"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg := config.Default()
	cfg.HistoryDays = 10
	flags := config.Default()
	flags.DBPath = "other.db"
	flags.Theme = "Dark"
	flags.Seed = 9
	applyFlags(cmd, &cfg, flags)

	if cfg.DBPath != "other.db" || cfg.Theme != config.ThemeDark || cfg.Seed != 9 {
		t.Fatalf("changed flags not applied: %+v", cfg)
	}
	if cfg.HistoryDays != 10 {
		t.Fatalf("unchanged flag overrode env value: %+v", cfg)
	}
}

func TestNewRandIsDeterministicForSeed(t *testing.T) {
	a := newRand(42, now).IntN(1 << 30)
	b := newRand(42, now.Add(time.Hour)).IntN(1 << 30)
	if a != b {
		t.Fatalf("same seed should give the same sequence: %d vs %d", a, b)
	}
}

func TestPersistOnChangeWritesOneHabitAtATime(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	demo, _, err := loadInitialHabits(ctx, repo, config.Default(), newRand(3, now), now)
	if err != nil {
		t.Fatalf("build demo: %v", err)
	}
	if err := repo.SaveHabits(ctx, demo); err != nil {
		t.Fatalf("save demo: %v", err)
	}
	st, err := store.New(store.WithHabits(demo), store.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer st.Close()
	defer st.Subscribe(persistOnChange(ctx, repo, zap.NewNop()))()

	st.UpdateProgress(demo[1].ID, 8)
	st.DeleteHabit(demo[0].ID)
	added, err := st.AddHabit("Floss")
	if err != nil {
		t.Fatalf("add habit: %v", err)
	}

	stored, err := repo.ListHabits(ctx)
	if err != nil {
		t.Fatalf("list stored: %v", err)
	}
	want := st.List()
	if len(stored) != len(want) {
		t.Fatalf("expected %d stored habits, got %d", len(want), len(stored))
	}
	for i := range want {
		if stored[i].ID != want[i].ID || stored[i].Progress != want[i].Progress || stored[i].Streak != want[i].Streak {
			t.Fatalf("stored habit %d = %+v, want %+v", i, stored[i], want[i])
		}
	}
	if stored[0].ID != demo[1].ID || stored[0].Streak != demo[1].Streak+1 {
		t.Fatalf("updated habit not persisted: %+v", stored[0])
	}
	if stored[len(stored)-1].ID != added.ID {
		t.Fatalf("added habit should be last, got %+v", stored[len(stored)-1])
	}
}

func TestPersistOnChangeRewritesWhenOutOfSync(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	st, err := store.New(store.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer st.Close()
	keep, err := st.AddHabit("Read")
	if err != nil {
		t.Fatalf("add read: %v", err)
	}
	gone, err := st.AddHabit("Walk")
	if err != nil {
		t.Fatalf("add walk: %v", err)
	}

	// Neither habit was persisted, so the delete misses and the whole
	// snapshot is written instead.
	defer st.Subscribe(persistOnChange(ctx, repo, zap.NewNop()))()
	st.DeleteHabit(gone.ID)

	stored, err := repo.ListHabits(ctx)
	if err != nil {
		t.Fatalf("list stored: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != keep.ID {
		t.Fatalf("expected snapshot rewrite, got %+v", stored)
	}
}
