package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/habitd/internal/config"
	"github.com/sandeepkv93/habitd/internal/fixtures"
	"github.com/sandeepkv93/habitd/internal/metrics"
	"github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/notify"
	"github.com/sandeepkv93/habitd/internal/storage"
	"github.com/sandeepkv93/habitd/internal/store"
	"github.com/sandeepkv93/habitd/internal/update"
	"go.uber.org/zap"
)

func run(ctx context.Context, cfg config.RuntimeConfig, themeExplicit bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newFileLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	repo, err := storage.OpenSQLite(cfg.DBPath, storage.WithLogger(logger.Named("storage")))
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	defer repo.Close()

	rng := newRand(cfg.Seed, time.Now())
	habits, seeded, err := loadInitialHabits(ctx, repo, cfg, rng, time.Now())
	if err != nil {
		return err
	}
	if seeded {
		if err := repo.SaveHabits(ctx, habits); err != nil {
			return fmt.Errorf("save seeded habits: %w", err)
		}
	}

	recorder := metrics.NewRecorder(nil)
	st, err := store.New(
		store.WithHabits(habits),
		store.WithLogger(logger.Named("store")),
		store.WithRecorder(recorder),
		store.WithRand(rng),
		store.WithWindow(cfg.HistoryDays),
		store.WithScheduler(notify.NewScheduler(notify.WithTTL(cfg.NotifyTTL))),
	)
	if err != nil {
		return err
	}
	defer st.Close()
	unsubscribePersist := st.Subscribe(persistOnChange(ctx, repo, logger))
	defer unsubscribePersist()

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, recorder, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	theme := resolveTheme(ctx, repo, cfg.Theme, themeExplicit, logger)
	m := update.NewModel(st,
		update.WithLogger(logger.Named("tui")),
		update.WithTheme(theme),
		update.WithThemeSaver(func(theme string) error {
			return repo.SetSetting(ctx, storage.SettingTheme, theme)
		}),
	)

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	unsubscribeUI := update.Bridge(st, program.Send)
	defer unsubscribeUI()

	logger.Info("habitd started",
		zap.String("db", cfg.DBPath),
		zap.Int("habits", len(habits)),
		zap.Int("history_days", cfg.HistoryDays),
		zap.String("theme", theme),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func newFileLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func newRand(seed int64, now time.Time) *rand.Rand {
	if seed == 0 {
		seed = now.UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1))
}

// loadInitialHabits prefers the persisted collection, then a fixture file,
// then the demo set. seeded reports whether the result still needs saving.
func loadInitialHabits(ctx context.Context, repo storage.Repository, cfg config.RuntimeConfig, rng *rand.Rand, now time.Time) ([]model.Habit, bool, error) {
	stored, err := repo.ListHabits(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load habits: %w", err)
	}
	if len(stored) > 0 {
		return stored, false, nil
	}

	var specs []fixtures.HabitSpec
	switch {
	case cfg.FixtureFile != "":
		specs, err = fixtures.Load(cfg.FixtureFile)
		if err != nil {
			return nil, false, err
		}
	case cfg.Demo:
		specs = fixtures.Demo()
	default:
		return nil, false, nil
	}
	habits, err := fixtures.Build(specs, now, cfg.HistoryDays, rng)
	if err != nil {
		return nil, false, err
	}
	return habits, true, nil
}

// persistOnChange mirrors each committed mutation into the repository, one
// habit at a time. A failed incremental write falls back to rewriting the
// whole snapshot.
func persistOnChange(ctx context.Context, repo storage.Repository, logger *zap.Logger) func(store.Change) {
	return func(ch store.Change) {
		var err error
		switch ch.Kind {
		case store.ChangeAdded, store.ChangeUpdated:
			h, ok := ch.Snapshot.Find(ch.HabitID)
			if !ok {
				err = fmt.Errorf("habit %q missing from snapshot", ch.HabitID)
				break
			}
			err = repo.SaveHabit(ctx, h)
		case store.ChangeDeleted:
			err = repo.DeleteHabit(ctx, ch.HabitID)
		default:
			return
		}
		if err == nil {
			return
		}
		logger.Warn("Incremental save failed, rewriting all habits",
			zap.String("change", string(ch.Kind)),
			zap.String("id", ch.HabitID),
			zap.Error(err),
		)
		if err := repo.SaveHabits(ctx, ch.Snapshot.Habits()); err != nil {
			logger.Error("Failed to persist habits", zap.String("change", string(ch.Kind)), zap.Error(err))
		}
	}
}

func resolveTheme(ctx context.Context, repo storage.Repository, fallback string, explicit bool, logger *zap.Logger) string {
	if explicit {
		return fallback
	}
	setting, err := repo.GetSetting(ctx, storage.SettingTheme)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("Failed to read theme setting", zap.Error(err))
		}
		return fallback
	}
	if theme, ok := config.NormalizeTheme(setting.Value); ok {
		return theme
	}
	return fallback
}

func serveMetrics(addr string, recorder *metrics.Recorder, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("Serving metrics", zap.String("addr", addr))
	return srv
}
