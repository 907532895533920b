// Package fixtures builds pre-populated habits from YAML descriptions. The
// illustrative history values are drawn from an injected random source so the
// same seed always yields the same collection.
package fixtures

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/sandeepkv93/habitd/internal/history"
	"github.com/sandeepkv93/habitd/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoFixture []byte

var ErrInvalidRange = errors.New("fixtures: invalid history range")

type HistorySpec struct {
	Min        float64   `yaml:"min"`
	Max        float64   `yaml:"max"`
	Integer    bool      `yaml:"integer"`
	ZeroChance float64   `yaml:"zero_chance"`
	Values     []float64 `yaml:"values"`
}

type HabitSpec struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Icon     string      `yaml:"icon"`
	Goal     float64     `yaml:"goal"`
	Unit     string      `yaml:"unit"`
	Progress float64     `yaml:"progress"`
	Streak   int         `yaml:"streak"`
	Color    string      `yaml:"color"`
	History  HistorySpec `yaml:"history"`
}

type File struct {
	Habits []HabitSpec `yaml:"habits"`
}

func Parse(data []byte) ([]HabitSpec, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return f.Habits, nil
}

func Load(path string) ([]HabitSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return Parse(raw)
}

// Demo returns the four sample habits shown on first launch.
func Demo() []HabitSpec {
	specs, err := Parse(demoFixture)
	if err != nil {
		panic(err)
	}
	return specs
}

// Build turns specs into validated habits with a history window of n days
// ending today.
func Build(specs []HabitSpec, today time.Time, n int, rng *rand.Rand) ([]model.Habit, error) {
	if n <= 0 {
		n = history.DefaultWindow
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(today.UnixNano()), 0))
	}
	out := make([]model.Habit, 0, len(specs))
	for i, spec := range specs {
		baseline, err := spec.History.baseline(rng, n)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: %w", spec.Name, err)
		}
		h := model.Habit{
			ID:       strings.TrimSpace(spec.ID),
			Name:     strings.TrimSpace(spec.Name),
			Icon:     spec.Icon,
			Goal:     spec.Goal,
			Unit:     spec.Unit,
			Progress: spec.Progress,
			Streak:   spec.Streak,
			Color:    spec.Color,
			History:  history.Seed(today, n, baseline),
		}
		if h.ID == "" {
			h.ID = fmt.Sprintf("fixture-%d", i+1)
		}
		if h.Icon == "" {
			h.Icon = model.DefaultIcon
		}
		if h.Unit == "" {
			h.Unit = model.DefaultUnit
		}
		if h.Goal == 0 {
			h.Goal = model.DefaultGoal
		}
		out = append(out, h)
	}
	if err := model.ValidateCollection(out); err != nil {
		return nil, err
	}
	return out, nil
}

// baseline right-aligns explicit values so the last one lands on today;
// missing leading days are zero.
func (s HistorySpec) baseline(rng *rand.Rand, n int) (history.Baseline, error) {
	if len(s.Values) > 0 {
		values := s.Values
		offset := n - len(values)
		return func(i int) float64 {
			j := i - offset
			if j < 0 || j >= len(values) {
				return 0
			}
			return values[j]
		}, nil
	}
	if s.Max < s.Min || s.Min < 0 {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, s.Min, s.Max)
	}
	return func(int) float64 {
		if s.ZeroChance > 0 && rng.Float64() < s.ZeroChance {
			return 0
		}
		if s.Integer {
			return s.Min + float64(rng.IntN(int(s.Max-s.Min)+1))
		}
		return s.Min + rng.Float64()*(s.Max-s.Min)
	}, nil
}
