// Package config loads and validates the application configuration from a
// YAML file, with sensible defaults when no file exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kardex/kardex/pkg/adapters/fs"
	"github.com/kardex/kardex/pkg/core"
	"github.com/kardex/kardex/pkg/leitner"
	"github.com/kardex/kardex/pkg/match"
	"github.com/kardex/kardex/pkg/typing"
)

// Duration wraps time.Duration so intervals read naturally in YAML
// ("24h", "30m") instead of nanosecond integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Paths locates the data the suite works with.
type Paths struct {
	DeckDir       string `yaml:"deck_dir"`
	DataDir       string `yaml:"data_dir"`
	HighscoreFile string `yaml:"highscore_file"`
}

// Defaults are the answers assumed when a command flag is omitted.
type Defaults struct {
	Language                string  `yaml:"language"`
	Difficulty              string  `yaml:"difficulty"`
	MinAccuracyForHighscore float64 `yaml:"min_accuracy_for_highscore"`
	MaxHighscores           int     `yaml:"max_highscores"`
}

// Learning tunes the review session: fuzzy matching and the Leitner boxes.
type Learning struct {
	FuzzyThreshold   float64    `yaml:"fuzzy_threshold"`
	DecisionMargin   float64    `yaml:"decision_margin"`
	SpacedRepetition bool       `yaml:"spaced_repetition"`
	Boxes            int        `yaml:"boxes"`
	Intervals        []Duration `yaml:"intervals"`
	Demotion         string     `yaml:"demotion"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	Paths    Paths    `yaml:"paths"`
	Defaults Defaults `yaml:"defaults"`
	Learning Learning `yaml:"learning"`
}

// Default returns the configuration used when no file exists. Paths are
// relative to the working directory.
func Default() Config {
	boxes := leitner.DefaultBoxConfig()
	intervals := make([]Duration, len(boxes.Intervals))
	for i, iv := range boxes.Intervals {
		intervals[i] = Duration(iv)
	}

	return Config{
		Paths: Paths{
			DeckDir:       "decks",
			DataDir:       "data",
			HighscoreFile: "highscores.json",
		},
		Defaults: Defaults{
			Language:                typing.English.String(),
			Difficulty:              typing.Medium.String(),
			MinAccuracyForHighscore: 80,
			MaxHighscores:           10,
		},
		Learning: Learning{
			FuzzyThreshold:   match.DefaultThreshold,
			DecisionMargin:   match.DefaultDecisionMargin,
			SpacedRepetition: true,
			Boxes:            boxes.Boxes,
			Intervals:        intervals,
			Demotion:         boxes.Demotion.String(),
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kardex", "config.yaml"), nil
}

// Load reads and validates the configuration at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: config file %s", core.ErrNotFound, path)
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: malformed config %s: %v", core.ErrConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault reads the configuration at path, falling back to defaults
// when the file does not exist. Other errors still fail.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Default(), nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration atomically, creating parent directories.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return fs.WriteFileAtomic(path, data, 0644)
}

// Validate checks every field against its allowed range. All violations wrap
// core.ErrConfig.
func (c Config) Validate() error {
	if _, err := typing.ParseLanguage(c.Defaults.Language); err != nil {
		return fmt.Errorf("%w: defaults.language: %v", core.ErrConfig, err)
	}
	if _, err := typing.ParseDifficulty(c.Defaults.Difficulty); err != nil {
		return fmt.Errorf("%w: defaults.difficulty: %v", core.ErrConfig, err)
	}
	if c.Defaults.MinAccuracyForHighscore < 0 || c.Defaults.MinAccuracyForHighscore > 100 {
		return fmt.Errorf("%w: defaults.min_accuracy_for_highscore must be within [0, 100]", core.ErrConfig)
	}
	if c.Defaults.MaxHighscores < 1 {
		return fmt.Errorf("%w: defaults.max_highscores must be positive", core.ErrConfig)
	}

	if c.Learning.FuzzyThreshold < 0 || c.Learning.FuzzyThreshold > 1 {
		return fmt.Errorf("%w: learning.fuzzy_threshold must be within [0, 1]", core.ErrConfig)
	}
	if c.Learning.DecisionMargin < 0 || c.Learning.DecisionMargin > 0.5 {
		return fmt.Errorf("%w: learning.decision_margin must be within [0, 0.5]", core.ErrConfig)
	}

	var demotion leitner.DemotionPolicy
	if err := demotion.UnmarshalText([]byte(c.Learning.Demotion)); err != nil {
		return fmt.Errorf("learning.demotion: %w", err)
	}

	// The box layout is validated by the scheduler itself.
	if _, err := leitner.New(c.BoxConfig()); err != nil {
		return err
	}
	return nil
}

// BoxConfig converts the learning section into scheduler configuration.
func (c Config) BoxConfig() leitner.BoxConfig {
	cfg := leitner.BoxConfig{Boxes: c.Learning.Boxes}
	cfg.Intervals = make([]time.Duration, len(c.Learning.Intervals))
	for i, iv := range c.Learning.Intervals {
		cfg.Intervals[i] = time.Duration(iv)
	}
	// Unknown names fail scheduler validation later.
	_ = cfg.Demotion.UnmarshalText([]byte(c.Learning.Demotion))
	return cfg
}

// Language returns the parsed default language.
func (c Config) Language() (typing.Language, error) {
	return typing.ParseLanguage(c.Defaults.Language)
}

// Difficulty returns the parsed default difficulty.
func (c Config) Difficulty() (typing.Difficulty, error) {
	return typing.ParseDifficulty(c.Defaults.Difficulty)
}
