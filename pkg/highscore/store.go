// Package highscore persists typing-test results as a bounded, sorted
// leaderboard in a single JSON file.
package highscore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kardex/kardex/pkg/adapters/fs"
	"github.com/kardex/kardex/pkg/core"
	"github.com/kardex/kardex/pkg/typing"
)

// DefaultMax is how many scores the board keeps when no limit is configured.
const DefaultMax = 10

// Score is one leaderboard entry.
type Score struct {
	Name       string            `json:"name"`
	WPM        float64           `json:"wpm"`
	Accuracy   float64           `json:"accuracy"`
	Language   typing.Language   `json:"language"`
	Difficulty typing.Difficulty `json:"difficulty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// FromResult builds a Score from a finished typing test.
func FromResult(name string, r typing.TestResult, lang typing.Language, diff typing.Difficulty, now time.Time) Score {
	return Score{
		Name:       name,
		WPM:        r.WPM,
		Accuracy:   r.Accuracy,
		Language:   lang,
		Difficulty: diff,
		Timestamp:  now,
	}
}

// Store reads and writes the leaderboard file.
type Store struct {
	path string
	max  int
}

// NewStore creates a store backed by the given file. max <= 0 uses
// DefaultMax.
func NewStore(path string, max int) *Store {
	if max <= 0 {
		max = DefaultMax
	}
	return &Store{path: path, max: max}
}

// Load returns all stored scores, best first. A missing file is an empty
// board.
func (s *Store) Load() ([]Score, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read highscores: %w", err)
	}

	var scores []Score
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, fmt.Errorf("%w: corrupt highscore file %s: %v", core.ErrInvalidInput, s.path, err)
	}
	return scores, nil
}

// Add inserts a score, keeps the board sorted by WPM descending and trimmed
// to the configured size, and saves it atomically. It reports whether the
// score made the board.
func (s *Store) Add(score Score) (bool, error) {
	scores, err := s.Load()
	if err != nil {
		return false, err
	}

	scores = append(scores, score)
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].WPM != scores[j].WPM {
			return scores[i].WPM > scores[j].WPM
		}
		return scores[i].Accuracy > scores[j].Accuracy
	})
	if len(scores) > s.max {
		scores = scores[:s.max]
	}

	made := false
	for _, kept := range scores {
		if kept == score {
			made = true
			break
		}
	}

	if err := s.save(scores); err != nil {
		return false, err
	}
	return made, nil
}

// Filter returns the stored scores for one language and difficulty,
// preserving order.
func (s *Store) Filter(lang typing.Language, diff typing.Difficulty) ([]Score, error) {
	scores, err := s.Load()
	if err != nil {
		return nil, err
	}

	var out []Score
	for _, sc := range scores {
		if sc.Language == lang && sc.Difficulty == diff {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *Store) save(scores []Score) error {
	data, err := json.MarshalIndent(scores, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return fs.WriteFileAtomic(s.path, data, 0644)
}
