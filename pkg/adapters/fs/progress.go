package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kardex/kardex/pkg/core"
)

// cardProgress is the persisted review state of a single card. Progress lives
// under {systemDir}/progress/, never inside the authored deck files, so users
// can edit or version their decks without churn from review sessions.
type cardProgress struct {
	Box          int       `json:"box"`
	LastReviewed time.Time `json:"last_reviewed"`
	Reviews      int       `json:"reviews"`
}

// progressFile is the on-disk format of one set's review state, keyed by
// card ID.
type progressFile struct {
	Version int                     `json:"version"`
	Set     string                  `json:"set"`
	Cards   map[string]cardProgress `json:"cards"`
}

var progressKeyReplacer = strings.NewReplacer("/", "__", "\\", "__")

// progressPath maps a set ID (relative path) to its progress file.
// Path separators are flattened so the progress directory stays flat.
func (r *Repository) progressPath(setID string) string {
	return filepath.Join(r.Path, r.config.SystemDir, "progress", progressKeyReplacer.Replace(setID)+".json")
}

// loadProgress reads the progress file for a set. A missing file means no
// reviews yet and yields an empty map, not an error.
func (r *Repository) loadProgress(setID string) (map[string]cardProgress, error) {
	data, err := os.ReadFile(r.progressPath(setID))
	if os.IsNotExist(err) {
		return map[string]cardProgress{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress for %s: %w", setID, err)
	}

	var pf progressFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("corrupt progress file for %s: %w", setID, err)
	}
	if pf.Cards == nil {
		pf.Cards = map[string]cardProgress{}
	}
	return pf.Cards, nil
}

// applyProgress merges stored review state into the freshly parsed set.
// Cards without stored progress keep their parsed defaults (box 1, never
// reviewed); stored progress for cards that no longer exist is ignored and
// dropped on the next SaveProgress.
func (r *Repository) applyProgress(set *core.LearningSet) error {
	progress, err := r.loadProgress(set.ID)
	if err != nil {
		return err
	}
	for i := range set.Cards {
		c := &set.Cards[i]
		if p, ok := progress[c.ID]; ok {
			c.Box = p.Box
			c.LastReviewed = p.LastReviewed
			c.Reviews = p.Reviews
		}
	}
	return nil
}

// saveProgress writes the set's current review state atomically.
func (r *Repository) saveProgress(set core.LearningSet) error {
	pf := progressFile{
		Version: 1,
		Set:     set.ID,
		Cards:   make(map[string]cardProgress, len(set.Cards)),
	}
	for _, c := range set.Cards {
		pf.Cards[c.ID] = cardProgress{
			Box:          c.Box,
			LastReviewed: c.LastReviewed,
			Reviews:      c.Reviews,
		}
	}

	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return err
	}

	path := r.progressPath(set.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return WriteFileAtomic(path, data, 0644)
}
