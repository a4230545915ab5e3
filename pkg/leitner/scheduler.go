// Package leitner implements the Leitner box spaced-repetition scheduler.
//
// Cards live in numbered boxes 1..N. Correct answers promote a card to the
// next box, wrong answers demote it according to the configured policy.
// Higher boxes carry longer review intervals, so well-known cards come up
// less often.
package leitner

import (
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/kardex/kardex/pkg/core"
)

// DemotionPolicy decides where a card lands after a wrong answer.
type DemotionPolicy int

const (
	// DemoteToFirst sends the card back to box 1 (classic Leitner).
	DemoteToFirst DemotionPolicy = iota
	// DemoteOneBox moves the card down a single box.
	DemoteOneBox
)

var policyNames = map[DemotionPolicy]string{
	DemoteToFirst: "to-first",
	DemoteOneBox:  "one-box",
}

var policyByName = map[string]DemotionPolicy{
	"to-first": DemoteToFirst,
	"one-box":  DemoteOneBox,
}

// String returns the policy name ("to-first", "one-box").
func (p DemotionPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("DemotionPolicy(%d)", int(p))
}

// IsValid reports whether p is a known policy.
func (p DemotionPolicy) IsValid() bool {
	_, ok := policyNames[p]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (p DemotionPolicy) MarshalText() ([]byte, error) {
	name, ok := policyNames[p]
	if !ok {
		return nil, fmt.Errorf("%w: unknown demotion policy %d", core.ErrConfig, int(p))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *DemotionPolicy) UnmarshalText(text []byte) error {
	v, ok := policyByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: unknown demotion policy %q", core.ErrConfig, text)
	}
	*p = v
	return nil
}

// BoxConfig configures a Scheduler.
type BoxConfig struct {
	// Boxes is the total box count (N). Must be at least 1.
	Boxes int
	// Intervals holds the review interval per box, one entry per box.
	// Intervals must strictly increase with box number. A zero first
	// interval means box-1 cards are due every session.
	Intervals []time.Duration
	// Demotion selects the wrong-answer policy. Defaults to DemoteToFirst.
	Demotion DemotionPolicy
}

// DefaultBoxConfig returns the standard five-box setup.
func DefaultBoxConfig() BoxConfig {
	return BoxConfig{
		Boxes: 5,
		Intervals: []time.Duration{
			0,
			24 * time.Hour,
			3 * 24 * time.Hour,
			7 * 24 * time.Hour,
			14 * 24 * time.Hour,
		},
		Demotion: DemoteToFirst,
	}
}

// Scheduler decides review order and updates card mastery state.
// It is a pure state machine: methods never mutate shared structures beyond
// the LearningSet explicitly passed to Apply.
type Scheduler struct {
	cfg BoxConfig
}

// New creates a Scheduler from the given config.
// Returns an error wrapping core.ErrConfig when the config is malformed:
// zero boxes, interval count mismatch, or non-increasing intervals.
func New(cfg BoxConfig) (*Scheduler, error) {
	if cfg.Boxes < 1 {
		return nil, fmt.Errorf("%w: box count %d, need at least 1", core.ErrConfig, cfg.Boxes)
	}
	if len(cfg.Intervals) != cfg.Boxes {
		return nil, fmt.Errorf("%w: %d intervals for %d boxes", core.ErrConfig, len(cfg.Intervals), cfg.Boxes)
	}
	if cfg.Intervals[0] < 0 {
		return nil, fmt.Errorf("%w: negative interval %s for box 1", core.ErrConfig, cfg.Intervals[0])
	}
	for i := 1; i < len(cfg.Intervals); i++ {
		if cfg.Intervals[i] <= cfg.Intervals[i-1] {
			return nil, fmt.Errorf("%w: interval %s for box %d does not exceed box %d",
				core.ErrConfig, cfg.Intervals[i], i+1, i)
		}
	}
	if !cfg.Demotion.IsValid() {
		return nil, fmt.Errorf("%w: unknown demotion policy %d", core.ErrConfig, int(cfg.Demotion))
	}
	return &Scheduler{cfg: cfg}, nil
}

// Boxes returns the configured box count.
func (s *Scheduler) Boxes() int {
	return s.cfg.Boxes
}

// clampBox normalizes a stored box number into [1, N]. Cards loaded from
// hand-edited files may carry a zero or out-of-range box.
func (s *Scheduler) clampBox(box int) int {
	if box < 1 {
		return 1
	}
	if box > s.cfg.Boxes {
		return s.cfg.Boxes
	}
	return box
}

// NextReview returns the time the card becomes due again.
// Returns the zero time for cards with no review history (always due).
func (s *Scheduler) NextReview(c core.Card) time.Time {
	if !c.Reviewed() {
		return time.Time{}
	}
	return c.LastReviewed.Add(s.cfg.Intervals[s.clampBox(c.Box)-1])
}

// IsDue reports whether the card should be reviewed at now.
func (s *Scheduler) IsDue(c core.Card, now time.Time) bool {
	if !c.Reviewed() {
		return true
	}
	return !now.Before(s.NextReview(c))
}

// dueEntry is a snapshot row used to order the due queue.
type dueEntry struct {
	card    core.Card
	overdue time.Duration
	fresh   bool // no review history
}

// DueCards returns a restartable iterator over the cards due at now,
// most overdue first. Cards with no review history sort before all reviewed
// cards; ties keep the set's insertion order. The ordering is deterministic:
// two calls with the same now and an unchanged set yield identical sequences.
func (s *Scheduler) DueCards(set core.LearningSet, now time.Time) iter.Seq[core.Card] {
	var due []dueEntry
	for _, c := range set.Cards {
		if !s.IsDue(c, now) {
			continue
		}
		e := dueEntry{card: c, fresh: !c.Reviewed()}
		if !e.fresh {
			e.overdue = now.Sub(s.NextReview(c))
		}
		due = append(due, e)
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].fresh != due[j].fresh {
			return due[i].fresh
		}
		return due[i].overdue > due[j].overdue
	})

	return func(yield func(core.Card) bool) {
		for _, e := range due {
			if !yield(e.card) {
				return
			}
		}
	}
}

// RecordResult applies one review outcome to the card and returns the new
// state. The input card is not mutated. A correct answer promotes the card by
// one box, capped at N; a wrong answer demotes it per the configured policy,
// floored at box 1. The review count always increments.
func (s *Scheduler) RecordResult(c core.Card, correct bool, now time.Time) core.Card {
	box := s.clampBox(c.Box)
	if correct {
		if box < s.cfg.Boxes {
			box++
		}
	} else {
		switch s.cfg.Demotion {
		case DemoteOneBox:
			if box > 1 {
				box--
			}
		default:
			box = 1
		}
	}
	c.Box = box
	c.LastReviewed = now
	c.Reviews++
	return c
}

// Apply records a review outcome for the card with the given ID inside the
// set, updating the set in place. Returns the updated card, or an error
// wrapping core.ErrNotFound when the ID is absent.
func (s *Scheduler) Apply(set *core.LearningSet, cardID string, correct bool, now time.Time) (core.Card, error) {
	c, i, ok := set.CardByID(cardID)
	if !ok {
		return core.Card{}, fmt.Errorf("%w: card %q in set %q", core.ErrNotFound, cardID, set.Name)
	}
	updated := s.RecordResult(c, correct, now)
	set.Cards[i] = updated
	return updated, nil
}

// Summary describes the mastery state of a set.
type Summary struct {
	Total     int   `json:"total"`
	Mastered  int   `json:"mastered"` // cards in the last box
	BoxCounts []int `json:"box_counts"`
}

// InProgress returns the number of cards not yet in the last box.
func (sum Summary) InProgress() int {
	return sum.Total - sum.Mastered
}

// MasteryPercent returns the share of mastered cards (0-100).
func (sum Summary) MasteryPercent() float64 {
	if sum.Total == 0 {
		return 0
	}
	return float64(sum.Mastered) / float64(sum.Total) * 100
}

// Summarize counts the set's cards per box.
func (s *Scheduler) Summarize(set core.LearningSet) Summary {
	sum := Summary{
		Total:     len(set.Cards),
		BoxCounts: make([]int, s.cfg.Boxes),
	}
	for _, c := range set.Cards {
		box := s.clampBox(c.Box)
		sum.BoxCounts[box-1]++
		if box == s.cfg.Boxes && c.Reviewed() {
			sum.Mastered++
		}
	}
	return sum
}
