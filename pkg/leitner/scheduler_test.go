package leitner

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/kardex/kardex/pkg/core"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func mustScheduler(t *testing.T, cfg BoxConfig) *Scheduler {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func testSet(cards ...core.Card) core.LearningSet {
	return core.LearningSet{Name: "test", Cards: cards}
}

func card(id string, box int, lastReviewed time.Time) core.Card {
	return core.Card{ID: id, Front: id, Back: id, Box: box, LastReviewed: lastReviewed}
}

// --- New ---

func TestNewRejectsZeroBoxes(t *testing.T) {
	_, err := New(BoxConfig{Boxes: 0})
	if !errors.Is(err, core.ErrConfig) {
		t.Errorf("expected ErrConfig for zero boxes, got %v", err)
	}
}

func TestNewRejectsIntervalMismatch(t *testing.T) {
	cfg := DefaultBoxConfig()
	cfg.Intervals = cfg.Intervals[:3]
	_, err := New(cfg)
	if !errors.Is(err, core.ErrConfig) {
		t.Errorf("expected ErrConfig for interval count mismatch, got %v", err)
	}
}

func TestNewRejectsNonIncreasingIntervals(t *testing.T) {
	cfg := BoxConfig{
		Boxes:     3,
		Intervals: []time.Duration{time.Hour, time.Hour, 2 * time.Hour},
	}
	_, err := New(cfg)
	if !errors.Is(err, core.ErrConfig) {
		t.Errorf("expected ErrConfig for non-increasing intervals, got %v", err)
	}
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	cfg := DefaultBoxConfig()
	cfg.Demotion = DemotionPolicy(42)
	_, err := New(cfg)
	if !errors.Is(err, core.ErrConfig) {
		t.Errorf("expected ErrConfig for unknown policy, got %v", err)
	}
}

func TestNewAcceptsDefault(t *testing.T) {
	mustScheduler(t, DefaultBoxConfig())
}

// --- RecordResult ---

func TestRecordResultPromotes(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	c := card("a", 2, t0)

	got := s.RecordResult(c, true, t0.Add(time.Hour))

	if got.Box != 3 {
		t.Errorf("expected box 3, got %d", got.Box)
	}
	if got.Reviews != 1 {
		t.Errorf("expected 1 review, got %d", got.Reviews)
	}
	if !got.LastReviewed.Equal(t0.Add(time.Hour)) {
		t.Errorf("LastReviewed not updated: %v", got.LastReviewed)
	}
	// Input card untouched.
	if c.Box != 2 || c.Reviews != 0 {
		t.Error("RecordResult mutated its input")
	}
}

func TestRecordResultCapsAtLastBox(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	c := card("a", 5, t0)
	if got := s.RecordResult(c, true, t0); got.Box != 5 {
		t.Errorf("expected box capped at 5, got %d", got.Box)
	}
}

func TestRecordResultDemotesToFirst(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	c := card("a", 4, t0)
	if got := s.RecordResult(c, false, t0); got.Box != 1 {
		t.Errorf("to-first policy: expected box 1, got %d", got.Box)
	}
}

func TestRecordResultDemotesOneBox(t *testing.T) {
	cfg := DefaultBoxConfig()
	cfg.Demotion = DemoteOneBox
	s := mustScheduler(t, cfg)

	c := card("a", 4, t0)
	if got := s.RecordResult(c, false, t0); got.Box != 3 {
		t.Errorf("one-box policy: expected box 3, got %d", got.Box)
	}

	c = card("a", 1, t0)
	if got := s.RecordResult(c, false, t0); got.Box != 1 {
		t.Errorf("one-box policy: expected floor at box 1, got %d", got.Box)
	}
}

// Box number stays within [1, N] after any sequence of results, and correct
// answers never decrease the box while wrong answers never increase it.
func TestRecordResultBoxBounds(t *testing.T) {
	for _, policy := range []DemotionPolicy{DemoteToFirst, DemoteOneBox} {
		cfg := DefaultBoxConfig()
		cfg.Demotion = policy
		s := mustScheduler(t, cfg)

		rng := rand.New(rand.NewSource(7))
		c := core.NewCard("q", "a")
		now := t0
		for i := 0; i < 500; i++ {
			correct := rng.Intn(2) == 0
			before := c.Box
			now = now.Add(time.Hour)
			c = s.RecordResult(c, correct, now)
			if c.Box < 1 || c.Box > cfg.Boxes {
				t.Fatalf("box %d out of [1, %d] after %d reviews", c.Box, cfg.Boxes, i+1)
			}
			if correct && c.Box < before {
				t.Fatalf("correct answer decreased box %d -> %d", before, c.Box)
			}
			if !correct && c.Box > before {
				t.Fatalf("wrong answer increased box %d -> %d", before, c.Box)
			}
		}
		if c.Reviews != 500 {
			t.Errorf("expected 500 reviews, got %d", c.Reviews)
		}
	}
}

func TestRecordResultClampsStoredBox(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	// Hand-edited files may carry box 0 or an out-of-range box.
	if got := s.RecordResult(card("a", 0, time.Time{}), true, t0); got.Box != 2 {
		t.Errorf("expected box 0 treated as 1 then promoted to 2, got %d", got.Box)
	}
	if got := s.RecordResult(card("a", 99, t0), true, t0); got.Box != 5 {
		t.Errorf("expected box 99 clamped to 5, got %d", got.Box)
	}
}

// --- DueCards ---

func TestDueCardsFreshAlwaysDue(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	set := testSet(core.NewCard("q1", "a1"), core.NewCard("q2", "a2"))

	var got []string
	for c := range s.DueCards(set, t0) {
		got = append(got, c.Front)
	}
	if len(got) != 2 || got[0] != "q1" || got[1] != "q2" {
		t.Errorf("expected fresh cards in insertion order, got %v", got)
	}
}

func TestDueCardsSkipsNotDue(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	set := testSet(
		card("recent", 3, t0.Add(-time.Hour)),      // box 3: due in 3 days
		card("overdue", 2, t0.Add(-48*time.Hour)),  // box 2: due after 1 day
	)

	var got []string
	for c := range s.DueCards(set, t0) {
		got = append(got, c.ID)
	}
	if len(got) != 1 || got[0] != "overdue" {
		t.Errorf("expected only overdue card, got %v", got)
	}
}

func TestDueCardsOrdering(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	set := testSet(
		card("late", 2, t0.Add(-30*time.Hour)),   // 6h overdue
		card("later", 2, t0.Add(-72*time.Hour)),  // 48h overdue
		core.NewCard("fresh", "a"),               // never reviewed
	)
	set.Cards[2].ID = "fresh"

	var got []string
	for c := range s.DueCards(set, t0) {
		got = append(got, c.ID)
	}
	want := []string{"fresh", "later", "late"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDueCardsStable(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	// Equal overdue-ness: ties keep insertion order.
	set := testSet(
		card("a", 2, t0.Add(-48*time.Hour)),
		card("b", 2, t0.Add(-48*time.Hour)),
		card("c", 2, t0.Add(-48*time.Hour)),
	)

	run := func() []string {
		var ids []string
		for c := range s.DueCards(set, t0) {
			ids = append(ids, c.ID)
		}
		return ids
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ordering not stable: %v vs %v", first, second)
		}
	}
	if first[0] != "a" || first[1] != "b" || first[2] != "c" {
		t.Errorf("ties should keep insertion order, got %v", first)
	}
}

func TestDueCardsRestartable(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	set := testSet(core.NewCard("q1", "a1"), core.NewCard("q2", "a2"))

	seq := s.DueCards(set, t0)

	// Break out early, then range again from the start.
	for range seq {
		break
	}
	count := 0
	for range seq {
		count++
	}
	if count != 2 {
		t.Errorf("expected restartable iterator to yield 2 cards, got %d", count)
	}
}

// --- Apply ---

func TestApplyUpdatesSet(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	set := testSet(card("a", 1, time.Time{}))

	updated, err := s.Apply(&set, "a", true, t0)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if updated.Box != 2 {
		t.Errorf("expected box 2, got %d", updated.Box)
	}
	if set.Cards[0].Box != 2 {
		t.Error("Apply did not update the owning set")
	}
}

func TestApplyUnknownCard(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	set := testSet(card("a", 1, time.Time{}))

	_, err := s.Apply(&set, "missing", true, t0)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// --- Summarize ---

func TestSummarize(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	set := testSet(
		card("a", 5, t0),
		card("b", 5, t0),
		card("c", 2, t0),
		core.NewCard("d", "x"),
	)

	sum := s.Summarize(set)
	if sum.Total != 4 {
		t.Errorf("expected total 4, got %d", sum.Total)
	}
	if sum.Mastered != 2 {
		t.Errorf("expected 2 mastered, got %d", sum.Mastered)
	}
	if sum.InProgress() != 2 {
		t.Errorf("expected 2 in progress, got %d", sum.InProgress())
	}
	if sum.MasteryPercent() != 50 {
		t.Errorf("expected 50%%, got %f", sum.MasteryPercent())
	}
	if sum.BoxCounts[0] != 1 || sum.BoxCounts[1] != 1 || sum.BoxCounts[4] != 2 {
		t.Errorf("unexpected box counts %v", sum.BoxCounts)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := mustScheduler(t, DefaultBoxConfig())
	sum := s.Summarize(testSet())
	if sum.MasteryPercent() != 0 {
		t.Errorf("expected 0%% for empty set, got %f", sum.MasteryPercent())
	}
}

// --- DemotionPolicy text round-trip ---

func TestDemotionPolicyText(t *testing.T) {
	for _, p := range []DemotionPolicy{DemoteToFirst, DemoteOneBox} {
		text, err := p.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", p, err)
		}
		var back DemotionPolicy
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if back != p {
			t.Errorf("round trip %v -> %s -> %v", p, text, back)
		}
	}

	var p DemotionPolicy
	if err := p.UnmarshalText([]byte("bogus")); !errors.Is(err, core.ErrConfig) {
		t.Errorf("expected ErrConfig for unknown name, got %v", err)
	}
}
