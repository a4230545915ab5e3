// Package session drives an interactive flashcard review: it pulls due cards
// from the scheduler, grades typed answers, and persists progress after every
// card.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kardex/kardex/pkg/core"
	"github.com/kardex/kardex/pkg/leitner"
	"github.com/kardex/kardex/pkg/match"
)

// Service wires a set repository, a Leitner scheduler and an answer matcher.
type Service struct {
	repo    core.SetRepository
	sched   *leitner.Scheduler
	matcher *match.Matcher
	logger  *slog.Logger
}

// NewService creates a session service. A nil scheduler or matcher falls back
// to the defaults; a nil logger discards.
func NewService(repo core.SetRepository, sched *leitner.Scheduler, matcher *match.Matcher, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("%w: session service needs a repository", core.ErrConfig)
	}
	if sched == nil {
		var err error
		if sched, err = leitner.New(leitner.DefaultBoxConfig()); err != nil {
			return nil, err
		}
	}
	if matcher == nil {
		var err error
		if matcher, err = match.NewMatcher(match.DefaultThreshold, match.DefaultDecisionMargin); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, sched: sched, matcher: matcher, logger: logger}, nil
}

// Repository exposes the underlying set repository.
func (s *Service) Repository() core.SetRepository {
	return s.repo
}

// Scheduler exposes the configured scheduler.
func (s *Service) Scheduler() *leitner.Scheduler {
	return s.sched
}

// Matcher exposes the configured answer matcher.
func (s *Service) Matcher() *match.Matcher {
	return s.matcher
}

// Summarize loads a set and reports its mastery state.
func (s *Service) Summarize(ctx context.Context, setID string) (leitner.Summary, error) {
	set, err := s.repo.Get(ctx, setID)
	if err != nil {
		return leitner.Summary{}, err
	}
	return s.sched.Summarize(set), nil
}

// Start loads the set and builds the due queue as of now. Starting a set with
// no due cards is not an error; the session is simply empty.
func (s *Service) Start(ctx context.Context, setID string, now time.Time) (*Session, error) {
	set, err := s.repo.Get(ctx, setID)
	if err != nil {
		return nil, err
	}
	if len(set.Cards) == 0 {
		return nil, fmt.Errorf("%w: set %q has no flashcards to review", core.ErrInvalidInput, set.Name)
	}

	var queue []core.Card
	for c := range s.sched.DueCards(set, now) {
		queue = append(queue, c)
	}
	s.logger.Info("session started", "set", set.ID, "due", len(queue), "total", len(set.Cards))

	return &Session{svc: s, set: set, queue: queue}, nil
}

// Session is one pass over a set's due cards. Not safe for concurrent use.
type Session struct {
	svc   *Service
	set   core.LearningSet
	queue []core.Card
	pos   int
	stats core.SessionStats
}

// Set returns the learning set under review.
func (sess *Session) Set() core.LearningSet {
	return sess.set
}

// Remaining returns how many due cards have not been presented yet.
func (sess *Session) Remaining() int {
	return len(sess.queue) - sess.pos
}

// Next returns the next due card. ok is false when the queue is exhausted.
func (sess *Session) Next() (core.Card, bool) {
	if sess.pos >= len(sess.queue) {
		return core.Card{}, false
	}
	c := sess.queue[sess.pos]
	sess.pos++
	return c, true
}

// Grade scores the typed answer against the card's back.
func (sess *Session) Grade(input string, card core.Card) (match.MatchResult, error) {
	return sess.svc.matcher.Grade(input, card.Back)
}

// NeedsDecision reports whether the graded result is borderline and the user
// should confirm it.
func (sess *Session) NeedsDecision(result match.MatchResult) bool {
	return sess.svc.matcher.NeedsDecision(result)
}

// Override forces the accepted state of a graded result, marking it as a
// manual decision. The score stays untouched.
func (sess *Session) Override(result match.MatchResult, accepted bool) match.MatchResult {
	return match.Override(result, accepted)
}

// Record applies the graded outcome to the card, updates the session tally,
// and persists the set's progress.
func (sess *Session) Record(ctx context.Context, cardID string, result match.MatchResult, now time.Time) (core.Card, error) {
	updated, err := sess.svc.sched.Apply(&sess.set, cardID, result.Accepted, now)
	if err != nil {
		return core.Card{}, err
	}
	sess.stats.Record(result.Accepted, result.UserOverride)

	if err := sess.svc.repo.SaveProgress(ctx, sess.set); err != nil {
		return core.Card{}, fmt.Errorf("failed to save progress: %w", err)
	}
	sess.svc.logger.Debug("review recorded",
		"set", sess.set.ID, "card", cardID, "correct", result.Accepted, "box", updated.Box)
	return updated, nil
}

// Stats returns the running session tally.
func (sess *Session) Stats() core.SessionStats {
	return sess.stats
}

// Summary reports the set's mastery state as currently held by the session.
func (sess *Session) Summary() leitner.Summary {
	return sess.svc.sched.Summarize(sess.set)
}
