package kardex

import (
	"context"
	"log/slog"

	"github.com/kardex/kardex/internal/platform"
	"github.com/kardex/kardex/pkg/core"
	"github.com/kardex/kardex/pkg/leitner"
	"github.com/kardex/kardex/pkg/match"
	"github.com/kardex/kardex/pkg/session"
)

// --- Types ---

// Card is a public alias for the flashcard entity.
type Card = core.Card

// Question is a public alias for the quiz item entity.
type Question = core.Question

// LearningSet is a public alias for a named collection of cards and questions.
type LearningSet = core.LearningSet

// SessionStats is a public alias for the running session tally.
type SessionStats = core.SessionStats

// Service is a public alias for the session service.
type Service = session.Service

// Session is a public alias for one review pass over a set.
type Session = session.Session

// MatchResult is a public alias for a graded answer.
type MatchResult = match.MatchResult

// BoxConfig is a public alias for the Leitner scheduler configuration.
type BoxConfig = leitner.BoxConfig

// --- Configuration ---

// Option defines a functional option for configuring Kardex.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithSystemDir overrides the hidden directory name (e.g. ".kardex").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithPattern overrides the glob selecting deck files.
func WithPattern(pattern string) Option {
	return platform.WithPattern(pattern)
}

// WithMustExist ensures the deck directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithSerializer registers a custom deck serializer for an extension.
func WithSerializer(ext string, s any) Option {
	return platform.WithSerializer(ext, s)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.SetRepository) Option {
	return platform.WithRepository(repo)
}

// WithBoxConfig overrides the Leitner box layout.
func WithBoxConfig(cfg leitner.BoxConfig) Option {
	return platform.WithBoxConfig(cfg)
}

// WithSimilarity selects the similarity metric for answer grading.
func WithSimilarity(sim match.Similarity) Option {
	return platform.WithSimilarity(sim)
}

// WithThreshold sets the acceptance threshold and borderline margin.
func WithThreshold(threshold, margin float64) Option {
	return platform.WithThreshold(threshold, margin)
}

// --- Factory ---

// New creates the full review stack for a deck directory.
func New(ctx context.Context, path string, opts ...Option) (*session.Service, error) {
	return platform.New(ctx, path, opts...)
}

// Open builds and initializes just the set repository.
func Open(ctx context.Context, path string, opts ...Option) (core.SetRepository, error) {
	return platform.Open(ctx, path, opts...)
}

// --- Utils ---

// FindDeckRoot walks upwards for a deck root indicator (.kardex directory or
// kardex.yaml file).
func FindDeckRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// DefaultBoxConfig returns the standard five-box Leitner setup.
func DefaultBoxConfig() leitner.BoxConfig {
	return leitner.DefaultBoxConfig()
}
