package platform

import (
	"log/slog"

	"github.com/kardex/kardex/pkg/core"
	"github.com/kardex/kardex/pkg/leitner"
	"github.com/kardex/kardex/pkg/match"
)

// options holds the internal configuration assembled from Option calls.
type options struct {
	repository  core.SetRepository
	logger      *slog.Logger
	systemDir   string
	pattern     string
	mustExist   bool
	serializers map[string]any
	boxes       *leitner.BoxConfig
	matcher     *match.Matcher
	similarity  match.Similarity
	threshold   float64
	margin      float64
}

// Option configures the Kardex service.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		serializers: make(map[string]any),
		threshold:   match.DefaultThreshold,
		margin:      match.DefaultDecisionMargin,
	}
}

// WithLogger sets the logger used by the repository and session service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSystemDir overrides the hidden directory name (default ".kardex") that
// holds the index cache and review progress.
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithPattern overrides the glob selecting deck files inside the deck
// directory.
func WithPattern(pattern string) Option {
	return func(o *options) {
		o.pattern = pattern
	}
}

// WithMustExist makes initialization fail when the deck directory is missing
// instead of creating it.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithSerializer registers a custom deck serializer for an extension.
// The value must implement the adapter's Serializer interface (e.g.
// fs.Serializer); validation happens during Init.
func WithSerializer(ext string, s any) Option {
	return func(o *options) {
		o.serializers[ext] = s
	}
}

// WithRepository injects a custom storage adapter (e.g. an in-memory
// repository for tests). When set, the filesystem adapter is skipped and
// path-related options are ignored.
func WithRepository(repo core.SetRepository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithBoxConfig overrides the Leitner box layout.
func WithBoxConfig(cfg leitner.BoxConfig) Option {
	return func(o *options) {
		o.boxes = &cfg
	}
}

// WithMatcher injects a fully configured answer matcher. Overrides
// WithSimilarity and WithThreshold.
func WithMatcher(m *match.Matcher) Option {
	return func(o *options) {
		o.matcher = m
	}
}

// WithSimilarity selects the similarity metric for answer grading.
func WithSimilarity(sim match.Similarity) Option {
	return func(o *options) {
		o.similarity = sim
	}
}

// WithThreshold sets the acceptance threshold and borderline margin for
// answer grading.
func WithThreshold(threshold, margin float64) Option {
	return func(o *options) {
		o.threshold = threshold
		o.margin = margin
	}
}
