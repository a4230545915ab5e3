// Package match grades free-text quiz answers against a canonical answer
// using string similarity.
//
// Grading is a pure function with no shared state, so it is safe to call
// concurrently. The similarity metric is pluggable; Ratio is the default.
package match

import (
	"fmt"
	"strings"

	"github.com/kardex/kardex/pkg/core"
)

const (
	// DefaultThreshold is the similarity needed for automatic acceptance.
	DefaultThreshold = 0.85
	// DefaultDecisionMargin is the half-width of the borderline zone around
	// the threshold where the session should offer a manual override.
	DefaultDecisionMargin = 0.10
)

// MatchResult is the graded outcome of comparing an answer to its target.
type MatchResult struct {
	// Score is the best similarity found, in [0, 1].
	Score float64 `json:"score"`
	// Accepted reports whether the answer counts as correct.
	Accepted bool `json:"accepted"`
	// UserOverride is true when Accepted was forced manually. The score is
	// never altered by an override, preserving the automatic grading.
	UserOverride bool `json:"user_override"`
}

// normalize lower-cases and trims surrounding whitespace.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Grade scores input against target using the default Ratio metric.
// See GradeWith.
func Grade(input, target string, alternatives []string, threshold float64) (MatchResult, error) {
	return GradeWith(Ratio, input, target, alternatives, threshold)
}

// GradeWith scores the normalized input against the normalized target; when
// the target score falls below the threshold, each alternative is tried and
// the maximum kept. Accepted = score >= threshold. An empty input never
// matches, regardless of threshold.
//
// Fails with core.ErrInvalidInput when threshold is outside [0, 1] or the
// target is empty.
func GradeWith(sim Similarity, input, target string, alternatives []string, threshold float64) (MatchResult, error) {
	if sim == nil {
		sim = Ratio
	}
	if threshold < 0 || threshold > 1 {
		return MatchResult{}, fmt.Errorf("%w: threshold %v outside [0, 1]", core.ErrInvalidInput, threshold)
	}
	t := normalize(target)
	if t == "" {
		return MatchResult{}, fmt.Errorf("%w: empty target answer", core.ErrInvalidInput)
	}

	in := normalize(input)
	if in == "" {
		return MatchResult{}, nil
	}
	if in == t {
		return MatchResult{Score: 1, Accepted: true}, nil
	}

	score := sim(in, t)
	for _, alt := range alternatives {
		if score >= threshold {
			break
		}
		a := normalize(alt)
		if a == "" {
			continue
		}
		if s := sim(in, a); s > score {
			score = s
		}
	}

	return MatchResult{Score: score, Accepted: score >= threshold}, nil
}

// Override returns a copy of result with Accepted forced to the given value
// and UserOverride set. The numeric score is preserved.
func Override(result MatchResult, forced bool) MatchResult {
	result.Accepted = forced
	result.UserOverride = true
	return result
}

// Matcher bundles a similarity metric, threshold and decision margin for use
// across a session. The zero Matcher is not valid; use NewMatcher.
type Matcher struct {
	sim       Similarity
	threshold float64
	margin    float64
}

// NewMatcher creates a Matcher with the default Ratio metric.
// Fails with core.ErrInvalidInput when threshold is outside [0, 1] or margin
// is outside [0, 0.5].
func NewMatcher(threshold, margin float64) (*Matcher, error) {
	return NewMatcherWith(Ratio, threshold, margin)
}

// NewMatcherWith creates a Matcher with a custom similarity metric.
func NewMatcherWith(sim Similarity, threshold, margin float64) (*Matcher, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold %v outside [0, 1]", core.ErrInvalidInput, threshold)
	}
	if margin < 0 || margin > 0.5 {
		return nil, fmt.Errorf("%w: decision margin %v outside [0, 0.5]", core.ErrInvalidInput, margin)
	}
	if sim == nil {
		sim = Ratio
	}
	return &Matcher{sim: sim, threshold: threshold, margin: margin}, nil
}

// Threshold returns the configured acceptance threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Grade scores input against target and optional alternatives using the
// matcher's metric and threshold.
func (m *Matcher) Grade(input, target string, alternatives ...string) (MatchResult, error) {
	return GradeWith(m.sim, input, target, alternatives, m.threshold)
}

// NeedsDecision reports whether the result sits in the borderline zone around
// the threshold where the session should ask the user to confirm. Exact
// matches and empty answers are never borderline.
func (m *Matcher) NeedsDecision(result MatchResult) bool {
	if m.margin == 0 || result.UserOverride {
		return false
	}
	if result.Score == 0 || result.Score == 1 {
		return false
	}
	return result.Score >= m.threshold-m.margin && result.Score < m.threshold+m.margin
}
