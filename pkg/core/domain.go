// Package core holds the domain model of the learning suite: cards,
// questions, learning sets, session statistics, the error taxonomy and the
// storage contracts. It depends on nothing but the standard library and uuid.
package core

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Card is a flashcard with its review state.
// Front/Back/Tags are authored content; Box, LastReviewed and Reviews are
// mutated only by the scheduler.
type Card struct {
	ID           string    `json:"id"`
	Front        string    `json:"front"`
	Back         string    `json:"back"`
	Tags         []string  `json:"tags,omitempty"`
	Explanation  string    `json:"explanation,omitempty"`
	Box          int       `json:"box"`
	LastReviewed time.Time `json:"last_reviewed,omitempty"` // zero = never reviewed
	Reviews      int       `json:"reviews"`
}

// NewCard creates a card in box 1 with a fresh ID.
func NewCard(front, back string) Card {
	return Card{
		ID:    NewCardID(),
		Front: front,
		Back:  back,
		Box:   1,
	}
}

// NewCardID returns a unique card identifier.
// Used by loaders for formats that carry no explicit IDs (CSV, Markdown).
func NewCardID() string {
	return uuid.New().String()
}

// Reviewed reports whether the card has any review history.
func (c Card) Reviewed() bool {
	return !c.LastReviewed.IsZero()
}

// Question is a quiz item distinct from flashcards: free-text by default,
// multiple-choice when alternatives are present.
type Question struct {
	Text         string   `json:"question"`
	Answer       string   `json:"correct_answer"`
	Alternatives []string `json:"alternatives,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// IsMultipleChoice reports whether the question has distractor alternatives.
func (q Question) IsMultipleChoice() bool {
	return len(q.Alternatives) > 0
}

// ShuffledOptions returns the correct answer and all alternatives in random
// order, drawn from the provided source.
func (q Question) ShuffledOptions(rng *rand.Rand) []string {
	options := make([]string, 0, len(q.Alternatives)+1)
	options = append(options, q.Alternatives...)
	options = append(options, q.Answer)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// LearningSet is a named collection of cards and questions.
// Loaded once per session; immutable except for the review state of its cards.
type LearningSet struct {
	ID          string     `json:"-"` // storage identifier (relative path), assigned by the repository
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Cards       []Card     `json:"cards,omitempty"`
	Questions   []Question `json:"questions,omitempty"`
}

// TotalItems returns the number of cards plus questions.
func (s LearningSet) TotalItems() int {
	return len(s.Cards) + len(s.Questions)
}

// IsEmpty reports whether the set has neither cards nor questions.
func (s LearningSet) IsEmpty() bool {
	return len(s.Cards) == 0 && len(s.Questions) == 0
}

// HasTag reports whether the set carries the given tag.
func (s LearningSet) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CardByID returns the card with the given ID and its index.
func (s LearningSet) CardByID(id string) (Card, int, bool) {
	for i, c := range s.Cards {
		if c.ID == id {
			return c, i, true
		}
	}
	return Card{}, -1, false
}

// SessionStats accumulates the outcome of a review session.
type SessionStats struct {
	Reviewed  int `json:"reviewed"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Overrides int `json:"overrides"`
}

// Accuracy returns the percentage of correct answers (0-100).
func (st SessionStats) Accuracy() float64 {
	if st.Reviewed == 0 {
		return 0
	}
	return float64(st.Correct) / float64(st.Reviewed) * 100
}

// Record counts one answer. Override answers are tallied separately so the
// session report distinguishes automatic from manual grading.
func (st *SessionStats) Record(correct, override bool) {
	st.Reviewed++
	if override {
		st.Overrides++
	}
	if correct {
		st.Correct++
	} else {
		st.Incorrect++
	}
}
