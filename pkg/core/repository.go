package core

import "context"

// SetRepository defines the contract for loading learning sets and persisting
// their review progress. Adhering to this interface keeps the session logic
// independent of the underlying storage (filesystem, memory, SQL).
type SetRepository interface {
	// List returns all available learning sets with progress applied.
	List(ctx context.Context) ([]LearningSet, error)

	// Get retrieves a learning set by its ID (relative path in the deck).
	Get(ctx context.Context, id string) (LearningSet, error)

	// SaveProgress persists the review state (box, last reviewed, count)
	// of the set's cards. Authored content is never rewritten.
	SaveProgress(ctx context.Context, set LearningSet) error

	// Initialize ensures the underlying storage is ready
	// (e.g. create directories, load index).
	Initialize(ctx context.Context) error
}

// SetInfo is a lightweight listing entry for a learning set: its identity and
// item counts without the cards themselves.
type SetInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Cards       int      `json:"cards"`
	Questions   int      `json:"questions"`
}

// Indexer is implemented by repositories that can answer listings from a
// metadata index without parsing every set file.
type Indexer interface {
	Index(ctx context.Context) ([]SetInfo, error)
}

// EventType represents the type of change in the deck.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a learning-set file.
type Event struct {
	Type      EventType
	Set       string // set ID (relative path)
	Timestamp int64  // Unix timestamp
}

// Watchable is implemented by repositories that can observe external changes
// to the deck (e.g. a set file edited while a session is open).
type Watchable interface {
	// Watch emits events for set files matching pattern until ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
