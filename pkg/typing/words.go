package typing

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kardex/kardex/pkg/core"
)

// Word is one entry of a per-language word-list file.
type Word struct {
	Word               string `json:"word"`
	CEFRLevel          string `json:"cefr_level,omitempty"`
	POS                string `json:"pos,omitempty"`
	Frequency          int    `json:"word_frequency,omitempty"`
	UsefulForFlashcard bool   `json:"useful_for_flashcard,omitempty"`
}

// Cache holds word lists already read from disk so repeated tests in one
// session do not re-parse the files. It is an explicit object owned by the
// caller and passed to each Loader, not process-wide state.
type Cache struct {
	mu    sync.Mutex
	words map[Language][]Word
}

// NewCache creates an empty word cache.
func NewCache() *Cache {
	return &Cache{words: make(map[Language][]Word)}
}

func (c *Cache) get(lang Language) ([]Word, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	words, ok := c.words[lang]
	return words, ok
}

func (c *Cache) set(lang Language, words []Word) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.words[lang] = words
}

// Len returns the number of cached languages.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.words)
}

// Loader reads and filters word lists for typing tests.
type Loader struct {
	dataDir string
	cache   *Cache
	rng     *rand.Rand
}

// NewLoader creates a Loader reading from dataDir. A nil cache gets a fresh
// private one.
func NewLoader(dataDir string, cache *Cache) *Loader {
	if cache == nil {
		cache = NewCache()
	}
	return &Loader{
		dataDir: dataDir,
		cache:   cache,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Words returns a shuffled selection of words for the given language and
// difficulty, filtered by CEFR level and maximum word length.
//
// Fails wrapping core.ErrNotFound when the word file is missing or no words
// survive the filter.
func (l *Loader) Words(lang Language, diff Difficulty) ([]string, error) {
	if !lang.IsValid() {
		return nil, fmt.Errorf("%w: unknown language %d", core.ErrInvalidInput, int(lang))
	}
	if !diff.IsValid() {
		return nil, fmt.Errorf("%w: unknown difficulty %d", core.ErrInvalidInput, int(diff))
	}

	all, err := l.load(lang)
	if err != nil {
		return nil, err
	}

	filtered := filterWords(all, diff)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: no words match language %s, difficulty %s", core.ErrNotFound, lang, diff)
	}

	l.rng.Shuffle(len(filtered), func(i, j int) {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	})

	count := min(diff.WordCount(), len(filtered))
	return filtered[:count], nil
}

// Text returns the selected words joined into a single test line.
func (l *Loader) Text(lang Language, diff Difficulty) (string, error) {
	words, err := l.Words(lang, diff)
	if err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}

// load reads the language's word file, consulting the cache first.
func (l *Loader) load(lang Language) ([]Word, error) {
	if words, ok := l.cache.get(lang); ok {
		return words, nil
	}

	path := filepath.Join(l.dataDir, lang.WordFile())
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: word file %s", core.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read word file %s: %w", path, err)
	}

	var words []Word
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("%w: malformed word file %s: %v", core.ErrInvalidInput, path, err)
	}

	l.cache.set(lang, words)
	return words, nil
}

func filterWords(all []Word, diff Difficulty) []string {
	levels := diff.CEFRLevels()
	maxLen := diff.MaxWordLength()

	var out []string
	for _, w := range all {
		if w.Word == "" || len([]rune(w.Word)) > maxLen {
			continue
		}
		if w.CEFRLevel != "" && !slices.Contains(levels, w.CEFRLevel) {
			continue
		}
		out = append(out, w.Word)
	}
	return out
}
