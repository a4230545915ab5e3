// Package typing provides the typing-test scorer and word-list loader.
package typing

import (
	"encoding"
	"fmt"
	"strings"

	"github.com/kardex/kardex/pkg/core"
)

// Language selects the word list used for a typing test.
type Language int

const (
	English Language = iota + 1
	German
)

var (
	languageNames = map[Language]string{English: "en", German: "de"}
	languageFiles = map[Language]string{English: "english_words.json", German: "german_words.json"}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Language(0)
	_ encoding.TextMarshaler   = Language(0)
	_ encoding.TextUnmarshaler = (*Language)(nil)
)

// String returns the two-letter language code.
func (l Language) String() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Language(%d)", int(l))
}

// IsValid reports whether l is a known language.
func (l Language) IsValid() bool {
	_, ok := languageNames[l]
	return ok
}

// WordFile returns the word-list filename for this language.
func (l Language) WordFile() string {
	return languageFiles[l]
}

// MarshalText implements encoding.TextMarshaler.
func (l Language) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("%w: unknown language %d", core.ErrInvalidInput, int(l))
	}
	return []byte(languageNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Language) UnmarshalText(text []byte) error {
	v, err := ParseLanguage(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLanguage accepts codes and names ("en", "english", "de", "german",
// "deutsch"), case-insensitively.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return English, nil
	case "de", "german", "deutsch":
		return German, nil
	default:
		return 0, fmt.Errorf("%w: unknown language %q", core.ErrInvalidInput, s)
	}
}

// Difficulty controls word filtering and test length.
type Difficulty int

const (
	Easy Difficulty = iota + 1
	Medium
	Hard
)

var difficultyNames = map[Difficulty]string{Easy: "easy", Medium: "medium", Hard: "hard"}

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Difficulty(0)
	_ encoding.TextMarshaler   = Difficulty(0)
	_ encoding.TextUnmarshaler = (*Difficulty)(nil)
)

// String returns the difficulty name ("easy", "medium", "hard").
func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// IsValid reports whether d is a known difficulty.
func (d Difficulty) IsValid() bool {
	_, ok := difficultyNames[d]
	return ok
}

// WordCount returns the number of words in a test at this difficulty.
func (d Difficulty) WordCount() int {
	switch d {
	case Easy:
		return 15
	case Hard:
		return 50
	default:
		return 30
	}
}

// MaxWordLength returns the longest word admitted at this difficulty.
func (d Difficulty) MaxWordLength() int {
	switch d {
	case Easy:
		return 6
	case Hard:
		return 15
	default:
		return 9
	}
}

// CEFRLevels returns the language-proficiency levels admitted at this
// difficulty.
func (d Difficulty) CEFRLevels() []string {
	switch d {
	case Easy:
		return []string{"A1", "A2"}
	case Hard:
		return []string{"B2", "C1", "C2"}
	default:
		return []string{"A2", "B1", "B2"}
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("%w: unknown difficulty %d", core.ErrInvalidInput, int(d))
	}
	return []byte(difficultyNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	v, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDifficulty accepts names and shorthand digits ("easy", "1", ...),
// case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "1":
		return Easy, nil
	case "medium", "2":
		return Medium, nil
	case "hard", "3":
		return Hard, nil
	default:
		return 0, fmt.Errorf("%w: unknown difficulty %q", core.ErrInvalidInput, s)
	}
}
