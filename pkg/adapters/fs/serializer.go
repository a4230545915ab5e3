package fs

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/kardex/kardex/pkg/core"
)

// Serializer defines how to read and write learning sets in a specific file
// format.
type Serializer interface {
	// Parse reads from r and returns a LearningSet. name is the fallback
	// set name (usually the file stem).
	Parse(r io.Reader, name string) (*core.LearningSet, error)
	// Serialize converts the set's authored content to bytes. Review state
	// is not included; it lives in the progress store.
	Serialize(set core.LearningSet) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json":     &JSONSerializer{},
		".csv":      &CSVSerializer{},
		".md":       &MarkdownSerializer{},
		".markdown": &MarkdownSerializer{},
	}
}

// finishSet fills in derived fields after parsing: the fallback name, stable
// card IDs and the box floor. Derived IDs are content-addressed so review
// progress keyed by card ID survives reloads of ID-less formats (CSV,
// Markdown).
func finishSet(set *core.LearningSet, name string) error {
	if set.Name == "" {
		set.Name = name
	}
	for i := range set.Cards {
		c := &set.Cards[i]
		if c.ID == "" {
			c.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(set.Name+"/"+c.Front)).String()
		}
		if c.Box < 1 {
			c.Box = 1
		}
	}
	if set.IsEmpty() {
		return fmt.Errorf("%w: learning set %q contains no cards or questions", core.ErrInvalidInput, set.Name)
	}
	return nil
}

// --- JSON Serializer ---

// JSONSerializer handles full learning-set documents:
//
//	{
//	  "name": "Biology Basics",
//	  "cards": [{"front": "...", "back": "...", "tags": ["..."]}],
//	  "questions": [{"question": "...", "correct_answer": "...", "alternatives": ["..."]}]
//	}
type JSONSerializer struct{}

func (s *JSONSerializer) Parse(r io.Reader, name string) (*core.LearningSet, error) {
	var set core.LearningSet
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if err := finishSet(&set, name); err != nil {
		return nil, err
	}
	return &set, nil
}

func (s *JSONSerializer) Serialize(set core.LearningSet) ([]byte, error) {
	return json.MarshalIndent(set, "", "  ")
}

// --- CSV Serializer ---

// CSVSerializer handles simple card decks, one card per row:
//
//	front,back,tags
//	"What is DNA?","Deoxyribonucleic acid","biology;genetics"
//
// Tags are semicolon-separated inside the third column.
type CSVSerializer struct{}

func (s *CSVSerializer) Parse(r io.Reader, name string) (*core.LearningSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: csv deck %q has no data rows", core.ErrInvalidInput, name)
	}

	set := &core.LearningSet{}
	for i, row := range records[1:] { // skip header
		if len(row) < 2 {
			return nil, fmt.Errorf("%w: csv row %d needs front and back columns", core.ErrInvalidInput, i+2)
		}
		card := core.Card{
			Front: strings.TrimSpace(row[0]),
			Back:  strings.TrimSpace(row[1]),
		}
		if len(row) > 2 {
			card.Tags = splitTags(row[2])
		}
		set.Cards = append(set.Cards, card)
	}

	if err := finishSet(set, name); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *CSVSerializer) Serialize(set core.LearningSet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"front", "back", "tags"}); err != nil {
		return nil, err
	}
	for _, c := range set.Cards {
		if err := w.Write([]string{c.Front, c.Back, strings.Join(c.Tags, ";")}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ";") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// --- Markdown Serializer ---

// MarkdownSerializer handles hand-written decks: optional YAML frontmatter
// (name, description, tags) followed by card blocks:
//
//	---
//	name: Biology Basics
//	tags: [biology]
//	---
//	# Biology Basics
//
//	**Front:** What is photosynthesis?
//	**Back:** Conversion of light into chemical energy
//
// A top-level heading is used as the set name when no frontmatter names one.
type MarkdownSerializer struct{}

// frontmatter is the subset of set fields allowed in the YAML header.
type frontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

func (s *MarkdownSerializer) Parse(r io.Reader, name string) (*core.LearningSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	set := &core.LearningSet{}

	if bytes.HasPrefix(data, []byte("---\n")) || bytes.HasPrefix(data, []byte("---\r\n")) {
		rest := data[3:]
		parts := bytes.SplitN(rest, []byte("\n---"), 2)
		if len(parts) == 1 {
			return nil, errors.New("frontmatter started but no closing delimiter found")
		}
		var fm frontmatter
		if err := yaml.Unmarshal(parts[0], &fm); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		set.Name = fm.Name
		set.Description = fm.Description
		set.Tags = fm.Tags
		data = parts[1]
	}

	var front string
	haveFront := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "# ") && set.Name == "":
			set.Name = strings.TrimSpace(line[2:])
		case strings.HasPrefix(line, "**Front:**"), strings.HasPrefix(line, "Front:"):
			front = cardField(line, "Front:")
			haveFront = true
		case strings.HasPrefix(line, "**Back:**"), strings.HasPrefix(line, "Back:"):
			if !haveFront {
				continue
			}
			set.Cards = append(set.Cards, core.Card{
				Front: front,
				Back:  cardField(line, "Back:"),
			})
			haveFront = false
		}
	}

	if err := finishSet(set, name); err != nil {
		return nil, err
	}
	return set, nil
}

func cardField(line, label string) string {
	line = strings.TrimPrefix(line, "**"+label+"**")
	line = strings.TrimPrefix(line, label)
	return strings.TrimSpace(line)
}

func (s *MarkdownSerializer) Serialize(set core.LearningSet) ([]byte, error) {
	var buf bytes.Buffer

	fm := frontmatter{Name: set.Name, Description: set.Description, Tags: set.Tags}
	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(fm); err != nil {
		return nil, err
	}
	encoder.Close()
	buf.WriteString("---\n\n")

	for _, c := range set.Cards {
		fmt.Fprintf(&buf, "**Front:** %s\n**Back:** %s\n\n", c.Front, c.Back)
	}
	return buf.Bytes(), nil
}
