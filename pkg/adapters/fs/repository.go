package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kardex/kardex/pkg/core"
)

// DefaultPattern matches every supported deck format anywhere under the deck
// directory.
const DefaultPattern = "**/*.{json,csv,md}"

// DefaultSystemDir is where the index cache and review progress live,
// separate from the authored deck files.
const DefaultSystemDir = ".kardex"

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path        string
	SystemDir   string // e.g. ".kardex"
	Pattern     string // doublestar glob selecting deck files
	MustExist   bool   // fail Initialize instead of creating the deck directory
	Logger      *slog.Logger
	Serializers map[string]Serializer // keyed by extension, e.g. ".json"
}

// Repository implements core.SetRepository on a directory of deck files.
// Authored content is read-only; only review progress is ever written, into
// the system directory.
type Repository struct {
	Path   string
	config Config
	cache  *cache
	logger *slog.Logger

	mu   sync.RWMutex
	memo map[string]memoEntry // parsed authored content, keyed by relative path
}

// memoEntry keeps a parsed set in memory so repeated Gets within one process
// skip re-parsing unchanged files. Invalidated by mtime comparison.
type memoEntry struct {
	mtime time.Time
	set   core.LearningSet
}

// extension preference when a set ID carries no extension.
var extOrder = []string{".json", ".csv", ".md", ".markdown"}

// NewRepository creates a filesystem-backed repository. Zero-value config
// fields get defaults; only Path is required.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	if config.Serializers == nil {
		config.Serializers = DefaultSerializers()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{
		Path:   config.Path,
		config: config,
		cache:  newCache(config.Path, config.SystemDir),
		logger: config.Logger,
		memo:   make(map[string]memoEntry),
	}
}

// Initialize prepares the deck directory and loads the metadata index.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: deck path does not exist: %s", core.ErrNotFound, r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: deck path is not a directory: %s", core.ErrConfig, r.Path)
		}
	} else {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("failed to create deck directory: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Join(r.Path, r.config.SystemDir, "progress"), 0755); err != nil {
		return fmt.Errorf("failed to create system directory: %w", err)
	}

	if err := r.cache.Load(); err != nil {
		r.logger.Warn("index cache unreadable, starting fresh", "error", err)
	}
	return nil
}

// Get retrieves a learning set by its ID (relative path). An ID without an
// extension is resolved against the supported formats in preference order.
// Stored review progress is merged into the returned cards.
func (r *Repository) Get(ctx context.Context, id string) (core.LearningSet, error) {
	relPath, err := r.resolveFile(id)
	if err != nil {
		return core.LearningSet{}, err
	}

	set, err := r.parseSet(relPath)
	if err != nil {
		return core.LearningSet{}, err
	}
	if err := r.applyProgress(&set); err != nil {
		return core.LearningSet{}, err
	}
	return set, nil
}

// List parses every deck file matching the pattern, merges progress, and
// refreshes the metadata index as a side effect.
func (r *Repository) List(ctx context.Context) ([]core.LearningSet, error) {
	paths, err := r.scan()
	if err != nil {
		return nil, err
	}

	sets := make([]core.LearningSet, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, relPath := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		set, err := r.parseSet(relPath)
		if err != nil {
			// Unparseable files are listed problems, not fatal ones.
			r.logger.Warn("skipping unparseable set", "path", relPath, "error", err)
			continue
		}
		if err := r.applyProgress(&set); err != nil {
			return nil, err
		}

		seen[relPath] = true
		r.cache.Set(relPath, infoEntry(set, r.mtimeOf(relPath)))
		sets = append(sets, set)
	}

	r.cache.Prune(seen)
	if err := r.cache.Save(); err != nil {
		r.logger.Warn("failed to save index cache", "error", err)
	}
	return sets, nil
}

// Index answers listings from the metadata cache, parsing only files whose
// mtime changed since the last scan.
func (r *Repository) Index(ctx context.Context) ([]core.SetInfo, error) {
	paths, err := r.scan()
	if err != nil {
		return nil, err
	}

	infos := make([]core.SetInfo, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, relPath := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen[relPath] = true
		mtime := r.mtimeOf(relPath)

		entry, hit := r.cache.Get(relPath, mtime)
		if !hit {
			set, err := r.parseSet(relPath)
			if err != nil {
				r.logger.Warn("skipping unparseable set", "path", relPath, "error", err)
				continue
			}
			entry = infoEntry(set, mtime)
			r.cache.Set(relPath, entry)
		}

		infos = append(infos, core.SetInfo{
			ID:          relPath,
			Name:        entry.Name,
			Description: entry.Description,
			Tags:        entry.Tags,
			Cards:       entry.Cards,
			Questions:   entry.Questions,
		})
	}

	r.cache.Prune(seen)
	if err := r.cache.Save(); err != nil {
		r.logger.Warn("failed to save index cache", "error", err)
	}
	return infos, nil
}

// SaveProgress persists the review state of the set's cards. The authored
// deck file is never touched.
func (r *Repository) SaveProgress(ctx context.Context, set core.LearningSet) error {
	if set.ID == "" {
		return fmt.Errorf("%w: learning set has no ID", core.ErrInvalidInput)
	}
	return r.saveProgress(set)
}

// --- internals ---

// resolveFile maps a set ID to an existing relative path with a known
// serializer extension.
func (r *Repository) resolveFile(id string) (string, error) {
	id = filepath.ToSlash(id)

	if ext := filepath.Ext(id); ext != "" {
		if _, ok := r.config.Serializers[ext]; !ok {
			return "", fmt.Errorf("%w: unsupported set format %q", core.ErrInvalidInput, ext)
		}
		if _, err := os.Stat(filepath.Join(r.Path, filepath.FromSlash(id))); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: learning set %s", core.ErrNotFound, id)
			}
			return "", err
		}
		return id, nil
	}

	for _, ext := range extOrder {
		candidate := id + ext
		if _, err := os.Stat(filepath.Join(r.Path, filepath.FromSlash(candidate))); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: learning set %s", core.ErrNotFound, id)
}

// parseSet reads and deserializes one deck file, consulting the in-memory
// memo first. The returned set owns its slices; callers may mutate freely.
func (r *Repository) parseSet(relPath string) (core.LearningSet, error) {
	fullPath := filepath.Join(r.Path, filepath.FromSlash(relPath))
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.LearningSet{}, fmt.Errorf("%w: learning set %s", core.ErrNotFound, relPath)
		}
		return core.LearningSet{}, err
	}
	mtime := info.ModTime()

	r.mu.RLock()
	entry, hit := r.memo[relPath]
	r.mu.RUnlock()
	if hit && entry.mtime.Equal(mtime) {
		return cloneSet(entry.set), nil
	}

	ext := filepath.Ext(relPath)
	serializer, ok := r.config.Serializers[ext]
	if !ok {
		return core.LearningSet{}, fmt.Errorf("%w: unsupported set format %q", core.ErrInvalidInput, ext)
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return core.LearningSet{}, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(relPath), ext)
	set, err := serializer.Parse(f, name)
	if err != nil {
		return core.LearningSet{}, fmt.Errorf("failed to parse set %s: %w", relPath, err)
	}
	set.ID = relPath

	r.mu.Lock()
	r.memo[relPath] = memoEntry{mtime: mtime, set: cloneSet(*set)}
	r.mu.Unlock()

	r.logger.Debug("parsed set", "path", relPath, "cards", len(set.Cards), "questions", len(set.Questions))
	return *set, nil
}

// scan returns the sorted relative paths of all deck files matching the
// configured pattern, excluding the system directory.
func (r *Repository) scan() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(r.Path), r.config.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid deck pattern %q: %w", r.config.Pattern, err)
	}

	paths := matches[:0]
	for _, m := range matches {
		if r.hidden(m) {
			continue
		}
		paths = append(paths, m)
	}
	slices.Sort(paths)
	return paths, nil
}

// hidden reports whether the slash-separated relative path lies inside the
// system directory or any dot directory (.git and friends).
func (r *Repository) hidden(relPath string) bool {
	segs := strings.Split(relPath, "/")
	for _, seg := range segs[:len(segs)-1] {
		if seg == r.config.SystemDir || strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func (r *Repository) mtimeOf(relPath string) time.Time {
	info, err := os.Stat(filepath.Join(r.Path, filepath.FromSlash(relPath)))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func infoEntry(set core.LearningSet, mtime time.Time) *indexEntry {
	return &indexEntry{
		Name:         set.Name,
		Description:  set.Description,
		Tags:         set.Tags,
		Cards:        len(set.Cards),
		Questions:    len(set.Questions),
		LastModified: mtime,
	}
}

func cloneSet(set core.LearningSet) core.LearningSet {
	set.Tags = slices.Clone(set.Tags)
	set.Cards = slices.Clone(set.Cards)
	set.Questions = slices.Clone(set.Questions)
	return set
}

var (
	_ core.SetRepository = (*Repository)(nil)
	_ core.Indexer       = (*Repository)(nil)
)
