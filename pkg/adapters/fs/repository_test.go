package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardex/kardex/pkg/adapters/fs"
	"github.com/kardex/kardex/pkg/core"
)

// setupRepo creates an initialized repository over a seeded deck directory.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	deckPath := filepath.Join(t.TempDir(), "decks")
	cfg := fs.Config{Path: deckPath}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo := fs.NewRepository(cfg)
	require.NoError(t, repo.Initialize(context.Background()))
	return repo, deckPath
}

func writeDeck(t *testing.T, deckPath, name, content string) {
	t.Helper()
	full := filepath.Join(deckPath, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func seedDecks(t *testing.T, deckPath string) {
	t.Helper()
	writeDeck(t, deckPath, "capitals.json", jsonFixture)
	writeDeck(t, deckPath, "chem.csv", "front,back,tags\nH2O?,Water,chemistry\n")
	writeDeck(t, deckPath, "languages/greetings.md", markdownFixture)
}

func TestInitialize(t *testing.T) {
	t.Run("creates deck and system directories", func(t *testing.T) {
		_, deckPath := setupRepo(t)

		info, err := os.Stat(filepath.Join(deckPath, ".kardex", "progress"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("fails when MustExist and missing", func(t *testing.T) {
		repo := fs.NewRepository(fs.Config{
			Path:      filepath.Join(t.TempDir(), "nope"),
			MustExist: true,
		})
		err := repo.Initialize(context.Background())
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestGet(t *testing.T) {
	repo, deckPath := setupRepo(t)
	seedDecks(t, deckPath)
	ctx := context.Background()

	t.Run("by full id", func(t *testing.T) {
		set, err := repo.Get(ctx, "capitals.json")
		require.NoError(t, err)
		assert.Equal(t, "capitals.json", set.ID)
		assert.Equal(t, "Biology Basics", set.Name)
		assert.Len(t, set.Cards, 2)
	})

	t.Run("resolves missing extension", func(t *testing.T) {
		set, err := repo.Get(ctx, "chem")
		require.NoError(t, err)
		assert.Equal(t, "chem.csv", set.ID)
	})

	t.Run("nested path", func(t *testing.T) {
		set, err := repo.Get(ctx, "languages/greetings.md")
		require.NoError(t, err)
		assert.Equal(t, "Biology Basics", set.Name) // from frontmatter
	})

	t.Run("unknown set", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := repo.Get(ctx, "deck.xml")
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})
}

func TestList(t *testing.T) {
	repo, deckPath := setupRepo(t)
	seedDecks(t, deckPath)
	// Unparseable files are skipped, not fatal.
	writeDeck(t, deckPath, "broken.json", "{ not json")

	sets, err := repo.List(context.Background())
	require.NoError(t, err)

	ids := make([]string, len(sets))
	for i, s := range sets {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"capitals.json", "chem.csv", "languages/greetings.md"}, ids)
}

func TestListSkipsSystemDir(t *testing.T) {
	repo, deckPath := setupRepo(t)
	seedDecks(t, deckPath)

	// Index cache and progress files look like decks but must never list.
	_, err := repo.List(context.Background())
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(deckPath, ".kardex", "index.json"))

	sets, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, sets, 3)
}

func TestSaveProgress(t *testing.T) {
	repo, deckPath := setupRepo(t)
	seedDecks(t, deckPath)
	ctx := context.Background()

	before, err := os.ReadFile(filepath.Join(deckPath, "chem.csv"))
	require.NoError(t, err)

	set, err := repo.Get(ctx, "chem.csv")
	require.NoError(t, err)

	now := time.Now().Round(time.Second)
	set.Cards[0].Box = 3
	set.Cards[0].LastReviewed = now
	set.Cards[0].Reviews = 4
	require.NoError(t, repo.SaveProgress(ctx, set))

	t.Run("progress merges on reload", func(t *testing.T) {
		reloaded, err := repo.Get(ctx, "chem.csv")
		require.NoError(t, err)
		assert.Equal(t, 3, reloaded.Cards[0].Box)
		assert.True(t, reloaded.Cards[0].LastReviewed.Equal(now))
		assert.Equal(t, 4, reloaded.Cards[0].Reviews)
	})

	t.Run("authored file untouched", func(t *testing.T) {
		after, err := os.ReadFile(filepath.Join(deckPath, "chem.csv"))
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("rejects set without id", func(t *testing.T) {
		err := repo.SaveProgress(ctx, core.LearningSet{Name: "anonymous"})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})
}

func TestProgressSurvivesContentEdit(t *testing.T) {
	repo, deckPath := setupRepo(t)
	writeDeck(t, deckPath, "chem.csv", "front,back,tags\nH2O?,Water,chemistry\n")
	ctx := context.Background()

	set, err := repo.Get(ctx, "chem.csv")
	require.NoError(t, err)
	set.Cards[0].Box = 2
	set.Cards[0].LastReviewed = time.Now()
	set.Cards[0].Reviews = 1
	require.NoError(t, repo.SaveProgress(ctx, set))

	// Appending a card keeps the existing card's derived ID, so its
	// progress must survive the edit.
	writeDeck(t, deckPath, "chem.csv", "front,back,tags\nH2O?,Water,chemistry\nNaCl?,Salt,chemistry\n")

	reloaded, err := repo.Get(ctx, "chem.csv")
	require.NoError(t, err)
	require.Len(t, reloaded.Cards, 2)
	assert.Equal(t, 2, reloaded.Cards[0].Box)
	assert.Equal(t, 1, reloaded.Cards[1].Box)
}

func TestIndex(t *testing.T) {
	repo, deckPath := setupRepo(t)
	seedDecks(t, deckPath)
	ctx := context.Background()

	infos, err := repo.Index(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.Equal(t, "capitals.json", infos[0].ID)
	assert.Equal(t, "Biology Basics", infos[0].Name)
	assert.Equal(t, 2, infos[0].Cards)
	assert.Equal(t, 1, infos[0].Questions)

	t.Run("prunes removed sets", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(deckPath, "chem.csv")))

		infos, err := repo.Index(ctx)
		require.NoError(t, err)
		assert.Len(t, infos, 2)
	})
}

func TestWatch(t *testing.T) {
	repo, deckPath := setupRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := repo.Watch(ctx, "")
	require.NoError(t, err)

	writeDeck(t, deckPath, "fresh.json", `{"cards": [{"front": "a", "back": "b"}]}`)

	select {
	case ev := <-events:
		assert.Equal(t, "fresh.json", ev.Set)
		assert.Contains(t, []core.EventType{core.EventCreate, core.EventModify}, ev.Type)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for deck event")
	}

	t.Run("channel closes on cancel", func(t *testing.T) {
		cancel()
		select {
		case _, ok := <-events:
			for ok {
				_, ok = <-events
			}
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for channel close")
		}
	})
}

func TestWatchIgnoresSystemDir(t *testing.T) {
	repo, deckPath := setupRepo(t)
	seedDecks(t, deckPath)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := repo.Watch(ctx, "")
	require.NoError(t, err)

	// Progress writes land in the system dir and must not surface as deck
	// changes.
	set, err := repo.Get(ctx, "chem.csv")
	require.NoError(t, err)
	require.NoError(t, repo.SaveProgress(ctx, set))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event for system dir write: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}
