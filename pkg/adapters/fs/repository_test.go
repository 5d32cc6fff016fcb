package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/loamcal/pkg/adapters/fs"
	"github.com/aretw0/loamcal/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *fs.Repository {
	t.Helper()
	repo := fs.NewRepository(fs.Config{Path: t.TempDir(), AutoInit: true})
	require.NoError(t, repo.Initialize(context.Background()))
	return repo
}

func TestRepository_SaveGet(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	doc := core.Document{
		ID:      "$:/config/NewJournal/Title",
		Content: "YYYY-0MM-0DD",
	}
	require.NoError(t, repo.Save(ctx, doc))

	_, err := os.Stat(filepath.Join(repo.Path, "$%3A", "config", "NewJournal", "Title.md"))
	require.NoError(t, err)

	got, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, doc.Content, got.Content)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_ListSkinnyOnCacheHit(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Save(ctx, core.Document{
		ID:       "Standup",
		Content:  "Daily sync",
		Metadata: core.Metadata{"startDate": "20240101090000000", "caption": "Standup"},
	}))

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, docs[0].IsSkinny(), "saved document is indexed, listing should be served from cache")
	assert.Equal(t, "", docs[0].Content)
	assert.Equal(t, "20240101090000000", docs[0].String("startDate"))

	// A file written behind the repository's back is parsed in full.
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path, "Review.md"), []byte("---\ncaption: Review\n---\nNotes"), 0644))
	docs, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		if d.ID == "Review" {
			assert.False(t, d.IsSkinny())
			assert.Equal(t, "Notes", d.Content)
		}
	}

	state := repo.State().(fs.RepositoryState)
	assert.Equal(t, 2, state.Listed)
	assert.Equal(t, 1, state.Skinny)
	assert.NotNil(t, state.LastReconcile)
}

func TestRepository_ListSkipsHiddenAndTemp(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, os.MkdirAll(filepath.Join(repo.Path, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path, ".git", "HEAD.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path, fs.TempFilePrefix+"1.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path, "image.png"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path, "Event.md"), []byte("x"), 0644))

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Event", docs[0].ID)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Save(ctx, core.Document{ID: "events/lunch", Content: "x"}))
	require.NoError(t, repo.Delete(ctx, "events/lunch"))
	_, err := repo.Get(ctx, "events/lunch")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "events/lunch"), core.ErrNotFound)
}

func TestRepository_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Event.md"), []byte("body"), 0644))

	repo := fs.NewRepository(fs.Config{Path: dir, ReadOnly: true})
	require.NoError(t, repo.Initialize(ctx))

	assert.ErrorIs(t, repo.Save(ctx, core.Document{ID: "x"}), core.ErrReadOnly)
	assert.ErrorIs(t, repo.Delete(ctx, "Event"), core.ErrReadOnly)

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	_, err = os.Stat(filepath.Join(dir, ".loam", "index.json"))
	assert.True(t, os.IsNotExist(err), "read-only repository must not write its index")

	missing := fs.NewRepository(fs.Config{Path: filepath.Join(dir, "nope"), ReadOnly: true})
	assert.Error(t, missing.Initialize(ctx))
}

func TestRepository_Watch(t *testing.T) {
	if testing.Short() {
		t.Skip("watch test uses real filesystem notifications")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := newRepo(t)

	events, err := repo.Watch(ctx, "events/**")
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(repo.Path, "events"), 0755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path, "ignored.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path, "events", "standup.md"), []byte("x"), 0644))

	select {
	case e := <-events:
		assert.Equal(t, "events/standup", e.ID)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}

	state := repo.State().(fs.RepositoryState)
	assert.True(t, state.WatcherActive)

	cancel()
	for range events {
	}
	_, err = repo.Watch(context.Background(), "[")
	assert.Error(t, err)
}
