package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loamcal/internal/platform"
	"github.com/aretw0/loamcal/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FS(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "vault")

	svc, err := platform.New(dir, platform.WithAutoInit(true))
	require.NoError(t, err)
	require.NoError(t, svc.Load(ctx))

	require.NoError(t, svc.AddRecord(core.Document{ID: "Standup", Metadata: core.Metadata{"startDate": "20240101090000000"}}))
	require.NoError(t, svc.SaveRecord(ctx, "Standup"))

	_, err = os.Stat(filepath.Join(dir, "Standup.md"))
	assert.NoError(t, err)
}

func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "calendar.db")

	svc, err := platform.New(path, platform.WithAdapter("sqlite"))
	require.NoError(t, err)
	require.NoError(t, svc.AddRecord(core.Document{ID: "Standup"}))
	require.NoError(t, svc.AutoSave(ctx))

	again, err := platform.New(path, platform.WithAdapter("sqlite"), platform.WithReadOnly(true))
	require.NoError(t, err)
	require.NoError(t, again.Load(ctx))
	_, ok := again.GetRecord("Standup")
	assert.True(t, ok)
	assert.ErrorIs(t, again.AddRecord(core.Document{ID: "x"}), core.ErrReadOnly)
}

func TestNew_UnknownAdapter(t *testing.T) {
	_, err := platform.New(t.TempDir(), platform.WithAdapter("s3"))
	assert.ErrorContains(t, err, "unknown adapter")
}

func TestNew_MustExist(t *testing.T) {
	_, err := platform.New(filepath.Join(t.TempDir(), "missing"), platform.WithMustExist(true))
	assert.Error(t, err)
}

func TestInit_InjectedRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := platform.Init(dir, platform.WithAutoInit(true))
	require.NoError(t, err)

	got, err := platform.Init("ignored", platform.WithRepository(repo), platform.WithAdapter("s3"))
	require.NoError(t, err)
	assert.Same(t, repo, got)
}
