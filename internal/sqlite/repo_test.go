package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/gdata/internal/archive"
	"github.com/jdholdren/gdata/internal/migrations"
)

func newRepo(t *testing.T) Repo {
	t.Helper()

	dbx, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })
	require.NoError(t, migrations.Run(dbx))

	return New(dbx)
}

func ptr[T any](v T) *T {
	return &v
}

func TestFeed(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.Feed(ctx, "http://example.com/feed")
	assert.ErrorIs(t, err, archive.ErrNotFound)

	synced := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f := archive.Feed{URL: "http://example.com/feed", Service: "calendar", Title: "Events", AtomID: "urn:1", SyncedAt: synced}
	require.NoError(t, repo.SaveFeed(ctx, f))

	f.Title = "Renamed"
	f.ETag = `W/"x"`
	f.TotalResults = 4
	require.NoError(t, repo.SaveFeed(ctx, f))

	got, err := repo.Feed(ctx, f.URL)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, `W/"x"`, got.ETag)
	assert.EqualValues(t, 4, got.TotalResults)
	assert.True(t, synced.Equal(got.SyncedAt))
}

func TestEntries(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	const feedURL = "http://example.com/feed"
	require.NoError(t, repo.SaveFeed(ctx, archive.Feed{URL: feedURL, Service: "atom", Title: "t", AtomID: "urn:f", SyncedAt: time.Now().UTC()}))

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveEntries(ctx, []archive.Entry{
		{FeedURL: feedURL, AtomID: "urn:a", Title: "A", Snippet: "first", UpdatedAt: ptr(jan), XML: "<entry/>"},
		{FeedURL: feedURL, AtomID: "urn:b", Title: "B", UpdatedAt: ptr(feb), XML: "<entry/>"},
	}))

	all, err := repo.Entries(ctx, archive.EntriesQuery{FeedURL: feedURL})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[0].Title)
	assert.Equal(t, "A", all[1].Title)
	assert.Equal(t, "first", all[1].Snippet)

	recent, err := repo.Entries(ctx, archive.EntriesQuery{FeedURL: feedURL, UpdatedSince: feb})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "urn:b", recent[0].AtomID)

	// 01:00 at +02:00 is 23:00 UTC the day before, so feb is still in range.
	plusTwo := time.FixedZone("+0200", 2*60*60)
	recent, err = repo.Entries(ctx, archive.EntriesQuery{FeedURL: feedURL, UpdatedSince: time.Date(2024, 2, 1, 1, 0, 0, 0, plusTwo)})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "urn:b", recent[0].AtomID)

	// Resaving the same Atom id replaces the content, not the row.
	require.NoError(t, repo.SaveEntries(ctx, []archive.Entry{
		{FeedURL: feedURL, AtomID: "urn:a", Title: "A2", UpdatedAt: ptr(feb), XML: "<entry/>"},
	}))
	all, err = repo.Entries(ctx, archive.EntriesQuery{FeedURL: feedURL, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 2)

	byID, err := repo.Entry(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, all[0].Title, byID.Title)

	_, err = repo.Entry(ctx, "missing")
	assert.ErrorIs(t, err, archive.ErrNotFound)
}

func TestSaveEntries_Empty(t *testing.T) {
	assert.NoError(t, newRepo(t).SaveEntries(context.Background(), nil))
}
