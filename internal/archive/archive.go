// Package archive describes the stored copy of synced feeds and entries.
package archive

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("resource not found")

type (
	Repository interface {
		Feed(ctx context.Context, url string) (Feed, error)
		SaveFeed(ctx context.Context, f Feed) error
		SaveEntries(ctx context.Context, entries []Entry) error
		Entries(ctx context.Context, q EntriesQuery) ([]Entry, error)
		Entry(ctx context.Context, id string) (Entry, error)
	}

	// Feed is the last synced state of one feed.
	Feed struct {
		URL          string    `db:"url"`
		Service      string    `db:"service"`
		Title        string    `db:"title"`
		AtomID       string    `db:"atom_id"`
		ETag         string    `db:"etag"`
		TotalResults uint64    `db:"total_results"`
		SyncedAt     time.Time `db:"synced_at"`
	}

	// Entry is one archived entry, keyed by its feed and Atom id.
	Entry struct {
		ID        string     `db:"id"`
		FeedURL   string     `db:"feed_url"`
		AtomID    string     `db:"atom_id"`
		ETag      string     `db:"etag"`
		Title     string     `db:"title"`
		Snippet   string     `db:"snippet"`
		UpdatedAt *time.Time `db:"updated_at"`
		XML       string     `db:"xml"`
		CreatedAt time.Time  `db:"created_at"`
	}

	// EntriesQuery narrows a listing. Zero fields do not filter.
	EntriesQuery struct {
		FeedURL      string
		UpdatedSince time.Time
		Limit        uint64
	}
)
