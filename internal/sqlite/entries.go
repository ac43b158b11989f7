package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/jdholdren/gdata/internal/archive"
)

const entryNamespace = "-ntry"

func (r Repo) Feed(ctx context.Context, url string) (archive.Feed, error) {
	const q = `SELECT * FROM feeds WHERE url = ?;`

	var feed archive.Feed
	err := r.db.GetContext(ctx, &feed, q, url)
	if errors.Is(err, sql.ErrNoRows) {
		return archive.Feed{}, archive.ErrNotFound
	}
	if err != nil {
		return archive.Feed{}, fmt.Errorf("error fetching feed: %w", err)
	}

	return feed, nil
}

// SaveFeed inserts f or replaces the stored state of the same url.
func (r Repo) SaveFeed(ctx context.Context, f archive.Feed) error {
	const q = `INSERT INTO feeds (url, service, title, atom_id, etag, total_results, synced_at)
	VALUES (:url, :service, :title, :atom_id, :etag, :total_results, :synced_at)
	ON CONFLICT(url) DO UPDATE SET
		service = excluded.service,
		title = excluded.title,
		atom_id = excluded.atom_id,
		etag = excluded.etag,
		total_results = excluded.total_results,
		synced_at = excluded.synced_at;`

	if _, err := r.db.NamedExecContext(ctx, q, f); err != nil {
		return fmt.Errorf("error saving feed: %w", err)
	}
	return nil
}

// SaveEntries stores entries, replacing any already archived under the same
// feed and Atom id. The archive id of a replaced entry is kept.
func (r Repo) SaveEntries(ctx context.Context, entries []archive.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	// Create id's for the entries
	for i := range entries {
		entries[i].ID = uuid.NewString() + entryNamespace
	}

	const q = `INSERT INTO entries (id, feed_url, atom_id, etag, title, snippet, updated_at, xml)
	VALUES (:id, :feed_url, :atom_id, :etag, :title, :snippet, :updated_at, :xml)
	ON CONFLICT(feed_url, atom_id) DO UPDATE SET
		etag = excluded.etag,
		title = excluded.title,
		snippet = excluded.snippet,
		updated_at = excluded.updated_at,
		xml = excluded.xml;`
	if _, err := r.db.NamedExecContext(ctx, q, entries); err != nil {
		return fmt.Errorf("error saving entries: %w", err)
	}

	return nil
}

func (r Repo) Entry(ctx context.Context, id string) (archive.Entry, error) {
	const q = `SELECT * FROM entries WHERE id = ?;`

	var entry archive.Entry
	err := r.db.GetContext(ctx, &entry, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return archive.Entry{}, archive.ErrNotFound
	}
	if err != nil {
		return archive.Entry{}, fmt.Errorf("error fetching entry: %w", err)
	}

	return entry, nil
}

// Entries lists archived entries, most recently updated first.
func (r Repo) Entries(ctx context.Context, args archive.EntriesQuery) ([]archive.Entry, error) {
	q := sq.Select("*").From("entries").OrderBy("updated_at DESC", "atom_id")
	if args.FeedURL != "" {
		q = q.Where(sq.Eq{"feed_url": args.FeedURL})
	}
	if !args.UpdatedSince.IsZero() {
		// updated_at is stored in UTC and compared as text
		q = q.Where(sq.GtOrEq{"updated_at": args.UpdatedSince.UTC()})
	}
	if args.Limit > 0 {
		q = q.Limit(args.Limit)
	}

	query, qArgs, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	entries := []archive.Entry{}
	if err := r.db.SelectContext(ctx, &entries, query, qArgs...); err != nil {
		return nil, fmt.Errorf("error fetching entries: %w", err)
	}

	return entries, nil
}
