// Package sync fetches GData feeds, parses them with the service's entry
// type and archives the result.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"

	"github.com/jdholdren/gdata"
	"github.com/jdholdren/gdata/calendar"
	"github.com/jdholdren/gdata/contacts"
	"github.com/jdholdren/gdata/documents"
	"github.com/jdholdren/gdata/internal/archive"
	"github.com/jdholdren/gdata/internal/fetch"
	"github.com/jdholdren/gdata/logger"
	"github.com/jdholdren/gdata/picasaweb"
	"github.com/jdholdren/gdata/youtube"
)

// Services that can be synced.
const (
	ServiceAtom      = "atom"
	ServiceCalendar  = "calendar"
	ServiceContacts  = "contacts"
	ServiceDocuments = "documents"
	ServiceYouTube   = "youtube"
	ServicePicasaWeb = "picasaweb"
)

// Source is one feed to sync and the service that serves it.
type Source struct {
	Service string
	URL     string
}

// ParseSources reads service=url pairs.
func ParseSources(pairs []string) ([]Source, error) {
	sources := make([]Source, 0, len(pairs))
	for _, p := range pairs {
		service, url, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || url == "" {
			return nil, fmt.Errorf("feed %q is not of the form service=url", p)
		}
		if _, ok := parsers[service]; !ok {
			return nil, fmt.Errorf("unknown service %q", service)
		}
		sources = append(sources, Source{Service: service, URL: url})
	}
	return sources, nil
}

type Fetcher interface {
	Get(ctx context.Context, url string) (fetch.Document, error)
}

type Syncer struct {
	fetcher Fetcher
	repo    archive.Repository
	sched   gdata.Scheduler
}

// NewSyncer builds a syncer. Per entry progress is delivered through sched,
// which may be nil to go without.
func NewSyncer(f Fetcher, repo archive.Repository, sched gdata.Scheduler) *Syncer {
	return &Syncer{fetcher: f, repo: repo, sched: sched}
}

// SyncAll syncs every source, at most limit at a time. A failing source does
// not stop the others; their errors are joined.
func (s *Syncer) SyncAll(ctx context.Context, sources []Source, limit int) error {
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if _, err := s.Sync(ctx, src); err != nil {
				errs[i] = fmt.Errorf("error syncing %s: %w", src.URL, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Sync fetches one feed and archives its entries, returning how many were
// stored. An unchanged feed stores nothing.
func (s *Syncer) Sync(ctx context.Context, src Source) (int, error) {
	ctx = logger.Feed(ctx, src.Service, src.URL)

	doc, err := s.fetcher.Get(ctx, src.URL)
	if err != nil {
		return 0, fmt.Errorf("error fetching feed: %w", err)
	}
	if doc.NotModified {
		slog.InfoContext(ctx, "feed not modified")
		return 0, nil
	}

	parse, ok := parsers[src.Service]
	if !ok {
		return 0, fmt.Errorf("unknown service %q", src.Service)
	}
	feed, entries, err := parse(ctx, src.URL, doc.Body, s.sched)
	if err != nil {
		return 0, fmt.Errorf("error parsing feed: %w", err)
	}
	feed.Service = src.Service
	feed.SyncedAt = time.Now().UTC()

	if err := s.repo.SaveFeed(ctx, feed); err != nil {
		return 0, err
	}
	if err := s.repo.SaveEntries(ctx, entries); err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "feed synced", "entries", len(entries))
	return len(entries), nil
}

type parseFunc func(ctx context.Context, url string, data []byte, sched gdata.Scheduler) (archive.Feed, []archive.Entry, error)

var parsers = map[string]parseFunc{
	ServiceAtom: func(ctx context.Context, url string, data []byte, sched gdata.Scheduler) (archive.Feed, []archive.Entry, error) {
		f, err := gdata.ParseAtomFeed(data, options[*gdata.Entry](ctx, sched))
		if err != nil {
			return archive.Feed{}, nil, err
		}
		return collect(url, f)
	},
	ServiceCalendar: func(ctx context.Context, url string, data []byte, sched gdata.Scheduler) (archive.Feed, []archive.Entry, error) {
		f, err := calendar.ParseEventFeed(data, options[*calendar.Event](ctx, sched))
		if err != nil {
			return archive.Feed{}, nil, err
		}
		return collect(url, f.Feed)
	},
	ServiceContacts: func(ctx context.Context, url string, data []byte, sched gdata.Scheduler) (archive.Feed, []archive.Entry, error) {
		f, err := contacts.ParseFeed(data, options[*contacts.Contact](ctx, sched))
		if err != nil {
			return archive.Feed{}, nil, err
		}
		return collect(url, f)
	},
	ServiceDocuments: func(ctx context.Context, url string, data []byte, sched gdata.Scheduler) (archive.Feed, []archive.Entry, error) {
		f, err := documents.ParseFeed(data, options[*documents.Document](ctx, sched))
		if err != nil {
			return archive.Feed{}, nil, err
		}
		return collect(url, f)
	},
	ServiceYouTube: func(ctx context.Context, url string, data []byte, sched gdata.Scheduler) (archive.Feed, []archive.Entry, error) {
		f, err := youtube.ParseFeed(data, options[*youtube.Video](ctx, sched))
		if err != nil {
			return archive.Feed{}, nil, err
		}
		return collect(url, f)
	},
	ServicePicasaWeb: func(ctx context.Context, url string, data []byte, sched gdata.Scheduler) (archive.Feed, []archive.Entry, error) {
		f, err := picasaweb.ParseFeed(data, options[*picasaweb.File](ctx, sched))
		if err != nil {
			return archive.Feed{}, nil, err
		}
		return collect(url, f)
	},
}

// ParseEntry reparses an archived entry with its service's type and returns
// the Atom part.
func ParseEntry(service string, data []byte) (*gdata.Entry, error) {
	parse, ok := entryParsers[service]
	if !ok {
		return nil, fmt.Errorf("unknown service %q", service)
	}
	return parse(data)
}

var entryParsers = map[string]func([]byte) (*gdata.Entry, error){
	ServiceAtom:      gdata.ParseEntry,
	ServiceCalendar:  base(calendar.ParseEvent),
	ServiceContacts:  base(contacts.ParseContact),
	ServiceDocuments: base(documents.ParseDocument),
	ServiceYouTube:   base(youtube.ParseVideo),
	ServicePicasaWeb: base(picasaweb.ParseFile),
}

func base[E entry](parse func([]byte) (E, error)) func([]byte) (*gdata.Entry, error) {
	return func(data []byte) (*gdata.Entry, error) {
		e, err := parse(data)
		if err != nil {
			return nil, err
		}
		return e.Base(), nil
	}
}

// entry is what every service entry type offers once it embeds gdata.Entry
// and defines its own XML.
type entry interface {
	gdata.Parsable
	Base() *gdata.Entry
	XML() (string, error)
}

func options[E entry](ctx context.Context, sched gdata.Scheduler) gdata.FeedOptions[E] {
	if sched == nil {
		return gdata.FeedOptions[E]{}
	}

	return gdata.FeedOptions[E]{
		Scheduler: sched,
		Progress: func(e E, index, total uint64) {
			slog.DebugContext(ctx, "entry parsed", "title", e.Base().Title, "index", index, "total", total)
		},
	}
}

func collect[E entry](url string, f *gdata.Feed[E]) (archive.Feed, []archive.Entry, error) {
	feed := archive.Feed{
		URL:          url,
		Title:        f.Title,
		AtomID:       f.ID,
		ETag:         f.ETag,
		TotalResults: f.TotalResults,
	}

	entries := make([]archive.Entry, 0, len(f.Entries))
	for _, e := range f.Entries {
		base := e.Base()
		if base.ID == "" {
			slog.Warn("skipping entry without id", "title", base.Title)
			continue
		}

		xml, err := e.XML()
		if err != nil {
			return archive.Feed{}, nil, fmt.Errorf("error serializing entry %s: %w", base.ID, err)
		}

		a := archive.Entry{
			FeedURL: url,
			AtomID:  base.ID,
			ETag:    base.ETag,
			Title:   sanitize(base.Title),
			Snippet: snippet(base),
			XML:     xml,
		}
		if !base.Updated.IsZero() {
			updated := base.Updated.UTC()
			a.UpdatedAt = &updated
		}
		entries = append(entries, a)
	}

	return feed, entries, nil
}

func snippet(e *gdata.Entry) string {
	if e.Summary != "" {
		return sanitize(e.Summary)
	}
	if !e.ContentIsURI {
		return sanitize(e.Content)
	}
	return ""
}

var stripPolicy = bluemonday.StrictPolicy()

// Removes all html tags from the string, usually a description.
//
// Also limits the length of the string so there's not a massive chunk of text being output.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = stripPolicy.Sanitize(s)
	if len(s) > 2048 {
		// Cut on a rune boundary
		n := 2048
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n]
	}

	return s
}
