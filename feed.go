package gdata

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata/internal/xmlutil"
)

// ErrSkipEntry may be returned by an EntryFunc to leave an entry out of the
// feed without failing the parse. Skipped entries take no progress index.
var ErrSkipEntry = errors.New("skip entry")

// Feed is a parsed <feed>: typed entries in document order plus the Atom and
// OpenSearch metadata of the query that produced them.
type Feed[E Parsable] struct {
	Title    string
	Subtitle string
	ID       string
	ETag     string
	Updated  time.Time
	Logo     string

	Categories []Category
	Links      []Link
	Authors    []Author
	Generator  *Generator

	ItemsPerPage uint64
	StartIndex   uint64 // 1-based
	TotalResults uint64

	// ExtraXML holds every top-level element the parse did not recognise,
	// serialized back to text and concatenated in document order.
	ExtraXML string

	Entries []E
}

// LookupLink returns the first feed link with the given rel.
func (f *Feed[E]) LookupLink(rel string) (Link, bool) {
	for _, l := range f.Links {
		if l.Rel == rel {
			return l, true
		}
	}
	return Link{}, false
}

// FeedOptions tunes a feed parse.
type FeedOptions[E Parsable] struct {
	// ParseElement gets first refusal on every top-level child that is not an
	// entry. It reports whether it consumed the element.
	ParseElement func(el *etree.Element) (bool, error)

	// Progress is called once per parsed entry with its index and
	// min(ItemsPerPage, TotalResults) as seen so far. It is never called
	// inline: delivery goes through Scheduler, or when that is nil, through a
	// private queue drained after the whole feed parsed successfully.
	Progress func(entry E, index, total uint64)

	Scheduler Scheduler
}

// ParseFeed parses a <feed> document, building each entry with newEntry.
//
// Any failure, including one from a single entry, aborts the whole parse and
// no partial feed is returned.
func ParseFeed[E Parsable](data []byte, newEntry EntryFunc[E], opts FeedOptions[E]) (*Feed[E], error) {
	root, err := xmlutil.ReadRoot(data, "feed")
	if err != nil {
		return nil, err
	}

	sched := opts.Scheduler
	var private *Queue
	if opts.Progress != nil && sched == nil {
		private = NewQueue()
		sched = private
	}

	var (
		f     = &Feed[E]{}
		seen  = make(map[string]bool)
		extra strings.Builder
	)
	if etag, ok := xmlutil.AttrNS(root, NSGData, "etag"); ok {
		f.ETag = etag
	}

	// once guards the single-occurrence elements.
	once := func(el *etree.Element) error {
		if seen[el.Tag] {
			return xmlutil.Duplicate(el, "feed")
		}
		seen[el.Tag] = true
		return nil
	}

	for _, el := range root.ChildElements() {
		if xmlutil.Is(el, NSAtom, "entry") {
			e, err := newEntry(el)
			if errors.Is(err, ErrSkipEntry) {
				continue
			}
			if err != nil {
				return nil, err
			}

			if opts.Progress != nil {
				index, total := uint64(len(f.Entries)), min(f.ItemsPerPage, f.TotalResults)
				sched.Schedule(func() { opts.Progress(e, index, total) })
			}
			f.Entries = append(f.Entries, e)
			continue
		}

		if opts.ParseElement != nil {
			handled, err := opts.ParseElement(el)
			if err != nil {
				return nil, err
			}
			if handled {
				continue
			}
		}

		switch {
		case xmlutil.Is(el, NSAtom, "title"):
			if err := once(el); err != nil {
				return nil, err
			}
			f.Title = el.Text()
		case xmlutil.Is(el, NSAtom, "subtitle"):
			if err := once(el); err != nil {
				return nil, err
			}
			f.Subtitle = el.Text()
		case xmlutil.Is(el, NSAtom, "id"):
			if err := once(el); err != nil {
				return nil, err
			}
			f.ID = el.Text()
		case xmlutil.Is(el, NSAtom, "logo"):
			if err := once(el); err != nil {
				return nil, err
			}
			f.Logo = el.Text()
		case xmlutil.Is(el, NSAtom, "updated"):
			if err := once(el); err != nil {
				return nil, err
			}
			t, err := xmlutil.TimeText(el, "feed")
			if err != nil {
				return nil, err
			}
			f.Updated = t
		case xmlutil.Is(el, NSAtom, "generator"):
			if err := once(el); err != nil {
				return nil, err
			}
			g := ParseGenerator(el)
			f.Generator = &g
		case xmlutil.Is(el, NSAtom, "category"):
			c, err := ParseCategory(el)
			if err != nil {
				return nil, err
			}
			f.Categories = append(f.Categories, c)
		case xmlutil.Is(el, NSAtom, "link"):
			f.Links = append(f.Links, ParseLink(el))
		case xmlutil.Is(el, NSAtom, "author"):
			a, err := ParseAuthor(el)
			if err != nil {
				return nil, err
			}
			f.Authors = append(f.Authors, a)
		case isOpenSearch(el, "totalResults"):
			if err := counter(el, &f.TotalResults); err != nil {
				return nil, err
			}
		case isOpenSearch(el, "startIndex"):
			if err := counter(el, &f.StartIndex); err != nil {
				return nil, err
			}
		case isOpenSearch(el, "itemsPerPage"):
			if err := counter(el, &f.ItemsPerPage); err != nil {
				return nil, err
			}
		default:
			frag, err := xmlutil.Fragment(el)
			if err != nil {
				return nil, err
			}
			extra.WriteString(frag)
		}
	}

	for _, required := range []string{"title", "id", "updated"} {
		if !seen[required] {
			return nil, xmlutil.Missing(required, "feed")
		}
	}
	f.ExtraXML = extra.String()

	slog.Debug("parsed feed", "id", f.ID, "entries", len(f.Entries), "total_results", f.TotalResults)

	if private != nil {
		private.Drain()
	}
	return f, nil
}

// ParseAtomFeed parses a feed of plain Atom entries.
func ParseAtomFeed(data []byte, opts FeedOptions[*Entry]) (*Feed[*Entry], error) {
	return ParseFeed(data, Construct(func() *Entry { return &Entry{} }), opts)
}

func isOpenSearch(el *etree.Element, local string) bool {
	return xmlutil.Is(el, NSOpenSearch, local) || xmlutil.Is(el, NSOpenSearchRSS, local)
}

// counter reads an OpenSearch counter into dst. A counter is only a
// duplicate once a non-zero value has been recorded.
func counter(el *etree.Element, dst *uint64) error {
	if *dst != 0 {
		return xmlutil.Duplicate(el, "feed")
	}

	n, err := xmlutil.UintText(el, "feed")
	if err != nil {
		return err
	}
	*dst = n
	return nil
}
