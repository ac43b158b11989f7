package gdata

import (
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata/internal/xmlutil"
)

// Entry is a single Atom <entry>: one snapshot of a remote resource.
//
// Service types embed Entry and override ParseElement, EmitBody and
// Namespaces, calling the Entry versions explicitly to chain.
type Entry struct {
	Title string
	ID    string // Server assigned, empty until the resource exists remotely
	ETag  string

	Updated   time.Time
	Published time.Time

	Summary string
	Rights  string

	// Content is either inline text or, when ContentIsURI is set, the src of
	// out-of-line content.
	Content      string
	ContentIsURI bool

	Categories []Category
	Links      []Link
	Authors    []Author
}

var (
	_ Parsable   = (*Entry)(nil)
	_ RootParser = (*Entry)(nil)
)

// NewEntry makes a client-authored entry with the given title.
func NewEntry(title string) *Entry {
	return &Entry{Title: title}
}

// IsInserted reports whether the entry has a server identity: an id, at
// least one link and an updated time. It is derived on every call.
func (e *Entry) IsInserted() bool {
	return e.ID != "" && len(e.Links) > 0 && !e.Updated.IsZero()
}

// Base returns the Atom part of e. Service types promote it, so code generic
// over entries can reach the shared fields.
func (e *Entry) Base() *Entry {
	return e
}

// AddCategory appends c.
func (e *Entry) AddCategory(c Category) {
	e.Categories = append(e.Categories, c)
}

// AddLink appends l.
func (e *Entry) AddLink(l Link) {
	e.Links = append(e.Links, l)
}

// AddAuthor appends a.
func (e *Entry) AddAuthor(a Author) {
	e.Authors = append(e.Authors, a)
}

// LookupLink returns the first link with the given rel.
func (e *Entry) LookupLink(rel string) (Link, bool) {
	for _, l := range e.Links {
		if l.Rel == rel {
			return l, true
		}
	}
	return Link{}, false
}

// SetContentURI points the content at out-of-line data.
func (e *Entry) SetContentURI(src string) {
	e.Content = src
	e.ContentIsURI = true
}

// ParseRoot reads the attributes of the <entry> element itself.
func (e *Entry) ParseRoot(el *etree.Element) error {
	if v, ok := xmlutil.AttrNS(el, NSGData, "etag"); ok {
		e.ETag = v
	}
	return nil
}

// ParseElement applies one child of <entry>.
func (e *Entry) ParseElement(el *etree.Element) error {
	switch {
	case xmlutil.Is(el, NSAtom, "title"):
		e.Title = el.Text()
	case xmlutil.Is(el, NSAtom, "id"):
		e.ID = el.Text()
	case xmlutil.Is(el, NSAtom, "updated"):
		t, err := xmlutil.TimeText(el, "entry")
		if err != nil {
			return err
		}
		e.Updated = t
	case xmlutil.Is(el, NSAtom, "published"):
		t, err := xmlutil.TimeText(el, "entry")
		if err != nil {
			return err
		}
		e.Published = t
	case xmlutil.Is(el, NSAtom, "summary"):
		e.Summary = el.Text()
	case xmlutil.Is(el, NSAtom, "rights"):
		e.Rights = el.Text()
	case xmlutil.Is(el, NSAtom, "category"):
		c, err := ParseCategory(el)
		if err != nil {
			return err
		}
		e.Categories = append(e.Categories, c)
	case xmlutil.Is(el, NSAtom, "content"):
		e.Content = el.Text()
		e.ContentIsURI = false
		if e.Content == "" {
			if src, ok := xmlutil.Attr(el, "src"); ok {
				e.SetContentURI(src)
			}
		}
	case xmlutil.Is(el, NSAtom, "link"):
		e.Links = append(e.Links, ParseLink(el))
	case xmlutil.Is(el, NSAtom, "author"):
		a, err := ParseAuthor(el)
		if err != nil {
			return err
		}
		e.Authors = append(e.Authors, a)
	default:
		return xmlutil.Unhandled(el, "entry")
	}

	return nil
}

// EmitBody writes the Atom fields of the entry into el, the <entry>
// element.
func (e *Entry) EmitBody(el *etree.Element) {
	if e.ETag != "" {
		el.CreateAttr("gd:etag", e.ETag)
	}

	title := xmlutil.AddText(el, "title", e.Title)
	title.CreateAttr("type", "text")

	if e.ID != "" {
		xmlutil.AddText(el, "id", e.ID)
	}
	if !e.Updated.IsZero() {
		xmlutil.AddText(el, "updated", xmlutil.FormatTime(e.Updated))
	}
	if !e.Published.IsZero() {
		xmlutil.AddText(el, "published", xmlutil.FormatTime(e.Published))
	}
	if e.Summary != "" {
		xmlutil.AddText(el, "summary", e.Summary).CreateAttr("type", "text")
	}
	if e.ContentIsURI {
		el.CreateElement("content").CreateAttr("src", e.Content)
	} else if e.Content != "" {
		xmlutil.AddText(el, "content", e.Content).CreateAttr("type", "text")
	}
	if e.Rights != "" {
		xmlutil.AddText(el, "rights", e.Rights)
	}

	for _, c := range e.Categories {
		c.AppendTo(el)
	}
	for _, l := range e.Links {
		l.AppendTo(el)
	}
	for _, a := range e.Authors {
		a.AppendTo(el)
	}
}

// Namespaces adds the prefixes the Atom fields need beyond the default
// namespace.
func (e *Entry) Namespaces(ns map[string]string) {
	if e.ETag != "" {
		ns["gd"] = NSGData
	}
}

// XML serializes the entry as a standalone <entry> document.
func (e *Entry) XML() (string, error) {
	return Marshal(e)
}
