// Package documents maps Google Documents List entries. A feed mixes
// several kinds of resource; each entry is classified by its resource id
// before it is decoded.
package documents

import (
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	gdataerrs "github.com/jdholdren/gdata/errors"
	"github.com/jdholdren/gdata/gd"
	"github.com/jdholdren/gdata/internal/xmlutil"
)

const Prefix = "docs"

// Kind is the type of resource an entry describes.
type Kind int

const (
	KindUnknown Kind = iota
	Text
	Spreadsheet
	Presentation
	Folder
)

var kinds = []struct {
	kind   Kind
	prefix string // resource id prefix, also the kind label
}{
	{Text, "document"},
	{Spreadsheet, "spreadsheet"},
	{Presentation, "presentation"},
	{Folder, "folder"},
}

func (k Kind) String() string {
	for _, d := range kinds {
		if d.kind == k {
			return d.prefix
		}
	}
	return "unknown"
}

// Term is the gd#kind category term for k.
func (k Kind) Term() string {
	return gdata.NSDocuments + "#" + k.String()
}

// exportFormats lists what each kind can be downloaded as.
var exportFormats = map[Kind][]string{
	Text:         {"doc", "html", "odt", "pdf", "png", "rtf", "txt", "zip"},
	Spreadsheet:  {"csv", "html", "ods", "pdf", "tsv", "xls"},
	Presentation: {"pdf", "png", "ppt", "swf", "txt"},
}

// Classify decides the kind of an <entry> element from the text of its
// <gd:resourceId>, the part before the colon. Resource ids of kinds this
// package does not model yield KindUnknown and no error.
func Classify(el *etree.Element) (Kind, error) {
	kind, _, err := classify(el)
	return kind, err
}

func classify(el *etree.Element) (Kind, string, error) {
	var idEl *etree.Element
	for _, child := range el.ChildElements() {
		if !gd.Is(child, "resourceId") {
			continue
		}
		if idEl != nil {
			return KindUnknown, "", xmlutil.Duplicate(child, "entry")
		}
		idEl = child
	}
	if idEl == nil {
		return KindUnknown, "", xmlutil.Missing("gd:resourceId", "entry")
	}

	id := idEl.Text()
	prefix, _, ok := strings.Cut(id, ":")
	if !ok || prefix == "" {
		return KindUnknown, id, gdataerrs.E(gdataerrs.UnknownContent,
			gdataerrs.Prefix(idEl.Space), gdataerrs.Element(idEl.Tag), gdataerrs.Parent("entry"), gdataerrs.Value(id))
	}

	for _, d := range kinds {
		if d.prefix == prefix {
			return d.kind, id, nil
		}
	}
	return KindUnknown, id, nil
}

// Document is one resource in a documents feed.
type Document struct {
	gdata.Entry

	Kind       Kind
	ResourceID string

	Edited           time.Time
	LastViewed       time.Time
	LastModifiedBy   *gdata.Author
	WritersCanInvite bool
	Deleted          bool
	QuotaBytesUsed   uint64
	FeedLinks        []gd.FeedLink
}

var _ gdata.Parsable = (*Document)(nil)

// NewDocument makes a client-authored resource of the given kind.
func NewDocument(kind Kind, title string) *Document {
	return &Document{Entry: *gdata.NewEntry(title), Kind: kind}
}

// ParseDocument parses a standalone <entry>, classifying it first.
func ParseDocument(data []byte) (*Document, error) {
	root, err := xmlutil.ReadRoot(data, "entry")
	if err != nil {
		return nil, err
	}

	kind, id, err := classify(root)
	if err != nil {
		return nil, err
	}
	if kind == KindUnknown {
		return nil, unsupported(id)
	}

	d := &Document{Kind: kind}
	if err := gdata.DecodeElement(root, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ParseFeed parses a documents list feed. Entries of kinds this package does
// not model are left out.
func ParseFeed(data []byte, opts gdata.FeedOptions[*Document]) (*gdata.Feed[*Document], error) {
	return gdata.ParseFeed(data, newEntry, opts)
}

func newEntry(el *etree.Element) (*Document, error) {
	kind, id, err := classify(el)
	if err != nil {
		return nil, err
	}
	if kind == KindUnknown {
		slog.Warn("skipping document of unsupported kind", "resource_id", id)
		return nil, gdata.ErrSkipEntry
	}

	d := &Document{Kind: kind}
	if err := gdata.DecodeElement(el, d); err != nil {
		return nil, err
	}
	return d, nil
}

func unsupported(id string) error {
	return gdataerrs.E(gdataerrs.UnknownContent,
		gdataerrs.Prefix("gd"), gdataerrs.Element("resourceId"), gdataerrs.Parent("entry"), gdataerrs.Value(id))
}

func isDocs(el *etree.Element, local string) bool {
	return xmlutil.Is(el, gdata.NSDocuments, local)
}

func (d *Document) ParseElement(el *etree.Element) error {
	var err error
	switch {
	case gd.Is(el, "resourceId"):
		d.ResourceID = el.Text()
	case isDocs(el, "writersCanInvite"):
		if _, err = gd.ParseValue(el); err == nil {
			d.WritersCanInvite, err = xmlutil.BoolAttr(el, "value", false)
		}
	case gd.Is(el, "lastViewed"):
		d.LastViewed, err = xmlutil.TimeText(el, "entry")
	case gd.Is(el, "lastModifiedBy"):
		var a gdata.Author
		if a, err = gdata.ParseAuthor(el); err == nil {
			d.LastModifiedBy = &a
		}
	case gd.Is(el, "quotaBytesUsed"):
		d.QuotaBytesUsed, err = xmlutil.UintText(el, "entry")
	case gd.Is(el, "feedLink"):
		var fl gd.FeedLink
		if fl, err = gd.ParseFeedLink(el); err == nil {
			d.FeedLinks = append(d.FeedLinks, fl)
		}
	case gd.Is(el, "deleted"):
		d.Deleted, err = gd.ParseDeleted(el)
	case xmlutil.Is(el, gdata.NSApp, "edited"):
		d.Edited, err = xmlutil.TimeText(el, "entry")
	default:
		return gdataerrs.Reparent(d.Entry.ParseElement(el), el.Space, el.Tag, "entry")
	}

	return err
}

// DocumentID is the resource id without its kind prefix.
func (d *Document) DocumentID() string {
	_, id, ok := strings.Cut(d.ResourceID, ":")
	if !ok {
		return d.ResourceID
	}
	return id
}

// ExportURI returns where to download the resource in the given format.
// Folders cannot be downloaded.
func (d *Document) ExportURI(format string) (string, error) {
	formats, ok := exportFormats[d.Kind]
	if !ok {
		return "", fmt.Errorf("%s resources cannot be exported", d.Kind)
	}
	if !slices.Contains(formats, format) {
		return "", fmt.Errorf("%s resources cannot be exported as %q", d.Kind, format)
	}
	if !d.ContentIsURI || d.Content == "" {
		return "", fmt.Errorf("resource %q has no content location", d.ResourceID)
	}

	u, err := url.Parse(d.Content)
	if err != nil {
		return "", fmt.Errorf("error parsing content location: %w", err)
	}
	q := u.Query()
	q.Set("exportFormat", format)
	if d.Kind == Spreadsheet {
		q.Set("format", format)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (d *Document) hasKindCategory() bool {
	for _, c := range d.Categories {
		if c.Scheme == gdata.KindScheme {
			return true
		}
	}
	return false
}

func (d *Document) EmitBody(el *etree.Element) {
	d.Entry.EmitBody(el)

	if d.Kind != KindUnknown && !d.hasKindCategory() {
		gdata.Category{Term: d.Kind.Term(), Scheme: gdata.KindScheme, Label: d.Kind.String()}.AppendTo(el)
	}
	if d.ResourceID != "" {
		xmlutil.AddText(el, "gd:resourceId", d.ResourceID)
	}
	if d.WritersCanInvite {
		xmlutil.AddValue(el, "docs:writersCanInvite", xmlutil.FormatBool(true))
	}
	if !d.LastViewed.IsZero() {
		xmlutil.AddText(el, "gd:lastViewed", xmlutil.FormatTime(d.LastViewed))
	}
	if d.LastModifiedBy != nil {
		d.LastModifiedBy.AppendAs(el, "gd:lastModifiedBy")
	}
	if d.QuotaBytesUsed > 0 {
		xmlutil.AddText(el, "gd:quotaBytesUsed", fmt.Sprint(d.QuotaBytesUsed))
	}
	for _, fl := range d.FeedLinks {
		fl.AppendTo(el)
	}
	gd.AppendDeleted(el, d.Deleted)
	if !d.Edited.IsZero() {
		xmlutil.AddText(el, "app:edited", xmlutil.FormatTime(d.Edited))
	}
}

func (d *Document) Namespaces(ns map[string]string) {
	d.Entry.Namespaces(ns)

	gd.Declare(ns)
	if d.WritersCanInvite {
		ns[Prefix] = gdata.NSDocuments
	}
	if !d.Edited.IsZero() {
		ns["app"] = gdata.NSApp
	}
}

// XML serializes the resource as a standalone <entry> document.
func (d *Document) XML() (string, error) {
	return gdata.Marshal(d)
}
