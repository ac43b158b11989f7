package gdata

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata/internal/xmlutil"
)

// Category is an Atom <category>.
type Category struct {
	Term   string
	Scheme string
	Label  string
}

// Link is an Atom <link>. Rel defaults to "alternate" and Length to -1 when
// the attributes are absent.
type Link struct {
	Href     string
	Rel      string
	Type     string
	HrefLang string
	Title    string
	Length   int64
}

// NewLink makes a link with the defaults a parsed link would have.
func NewLink(href, rel string) Link {
	if rel == "" {
		rel = RelAlternate
	}
	return Link{Href: href, Rel: rel, Length: -1}
}

// Link relations used by the services.
const (
	RelAlternate = "alternate"
	RelSelf      = "self"
	RelEdit      = "edit"
	RelEditMedia = "edit-media"
	RelRelated   = "related"
	RelFeed      = NSGData + "#feed"
	RelPost      = NSGData + "#post"
	RelBatch     = NSGData + "#batch"
)

// Author is an Atom <author>.
type Author struct {
	Name  string
	URI   string
	Email string
}

// Generator is an Atom <generator>.
type Generator struct {
	Name    string
	URI     string
	Version string
}

// ParseCategory reads a <category> element. term is required.
func ParseCategory(el *etree.Element) (Category, error) {
	term, err := xmlutil.RequireAttr(el, "term")
	if err != nil {
		return Category{}, err
	}

	scheme, _ := xmlutil.Attr(el, "scheme")
	label, _ := xmlutil.Attr(el, "label")
	return Category{Term: term, Scheme: scheme, Label: label}, nil
}

// AppendTo writes c as a child of parent.
func (c Category) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("category")
	el.CreateAttr("term", c.Term)
	xmlutil.AddAttr(el, "scheme", c.Scheme)
	xmlutil.AddAttr(el, "label", c.Label)
}

// ParseLink reads a <link> element. A missing href leaves Href empty.
func ParseLink(el *etree.Element) Link {
	href, _ := xmlutil.Attr(el, "href")
	rel, ok := xmlutil.Attr(el, "rel")
	if !ok {
		rel = RelAlternate
	}
	typ, _ := xmlutil.Attr(el, "type")
	hreflang, _ := xmlutil.Attr(el, "hreflang")
	title, _ := xmlutil.Attr(el, "title")

	length := int64(-1)
	if v, ok := xmlutil.Attr(el, "length"); ok {
		if n, err := strconv.ParseUint(v, 10, 63); err == nil {
			length = int64(n)
		}
	}

	return Link{
		Href:     href,
		Rel:      rel,
		Type:     typ,
		HrefLang: hreflang,
		Title:    title,
		Length:   length,
	}
}

// AppendTo writes l as a child of parent.
func (l Link) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("link")
	el.CreateAttr("href", l.Href)
	xmlutil.AddAttr(el, "rel", l.Rel)
	xmlutil.AddAttr(el, "type", l.Type)
	xmlutil.AddAttr(el, "hreflang", l.HrefLang)
	xmlutil.AddAttr(el, "title", l.Title)
	if l.Length >= 0 {
		el.CreateAttr("length", strconv.FormatInt(l.Length, 10))
	}
}

// ParseAuthor reads an <author> element, or any element of the same person
// shape. Its children are strict: anything besides name, uri and email fails
// the parse.
func ParseAuthor(el *etree.Element) (Author, error) {
	var (
		a       Author
		hasName bool
	)
	for _, child := range el.ChildElements() {
		switch {
		case xmlutil.Is(child, NSAtom, "name"):
			a.Name = child.Text()
			hasName = true
		case xmlutil.Is(child, NSAtom, "uri"):
			a.URI = child.Text()
		case xmlutil.Is(child, NSAtom, "email"):
			a.Email = child.Text()
		default:
			return Author{}, xmlutil.Unhandled(child, xmlutil.QName(el))
		}
	}
	if !hasName {
		return Author{}, xmlutil.Missing("name", xmlutil.QName(el))
	}

	return a, nil
}

// AppendTo writes a as an <author> child of parent.
func (a Author) AppendTo(parent *etree.Element) {
	a.AppendAs(parent, "author")
}

// AppendAs writes a as a person-shaped child named tag.
func (a Author) AppendAs(parent *etree.Element, tag string) {
	el := parent.CreateElement(tag)
	xmlutil.AddText(el, "name", a.Name)
	if a.URI != "" {
		xmlutil.AddText(el, "uri", a.URI)
	}
	if a.Email != "" {
		xmlutil.AddText(el, "email", a.Email)
	}
}

// ParseGenerator reads a <generator> element.
func ParseGenerator(el *etree.Element) Generator {
	uri, _ := xmlutil.Attr(el, "uri")
	version, _ := xmlutil.Attr(el, "version")
	return Generator{Name: el.Text(), URI: uri, Version: version}
}
