// Package gdata models the GData flavour of Atom: entries, feeds and the
// value types they carry, with a bidirectional mapping to XML that service
// packages extend with their own namespaced elements.
package gdata

import (
	"sort"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata/internal/xmlutil"
)

// Parsable is anything that can be read from and written to an <entry>.
//
// Implementations that embed another Parsable chain to it explicitly:
// ParseElement falls back to the embedded type for elements it does not
// recognise, EmitBody writes the embedded body first, and Namespaces lets
// the embedded type contribute before adding its own prefixes.
type Parsable interface {
	// ParseElement applies one child element of the entry.
	ParseElement(el *etree.Element) error
	// EmitBody appends the entry's children (and root attributes) to el.
	EmitBody(el *etree.Element)
	// Namespaces adds every prefix EmitBody uses to ns.
	Namespaces(ns map[string]string)
}

// RootParser is implemented by types that read attributes off the <entry>
// element itself before its children are walked.
type RootParser interface {
	ParseRoot(el *etree.Element) error
}

// DecodeElement folds the children of el into v in document order. The
// first failing child aborts the decode.
func DecodeElement(el *etree.Element, v Parsable) error {
	if rp, ok := v.(RootParser); ok {
		if err := rp.ParseRoot(el); err != nil {
			return err
		}
	}

	for _, child := range el.ChildElements() {
		if err := v.ParseElement(child); err != nil {
			return err
		}
	}
	return nil
}

// Unmarshal parses a standalone <entry> document into v.
func Unmarshal(data []byte, v Parsable) error {
	root, err := xmlutil.ReadRoot(data, "entry")
	if err != nil {
		return err
	}
	return DecodeElement(root, v)
}

// ParseEntry parses a standalone <entry> document as a plain Atom entry.
func ParseEntry(data []byte) (*Entry, error) {
	e := &Entry{}
	if err := Unmarshal(data, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Marshal serializes v as a standalone <entry> document. Atom is the
// default namespace and every prefix contributed by v is declared once on
// the root, in sorted order.
func Marshal(v Parsable) (string, error) {
	root := etree.NewElement("entry")
	root.CreateAttr("xmlns", NSAtom)

	ns := make(map[string]string)
	v.Namespaces(ns)
	prefixes := make([]string, 0, len(ns))
	for p := range ns {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		root.CreateAttr("xmlns:"+p, ns[p])
	}

	v.EmitBody(root)

	doc := etree.NewDocument()
	doc.SetRoot(root)
	return doc.WriteToString()
}

// EntryFunc builds one typed entry from an <entry> element. It is how a feed
// parse stays ignorant of the concrete entry type.
type EntryFunc[E Parsable] func(el *etree.Element) (E, error)

// Construct returns an EntryFunc that decodes into a fresh value from newE.
func Construct[E Parsable](newE func() E) EntryFunc[E] {
	return func(el *etree.Element) (E, error) {
		e := newE()
		if err := DecodeElement(el, e); err != nil {
			var zero E
			return zero, err
		}
		return e, nil
	}
}
