// Package xmlutil holds the DOM helpers every parser in the module is built
// on: reading documents, matching namespaced elements, pulling typed values
// out of attributes and text, and writing elements back out.
package xmlutil

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	gdataerrs "github.com/jdholdren/gdata/errors"
)

// Elements without any namespace are read as Atom.
const atomNamespace = "http://www.w3.org/2005/Atom"

// ReadDocument parses data into a DOM. Documents declaring a non UTF-8
// encoding are transcoded.
func ReadDocument(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, gdataerrs.E(gdataerrs.ParsingString, err)
	}
	if doc.Root() == nil {
		if hasText(doc) {
			return nil, gdataerrs.E(gdataerrs.ParsingString, "text outside of any element")
		}
		return nil, gdataerrs.E(gdataerrs.EmptyDocument)
	}

	return doc, nil
}

// hasText reports whether the top level of doc holds character data that is
// not whitespace.
func hasText(doc *etree.Document) bool {
	for _, tok := range doc.Child {
		if cd, ok := tok.(*etree.CharData); ok && strings.TrimSpace(cd.Data) != "" {
			return true
		}
	}
	return false
}

// ReadRoot parses data and checks that the root element is name.
func ReadRoot(data []byte, name string) (*etree.Element, error) {
	doc, err := ReadDocument(data)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if root.Tag != name {
		return nil, gdataerrs.E(gdataerrs.RequiredElementMissing, gdataerrs.Element(name), gdataerrs.Parent("root"))
	}
	return root, nil
}

// Is reports whether el is the element local in namespace ns.
func Is(el *etree.Element, ns, local string) bool {
	if el.Tag != local {
		return false
	}

	uri := el.NamespaceURI()
	if uri == "" && el.Space == "" {
		uri = atomNamespace
	}
	return uri == ns
}

// QName is the element name as written in the document, prefix included.
func QName(el *etree.Element) string {
	return el.FullTag()
}

// Attr returns the value of the unprefixed attribute key.
func Attr(el *etree.Element, key string) (string, bool) {
	for _, a := range el.Attr {
		if a.Space == "" && a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// AttrNS returns the value of the attribute key in namespace ns.
func AttrNS(el *etree.Element, ns, key string) (string, bool) {
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Space != "" && a.Space != "xmlns" && a.Key == key && a.NamespaceURI() == ns {
			return a.Value, true
		}
	}
	return "", false
}

// RequireAttr returns the attribute key, failing when it is absent.
func RequireAttr(el *etree.Element, key string) (string, error) {
	v, ok := Attr(el, key)
	if !ok {
		return "", gdataerrs.E(gdataerrs.RequiredAttributeMissing,
			gdataerrs.Prefix(el.Space), gdataerrs.Element(el.Tag), gdataerrs.Attribute(key))
	}
	return v, nil
}

// BoolAttr reads a "true"/"false" attribute, returning dflt when absent.
func BoolAttr(el *etree.Element, key string, dflt bool) (bool, error) {
	v, ok := Attr(el, key)
	if !ok {
		return dflt, nil
	}

	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, UnknownAttr(el, key, v)
}

// EnumAttr reads an attribute whose value must be one of allowed. An absent
// attribute yields "".
func EnumAttr(el *etree.Element, key string, allowed ...string) (string, error) {
	v, ok := Attr(el, key)
	if !ok {
		return "", nil
	}
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", UnknownAttr(el, key, v)
}

// UintAttr reads an unsigned integer attribute, returning dflt when absent.
func UintAttr(el *etree.Element, key string, dflt uint64) (uint64, error) {
	v, ok := Attr(el, key)
	if !ok {
		return dflt, nil
	}

	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, UnknownAttr(el, key, v)
	}
	return n, nil
}

// FloatAttr reads a floating point attribute, returning dflt when absent.
func FloatAttr(el *etree.Element, key string, dflt float64) (float64, error) {
	v, ok := Attr(el, key)
	if !ok {
		return dflt, nil
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, UnknownAttr(el, key, v)
	}
	return n, nil
}

// UnknownAttr is the failure for an attribute whose value is not one the
// element accepts.
func UnknownAttr(el *etree.Element, key, value string) error {
	return gdataerrs.E(gdataerrs.UnknownContent,
		gdataerrs.Prefix(el.Space), gdataerrs.Element(el.Tag), gdataerrs.Attribute(key), gdataerrs.Value(value))
}

// TimeText parses the text of el as an ISO 8601 timestamp.
func TimeText(el *etree.Element, parent string) (time.Time, error) {
	v := el.Text()
	t, err := ParseTime(v)
	if err != nil {
		return time.Time{}, gdataerrs.E(gdataerrs.NotISO8601,
			gdataerrs.Prefix(el.Space), gdataerrs.Element(el.Tag), gdataerrs.Parent(parent), gdataerrs.Value(v))
	}
	return t, nil
}

// DateAttr parses the attribute key as a date-time or a bare date. The
// second result is true for a bare date.
func DateAttr(el *etree.Element, key string) (time.Time, bool, error) {
	v, ok := Attr(el, key)
	if !ok {
		return time.Time{}, false, nil
	}

	t, dateOnly, err := ParseDate(v)
	if err != nil {
		return time.Time{}, false, gdataerrs.E(gdataerrs.NotISO8601,
			gdataerrs.Prefix(el.Space), gdataerrs.Element(el.Tag), gdataerrs.Attribute(key), gdataerrs.Value(v))
	}
	return t, dateOnly, nil
}

// MissingContent is the failure for an element whose required text is
// empty.
func MissingContent(el *etree.Element, parent string) error {
	return gdataerrs.E(gdataerrs.RequiredContentMissing,
		gdataerrs.Prefix(el.Space), gdataerrs.Element(el.Tag), gdataerrs.Parent(parent))
}

// UintText parses the text of el as an unsigned integer. Empty text is
// missing content.
func UintText(el *etree.Element, parent string) (uint64, error) {
	v := strings.TrimSpace(el.Text())
	if v == "" {
		return 0, MissingContent(el, parent)
	}

	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, gdataerrs.E(gdataerrs.UnknownContent,
			gdataerrs.Prefix(el.Space), gdataerrs.Element(el.Tag), gdataerrs.Parent(parent), gdataerrs.Value(v))
	}
	return n, nil
}

// Unhandled is the failure for a child element the current context does not
// recognise.
func Unhandled(el *etree.Element, parent string) error {
	return gdataerrs.E(gdataerrs.UnhandledElement,
		gdataerrs.Prefix(el.Space), gdataerrs.Element(el.Tag), gdataerrs.Parent(parent))
}

// Duplicate is the failure for an element occurring more often than allowed.
func Duplicate(el *etree.Element, parent string) error {
	return gdataerrs.E(gdataerrs.DuplicateElement,
		gdataerrs.Prefix(el.Space), gdataerrs.Element(el.Tag), gdataerrs.Parent(parent))
}

// Missing is the failure for a required child that never appeared.
func Missing(element, parent string) error {
	return gdataerrs.E(gdataerrs.RequiredElementMissing, gdataerrs.Element(element), gdataerrs.Parent(parent))
}

// Fragment serializes el on its own. The namespace of its prefix is
// redeclared so the fragment stands alone.
func Fragment(el *etree.Element) (string, error) {
	cp := el.Copy()
	if el.Space != "" && cp.SelectAttr("xmlns:"+el.Space) == nil {
		if uri := el.NamespaceURI(); uri != "" {
			cp.CreateAttr("xmlns:"+el.Space, uri)
		}
	}

	doc := etree.NewDocument()
	doc.SetRoot(cp)
	return doc.WriteToString()
}

// AddText appends <tag>text</tag> to parent and returns it.
func AddText(parent *etree.Element, tag, text string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(text)
	return el
}

// AddAttr sets key on el when value is not empty.
func AddAttr(el *etree.Element, key, value string) {
	if value == "" {
		return
	}
	el.CreateAttr(key, value)
}

// AddValue appends <tag value="v"/>, the shape GData uses for scalar
// extension elements.
func AddValue(parent *etree.Element, tag, v string) *etree.Element {
	el := parent.CreateElement(tag)
	el.CreateAttr("value", v)
	return el
}

// FormatBool renders b the way GData expects.
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
