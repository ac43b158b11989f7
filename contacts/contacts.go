// Package contacts maps Google Contacts entries.
package contacts

import (
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	gdataerrs "github.com/jdholdren/gdata/errors"
	"github.com/jdholdren/gdata/gd"
	"github.com/jdholdren/gdata/internal/xmlutil"
)

const (
	Prefix = "gContact"

	KindContact = gdata.NSContacts + "#contact"

	// RelPhoto is the rel of the link to the contact's photo.
	RelPhoto = "http://schemas.google.com/contacts/2008/rel#photo"
)

// GroupMembership is <gContact:groupMembershipInfo>.
type GroupMembership struct {
	Href    string
	Deleted bool
}

// Contact is one entry in a contacts feed.
type Contact struct {
	gdata.Entry

	Name               gd.Name
	Emails             []gd.Email
	PhoneNumbers       []gd.PhoneNumber
	Addresses          []gd.PostalAddress
	ExtendedProperties []gd.ExtendedProperty
	Groups             []GroupMembership

	Deleted bool
	Edited  time.Time
}

var _ gdata.Parsable = (*Contact)(nil)

// NewContact makes a client-authored contact.
func NewContact(title string) *Contact {
	c := &Contact{Entry: *gdata.NewEntry(title)}
	c.AddCategory(gdata.Category{Term: KindContact, Scheme: gdata.KindScheme})
	return c
}

// ParseContact parses a standalone contact <entry>.
func ParseContact(data []byte) (*Contact, error) {
	c := &Contact{}
	if err := gdata.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseFeed parses a contacts feed.
func ParseFeed(data []byte, opts gdata.FeedOptions[*Contact]) (*gdata.Feed[*Contact], error) {
	return gdata.ParseFeed(data, gdata.Construct(func() *Contact { return &Contact{} }), opts)
}

func (c *Contact) ParseElement(el *etree.Element) error {
	switch {
	case gd.Is(el, "name"):
		n, err := gd.ParseName(el)
		if err != nil {
			return err
		}
		c.Name = n
	case gd.Is(el, "email"):
		e, err := gd.ParseEmail(el)
		if err != nil {
			return err
		}
		c.Emails = append(c.Emails, e)
	case gd.Is(el, "phoneNumber"):
		p, err := gd.ParsePhoneNumber(el, "entry")
		if err != nil {
			return err
		}
		c.PhoneNumbers = append(c.PhoneNumbers, p)
	case gd.Is(el, "postalAddress"):
		a, err := gd.ParsePostalAddress(el, "entry")
		if err != nil {
			return err
		}
		c.Addresses = append(c.Addresses, a)
	case gd.Is(el, "extendedProperty"):
		p, err := gd.ParseExtendedProperty(el)
		if err != nil {
			return err
		}
		c.ExtendedProperties = append(c.ExtendedProperties, p)
	case xmlutil.Is(el, gdata.NSContacts, "groupMembershipInfo"):
		href, err := xmlutil.RequireAttr(el, "href")
		if err != nil {
			return err
		}
		deleted, err := xmlutil.BoolAttr(el, "deleted", false)
		if err != nil {
			return err
		}
		c.Groups = append(c.Groups, GroupMembership{Href: href, Deleted: deleted})
	case gd.Is(el, "deleted"):
		deleted, err := gd.ParseDeleted(el)
		if err != nil {
			return err
		}
		c.Deleted = deleted
	case xmlutil.Is(el, gdata.NSApp, "edited"):
		t, err := xmlutil.TimeText(el, "entry")
		if err != nil {
			return err
		}
		c.Edited = t
	default:
		return gdataerrs.Reparent(c.Entry.ParseElement(el), el.Space, el.Tag, "entry")
	}

	return nil
}

// PrimaryEmail returns the address marked primary, or the first one.
func (c *Contact) PrimaryEmail() (gd.Email, bool) {
	for _, e := range c.Emails {
		if e.Primary {
			return e, true
		}
	}
	if len(c.Emails) > 0 {
		return c.Emails[0], true
	}
	return gd.Email{}, false
}

// ExtendedProperty returns the value of the named client property.
func (c *Contact) ExtendedProperty(name string) (string, bool) {
	for _, p := range c.ExtendedProperties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// SetExtendedProperty sets, replaces or, with an empty value, removes the
// named client property.
func (c *Contact) SetExtendedProperty(name, value string) {
	for i, p := range c.ExtendedProperties {
		if p.Name != name {
			continue
		}
		if value == "" {
			c.ExtendedProperties = append(c.ExtendedProperties[:i], c.ExtendedProperties[i+1:]...)
			return
		}
		c.ExtendedProperties[i].Value = value
		return
	}
	if value != "" {
		c.ExtendedProperties = append(c.ExtendedProperties, gd.ExtendedProperty{Name: name, Value: value})
	}
}

// PhotoLink returns the link to the contact's photo, if the server offered
// one.
func (c *Contact) PhotoLink() (gdata.Link, bool) {
	return c.LookupLink(RelPhoto)
}

func (c *Contact) EmitBody(el *etree.Element) {
	c.Entry.EmitBody(el)

	if !c.Name.IsZero() {
		c.Name.AppendTo(el)
	}
	for _, e := range c.Emails {
		e.AppendTo(el)
	}
	for _, p := range c.PhoneNumbers {
		p.AppendTo(el)
	}
	for _, a := range c.Addresses {
		a.AppendTo(el)
	}
	for _, p := range c.ExtendedProperties {
		p.AppendTo(el)
	}
	for _, g := range c.Groups {
		m := el.CreateElement("gContact:groupMembershipInfo")
		m.CreateAttr("href", g.Href)
		m.CreateAttr("deleted", xmlutil.FormatBool(g.Deleted))
	}
	gd.AppendDeleted(el, c.Deleted)
	if !c.Edited.IsZero() {
		xmlutil.AddText(el, "app:edited", xmlutil.FormatTime(c.Edited))
	}
}

func (c *Contact) Namespaces(ns map[string]string) {
	c.Entry.Namespaces(ns)

	gd.Declare(ns)
	if len(c.Groups) > 0 {
		ns[Prefix] = gdata.NSContacts
	}
	if !c.Edited.IsZero() {
		ns["app"] = gdata.NSApp
	}
}

// XML serializes the contact as a standalone <entry> document.
func (c *Contact) XML() (string, error) {
	return gdata.Marshal(c)
}
