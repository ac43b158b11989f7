// Package gd holds the GData extension elements shared across services:
// ratings, people, places, times and contact details in the
// http://schemas.google.com/g/2005 namespace.
//
// Every type has a Parse function taking the element and an AppendTo method
// writing it back as a gd: prefixed child.
package gd

import (
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	"github.com/jdholdren/gdata/internal/xmlutil"
)

// Prefix is the namespace prefix the elements are written with.
const Prefix = "gd"

// Common rel values.
const (
	RelHome   = gdata.NSGData + "#home"
	RelWork   = gdata.NSGData + "#work"
	RelOther  = gdata.NSGData + "#other"
	RelMobile = gdata.NSGData + "#mobile"
	RelFax    = gdata.NSGData + "#fax"

	RelEventOrganizer = gdata.NSGData + "#event.organizer"
	RelEventAttendee  = gdata.NSGData + "#event.attendee"
)

// Declare adds the gd prefix to ns.
func Declare(ns map[string]string) {
	ns[Prefix] = gdata.NSGData
}

// Is reports whether el is the gd element local.
func Is(el *etree.Element, local string) bool {
	return xmlutil.Is(el, gdata.NSGData, local)
}

// Rating is <gd:rating>.
type Rating struct {
	Min       uint64
	Max       uint64
	NumRaters uint64
	Average   float64
	Value     uint64
	Rel       string
}

func ParseRating(el *etree.Element) (Rating, error) {
	var (
		r   Rating
		err error
	)
	if _, err = xmlutil.RequireAttr(el, "min"); err != nil {
		return Rating{}, err
	}
	if _, err = xmlutil.RequireAttr(el, "max"); err != nil {
		return Rating{}, err
	}
	if r.Min, err = xmlutil.UintAttr(el, "min", 0); err != nil {
		return Rating{}, err
	}
	if r.Max, err = xmlutil.UintAttr(el, "max", 0); err != nil {
		return Rating{}, err
	}
	if r.NumRaters, err = xmlutil.UintAttr(el, "numRaters", 0); err != nil {
		return Rating{}, err
	}
	if r.Average, err = xmlutil.FloatAttr(el, "average", 0); err != nil {
		return Rating{}, err
	}
	if r.Value, err = xmlutil.UintAttr(el, "value", 0); err != nil {
		return Rating{}, err
	}
	r.Rel, _ = xmlutil.Attr(el, "rel")
	return r, nil
}

func (r Rating) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("gd:rating")
	el.CreateAttr("min", strconv.FormatUint(r.Min, 10))
	el.CreateAttr("max", strconv.FormatUint(r.Max, 10))
	if r.NumRaters > 0 {
		el.CreateAttr("numRaters", strconv.FormatUint(r.NumRaters, 10))
	}
	if r.Average > 0 {
		el.CreateAttr("average", strconv.FormatFloat(r.Average, 'f', -1, 64))
	}
	if r.Value > 0 {
		el.CreateAttr("value", strconv.FormatUint(r.Value, 10))
	}
	xmlutil.AddAttr(el, "rel", r.Rel)
}

// Who is <gd:who>, a person taking part in an event or message.
type Who struct {
	Email          string
	Rel            string
	ValueString    string
	AttendeeStatus string
	AttendeeType   string
}

func ParseWho(el *etree.Element) (Who, error) {
	w := Who{}
	w.Email, _ = xmlutil.Attr(el, "email")
	w.Rel, _ = xmlutil.Attr(el, "rel")
	w.ValueString, _ = xmlutil.Attr(el, "valueString")

	for _, child := range el.ChildElements() {
		switch {
		case Is(child, "attendeeStatus"):
			v, err := ParseValue(child)
			if err != nil {
				return Who{}, err
			}
			w.AttendeeStatus = v
		case Is(child, "attendeeType"):
			v, err := ParseValue(child)
			if err != nil {
				return Who{}, err
			}
			w.AttendeeType = v
		default:
			return Who{}, xmlutil.Unhandled(child, xmlutil.QName(el))
		}
	}
	return w, nil
}

func (w Who) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("gd:who")
	xmlutil.AddAttr(el, "email", w.Email)
	xmlutil.AddAttr(el, "rel", w.Rel)
	xmlutil.AddAttr(el, "valueString", w.ValueString)
	if w.AttendeeStatus != "" {
		xmlutil.AddValue(el, "gd:attendeeStatus", w.AttendeeStatus)
	}
	if w.AttendeeType != "" {
		xmlutil.AddValue(el, "gd:attendeeType", w.AttendeeType)
	}
}

// Where is <gd:where>.
type Where struct {
	ValueString string
	Label       string
	Rel         string
}

func ParseWhere(el *etree.Element) Where {
	w := Where{}
	w.ValueString, _ = xmlutil.Attr(el, "valueString")
	w.Label, _ = xmlutil.Attr(el, "label")
	w.Rel, _ = xmlutil.Attr(el, "rel")
	return w
}

func (w Where) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("gd:where")
	xmlutil.AddAttr(el, "valueString", w.ValueString)
	xmlutil.AddAttr(el, "label", w.Label)
	xmlutil.AddAttr(el, "rel", w.Rel)
}

// FeedLink is <gd:feedLink>, a pointer to a nested feed such as comments.
type FeedLink struct {
	Href      string
	Rel       string
	CountHint uint64
	ReadOnly  bool
}

func ParseFeedLink(el *etree.Element) (FeedLink, error) {
	href, err := xmlutil.RequireAttr(el, "href")
	if err != nil {
		return FeedLink{}, err
	}

	fl := FeedLink{Href: href}
	fl.Rel, _ = xmlutil.Attr(el, "rel")
	if fl.CountHint, err = xmlutil.UintAttr(el, "countHint", 0); err != nil {
		return FeedLink{}, err
	}
	if fl.ReadOnly, err = xmlutil.BoolAttr(el, "readOnly", false); err != nil {
		return FeedLink{}, err
	}
	return fl, nil
}

func (fl FeedLink) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("gd:feedLink")
	el.CreateAttr("href", fl.Href)
	xmlutil.AddAttr(el, "rel", fl.Rel)
	if fl.CountHint > 0 {
		el.CreateAttr("countHint", strconv.FormatUint(fl.CountHint, 10))
	}
	if fl.ReadOnly {
		el.CreateAttr("readOnly", xmlutil.FormatBool(true))
	}
}

// Reminder is <gd:reminder>. Only one of the offsets is normally set.
type Reminder struct {
	Method  string
	Days    uint64
	Hours   uint64
	Minutes uint64
}

func ParseReminder(el *etree.Element) (Reminder, error) {
	var (
		r   Reminder
		err error
	)
	r.Method, _ = xmlutil.Attr(el, "method")
	if r.Days, err = xmlutil.UintAttr(el, "days", 0); err != nil {
		return Reminder{}, err
	}
	if r.Hours, err = xmlutil.UintAttr(el, "hours", 0); err != nil {
		return Reminder{}, err
	}
	if r.Minutes, err = xmlutil.UintAttr(el, "minutes", 0); err != nil {
		return Reminder{}, err
	}
	return r, nil
}

func (r Reminder) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("gd:reminder")
	xmlutil.AddAttr(el, "method", r.Method)
	for _, a := range []struct {
		key string
		n   uint64
	}{{"days", r.Days}, {"hours", r.Hours}, {"minutes", r.Minutes}} {
		if a.n > 0 {
			el.CreateAttr(a.key, strconv.FormatUint(a.n, 10))
		}
	}
}

// When is <gd:when>. A bare date in startTime makes it an all-day span.
type When struct {
	Start       time.Time
	End         time.Time
	AllDay      bool
	ValueString string
	Reminders   []Reminder
}

func ParseWhen(el *etree.Element) (When, error) {
	if _, err := xmlutil.RequireAttr(el, "startTime"); err != nil {
		return When{}, err
	}

	var (
		w   When
		err error
	)
	if w.Start, w.AllDay, err = xmlutil.DateAttr(el, "startTime"); err != nil {
		return When{}, err
	}
	if w.End, _, err = xmlutil.DateAttr(el, "endTime"); err != nil {
		return When{}, err
	}
	w.ValueString, _ = xmlutil.Attr(el, "valueString")

	for _, child := range el.ChildElements() {
		if !Is(child, "reminder") {
			return When{}, xmlutil.Unhandled(child, xmlutil.QName(el))
		}
		r, err := ParseReminder(child)
		if err != nil {
			return When{}, err
		}
		w.Reminders = append(w.Reminders, r)
	}
	return w, nil
}

func (w When) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("gd:when")
	el.CreateAttr("startTime", formatWhen(w.Start, w.AllDay))
	if !w.End.IsZero() {
		el.CreateAttr("endTime", formatWhen(w.End, w.AllDay))
	}
	xmlutil.AddAttr(el, "valueString", w.ValueString)
	for _, r := range w.Reminders {
		r.AppendTo(el)
	}
}

func formatWhen(t time.Time, allDay bool) string {
	if allDay {
		return xmlutil.FormatDate(t)
	}
	return xmlutil.FormatTime(t)
}

// Email is <gd:email>.
type Email struct {
	Address     string
	Rel         string
	Label       string
	DisplayName string
	Primary     bool
}

func ParseEmail(el *etree.Element) (Email, error) {
	address, err := xmlutil.RequireAttr(el, "address")
	if err != nil {
		return Email{}, err
	}

	e := Email{Address: address}
	e.Rel, _ = xmlutil.Attr(el, "rel")
	e.Label, _ = xmlutil.Attr(el, "label")
	e.DisplayName, _ = xmlutil.Attr(el, "displayName")
	if e.Primary, err = xmlutil.BoolAttr(el, "primary", false); err != nil {
		return Email{}, err
	}
	return e, nil
}

func (e Email) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("gd:email")
	el.CreateAttr("address", e.Address)
	xmlutil.AddAttr(el, "rel", e.Rel)
	xmlutil.AddAttr(el, "label", e.Label)
	xmlutil.AddAttr(el, "displayName", e.DisplayName)
	if e.Primary {
		el.CreateAttr("primary", xmlutil.FormatBool(true))
	}
}

// PhoneNumber is <gd:phoneNumber>. The number itself is the element text.
type PhoneNumber struct {
	Number  string
	Rel     string
	Label   string
	URI     string
	Primary bool
}

func ParsePhoneNumber(el *etree.Element, parent string) (PhoneNumber, error) {
	p := PhoneNumber{Number: el.Text()}
	if p.Number == "" {
		return PhoneNumber{}, xmlutil.MissingContent(el, parent)
	}

	var err error
	p.Rel, _ = xmlutil.Attr(el, "rel")
	p.Label, _ = xmlutil.Attr(el, "label")
	p.URI, _ = xmlutil.Attr(el, "uri")
	if p.Primary, err = xmlutil.BoolAttr(el, "primary", false); err != nil {
		return PhoneNumber{}, err
	}
	return p, nil
}

func (p PhoneNumber) AppendTo(parent *etree.Element) {
	el := xmlutil.AddText(parent, "gd:phoneNumber", p.Number)
	xmlutil.AddAttr(el, "rel", p.Rel)
	xmlutil.AddAttr(el, "label", p.Label)
	xmlutil.AddAttr(el, "uri", p.URI)
	if p.Primary {
		el.CreateAttr("primary", xmlutil.FormatBool(true))
	}
}

// PostalAddress is <gd:postalAddress>, a free-text address.
type PostalAddress struct {
	Address string
	Rel     string
	Label   string
	Primary bool
}

func ParsePostalAddress(el *etree.Element, parent string) (PostalAddress, error) {
	a := PostalAddress{Address: el.Text()}
	if a.Address == "" {
		return PostalAddress{}, xmlutil.MissingContent(el, parent)
	}

	var err error
	a.Rel, _ = xmlutil.Attr(el, "rel")
	a.Label, _ = xmlutil.Attr(el, "label")
	if a.Primary, err = xmlutil.BoolAttr(el, "primary", false); err != nil {
		return PostalAddress{}, err
	}
	return a, nil
}

func (a PostalAddress) AppendTo(parent *etree.Element) {
	el := xmlutil.AddText(parent, "gd:postalAddress", a.Address)
	xmlutil.AddAttr(el, "rel", a.Rel)
	xmlutil.AddAttr(el, "label", a.Label)
	if a.Primary {
		el.CreateAttr("primary", xmlutil.FormatBool(true))
	}
}

// Name is <gd:name>, a structured person name.
type Name struct {
	GivenName      string
	AdditionalName string
	FamilyName     string
	NamePrefix     string
	NameSuffix     string
	FullName       string
}

func ParseName(el *etree.Element) (Name, error) {
	var (
		n    = Name{}
		seen = map[*string]bool{}
	)
	for _, child := range el.ChildElements() {
		var dst *string
		switch {
		case Is(child, "givenName"):
			dst = &n.GivenName
		case Is(child, "additionalName"):
			dst = &n.AdditionalName
		case Is(child, "familyName"):
			dst = &n.FamilyName
		case Is(child, "namePrefix"):
			dst = &n.NamePrefix
		case Is(child, "nameSuffix"):
			dst = &n.NameSuffix
		case Is(child, "fullName"):
			dst = &n.FullName
		default:
			return Name{}, xmlutil.Unhandled(child, xmlutil.QName(el))
		}
		if seen[dst] {
			return Name{}, xmlutil.Duplicate(child, xmlutil.QName(el))
		}
		seen[dst] = true
		*dst = child.Text()
	}
	return n, nil
}

// IsZero reports whether no part of the name is set.
func (n Name) IsZero() bool {
	return n == Name{}
}

func (n Name) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("gd:name")
	for _, part := range []struct{ tag, v string }{
		{"gd:givenName", n.GivenName},
		{"gd:additionalName", n.AdditionalName},
		{"gd:familyName", n.FamilyName},
		{"gd:namePrefix", n.NamePrefix},
		{"gd:nameSuffix", n.NameSuffix},
		{"gd:fullName", n.FullName},
	} {
		if part.v != "" {
			xmlutil.AddText(el, part.tag, part.v)
		}
	}
}

// ExtendedProperty is <gd:extendedProperty>, a client-defined name/value
// pair.
type ExtendedProperty struct {
	Name  string
	Value string
	Realm string
}

func ParseExtendedProperty(el *etree.Element) (ExtendedProperty, error) {
	name, err := xmlutil.RequireAttr(el, "name")
	if err != nil {
		return ExtendedProperty{}, err
	}

	p := ExtendedProperty{Name: name}
	p.Value, _ = xmlutil.Attr(el, "value")
	p.Realm, _ = xmlutil.Attr(el, "realm")
	return p, nil
}

func (p ExtendedProperty) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("gd:extendedProperty")
	el.CreateAttr("name", p.Name)
	el.CreateAttr("value", p.Value)
	xmlutil.AddAttr(el, "realm", p.Realm)
}

// OriginalEvent is <gd:originalEvent>: the recurring event an exception
// belongs to and the start time it replaces.
type OriginalEvent struct {
	ID                string
	Href              string
	OriginalStartTime When
}

func ParseOriginalEvent(el *etree.Element) (OriginalEvent, error) {
	id, err := xmlutil.RequireAttr(el, "id")
	if err != nil {
		return OriginalEvent{}, err
	}
	href, err := xmlutil.RequireAttr(el, "href")
	if err != nil {
		return OriginalEvent{}, err
	}

	o := OriginalEvent{ID: id, Href: href}
	seen := false
	for _, child := range el.ChildElements() {
		if !Is(child, "when") {
			return OriginalEvent{}, xmlutil.Unhandled(child, xmlutil.QName(el))
		}
		if seen {
			return OriginalEvent{}, xmlutil.Duplicate(child, xmlutil.QName(el))
		}
		if o.OriginalStartTime, err = ParseWhen(child); err != nil {
			return OriginalEvent{}, err
		}
		seen = true
	}
	if !seen {
		return OriginalEvent{}, xmlutil.Missing("gd:when", xmlutil.QName(el))
	}
	return o, nil
}

func (o OriginalEvent) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("gd:originalEvent")
	el.CreateAttr("id", o.ID)
	el.CreateAttr("href", o.Href)
	o.OriginalStartTime.AppendTo(el)
}

// ParseValue reads the required value attribute of elements such as
// <gd:eventStatus value="..."/>.
func ParseValue(el *etree.Element) (string, error) {
	return xmlutil.RequireAttr(el, "value")
}

// ParseDeleted reads <gd:deleted/>, whose presence is the whole value.
func ParseDeleted(el *etree.Element) (bool, error) {
	if len(el.ChildElements()) > 0 {
		return false, xmlutil.Unhandled(el.ChildElements()[0], xmlutil.QName(el))
	}
	return true, nil
}

// AppendDeleted writes <gd:deleted/> when deleted is set.
func AppendDeleted(parent *etree.Element, deleted bool) {
	if deleted {
		parent.CreateElement("gd:deleted")
	}
}
