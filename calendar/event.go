package calendar

import (
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	gdataerrs "github.com/jdholdren/gdata/errors"
	"github.com/jdholdren/gdata/gd"
	"github.com/jdholdren/gdata/internal/xmlutil"
)

// Event statuses, visibilities and transparencies.
const (
	StatusConfirmed = gdata.NSGData + "#event.confirmed"
	StatusTentative = gdata.NSGData + "#event.tentative"
	StatusCanceled  = gdata.NSGData + "#event.canceled"

	VisibilityDefault      = gdata.NSGData + "#event.default"
	VisibilityPublic       = gdata.NSGData + "#event.public"
	VisibilityPrivate      = gdata.NSGData + "#event.private"
	VisibilityConfidential = gdata.NSGData + "#event.confidential"

	TransparencyOpaque      = gdata.NSGData + "#event.opaque"
	TransparencyTransparent = gdata.NSGData + "#event.transparent"
)

// Event is one event on a calendar.
type Event struct {
	gdata.Entry

	Status       string
	Visibility   string
	Transparency string
	UID          string
	Sequence     uint64

	Times  []gd.When
	Places []gd.Where
	People []gd.Who

	GuestsCanModify       bool
	GuestsCanInviteOthers bool
	GuestsCanSeeGuests    bool
	AnyoneCanAddSelf      bool

	// Recurrence is the iCalendar RRULE block for recurring events.
	Recurrence    string
	OriginalEvent *gd.OriginalEvent

	// QuickAdd asks the server to build the event from the content text.
	QuickAdd bool
	Comments *gd.FeedLink

	Edited time.Time
}

var _ gdata.Parsable = (*Event)(nil)

// NewEvent makes a client-authored event with the server's defaults.
func NewEvent(title string) *Event {
	e := &Event{
		Entry:                 *gdata.NewEntry(title),
		GuestsCanInviteOthers: true,
		GuestsCanSeeGuests:    true,
	}
	e.AddCategory(gdata.Category{Term: KindEvent, Scheme: gdata.KindScheme})
	return e
}

// ParseEvent parses a standalone event <entry>.
func ParseEvent(data []byte) (*Event, error) {
	e := newParsedEvent()
	if err := gdata.Unmarshal(data, e); err != nil {
		return nil, err
	}
	return e, nil
}

// newParsedEvent is the starting point for server-authored events: the
// guest permissions default to what the server assumes when they are
// omitted.
func newParsedEvent() *Event {
	return &Event{GuestsCanInviteOthers: true, GuestsCanSeeGuests: true}
}

func (e *Event) ParseElement(el *etree.Element) error {
	var err error
	switch {
	case gd.Is(el, "eventStatus"):
		e.Status, err = gd.ParseValue(el)
	case gd.Is(el, "visibility"):
		e.Visibility, err = gd.ParseValue(el)
	case gd.Is(el, "transparency"):
		e.Transparency, err = gd.ParseValue(el)
	case isCal(el, "uid"):
		e.UID, err = gd.ParseValue(el)
	case isCal(el, "sequence"):
		if _, err = gd.ParseValue(el); err == nil {
			e.Sequence, err = xmlutil.UintAttr(el, "value", 0)
		}
	case gd.Is(el, "when"):
		var w gd.When
		if w, err = gd.ParseWhen(el); err == nil {
			e.Times = append(e.Times, w)
		}
	case gd.Is(el, "where"):
		e.Places = append(e.Places, gd.ParseWhere(el))
	case gd.Is(el, "who"):
		var w gd.Who
		if w, err = gd.ParseWho(el); err == nil {
			e.People = append(e.People, w)
		}
	case isCal(el, "guestsCanModify"):
		e.GuestsCanModify, err = boolValue(el)
	case isCal(el, "guestsCanInviteOthers"):
		e.GuestsCanInviteOthers, err = boolValue(el)
	case isCal(el, "guestsCanSeeGuests"):
		e.GuestsCanSeeGuests, err = boolValue(el)
	case isCal(el, "anyoneCanAddSelf"):
		e.AnyoneCanAddSelf, err = boolValue(el)
	case gd.Is(el, "recurrence"):
		e.Recurrence = el.Text()
	case gd.Is(el, "originalEvent"):
		var o gd.OriginalEvent
		if o, err = gd.ParseOriginalEvent(el); err == nil {
			e.OriginalEvent = &o
		}
	case isEdited(el):
		e.Edited, err = xmlutil.TimeText(el, "entry")
	case gd.Is(el, "comments"):
		var fl gd.FeedLink
		if fl, err = parseComments(el); err == nil {
			e.Comments = &fl
		}
	case isCal(el, "quickadd"):
		e.QuickAdd, err = boolValue(el)
	default:
		return gdataerrs.Reparent(e.Entry.ParseElement(el), el.Space, el.Tag, "entry")
	}

	return err
}

// Time returns the first occurrence of the event, if it has one.
func (e *Event) Time() (gd.When, bool) {
	if len(e.Times) == 0 {
		return gd.When{}, false
	}
	return e.Times[0], true
}

// IsException reports whether the event replaces one instance of a
// recurring event.
func (e *Event) IsException() bool {
	return e.OriginalEvent != nil
}

func (e *Event) EmitBody(el *etree.Element) {
	e.Entry.EmitBody(el)

	if e.Status != "" {
		xmlutil.AddValue(el, "gd:eventStatus", e.Status)
	}
	if e.Visibility != "" {
		xmlutil.AddValue(el, "gd:visibility", e.Visibility)
	}
	if e.Transparency != "" {
		xmlutil.AddValue(el, "gd:transparency", e.Transparency)
	}
	if e.UID != "" {
		xmlutil.AddValue(el, "gCal:uid", e.UID)
	}
	if e.Sequence > 0 {
		xmlutil.AddValue(el, "gCal:sequence", formatUint(e.Sequence))
	}
	for _, w := range e.Times {
		w.AppendTo(el)
	}
	for _, w := range e.Places {
		w.AppendTo(el)
	}
	for _, w := range e.People {
		w.AppendTo(el)
	}

	xmlutil.AddValue(el, "gCal:guestsCanModify", xmlutil.FormatBool(e.GuestsCanModify))
	xmlutil.AddValue(el, "gCal:guestsCanInviteOthers", xmlutil.FormatBool(e.GuestsCanInviteOthers))
	xmlutil.AddValue(el, "gCal:guestsCanSeeGuests", xmlutil.FormatBool(e.GuestsCanSeeGuests))
	xmlutil.AddValue(el, "gCal:anyoneCanAddSelf", xmlutil.FormatBool(e.AnyoneCanAddSelf))

	if e.Recurrence != "" {
		xmlutil.AddText(el, "gd:recurrence", e.Recurrence)
	}
	if e.OriginalEvent != nil {
		e.OriginalEvent.AppendTo(el)
	}
	if e.QuickAdd {
		xmlutil.AddValue(el, "gCal:quickadd", xmlutil.FormatBool(true))
	}
	if e.Comments != nil {
		e.Comments.AppendTo(el.CreateElement("gd:comments"))
	}
	if !e.Edited.IsZero() {
		xmlutil.AddText(el, "app:edited", xmlutil.FormatTime(e.Edited))
	}
}

// parseComments reads <gd:comments>, a wrapper around one feed link.
func parseComments(el *etree.Element) (gd.FeedLink, error) {
	var (
		fl   gd.FeedLink
		seen bool
	)
	for _, child := range el.ChildElements() {
		if !gd.Is(child, "feedLink") {
			return gd.FeedLink{}, xmlutil.Unhandled(child, xmlutil.QName(el))
		}
		if seen {
			return gd.FeedLink{}, xmlutil.Duplicate(child, xmlutil.QName(el))
		}
		var err error
		if fl, err = gd.ParseFeedLink(child); err != nil {
			return gd.FeedLink{}, err
		}
		seen = true
	}
	if !seen {
		return gd.FeedLink{}, xmlutil.Missing("gd:feedLink", xmlutil.QName(el))
	}
	return fl, nil
}

func (e *Event) Namespaces(ns map[string]string) {
	e.Entry.Namespaces(ns)

	gd.Declare(ns)
	ns[Prefix] = gdata.NSCalendar
	if !e.Edited.IsZero() {
		ns["app"] = gdata.NSApp
	}
}

// XML serializes the event as a standalone <entry> document.
func (e *Event) XML() (string, error) {
	return gdata.Marshal(e)
}

func formatUint(n uint64) string {
	return strconv.FormatUint(n, 10)
}
