// Package calendar maps Google Calendar entries: calendars in the calendar
// list and the events inside them.
package calendar

import (
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	gdataerrs "github.com/jdholdren/gdata/errors"
	"github.com/jdholdren/gdata/gd"
	"github.com/jdholdren/gdata/internal/xmlutil"
)

const Prefix = "gCal"

// Kinds of calendar entries.
const (
	KindEvent    = gdata.NSGData + "#event"
	KindCalendar = gdata.NSCalendar + "#calendarmeta"
)

// Access levels a calendar can grant.
const (
	AccessNone        = "none"
	AccessRead        = "read"
	AccessFreeBusy    = "freebusy"
	AccessEditor      = "editor"
	AccessOwner       = "owner"
	AccessRoot        = "root"
	AccessContributor = "contributor"
)

func isCal(el *etree.Element, local string) bool {
	return xmlutil.Is(el, gdata.NSCalendar, local)
}

func isEdited(el *etree.Element) bool {
	return xmlutil.Is(el, gdata.NSApp, "edited")
}

// boolValue reads <gCal:x value="true|false"/>.
func boolValue(el *etree.Element) (bool, error) {
	if _, err := gd.ParseValue(el); err != nil {
		return false, err
	}
	return xmlutil.BoolAttr(el, "value", false)
}

// Calendar is one calendar in a user's calendar list.
type Calendar struct {
	gdata.Entry

	Timezone     string
	TimesCleaned uint64
	Hidden       bool
	Selected     bool
	Color        string // #rrggbb
	AccessLevel  string
	Places       []gd.Where
	Edited       time.Time
}

var _ gdata.Parsable = (*Calendar)(nil)

// NewCalendar makes a client-authored calendar.
func NewCalendar(title string) *Calendar {
	c := &Calendar{Entry: *gdata.NewEntry(title), Selected: true}
	c.AddCategory(gdata.Category{Term: KindCalendar, Scheme: gdata.KindScheme})
	return c
}

// ParseCalendar parses a standalone calendar <entry>.
func ParseCalendar(data []byte) (*Calendar, error) {
	c := &Calendar{}
	if err := gdata.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Calendar) ParseElement(el *etree.Element) error {
	var err error
	switch {
	case isCal(el, "timezone"):
		c.Timezone, err = gd.ParseValue(el)
	case isCal(el, "timesCleaned"):
		if _, err = gd.ParseValue(el); err == nil {
			c.TimesCleaned, err = xmlutil.UintAttr(el, "value", 0)
		}
	case isCal(el, "hidden"):
		c.Hidden, err = boolValue(el)
	case isCal(el, "selected"):
		c.Selected, err = boolValue(el)
	case isCal(el, "color"):
		c.Color, err = gd.ParseValue(el)
	case isCal(el, "accesslevel"):
		c.AccessLevel, err = xmlutil.EnumAttr(el, "value",
			AccessNone, AccessRead, AccessFreeBusy, AccessEditor, AccessOwner, AccessRoot, AccessContributor)
	case gd.Is(el, "where"):
		c.Places = append(c.Places, gd.ParseWhere(el))
	case isEdited(el):
		c.Edited, err = xmlutil.TimeText(el, "entry")
	default:
		return gdataerrs.Reparent(c.Entry.ParseElement(el), el.Space, el.Tag, "entry")
	}

	return err
}

func (c *Calendar) EmitBody(el *etree.Element) {
	c.Entry.EmitBody(el)

	if c.Timezone != "" {
		xmlutil.AddValue(el, "gCal:timezone", c.Timezone)
	}
	if c.TimesCleaned > 0 {
		xmlutil.AddValue(el, "gCal:timesCleaned", formatUint(c.TimesCleaned))
	}
	xmlutil.AddValue(el, "gCal:hidden", xmlutil.FormatBool(c.Hidden))
	xmlutil.AddValue(el, "gCal:selected", xmlutil.FormatBool(c.Selected))
	if c.Color != "" {
		xmlutil.AddValue(el, "gCal:color", c.Color)
	}
	if c.AccessLevel != "" {
		xmlutil.AddValue(el, "gCal:accesslevel", c.AccessLevel)
	}
	for _, w := range c.Places {
		w.AppendTo(el)
	}
	if !c.Edited.IsZero() {
		xmlutil.AddText(el, "app:edited", xmlutil.FormatTime(c.Edited))
	}
}

// XML serializes the calendar as a standalone <entry> document.
func (c *Calendar) XML() (string, error) {
	return gdata.Marshal(c)
}

func (c *Calendar) Namespaces(ns map[string]string) {
	c.Entry.Namespaces(ns)

	ns[Prefix] = gdata.NSCalendar
	if len(c.Places) > 0 {
		gd.Declare(ns)
	}
	if !c.Edited.IsZero() {
		ns["app"] = gdata.NSApp
	}
}
