package calendar

import (
	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	"github.com/jdholdren/gdata/gd"
	"github.com/jdholdren/gdata/internal/xmlutil"
)

// Feed is a calendar or event feed. The calendar service adds the feed's
// timezone and how many times the calendar was cleaned.
type Feed[E gdata.Parsable] struct {
	*gdata.Feed[E]

	Timezone     string
	TimesCleaned uint64
}

// ParseEventFeed parses an event feed.
func ParseEventFeed(data []byte, opts gdata.FeedOptions[*Event]) (*Feed[*Event], error) {
	return parseFeed(data, gdata.Construct(newParsedEvent), opts)
}

// ParseCalendarFeed parses a calendar list feed.
func ParseCalendarFeed(data []byte, opts gdata.FeedOptions[*Calendar]) (*Feed[*Calendar], error) {
	return parseFeed(data, gdata.Construct(func() *Calendar { return &Calendar{} }), opts)
}

func parseFeed[E gdata.Parsable](data []byte, newEntry gdata.EntryFunc[E], opts gdata.FeedOptions[E]) (*Feed[E], error) {
	var (
		f    = &Feed[E]{}
		seen = make(map[string]bool)
		next = opts.ParseElement
	)

	opts.ParseElement = func(el *etree.Element) (bool, error) {
		switch {
		case isCal(el, "timezone"), isCal(el, "timesCleaned"):
			if seen[el.Tag] {
				return false, xmlutil.Duplicate(el, "feed")
			}
			seen[el.Tag] = true

			v, err := gd.ParseValue(el)
			if err != nil {
				return false, err
			}
			if el.Tag == "timezone" {
				f.Timezone = v
				return true, nil
			}
			f.TimesCleaned, err = xmlutil.UintAttr(el, "value", 0)
			return err == nil, err
		}

		if next != nil {
			return next(el)
		}
		return false, nil
	}

	inner, err := gdata.ParseFeed(data, newEntry, opts)
	if err != nil {
		return nil, err
	}
	f.Feed = inner
	return f, nil
}
