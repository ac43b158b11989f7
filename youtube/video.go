// Package youtube maps YouTube video entries: the Atom entry, its extended
// media group and the yt: statistics around it.
package youtube

import (
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	gdataerrs "github.com/jdholdren/gdata/errors"
	"github.com/jdholdren/gdata/gd"
	"github.com/jdholdren/gdata/internal/xmlutil"
	"github.com/jdholdren/gdata/media"
)

const (
	Prefix = "yt"

	KindVideo = gdata.NSYouTube + "#video"
)

// State names reported inside <app:control>.
const (
	StateProcessing = "processing"
	StateRestricted = "restricted"
	StateDeleted    = "deleted"
	StateRejected   = "rejected"
	StateFailed     = "failed"
)

func isYT(el *etree.Element, local string) bool {
	return xmlutil.Is(el, gdata.NSYouTube, local)
}

func isApp(el *etree.Element, local string) bool {
	return xmlutil.Is(el, gdata.NSApp, local)
}

// Statistics is <yt:statistics>.
type Statistics struct {
	ViewCount     uint64
	FavoriteCount uint64
}

// State is <yt:state>, why a video is not (yet) publicly playable.
type State struct {
	Name       string
	ReasonCode string
	HelpURI    string
	Message    string
}

func parseState(el *etree.Element) (State, error) {
	if _, err := xmlutil.RequireAttr(el, "name"); err != nil {
		return State{}, err
	}
	name, err := xmlutil.EnumAttr(el, "name", StateProcessing, StateRestricted, StateDeleted, StateRejected, StateFailed)
	if err != nil {
		return State{}, err
	}

	s := State{Name: name, Message: el.Text()}
	s.ReasonCode, _ = xmlutil.Attr(el, "reasonCode")
	s.HelpURI, _ = xmlutil.Attr(el, "helpUrl")
	return s, nil
}

// Video is one entry in a YouTube video feed.
type Video struct {
	gdata.Entry

	Group      *Group
	Rating     *gd.Rating
	Statistics *Statistics
	Comments   *gd.FeedLink
	Location   string
	NoEmbed    bool
	Recorded   time.Time

	Draft  bool
	State  *State
	Edited time.Time
}

var _ gdata.Parsable = (*Video)(nil)

// NewVideo makes a client-authored video entry, ready for an upload's
// metadata.
func NewVideo(title string) *Video {
	v := &Video{Entry: *gdata.NewEntry(title), Group: &Group{}}
	v.Group.Title = title
	v.AddCategory(gdata.Category{Term: KindVideo, Scheme: gdata.KindScheme})
	return v
}

// ParseVideo parses a standalone video <entry>.
func ParseVideo(data []byte) (*Video, error) {
	v := &Video{}
	if err := gdata.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseFeed parses a video feed.
func ParseFeed(data []byte, opts gdata.FeedOptions[*Video]) (*gdata.Feed[*Video], error) {
	return gdata.ParseFeed(data, gdata.Construct(func() *Video { return &Video{} }), opts)
}

func (v *Video) ParseElement(el *etree.Element) error {
	switch {
	case media.Is(el, "group"):
		if v.Group != nil {
			return xmlutil.Duplicate(el, "entry")
		}
		g := &Group{}
		if err := g.Decode(el); err != nil {
			return err
		}
		v.Group = g
	case gd.Is(el, "rating"):
		r, err := gd.ParseRating(el)
		if err != nil {
			return err
		}
		v.Rating = &r
	case gd.Is(el, "comments"):
		for _, child := range el.ChildElements() {
			if !gd.Is(child, "feedLink") {
				return xmlutil.Unhandled(child, xmlutil.QName(el))
			}
			fl, err := gd.ParseFeedLink(child)
			if err != nil {
				return err
			}
			v.Comments = &fl
		}
	case isYT(el, "statistics"):
		var (
			s   Statistics
			err error
		)
		if s.ViewCount, err = xmlutil.UintAttr(el, "viewCount", 0); err != nil {
			return err
		}
		if s.FavoriteCount, err = xmlutil.UintAttr(el, "favoriteCount", 0); err != nil {
			return err
		}
		v.Statistics = &s
	case isYT(el, "location"):
		v.Location = el.Text()
	case isYT(el, "noembed"):
		v.NoEmbed = true
	case isYT(el, "recorded"):
		t, dateOnly, err := xmlutil.ParseDate(el.Text())
		if err != nil || !dateOnly {
			return gdataerrs.E(gdataerrs.NotISO8601,
				gdataerrs.Prefix(el.Space), gdataerrs.Element(el.Tag), gdataerrs.Parent("entry"), gdataerrs.Value(el.Text()))
		}
		v.Recorded = t
	case isApp(el, "control"):
		return v.parseControl(el)
	case isApp(el, "edited"):
		t, err := xmlutil.TimeText(el, "entry")
		if err != nil {
			return err
		}
		v.Edited = t
	default:
		return gdataerrs.Reparent(v.Entry.ParseElement(el), el.Space, el.Tag, "entry")
	}

	return nil
}

func (v *Video) parseControl(el *etree.Element) error {
	for _, child := range el.ChildElements() {
		switch {
		case isApp(child, "draft"):
			switch child.Text() {
			case "yes":
				v.Draft = true
			case "no":
				v.Draft = false
			default:
				return gdataerrs.E(gdataerrs.UnknownContent,
					gdataerrs.Prefix(child.Space), gdataerrs.Element(child.Tag), gdataerrs.Parent(xmlutil.QName(el)), gdataerrs.Value(child.Text()))
			}
		case isYT(child, "state"):
			s, err := parseState(child)
			if err != nil {
				return err
			}
			v.State = &s
		default:
			return xmlutil.Unhandled(child, xmlutil.QName(el))
		}
	}
	return nil
}

// VideoID is the short id of the video, empty for a video not yet uploaded.
func (v *Video) VideoID() string {
	if v.Group == nil {
		return ""
	}
	return v.Group.VideoID
}

// WatchLink returns the link to the video's page on the site.
func (v *Video) WatchLink() (gdata.Link, bool) {
	return v.LookupLink("alternate")
}

// IsPlayable reports whether the video can be watched by others.
func (v *Video) IsPlayable() bool {
	return !v.Draft && v.State == nil && (v.Group == nil || !v.Group.Private)
}

func (v *Video) EmitBody(el *etree.Element) {
	v.Entry.EmitBody(el)

	if v.Group != nil {
		v.Group.AppendTo(el)
	}
	if v.Rating != nil {
		v.Rating.AppendTo(el)
	}
	if v.Comments != nil {
		v.Comments.AppendTo(el.CreateElement("gd:comments"))
	}
	if v.Statistics != nil {
		s := el.CreateElement("yt:statistics")
		s.CreateAttr("viewCount", strconv.FormatUint(v.Statistics.ViewCount, 10))
		s.CreateAttr("favoriteCount", strconv.FormatUint(v.Statistics.FavoriteCount, 10))
	}
	if v.Location != "" {
		xmlutil.AddText(el, "yt:location", v.Location)
	}
	if v.NoEmbed {
		el.CreateElement("yt:noembed")
	}
	if !v.Recorded.IsZero() {
		xmlutil.AddText(el, "yt:recorded", xmlutil.FormatDate(v.Recorded))
	}
	if v.Draft || v.State != nil {
		c := el.CreateElement("app:control")
		if v.Draft {
			xmlutil.AddText(c, "app:draft", "yes")
		}
		if v.State != nil {
			s := xmlutil.AddText(c, "yt:state", v.State.Message)
			s.CreateAttr("name", v.State.Name)
			xmlutil.AddAttr(s, "reasonCode", v.State.ReasonCode)
			xmlutil.AddAttr(s, "helpUrl", v.State.HelpURI)
		}
	}
	if !v.Edited.IsZero() {
		xmlutil.AddText(el, "app:edited", xmlutil.FormatTime(v.Edited))
	}
}

func (v *Video) Namespaces(ns map[string]string) {
	v.Entry.Namespaces(ns)

	ns[Prefix] = gdata.NSYouTube
	if v.Group != nil {
		v.Group.Namespaces(ns)
	}
	if v.Rating != nil || v.Comments != nil {
		gd.Declare(ns)
	}
	if v.Draft || v.State != nil || !v.Edited.IsZero() {
		ns["app"] = gdata.NSApp
	}
}

// XML serializes the video as a standalone <entry> document.
func (v *Video) XML() (string, error) {
	return gdata.Marshal(v)
}
