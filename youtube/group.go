package youtube

import (
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	gdataerrs "github.com/jdholdren/gdata/errors"
	"github.com/jdholdren/gdata/internal/xmlutil"
	"github.com/jdholdren/gdata/media"
)

// AspectWidescreen is the only aspect ratio YouTube reports.
const AspectWidescreen = "widescreen"

// Group is the <media:group> of a video, with the yt: children YouTube adds
// to it.
type Group struct {
	media.Group

	Duration    time.Duration
	VideoID     string
	Uploaded    time.Time
	Private     bool
	AspectRatio string
}

// Decode reads every child of el, a <media:group>, into g.
func (g *Group) Decode(el *etree.Element) error {
	for _, child := range el.ChildElements() {
		if err := g.ParseElement(child); err != nil {
			return err
		}
	}
	return nil
}

func (g *Group) ParseElement(el *etree.Element) error {
	var err error
	switch {
	case isYT(el, "duration"):
		var secs uint64
		if _, err = xmlutil.RequireAttr(el, "seconds"); err == nil {
			secs, err = xmlutil.UintAttr(el, "seconds", 0)
			g.Duration = time.Duration(secs) * time.Second
		}
	case isYT(el, "videoid"):
		if g.VideoID = el.Text(); g.VideoID == "" {
			err = xmlutil.MissingContent(el, "media:group")
		}
	case isYT(el, "uploaded"):
		g.Uploaded, err = xmlutil.TimeText(el, "media:group")
	case isYT(el, "private"):
		g.Private = true
	case isYT(el, "aspectRatio"):
		if el.Text() != AspectWidescreen {
			err = gdataerrs.E(gdataerrs.UnknownContent,
				gdataerrs.Prefix(el.Space), gdataerrs.Element(el.Tag), gdataerrs.Parent("media:group"), gdataerrs.Value(el.Text()))
		}
		g.AspectRatio = el.Text()
	default:
		return gdataerrs.Reparent(g.Group.ParseElement(el), el.Space, el.Tag, "media:group")
	}

	return err
}

func (g *Group) Namespaces(ns map[string]string) {
	g.Group.Namespaces(ns)
	ns[Prefix] = gdata.NSYouTube
}

// AppendTo writes g as a <media:group> child of parent.
func (g *Group) AppendTo(parent *etree.Element) *etree.Element {
	el := g.Group.AppendTo(parent)
	if g.Duration > 0 {
		el.CreateElement("yt:duration").CreateAttr("seconds", strconv.FormatInt(int64(g.Duration/time.Second), 10))
	}
	if g.VideoID != "" {
		xmlutil.AddText(el, "yt:videoid", g.VideoID)
	}
	if !g.Uploaded.IsZero() {
		xmlutil.AddText(el, "yt:uploaded", xmlutil.FormatTime(g.Uploaded))
	}
	if g.Private {
		el.CreateElement("yt:private")
	}
	if g.AspectRatio != "" {
		xmlutil.AddText(el, "yt:aspectRatio", g.AspectRatio)
	}
	return el
}
