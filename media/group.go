package media

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	"github.com/jdholdren/gdata/internal/xmlutil"
)

// Group is <media:group>, the bundle of renditions and metadata attached to
// a video or photo entry.
type Group struct {
	Title       string
	Description string
	Keywords    []string
	PlayerURI   string

	Ratings      []Rating
	Restrictions []Restriction
	Categories   []Category
	Credits      []Credit
	Contents     []Content
	Thumbnails   []Thumbnail
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

// ParseElement applies one child of <media:group>.
func (g *Group) ParseElement(el *etree.Element) error {
	switch {
	case Is(el, "title"):
		g.Title = el.Text()
	case Is(el, "description"):
		g.Description = el.Text()
	case Is(el, "keywords"):
		g.Keywords = nil
		for _, k := range strings.Split(el.Text(), ",") {
			if k = strings.TrimSpace(k); k != "" {
				g.Keywords = append(g.Keywords, k)
			}
		}
	case Is(el, "player"):
		uri, err := xmlutil.RequireAttr(el, "url")
		if err != nil {
			return err
		}
		g.PlayerURI = uri
	case Is(el, "rating"):
		g.Ratings = append(g.Ratings, ParseRating(el))
	case Is(el, "restriction"):
		r, err := ParseRestriction(el)
		if err != nil {
			return err
		}
		g.Restrictions = append(g.Restrictions, r)
	case Is(el, "category"):
		g.Categories = append(g.Categories, ParseCategory(el))
	case Is(el, "credit"):
		g.Credits = append(g.Credits, ParseCredit(el))
	case Is(el, "content"):
		c, err := ParseContent(el)
		if err != nil {
			return err
		}
		g.Contents = append(g.Contents, c)
	case Is(el, "thumbnail"):
		t, err := ParseThumbnail(el)
		if err != nil {
			return err
		}
		g.Thumbnails = append(g.Thumbnails, t)
	default:
		return xmlutil.Unhandled(el, "media:group")
	}

	return nil
}

// DefaultContent returns the content marked isDefault, or the first one.
func (g *Group) DefaultContent() (Content, bool) {
	for _, c := range g.Contents {
		if c.IsDefault {
			return c, true
		}
	}
	if len(g.Contents) > 0 {
		return g.Contents[0], true
	}
	return Content{}, false
}

// Namespaces adds the prefixes the group's children use.
func (g *Group) Namespaces(ns map[string]string) {
	ns[Prefix] = gdata.NSMedia
	for _, c := range g.Contents {
		if c.Format > 0 {
			ns["yt"] = gdata.NSYouTube
			break
		}
	}
}

// AppendTo writes g as a <media:group> child of parent and returns the
// group element so extensions can add their own children.
func (g *Group) AppendTo(parent *etree.Element) *etree.Element {
	el := parent.CreateElement("media:group")
	g.EmitChildren(el)
	return el
}

// EmitChildren writes the children of the group into el.
func (g *Group) EmitChildren(el *etree.Element) {
	if g.Title != "" {
		xmlutil.AddText(el, "media:title", g.Title).CreateAttr("type", "plain")
	}
	if g.Description != "" {
		xmlutil.AddText(el, "media:description", g.Description).CreateAttr("type", "plain")
	}
	if len(g.Keywords) > 0 {
		xmlutil.AddText(el, "media:keywords", strings.Join(g.Keywords, ", "))
	}
	if g.PlayerURI != "" {
		el.CreateElement("media:player").CreateAttr("url", g.PlayerURI)
	}
	for _, r := range g.Ratings {
		r.AppendTo(el)
	}
	for _, r := range g.Restrictions {
		r.AppendTo(el)
	}
	for _, c := range g.Categories {
		c.AppendTo(el)
	}
	for _, c := range g.Credits {
		c.AppendTo(el)
	}
	for _, c := range g.Contents {
		c.AppendTo(el)
	}
	for _, t := range g.Thumbnails {
		t.AppendTo(el)
	}
}
