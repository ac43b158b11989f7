// Package media maps the Media RSS vocabulary GData reuses for videos and
// photos: <media:group> and the values inside it.
package media

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	"github.com/jdholdren/gdata/internal/xmlutil"
)

const Prefix = "media"

// Is reports whether el is the Media RSS element local.
func Is(el *etree.Element, local string) bool {
	return xmlutil.Is(el, gdata.NSMedia, local)
}

// Rating is <media:rating>.
type Rating struct {
	Scheme    string
	Countries []string
	Value     string
}

func ParseRating(el *etree.Element) Rating {
	r := Rating{Value: el.Text()}
	r.Scheme, _ = xmlutil.Attr(el, "scheme")
	if c, ok := xmlutil.Attr(el, "country"); ok {
		r.Countries = strings.Fields(strings.ReplaceAll(c, ",", " "))
	}
	return r
}

func (r Rating) AppendTo(parent *etree.Element) {
	el := xmlutil.AddText(parent, "media:rating", r.Value)
	xmlutil.AddAttr(el, "scheme", r.Scheme)
	xmlutil.AddAttr(el, "country", strings.Join(r.Countries, ","))
}

// Relationship says whether a Restriction lists who may or may not view.
type Relationship string

const (
	Allow Relationship = "allow"
	Deny  Relationship = "deny"
)

// Restriction is <media:restriction>. The element text lists the
// restricted entities, separated by spaces.
type Restriction struct {
	Relationship Relationship
	Type         string
	Countries    []string
}

func ParseRestriction(el *etree.Element) (Restriction, error) {
	if _, err := xmlutil.RequireAttr(el, "relationship"); err != nil {
		return Restriction{}, err
	}
	rel, err := xmlutil.EnumAttr(el, "relationship", string(Allow), string(Deny))
	if err != nil {
		return Restriction{}, err
	}
	typ, err := xmlutil.EnumAttr(el, "type", "country", "uri", "sharing")
	if err != nil {
		return Restriction{}, err
	}

	return Restriction{
		Relationship: Relationship(rel),
		Type:         typ,
		Countries:    strings.Fields(el.Text()),
	}, nil
}

func (r Restriction) AppendTo(parent *etree.Element) {
	el := xmlutil.AddText(parent, "media:restriction", strings.Join(r.Countries, " "))
	el.CreateAttr("relationship", string(r.Relationship))
	xmlutil.AddAttr(el, "type", r.Type)
}

// Category is <media:category>. The value is the element text.
type Category struct {
	Scheme string
	Label  string
	Value  string
}

func ParseCategory(el *etree.Element) Category {
	c := Category{Value: el.Text()}
	c.Scheme, _ = xmlutil.Attr(el, "scheme")
	c.Label, _ = xmlutil.Attr(el, "label")
	return c
}

func (c Category) AppendTo(parent *etree.Element) {
	el := xmlutil.AddText(parent, "media:category", c.Value)
	xmlutil.AddAttr(el, "scheme", c.Scheme)
	xmlutil.AddAttr(el, "label", c.Label)
}

// Credit is <media:credit>, naming someone involved in making the media.
type Credit struct {
	Role   string
	Scheme string
	Name   string
}

func ParseCredit(el *etree.Element) Credit {
	c := Credit{Name: el.Text()}
	c.Role, _ = xmlutil.Attr(el, "role")
	c.Scheme, _ = xmlutil.Attr(el, "scheme")
	return c
}

func (c Credit) AppendTo(parent *etree.Element) {
	el := xmlutil.AddText(parent, "media:credit", c.Name)
	xmlutil.AddAttr(el, "role", c.Role)
	xmlutil.AddAttr(el, "scheme", c.Scheme)
}

// Expression says how much of the source a Content represents.
type Expression string

const (
	ExpressionSample  Expression = "sample"
	ExpressionFull    Expression = "full"
	ExpressionNonstop Expression = "nonstop"
)

// Medium is the broad type of a Content.
type Medium string

const (
	MediumImage      Medium = "image"
	MediumAudio      Medium = "audio"
	MediumVideo      Medium = "video"
	MediumDocument   Medium = "document"
	MediumExecutable Medium = "executable"
)

// Content is <media:content>, one rendition of the media.
type Content struct {
	URI        string
	FileSize   int64 // -1 when unknown
	Type       string
	Medium     Medium
	IsDefault  bool
	Expression Expression
	Duration   time.Duration
	Height     uint64
	Width      uint64

	// Format is YouTube's yt:format code for the rendition, 0 when absent.
	Format uint64
}

func ParseContent(el *etree.Element) (Content, error) {
	uri, err := xmlutil.RequireAttr(el, "url")
	if err != nil {
		return Content{}, err
	}

	c := Content{URI: uri, FileSize: -1}
	c.Type, _ = xmlutil.Attr(el, "type")

	if v, ok := xmlutil.Attr(el, "fileSize"); ok {
		n, err := xmlutil.UintAttr(el, "fileSize", 0)
		if err != nil || n > 1<<62 {
			return Content{}, xmlutil.UnknownAttr(el, "fileSize", v)
		}
		c.FileSize = int64(n)
	}

	medium, err := xmlutil.EnumAttr(el, "medium",
		string(MediumImage), string(MediumAudio), string(MediumVideo), string(MediumDocument), string(MediumExecutable))
	if err != nil {
		return Content{}, err
	}
	c.Medium = Medium(medium)

	if c.IsDefault, err = xmlutil.BoolAttr(el, "isDefault", false); err != nil {
		return Content{}, err
	}

	expr, err := xmlutil.EnumAttr(el, "expression",
		string(ExpressionSample), string(ExpressionFull), string(ExpressionNonstop))
	if err != nil {
		return Content{}, err
	}
	c.Expression = Expression(expr)

	secs, err := xmlutil.UintAttr(el, "duration", 0)
	if err != nil {
		return Content{}, err
	}
	c.Duration = time.Duration(secs) * time.Second

	if c.Height, err = xmlutil.UintAttr(el, "height", 0); err != nil {
		return Content{}, err
	}
	if c.Width, err = xmlutil.UintAttr(el, "width", 0); err != nil {
		return Content{}, err
	}

	if v, ok := xmlutil.AttrNS(el, gdata.NSYouTube, "format"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Content{}, xmlutil.UnknownAttr(el, "yt:format", v)
		}
		c.Format = n
	}
	return c, nil
}

func (c Content) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("media:content")
	el.CreateAttr("url", c.URI)
	xmlutil.AddAttr(el, "type", c.Type)
	if c.FileSize >= 0 {
		el.CreateAttr("fileSize", strconv.FormatInt(c.FileSize, 10))
	}
	xmlutil.AddAttr(el, "medium", string(c.Medium))
	el.CreateAttr("isDefault", xmlutil.FormatBool(c.IsDefault))
	xmlutil.AddAttr(el, "expression", string(c.Expression))
	if c.Duration > 0 {
		el.CreateAttr("duration", strconv.FormatInt(int64(c.Duration/time.Second), 10))
	}
	if c.Height > 0 {
		el.CreateAttr("height", strconv.FormatUint(c.Height, 10))
	}
	if c.Width > 0 {
		el.CreateAttr("width", strconv.FormatUint(c.Width, 10))
	}
	if c.Format > 0 {
		el.CreateAttr("yt:format", strconv.FormatUint(c.Format, 10))
	}
}

// Thumbnail is <media:thumbnail>. Time is the offset into the media the
// image was taken from, if known.
type Thumbnail struct {
	URI    string
	Width  uint64
	Height uint64
	Time   time.Duration
}

func ParseThumbnail(el *etree.Element) (Thumbnail, error) {
	uri, err := xmlutil.RequireAttr(el, "url")
	if err != nil {
		return Thumbnail{}, err
	}

	t := Thumbnail{URI: uri}
	if t.Width, err = xmlutil.UintAttr(el, "width", 0); err != nil {
		return Thumbnail{}, err
	}
	if t.Height, err = xmlutil.UintAttr(el, "height", 0); err != nil {
		return Thumbnail{}, err
	}
	if v, ok := xmlutil.Attr(el, "time"); ok {
		if t.Time, err = ParseNPT(v); err != nil {
			return Thumbnail{}, xmlutil.UnknownAttr(el, "time", v)
		}
	}
	return t, nil
}

func (t Thumbnail) AppendTo(parent *etree.Element) {
	el := parent.CreateElement("media:thumbnail")
	el.CreateAttr("url", t.URI)
	if t.Width > 0 {
		el.CreateAttr("width", strconv.FormatUint(t.Width, 10))
	}
	if t.Height > 0 {
		el.CreateAttr("height", strconv.FormatUint(t.Height, 10))
	}
	if t.Time > 0 {
		el.CreateAttr("time", FormatNPT(t.Time))
	}
}

// ParseNPT parses a normal play time offset, hh:mm:ss.fff.
func ParseNPT(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid play time %q", s)
	}

	h, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", s, err)
	}
	m, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil || m > 59 {
		return 0, fmt.Errorf("invalid minutes in %q", s)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("invalid seconds in %q", s)
	}

	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second)).Round(time.Millisecond), nil
}

// FormatNPT renders d as hh:mm:ss.fff.
func FormatNPT(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, d/time.Millisecond)
}
