// Package picasaweb maps PicasaWeb photo and video entries.
package picasaweb

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	gdataerrs "github.com/jdholdren/gdata/errors"
	"github.com/jdholdren/gdata/internal/xmlutil"
	"github.com/jdholdren/gdata/media"
)

const (
	Prefix = "gphoto"

	KindPhoto = gdata.NSPhotos + "#photo"
)

// Processing states of an uploaded video.
const (
	VideoPending = "pending"
	VideoReady   = "ready"
	VideoFinal   = "final"
	VideoFailed  = "failed"
)

func isPhoto(el *etree.Element, local string) bool {
	return xmlutil.Is(el, gdata.NSPhotos, local)
}

// Point is a position from <georss:where><gml:Point><gml:pos>.
type Point struct {
	Lat float64
	Lon float64
}

func parseWhere(el *etree.Element) (*Point, error) {
	var point *etree.Element
	for _, child := range el.ChildElements() {
		if !xmlutil.Is(child, gdata.NSGML, "Point") {
			return nil, xmlutil.Unhandled(child, xmlutil.QName(el))
		}
		if point != nil {
			return nil, xmlutil.Duplicate(child, xmlutil.QName(el))
		}
		point = child
	}
	if point == nil {
		return nil, xmlutil.Missing("gml:Point", xmlutil.QName(el))
	}

	var pos *etree.Element
	for _, child := range point.ChildElements() {
		if !xmlutil.Is(child, gdata.NSGML, "pos") {
			return nil, xmlutil.Unhandled(child, xmlutil.QName(point))
		}
		pos = child
	}
	if pos == nil {
		return nil, xmlutil.Missing("gml:pos", xmlutil.QName(point))
	}

	v := strings.TrimSpace(pos.Text())
	fields := strings.Fields(v)
	if len(fields) != 2 {
		return nil, unknownText(pos, xmlutil.QName(point), v)
	}
	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, unknownText(pos, xmlutil.QName(point), v)
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, unknownText(pos, xmlutil.QName(point), v)
	}
	return &Point{Lat: lat, Lon: lon}, nil
}

func (p *Point) appendTo(parent *etree.Element) {
	pos := parent.CreateElement("georss:where").CreateElement("gml:Point").CreateElement("gml:pos")
	pos.SetText(formatFloat(p.Lat) + " " + formatFloat(p.Lon))
}

// File is one photo or video in an album feed.
type File struct {
	gdata.Entry

	PhotoID           string
	AlbumID           string
	Version           string
	Position          float64
	Width             uint64
	Height            uint64
	Size              uint64
	Client            string
	Checksum          string
	Timestamp         time.Time
	CommentingEnabled bool
	CommentCount      uint64
	VideoStatus       string
	Rotation          uint64

	Exif   *Exif
	Where  *Point
	Group  *media.Group
	Edited time.Time
}

var _ gdata.Parsable = (*File)(nil)

// NewFile makes a client-authored photo entry.
func NewFile(title string) *File {
	f := &File{Entry: *gdata.NewEntry(title), CommentingEnabled: true}
	f.AddCategory(gdata.Category{Term: KindPhoto, Scheme: gdata.KindScheme})
	return f
}

// ParseFile parses a standalone photo <entry>.
func ParseFile(data []byte) (*File, error) {
	f := &File{}
	if err := gdata.Unmarshal(data, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ParseFeed parses an album feed.
func ParseFeed(data []byte, opts gdata.FeedOptions[*File]) (*gdata.Feed[*File], error) {
	return gdata.ParseFeed(data, gdata.Construct(func() *File { return &File{} }), opts)
}

func (f *File) ParseElement(el *etree.Element) error {
	if isPhoto(el, el.Tag) {
		return f.parsePhoto(el)
	}

	switch {
	case isExif(el, "tags"):
		x, err := parseExif(el)
		if err != nil {
			return err
		}
		f.Exif = x
	case xmlutil.Is(el, gdata.NSGeoRSS, "where"):
		p, err := parseWhere(el)
		if err != nil {
			return err
		}
		f.Where = p
	case media.Is(el, "group"):
		if f.Group != nil {
			return xmlutil.Duplicate(el, "entry")
		}
		g := &media.Group{}
		if err := g.Decode(el); err != nil {
			return err
		}
		f.Group = g
	case xmlutil.Is(el, gdata.NSApp, "edited"):
		t, err := xmlutil.TimeText(el, "entry")
		if err != nil {
			return err
		}
		f.Edited = t
	default:
		return gdataerrs.Reparent(f.Entry.ParseElement(el), el.Space, el.Tag, "entry")
	}

	return nil
}

func (f *File) parsePhoto(el *etree.Element) error {
	var err error
	switch el.Tag {
	case "id":
		f.PhotoID = el.Text()
	case "albumid":
		f.AlbumID = el.Text()
	case "version":
		f.Version = el.Text()
	case "position":
		f.Position, err = floatText(el, "entry")
	case "width":
		f.Width, err = xmlutil.UintText(el, "entry")
	case "height":
		f.Height, err = xmlutil.UintText(el, "entry")
	case "size":
		f.Size, err = xmlutil.UintText(el, "entry")
	case "client":
		f.Client = el.Text()
	case "checksum":
		f.Checksum = el.Text()
	case "timestamp":
		f.Timestamp, err = millisText(el, "entry")
	case "commentingEnabled":
		f.CommentingEnabled, err = boolText(el, "entry")
	case "commentCount":
		f.CommentCount, err = xmlutil.UintText(el, "entry")
	case "videostatus":
		switch v := el.Text(); v {
		case VideoPending, VideoReady, VideoFinal, VideoFailed:
			f.VideoStatus = v
		default:
			err = unknownText(el, "entry", v)
		}
	case "rotation":
		f.Rotation, err = xmlutil.UintText(el, "entry")
		if err == nil && f.Rotation%90 != 0 {
			err = unknownText(el, "entry", el.Text())
		}
	default:
		return xmlutil.Unhandled(el, "entry")
	}

	return err
}

// IsVideo reports whether the file is a video rather than a photo.
func (f *File) IsVideo() bool {
	return f.VideoStatus != ""
}

func (f *File) EmitBody(el *etree.Element) {
	f.Entry.EmitBody(el)

	if f.PhotoID != "" {
		xmlutil.AddText(el, "gphoto:id", f.PhotoID)
	}
	if f.AlbumID != "" {
		xmlutil.AddText(el, "gphoto:albumid", f.AlbumID)
	}
	if f.Version != "" {
		xmlutil.AddText(el, "gphoto:version", f.Version)
	}
	if f.Position > 0 {
		xmlutil.AddText(el, "gphoto:position", formatFloat(f.Position))
	}
	if f.Width > 0 {
		xmlutil.AddText(el, "gphoto:width", strconv.FormatUint(f.Width, 10))
	}
	if f.Height > 0 {
		xmlutil.AddText(el, "gphoto:height", strconv.FormatUint(f.Height, 10))
	}
	if f.Size > 0 {
		xmlutil.AddText(el, "gphoto:size", strconv.FormatUint(f.Size, 10))
	}
	if f.Client != "" {
		xmlutil.AddText(el, "gphoto:client", f.Client)
	}
	if f.Checksum != "" {
		xmlutil.AddText(el, "gphoto:checksum", f.Checksum)
	}
	if !f.Timestamp.IsZero() {
		xmlutil.AddText(el, "gphoto:timestamp", formatMillis(f.Timestamp))
	}
	xmlutil.AddText(el, "gphoto:commentingEnabled", xmlutil.FormatBool(f.CommentingEnabled))
	if f.CommentCount > 0 {
		xmlutil.AddText(el, "gphoto:commentCount", strconv.FormatUint(f.CommentCount, 10))
	}
	if f.VideoStatus != "" {
		xmlutil.AddText(el, "gphoto:videostatus", f.VideoStatus)
	}
	if f.Rotation > 0 {
		xmlutil.AddText(el, "gphoto:rotation", strconv.FormatUint(f.Rotation, 10))
	}

	if f.Exif != nil {
		f.Exif.appendTo(el)
	}
	if f.Where != nil {
		f.Where.appendTo(el)
	}
	if f.Group != nil {
		f.Group.AppendTo(el)
	}
	if !f.Edited.IsZero() {
		xmlutil.AddText(el, "app:edited", xmlutil.FormatTime(f.Edited))
	}
}

func (f *File) Namespaces(ns map[string]string) {
	f.Entry.Namespaces(ns)

	ns[Prefix] = gdata.NSPhotos
	if f.Exif != nil {
		ns["exif"] = gdata.NSExif
	}
	if f.Where != nil {
		ns["georss"] = gdata.NSGeoRSS
		ns["gml"] = gdata.NSGML
	}
	if f.Group != nil {
		f.Group.Namespaces(ns)
	}
	if !f.Edited.IsZero() {
		ns["app"] = gdata.NSApp
	}
}

// XML serializes the file as a standalone <entry> document.
func (f *File) XML() (string, error) {
	return gdata.Marshal(f)
}
