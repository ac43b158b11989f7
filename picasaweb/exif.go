package picasaweb

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/jdholdren/gdata"
	gdataerrs "github.com/jdholdren/gdata/errors"
	"github.com/jdholdren/gdata/internal/xmlutil"
)

// Exif is <exif:tags>, the camera data of a photo.
type Exif struct {
	FStop         float64
	Make          string
	Model         string
	Exposure      float64
	Flash         bool
	FocalLength   float64
	ISO           uint64
	Time          time.Time
	ImageUniqueID string
	Distance      float64
}

func isExif(el *etree.Element, local string) bool {
	return xmlutil.Is(el, gdata.NSExif, local)
}

func parseExif(el *etree.Element) (*Exif, error) {
	x := &Exif{}
	for _, child := range el.ChildElements() {
		var err error
		switch {
		case isExif(child, "fstop"):
			x.FStop, err = floatText(child, "exif:tags")
		case isExif(child, "make"):
			x.Make = child.Text()
		case isExif(child, "model"):
			x.Model = child.Text()
		case isExif(child, "exposure"):
			x.Exposure, err = floatText(child, "exif:tags")
		case isExif(child, "flash"):
			x.Flash, err = boolText(child, "exif:tags")
		case isExif(child, "focallength"):
			x.FocalLength, err = floatText(child, "exif:tags")
		case isExif(child, "iso"):
			x.ISO, err = xmlutil.UintText(child, "exif:tags")
		case isExif(child, "time"):
			x.Time, err = millisText(child, "exif:tags")
		case isExif(child, "imageUniqueID"):
			x.ImageUniqueID = child.Text()
		case isExif(child, "distance"):
			x.Distance, err = floatText(child, "exif:tags")
		default:
			return nil, xmlutil.Unhandled(child, xmlutil.QName(el))
		}
		if err != nil {
			return nil, err
		}
	}
	return x, nil
}

func (x *Exif) appendTo(parent *etree.Element) {
	el := parent.CreateElement("exif:tags")
	if x.FStop > 0 {
		xmlutil.AddText(el, "exif:fstop", formatFloat(x.FStop))
	}
	if x.Make != "" {
		xmlutil.AddText(el, "exif:make", x.Make)
	}
	if x.Model != "" {
		xmlutil.AddText(el, "exif:model", x.Model)
	}
	if x.Exposure > 0 {
		xmlutil.AddText(el, "exif:exposure", formatFloat(x.Exposure))
	}
	xmlutil.AddText(el, "exif:flash", xmlutil.FormatBool(x.Flash))
	if x.FocalLength > 0 {
		xmlutil.AddText(el, "exif:focallength", formatFloat(x.FocalLength))
	}
	if x.ISO > 0 {
		xmlutil.AddText(el, "exif:iso", strconv.FormatUint(x.ISO, 10))
	}
	if !x.Time.IsZero() {
		xmlutil.AddText(el, "exif:time", formatMillis(x.Time))
	}
	if x.ImageUniqueID != "" {
		xmlutil.AddText(el, "exif:imageUniqueID", x.ImageUniqueID)
	}
	if x.Distance > 0 {
		xmlutil.AddText(el, "exif:distance", formatFloat(x.Distance))
	}
}

func unknownText(el *etree.Element, parent, v string) error {
	return gdataerrs.E(gdataerrs.UnknownContent,
		gdataerrs.Prefix(el.Space), gdataerrs.Element(el.Tag), gdataerrs.Parent(parent), gdataerrs.Value(v))
}

func floatText(el *etree.Element, parent string) (float64, error) {
	v := strings.TrimSpace(el.Text())
	if v == "" {
		return 0, xmlutil.MissingContent(el, parent)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, unknownText(el, parent, v)
	}
	return f, nil
}

func boolText(el *etree.Element, parent string) (bool, error) {
	switch v := strings.TrimSpace(el.Text()); v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, unknownText(el, parent, v)
	}
}

// Photos timestamps are milliseconds since the Unix epoch.
func millisText(el *etree.Element, parent string) (time.Time, error) {
	ms, err := xmlutil.UintText(el, parent)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
