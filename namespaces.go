package gdata

// XML namespaces used across the GData services. The prefixes are the ones
// the services themselves emit.
const (
	NSAtom          = "http://www.w3.org/2005/Atom"
	NSApp           = "http://www.w3.org/2007/app"
	NSGData         = "http://schemas.google.com/g/2005"
	NSOpenSearch    = "http://a9.com/-/spec/opensearch/1.1/"
	NSOpenSearchRSS = "http://a9.com/-/spec/opensearchrss/1.0/"
	NSMedia         = "http://search.yahoo.com/mrss/"
	NSCalendar      = "http://schemas.google.com/gCal/2005"
	NSYouTube       = "http://gdata.youtube.com/schemas/2007"
	NSPhotos        = "http://schemas.google.com/photos/2007"
	NSExif          = "http://schemas.google.com/photos/exif/2007"
	NSGeoRSS        = "http://www.georss.org/georss"
	NSGML           = "http://www.opengis.net/gml"
	NSDocuments     = "http://schemas.google.com/docs/2007"
	NSContacts      = "http://schemas.google.com/contact/2008"
)

// KindScheme is the category scheme GData uses to tag an entry's kind.
const KindScheme = NSGData + "#kind"
