package documents_test

import (
	"errors"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/gdata"
	"github.com/jdholdren/gdata/documents"
	gdataerrs "github.com/jdholdren/gdata/errors"
)

const testFeed = `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005"
    xmlns:docs="http://schemas.google.com/docs/2007" xmlns:openSearch="http://a9.com/-/spec/opensearch/1.1/">
  <id>http://docs.google.com/feeds/default/private/full</id>
  <updated>2009-08-17T11:10:16.894Z</updated>
  <title>Available Documents - test@example.com</title>
  <openSearch:totalResults>5</openSearch:totalResults>
  <openSearch:itemsPerPage>5</openSearch:itemsPerPage>
  <entry>
    <id>http://docs.google.com/feeds/id/document%3A12345</id>
    <updated>2009-08-17T11:10:16.894Z</updated>
    <category scheme="http://schemas.google.com/g/2005#kind" term="http://schemas.google.com/docs/2007#document" label="document"/>
    <title>Letter</title>
    <content type="text/html" src="http://docs.google.com/feeds/download/documents/Export?docId=12345"/>
    <link rel="self" href="http://docs.google.com/feeds/default/private/full/document%3A12345"/>
    <gd:resourceId>document:12345</gd:resourceId>
    <gd:lastModifiedBy><name>test</name><email>test@example.com</email></gd:lastModifiedBy>
    <gd:lastViewed>2009-08-17T11:10:16.894Z</gd:lastViewed>
    <gd:quotaBytesUsed>1024</gd:quotaBytesUsed>
    <docs:writersCanInvite value="true"/>
    <gd:feedLink rel="http://schemas.google.com/acl/2007#accessControlList" href="http://docs.google.com/feeds/default/private/full/document%3A12345/acl"/>
  </entry>
  <entry>
    <title>Budget</title>
    <gd:resourceId>spreadsheet:abc</gd:resourceId>
  </entry>
  <entry>
    <title>Scan</title>
    <gd:resourceId>pdf:xyz</gd:resourceId>
  </entry>
  <entry>
    <title>Slides</title>
    <gd:resourceId>presentation:def</gd:resourceId>
  </entry>
  <entry>
    <title>Work</title>
    <gd:resourceId>folder:ghi</gd:resourceId>
  </entry>
</feed>`

func TestParseFeed(t *testing.T) {
	var indexes []uint64
	f, err := documents.ParseFeed([]byte(testFeed), gdata.FeedOptions[*documents.Document]{
		Progress: func(d *documents.Document, index, total uint64) {
			indexes = append(indexes, index)
		},
	})
	require.NoError(t, err)

	require.Len(t, f.Entries, 4)
	kinds := make([]documents.Kind, 0, len(f.Entries))
	for _, d := range f.Entries {
		kinds = append(kinds, d.Kind)
	}
	assert.Equal(t, []documents.Kind{documents.Text, documents.Spreadsheet, documents.Presentation, documents.Folder}, kinds)
	assert.Equal(t, []uint64{0, 1, 2, 3}, indexes)

	text := f.Entries[0]
	assert.Equal(t, "document:12345", text.ResourceID)
	assert.Equal(t, "12345", text.DocumentID())
	assert.True(t, text.WritersCanInvite)
	assert.EqualValues(t, 1024, text.QuotaBytesUsed)
	assert.Equal(t, time.Date(2009, 8, 17, 11, 10, 16, 894000000, time.UTC), text.LastViewed.UTC())
	require.NotNil(t, text.LastModifiedBy)
	assert.Equal(t, gdata.Author{Name: "test", Email: "test@example.com"}, *text.LastModifiedBy)
	require.Len(t, text.FeedLinks, 1)
	assert.True(t, text.ContentIsURI)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		want  documents.Kind
		kind  error
	}{
		{name: "text", entry: `<gd:resourceId>document:1</gd:resourceId>`, want: documents.Text},
		{name: "spreadsheet", entry: `<gd:resourceId>spreadsheet:1</gd:resourceId>`, want: documents.Spreadsheet},
		{name: "presentation", entry: `<title>x</title><gd:resourceId>presentation:1</gd:resourceId>`, want: documents.Presentation},
		{name: "folder", entry: `<gd:resourceId>folder:1</gd:resourceId>`, want: documents.Folder},
		{name: "unmodelled", entry: `<gd:resourceId>drawing:1</gd:resourceId>`, want: documents.KindUnknown},
		{name: "missing", entry: `<title>x</title>`, kind: gdataerrs.ErrRequiredElementMissing},
		{name: "no prefix", entry: `<gd:resourceId>12345</gd:resourceId>`, kind: gdataerrs.ErrUnknownContent},
		{name: "twice", entry: `<gd:resourceId>folder:1</gd:resourceId><gd:resourceId>folder:2</gd:resourceId>`, kind: gdataerrs.ErrDuplicateElement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := etree.NewDocument()
			require.NoError(t, doc.ReadFromString(`<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005">`+tt.entry+`</entry>`))

			got, err := documents.Classify(doc.Root())
			if tt.kind != nil {
				assert.True(t, errors.Is(err, tt.kind), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDocument(t *testing.T) {
	_, err := documents.ParseDocument([]byte(`<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005"><title>Scan</title><gd:resourceId>pdf:1</gd:resourceId></entry>`))
	assert.EqualError(t, err, `content of <gd:resourceId> in <entry> had unknown value "pdf:1"`)

	_, err = documents.ParseDocument([]byte(`<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005"><title>T</title><gd:resourceId>folder:1</gd:resourceId><gd:lastModifiedBy><nick>x</nick></gd:lastModifiedBy></entry>`))
	assert.EqualError(t, err, "unhandled <nick> element as a child of <gd:lastModifiedBy>")
}

func TestDocumentRoundTrip(t *testing.T) {
	d := documents.NewDocument(documents.Spreadsheet, "Budget")
	d.ResourceID = "spreadsheet:abc"
	d.WritersCanInvite = true
	d.LastModifiedBy = &gdata.Author{Name: "test", Email: "test@example.com"}

	out, err := d.XML()
	require.NoError(t, err)
	assert.Contains(t, out, `term="http://schemas.google.com/docs/2007#spreadsheet"`)
	assert.Contains(t, out, `xmlns:docs="http://schemas.google.com/docs/2007"`)

	got, err := documents.ParseDocument([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, documents.Spreadsheet, got.Kind)
	assert.Equal(t, d.ResourceID, got.ResourceID)
	assert.True(t, got.WritersCanInvite)
	assert.Equal(t, d.LastModifiedBy, got.LastModifiedBy)
	require.Len(t, got.Categories, 1)

	// The kind category is not doubled on a second trip.
	again, err := got.XML()
	require.NoError(t, err)
	reparsed, err := documents.ParseDocument([]byte(again))
	require.NoError(t, err)
	assert.Len(t, reparsed.Categories, 1)
}

func TestExportURI(t *testing.T) {
	d := documents.NewDocument(documents.Text, "Letter")
	d.SetContentURI("http://docs.google.com/feeds/download/documents/Export?docId=12345")

	uri, err := d.ExportURI("pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://docs.google.com/feeds/download/documents/Export?docId=12345&exportFormat=pdf", uri)

	_, err = d.ExportURI("xls")
	assert.Error(t, err)

	folder := documents.NewDocument(documents.Folder, "Work")
	_, err = folder.ExportURI("pdf")
	assert.Error(t, err)
}
