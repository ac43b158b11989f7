package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/gdata/api"
	"github.com/jdholdren/gdata/internal/archive"
)

const testEventXML = `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005" gd:etag="W/&quot;e1&quot;">
  <id>urn:event:1</id>
  <title>Tennis with Beth</title>
  <published>2009-04-17T15:29:13.000Z</published>
  <author><name>Beth</name></author>
  <link rel="alternate" type="text/html" href="http://example.com/event/1"/>
  <gd:when startTime="2009-04-17T15:00:00.000+01:00"/>
</entry>`

type fakeRepo struct {
	feeds      map[string]archive.Feed
	entries    map[string]archive.Entry
	lastQuery  archive.EntriesQuery
	entryReads int
}

func (r *fakeRepo) Feed(_ context.Context, url string) (archive.Feed, error) {
	f, ok := r.feeds[url]
	if !ok {
		return archive.Feed{}, archive.ErrNotFound
	}
	return f, nil
}

func (r *fakeRepo) SaveFeed(context.Context, archive.Feed) error { return nil }

func (r *fakeRepo) SaveEntries(context.Context, []archive.Entry) error { return nil }

func (r *fakeRepo) Entries(_ context.Context, q archive.EntriesQuery) ([]archive.Entry, error) {
	r.lastQuery = q
	var out []archive.Entry
	for _, e := range r.entries {
		if q.FeedURL == "" || e.FeedURL == q.FeedURL {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) Entry(_ context.Context, id string) (archive.Entry, error) {
	r.entryReads++
	e, ok := r.entries[id]
	if !ok {
		return archive.Entry{}, archive.ErrNotFound
	}
	return e, nil
}

const feedURL = "http://example.com/calendar/feeds/default/private/full"

func newTestServer(t *testing.T) (*Server, *fakeRepo) {
	t.Helper()

	updated := time.Date(2009, 4, 17, 15, 29, 13, 0, time.UTC)
	repo := &fakeRepo{
		feeds: map[string]archive.Feed{
			feedURL: {URL: feedURL, Service: "calendar", Title: "Events", AtomID: "urn:feed", TotalResults: 1, SyncedAt: updated},
		},
		entries: map[string]archive.Entry{
			"abc-ntry": {ID: "abc-ntry", FeedURL: feedURL, AtomID: "urn:event:1", Title: "Tennis with Beth", UpdatedAt: &updated, XML: testEventXML},
		},
	}
	return New(Config{Port: 0, CorsOrigin: "*"}, repo), repo
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetFeed(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/feeds?url="+url.QueryEscape(feedURL))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp FeedResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "calendar", resp.Service)
	assert.Equal(t, "Events", resp.Title)
	assert.EqualValues(t, 1, resp.TotalResults)
}

func TestGetFeed_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/feeds")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var apiErr api.Error
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
	assert.Equal(t, "bad_request", apiErr.Reason)
	assert.Equal(t, []api.ErrorDetail{{Field: "url", Error: "required"}}, apiErr.Details)

	rec = get(t, s, "/api/feeds?url=http://nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEntries(t *testing.T) {
	s, repo := newTestServer(t)

	rec := get(t, s, "/api/entries?feed="+url.QueryEscape(feedURL)+"&since=2009-01-01T00:00:00Z&limit=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EntriesResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "abc-ntry", resp.Entries[0].ID)
	assert.Equal(t, 10, resp.Limit)

	assert.Equal(t, feedURL, repo.lastQuery.FeedURL)
	assert.EqualValues(t, 10, repo.lastQuery.Limit)
	assert.True(t, repo.lastQuery.UpdatedSince.Equal(time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)))

	// Out of range limits fall back to the default.
	rec = get(t, s, "/api/entries?limit=100000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, defaultLimit, repo.lastQuery.Limit)

	rec = get(t, s, "/api/entries?since="+url.QueryEscape("2024-02-01T01:00:00+02:00"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, repo.lastQuery.UpdatedSince.Equal(time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, repo.lastQuery.UpdatedSince.Location())

	rec = get(t, s, "/api/entries?since=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEntry(t *testing.T) {
	s, repo := newTestServer(t)

	rec := get(t, s, "/api/entries/abc-ntry")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EntryResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "calendar", resp.Service)
	assert.Equal(t, `W/"e1"`, resp.ETag)
	assert.Equal(t, []string{"Beth"}, resp.Authors)
	assert.Equal(t, []LinkResp{{Href: "http://example.com/event/1", Rel: "alternate", Type: "text/html"}}, resp.Links)
	require.NotNil(t, resp.Published)
	assert.True(t, resp.Published.Equal(time.Date(2009, 4, 17, 15, 29, 13, 0, time.UTC)))

	// The second read is served from the cache.
	rec = get(t, s, "/api/entries/abc-ntry")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.entryReads)

	rec = get(t, s, "/api/entries/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEntry_Unparsable(t *testing.T) {
	s, repo := newTestServer(t)
	e := repo.entries["abc-ntry"]
	e.XML = "<entry"
	repo.entries["bad-ntry"] = e

	rec := get(t, s, "/api/entries/bad-ntry")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var apiErr api.Error
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
	assert.Equal(t, "internal", apiErr.Reason)
}

func TestGetEntryAtom(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/entries/abc-ntry/atom")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/atom+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, testEventXML, rec.Body.String())
}
