// Package server is the read only HTTP view of the archive.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jdholdren/gdata/api"
	"github.com/jdholdren/gdata/internal/archive"
	"github.com/jdholdren/gdata/internal/serverutil"
	"github.com/jdholdren/gdata/internal/sync"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type (
	// Server serves the archived feeds and entries.
	Server struct {
		*http.Server

		repo           archive.Repository
		entryRespCache *expirable.LRU[string, EntryResp]
	}

	// Config holds all of the different options for making a
	// server.
	Config struct {
		Port       int
		CorsOrigin string
	}
)

func New(config Config, repo archive.Repository) *Server {
	r := serverutil.ErrRouter{Router: mux.NewRouter()}

	srvr := &Server{
		repo:           repo,
		entryRespCache: expirable.NewLRU[string, EntryResp](1024, nil, time.Minute),
	}
	srvr.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Handler: handlers.CORS(
			handlers.AllowedOrigins([]string{config.CorsOrigin}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		)(r),
	}

	r.Use(serverutil.AccessLogMiddleware) // Log everything
	r.HandleFuncE("/api/feeds", srvr.getFeed).Methods(http.MethodGet)
	r.HandleFuncE("/api/entries", srvr.getEntries).Methods(http.MethodGet)
	r.HandleFuncE("/api/entries/{entryID}", srvr.getEntry).Methods(http.MethodGet)
	r.HandleFuncE("/api/entries/{entryID}/atom", srvr.getEntryAtom).Methods(http.MethodGet)

	slog.Debug("configured archive server", "port", config.Port)

	return srvr
}

type FeedResp struct {
	URL          string    `json:"url"`
	Service      string    `json:"service"`
	Title        string    `json:"title"`
	AtomID       string    `json:"atom_id"`
	TotalResults uint64    `json:"total_results"`
	SyncedAt     time.Time `json:"synced_at"`
}

func (s *Server) getFeed(w http.ResponseWriter, r *http.Request) error {
	url := r.URL.Query().Get("url")
	if url == "" {
		return api.BadRequest("missing feed", api.ErrorDetail{Field: "url", Error: "required"})
	}

	feed, err := s.repo.Feed(r.Context(), url)
	if errors.Is(err, archive.ErrNotFound) {
		return api.NotFound("feed not found")
	}
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, FeedResp{
		URL:          feed.URL,
		Service:      feed.Service,
		Title:        feed.Title,
		AtomID:       feed.AtomID,
		TotalResults: feed.TotalResults,
		SyncedAt:     feed.SyncedAt,
	})
}

type (
	EntrySummary struct {
		ID        string     `json:"id"`
		FeedURL   string     `json:"feed_url"`
		AtomID    string     `json:"atom_id"`
		Title     string     `json:"title"`
		Snippet   string     `json:"snippet"`
		UpdatedAt *time.Time `json:"updated_at"`
	}

	EntriesResp struct {
		Entries []EntrySummary `json:"entries"`
		Limit   int            `json:"limit"`
	}
)

func (s *Server) getEntries(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()

	// Parse limit with validation
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	q := archive.EntriesQuery{
		FeedURL: query.Get("feed"),
		Limit:   uint64(limit),
	}
	if since := query.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return api.BadRequest("invalid query", api.ErrorDetail{Field: "since", Error: "not an RFC 3339 time"})
		}
		q.UpdatedSince = t.UTC()
	}

	entries, err := s.repo.Entries(r.Context(), q)
	if err != nil {
		return err
	}

	resp := EntriesResp{Entries: make([]EntrySummary, 0, len(entries)), Limit: limit}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, EntrySummary{
			ID:        e.ID,
			FeedURL:   e.FeedURL,
			AtomID:    e.AtomID,
			Title:     e.Title,
			Snippet:   e.Snippet,
			UpdatedAt: e.UpdatedAt,
		})
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}

type (
	// EntryResp is an archived entry reparsed with its service's type.
	EntryResp struct {
		EntrySummary
		Service    string     `json:"service"`
		ETag       string     `json:"etag,omitempty"`
		Published  *time.Time `json:"published,omitempty"`
		Authors    []string   `json:"authors"`
		Categories []string   `json:"categories"`
		Links      []LinkResp `json:"links"`
	}

	LinkResp struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
		Type string `json:"type,omitempty"`
	}
)

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx     = r.Context()
		entryID = mux.Vars(r)["entryID"]
	)

	// Cache results for less processing
	if resp, ok := s.entryRespCache.Get(entryID); ok {
		return serverutil.WriteJSON(w, http.StatusOK, resp)
	}

	entry, err := s.repo.Entry(ctx, entryID)
	if errors.Is(err, archive.ErrNotFound) {
		return api.NotFound("entry not found")
	}
	if err != nil {
		return err
	}
	feed, err := s.repo.Feed(ctx, entry.FeedURL)
	if err != nil {
		return fmt.Errorf("error getting feed of entry %s: %w", entryID, err)
	}

	parsed, err := sync.ParseEntry(feed.Service, []byte(entry.XML))
	if err != nil {
		return fmt.Errorf("error reparsing entry %s: %w", entryID, err)
	}

	resp := EntryResp{
		EntrySummary: EntrySummary{
			ID:        entry.ID,
			FeedURL:   entry.FeedURL,
			AtomID:    entry.AtomID,
			Title:     entry.Title,
			Snippet:   entry.Snippet,
			UpdatedAt: entry.UpdatedAt,
		},
		Service:    feed.Service,
		ETag:       parsed.ETag,
		Authors:    make([]string, 0, len(parsed.Authors)),
		Categories: make([]string, 0, len(parsed.Categories)),
		Links:      make([]LinkResp, 0, len(parsed.Links)),
	}
	if !parsed.Published.IsZero() {
		published := parsed.Published.UTC()
		resp.Published = &published
	}
	for _, a := range parsed.Authors {
		resp.Authors = append(resp.Authors, a.Name)
	}
	for _, c := range parsed.Categories {
		resp.Categories = append(resp.Categories, c.Term)
	}
	for _, l := range parsed.Links {
		resp.Links = append(resp.Links, LinkResp{Href: l.Href, Rel: l.Rel, Type: l.Type})
	}

	s.entryRespCache.Add(entryID, resp)
	return serverutil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) getEntryAtom(w http.ResponseWriter, r *http.Request) error {
	entry, err := s.repo.Entry(r.Context(), mux.Vars(r)["entryID"])
	if errors.Is(err, archive.ErrNotFound) {
		return api.NotFound("entry not found")
	}
	if err != nil {
		return err
	}

	return serverutil.WriteAtom(w, http.StatusOK, entry.XML)
}
