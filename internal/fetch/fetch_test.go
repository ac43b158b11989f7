package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/gdata/internal/cache"
)

const testFeed = `<feed xmlns="http://www.w3.org/2005/Atom"><title>t</title></feed>`

func newClient(t *testing.T) *Client {
	t.Helper()
	c, err := cache.NewLRU(8)
	require.NoError(t, err)
	return New(c, time.Second, WithBackoff(func() retry.Backoff {
		return retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))
	}))
}

func TestGet_Conditional(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "2", r.Header.Get("GData-Version"))
		if r.Header.Get("If-None-Match") == `W/"abc"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `W/"abc"`)
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	c := newClient(t)
	ctx := context.Background()

	first, err := c.Get(ctx, srv.URL)
	require.NoError(t, err)
	assert.False(t, first.NotModified)
	assert.Equal(t, `W/"abc"`, first.ETag)
	assert.Equal(t, testFeed, string(first.Body))

	second, err := c.Get(ctx, srv.URL)
	require.NoError(t, err)
	assert.True(t, second.NotModified)
	assert.Equal(t, testFeed, string(second.Body))
	assert.EqualValues(t, 2, hits.Load())
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	doc, err := newClient(t).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, testFeed, string(doc.Body))
	assert.EqualValues(t, 3, hits.Load())
}

func TestGet_ClientErrorsAreFinal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newClient(t).Get(context.Background(), srv.URL)
	assert.EqualError(t, err, "unexpected status code: 404")
	assert.EqualValues(t, 1, hits.Load())
}

func TestGet_GivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(t).Get(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "unexpected status code: 502")
}
