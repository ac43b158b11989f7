// Package cache keeps the last copy of each fetched document with its
// entity tag, so a refetch can be conditional.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/valkey-io/valkey-go"
)

var ErrNotFound = errors.New("key not found")

// Document is a cached response body.
type Document struct {
	ETag string `json:"etag"`
	Body []byte `json:"body"`
}

type Cache interface {
	Get(ctx context.Context, url string) (Document, error)
	Set(ctx context.Context, url string, doc Document) error
}

// LRU is an in-process cache holding a fixed number of documents.
type LRU struct {
	docs *lru.Cache[string, Document]
}

func NewLRU(size int) (LRU, error) {
	docs, err := lru.New[string, Document](size)
	if err != nil {
		return LRU{}, fmt.Errorf("error creating lru: %w", err)
	}
	return LRU{docs: docs}, nil
}

func (c LRU) Get(_ context.Context, url string) (Document, error) {
	doc, ok := c.docs.Get(url)
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (c LRU) Set(_ context.Context, url string, doc Document) error {
	c.docs.Add(url, doc)
	return nil
}

// Valkey shares cached documents between processes.
type Valkey struct {
	client valkey.Client
	expiry time.Duration
}

func NewValkey(connURL string, expiry time.Duration) (Valkey, error) {
	opt, err := valkey.ParseURL(connURL)
	if err != nil {
		return Valkey{}, fmt.Errorf("error parsing valkey url: %w", err)
	}

	client, err := valkey.NewClient(opt)
	if err != nil {
		return Valkey{}, fmt.Errorf("error connecting to valkey: %w", err)
	}

	return Valkey{client: client, expiry: expiry}, nil
}

func key(url string) string {
	return fmt.Sprintf("gdata-cache:doc:%s", url)
}

func (c Valkey) Get(ctx context.Context, url string) (Document, error) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(key(url)).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("error getting document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("error decoding cached document: %w", err)
	}
	return doc, nil
}

func (c Valkey) Set(ctx context.Context, url string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error encoding document: %w", err)
	}

	set := c.client.B().Set().Key(key(url)).Value(valkey.BinaryString(raw))
	var cmd valkey.Completed
	if c.expiry > 0 {
		cmd = set.Px(c.expiry).Build()
	} else {
		cmd = set.Build()
	}
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("error setting document: %w", err)
	}
	return nil
}

func (c Valkey) Close() {
	c.client.Close()
}
