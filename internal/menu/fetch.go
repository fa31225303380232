package menu

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"diningwatch/internal/metrics"
	"diningwatch/internal/models"
)

// maxDocumentSize caps how much of a menu page is read.
const maxDocumentSize = 4 << 20

// Fetcher retrieves raw menu documents, going to the network at most once
// per (hall, day) thanks to the Store.
type Fetcher struct {
	halls  []models.Hall
	store  Store
	client *http.Client

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// Now is the clock used to key the cache; overridable in tests.
	Now func() time.Time
}

// NewFetcher creates a fetcher over the configured hall table.
func NewFetcher(halls []models.Hall, store Store, timeout time.Duration) *Fetcher {
	return &Fetcher{
		halls: halls,
		store: store,
		client: &http.Client{
			Timeout: timeout,
		},
		locks: make(map[string]*sync.Mutex),
		Now:   time.Now,
	}
}

// Halls returns the configured hall table in its configured order.
func (f *Fetcher) Halls() []models.Hall {
	return f.halls
}

// hallLock returns the mutex guarding one hall's cache access, so the
// get-then-fetch-then-put sequence is atomic per hall and concurrent callers
// never duplicate a network fetch. Locks are keyed by hall, not (hall, day),
// to keep the map bounded by the hall table in a long-running process.
func (f *Fetcher) hallLock(hall string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locks[hall]
	if !ok {
		l = &sync.Mutex{}
		f.locks[hall] = l
	}
	return l
}

// Menu returns today's raw menu document for a hall, from cache when
// available.
func (f *Fetcher) Menu(ctx context.Context, hall models.Hall) (string, error) {
	day := f.Now()

	l := f.hallLock(hall.Name)
	l.Lock()
	defer l.Unlock()

	if doc, ok := f.store.Get(hall.Name, day); ok {
		metrics.RecordCacheLookup("hit")
		return doc, nil
	}
	metrics.RecordCacheLookup("miss")

	doc, err := f.fetch(ctx, hall.URL)
	if err != nil {
		metrics.RecordMenuFetch(hall.Name, "error")
		return "", err
	}
	metrics.RecordMenuFetch(hall.Name, "ok")

	f.store.Put(hall.Name, day, doc)
	return doc, nil
}

// fetch downloads one menu page and decodes it to UTF-8.
func (f *Fetcher) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("User-Agent", "diningwatch/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("http status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", err
	}

	enc, _, _ := charset.DetermineEncoding(data, resp.Header.Get("Content-Type"))
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if !utf8.Valid(data) {
			return "", err
		}
		decoded = data
	}

	return string(decoded), nil
}
