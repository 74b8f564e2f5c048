package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gyaneshwarpardhi/productflow/internal/condition"
	"github.com/gyaneshwarpardhi/productflow/internal/metrics"
)

// Fetcher is the source a Store loads from. *Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Item, error)
}

// Store holds the most recently fetched catalog. An empty store is a valid
// degraded state: the sidebar shows nothing and drops by id are ignored.
type Store struct {
	src Fetcher
	log *slog.Logger

	mu       sync.RWMutex
	items    []Item
	byID     map[int]int
	loadedAt time.Time
	lastErr  error
	loading  sync.Once
	loaded   chan struct{}
}

// NewStore creates an empty store backed by src.
func NewStore(src Fetcher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		src:    src,
		log:    logger,
		byID:   make(map[int]int),
		loaded: make(chan struct{}),
	}
}

// LoadAsync starts the initial fetch in the background and returns
// immediately. Only the first call has any effect. A failure is logged and
// leaves the store empty; nothing retries it.
func (s *Store) LoadAsync(ctx context.Context) {
	s.loading.Do(func() {
		go func() {
			defer close(s.loaded)
			if _, err := s.Reload(ctx); err != nil {
				s.log.Error("catalog load failed", "err", err)
			}
		}()
	})
}

// Loaded is closed once the initial LoadAsync attempt has finished.
func (s *Store) Loaded() <-chan struct{} { return s.loaded }

// Reload fetches the catalog now and replaces the held list on success.
// On failure the previous list is kept.
func (s *Store) Reload(ctx context.Context) (int, error) {
	items, err := s.src.Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return 0, err
	}
	s.items = items
	s.byID = make(map[int]int, len(items))
	for i, it := range items {
		s.byID[it.ID] = i
	}
	s.loadedAt = time.Now()
	s.lastErr = nil
	metrics.CatalogItems.Set(float64(len(items)))
	s.log.Info("catalog loaded", "items", len(items))
	return len(items), nil
}

// Items returns a copy of the held list in source order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Item looks up a product by catalog id.
func (s *Store) Item(id int) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Item{}, false
	}
	return s.items[i], true
}

// Filter returns the items matching expr, e.g. `price < 20 AND title contains "mascara"`.
// An empty expr returns every item.
func (s *Store) Filter(expr string) ([]Item, error) {
	f, err := condition.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("catalog filter: %w", err)
	}
	out := []Item{}
	for _, it := range s.Items() {
		ok, err := f.Match(it)
		if err != nil {
			return nil, fmt.Errorf("catalog filter: %w", err)
		}
		if ok {
			out = append(out, it)
		}
	}
	return out, nil
}

// Status summarizes the store for readiness reporting.
type Status struct {
	Items     int       `json:"items"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Status reports how many items are held and the last fetch error, if any.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{Items: len(s.items), LoadedAt: s.loadedAt}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}
