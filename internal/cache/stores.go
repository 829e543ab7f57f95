package cache

import (
	"path/filepath"
	"sync"

	"github.com/FocuswithJustin/QuranLO/core/quran"
	"github.com/FocuswithJustin/QuranLO/internal/logging"
)

// Opener opens the store for a data file.
type Opener func(path string) (quran.Store, error)

// Stores shares opened verse stores between callers. A store leaves the
// cache when it is evicted but is closed only once every caller holding it
// has released it.
type Stores struct {
	mu   sync.Mutex
	lru  *LRU[string, *pooled]
	open Opener
}

type pooled struct {
	store   quran.Store
	refs    int
	evicted bool
}

// NewStores creates a store cache keyed by absolute path.
func NewStores(config Config, open Opener) *Stores {
	s := &Stores{open: open}
	s.lru = NewLRU(config, s.evict)
	return s
}

// evict is called by the LRU with s.mu held.
func (s *Stores) evict(path string, p *pooled) {
	p.evicted = true
	if p.refs == 0 {
		closeStore(path, p.store)
	}
}

func closeStore(path string, st quran.Store) {
	if err := st.Close(); err != nil {
		logging.Warn("store_close_failed", "path", path, "error", err.Error())
	}
}

// Open returns the cached store for path, opening it on a miss. Closing the
// returned store releases it back to the cache.
func (s *Stores) Open(path string) (quran.Store, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}

	s.mu.Lock()
	if p, ok := s.lru.Get(key); ok {
		p.refs++
		s.mu.Unlock()
		return &lease{Store: p.store, owner: s, path: key, p: p}, nil
	}
	s.mu.Unlock()

	st, err := s.open(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.lru.Get(key); ok {
		// Another caller opened the same file meanwhile.
		closeStore(key, st)
		p.refs++
		return &lease{Store: p.store, owner: s, path: key, p: p}, nil
	}
	p := &pooled{store: st, refs: 1}
	s.lru.Put(key, p)
	return &lease{Store: st, owner: s, path: key, p: p}, nil
}

func (s *Stores) release(path string, p *pooled) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.refs--
	if p.evicted && p.refs == 0 {
		closeStore(path, p.store)
	}
}

// Invalidate drops the cached store for path, for example after its data
// file changed.
func (s *Stores) Invalidate(path string) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Remove(key)
}

// Stats returns cache statistics.
func (s *Stores) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Stats()
}

// Close evicts every store. Stores still held are closed on release.
func (s *Stores) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Clear()
	return nil
}

// lease is a borrowed store whose Close hands it back.
type lease struct {
	quran.Store
	owner *Stores
	path  string
	p     *pooled
	once  sync.Once
}

func (l *lease) Close() error {
	l.once.Do(func() { l.owner.release(l.path, l.p) })
	return nil
}
