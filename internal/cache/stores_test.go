package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/FocuswithJustin/QuranLO/core/quran"
)

type fakeStore struct {
	quran.Store
	mu     sync.Mutex
	closed int
}

func (f *fakeStore) Verse(surah, ayah int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed > 0 {
		return "", quran.ErrClosed
	}
	return "text", nil
}

func (f *fakeStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

type fakeOpener struct {
	mu     sync.Mutex
	opened map[string][]*fakeStore
	fail   error
}

func (o *fakeOpener) open(path string) (quran.Store, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail != nil {
		return nil, o.fail
	}
	if o.opened == nil {
		o.opened = make(map[string][]*fakeStore)
	}
	s := &fakeStore{}
	o.opened[path] = append(o.opened[path], s)
	return s, nil
}

func TestStoresReuse(t *testing.T) {
	o := &fakeOpener{}
	s := NewStores(Config{MaxSize: 2}, o.open)

	a, err := s.Open("/data/a.xml")
	if err != nil {
		t.Fatal(err)
	}
	a.Close()
	b, err := s.Open("/data/a.xml")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if n := len(o.opened["/data/a.xml"]); n != 1 {
		t.Errorf("opened %d times, want 1", n)
	}
	if o.opened["/data/a.xml"][0].closed != 0 {
		t.Error("released store was closed while cached")
	}
	if st := s.Stats(); st.Hits != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestStoresEvictionWaitsForRelease(t *testing.T) {
	o := &fakeOpener{}
	s := NewStores(Config{MaxSize: 1}, o.open)

	held, err := s.Open("/data/a.xml")
	if err != nil {
		t.Fatal(err)
	}
	other, err := s.Open("/data/b.xml")
	if err != nil {
		t.Fatal(err)
	}
	other.Close()

	a := o.opened["/data/a.xml"][0]
	if a.closed != 0 {
		t.Fatal("evicted store closed while still held")
	}
	if _, err := held.Verse(1, 1); err != nil {
		t.Errorf("held store unusable after eviction: %v", err)
	}

	held.Close()
	held.Close()
	if a.closed != 1 {
		t.Errorf("evicted store closed %d times after release, want 1", a.closed)
	}
}

func TestStoresCloseAll(t *testing.T) {
	o := &fakeOpener{}
	s := NewStores(DefaultConfig(), o.open)

	for _, p := range []string{"/a", "/b", "/c"} {
		st, err := s.Open(p)
		if err != nil {
			t.Fatal(err)
		}
		st.Close()
	}
	s.Close()

	for p, list := range o.opened {
		if list[0].closed != 1 {
			t.Errorf("%s closed %d times, want 1", p, list[0].closed)
		}
	}
}

func TestStoresInvalidate(t *testing.T) {
	o := &fakeOpener{}
	s := NewStores(DefaultConfig(), o.open)

	st, _ := s.Open("/a")
	st.Close()
	s.Invalidate("/a")
	st, _ = s.Open("/a")
	st.Close()

	if n := len(o.opened["/a"]); n != 2 {
		t.Errorf("opened %d times after Invalidate, want 2", n)
	}
	if o.opened["/a"][0].closed != 1 {
		t.Error("invalidated store not closed")
	}
}

func TestStoresOpenError(t *testing.T) {
	want := errors.New("boom")
	s := NewStores(DefaultConfig(), (&fakeOpener{fail: want}).open)
	if _, err := s.Open("/a"); !errors.Is(err, want) {
		t.Errorf("error = %v, want %v", err, want)
	}
	if st := s.Stats(); st.Size != 0 {
		t.Errorf("failed open was cached: %+v", st)
	}
}

func TestStoresConcurrentOpen(t *testing.T) {
	o := &fakeOpener{}
	s := NewStores(DefaultConfig(), o.open)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := s.Open("/a")
			if err != nil {
				t.Errorf("Open error: %v", err)
				return
			}
			defer st.Close()
			if _, err := st.Verse(1, 1); err != nil {
				t.Errorf("Verse error: %v", err)
			}
		}()
	}
	wg.Wait()
	s.Close()

	var open int
	for _, st := range o.opened["/a"] {
		if st.closed != 1 {
			open++
		}
	}
	if open != 0 {
		t.Errorf("%d stores not closed exactly once", open)
	}
}
