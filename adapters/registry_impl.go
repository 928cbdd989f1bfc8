package adapters

import (
	"fmt"
	"sync"
	"sync/atomic"

	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/errors"
	"github.com/soffa-projects/tutor-shell/log"
)

// ------------------------------------------------------------------------------------------------------------------
// LOCALE REGISTRY IMPL
// ------------------------------------------------------------------------------------------------------------------

// slot holds the current snapshot of one entry. Readers load the pointer
// without locking, writers serialize on mu.
type slot struct {
	mu      sync.Mutex
	current atomic.Pointer[f.RegistryEntry]
}

type registryImpl struct {
	mu      sync.RWMutex
	entries map[f.LocaleCode]*slot
	order   []f.LocaleCode
	events  *f.EventBus
	closed  atomic.Bool
}

func NewRegistry() f.Registry {
	return &registryImpl{
		entries: make(map[f.LocaleCode]*slot),
		events:  f.NewEventBus("locales"),
	}
}

func (r *registryImpl) Register(code f.LocaleCode, source f.LocaleSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[code]; exists {
		log.Warn("[registry] locale %s is already registered, ignoring", code)
		return fmt.Errorf("%w: %s", errors.ErrDuplicateLocale, code)
	}
	source.Code = code
	s := &slot{}
	s.current.Store(&f.RegistryEntry{Code: code, Source: source, Status: f.Unloaded})
	r.entries[code] = s
	r.order = append(r.order, code)
	return nil
}

func (r *registryImpl) slot(code f.LocaleCode) (*slot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.entries[code]
	return s, ok
}

func (r *registryImpl) Get(code f.LocaleCode) (f.RegistryEntry, bool) {
	s, ok := r.slot(code)
	if !ok {
		return f.RegistryEntry{}, false
	}
	return *s.current.Load(), true
}

func (r *registryImpl) Codes() []f.LocaleCode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]f.LocaleCode, len(r.order))
	copy(out, r.order)
	return out
}

func (r *registryImpl) Begin(code f.LocaleCode) (uint64, error) {
	s, ok := r.slot(code)
	if !ok {
		return 0, fmt.Errorf("%w: %s", errors.ErrUnknownLocale, code)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current.Load()
	if cur.Status != f.Unloaded {
		return 0, fmt.Errorf("%w: %s is %s", errors.ErrInvalidTransition, code, cur.Status)
	}
	next := *cur
	next.Status = f.Loading
	next.Generation++
	s.current.Store(&next)
	return next.Generation, nil
}

func (r *registryImpl) Publish(code f.LocaleCode, generation uint64, catalog *f.Catalog) error {
	return r.finish(code, generation, f.Loaded, catalog, nil)
}

func (r *registryImpl) Fail(code f.LocaleCode, generation uint64, err error) error {
	return r.finish(code, generation, f.Failed, nil, err)
}

func (r *registryImpl) finish(code f.LocaleCode, generation uint64, status f.LoadStatus, catalog *f.Catalog, cause error) error {
	s, ok := r.slot(code)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownLocale, code)
	}
	s.mu.Lock()
	cur := s.current.Load()
	if r.closed.Load() || cur.Generation != generation {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s generation %d", errors.ErrStaleLoad, code, generation)
	}
	if cur.Status != f.Loading {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s is %s, not loading", errors.ErrInvalidTransition, code, cur.Status)
	}
	next := *cur
	next.Status = status
	next.Catalog = catalog
	next.Err = cause
	s.current.Store(&next)
	s.mu.Unlock()

	r.events.Fire(f.Notification{Code: code, Status: status, Err: cause})
	return nil
}

func (r *registryImpl) Reset(code f.LocaleCode) error {
	s, ok := r.slot(code)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownLocale, code)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current.Load()
	s.current.Store(&f.RegistryEntry{
		Code:       code,
		Source:     cur.Source,
		Status:     f.Unloaded,
		Generation: cur.Generation + 1,
	})
	return nil
}

func (r *registryImpl) Subscribe(handler func(n f.Notification)) {
	r.events.On(handler)
}

// Close tears the registry down; results of loads still in flight are discarded.
func (r *registryImpl) Close() {
	if r.closed.Swap(true) {
		return
	}
	r.mu.RLock()
	for _, s := range r.entries {
		// wait for transitions that passed the closed check
		s.mu.Lock()
		s.mu.Unlock()
	}
	r.mu.RUnlock()
	r.events.Close()
}
