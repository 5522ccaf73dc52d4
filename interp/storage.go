package interp

import (
	"sync"

	"github.com/cdelzotti/sigh/scope"
)

// ScopeStorage is one activation frame of runtime storage, chained to its
// caller's frame on the same logical thread, mirroring the original's
// per-scope storage stack (spec.md §4.3 "per-thread ScopeStorage").
//
// Get/Set first look for the frame whose Scope is literally the scope a
// reference resolved against. A method inherited from an ancestor class was
// analyzed once, lexically inside that ancestor's own ClassScope, so its
// field references carry the ancestor's ClassScope pointer even when called
// through a subclass instance whose own ClassScope is a different object;
// only one ClassScope-backed frame is ever pushed for such a call (seeded
// with the instance's full, already-merged field set). Get/Set fall back to
// a by-name search of the active chain so that case still resolves
// correctly, a deliberate resolution of an ambiguity the retrieved original
// sources left unspecified (ScopeStorage.java was not part of the pack).
type ScopeStorage struct {
	Scope  scope.Scope
	Parent *ScopeStorage

	// mu guards slots. Every frame is normally only ever touched by the one
	// goroutine driving its thread, except the root frame, which an async
	// call's closure-captured chain lets every thread read concurrently
	// (spec.md §5's "add a mutex ... if deemed safer").
	mu    sync.RWMutex
	slots map[string]any
}

// NewScopeStorage opens a fresh frame for scope s, chained under parent.
func NewScopeStorage(s scope.Scope, parent *ScopeStorage) *ScopeStorage {
	return &ScopeStorage{Scope: s, Parent: parent, slots: map[string]any{}}
}

func (s *ScopeStorage) frameFor(target scope.Scope) *ScopeStorage {
	for f := s; f != nil; f = f.Parent {
		if f.Scope == target {
			return f
		}
	}
	return nil
}

func (s *ScopeStorage) frameByName(name string) *ScopeStorage {
	for f := s; f != nil; f = f.Parent {
		f.mu.RLock()
		_, ok := f.slots[name]
		f.mu.RUnlock()
		if ok {
			return f
		}
	}
	return nil
}

// Get retrieves name from the frame matching target, falling back to the
// nearest frame in the chain that actually holds it.
func (s *ScopeStorage) Get(target scope.Scope, name string) any {
	if f := s.frameFor(target); f != nil {
		f.mu.RLock()
		v, ok := f.slots[name]
		f.mu.RUnlock()
		if ok {
			return v
		}
	}
	if f := s.frameByName(name); f != nil {
		f.mu.RLock()
		v := f.slots[name]
		f.mu.RUnlock()
		return v
	}
	return Null
}

// Set stores name = value in the frame matching target, or, failing that,
// wherever name already lives in the chain, or else in this receiving frame
// (the first case is the common one: Set is called right after pushing a
// frame for the exact declaring scope).
func (s *ScopeStorage) Set(target scope.Scope, name string, value any) {
	if f := s.frameFor(target); f != nil {
		f.mu.Lock()
		f.slots[name] = value
		f.mu.Unlock()
		return
	}
	if f := s.frameByName(name); f != nil {
		f.mu.Lock()
		f.slots[name] = value
		f.mu.Unlock()
		return
	}
	s.mu.Lock()
	s.slots[name] = value
	s.mu.Unlock()
}

// ownSlots copies this frame's own slot map, used to refresh a class
// instance from the frame that held its constructor/method invocation.
func (s *ScopeStorage) ownSlots() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.slots))
	for k, v := range s.slots {
		out[k] = v
	}
	return out
}

// initRoot seeds the root frame with the built-in constants (spec.md §3.3,
// §6): true/false/null have no VarDeclarationNode whose initializer the
// interpreter ever walks, so they must be set directly.
func (s *ScopeStorage) initRoot(rootScope scope.Scope) {
	s.Set(rootScope, "true", true)
	s.Set(rootScope, "false", false)
	s.Set(rootScope, "null", Null)
}
