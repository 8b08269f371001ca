package conversation

import "sync"

// Namespace separates a regular user's flow from an operator's.
type Namespace int

const (
	UserNamespace Namespace = iota
	OperatorNamespace
)

type slotKey struct {
	ns    Namespace
	actor int64
}

// Slots holds at most one pending State per actor and namespace. Slots live
// only for the lifetime of the process.
type Slots struct {
	mu    sync.Mutex
	slots map[slotKey]State
}

// NewSlots returns an empty slot table.
func NewSlots() *Slots {
	return &Slots{slots: make(map[slotKey]State)}
}

// Get returns the actor's state, nil when idle.
func (s *Slots) Get(ns Namespace, actor int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[slotKey{ns, actor}]
}

// Set stores st; a nil st clears the slot.
func (s *Slots) Set(ns Namespace, actor int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st == nil {
		delete(s.slots, slotKey{ns, actor})
		return
	}
	s.slots[slotKey{ns, actor}] = st
}

// Clear resets the actor to idle.
func (s *Slots) Clear(ns Namespace, actor int64) {
	s.Set(ns, actor, nil)
}

// Len counts occupied slots.
func (s *Slots) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
