package chord

import (
	"sync"

	"chordsim/internal/domain"
)

// RoutingTable holds one node's ring pointers: its finger table,
// successor list, and predecessor. Kept as its own type (mirroring the
// teacher's routingtable.go) so the locking discipline around these
// fields is centralized in one place instead of smeared across Node's
// event handlers.
type RoutingTable struct {
	self  domain.ID
	space domain.Space

	mu            sync.RWMutex
	successorList []domain.ID
	fingers       []domain.ID
	predecessor   domain.ID
	nextFinger    int
}

// NewRoutingTable constructs an empty routing table for self. Fingers
// and the successor list are populated by Node's createRing/join (and by
// WarmUp and the stabilization paths), never here.
func NewRoutingTable(self domain.ID, space domain.Space) *RoutingTable {
	return &RoutingTable{
		self:          self,
		space:         space,
		successorList: make([]domain.ID, 0, space.SuccListSize),
		fingers:       make([]domain.ID, space.Bits),
	}
}

// Successor returns finger[0], the immediate clockwise neighbor.
func (rt *RoutingTable) Successor() domain.ID {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.fingers[0]
}

// SetSuccessor sets finger[0]. The successor list is left unchanged;
// callers refresh it separately via SetSuccessorList.
func (rt *RoutingTable) SetSuccessor(id domain.ID) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.fingers[0] = id
}

// SuccessorList returns a copy of the current successor list.
func (rt *RoutingTable) SuccessorList() []domain.ID {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]domain.ID, len(rt.successorList))
	copy(out, rt.successorList)
	return out
}

// SetSuccessorList replaces the successor list, truncated to the space's
// configured size.
func (rt *RoutingTable) SetSuccessorList(list []domain.ID) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if len(list) > rt.space.SuccListSize {
		list = list[:rt.space.SuccListSize]
	}
	rt.successorList = append([]domain.ID(nil), list...)
}

// Predecessor returns the current predecessor, or nil if none.
func (rt *RoutingTable) Predecessor() domain.ID {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.predecessor
}

// SetPredecessor sets the predecessor (nil clears it).
func (rt *RoutingTable) SetPredecessor(id domain.ID) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.predecessor = id
}

// Finger returns finger table slot i.
func (rt *RoutingTable) Finger(i int) domain.ID {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.fingers[i]
}

// SetFinger sets finger table slot i.
func (rt *RoutingTable) SetFinger(i int, id domain.ID) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.fingers[i] = id
}

// FingerList returns every non-nil finger table entry.
func (rt *RoutingTable) FingerList() []domain.ID {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]domain.ID, 0, len(rt.fingers))
	for _, f := range rt.fingers {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// NextFinger returns the rotating repair index, then advances it modulo
// the table's bit width.
func (rt *RoutingTable) NextFinger() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	i := rt.nextFinger
	rt.nextFinger = (rt.nextFinger + 1) % rt.space.Bits
	return i
}

// ClosestPrecedingFinger scans the finger table from finger[m-1] down to
// finger[0] and returns the first entry that strictly precedes key on
// the arc from self, or self if none qualifies. §4.3.
func (rt *RoutingTable) ClosestPrecedingFinger(key domain.ID) domain.ID {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	for i := len(rt.fingers) - 1; i >= 0; i-- {
		f := rt.fingers[i]
		if f != nil && f.StrictlyBetween(rt.self, key) {
			return f
		}
	}
	return rt.self
}
