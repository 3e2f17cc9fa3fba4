package chord

import (
	"testing"

	"chordsim/internal/domain"
)

func testSpace(t *testing.T) domain.Space {
	t.Helper()
	sp, err := domain.NewSpace(8, 3)
	if err != nil {
		t.Fatalf("NewSpace failed: %v", err)
	}
	return sp
}

func TestNewRoutingTable(t *testing.T) {
	sp := testSpace(t)
	self := sp.FromUint64(0x80)
	rt := NewRoutingTable(self, sp)

	if rt == nil {
		t.Fatal("NewRoutingTable returned nil")
	}
	if len(rt.FingerList()) != 0 {
		t.Errorf("a fresh routing table should have no finger entries set, got %d", len(rt.FingerList()))
	}
}

func TestSetAndGetSuccessor(t *testing.T) {
	sp := testSpace(t)
	rt := NewRoutingTable(sp.FromUint64(0x80), sp)

	succ := sp.FromUint64(0x90)
	rt.SetSuccessor(succ)

	if got := rt.Successor(); !got.Equal(succ) {
		t.Errorf("Successor() = %v, want %v", got, succ)
	}
	if got := rt.Finger(0); !got.Equal(succ) {
		t.Errorf("finger[0] should equal the successor, got %v", got)
	}
}

func TestSetAndGetPredecessor(t *testing.T) {
	sp := testSpace(t)
	rt := NewRoutingTable(sp.FromUint64(0x80), sp)

	if pred := rt.Predecessor(); pred != nil {
		t.Errorf("initial predecessor should be nil, got %v", pred)
	}

	pred := sp.FromUint64(0x70)
	rt.SetPredecessor(pred)
	if got := rt.Predecessor(); !got.Equal(pred) {
		t.Errorf("Predecessor() = %v, want %v", got, pred)
	}

	rt.SetPredecessor(nil)
	if got := rt.Predecessor(); got != nil {
		t.Errorf("Predecessor() after clearing = %v, want nil", got)
	}
}

func TestSuccessorListTruncatesToSpaceSize(t *testing.T) {
	sp := testSpace(t)
	rt := NewRoutingTable(sp.FromUint64(0x00), sp)

	list := make([]domain.ID, 0, 5)
	for i := 0; i < 5; i++ {
		list = append(list, sp.FromUint64(uint64(i+1)))
	}
	rt.SetSuccessorList(list)

	got := rt.SuccessorList()
	if len(got) != sp.SuccListSize {
		t.Fatalf("SuccessorList() length = %d, want %d (space's successor_list_size)", len(got), sp.SuccListSize)
	}
	for i, id := range got {
		if !id.Equal(list[i]) {
			t.Errorf("SuccessorList()[%d] = %v, want %v", i, id, list[i])
		}
	}
}

func TestClosestPrecedingFinger(t *testing.T) {
	sp := testSpace(t)
	self := sp.FromUint64(128) // 0x80
	rt := NewRoutingTable(self, sp)

	// finger[0]: target 129 -> owner 130
	rt.SetFinger(0, sp.FromUint64(130))
	// finger[2]: target 132 -> owner 140
	rt.SetFinger(2, sp.FromUint64(140))
	// finger[4]: target 144 -> owner 150
	rt.SetFinger(4, sp.FromUint64(150))

	target := sp.FromUint64(145)
	got := rt.ClosestPrecedingFinger(target)

	// self(128) < finger0(130) < finger2(140) < target(145) < finger4(150):
	// finger2 is the tightest entry that still strictly precedes target.
	want := sp.FromUint64(140)
	if !got.Equal(want) {
		t.Errorf("ClosestPrecedingFinger(145) = %v, want %v", got, want)
	}
}

func TestClosestPrecedingFingerFallsBackToSelf(t *testing.T) {
	sp := testSpace(t)
	self := sp.FromUint64(0)
	rt := NewRoutingTable(self, sp)
	rt.SetFinger(0, sp.FromUint64(0))

	got := rt.ClosestPrecedingFinger(sp.FromUint64(1))
	if !got.Equal(self) {
		t.Errorf("with no finger strictly preceding key, expected self %v, got %v", self, got)
	}
}

func TestNextFingerRotatesModuloBits(t *testing.T) {
	sp := testSpace(t)
	rt := NewRoutingTable(sp.FromUint64(0), sp)

	seen := make([]int, 0, sp.Bits*2)
	for i := 0; i < sp.Bits*2; i++ {
		seen = append(seen, rt.NextFinger())
	}
	for i, v := range seen {
		if want := i % sp.Bits; v != want {
			t.Errorf("NextFinger() call %d = %d, want %d", i, v, want)
		}
	}
}
