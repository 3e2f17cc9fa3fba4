package domain

import (
	"math/rand"
	"testing"

	"github.com/go-test/deep"
)

func TestNewSpaceValidation(t *testing.T) {
	if _, err := NewSpace(0, 16); err == nil {
		t.Error("expected error for non-positive bits")
	}
	if _, err := NewSpace(8, 0); err == nil {
		t.Error("expected error for non-positive successor list size")
	}
	sp, err := NewSpace(160, 16)
	if err != nil {
		t.Fatalf("NewSpace(160, 16) failed: %v", err)
	}
	if sp.ByteLen != 20 {
		t.Errorf("ByteLen = %d, want 20", sp.ByteLen)
	}
}

func TestAddModSubModWrapAround(t *testing.T) {
	sp, err := NewSpace(8, 16)
	if err != nil {
		t.Fatalf("NewSpace failed: %v", err)
	}
	a := sp.FromUint64(250)
	b := sp.FromUint64(10)

	sum := sp.AddMod(a, b)
	wantSum := sp.FromUint64(4)
	if diff := deep.Equal(sum, wantSum); diff != nil {
		t.Errorf("AddMod(250, 10) wraps incorrectly: %v", diff)
	}

	diffID := sp.SubMod(b, a)
	wantDiff := sp.FromUint64(16)
	if diff := deep.Equal(diffID, wantDiff); diff != nil {
		t.Errorf("SubMod(10, 250) wraps incorrectly: %v", diff)
	}
}

func TestFingerStart(t *testing.T) {
	sp, err := NewSpace(8, 16)
	if err != nil {
		t.Fatalf("NewSpace failed: %v", err)
	}
	self := sp.FromUint64(200)
	// finger[0] target = self + 1 = 201
	if got, want := sp.FingerStart(self, 0), sp.FromUint64(201); !got.Equal(want) {
		t.Errorf("FingerStart(200, 0) = %v, want %v", got, want)
	}
	// finger[6] target = self + 64 = 264 mod 256 = 8
	if got, want := sp.FingerStart(self, 6), sp.FromUint64(8); !got.Equal(want) {
		t.Errorf("FingerStart(200, 6) = %v, want %v", got, want)
	}
}

func TestRandomIDRespectsBitWidth(t *testing.T) {
	// A non-byte-aligned width (e.g. 5 bits over 1 encoded byte) must
	// never set bits outside [0, 2^Bits).
	sp, err := NewSpace(5, 16)
	if err != nil {
		t.Fatalf("NewSpace failed: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		id := sp.RandomID(rng)
		if err := sp.IsValidID(id); err != nil {
			t.Fatalf("RandomID produced an invalid identifier: %v (%v)", id, err)
		}
	}
}
