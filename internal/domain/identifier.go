package domain

import (
	"bytes"
	"encoding/hex"
	"math/big"
)

// ID is an identifier on the ring, stored big-endian. Node IDs and key
// IDs share this type; both live in the same Space.
type ID []byte

// Cmp compares two identifiers as unsigned big-endian integers.
func (x ID) Cmp(b ID) int {
	return bytes.Compare(x, b)
}

// Equal reports whether x and b are the same identifier. A nil ID
// represents "no identifier" (e.g. no predecessor yet) and is only
// equal to another nil ID.
func (x ID) Equal(b ID) bool {
	if x == nil || b == nil {
		return x == nil && b == nil
	}
	return bytes.Equal(x, b)
}

// ToBigInt interprets x as a non-negative big-endian integer.
func (x ID) ToBigInt() *big.Int {
	return new(big.Int).SetBytes(x)
}

// Hex renders the identifier as a lowercase hex string, "<nil>" if x is nil.
func (x ID) Hex() string {
	if x == nil {
		return "<nil>"
	}
	return hex.EncodeToString(x)
}

// Key returns a value usable as a map key for x. Plain byte slices
// aren't comparable, so every map keyed by identifier in this package
// uses Key() rather than the ID itself.
func (x ID) Key() string {
	return string(x)
}

// InInterval is the single predicate all ring-position reasoning in this
// package funnels through. It reports whether key lies on the clockwise
// arc from start to end, with endpoint inclusion controlled by incStart
// and incEnd.
//
// When start < end the arc is the ordinary segment (start, end) widened
// by the inclusion flags. When start > end the arc wraps through zero.
// When start == end the arc is either empty (both endpoints excluded)
// or the entire ring (either endpoint included) — mirroring the
// reference simulator's treatment of the degenerate case exactly, since
// that is the case implementers most often get wrong.
func InInterval(key, start, end ID, incStart, incEnd bool) bool {
	switch start.Cmp(end) {
	case 0:
		return incStart || incEnd
	case -1:
		// Linear case: start < end.
		if key.Equal(start) {
			return incStart
		}
		if key.Equal(end) {
			return incEnd
		}
		return start.Cmp(key) < 0 && key.Cmp(end) < 0
	default:
		// Wrap-around case: start > end.
		if key.Equal(start) {
			return incStart
		}
		if key.Equal(end) {
			return incEnd
		}
		return start.Cmp(key) < 0 || key.Cmp(end) < 0
	}
}

// Between reports whether x lies in the circular interval (a, b] —
// exclusive of a, inclusive of b. This is the interval Chord's
// ownership test uses throughout (find_successor, rpc_find_successor,
// stabilize) and is defined purely in terms of InInterval so there is
// exactly one place that reasons about wraparound.
func (x ID) Between(a, b ID) bool {
	return InInterval(x, a, b, false, true)
}

// StrictlyBetween reports whether x lies in the open interval (a, b),
// excluding both endpoints. Used by notify/stabilize predecessor
// adoption checks.
func (x ID) StrictlyBetween(a, b ID) bool {
	return InInterval(x, a, b, false, false)
}
