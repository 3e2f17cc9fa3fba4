package chord

import (
	"chordsim/internal/domain"

	"github.com/google/uuid"
)

// RPC is the closed set of Chord protocol messages carried by
// SendMessageEvent/ReceiveMessageEvent. Request IDs are uuid.UUID values
// so that concurrent outstanding lookups never collide, matching the
// "opaque request id" the spec requires for Node.pending.
type RPC interface {
	isRPC()
}

// FindSuccessorRPC asks the receiver to resolve Key, replying either
// directly (if Key falls in its successor range) or by forwarding to a
// closer peer. Originator names the node the eventual response must be
// addressed to, so every hop forwards it unchanged rather than
// overwriting it with its own id — a find_successor forwarded through
// several hops must still answer the node that asked, not the last
// relay.
type FindSuccessorRPC struct {
	Key        domain.ID
	ReqID      uuid.UUID
	Originator domain.ID
}

// FindSuccessorResponseRPC carries the resolved owner directly back to
// the lookup's Originator; it is never relayed, since FindSuccessorRPC
// already carries the originator through every forwarding hop.
type FindSuccessorResponseRPC struct {
	SuccessorID domain.ID
	ReqID       uuid.UUID
}

// NotifyRPC tells the receiver "I believe I might be your predecessor".
type NotifyRPC struct{}

// GetPredecessorRPC asks the receiver for its current predecessor.
type GetPredecessorRPC struct{}

// GetPredecessorResponseRPC carries the predecessor back (nil Predecessor
// means "none").
type GetPredecessorResponseRPC struct {
	Predecessor domain.ID
}

// GetSuccessorListRPC asks the receiver for its successor list.
type GetSuccessorListRPC struct{}

// GetSuccessorListResponseRPC carries the successor list back.
type GetSuccessorListResponseRPC struct {
	List []domain.ID
}

// PingRPC/PongRPC support check_predecessor-style liveness probing in the
// message-driven path (the synchronous path instead consults Node.Active
// directly, per spec §4.8).
type PingRPC struct{}
type PongRPC struct{}

func (FindSuccessorRPC) isRPC()            {}
func (FindSuccessorResponseRPC) isRPC()    {}
func (NotifyRPC) isRPC()                   {}
func (GetPredecessorRPC) isRPC()           {}
func (GetPredecessorResponseRPC) isRPC()   {}
func (GetSuccessorListRPC) isRPC()         {}
func (GetSuccessorListResponseRPC) isRPC() {}
func (PingRPC) isRPC()                     {}
func (PongRPC) isRPC()                     {}
