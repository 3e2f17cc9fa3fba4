package chord

import (
	"chordsim/internal/domain"
	"chordsim/internal/logger"
)

// Stabilize implements §4.5 step 1: ask the successor for its
// predecessor and successor list. The response handlers
// (rpcGetPredecessorResponse, rpcGetSuccessorListResponse) carry out the
// rest of the protocol once the replies arrive.
func (n *Node) Stabilize() {
	succ := n.rt.Successor()
	if succ == nil {
		return
	}
	n.env.ScheduleTimeout(n.NodeID, "stabilize", n.TimeoutDuration())
	n.env.SendMessage(n.NodeID, succ, GetPredecessorRPC{})
	n.env.SendMessage(n.NodeID, succ, GetSuccessorListRPC{})
}

// handleStabilizeTimeout fires when a stabilize round's successor never
// answered within TimeoutDuration: the successor is presumed down, so we
// promote the next live entry from the successor list (§5 Timeouts).
func (n *Node) handleStabilizeTimeout() {
	for _, candidate := range n.rt.SuccessorList() {
		if candidate.Equal(n.rt.Successor()) {
			continue
		}
		if node, ok := n.env.NodeByID(candidate); ok && node.Active {
			n.rt.SetSuccessor(candidate)
			return
		}
	}
	n.lgr.Warn("stabilize: successor presumed down, no live backup available",
		logger.F("node", n.NodeID.Hex()))
}

// Notify applies rpc_notify's predecessor adoption rule (§4.5 step 4)
// to this node's own predecessor field, in-process and without a message
// round-trip. rpcNotify (message path) and NotifySync (global
// stabilizer) both call it.
func (n *Node) Notify(candidate domain.ID) {
	pred := n.rt.Predecessor()
	if pred == nil || candidate.StrictlyBetween(pred, n.NodeID) {
		n.rt.SetPredecessor(candidate)
	}
}

func (n *Node) rpcNotify(src domain.ID) {
	n.Notify(src)
}

func (n *Node) rpcGetPredecessor(src domain.ID) {
	n.env.SendMessage(n.NodeID, src, GetPredecessorResponseRPC{Predecessor: n.rt.Predecessor()})
}

// rpcGetPredecessorResponse implements §4.5 step 2: adopt the
// successor's predecessor as our own successor if it lies strictly
// between us and our current successor, then notify the (possibly new)
// successor and request its successor list. A node that is its own
// successor adopts any other predecessor it is told about, since the
// open interval (self, self) is empty.
func (n *Node) rpcGetPredecessorResponse(src domain.ID, msg GetPredecessorResponseRPC) {
	n.env.CancelTimeout(n.NodeID, "stabilize")

	succ := n.rt.Successor()
	alone := succ.Equal(n.NodeID)
	if msg.Predecessor != nil && !msg.Predecessor.Equal(n.NodeID) &&
		(alone || msg.Predecessor.StrictlyBetween(n.NodeID, succ)) {
		n.rt.SetSuccessor(msg.Predecessor)
		succ = msg.Predecessor
	}

	n.env.SendMessage(n.NodeID, succ, NotifyRPC{})
	n.env.SendMessage(n.NodeID, succ, GetSuccessorListRPC{})
}

func (n *Node) rpcGetSuccessorList(src domain.ID) {
	n.env.SendMessage(n.NodeID, src, GetSuccessorListResponseRPC{List: n.rt.SuccessorList()})
}

// rpcGetSuccessorListResponse implements §4.5 step 3: successor_list =
// [successor] ++ list[:r-1].
func (n *Node) rpcGetSuccessorListResponse(msg GetSuccessorListResponseRPC) {
	r := n.env.Space().SuccListSize
	tail := msg.List
	if len(tail) > r-1 {
		tail = tail[:r-1]
	}
	updated := append([]domain.ID{n.rt.Successor()}, tail...)
	n.rt.SetSuccessorList(updated)
}

// CheckPredecessor implements §4.5 step 5 (asynchronous path): a liveness
// probe is sent to the predecessor and the pointer is cleared only if
// the probe times out, rather than consulting Active directly — a node
// only learns of failures through timeouts in the message-driven model.
func (n *Node) CheckPredecessor() {
	pred := n.rt.Predecessor()
	if pred == nil {
		return
	}
	n.env.ScheduleTimeout(n.NodeID, "check_predecessor", n.TimeoutDuration())
	n.env.SendMessage(n.NodeID, pred, PingRPC{})
}

// FixFingers implements §4.5 step 6: refresh one rotating finger entry
// per tick via the in-memory walk (never a message round trip — the
// reference simulator resolves finger repair synchronously too).
func (n *Node) FixFingers() {
	i := n.rt.NextFinger()
	target := n.env.Space().FingerStart(n.NodeID, i)
	owner := n.FindSuccessorLocal(target)
	n.rt.SetFinger(i, owner.NodeID)
}

// === Synchronous counterparts used only by the global stabilizer (§4.8) ===

// NotifySync is rpc_notify's logic invoked in-process rather than
// through a message; the caller (the global stabilizer) holds the
// invariant that the target node is live and quiescent.
func (n *Node) NotifySync(candidate domain.ID) {
	n.Notify(candidate)
}

// StabilizeSync implements the per-node body of the global stabilizer
// loop (§4.8 steps 1-4): promote a live successor if the current one is
// dead, refresh the successor list, adopt a closer successor if the
// successor's predecessor qualifies, and notify.
func (n *Node) StabilizeSync(ring []domain.ID) {
	space := n.env.Space()
	succID := n.rt.Successor()
	succNode, ok := n.env.NodeByID(succID)

	for (!ok || !succNode.Active) && succID != nil {
		promoted := false
		for _, candidate := range n.rt.SuccessorList() {
			if node, ok2 := n.env.NodeByID(candidate); ok2 && node.Active {
				n.rt.SetSuccessor(candidate)
				succID = candidate
				succNode = node
				ok = true
				promoted = true
				break
			}
		}
		if promoted {
			continue
		}
		if len(ring) == 0 {
			n.rt.SetSuccessor(n.NodeID)
			return
		}
		pick := ring[n.env.Rand().Intn(len(ring))]
		n.rt.SetSuccessor(pick)
		succID = pick
		succNode, ok = n.env.NodeByID(pick)
	}

	if succID.Equal(n.NodeID) {
		return
	}

	r := space.SuccListSize
	refreshList := func() {
		tail := succNode.rt.SuccessorList()
		if len(tail) > r-1 {
			tail = tail[:r-1]
		}
		n.rt.SetSuccessorList(append([]domain.ID{succID}, tail...))
	}
	refreshList()

	pred := succNode.rt.Predecessor()
	if pred != nil {
		if predNode, ok := n.env.NodeByID(pred); ok && predNode.Active && pred.StrictlyBetween(n.NodeID, succID) {
			n.rt.SetSuccessor(pred)
			succID = pred
			succNode = predNode
			refreshList()
		}
	}

	succNode.NotifySync(n.NodeID)
}

// CheckPredecessorSync clears the predecessor pointer if it refers to a
// dead or unregistered node (§4.8 step 5).
func (n *Node) CheckPredecessorSync() {
	pred := n.rt.Predecessor()
	if pred == nil {
		return
	}
	node, ok := n.env.NodeByID(pred)
	if !ok || !node.Active {
		n.rt.SetPredecessor(nil)
	}
}

// FixSpecificFingerSync refreshes finger table slot idx via the
// in-memory walk (§4.8 step 6).
func (n *Node) FixSpecificFingerSync(idx int) {
	target := n.env.Space().FingerStart(n.NodeID, idx)
	owner := n.FindSuccessorLocal(target)
	n.rt.SetFinger(idx, owner.NodeID)
}
