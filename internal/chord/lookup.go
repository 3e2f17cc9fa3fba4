package chord

import (
	"math"

	"chordsim/internal/domain"
	"chordsim/internal/logger"

	"github.com/google/uuid"
)

// StartLookup begins a message-driven lookup (§4.6): a fresh opaque
// request id is allocated, recorded against key in n.pending, and a
// find_successor RPC is issued to self so the request enters the
// RPC-handler pipeline exactly like one arriving from a peer.
func (n *Node) StartLookup(key domain.ID) uuid.UUID {
	if n.countStats {
		n.lookups.Add(1)
	}
	reqID := uuid.New()
	n.mu.Lock()
	n.pending[reqID] = key
	n.mu.Unlock()

	n.env.SendMessage(n.NodeID, n.NodeID, FindSuccessorRPC{Key: key, ReqID: reqID, Originator: n.NodeID})
	return reqID
}

// rpcFindSuccessor implements §4.6: reply directly to msg.Originator if
// key is in (self, successor], otherwise forward to the closest
// preceding finger — carrying Originator through unchanged. Replying to
// the originator directly (rather than to src, the immediately
// preceding hop) is what keeps a multi-hop forward from degenerating
// into a two-node ping-pong once the owner is found: every hop already
// knows who to answer without needing the response relayed backward
// along the forwarding chain.
func (n *Node) rpcFindSuccessor(src domain.ID, msg FindSuccessorRPC) {
	successor := n.rt.Successor()
	if msg.Key.Between(n.NodeID, successor) {
		n.env.SendMessage(n.NodeID, msg.Originator, FindSuccessorResponseRPC{SuccessorID: successor, ReqID: msg.ReqID})
		return
	}
	cp := n.rt.ClosestPrecedingFinger(msg.Key)
	n.env.SendMessage(n.NodeID, cp, FindSuccessorRPC{Key: msg.Key, ReqID: msg.ReqID, Originator: msg.Originator})
}

// rpcFindSuccessorResponse implements §4.6: since FindSuccessorRPC
// carries the originator through every forward, the response is always
// addressed straight to its originator and concludes the lookup here —
// there is no relay hop to forward through. A response whose ReqID
// isn't in pending (already resolved, or never ours) is an invariant
// violation per §7 and is logged rather than acted on.
func (n *Node) rpcFindSuccessorResponse(src domain.ID, msg FindSuccessorResponseRPC) {
	n.mu.Lock()
	key, ok := n.pending[msg.ReqID]
	if ok {
		delete(n.pending, msg.ReqID)
	}
	n.mu.Unlock()

	if !ok {
		n.lgr.Warn("find_successor_response: no pending lookup for req_id; dropping",
			logger.F("req_id", msg.ReqID.String()), logger.F("src", src.Hex()))
		return
	}

	if n.countStats {
		if actual := n.env.OwnerOf(key); actual != nil && !msg.SuccessorID.Equal(actual) {
			n.lookupFail.Add(1)
		}
	}
}

// LookupIterative performs the synchronous, in-memory lookup used by the
// mass-failure and churn experiments (§4.7). It never sends messages; it
// walks env's node registry directly, bounded by a hop budget that
// prevents livelock when the ring is transiently inconsistent.
func (n *Node) LookupIterative(key domain.ID, countStats bool) domain.ID {
	owner, _ := n.lookupIterativeHops(key, countStats)
	return owner
}

// LookupIterativeHops is LookupIterative plus the hop count the walk took
// to resolve key, exposed for the path-length experiment (exp_2 in the
// original simulator): the core doesn't compute mean/percentile hop
// statistics itself (that belongs to the driver, per spec.md §1), but it
// must expose the per-lookup hop count for a driver to aggregate.
func (n *Node) LookupIterativeHops(key domain.ID, countStats bool) (domain.ID, int) {
	return n.lookupIterativeHops(key, countStats)
}

func (n *Node) lookupIterativeHops(key domain.ID, countStats bool) (domain.ID, int) {
	if countStats {
		n.lookups.Add(1)
	}

	cur := n.NodeID
	visited := make(map[string]struct{})
	budget := 2 * ceilLog2(n.env.NodeCount()+1)

	for i := 0; i < budget; i++ {
		node, ok := n.env.NodeByID(cur)
		if _, seen := visited[cur.Key()]; !ok || !node.Active || seen {
			if countStats {
				n.lookupFail.Add(1)
			}
			return nil, i
		}
		visited[cur.Key()] = struct{}{}

		if key.Equal(node.NodeID) {
			return node.NodeID, i + 1
		}

		succ := node.rt.Successor()
		if key.Between(node.NodeID, succ) {
			if countStats {
				n.checkIterativeRepair(succ, key)
			}
			return succ, i + 1
		}

		cur = node.rt.ClosestPrecedingFinger(key)
	}

	if countStats {
		n.lookupFail.Add(1)
	}
	return nil, budget
}

// checkIterativeRepair reproduces the successor-list repair window of
// §4.7: a lookup landing on a node whose immediate successor has failed
// may still succeed if within r-1 hops the chain reaches the oracle
// owner. lookup_fail increments only when that walk doesn't reach it.
func (n *Node) checkIterativeRepair(successor, key domain.ID) {
	actual := n.env.OwnerOf(key)
	if actual == nil || successor.Equal(actual) {
		return
	}

	cur := successor
	bridged := false
	for i := 0; i < n.env.Space().SuccListSize-1; i++ {
		// Failed nodes stay registered with their last successor pointer,
		// so the walk can step past a dead successor.
		next, ok := n.env.NodeByID(cur)
		if !ok {
			break
		}
		cur = next.rt.Successor()
		if cur.Equal(actual) {
			bridged = true
			break
		}
	}
	if !bridged {
		n.lookupFail.Add(1)
	}
}

// ceilLog2 returns ceil(log2(x)) for x >= 1.
func ceilLog2(x int) int {
	if x <= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(x))))
}
