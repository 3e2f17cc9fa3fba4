package chord

import (
	"math"
	"sync"
	"sync/atomic"

	"chordsim/internal/domain"
	"chordsim/internal/logger"

	"github.com/google/uuid"
)

// Node is a single Chord participant: ring pointers, finger table,
// lookup engine, stabilization, and the RPC handlers that drive all of
// it. The environment exclusively owns all Nodes; a Node only ever holds
// identifier-valued references to its peers, resolving them back
// through env.NodeByID when it needs to act on one (§3 Ownership).
type Node struct {
	env *Environment
	lgr logger.Logger

	NodeID     domain.ID
	PhysicalID domain.ID
	Active     bool

	rt *RoutingTable

	bootstrapID   domain.ID
	physicalIDSet bool
	presetID      domain.ID

	mu      sync.Mutex
	pending map[uuid.UUID]domain.ID

	countStats bool
	lookups    atomic.Uint64
	lookupFail atomic.Uint64
}

// NewNode constructs and registers a node. bootstrapID nil founds a new
// ring; otherwise the node joins through the node currently known by
// that ID. Side effect: schedules the node's first stabilization tick
// when the environment runs in ModeAsync (§3 Lifecycle).
func NewNode(env *Environment, bootstrapID domain.ID, opts ...Option) *Node {
	return newNode(env, bootstrapID, opts...)
}

func newNode(env *Environment, bootstrapID domain.ID, opts ...Option) *Node {
	n := &Node{
		env:     env,
		lgr:     env.lgr,
		Active:  true,
		pending: make(map[uuid.UUID]domain.ID),
	}
	for _, opt := range opts {
		opt(n)
	}

	if n.presetID != nil {
		n.NodeID = n.presetID
	} else {
		n.NodeID = env.Space().RandomID(env.Rand())
	}
	if !n.physicalIDSet {
		n.PhysicalID = n.NodeID
	}
	n.bootstrapID = bootstrapID
	n.rt = NewRoutingTable(n.NodeID, env.Space())

	env.RegisterNode(n)
	n.scheduleStabilize()

	if bootstrapID == nil {
		n.createRing()
	} else {
		n.join(bootstrapID)
	}
	return n
}

func (n *Node) scheduleStabilize() {
	if n.env.Mode() != ModeAsync {
		return
	}
	n.env.ScheduleEvent(n.env.Params().StabilizeInterval, StabilizeTickEvent{NodeID: n.NodeID})
}

// createRing initializes a brand-new, single-node ring: the node is its
// own successor, every finger points to itself, and the successor list
// is filled with self (the single-node ring boundary case in §8).
func (n *Node) createRing() {
	space := n.env.Space()
	n.rt.SetPredecessor(nil)
	n.rt.SetSuccessor(n.NodeID)
	for i := 0; i < space.Bits; i++ {
		n.rt.SetFinger(i, n.NodeID)
	}
	list := make([]domain.ID, space.SuccListSize)
	for i := range list {
		list[i] = n.NodeID
	}
	n.rt.SetSuccessorList(list)
}

// join performs the bootstrap protocol of §4.4: find our successor via
// the bootstrap node's in-memory view, seed finger[0] and leave the rest
// of the table as an "unknown" sentinel (self) so fix_fingers/stabilize
// converge it over time, then notify our new successor.
func (n *Node) join(bootstrapID domain.ID) {
	bootstrap, ok := n.env.NodeByID(bootstrapID)
	if !ok {
		n.lgr.Error("join: bootstrap node not registered", logger.F("bootstrap", bootstrapID.Hex()))
		return
	}

	successor := bootstrap.FindSuccessorLocal(n.NodeID)
	space := n.env.Space()

	n.rt.SetSuccessor(successor.NodeID)
	for i := 1; i < space.Bits; i++ {
		n.rt.SetFinger(i, n.NodeID)
	}
	n.rt.SetSuccessorList([]domain.ID{successor.NodeID})
	n.rt.SetPredecessor(nil)

	n.env.SendMessage(n.NodeID, n.rt.Successor(), NotifyRPC{})
}

// FindSuccessorLocal is the pure in-memory walk used by bootstrap,
// warm-up, and synchronous maintenance: never by message-driven
// lookups. §4.3.
func (n *Node) FindSuccessorLocal(key domain.ID) *Node {
	cur := n
	for {
		if key.Equal(cur.NodeID) {
			return cur
		}
		succ := cur.rt.Successor()
		if key.Between(cur.NodeID, succ) {
			if node, ok := cur.env.NodeByID(succ); ok {
				return node
			}
			return cur
		}
		cpID := cur.rt.ClosestPrecedingFinger(key)
		next, ok := cur.env.NodeByID(cpID)
		if !ok || cpID.Equal(cur.NodeID) {
			return cur
		}
		cur = next
	}
}

// TimeoutDuration implements §4.3: 4*BaseLatency*log2(N_active), floored
// at 4*BaseLatency.
func (n *Node) TimeoutDuration() float64 {
	active := n.env.ActiveCount()
	if active < 1 {
		active = 1
	}
	d := 4 * n.env.Params().BaseLatency * math.Log2(float64(active))
	floor := 4 * n.env.Params().BaseLatency
	if d < floor {
		return floor
	}
	return d
}

// Successor, Predecessor, SuccessorList, FingerList expose read-only
// views of this node's routing table for telemetry/drivers (§6).
func (n *Node) Successor() domain.ID       { return n.rt.Successor() }
func (n *Node) Predecessor() domain.ID     { return n.rt.Predecessor() }
func (n *Node) SuccessorList() []domain.ID { return n.rt.SuccessorList() }
func (n *Node) FingerList() []domain.ID    { return n.rt.FingerList() }
func (n *Node) Finger(i int) domain.ID     { return n.rt.Finger(i) }

// Lookups and LookupFail report the telemetry counters updated when
// count_stats is enabled (§3, §6).
func (n *Node) Lookups() uint64    { return n.lookups.Load() }
func (n *Node) LookupFail() uint64 { return n.lookupFail.Load() }

// handleReceive dispatches an incoming RPC by its concrete type — a
// closed type switch rather than the string-keyed handler lookup the
// REDESIGN FLAGS section calls out for replacement.
func (n *Node) handleReceive(src domain.ID, rpc RPC) {
	switch msg := rpc.(type) {
	case FindSuccessorRPC:
		n.rpcFindSuccessor(src, msg)
	case FindSuccessorResponseRPC:
		n.rpcFindSuccessorResponse(src, msg)
	case NotifyRPC:
		n.rpcNotify(src)
	case GetPredecessorRPC:
		n.rpcGetPredecessor(src)
	case GetPredecessorResponseRPC:
		n.rpcGetPredecessorResponse(src, msg)
	case GetSuccessorListRPC:
		n.rpcGetSuccessorList(src)
	case GetSuccessorListResponseRPC:
		n.rpcGetSuccessorListResponse(msg)
	case PingRPC:
		n.env.SendMessage(n.NodeID, src, PongRPC{})
	case PongRPC:
		n.env.CancelTimeout(n.NodeID, "check_predecessor")
	}
}

func (n *Node) handleTimeout(timerID string) {
	switch timerID {
	case "stabilize":
		n.handleStabilizeTimeout()
	case "check_predecessor":
		n.rt.SetPredecessor(nil)
	}
}

func (n *Node) handleStabilizeTick() {
	n.Stabilize()
	n.FixFingers()
	n.CheckPredecessor()
	n.scheduleStabilize()
}
