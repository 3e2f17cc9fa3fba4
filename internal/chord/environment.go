package chord

import (
	"container/heap"
	"math/rand"
	"sort"

	"chordsim/internal/domain"
	"chordsim/internal/logger"
)

// Mode selects how periodic maintenance is driven. ModeAsync schedules a
// StabilizeTickEvent per node through the event queue (the fully
// message-driven protocol). ModeBatched suppresses per-node ticks so a
// caller can drive maintenance through GlobalStabilizer instead — the
// "scheduling mode flag" the REDESIGN FLAGS section calls for in place of
// swapping out Node's stabilize method at runtime.
type Mode int

const (
	ModeAsync Mode = iota
	ModeBatched
)

// Params holds the dimensionless/SI-second constants spec.md §6 names.
type Params struct {
	Space             domain.Space
	BaseLatency       float64 // seconds; default 0.005
	StabilizeInterval float64 // seconds; default 1
	WarmupEnd         float64 // seconds; default 10
}

// DefaultParams returns Params with the spec's defaults for an m-bit
// identifier space.
func DefaultParams(bits int) Params {
	space, err := domain.NewSpace(bits, 16)
	if err != nil {
		// NewSpace fails here only for a non-positive bits (the successor
		// list size is fixed at 16); that is treated as a programmer error.
		panic(err)
	}
	return Params{
		Space:             space,
		BaseLatency:       0.005,
		StabilizeInterval: 1,
		WarmupEnd:         10,
	}
}

// Environment is the discrete-event substrate: a simulated clock, a
// priority queue of timed events, the node registry, and the seeded RNG
// all randomness in a run must draw from.
type Environment struct {
	params Params
	mode   Mode
	lgr    logger.Logger

	clock float64
	seq   uint64
	queue eventHeap

	nodes           map[string]*Node
	latestRing      []domain.ID
	pendingTimeouts map[string]struct{}

	rng *rand.Rand
}

// EnvOption configures an Environment at construction.
type EnvOption func(*Environment)

// WithLogger attaches a structured logger to the environment (and every
// node it subsequently registers picks it up via Node's own logger,
// unless overridden by the per-node WithNodeLogger option).
func WithLogger(l logger.Logger) EnvOption {
	return func(e *Environment) { e.lgr = l }
}

// WithMode selects the maintenance scheduling mode. Default ModeAsync.
func WithMode(m Mode) EnvOption {
	return func(e *Environment) { e.mode = m }
}

// NewEnvironment constructs a deterministic simulation environment. Two
// environments built with the same seed and params, driven by the same
// sequence of calls, produce byte-identical traces.
func NewEnvironment(seed int64, params Params, opts ...EnvOption) *Environment {
	env := &Environment{
		params:          params,
		lgr:             &logger.NopLogger{},
		nodes:           make(map[string]*Node),
		pendingTimeouts: make(map[string]struct{}),
		rng:             rand.New(rand.NewSource(seed)),
	}
	for _, opt := range opts {
		opt(env)
	}
	heap.Init(&env.queue)
	return env
}

// Params returns the environment's configuration constants.
func (env *Environment) Params() Params { return env.params }

// Space returns the identifier space in use.
func (env *Environment) Space() domain.Space { return env.params.Space }

// Mode returns the active scheduling mode.
func (env *Environment) Mode() Mode { return env.mode }

// Now returns the current simulated clock value.
func (env *Environment) Now() float64 { return env.clock }

// Rand returns the environment's seeded RNG. All randomness in dispatch
// (and in any caller-driven churn generation) must draw from this
// source exclusively, so a seed fully determines the trace.
func (env *Environment) Rand() *rand.Rand { return env.rng }

// RegisterNode adds a node to the registry and refreshes LatestRing. Node
// construction calls this itself; callers never need to.
func (env *Environment) RegisterNode(n *Node) {
	env.nodes[n.NodeID.Key()] = n
	env.refreshRing()
}

// NodeByID looks up a node by identifier.
func (env *Environment) NodeByID(id domain.ID) (*Node, bool) {
	n, ok := env.nodes[id.Key()]
	return n, ok
}

// NodeCount returns the number of registered nodes, active or not. The
// hop budget in LookupIterative is defined over this count, not the
// active count (see SPEC_FULL.md §4).
func (env *Environment) NodeCount() int {
	return len(env.nodes)
}

// ActiveCount returns the number of currently-active nodes.
func (env *Environment) ActiveCount() int {
	n := 0
	for _, node := range env.nodes {
		if node.Active {
			n++
		}
	}
	return n
}

// LatestRing returns a copy of the sorted list of currently-active node
// IDs, refreshed after every join/fail.
func (env *Environment) LatestRing() []domain.ID {
	out := make([]domain.ID, len(env.latestRing))
	copy(out, env.latestRing)
	return out
}

// OwnerOf performs the binary-search oracle lookup against LatestRing:
// the node that would own key if routing were perfect. Used by tests and
// by lookup-fail accounting (spec's "oracle" for routing-failure counts).
func (env *Environment) OwnerOf(key domain.ID) domain.ID {
	ring := env.latestRing
	if len(ring) == 0 {
		return nil
	}
	idx := sort.Search(len(ring), func(i int) bool { return key.Cmp(ring[i]) <= 0 })
	if idx == len(ring) {
		idx = 0
	}
	return ring[idx]
}

func (env *Environment) refreshRing() {
	ring := make([]domain.ID, 0, len(env.nodes))
	for _, n := range env.nodes {
		if n.Active {
			ring = append(ring, n.NodeID)
		}
	}
	sort.Slice(ring, func(i, j int) bool { return ring[i].Cmp(ring[j]) < 0 })
	env.latestRing = ring
}

// ScheduleEvent inserts evt to fire at Now()+delay. Ties at the same
// delivery time are broken by insertion order (FIFO per tick).
func (env *Environment) ScheduleEvent(delay float64, evt Event) {
	env.seq++
	heap.Push(&env.queue, &queueItem{at: env.clock + delay, seq: env.seq, event: evt})
}

// ScheduleTimeout schedules a TimeoutExpiredEvent and records it as
// pending, so it can later be cancelled via CancelTimeout.
func (env *Environment) ScheduleTimeout(nodeID domain.ID, timerID string, delay float64) {
	env.pendingTimeouts[timeoutKey(nodeID, timerID)] = struct{}{}
	env.ScheduleEvent(delay, TimeoutExpiredEvent{NodeID: nodeID, TimerID: timerID})
}

// CancelTimeout removes a pending timeout. If it has already fired, this
// is a no-op; the fired event was the one and only delivery.
func (env *Environment) CancelTimeout(nodeID domain.ID, timerID string) {
	delete(env.pendingTimeouts, timeoutKey(nodeID, timerID))
}

func timeoutKey(nodeID domain.ID, timerID string) string {
	return nodeID.Key() + "|" + timerID
}

// SendMessage is the convenience a node calls to emit an RPC: it
// schedules a SendMessageEvent immediately (delay 0), which the
// dispatcher turns into a ReceiveMessageEvent after BaseLatency.
func (env *Environment) SendMessage(src, dst domain.ID, rpc RPC) {
	env.ScheduleEvent(0, SendMessageEvent{Src: src, Dst: dst, RPC: rpc})
}

// Run advances the simulated clock, dispatching events in
// (delivery_time, insertion_seq) order, until the queue is empty or
// (if until is non-nil) the clock would exceed *until.
func (env *Environment) Run(until *float64) {
	for env.queue.Len() > 0 {
		next := env.queue[0]
		if until != nil && next.at > *until {
			env.clock = *until
			return
		}
		heap.Pop(&env.queue)
		env.clock = next.at
		env.dispatch(next.event)
	}
	if until != nil && *until > env.clock {
		env.clock = *until
	}
}

func (env *Environment) dispatch(evt Event) {
	switch e := evt.(type) {
	case NodeJoinEvent:
		env.handleNodeJoin(e)
	case NodeFailEvent:
		env.handleNodeFail(e)
	case SendMessageEvent:
		env.ScheduleEvent(env.params.BaseLatency, ReceiveMessageEvent{Src: e.Src, Dst: e.Dst, RPC: e.RPC})
	case ReceiveMessageEvent:
		if node, ok := env.nodes[e.Dst.Key()]; ok && node.Active {
			node.handleReceive(e.Src, e.RPC)
		} else {
			env.lgr.Debug("drop: inactive or unknown destination", logger.F("dst", e.Dst.Hex()))
		}
	case TimeoutExpiredEvent:
		key := timeoutKey(e.NodeID, e.TimerID)
		if _, pending := env.pendingTimeouts[key]; !pending {
			env.lgr.Debug("drop: stale timer", logger.F("node", e.NodeID.Hex()), logger.F("timer", e.TimerID))
			return
		}
		delete(env.pendingTimeouts, key)
		if node, ok := env.nodes[e.NodeID.Key()]; ok && node.Active {
			node.handleTimeout(e.TimerID)
		}
	case StabilizeTickEvent:
		if node, ok := env.nodes[e.NodeID.Key()]; ok && node.Active {
			node.handleStabilizeTick()
		}
	case LookupEvent:
		if node, ok := env.nodes[e.StartID.Key()]; ok && node.Active {
			node.StartLookup(e.KeyID)
		}
	}
}

func (env *Environment) handleNodeJoin(e NodeJoinEvent) {
	var bootstrap domain.ID
	if len(env.nodes) > 0 {
		bootstrap = env.anyNodeID()
	}
	if e.NodeID != nil {
		newNode(env, bootstrap, withPresetID(e.NodeID))
	} else {
		newNode(env, bootstrap)
	}
	env.refreshRing()
}

func (env *Environment) handleNodeFail(e NodeFailEvent) {
	target := e.NodeID
	if target == nil {
		live := env.LatestRing()
		if len(live) <= 1 {
			return
		}
		target = live[env.rng.Intn(len(live))]
	}
	if node, ok := env.nodes[target.Key()]; ok {
		node.Active = false
	}
	env.refreshRing()
}

// anyNodeID returns the identifier of an arbitrary registered node
// (deterministically the smallest, since map iteration order isn't
// deterministic and this must be reproducible from the seed). Used as
// the default bootstrap target for NodeJoinEvent.
func (env *Environment) anyNodeID() domain.ID {
	var best domain.ID
	for _, n := range env.nodes {
		if best == nil || n.NodeID.Cmp(best) < 0 {
			best = n.NodeID
		}
	}
	return best
}
