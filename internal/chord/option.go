package chord

import (
	"chordsim/internal/domain"
	"chordsim/internal/logger"
)

// Option configures a Node at construction.
type Option func(*Node)

// WithNodeLogger overrides the node's logger (defaults to the environment's).
func WithNodeLogger(l logger.Logger) Option {
	return func(n *Node) { n.lgr = l }
}

// WithPhysicalID tags the node as a virtual node sharing a physical host
// with other node_ids carrying the same PhysicalID. Used by load-balance
// experiments; has no effect on routing. Defaults to the node's own ID.
func WithPhysicalID(id domain.ID) Option {
	return func(n *Node) {
		n.PhysicalID = id
		n.physicalIDSet = true
	}
}

// WithCountStats enables lookup/lookup-fail telemetry counters for this
// node's message-driven lookups (StartLookup and the response handler).
// LookupIterative does not read it; it takes its own countStats argument.
func WithCountStats() Option {
	return func(n *Node) { n.countStats = true }
}

// withPresetID forces a specific node identifier instead of drawing one
// from the environment's RNG. Used by the environment's NodeJoinEvent
// handler when the event names an explicit node_id.
func withPresetID(id domain.ID) Option {
	return func(n *Node) { n.presetID = id }
}
