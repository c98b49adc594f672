package topology

import (
	"math"

	"github.com/signalsfoundry/leo-routing-sim/model"
)

// DefaultWeightTolerance is the absolute link-distance tolerance, in metres,
// below which two snapshots count as unchanged. Orbital propagation moves
// every distance slightly each step; sub-micrometre jitter must not defeat
// state reuse.
const DefaultWeightTolerance = 1e-6

type edgeKey struct {
	U, V model.NodeID
}

func normalizedEdgeKey(u, v model.NodeID) edgeKey {
	if u > v {
		u, v = v, u
	}
	return edgeKey{U: u, V: v}
}

// Equal reports whether two snapshots describe the same network: identical
// node sets, identical edge sets, and per-edge weights within the given
// absolute tolerance. A nil previous snapshot never equals anything.
func Equal(prev, curr *Topology, weightTolerance float64) bool {
	if prev == nil || curr == nil {
		return false
	}

	if prev.Graph.Nodes().Len() != curr.Graph.Nodes().Len() {
		return false
	}
	nodes := prev.Graph.Nodes()
	for nodes.Next() {
		if curr.Graph.Node(nodes.Node().ID()) == nil {
			return false
		}
	}

	prevEdges := edgeWeights(prev)
	currEdges := edgeWeights(curr)
	if len(prevEdges) != len(currEdges) {
		return false
	}
	for k, w := range prevEdges {
		cw, ok := currEdges[k]
		if !ok {
			return false
		}
		if math.Abs(w-cw) > weightTolerance {
			return false
		}
	}
	return true
}

func edgeWeights(t *Topology) map[edgeKey]float64 {
	out := make(map[edgeKey]float64)
	it := t.Graph.WeightedEdges()
	for it.Next() {
		e := it.WeightedEdge()
		out[normalizedEdgeKey(model.NodeID(e.From().ID()), model.NodeID(e.To().ID()))] = e.Weight()
	}
	return out
}
