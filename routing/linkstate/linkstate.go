package linkstate

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/routing"
	"github.com/signalsfoundry/leo-routing-sim/topology"
)

// Name of the all-pairs shortest path algorithm.
const Name = "shortest_path_link_state"

type algorithm struct {
	log logging.Logger
}

// New returns the link-state shortest path algorithm. Every forwarding
// decision is recomputed from the snapshot; the algorithm carries no state
// across timesteps.
func New(log logging.Logger) routing.Algorithm {
	if log == nil {
		log = logging.Noop()
	}
	return &algorithm{log: log}
}

func (a *algorithm) Name() string { return Name }

// ComputeState runs all-pairs shortest paths over the satellite subgraph and
// derives forwarding entries toward every ground station. Ground stations
// never relay: paths run satellite-to-satellite and touch the ground only at
// the endpoints.
func (a *algorithm) ComputeState(ctx context.Context, t *topology.Topology, attachments [][]model.Attachment, ifaces []model.InterfaceDescriptor) (*routing.State, error) {
	paths := satellitePaths(t)

	ft := make(routing.ForwardingTable)

	// Total distance from each satellite to each ground station, through the
	// station's best attachment as seen from that satellite. +Inf when
	// unreachable; consumed by the station-to-station pass below.
	distToGS := make(map[routing.Pair]float64)

	type candidate struct {
		total float64
		att   model.Attachment
	}

	for _, src := range t.Satellites {
		for gi, gs := range t.GroundStations {
			var cands []candidate
			for _, att := range attachments[gi] {
				d := paths.Weight(int64(src.ID), int64(att.Satellite))
				if math.IsInf(d, 1) {
					continue
				}
				cands = append(cands, candidate{total: d + att.DistanceM, att: att})
			}
			// Stable sort keeps the attachment list order as the tie-break.
			sort.SliceStable(cands, func(i, j int) bool { return cands[i].total < cands[j].total })

			if len(cands) == 0 {
				ft[routing.Pair{Src: src.ID, Dst: gs.ID}] = routing.NoRoute()
				distToGS[routing.Pair{Src: src.ID, Dst: gs.ID}] = math.Inf(1)
				continue
			}

			best := cands[0]
			distToGS[routing.Pair{Src: src.ID, Dst: gs.ID}] = best.total

			if best.att.Satellite == src.ID {
				ft[routing.Pair{Src: src.ID, Dst: gs.ID}] = routing.Forward(gs.ID, src.GSLInterface(), 0)
				continue
			}

			next, ok := a.nextHopToward(t, paths, src.ID, best.att.Satellite)
			if !ok {
				// Reachable per the distance matrix but no neighbor advances;
				// should not happen on a consistent snapshot.
				a.log.Warn(ctx, "no advancing neighbor despite finite distance",
					logging.Any("satellite", src.ID), logging.Any("target", best.att.Satellite))
				ft[routing.Pair{Src: src.ID, Dst: gs.ID}] = routing.NoRoute()
				continue
			}
			ft[routing.Pair{Src: src.ID, Dst: gs.ID}] = routing.Forward(next,
				t.ISLInterface[topology.IfacePair{From: src.ID, To: next}],
				t.ISLInterface[topology.IfacePair{From: next, To: src.ID}])
		}
	}

	for gi, src := range t.GroundStations {
		for _, dst := range t.GroundStations {
			if src.ID == dst.ID {
				continue
			}
			var cands []candidate
			for _, att := range attachments[gi] {
				d := distToGS[routing.Pair{Src: att.Satellite, Dst: dst.ID}]
				if math.IsInf(d, 1) {
					continue
				}
				cands = append(cands, candidate{total: att.DistanceM + d, att: att})
			}
			sort.SliceStable(cands, func(i, j int) bool { return cands[i].total < cands[j].total })

			if len(cands) == 0 {
				ft[routing.Pair{Src: src.ID, Dst: dst.ID}] = routing.NoRoute()
				continue
			}
			sat, _ := t.Satellite(cands[0].att.Satellite)
			ft[routing.Pair{Src: src.ID, Dst: dst.ID}] = routing.Forward(sat.ID, 0, sat.GSLInterface())
		}
	}

	return &routing.State{
		Forwarding: ft,
		Bandwidth:  routing.ComputeBandwidthState(ctx, t, ifaces, a.log),
	}, nil
}

// nextHopToward picks the ISL neighbor of src on a shortest path to target.
// Neighbors are scanned in ascending ID order with a strict minimum, so the
// choice is deterministic for a fixed snapshot.
func (a *algorithm) nextHopToward(t *topology.Topology, paths path.AllShortest, src, target model.NodeID) (model.NodeID, bool) {
	bestDist := math.Inf(1)
	var best model.NodeID
	found := false
	for _, nb := range t.SatelliteNeighbors(src) {
		w, ok := t.Graph.Weight(int64(src), int64(nb))
		if !ok {
			continue
		}
		d := paths.Weight(int64(nb), int64(target))
		if math.IsInf(d, 1) {
			continue
		}
		if w+d < bestDist {
			bestDist = w + d
			best = nb
			found = true
		}
	}
	return best, found
}

// satellitePaths runs Floyd-Warshall on the satellite-only subgraph. GSL
// edges are excluded so ground stations cannot appear mid-path.
func satellitePaths(t *topology.Topology) path.AllShortest {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, s := range t.Satellites {
		g.AddNode(simple.Node(s.ID))
	}
	it := t.Graph.WeightedEdges()
	for it.Next() {
		e := it.WeightedEdge()
		u := model.NodeID(e.From().ID())
		v := model.NodeID(e.To().ID())
		if t.IsSatellite(u) && t.IsSatellite(v) {
			g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(u), T: simple.Node(v), W: e.Weight()})
		}
	}
	paths, _ := path.FloydWarshall(g)
	return paths
}
