package topology

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/signalsfoundry/leo-routing-sim/model"
)

// IfacePair keys the ISL interface map: the local interface index on From
// used to reach To. Keys are directed; (a,b) and (b,a) are distinct entries
// holding each endpoint's own interface index.
type IfacePair struct {
	From, To model.NodeID
}

// Topology is one snapshot of the network for a single instant: a weighted
// undirected graph over satellite and ground-station IDs plus the per-pair
// ISL interface bookkeeping. A snapshot is built fresh every timestep and
// must not be mutated once the builder hands it out.
type Topology struct {
	Graph *simple.WeightedUndirectedGraph

	Spec           model.ConstellationSpec
	Satellites     []model.Satellite
	GroundStations []model.GroundStation

	// ISLInterface maps a directed satellite pair to the local interface
	// index of the first satellite toward the second.
	ISLInterface map[IfacePair]int

	// NumISLs counts ISL edges (pairs, not endpoints).
	NumISLs int

	satIndex map[model.NodeID]int
	gsIndex  map[model.NodeID]int
}

func newTopology(spec model.ConstellationSpec, sats []model.Satellite, stations []model.GroundStation) *Topology {
	t := &Topology{
		Graph:          simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		Spec:           spec,
		Satellites:     sats,
		GroundStations: stations,
		ISLInterface:   make(map[IfacePair]int),
		satIndex:       make(map[model.NodeID]int, len(sats)),
		gsIndex:        make(map[model.NodeID]int, len(stations)),
	}
	for i := range sats {
		t.satIndex[sats[i].ID] = i
		t.Graph.AddNode(simple.Node(sats[i].ID))
	}
	for i := range stations {
		t.gsIndex[stations[i].ID] = i
		t.Graph.AddNode(simple.Node(stations[i].ID))
	}
	return t
}

// Satellite returns the snapshot's record for the given satellite ID.
func (t *Topology) Satellite(id model.NodeID) (model.Satellite, bool) {
	i, ok := t.satIndex[id]
	if !ok {
		return model.Satellite{}, false
	}
	return t.Satellites[i], true
}

// GroundStation returns the snapshot's record for the given station ID.
func (t *Topology) GroundStation(id model.NodeID) (model.GroundStation, bool) {
	i, ok := t.gsIndex[id]
	if !ok {
		return model.GroundStation{}, false
	}
	return t.GroundStations[i], true
}

// IsSatellite reports whether id names a satellite in this snapshot.
func (t *Topology) IsSatellite(id model.NodeID) bool {
	_, ok := t.satIndex[id]
	return ok
}

// SatelliteIDs returns the snapshot's satellite IDs in ascending order. The
// sorted order gives matrix algorithms a stable ID-to-row mapping.
func (t *Topology) SatelliteIDs() []model.NodeID {
	ids := make([]model.NodeID, 0, len(t.Satellites))
	for _, s := range t.Satellites {
		ids = append(ids, s.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SatelliteNeighbors returns the ISL neighbors of a satellite in ascending ID
// order. Ground stations attached over GSLs are not included.
func (t *Topology) SatelliteNeighbors(id model.NodeID) []model.NodeID {
	it := t.Graph.From(int64(id))
	var out []model.NodeID
	for it.Next() {
		nb := model.NodeID(it.Node().ID())
		if t.IsSatellite(nb) {
			out = append(out, nb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateNoGroundLinks verifies that no edge connects a satellite to a
// ground station. It holds for the snapshot after the ISL phase, before the
// attachment strategy adds GSL edges.
func ValidateNoGroundLinks(t *Topology) error {
	it := t.Graph.WeightedEdges()
	for it.Next() {
		e := it.WeightedEdge()
		u := model.NodeID(e.From().ID())
		v := model.NodeID(e.To().ID())
		if t.IsSatellite(u) != t.IsSatellite(v) {
			return fmt.Errorf("unexpected link between satellite and ground station (%d, %d)", u, v)
		}
	}
	return nil
}
