package topological

import (
	"context"
	"maps"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/routing"
	"github.com/signalsfoundry/leo-routing-sim/topology"
)

// Name of the hierarchical-address greedy algorithm.
const Name = "topological_routing"

// algorithm routes on orbital addresses instead of measured distances: each
// hop moves the packet to the ISL neighbor topologically closest to the
// destination's address. The algorithm is stateful across timesteps so that
// ground endpoints keep their subnet index while their attachment is stable,
// and the whole state object is reused when nothing changed.
type algorithm struct {
	log logging.Logger

	satAddr  map[model.NodeID]Address
	gsAddr   map[model.NodeID]Address
	attached map[model.NodeID]model.NodeID

	prevISLIfaces map[topology.IfacePair]int
	prevState     *routing.State
}

// New returns the topological routing algorithm.
func New(log logging.Logger) routing.Algorithm {
	if log == nil {
		log = logging.Noop()
	}
	return &algorithm{
		log:      log,
		satAddr:  make(map[model.NodeID]Address),
		gsAddr:   make(map[model.NodeID]Address),
		attached: make(map[model.NodeID]model.NodeID),
	}
}

func (a *algorithm) Name() string { return Name }

func (a *algorithm) ComputeState(ctx context.Context, t *topology.Topology, attachments [][]model.Attachment, ifaces []model.InterfaceDescriptor) (*routing.State, error) {
	for _, s := range t.Satellites {
		if _, ok := a.satAddr[s.ID]; ok {
			continue
		}
		addr, err := AddressForSatellite(s.ID)
		if err != nil {
			return nil, err
		}
		a.satAddr[s.ID] = addr
	}

	islChanged := !maps.Equal(a.prevISLIfaces, t.ISLInterface)
	gslChanged := a.updateGroundAddresses(ctx, t, attachments)

	if !islChanged && !gslChanged && a.prevState != nil {
		return a.prevState, nil
	}

	ft := make(routing.ForwardingTable)
	for _, src := range t.Satellites {
		myAddr := a.satAddr[src.ID]
		for _, gs := range t.GroundStations {
			dstAddr, ok := a.gsAddr[gs.ID]
			if !ok {
				continue
			}
			if myAddr.SamePrefix(dstAddr) {
				ft[routing.Pair{Src: src.ID, Dst: gs.ID}] = routing.Forward(gs.ID, src.GSLInterface(), 0)
				continue
			}
			next, ok := a.closerNeighbor(t, src.ID, myAddr, dstAddr)
			if !ok {
				// Greedy dead end. The entry stays absent, which lookups treat
				// as a drop.
				a.log.Warn(ctx, "no topologically closer neighbor",
					logging.Any("satellite", src.ID), logging.Any("ground_station", gs.ID))
				continue
			}
			ft[routing.Pair{Src: src.ID, Dst: gs.ID}] = routing.Forward(next,
				t.ISLInterface[topology.IfacePair{From: src.ID, To: next}],
				t.ISLInterface[topology.IfacePair{From: next, To: src.ID}])
		}
	}

	state := &routing.State{
		Forwarding: ft,
		Bandwidth:  routing.ComputeBandwidthState(ctx, t, ifaces, a.log),
	}
	a.prevISLIfaces = maps.Clone(t.ISLInterface)
	a.prevState = state
	return state, nil
}

// updateGroundAddresses reconciles ground endpoint addresses with the
// current attachments and reports whether anything changed. A station keeps
// its subnet index as long as it stays on the same satellite; moving or
// detaching releases the index, and a moved station takes the lowest free
// index behind its new satellite.
func (a *algorithm) updateGroundAddresses(ctx context.Context, t *topology.Topology, attachments [][]model.Attachment) bool {
	changed := false
	for i, gs := range t.GroundStations {
		var satID model.NodeID
		hasAtt := len(attachments[i]) > 0
		if hasAtt {
			satID = attachments[i][0].Satellite
		}

		prevSat, wasAttached := a.attached[gs.ID]
		if wasAttached && hasAtt && prevSat == satID {
			continue
		}
		if !wasAttached && !hasAtt {
			continue
		}

		changed = true
		if wasAttached {
			delete(a.gsAddr, gs.ID)
			delete(a.attached, gs.ID)
		}
		if !hasAtt {
			continue
		}

		prefix := a.satAddr[satID]
		subnet, ok := a.freeSubnetIndex(prefix)
		if !ok {
			a.log.Warn(ctx, "satellite subnet full, leaving station unaddressed",
				logging.Any("ground_station", gs.ID), logging.Any("satellite", satID))
			continue
		}
		prefix.SubnetIndex = subnet
		a.gsAddr[gs.ID] = prefix
		a.attached[gs.ID] = satID
	}
	return changed
}

func (a *algorithm) freeSubnetIndex(prefix Address) (int, bool) {
	used := make(map[int]bool)
	for _, addr := range a.gsAddr {
		if addr.SamePrefix(prefix) {
			used[addr.SubnetIndex] = true
		}
	}
	for idx := 1; idx < MaxEndpointsPerSat; idx++ {
		if !used[idx] {
			return idx, true
		}
	}
	return 0, false
}

// closerNeighbor picks the ISL neighbor strictly closer to dst than src is,
// scanning ascending IDs with a strict minimum for determinism.
func (a *algorithm) closerNeighbor(t *topology.Topology, src model.NodeID, myAddr, dstAddr Address) (model.NodeID, bool) {
	myDist := myAddr.DistanceTo(dstAddr)
	best := myDist
	var bestID model.NodeID
	found := false
	for _, nb := range t.SatelliteNeighbors(src) {
		d := a.satAddr[nb].DistanceTo(dstAddr)
		if d < best {
			best = d
			bestID = nb
			found = true
		}
	}
	return bestID, found
}
