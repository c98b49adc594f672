package routing

import (
	"context"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/topology"
)

// ComputeBandwidthState builds the per-node bandwidth map for a snapshot. A
// node with no interface descriptor gets bandwidth 0 and a warning; an
// incomplete descriptor list is an input inconsistency, not a fatal error.
func ComputeBandwidthState(ctx context.Context, t *topology.Topology, ifaces []model.InterfaceDescriptor, log logging.Logger) BandwidthState {
	if log == nil {
		log = logging.Noop()
	}
	byID := make(map[model.NodeID]model.InterfaceDescriptor, len(ifaces))
	for _, d := range ifaces {
		byID[d.NodeID] = d
	}

	bw := make(BandwidthState, len(t.Satellites)+len(t.GroundStations))
	fill := func(id model.NodeID) {
		d, ok := byID[id]
		if !ok {
			log.Warn(ctx, "no interface descriptor for node, assuming zero bandwidth",
				logging.Any("node", id))
			bw[id] = 0
			return
		}
		bw[id] = d.AggregateMaxBandwidth
	}
	for _, s := range t.Satellites {
		fill(s.ID)
	}
	for _, gs := range t.GroundStations {
		fill(gs.ID)
	}
	return bw
}
