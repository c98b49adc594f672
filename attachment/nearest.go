package attachment

import (
	"context"
	"time"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/position"
	"github.com/signalsfoundry/leo-routing-sim/topology"
)

// NearestName selects, for each ground station, the single closest satellite
// within GSL range.
const NearestName = "nearest_satellite"

type nearestSatellite struct {
	provider position.Provider
	log      logging.Logger
}

// NewNearest returns the nearest-satellite strategy.
func NewNearest(p position.Provider, log logging.Logger) Strategy {
	if log == nil {
		log = logging.Noop()
	}
	return &nearestSatellite{provider: p, log: log}
}

func (s *nearestSatellite) Name() string { return NearestName }

// SelectAttachments attaches each station to the in-range satellite with the
// smallest GSL distance. A failed range query makes that satellite invisible
// to the station for this instant; it does not abort the step. Stations with
// no in-range satellite get an empty list.
func (s *nearestSatellite) SelectAttachments(ctx context.Context, t *topology.Topology, at time.Time) ([][]model.Attachment, error) {
	out := make([][]model.Attachment, len(t.GroundStations))
	for i, gs := range t.GroundStations {
		best := model.Attachment{}
		found := false
		for _, sat := range t.Satellites {
			d, err := s.provider.DistanceGroundStationToSatellite(gs, sat.ID, t.Spec.Epoch, at)
			if err != nil {
				s.log.Warn(ctx, "range query failed, satellite invisible to station",
					logging.Any("ground_station", gs.ID), logging.Any("satellite", sat.ID),
					logging.Any("error", err))
				continue
			}
			if d > t.Spec.MaxGSLLengthM {
				continue
			}
			if !found || d < best.DistanceM {
				best = model.Attachment{DistanceM: d, Satellite: sat.ID}
				found = true
			}
		}
		if found {
			out[i] = []model.Attachment{best}
		}
	}
	return out, nil
}
