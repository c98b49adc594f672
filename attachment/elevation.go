package attachment

import (
	"context"
	"fmt"
	"time"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/position"
	"github.com/signalsfoundry/leo-routing-sim/topology"
)

// NearestElevationName selects the closest satellite that is both within GSL
// range and high enough above the station's horizon with an unobstructed
// line of sight.
const NearestElevationName = "nearest_elevation"

// DefaultMinElevationDeg is the usual operational cutoff for ground antennas.
const DefaultMinElevationDeg = 10.0

type nearestElevation struct {
	provider        position.Provider
	minElevationDeg float64
	log             logging.Logger
}

// NewNearestElevation returns the elevation-constrained strategy. The
// provider must also implement position.Locator; that is checked on first
// use because factories cannot fail.
func NewNearestElevation(p position.Provider, log logging.Logger) Strategy {
	if log == nil {
		log = logging.Noop()
	}
	return &nearestElevation{provider: p, minElevationDeg: DefaultMinElevationDeg, log: log}
}

func (s *nearestElevation) Name() string { return NearestElevationName }

func (s *nearestElevation) SelectAttachments(ctx context.Context, t *topology.Topology, at time.Time) ([][]model.Attachment, error) {
	loc, ok := s.provider.(position.Locator)
	if !ok {
		return nil, fmt.Errorf("strategy %q requires a position provider with full ECEF positions", s.Name())
	}

	out := make([][]model.Attachment, len(t.GroundStations))
	for i, gs := range t.GroundStations {
		gsPos := position.Vec3{X: gs.X, Y: gs.Y, Z: gs.Z}
		best := model.Attachment{}
		found := false
		for _, sat := range t.Satellites {
			satPos, err := loc.SatelliteECEF(sat.ID, at)
			if err != nil {
				s.log.Warn(ctx, "position query failed, satellite invisible to station",
					logging.Any("ground_station", gs.ID), logging.Any("satellite", sat.ID),
					logging.Any("error", err))
				continue
			}
			d := gsPos.DistanceTo(satPos)
			if d > t.Spec.MaxGSLLengthM {
				continue
			}
			if position.ElevationDegrees(gsPos, satPos) < s.minElevationDeg {
				continue
			}
			if !position.HasLineOfSight(gsPos, satPos) {
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
