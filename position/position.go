package position

import (
	"fmt"
	"time"

	"github.com/signalsfoundry/leo-routing-sim/model"
)

// Provider is the position and range boundary consumed by the topology
// builder and the attachment strategies. Implementations must be
// deterministic for fixed inputs; the control plane treats the provider as an
// opaque synchronous service.
type Provider interface {
	// DistanceBetweenSatellites returns the straight-line distance in metres
	// between two satellites at the given instant.
	DistanceBetweenSatellites(a, b model.NodeID, epoch, at time.Time) (float64, error)

	// DistanceGroundStationToSatellite returns the straight-line distance in
	// metres between a ground station and a satellite at the given instant.
	DistanceGroundStationToSatellite(gs model.GroundStation, sat model.NodeID, epoch, at time.Time) (float64, error)
}

// Locator is implemented by providers that can expose full ECEF positions,
// not just pairwise ranges. Attachment strategies that need geometry (e.g.
// elevation constraints) require it.
type Locator interface {
	SatelliteECEF(id model.NodeID, at time.Time) (Vec3, error)
}

// StaticProvider serves fixed, time-invariant distances. It is used by tests
// and small examples where orbital propagation is irrelevant.
type StaticProvider struct {
	satSat map[[2]model.NodeID]float64
	gsSat  map[[2]model.NodeID]float64
}

// NewStaticProvider returns an empty provider; distances are registered with
// SetSatSat and SetGSSat.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		satSat: make(map[[2]model.NodeID]float64),
		gsSat:  make(map[[2]model.NodeID]float64),
	}
}

// SetSatSat registers the distance between two satellites. The distance is
// symmetric: SetSatSat(a, b, d) also answers queries for (b, a).
func (p *StaticProvider) SetSatSat(a, b model.NodeID, distanceM float64) {
	p.satSat[orderedPair(a, b)] = distanceM
}

// SetGSSat registers the distance between a ground station and a satellite.
func (p *StaticProvider) SetGSSat(gs, sat model.NodeID, distanceM float64) {
	p.gsSat[[2]model.NodeID{gs, sat}] = distanceM
}

func (p *StaticProvider) DistanceBetweenSatellites(a, b model.NodeID, epoch, at time.Time) (float64, error) {
	d, ok := p.satSat[orderedPair(a, b)]
	if !ok {
		return 0, fmt.Errorf("no distance recorded for satellites %d and %d", a, b)
	}
	return d, nil
}

func (p *StaticProvider) DistanceGroundStationToSatellite(gs model.GroundStation, sat model.NodeID, epoch, at time.Time) (float64, error) {
	d, ok := p.gsSat[[2]model.NodeID{gs.ID, sat}]
	if !ok {
		return 0, fmt.Errorf("no distance recorded for ground station %d and satellite %d", gs.ID, sat)
	}
	return d, nil
}

func orderedPair(a, b model.NodeID) [2]model.NodeID {
	if a > b {
		a, b = b, a
	}
	return [2]model.NodeID{a, b}
}
