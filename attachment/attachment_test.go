package attachment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/position"
	"github.com/signalsfoundry/leo-routing-sim/topology"
)

func buildTopo(t *testing.T, p position.Provider, sats []model.Satellite, stations []model.GroundStation, maxGSL float64) *topology.Topology {
	t.Helper()
	spec := model.ConstellationSpec{
		Orbits: 1, SatsPerOrbit: len(sats),
		Epoch:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxISLLengthM: 1e9, MaxGSLLengthM: maxGSL,
	}
	topo, err := topology.NewBuilder(p, nil).Build(context.Background(), spec, sats, stations, nil, spec.Epoch)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return topo
}

func TestNearestPicksClosestInRange(t *testing.T) {
	p := position.NewStaticProvider()
	p.SetGSSat(100, 1, 900000)
	p.SetGSSat(100, 2, 700000)
	p.SetGSSat(100, 3, 3000000) // out of range

	sats := []model.Satellite{{ID: 1}, {ID: 2}, {ID: 3}}
	stations := []model.GroundStation{{ID: 100}}
	topo := buildTopo(t, p, sats, stations, 2000000)

	atts, err := NewNearest(p, nil).SelectAttachments(context.Background(), topo, topo.Spec.Epoch)
	if err != nil {
		t.Fatalf("SelectAttachments: %v", err)
	}
	if len(atts) != 1 || len(atts[0]) != 1 {
		t.Fatalf("attachments = %v, want one per station", atts)
	}
	if atts[0][0].Satellite != 2 || atts[0][0].DistanceM != 700000 {
		t.Fatalf("attachment = %+v, want satellite 2 at 700000m", atts[0][0])
	}
}

func TestNearestLeavesOutOfRangeStationUnattached(t *testing.T) {
	p := position.NewStaticProvider()
	p.SetGSSat(100, 1, 5000000)

	sats := []model.Satellite{{ID: 1}}
	stations := []model.GroundStation{{ID: 100}}
	topo := buildTopo(t, p, sats, stations, 2000000)

	atts, err := NewNearest(p, nil).SelectAttachments(context.Background(), topo, topo.Spec.Epoch)
	if err != nil {
		t.Fatalf("SelectAttachments: %v", err)
	}
	if len(atts[0]) != 0 {
		t.Fatalf("attachments = %v, want station unattached", atts[0])
	}
}

func TestNearestTreatsQueryErrorAsInvisible(t *testing.T) {
	p := position.NewStaticProvider()
	// Satellite 1 has no registered distance; the query errors and the
	// satellite is invisible, leaving satellite 2 as the only candidate.
	p.SetGSSat(100, 2, 900000)

	sats := []model.Satellite{{ID: 1}, {ID: 2}}
	stations := []model.GroundStation{{ID: 100}}
	topo := buildTopo(t, p, sats, stations, 2000000)

	atts, err := NewNearest(p, nil).SelectAttachments(context.Background(), topo, topo.Spec.Epoch)
	if err != nil {
		t.Fatalf("SelectAttachments: %v", err)
	}
	if len(atts[0]) != 1 || atts[0][0].Satellite != 2 {
		t.Fatalf("attachments = %v, want satellite 2 only", atts[0])
	}
}

func TestRegistryUnknownStrategy(t *testing.T) {
	r := NewRegistry()
	r.Register(NearestName, NewNearest)
	r.Register(NearestElevationName, NewNearestElevation)

	_, err := r.New("no_such_strategy", position.NewStaticProvider(), nil)
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
	if !strings.Contains(err.Error(), NearestName) || !strings.Contains(err.Error(), NearestElevationName) {
		t.Fatalf("error should list registered strategies: %v", err)
	}
}

// locatorProvider serves fixed ECEF positions and derives distances from
// them, for exercising the elevation-constrained strategy.
type locatorProvider struct {
	positions map[model.NodeID]position.Vec3
}

func (l *locatorProvider) SatelliteECEF(id model.NodeID, at time.Time) (position.Vec3, error) {
	return l.positions[id], nil
}

func (l *locatorProvider) DistanceBetweenSatellites(a, b model.NodeID, epoch, at time.Time) (float64, error) {
	return l.positions[a].DistanceTo(l.positions[b]), nil
}

func (l *locatorProvider) DistanceGroundStationToSatellite(gs model.GroundStation, sat model.NodeID, epoch, at time.Time) (float64, error) {
	return l.positions[sat].DistanceTo(position.Vec3{X: gs.X, Y: gs.Y, Z: gs.Z}), nil
}

func TestNearestElevationRejectsLowSatellites(t *testing.T) {
	// Station on the equator. Satellite 1 is overhead; satellite 2 sits near
	// the station's horizon and fails the elevation cut even though it is
	// within range.
	p := &locatorProvider{positions: map[model.NodeID]position.Vec3{
		1: {X: position.EarthRadiusM + 550000, Y: 0, Z: 0},
		2: {X: position.EarthRadiusM, Y: 2000000, Z: 0},
	}}
	sats := []model.Satellite{{ID: 1}, {ID: 2}}
	stations := []model.GroundStation{{ID: 100, X: position.EarthRadiusM}}
	topo := buildTopo(t, p, sats, stations, 5000000)

	atts, err := NewNearestElevation(p, nil).SelectAttachments(context.Background(), topo, topo.Spec.Epoch)
	if err != nil {
		t.Fatalf("SelectAttachments: %v", err)
	}
	if len(atts[0]) != 1 || atts[0][0].Satellite != 1 {
		t.Fatalf("attachments = %v, want overhead satellite 1 only", atts[0])
	}
}

func TestNearestElevationRequiresLocator(t *testing.T) {
	p := position.NewStaticProvider() // no ECEF positions
	sats := []model.Satellite{{ID: 1}}
	stations := []model.GroundStation{{ID: 100}}
	topo := buildTopo(t, p, sats, stations, 2000000)

	_, err := NewNearestElevation(p, nil).SelectAttachments(context.Background(), topo, topo.Spec.Epoch)
	if err == nil {
		t.Fatal("expected error for provider without ECEF positions")
	}
}
