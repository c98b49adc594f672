package topological

import (
	"context"
	"testing"
	"time"

	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/position"
	"github.com/signalsfoundry/leo-routing-sim/topology"
)

func buildTopo(t *testing.T, distances map[[2]model.NodeID]float64, sats []model.Satellite, stations []model.GroundStation, isls []model.ISL, atts [][]model.Attachment) *topology.Topology {
	t.Helper()
	p := position.NewStaticProvider()
	for pair, d := range distances {
		p.SetSatSat(pair[0], pair[1], d)
	}
	spec := model.ConstellationSpec{
		Orbits: 1, SatsPerOrbit: len(sats),
		Epoch:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxISLLengthM: 1e9, MaxGSLLengthM: 1e9,
	}
	b := topology.NewBuilder(p, nil)
	topo, err := b.Build(context.Background(), spec, sats, stations, isls, spec.Epoch)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := b.AttachGroundStations(context.Background(), topo, atts); err != nil {
		t.Fatalf("AttachGroundStations: %v", err)
	}
	return topo
}

func TestDirectDeliveryOverGSL(t *testing.T) {
	topo := buildTopo(t, nil,
		[]model.Satellite{{ID: 0}},
		[]model.GroundStation{{ID: 100}},
		nil,
		[][]model.Attachment{{{DistanceM: 500, Satellite: 0}}})

	state, err := New(nil).ComputeState(context.Background(), topo, [][]model.Attachment{{{DistanceM: 500, Satellite: 0}}}, nil)
	if err != nil {
		t.Fatalf("ComputeState: %v", err)
	}
	hop, ok := state.Forwarding.Lookup(0, 100).Hop()
	if !ok {
		t.Fatal("(0 -> 100): no route, want direct GSL delivery")
	}
	if hop.NextHop != 100 || hop.LocalIf != 0 || hop.RemoteIf != 0 {
		t.Fatalf("hop = %+v, want {100 0 0}", hop)
	}
}

func TestGreedyHopsTowardDestinationAddress(t *testing.T) {
	// Chain 0 - 1 - 2 within one plane; the station hangs off satellite 2.
	// Satellite 0 must hand traffic to satellite 1, whose address is
	// topologically closer to the destination.
	distances := map[[2]model.NodeID]float64{{0, 1}: 1000, {1, 2}: 1000}
	sats := []model.Satellite{{ID: 0}, {ID: 1}, {ID: 2}}
	stations := []model.GroundStation{{ID: 100}}
	isls := []model.ISL{{A: 0, B: 1}, {A: 1, B: 2}}
	atts := [][]model.Attachment{{{DistanceM: 500, Satellite: 2}}}
	topo := buildTopo(t, distances, sats, stations, isls, atts)

	state, err := New(nil).ComputeState(context.Background(), topo, atts, nil)
	if err != nil {
		t.Fatalf("ComputeState: %v", err)
	}
	ft := state.Forwarding

	hop, ok := ft.Lookup(0, 100).Hop()
	if !ok {
		t.Fatal("(0 -> 100): no route")
	}
	if hop.NextHop != 1 || hop.LocalIf != 0 || hop.RemoteIf != 0 {
		t.Fatalf("(0 -> 100) = %+v, want {1 0 0}", hop)
	}

	hop, ok = ft.Lookup(1, 100).Hop()
	if !ok {
		t.Fatal("(1 -> 100): no route")
	}
	if hop.NextHop != 2 || hop.LocalIf != 1 || hop.RemoteIf != 0 {
		t.Fatalf("(1 -> 100) = %+v, want {2 1 0}", hop)
	}

	// Satellite 2 delivers over its GSL, numbered after its single ISL.
	hop, ok = ft.Lookup(2, 100).Hop()
	if !ok {
		t.Fatal("(2 -> 100): no route")
	}
	if hop.NextHop != 100 || hop.LocalIf != 1 || hop.RemoteIf != 0 {
		t.Fatalf("(2 -> 100) = %+v, want {100 1 0}", hop)
	}
}

func TestStationsBehindSameSatelliteGetDistinctSubnets(t *testing.T) {
	atts := [][]model.Attachment{
		{{DistanceM: 500, Satellite: 0}},
		{{DistanceM: 600, Satellite: 0}},
	}
	topo := buildTopo(t, nil,
		[]model.Satellite{{ID: 0}},
		[]model.GroundStation{{ID: 100}, {ID: 101}},
		nil, atts)

	alg := New(nil).(*algorithm)
	if _, err := alg.ComputeState(context.Background(), topo, atts, nil); err != nil {
		t.Fatalf("ComputeState: %v", err)
	}

	a100, a101 := alg.gsAddr[100], alg.gsAddr[101]
	if !a100.SamePrefix(a101) {
		t.Fatalf("stations share a satellite but not a prefix: %+v vs %+v", a100, a101)
	}
	if a100.SubnetIndex == a101.SubnetIndex {
		t.Fatalf("stations share subnet index %d", a100.SubnetIndex)
	}
	if a100.SubnetIndex == 0 || a101.SubnetIndex == 0 {
		t.Fatal("subnet index 0 is reserved for the satellite itself")
	}
}

func TestUnchangedInputReturnsSameState(t *testing.T) {
	distances := map[[2]model.NodeID]float64{{0, 1}: 1000}
	sats := []model.Satellite{{ID: 0}, {ID: 1}}
	stations := []model.GroundStation{{ID: 100}}
	isls := []model.ISL{{A: 0, B: 1}}
	atts := [][]model.Attachment{{{DistanceM: 500, Satellite: 0}}}

	alg := New(nil)
	topo := buildTopo(t, distances, sats, stations, isls, atts)
	first, err := alg.ComputeState(context.Background(), topo, atts, nil)
	if err != nil {
		t.Fatalf("ComputeState: %v", err)
	}
	topo2 := buildTopo(t, distances, sats, stations, isls, atts)
	second, err := alg.ComputeState(context.Background(), topo2, atts, nil)
	if err != nil {
		t.Fatalf("ComputeState: %v", err)
	}
	if first != second {
		t.Fatal("unchanged inputs must return the same state object")
	}
}

func TestMovedStationIsRenumbered(t *testing.T) {
	distances := map[[2]model.NodeID]float64{{0, 1}: 1000}
	sats := []model.Satellite{{ID: 0}, {ID: 1}}
	stations := []model.GroundStation{{ID: 100}}
	isls := []model.ISL{{A: 0, B: 1}}

	alg := New(nil).(*algorithm)

	atts := [][]model.Attachment{{{DistanceM: 500, Satellite: 0}}}
	topo := buildTopo(t, distances, sats, stations, isls, atts)
	first, err := alg.ComputeState(context.Background(), topo, atts, nil)
	if err != nil {
		t.Fatalf("ComputeState: %v", err)
	}
	if alg.gsAddr[100].SatIndex != 0 {
		t.Fatalf("address = %+v, want prefix of satellite 0", alg.gsAddr[100])
	}

	// Handover to satellite 1.
	atts = [][]model.Attachment{{{DistanceM: 400, Satellite: 1}}}
	topo = buildTopo(t, distances, sats, stations, isls, atts)
	second, err := alg.ComputeState(context.Background(), topo, atts, nil)
	if err != nil {
		t.Fatalf("ComputeState: %v", err)
	}
	if first == second {
		t.Fatal("handover must force a new state")
	}
	if alg.gsAddr[100].SatIndex != 1 {
		t.Fatalf("address = %+v, want prefix of satellite 1", alg.gsAddr[100])
	}

	hop, ok := second.Forwarding.Lookup(1, 100).Hop()
	if !ok || hop.NextHop != 100 {
		t.Fatalf("(1 -> 100) = %+v (ok=%v), want direct delivery", hop, ok)
	}
}

func TestDetachedStationLosesAddress(t *testing.T) {
	sats := []model.Satellite{{ID: 0}}
	stations := []model.GroundStation{{ID: 100}}

	alg := New(nil).(*algorithm)

	atts := [][]model.Attachment{{{DistanceM: 500, Satellite: 0}}}
	topo := buildTopo(t, nil, sats, stations, nil, atts)
	if _, err := alg.ComputeState(context.Background(), topo, atts, nil); err != nil {
		t.Fatalf("ComputeState: %v", err)
	}

	atts = [][]model.Attachment{nil}
	topo = buildTopo(t, nil, sats, stations, nil, atts)
	state, err := alg.ComputeState(context.Background(), topo, atts, nil)
	if err != nil {
		t.Fatalf("ComputeState: %v", err)
	}
	if _, ok := alg.gsAddr[100]; ok {
		t.Fatal("detached station must lose its address")
	}
	if !state.Forwarding.Lookup(0, 100).IsNoRoute() {
		t.Fatal("traffic to a detached station must drop")
	}
}
