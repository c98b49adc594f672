package model

import "time"

// NodeID identifies a satellite or a ground station. IDs are unique across
// both kinds but are not guaranteed to be contiguous or sequential, so dense
// indexing always goes through an explicit ID-to-offset map.
type NodeID int64

// Satellite describes one satellite as it appears in a single topology
// snapshot. ISLCount is recomputed from the snapshot's ISL set every
// timestep; a stale count from an earlier snapshot is never carried over.
type Satellite struct {
	ID NodeID

	// ISLCount is the number of ISL edges incident to this satellite in the
	// current snapshot. ISL interfaces are numbered 0..ISLCount-1.
	ISLCount int

	// TLE lines for SGP4-based position providers. Empty when positions come
	// from elsewhere (e.g. a static provider in tests).
	TLELine1 string
	TLELine2 string
}

// GSLInterface returns the interface index of the satellite's GSL interface,
// which is numbered immediately after its ISL interfaces.
func (s Satellite) GSLInterface() int { return s.ISLCount }

// GroundStation is a fixed ground terminal with exactly one GSL interface
// (index 0). The ECEF position is precomputed by the caller; geodetic to
// Cartesian conversion is outside the control plane.
type GroundStation struct {
	ID   NodeID
	Name string

	LatitudeDeg  float64
	LongitudeDeg float64
	ElevationM   float64

	// ECEF position in metres.
	X, Y, Z float64
}

// ConstellationSpec holds the orbital configuration shared by every snapshot
// of a run.
type ConstellationSpec struct {
	Orbits       int
	SatsPerOrbit int

	// Epoch anchors simulation offsets to absolute time.
	Epoch time.Time

	MaxISLLengthM float64
	MaxGSLLengthM float64
}

// NumSatellites returns the nominal constellation size.
func (c ConstellationSpec) NumSatellites() int { return c.Orbits * c.SatsPerOrbit }

// ISL names one candidate inter-satellite link by its endpoint IDs. The order
// of the ISL input list is significant: interface indices are assigned in
// list order.
type ISL struct {
	A, B NodeID
}

// InterfaceDescriptor is the static per-node interface and bandwidth
// descriptor consumed by the routing layer.
type InterfaceDescriptor struct {
	NodeID                NodeID
	InterfaceCount        int
	AggregateMaxBandwidth float64
}

// Attachment records one satellite a ground station may route through, and
// the GSL distance to it at the current instant.
type Attachment struct {
	DistanceM float64
	Satellite NodeID
}
