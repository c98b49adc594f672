package topological

import (
	"fmt"

	"github.com/signalsfoundry/leo-routing-sim/model"
)

// Address-space bounds. These are fixed by the packed wire encoding, not by
// the constellation actually flown: a smaller constellation still addresses
// and wraps within these bounds.
const (
	MaxShells          = 16
	MaxPlanes          = 128
	MaxSatsPerPlane    = 64
	MaxEndpointsPerSat = 32

	// Subnet index 0 names the satellite itself, so a satellite serves at
	// most MaxEndpointsPerSat-1 ground endpoints.
	MaxGSPerSubnet = MaxEndpointsPerSat - 1
)

// Bit layout of a packed address, MSB to LSB: shell | plane | satIndex |
// subnetIndex.
const (
	subnetBits   = 5
	satIndexBits = 6
	planeBits    = 7
	shellBits    = 4

	satIndexShift = subnetBits
	planeShift    = satIndexShift + satIndexBits
	shellShift    = planeShift + planeBits

	subnetMask   = 1<<subnetBits - 1
	satIndexMask = 1<<satIndexBits - 1
	planeMask    = 1<<planeBits - 1
	shellMask    = 1<<shellBits - 1
)

// Address locates a node in the constellation's orbital hierarchy: which
// shell, which plane in the shell, which satellite in the plane, and which
// ground endpoint behind that satellite. SubnetIndex 0 is the satellite
// itself.
type Address struct {
	Shell       int
	Plane       int
	SatIndex    int
	SubnetIndex int
}

// NewAddress validates the component ranges and returns the address.
func NewAddress(shell, plane, satIndex, subnetIndex int) (Address, error) {
	if shell < 0 || shell >= MaxShells {
		return Address{}, fmt.Errorf("shell %d out of range [0, %d)", shell, MaxShells)
	}
	if plane < 0 || plane >= MaxPlanes {
		return Address{}, fmt.Errorf("plane %d out of range [0, %d)", plane, MaxPlanes)
	}
	if satIndex < 0 || satIndex >= MaxSatsPerPlane {
		return Address{}, fmt.Errorf("satellite index %d out of range [0, %d)", satIndex, MaxSatsPerPlane)
	}
	if subnetIndex < 0 || subnetIndex >= MaxEndpointsPerSat {
		return Address{}, fmt.Errorf("subnet index %d out of range [0, %d)", subnetIndex, MaxEndpointsPerSat)
	}
	return Address{Shell: shell, Plane: plane, SatIndex: satIndex, SubnetIndex: subnetIndex}, nil
}

// ToInt packs the address into its 22-bit integer form.
func (a Address) ToInt() uint32 {
	return uint32(a.Shell)<<shellShift |
		uint32(a.Plane)<<planeShift |
		uint32(a.SatIndex)<<satIndexShift |
		uint32(a.SubnetIndex)
}

// AddressFromInt unpacks an integer produced by ToInt.
func AddressFromInt(v uint32) Address {
	return Address{
		Shell:       int(v >> shellShift & shellMask),
		Plane:       int(v >> planeShift & planeMask),
		SatIndex:    int(v >> satIndexShift & satIndexMask),
		SubnetIndex: int(v & subnetMask),
	}
}

// IsSatellite reports whether the address names a satellite rather than a
// ground endpoint behind one.
func (a Address) IsSatellite() bool { return a.SubnetIndex == 0 }

// SatelliteAddress returns the address of the satellite serving this
// endpoint.
func (a Address) SatelliteAddress() Address {
	a.SubnetIndex = 0
	return a
}

// SamePrefix reports whether both addresses sit behind the same satellite.
func (a Address) SamePrefix(b Address) bool {
	return a.Shell == b.Shell && a.Plane == b.Plane && a.SatIndex == b.SatIndex
}

// AddressForSatellite derives the canonical address of a satellite from its
// ID: IDs fill planes in order, planes fill shells in order, always against
// the address-space bounds.
func AddressForSatellite(id model.NodeID) (Address, error) {
	if id < 0 {
		return Address{}, fmt.Errorf("satellite ID %d is negative", id)
	}
	shell := int(id) / (MaxPlanes * MaxSatsPerPlane)
	rem := int(id) % (MaxPlanes * MaxSatsPerPlane)
	return NewAddress(shell, rem/MaxSatsPerPlane, rem%MaxSatsPerPlane, 0)
}

// DistanceTo is the topological distance heuristic between the satellites
// behind two addresses. It is not a hop count: the tiers only need to order
// candidates so that intra-plane hops beat cross-plane hops beat cross-shell
// hops. Wraparound uses the address-space bounds, matching how addresses are
// assigned.
func (a Address) DistanceTo(b Address) float64 {
	if a.Shell != b.Shell {
		d := a.Shell - b.Shell
		if d < 0 {
			d = -d
		}
		return 1000 + 100*float64(d)
	}
	if a.Plane != b.Plane {
		d := a.Plane - b.Plane
		if d < 0 {
			d = -d
		}
		if MaxPlanes-d < d {
			d = MaxPlanes - d
		}
		return 100 + 10*float64(d)
	}
	if a.SatIndex != b.SatIndex {
		d := a.SatIndex - b.SatIndex
		if d < 0 {
			d = -d
		}
		if MaxSatsPerPlane-d < d {
			d = MaxSatsPerPlane - d
		}
		return 1 + float64(d)
	}
	return 0
}
