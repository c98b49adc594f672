package position

import "math"

// EarthRadiusM is the mean Earth radius used for all simple geometry
// calculations in the attachment layer (metres).
const EarthRadiusM = 6371000.0

// Vec3 is an ECEF-style vector in metres.
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// HasLineOfSight checks whether the straight segment between p1 and p2
// intersects the Earth sphere. If it does, the Earth blocks the line-of-sight
// and the function returns false.
//
// All positions are ECEF in metres.
func HasLineOfSight(p1, p2 Vec3) bool {
	v := p2.Sub(p1)
	a := v.Dot(v)
	if a == 0 {
		// Degenerate case: same point. If it's outside Earth, treat as LoS;
		// if inside, treat as blocked.
		return p1.Dot(p1) > EarthRadiusM*EarthRadiusM
	}

	// Find the closest point on the segment to the Earth's centre (origin).
	t := -p1.Dot(v) / a
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := Vec3{
		X: p1.X + v.X*t,
		Y: p1.Y + v.Y*t,
		Z: p1.Z + v.Z*t,
	}

	return closest.Dot(closest) > EarthRadiusM*EarthRadiusM
}

// ElevationDegrees returns the elevation angle of the target as seen from
// the observer, in degrees. 0° = geometric horizon, 90° = overhead.
func ElevationDegrees(observer, target Vec3) float64 {
	v := target.Sub(observer)
	vNorm := v.Norm()
	if vNorm == 0 {
		return 90
	}

	// Local zenith at observer is its normalised position vector.
	r := observer.Norm()
	if r == 0 {
		return 90
	}
	zenith := Vec3{
		X: observer.X / r,
		Y: observer.Y / r,
		Z: observer.Z / r,
	}

	cosGamma := v.Dot(zenith) / vNorm
	if cosGamma > 1 {
		cosGamma = 1
	} else if cosGamma < -1 {
		cosGamma = -1
	}
	gammaDeg := math.Acos(cosGamma) * 180.0 / math.Pi

	// Elevation is measured from local horizon (90° − zenith angle).
	return 90.0 - gammaDeg
}

// GeodeticToECEF converts a geodetic coordinate on a spherical Earth to ECEF
// metres. Good enough for placing demo ground stations; real deployments feed
// precomputed WGS84 positions into model.GroundStation directly.
func GeodeticToECEF(latDeg, lonDeg, elevM float64) (x, y, z float64) {
	lat := latDeg * math.Pi / 180.0
	lon := lonDeg * math.Pi / 180.0
	r := EarthRadiusM + elevM
	x = r * math.Cos(lat) * math.Cos(lon)
	y = r * math.Cos(lat) * math.Sin(lon)
	z = r * math.Sin(lat)
	return x, y, z
}
