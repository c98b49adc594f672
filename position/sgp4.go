package position

import (
	"fmt"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/leo-routing-sim/model"
)

// SGP4Provider propagates satellites from their TLEs with SGP4 and answers
// range queries with straight-line ECEF distances. The epoch argument of the
// Provider methods is ignored: each TLE carries its own epoch.
type SGP4Provider struct {
	sats map[model.NodeID]satellite.Satellite
}

// NewSGP4Provider builds a provider from the constellation's satellites.
// Every satellite must carry both TLE lines.
func NewSGP4Provider(sats []model.Satellite) (*SGP4Provider, error) {
	p := &SGP4Provider{sats: make(map[model.NodeID]satellite.Satellite, len(sats))}
	for _, s := range sats {
		if s.TLELine1 == "" || s.TLELine2 == "" {
			return nil, fmt.Errorf("satellite %d: missing TLE lines", s.ID)
		}
		p.sats[s.ID] = satellite.TLEToSat(s.TLELine1, s.TLELine2, satellite.GravityWGS72)
	}
	return p, nil
}

// SatelliteECEF propagates the satellite to the given instant and returns its
// ECEF position in metres. go-satellite works in kilometres.
func (p *SGP4Provider) SatelliteECEF(id model.NodeID, at time.Time) (Vec3, error) {
	sat, ok := p.sats[id]
	if !ok {
		return Vec3{}, fmt.Errorf("no TLE loaded for satellite %d", id)
	}

	at = at.UTC()
	year, month, day := at.Date()
	hour, min, sec := at.Clock()

	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	const kmToM = 1000.0
	return Vec3{
		X: posECEF.X * kmToM,
		Y: posECEF.Y * kmToM,
		Z: posECEF.Z * kmToM,
	}, nil
}

func (p *SGP4Provider) DistanceBetweenSatellites(a, b model.NodeID, epoch, at time.Time) (float64, error) {
	pa, err := p.SatelliteECEF(a, at)
	if err != nil {
		return 0, err
	}
	pb, err := p.SatelliteECEF(b, at)
	if err != nil {
		return 0, err
	}
	return pa.DistanceTo(pb), nil
}

func (p *SGP4Provider) DistanceGroundStationToSatellite(gs model.GroundStation, sat model.NodeID, epoch, at time.Time) (float64, error) {
	ps, err := p.SatelliteECEF(sat, at)
	if err != nil {
		return 0, err
	}
	return ps.DistanceTo(Vec3{X: gs.X, Y: gs.Y, Z: gs.Z}), nil
}
