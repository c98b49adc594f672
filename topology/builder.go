package topology

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/position"
)

// ErrISLTooLong reports a candidate ISL whose endpoints are farther apart
// than the constellation allows. An over-length ISL means the candidate link
// list and the orbital configuration disagree, so the run cannot continue.
var ErrISLTooLong = errors.New("ISL exceeds maximum length")

// Builder constructs topology snapshots from the candidate ISL list and a
// position provider.
type Builder struct {
	provider position.Provider
	log      logging.Logger
}

// NewBuilder returns a Builder over the given provider. A nil logger is
// replaced with a no-op one.
func NewBuilder(p position.Provider, log logging.Logger) *Builder {
	if log == nil {
		log = logging.Noop()
	}
	return &Builder{provider: p, log: log}
}

// Build evaluates every candidate ISL at the given instant and returns a
// fresh snapshot. Candidate links with an unknown endpoint or a failed range
// query are skipped with a warning; a link longer than Spec.MaxISLLengthM is
// fatal.
//
// The returned snapshot owns copies of the satellite records with ISLCount
// recomputed from scratch; callers keep their input slices.
func (b *Builder) Build(ctx context.Context, spec model.ConstellationSpec, sats []model.Satellite, stations []model.GroundStation, isls []model.ISL, at time.Time) (*Topology, error) {
	owned := make([]model.Satellite, len(sats))
	copy(owned, sats)
	for i := range owned {
		owned[i].ISLCount = 0
	}

	t := newTopology(spec, owned, stations)

	for _, link := range isls {
		if link.A == link.B {
			b.log.Warn(ctx, "skipping self-referential ISL",
				logging.Any("satellite", link.A))
			continue
		}
		ai, aok := t.satIndex[link.A]
		bi, bok := t.satIndex[link.B]
		if !aok || !bok {
			b.log.Warn(ctx, "skipping ISL with unknown endpoint",
				logging.Any("a", link.A), logging.Any("b", link.B))
			continue
		}

		d, err := b.provider.DistanceBetweenSatellites(link.A, link.B, spec.Epoch, at)
		if err != nil {
			b.log.Error(ctx, "range query failed, skipping ISL",
				logging.Any("a", link.A), logging.Any("b", link.B),
				logging.Any("error", err))
			continue
		}
		if d > spec.MaxISLLengthM {
			return nil, fmt.Errorf("%w: satellites %d and %d are %.2fm apart, maximum is %.2fm at t=%s",
				ErrISLTooLong, link.A, link.B, d, spec.MaxISLLengthM, at.Format(time.RFC3339))
		}

		t.Graph.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(link.A),
			T: simple.Node(link.B),
			W: d,
		})
		t.ISLInterface[IfacePair{From: link.A, To: link.B}] = t.Satellites[ai].ISLCount
		t.ISLInterface[IfacePair{From: link.B, To: link.A}] = t.Satellites[bi].ISLCount
		t.Satellites[ai].ISLCount++
		t.Satellites[bi].ISLCount++
		t.NumISLs++
	}

	if err := ValidateNoGroundLinks(t); err != nil {
		return nil, err
	}
	return t, nil
}

// AttachGroundStations adds a GSL edge for every attachment the strategy
// selected. attachments is indexed like t.GroundStations; an empty list
// leaves that station isolated.
func (b *Builder) AttachGroundStations(ctx context.Context, t *Topology, attachments [][]model.Attachment) error {
	if len(attachments) != len(t.GroundStations) {
		return fmt.Errorf("got %d attachment lists for %d ground stations", len(attachments), len(t.GroundStations))
	}
	for i, gs := range t.GroundStations {
		for _, att := range attachments[i] {
			if !t.IsSatellite(att.Satellite) {
				return fmt.Errorf("ground station %d attached to unknown satellite %d", gs.ID, att.Satellite)
			}
			t.Graph.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(gs.ID),
				T: simple.Node(att.Satellite),
				W: att.DistanceM,
			})
		}
	}
	return nil
}
