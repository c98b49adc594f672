package simulation

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/leo-routing-sim/attachment"
	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/internal/observability"
	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/position"
	"github.com/signalsfoundry/leo-routing-sim/routing"
	"github.com/signalsfoundry/leo-routing-sim/routing/linkstate"
	"github.com/signalsfoundry/leo-routing-sim/routing/topological"
	"github.com/signalsfoundry/leo-routing-sim/timectrl"
	"github.com/signalsfoundry/leo-routing-sim/topology"
)

// Config describes one simulation run.
type Config struct {
	Spec           model.ConstellationSpec
	Satellites     []model.Satellite
	GroundStations []model.GroundStation
	ISLs           []model.ISL
	Interfaces     []model.InterfaceDescriptor

	Schedule timectrl.Schedule

	// Algorithm and AttachmentStrategy name entries in the registries below.
	Algorithm          string
	AttachmentStrategy string

	Provider position.Provider

	// WeightTolerance for the unchanged-topology check; zero selects
	// topology.DefaultWeightTolerance.
	WeightTolerance float64

	// Algorithms and Strategies default to the built-in registries when nil.
	Algorithms *routing.Registry
	Strategies *attachment.Registry

	Log     logging.Logger
	Metrics *observability.SimCollector
}

// Record is the output of one timestep. Err is set only on the terminal
// record of a failed run; Error carries the same message for JSON dumps.
type Record struct {
	Timestamp time.Duration  `json:"timestamp"`
	State     *routing.State `json:"state,omitempty"`
	Error     string         `json:"error,omitempty"`
	Err       error          `json:"-"`
}

func failedRecord(offset time.Duration, err error) Record {
	return Record{Timestamp: offset, Error: err.Error(), Err: err}
}

// DefaultAlgorithms returns a registry with the built-in routing algorithms.
func DefaultAlgorithms() *routing.Registry {
	r := routing.NewRegistry()
	r.Register(linkstate.Name, linkstate.New)
	r.Register(topological.Name, topological.New)
	return r
}

// DefaultStrategies returns a registry with the built-in attachment
// strategies.
func DefaultStrategies() *attachment.Registry {
	r := attachment.NewRegistry()
	r.Register(attachment.NearestName, attachment.NewNearest)
	r.Register(attachment.NearestElevationName, attachment.NewNearestElevation)
	return r
}

// Driver steps a run through its schedule, producing one Record per
// timestep.
type Driver struct {
	cfg       Config
	algorithm routing.Algorithm
	strategy  attachment.Strategy
	builder   *topology.Builder
	log       logging.Logger
	tolerance float64
}

// NewDriver validates the configuration and resolves the algorithm and
// strategy names. Configuration errors surface here, before any timestep
// runs.
func NewDriver(cfg Config) (*Driver, error) {
	if cfg.Provider == nil {
		return nil, errors.New("position provider is required")
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Log
	if log == nil {
		log = logging.Noop()
	}
	algorithms := cfg.Algorithms
	if algorithms == nil {
		algorithms = DefaultAlgorithms()
	}
	strategies := cfg.Strategies
	if strategies == nil {
		strategies = DefaultStrategies()
	}

	alg, err := algorithms.New(cfg.Algorithm, log)
	if err != nil {
		return nil, err
	}
	strat, err := strategies.New(cfg.AttachmentStrategy, cfg.Provider, log)
	if err != nil {
		return nil, err
	}

	tolerance := cfg.WeightTolerance
	if tolerance == 0 {
		tolerance = topology.DefaultWeightTolerance
	}

	return &Driver{
		cfg:       cfg,
		algorithm: alg,
		strategy:  strat,
		builder:   topology.NewBuilder(cfg.Provider, log),
		log:       log,
		tolerance: tolerance,
	}, nil
}

// Run executes the schedule. Each timestep rebuilds the topology, reattaches
// ground stations, and either reuses the previous routing state (when the
// topology is unchanged within tolerance) or recomputes it. A fatal error in
// any phase produces a terminal Record carrying the error and stops the run.
func (d *Driver) Run(ctx context.Context) []Record {
	ctx, log := logging.WithRunLogger(ctx, d.log)
	tracer := otel.Tracer("simulation")

	steps := d.cfg.Schedule.Steps()
	records := make([]Record, 0, steps)

	log.Info(ctx, "run starting",
		logging.String("algorithm", d.algorithm.Name()),
		logging.String("attachment_strategy", d.strategy.Name()),
		logging.Int("timesteps", steps))

	progressEvery := steps / 10
	if progressEvery == 0 {
		progressEvery = 1
	}

	var prevTopo *topology.Topology
	var prevState *routing.State

	for i := 0; i < steps; i++ {
		offset := d.cfg.Schedule.At(i)
		at := d.cfg.Spec.Epoch.Add(offset)
		started := time.Now()

		stepCtx, span := tracer.Start(ctx, "timestep",
			trace.WithAttributes(
				attribute.Int("timestep.index", i),
				attribute.String("timestep.offset", offset.String()),
			))

		rec, topo, state := d.step(stepCtx, prevTopo, prevState, offset, at)
		span.End()

		d.cfg.Metrics.ObserveTimestep(time.Since(started))
		records = append(records, rec)
		if rec.Err != nil {
			log.Error(ctx, "run aborted", logging.Any("timestep", offset), logging.Any("error", rec.Err))
			return records
		}
		prevTopo, prevState = topo, state

		if (i+1)%progressEvery == 0 {
			log.Info(ctx, "run progress",
				logging.Int("completed", i+1), logging.Int("total", steps))
		}
	}

	log.Info(ctx, "run complete", logging.Int("timesteps", len(records)))
	return records
}

func (d *Driver) step(ctx context.Context, prevTopo *topology.Topology, prevState *routing.State, offset time.Duration, at time.Time) (Record, *topology.Topology, *routing.State) {
	topo, err := d.builder.Build(ctx, d.cfg.Spec, d.cfg.Satellites, d.cfg.GroundStations, d.cfg.ISLs, at)
	if err != nil {
		return failedRecord(offset, err), nil, nil
	}

	atts, err := d.strategy.SelectAttachments(ctx, topo, at)
	if err != nil {
		return failedRecord(offset, err), nil, nil
	}
	if err := d.builder.AttachGroundStations(ctx, topo, atts); err != nil {
		return failedRecord(offset, err), nil, nil
	}

	d.cfg.Metrics.SetTopologySize(topo.Graph.Nodes().Len(), topo.Graph.Edges().Len(), topo.NumISLs)

	if prevState != nil && topology.Equal(prevTopo, topo, d.tolerance) {
		d.cfg.Metrics.IncStateReuse()
		return Record{Timestamp: offset, State: prevState}, topo, prevState
	}

	state, err := d.algorithm.ComputeState(ctx, topo, atts, d.cfg.Interfaces)
	if err != nil {
		return failedRecord(offset, err), nil, nil
	}
	d.cfg.Metrics.IncRoutingCompute(d.algorithm.Name())
	return Record{Timestamp: offset, State: state}, topo, state
}
