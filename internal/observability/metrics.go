package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for simulation runs. All mutators
// are nil-safe so callers can skip metrics wiring entirely.
type SimCollector struct {
	gatherer prometheus.Gatherer

	TimestepsTotal       prometheus.Counter
	StateReusesTotal     prometheus.Counter
	RoutingComputesTotal *prometheus.CounterVec
	TimestepDuration     prometheus.Histogram

	TopologyNodes prometheus.Gauge
	TopologyEdges prometheus.Gauge
	TopologyISLs  prometheus.Gauge
}

// NewSimCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	timesteps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_timesteps_total",
		Help: "Total number of processed simulation timesteps.",
	}), "sim_timesteps_total")
	if err != nil {
		return nil, err
	}
	reuses, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_state_reuses_total",
		Help: "Timesteps that reused the previous routing state because the topology was unchanged.",
	}), "sim_state_reuses_total")
	if err != nil {
		return nil, err
	}

	computes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_routing_computes_total",
		Help: "Full routing state computations, labeled by algorithm.",
	}, []string{"algorithm"})
	computes, err = registerCounterVec(reg, computes, "sim_routing_computes_total")
	if err != nil {
		return nil, err
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_timestep_duration_seconds",
		Help:    "Wall-clock time spent on one simulation timestep.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
	duration, err = registerHistogram(reg, duration, "sim_timestep_duration_seconds")
	if err != nil {
		return nil, err
	}

	nodes, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_topology_nodes",
		Help: "Node count of the most recent topology snapshot.",
	}), "sim_topology_nodes")
	if err != nil {
		return nil, err
	}
	edges, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_topology_edges",
		Help: "Edge count of the most recent topology snapshot, GSLs included.",
	}), "sim_topology_edges")
	if err != nil {
		return nil, err
	}
	isls, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_topology_isls",
		Help: "ISL count of the most recent topology snapshot.",
	}), "sim_topology_isls")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:             gatherer,
		TimestepsTotal:       timesteps,
		StateReusesTotal:     reuses,
		RoutingComputesTotal: computes,
		TimestepDuration:     duration,
		TopologyNodes:        nodes,
		TopologyEdges:        edges,
		TopologyISLs:         isls,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveTimestep records one completed timestep and its duration.
func (c *SimCollector) ObserveTimestep(d time.Duration) {
	if c == nil {
		return
	}
	if c.TimestepsTotal != nil {
		c.TimestepsTotal.Inc()
	}
	if c.TimestepDuration != nil {
		c.TimestepDuration.Observe(d.Seconds())
	}
}

// IncStateReuse records a timestep that reused the previous routing state.
func (c *SimCollector) IncStateReuse() {
	if c == nil || c.StateReusesTotal == nil {
		return
	}
	c.StateReusesTotal.Inc()
}

// IncRoutingCompute records a full routing computation by the named
// algorithm.
func (c *SimCollector) IncRoutingCompute(algorithm string) {
	if c == nil || c.RoutingComputesTotal == nil {
		return
	}
	c.RoutingComputesTotal.WithLabelValues(algorithm).Inc()
}

// SetTopologySize publishes the size of the latest snapshot.
func (c *SimCollector) SetTopologySize(nodes, edges, isls int) {
	if c == nil {
		return
	}
	if c.TopologyNodes != nil {
		c.TopologyNodes.Set(float64(nodes))
	}
	if c.TopologyEdges != nil {
		c.TopologyEdges.Set(float64(edges))
	}
	if c.TopologyISLs != nil {
		c.TopologyISLs.Set(float64(isls))
	}
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
