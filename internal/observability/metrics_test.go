package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewSimCollectorRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	if c.TimestepsTotal == nil || c.StateReusesTotal == nil || c.RoutingComputesTotal == nil {
		t.Fatal("counters not initialised")
	}
	if c.Handler() == nil {
		t.Fatal("handler must not be nil")
	}
}

func TestNewSimCollectorToleratesDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewSimCollector(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewSimCollector(reg); err != nil {
		t.Fatalf("second registration against the same registry: %v", err)
	}
}

func TestMutatorsAreNilSafe(t *testing.T) {
	var c *SimCollector
	c.ObserveTimestep(time.Second)
	c.IncStateReuse()
	c.IncRoutingCompute("anything")
	c.SetTopologySize(1, 2, 3)
	if c.Handler() == nil {
		t.Fatal("nil collector handler must fall back to the default gatherer")
	}
}

func TestCollectorRecordsValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	c.ObserveTimestep(10 * time.Millisecond)
	c.ObserveTimestep(20 * time.Millisecond)
	c.IncStateReuse()
	c.IncRoutingCompute("shortest_path_link_state")
	c.SetTopologySize(10, 20, 8)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := make(map[string]bool)
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	for _, name := range []string{
		"sim_timesteps_total",
		"sim_state_reuses_total",
		"sim_routing_computes_total",
		"sim_timestep_duration_seconds",
		"sim_topology_nodes",
		"sim_topology_edges",
		"sim_topology_isls",
	} {
		if !found[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}
