package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/topology"
)

// Pair is a directed source/destination key into the forwarding table.
type Pair struct {
	Src, Dst model.NodeID
}

// Hop is one forwarding decision: the next node and the interface indices on
// both ends of the link toward it.
type Hop struct {
	NextHop  model.NodeID
	LocalIf  int
	RemoteIf int
}

// Entry is a forwarding table cell. The zero value means no route; a
// populated entry is built with Forward. Code never encodes "no route" with
// sentinel IDs or interface numbers.
type Entry struct {
	hop Hop
	ok  bool
}

// Forward returns an entry directing traffic to next over the given
// interface pair.
func Forward(next model.NodeID, localIf, remoteIf int) Entry {
	return Entry{hop: Hop{NextHop: next, LocalIf: localIf, RemoteIf: remoteIf}, ok: true}
}

// NoRoute returns the explicit drop entry.
func NoRoute() Entry { return Entry{} }

// Hop returns the forwarding decision, and false when the entry is a drop.
func (e Entry) Hop() (Hop, bool) { return e.hop, e.ok }

// IsNoRoute reports whether the entry drops traffic.
func (e Entry) IsNoRoute() bool { return !e.ok }

// ForwardingTable maps directed pairs to entries. Lookup is total: a pair the
// algorithm never wrote behaves as an explicit drop.
type ForwardingTable map[Pair]Entry

// Lookup returns the entry for (src, dst), or a drop when absent.
func (ft ForwardingTable) Lookup(src, dst model.NodeID) Entry {
	return ft[Pair{Src: src, Dst: dst}]
}

// MarshalJSON renders the table as an array sorted by (src, dst) so dumps of
// the same table are byte-identical.
func (ft ForwardingTable) MarshalJSON() ([]byte, error) {
	type jsonEntry struct {
		Src      model.NodeID `json:"src"`
		Dst      model.NodeID `json:"dst"`
		NextHop  model.NodeID `json:"next_hop,omitempty"`
		LocalIf  int          `json:"local_if,omitempty"`
		RemoteIf int          `json:"remote_if,omitempty"`
		Drop     bool         `json:"drop,omitempty"`
	}
	entries := make([]jsonEntry, 0, len(ft))
	for pair, e := range ft {
		je := jsonEntry{Src: pair.Src, Dst: pair.Dst}
		if hop, ok := e.Hop(); ok {
			je.NextHop = hop.NextHop
			je.LocalIf = hop.LocalIf
			je.RemoteIf = hop.RemoteIf
		} else {
			je.Drop = true
		}
		entries = append(entries, je)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Src != entries[j].Src {
			return entries[i].Src < entries[j].Src
		}
		return entries[i].Dst < entries[j].Dst
	})
	return json.Marshal(entries)
}

// BandwidthState maps each node to its aggregate maximum bandwidth.
type BandwidthState map[model.NodeID]float64

// State is the full routing output for one timestep.
type State struct {
	Forwarding ForwardingTable `json:"forwarding"`
	Bandwidth  BandwidthState  `json:"bandwidth"`
}

// Algorithm computes routing state from one topology snapshot. attachments is
// indexed like t.GroundStations and carries the strategy's choices for this
// instant; ifaces is the static interface descriptor list.
type Algorithm interface {
	Name() string
	ComputeState(ctx context.Context, t *topology.Topology, attachments [][]model.Attachment, ifaces []model.InterfaceDescriptor) (*State, error)
}

// Factory constructs an algorithm.
type Factory func(log logging.Logger) Algorithm

// Registry maps algorithm names to factories, wired through configuration
// rather than package-level state.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given name, replacing any previous entry.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New instantiates the named algorithm. Unknown names are a configuration
// error; the message lists the registered algorithms.
func (r *Registry) New(name string, log logging.Logger) (Algorithm, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown routing algorithm %q, valid algorithms: %s", name, strings.Join(r.Names(), ", "))
	}
	return f(log), nil
}

// Names returns the registered algorithm names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
