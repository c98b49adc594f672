package attachment

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/position"
	"github.com/signalsfoundry/leo-routing-sim/topology"
)

// Strategy decides which satellites each ground station attaches to at one
// instant. The result is indexed like t.GroundStations: one list per station,
// empty or nil when the station is unattached. List order matters downstream;
// routing algorithms break ties by preferring earlier attachments.
type Strategy interface {
	Name() string
	SelectAttachments(ctx context.Context, t *topology.Topology, at time.Time) ([][]model.Attachment, error)
}

// Factory constructs a strategy bound to a position provider.
type Factory func(p position.Provider, log logging.Logger) Strategy

// Registry maps strategy names to factories. Registries are explicit values
// wired through configuration; there is no global registry.
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

// New instantiates the named strategy. Unknown names are a configuration
// error; the message lists the registered strategies.
func (r *Registry) New(name string, p position.Provider, log logging.Logger) (Strategy, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown attachment strategy %q, valid strategies: %s", name, strings.Join(r.Names(), ", "))
	}
	return f(p, log), nil
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
