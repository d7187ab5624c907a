package meter

import (
	"fmt"
	"slices"

	"github.com/berfenger/smappee2mqtt/internal/core/port"
)

// Identity holds the static values published by every meter on creation.
type Identity struct {
	ServiceBase    string
	ProcessName    string
	ProcessVersion string
	// Connection describes where the telemetry comes from
	Connection string
}

// ServiceName returns the service name of a meter with the given device instance.
func (id Identity) ServiceName(deviceInstance int) string {
	return fmt.Sprintf("%s.smappee_%02d", id.ServiceBase, deviceInstance)
}

// Registry owns the virtual meters, keyed by group index. It is not safe for
// concurrent use; the owning actor serializes access.
type Registry struct {
	identity     Identity
	publisher    port.QuantityPublisher
	nextInstance int
	byIndex      map[int]*Meter
	ordered      []*Meter
	onCreate     func(*Meter)
}

func NewRegistry(identity Identity, firstInstance int, publisher port.QuantityPublisher) *Registry {
	return &Registry{
		identity:     identity,
		publisher:    publisher,
		nextInstance: firstInstance,
		byIndex:      make(map[int]*Meter),
	}
}

// OnCreate registers fn to be called for every new meter, before its identity
// paths are published.
func (r *Registry) OnCreate(fn func(*Meter)) {
	r.onCreate = fn
}

// Get returns the meter of groupIndex, creating it with the next device
// instance on first use.
func (r *Registry) Get(groupIndex int) *Meter {
	if m, ok := r.byIndex[groupIndex]; ok {
		return m
	}

	instance := r.nextInstance
	r.nextInstance++

	m := newMeter(groupIndex, instance, r.identity.ServiceName(instance), r.publisher)
	r.byIndex[groupIndex] = m
	r.ordered = append(r.ordered, m)

	if r.onCreate != nil {
		r.onCreate(m)
	}

	m.SetQuantity(PathProcessName, r.identity.ProcessName)
	m.SetQuantity(PathProcessVersion, r.identity.ProcessVersion)
	m.SetQuantity(PathConnection, r.identity.Connection)
	m.SetQuantity(PathDeviceInstance, instance)
	m.SetQuantity(PathProductId, ProductId)
	m.SetQuantity(PathProductName, ProductName)
	m.SetQuantity(PathConnected, 1)
	return m
}

// All returns every meter in creation order.
func (r *Registry) All() []*Meter {
	return slices.Clone(r.ordered)
}

func (r *Registry) Len() int {
	return len(r.ordered)
}
