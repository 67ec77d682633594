package control

import (
	"context"
	"sync"

	"go.viam.com/kestrel/motors"
)

// A DemandSource supplies the demand for each cycle.
type DemandSource interface {
	Demand(ctx context.Context) motors.ControlDemand
}

// DemandFunc adapts a function to a DemandSource.
type DemandFunc func(ctx context.Context) motors.ControlDemand

// Demand calls f.
func (f DemandFunc) Demand(ctx context.Context) motors.ControlDemand {
	return f(ctx)
}

// Constant holds one demand until it is replaced. The zero value is zero demand.
type Constant struct {
	mu     sync.Mutex
	demand motors.ControlDemand
}

// NewConstant returns a Constant holding demand.
func NewConstant(demand motors.ControlDemand) *Constant {
	return &Constant{demand: demand}
}

// Demand returns the held demand.
func (c *Constant) Demand(ctx context.Context) motors.ControlDemand {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.demand
}

// Set replaces the held demand.
func (c *Constant) Set(demand motors.ControlDemand) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.demand = demand
}
