// Package clock drives the simulated device one clock period at a time.
//
// Each Tick schedules the two half-period edges of one clock period on an
// akita engine and runs the engine until both have been handled. Handling an
// edge toggles the clock level, advances the time counter by one unit and
// lets the target evaluate. Nothing else advances simulated time.
package clock

import (
	"errors"

	"github.com/sarchlab/akita/v4/sim"
)

// HookPosEdge marks a clock edge. The hook item is an Edge.
var HookPosEdge = &sim.HookPos{Name: "Clock Edge"}

// ErrReentrantTick is returned when Tick is called while an edge is being
// evaluated.
var ErrReentrantTick = errors.New("clock: tick called during edge evaluation")

// An Evaluator settles its state after the clock changes to level clk.
type Evaluator interface {
	Eval(clk bool)
}

// Edge describes one half-period edge.
type Edge struct {
	Level bool
	Time  uint64
}

// Rising reports whether the edge is a low-to-high transition.
func (e Edge) Rising() bool {
	return e.Level
}

type edgeEvent struct {
	*sim.EventBase
	level bool
}

// Clock owns the clock line and the simulated time counter.
type Clock struct {
	*sim.HookableBase

	name   string
	engine sim.Engine
	freq   sim.Freq
	target Evaluator

	level   bool
	units   uint64
	ticking bool
}

// Name returns the name of the clock.
func (c *Clock) Name() string {
	return c.name
}

// Engine returns the engine the edges are scheduled on.
func (c *Clock) Engine() sim.Engine {
	return c.engine
}

// Level returns the current clock level.
func (c *Clock) Level() bool {
	return c.level
}

// Time returns the number of half edges so far.
func (c *Clock) Time() uint64 {
	return c.units
}

// Cycles returns the number of full clock periods so far.
func (c *Clock) Cycles() uint64 {
	return c.units / 2
}

// Now returns the engine time.
func (c *Clock) Now() sim.VTimeInSec {
	return c.engine.CurrentTime()
}

// Tick advances the clock by one full period.
func (c *Clock) Tick() error {
	if c.ticking {
		return ErrReentrantTick
	}

	c.ticking = true
	defer func() { c.ticking = false }()

	now := c.engine.CurrentTime()
	half := c.freq.Period() / 2

	c.engine.Schedule(edgeEvent{
		EventBase: sim.NewEventBase(now+half, c),
		level:     !c.level,
	})
	c.engine.Schedule(edgeEvent{
		EventBase: sim.NewEventBase(now+2*half, c),
		level:     c.level,
	})

	return c.engine.Run()
}

// Handle toggles the clock for one scheduled edge.
func (c *Clock) Handle(e sim.Event) error {
	evt, ok := e.(edgeEvent)
	if !ok {
		panic("clock cannot handle this event")
	}

	c.level = !c.level
	if c.level != evt.level {
		panic("clock edge out of order")
	}

	c.units++
	c.target.Eval(c.level)

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosEdge,
		Item:   Edge{Level: c.level, Time: c.units},
	})

	return nil
}
