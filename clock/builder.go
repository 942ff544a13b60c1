package clock

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Builder can create clocks.
type Builder struct {
	engine       sim.Engine
	freq         sim.Freq
	initialLevel bool
}

// NewBuilder returns a builder for a 1 GHz clock that starts high.
func NewBuilder() Builder {
	return Builder{
		freq:         1 * sim.GHz,
		initialLevel: true,
	}
}

// WithEngine sets the engine. A serial engine is created if none is given.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the clock.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithInitialLevel sets the clock level before the first edge.
func (b Builder) WithInitialLevel(level bool) Builder {
	b.initialLevel = level
	return b
}

// Build creates a clock that evaluates target on every edge.
func (b Builder) Build(name string, target Evaluator) *Clock {
	if target == nil {
		panic("clock needs a target")
	}

	if b.freq <= 0 {
		panic("clock frequency must be positive")
	}

	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	return &Clock{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		engine:       engine,
		freq:         b.freq,
		target:       target,
		level:        b.initialLevel,
	}
}
