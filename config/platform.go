package config

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/permnet/clock"
	"github.com/sarchlab/permnet/device"
	"github.com/sarchlab/permnet/harness"
)

// Platform is a network wired to a clocked harness.
type Platform struct {
	Name       string
	Faults     DeviceFaults
	Engine     sim.Engine
	Device     *device.PermNet
	Session    *harness.Session
	Controller *harness.Controller
}

// String returns a short description of the platform.
func (p *Platform) String() string {
	return fmt.Sprintf("%s(%d elements, %d segments)",
		p.Name, p.Device.VectorWidth(), p.Device.SegmentCount())
}

// Runner configures the platform's controller for the sweep and returns a
// runner of it. The sweep must have the shape of the platform.
func (p *Platform) Runner(s *Sweep) (*harness.Runner, error) {
	if err := p.Controller.Reconfigure(s.HarnessConfig(s.Codebooks[0])); err != nil {
		return nil, err
	}

	r := harness.NewRunner(p.Controller, p.Name+" codebook sweep").
		WithFailFast(s.FailFast)

	return r, nil
}

// PlatformBuilder can build platforms.
type PlatformBuilder struct {
	engine sim.Engine
	freq   sim.Freq
}

// NewPlatformBuilder returns a builder that clocks the harness at 1 GHz.
func NewPlatformBuilder() PlatformBuilder {
	return PlatformBuilder{freq: 1 * sim.GHz}
}

// WithEngine sets the engine that drives the clock.
func (b PlatformBuilder) WithEngine(engine sim.Engine) PlatformBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the clock.
func (b PlatformBuilder) WithFreq(freq sim.Freq) PlatformBuilder {
	b.freq = freq
	return b
}

// Build creates a platform for the sweep. The controller is configured with
// the first codebook of the sweep.
func (b PlatformBuilder) Build(name string, s *Sweep) (*Platform, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	dev := DeviceBuilder(s).Build(name + ".PermNet")

	cb := clock.NewBuilder().
		WithEngine(engine).
		WithFreq(b.freq)
	session := harness.NewSession(name+".Session", dev, cb)

	ctrl, err := harness.NewController(session, s.HarnessConfig(s.Codebooks[0]))
	if err != nil {
		return nil, err
	}

	return &Platform{
		Name:       name,
		Faults:     s.Device,
		Engine:     engine,
		Device:     dev,
		Session:    session,
		Controller: ctrl,
	}, nil
}
