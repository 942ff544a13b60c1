package harness

import (
	"github.com/sarchlab/permnet/clock"
	"github.com/sarchlab/permnet/rtl"
)

// Session exclusively owns a device, the pins driven into it, the outputs it
// last produced and the clock that advances it.
type Session struct {
	name string
	dut  rtl.Device
	clk  *clock.Clock

	in  rtl.Inputs
	out rtl.Outputs
}

// NewSession creates a session around dut with a clock built by cb.
func NewSession(name string, dut rtl.Device, cb clock.Builder) *Session {
	if dut == nil {
		panic("session needs a device")
	}

	s := &Session{
		name: name,
		dut:  dut,
	}
	s.clk = cb.Build(name+".Clock", s)
	s.in.Clock = s.clk.Level()

	return s
}

// Name returns the name of the session.
func (s *Session) Name() string {
	return s.name
}

// Eval drives the new clock level and lets the device settle.
func (s *Session) Eval(clk bool) {
	s.in.Clock = clk
	s.out = s.dut.Eval(s.in)
}

// Tick advances the device by one clock period.
func (s *Session) Tick() error {
	return s.clk.Tick()
}

// Clock returns the session clock.
func (s *Session) Clock() *clock.Clock {
	return s.clk
}

// Inputs returns a copy of the pins driven into the device.
func (s *Session) Inputs() rtl.Inputs {
	return s.in
}

// Outputs returns the outputs of the last evaluation.
func (s *Session) Outputs() rtl.Outputs {
	return s.out
}

func (s *Session) drive(f func(in *rtl.Inputs)) {
	f(&s.in)
}
