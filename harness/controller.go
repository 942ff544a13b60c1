package harness

import (
	"context"
	"fmt"

	"github.com/sarchlab/permnet/rtl"
)

// State is the protocol state of a controller.
type State int

const (
	StateIdle State = iota
	StateReset
	StateLoadIndex
	StateLoadValue
	StatePermuteWait
	StatePermuteDone
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateReset:
		return "RESET"
	case StateLoadIndex:
		return "LOAD_INDEX"
	case StateLoadValue:
		return "LOAD_VALUE"
	case StatePermuteWait:
		return "PERMUTE_WAIT"
	case StatePermuteDone:
		return "PERMUTE_DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Controller runs the handshake on a session.
type Controller struct {
	session *Session
	cfg     Config

	state   State
	settled bool
}

// NewController creates a controller. The config must be valid.
func NewController(s *Session, cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Controller{
		session: s,
		cfg:     cfg,
		state:   StateIdle,
	}, nil
}

// State returns the current protocol state.
func (c *Controller) State() State {
	return c.state
}

// Config returns the protocol configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// Reconfigure replaces the protocol configuration. The vector width and the
// segment count are fixed by the device and cannot change.
func (c *Controller) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.VectorWidth != c.cfg.VectorWidth || cfg.SegmentCount != c.cfg.SegmentCount {
		return fmt.Errorf("%w: cannot change %d elements in %d segments to %d in %d",
			ErrInvalidConfig, c.cfg.VectorWidth, c.cfg.SegmentCount,
			cfg.VectorWidth, cfg.SegmentCount)
	}

	c.cfg = cfg

	return nil
}

// Ready reports whether a new case can be loaded without a reset. That is
// right after a reset, or once the previous case has settled.
func (c *Controller) Ready() bool {
	switch c.state {
	case StateReset:
		return true
	case StatePermuteDone:
		return c.settled
	default:
		return false
	}
}

// Session returns the session the controller drives.
func (c *Controller) Session() *Session {
	return c.session
}

func (c *Controller) enter(s State) {
	c.state = s
	rtl.Trace("Handshake",
		"Session", c.session.Name(),
		"State", s.String(),
		"Time", c.session.Clock().Time(),
	)
}

func (c *Controller) mustBeIn(op string, allowed ...State) error {
	for _, s := range allowed {
		if c.state != s {
			continue
		}

		if s == StatePermuteDone && !c.settled {
			break
		}

		return nil
	}

	return &ProtocolError{Op: op, State: c.state}
}

// Reset asserts reset for one tick and clears every control pin. It is
// allowed in any state.
func (c *Controller) Reset() error {
	c.session.drive(func(in *rtl.Inputs) {
		in.Reset = true
	})

	if err := c.session.Tick(); err != nil {
		return err
	}

	c.session.drive(func(in *rtl.Inputs) {
		in.Reset = false
		in.Mode = 0
		in.InValid = false
		in.SelIdxVal = rtl.IndexChannel
		in.Permute = false
		in.OutReady = false
		in.Addr = 0
		in.InData = nil
	})

	c.settled = false
	c.enter(StateReset)

	return nil
}

// LoadIndex writes the packed index vector, one addressed beat per segment.
func (c *Controller) LoadIndex(words []uint64) error {
	if err := c.mustBeIn("LoadIndex", StateReset, StatePermuteDone); err != nil {
		return err
	}

	if err := c.load(rtl.IndexChannel, words); err != nil {
		return err
	}

	c.settled = false
	c.enter(StateLoadIndex)

	return nil
}

// LoadValue writes the packed value vector, one addressed beat per segment.
func (c *Controller) LoadValue(words []uint64) error {
	if err := c.mustBeIn("LoadValue", StateLoadIndex); err != nil {
		return err
	}

	if err := c.load(rtl.ValueChannel, words); err != nil {
		return err
	}

	c.enter(StateLoadValue)

	return nil
}

func (c *Controller) load(ch rtl.Channel, words []uint64) error {
	if len(words) != c.cfg.Words() {
		return fmt.Errorf("%w: %s channel expects %d words, got %d",
			ErrVectorWidth, ch.Name(), c.cfg.Words(), len(words))
	}

	beatWords := c.cfg.BeatWords()
	for seg := 0; seg < c.cfg.SegmentCount; seg++ {
		beat := words[seg*beatWords : (seg+1)*beatWords]
		c.session.drive(func(in *rtl.Inputs) {
			in.InValid = true
			in.SelIdxVal = ch
			in.Addr = uint8(seg)
			in.InData = beat
		})

		if err := c.session.Tick(); err != nil {
			return err
		}
	}

	return nil
}

// Permute requests a permutation with the given codebook and index transform
// and waits for OutValid. It returns a copy of the output words and the
// number of ticks waited. The request is held for the first tick only.
func (c *Controller) Permute(
	ctx context.Context,
	codebookSize int,
	xf IndexTransform,
) ([]uint64, int, error) {
	if err := c.mustBeIn("Permute", StateLoadValue); err != nil {
		return nil, 0, err
	}

	if err := checkCodebook(codebookSize, c.cfg.VectorWidth); err != nil {
		return nil, 0, err
	}

	mode, _ := rtl.ModeForCodebook(codebookSize)

	c.session.drive(func(in *rtl.Inputs) {
		in.InValid = false
		in.InData = nil
		in.Addr = 0
		in.Permute = true
		in.Mode = mode
		in.MaskIdxBit = xf.Mask
		in.RshiftIdxBit = xf.Shift
		in.OutReady = true
	})
	c.enter(StatePermuteWait)

	limit := c.cfg.maxPermuteTicks()
	ticks := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, ticks, err
		}

		if ticks >= limit {
			return nil, ticks, &TimeoutError{
				Ticks:        ticks,
				CodebookSize: codebookSize,
				Time:         c.session.Clock().Time(),
			}
		}

		if err := c.session.Tick(); err != nil {
			return nil, ticks, err
		}
		ticks++

		if ticks == 1 {
			c.session.drive(func(in *rtl.Inputs) {
				in.Permute = false
			})
		}

		if c.session.Outputs().OutValid {
			break
		}
	}

	out := c.session.Outputs().OutData
	if len(out) != c.cfg.Words() {
		return nil, ticks, fmt.Errorf("%w: output bus has %d words, expected %d",
			ErrVectorWidth, len(out), c.cfg.Words())
	}

	words := append([]uint64(nil), out...)
	c.enter(StatePermuteDone)

	return words, ticks, nil
}

// Finish lets the device settle for one tick after the result was read.
func (c *Controller) Finish() error {
	if c.state != StatePermuteDone || c.settled {
		return &ProtocolError{Op: "Finish", State: c.state}
	}

	if err := c.session.Tick(); err != nil {
		return err
	}

	c.settled = true

	return nil
}
