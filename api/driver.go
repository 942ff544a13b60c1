// Package api defines the driver API that runs codebook sweeps on a
// permutation network platform.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/sarchlab/permnet/config"
	"github.com/sarchlab/permnet/harness"
	"github.com/sarchlab/permnet/verify"
)

// ErrShapeMismatch is returned when a sweep does not fit the registered
// platform.
var ErrShapeMismatch = errors.New("api: sweep does not match platform")

// Driver provides the interface to run sweeps on a platform.
type Driver interface {
	// RegisterPlatform registers the platform the driver runs sweeps on.
	RegisterPlatform(p *config.Platform)

	// Enqueue generates the test cases of a sweep and adds them to the
	// driver. Cases are generated from the sweep's seed, so the same sweep
	// always produces the same cases. The sweep must have the shape and the
	// device faults of the registered platform.
	Enqueue(s *config.Sweep) error

	// Run runs all the enqueued cases in order and returns the report. Each
	// sweep runs with its own tick bound and reset policy.
	Run(ctx context.Context) (*verify.Report, error)
}

type sweepTask struct {
	sweep *config.Sweep
	cases []*harness.TestCase
}

type driverImpl struct {
	name   string
	repeat int

	platform *config.Platform
	tasks    []*sweepTask
}

func (d *driverImpl) RegisterPlatform(p *config.Platform) {
	d.platform = p
}

func (d *driverImpl) Enqueue(s *config.Sweep) error {
	d.mustHavePlatform()

	if err := s.Validate(); err != nil {
		return err
	}

	dev := d.platform.Device
	if s.VectorWidth != dev.VectorWidth() || s.SegmentCount != dev.SegmentCount() {
		return fmt.Errorf("%w: sweep is %d elements in %d segments, %s",
			ErrShapeMismatch, s.VectorWidth, s.SegmentCount, d.platform)
	}

	if s.Device != d.platform.Faults {
		return fmt.Errorf("%w: sweep device %+v, %s was built with %+v",
			ErrShapeMismatch, s.Device, d.platform, d.platform.Faults)
	}

	spec := s.SweepSpec()
	spec.Repeat = d.repeat

	cases, err := harness.BuildSweep(spec, rand.New(rand.NewSource(s.Seed)))
	if err != nil {
		return err
	}

	d.tasks = append(d.tasks, &sweepTask{sweep: s, cases: cases})

	slog.Info("Sweep enqueued",
		"Driver", d.name,
		"Cases", len(cases),
		"Modes", modeList(s),
		"Seed", s.Seed,
	)

	return nil
}

func (d *driverImpl) Run(ctx context.Context) (*verify.Report, error) {
	d.mustHavePlatform()

	report := verify.NewReport(d.platform.Name + " codebook sweep")

	for len(d.tasks) > 0 {
		task := d.tasks[0]
		d.tasks = d.tasks[1:]

		runner, err := d.platform.Runner(task.sweep)
		if err != nil {
			report.Err = err
			d.tasks = nil
			return report, err
		}

		r, err := runner.Run(ctx, task.cases)
		for _, res := range r.Results {
			report.Add(res)
		}

		if err != nil {
			report.Err = err
			d.tasks = nil
			return report, err
		}

		if task.sweep.FailFast && !r.AllPassed() {
			d.tasks = nil
			break
		}
	}

	slog.Info("Sweep done",
		"Driver", d.name,
		"Passed", report.Passed(),
		"Total", report.Total(),
	)

	return report, nil
}

func modeList(s *config.Sweep) []int {
	modes := make([]int, 0, len(s.Codebooks))
	for _, m := range s.Modes() {
		modes = append(modes, int(m))
	}

	return modes
}

func (d *driverImpl) mustHavePlatform() {
	if d.platform == nil {
		panic("no platform registered to driver " + d.name)
	}
}
