package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarchlab/permnet/codec"
	"github.com/sarchlab/permnet/rtl"
	"github.com/sarchlab/permnet/verify"
)

// maxReportedMismatches caps the mismatches kept per failing case.
const maxReportedMismatches = 16

// RunCase drives one test case through the whole handshake and compares the
// decoded output with the oracle. A mismatch is not an error. The controller
// is reset first unless it is ready for a new case, so a case that follows an
// aborted one starts from a clean device.
func (c *Controller) RunCase(ctx context.Context, tc *TestCase) (verify.CaseResult, error) {
	res := verify.CaseResult{Name: tc.Name, CodebookSize: tc.CodebookSize}

	if len(tc.Index) != c.cfg.VectorWidth || len(tc.Value) != c.cfg.VectorWidth {
		return res, fmt.Errorf("%w: test case %s has %d/%d elements, expected %d",
			ErrVectorWidth, tc.Name, len(tc.Index), len(tc.Value), c.cfg.VectorWidth)
	}

	res.Mode, _ = rtl.ModeForCodebook(tc.CodebookSize)

	idxWords, err := codec.Pack(tc.Index)
	if err != nil {
		return res, err
	}

	valWords, err := codec.Pack(tc.Value)
	if err != nil {
		return res, err
	}

	if c.cfg.ResetPerCase || !c.Ready() {
		if err := c.Reset(); err != nil {
			return res, err
		}
	}

	if err := c.LoadIndex(idxWords); err != nil {
		return res, err
	}

	if err := c.LoadValue(valWords); err != nil {
		return res, err
	}

	outWords, ticks, err := c.Permute(ctx, tc.CodebookSize, tc.Transform)
	res.Cycles = ticks
	if err != nil {
		return res, err
	}

	tc.Output = codec.Unpack(outWords)
	rtl.Trace("Permute",
		"Behavior", "Vectors",
		"Case", tc.Name,
		"Index", tc.Index,
		"Value", tc.Value,
		"Oracle", tc.Oracle,
		"Output", tc.Output,
	)

	if err := c.Finish(); err != nil {
		return res, err
	}

	res.Passed = verify.Compare(tc.Oracle, tc.Output)
	if res.Passed {
		slog.Info("Permute Pass",
			"Case", tc.Name,
			"Config", res.Label(),
			"Cycles", ticks,
		)
	} else {
		res.Mismatches = verify.Mismatches(tc.Oracle, tc.Output, maxReportedMismatches)
		slog.Warn("Permute Error: gather result mismatch",
			"Case", tc.Name,
			"Config", res.Label(),
			"Mismatches", len(res.Mismatches),
			"First", res.Mismatches[0],
		)
	}

	return res, nil
}

// Runner executes test cases one after another on a controller.
type Runner struct {
	ctrl     *Controller
	title    string
	failFast bool
}

// NewRunner creates a runner whose report carries title.
func NewRunner(ctrl *Controller, title string) *Runner {
	return &Runner{ctrl: ctrl, title: title}
}

// WithFailFast stops the run after the first mismatching case.
func (r *Runner) WithFailFast(failFast bool) *Runner {
	r.failFast = failFast
	return r
}

// Run executes cases in order. Mismatches are recorded and the run goes on;
// a timeout, a protocol error or cancellation ends it. The report is returned
// in every case and carries the error that ended the run.
func (r *Runner) Run(ctx context.Context, cases []*TestCase) (*verify.Report, error) {
	report := verify.NewReport(r.title)

	for _, tc := range cases {
		res, err := r.ctrl.RunCase(ctx, tc)
		if err != nil {
			report.Err = err
			slog.Error("Run aborted",
				"Case", tc.Name,
				"Error", err,
			)
			return report, err
		}

		report.Add(res)

		if !res.Passed && r.failFast {
			break
		}
	}

	return report, nil
}
