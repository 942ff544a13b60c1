package harness_test

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/permnet/clock"
	"github.com/sarchlab/permnet/device"
	"github.com/sarchlab/permnet/harness"
	"github.com/sarchlab/permnet/rtl"
	"github.com/sarchlab/permnet/util/valgen"
	"github.com/sarchlab/permnet/verify"
)

func newRunnerFor(dev *device.PermNet, cfg harness.Config) (*harness.Controller, *harness.Runner) {
	session := harness.NewSession("Session", dev, clock.NewBuilder())
	ctrl, err := harness.NewController(session, cfg)
	Expect(err).NotTo(HaveOccurred())

	return ctrl, harness.NewRunner(ctrl, "Permutation sweep")
}

var _ = Describe("Runner", func() {
	var (
		rng      *rand.Rand
		allSizes []int
	)

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(1))
		allSizes = []int{4, 8, 16, 32, 64, 128, 256}
	})

	It("should pass a random 256-wide case with codebook 32", func() {
		dev := device.NewBuilder().WithVectorWidth(256).Build("PermNet")
		ctrl, _ := newRunnerFor(dev, harness.DefaultConfig())

		index := valgen.RandomUint16(rng, 32, 256)
		value := valgen.RandomUint16(rng, 100, 256)
		tc, err := harness.NewTestCase("cb32", index, value, 32, harness.IdentityTransform)
		Expect(err).NotTo(HaveOccurred())

		res, err := ctrl.RunCase(context.Background(), tc)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Passed).To(BeTrue())
		Expect(res.Mode).To(Equal(uint8(4)))
		Expect(tc.Output).To(Equal(tc.Oracle))
		Expect(tc.Passed()).To(BeTrue())
	})

	DescribeTable("sweeping every codebook",
		func(segments int, pattern valgen.Pattern, resetPerCase bool) {
			dev := device.NewBuilder().
				WithVectorWidth(256).
				WithSegmentCount(segments).
				Build("PermNet")

			cfg := harness.DefaultConfig()
			cfg.SegmentCount = segments
			cfg.ResetPerCase = resetPerCase
			_, runner := newRunnerFor(dev, cfg)

			cases, err := harness.BuildSweep(harness.SweepSpec{
				VectorWidth:  256,
				Codebooks:    allSizes,
				IndexPattern: pattern,
				ValuePattern: valgen.PatternRandom,
				ValueRange:   100,
				Transform:    harness.IdentityTransform,
			}, rng)
			Expect(err).NotTo(HaveOccurred())

			report, err := runner.Run(context.Background(), cases)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Total()).To(Equal(len(allSizes)))
			Expect(report.AllPassed()).To(BeTrue())
			Expect(dev.Permutes()).To(Equal(len(allSizes)))
			Expect(dev.DroppedBeats()).To(Equal(0))
		},
		Entry("single beat, random index", 1, valgen.PatternRandom, true),
		Entry("two segments, random index", 2, valgen.PatternRandom, false),
		Entry("single beat, reversed index", 1, valgen.PatternReversed, false),
		Entry("eight segments, sequential index", 8, valgen.PatternSequential, true),
	)

	It("should apply the index transform on both sides", func() {
		dev := device.NewBuilder().WithVectorWidth(64).Build("PermNet")
		cfg := harness.Config{VectorWidth: 64, SegmentCount: 1, CodebookSize: 16}
		_, runner := newRunnerFor(dev, cfg)

		cases, err := harness.BuildSweep(harness.SweepSpec{
			VectorWidth:  64,
			Codebooks:    []int{4, 16},
			IndexPattern: valgen.PatternRandom,
			ValuePattern: valgen.PatternSequential,
			Transform:    harness.IndexTransform{Mask: 0xFFFF, Shift: 3},
		}, rng)
		Expect(err).NotTo(HaveOccurred())

		report, err := runner.Run(context.Background(), cases)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.AllPassed()).To(BeTrue())
	})

	It("should reproduce the same pair after a reset", func() {
		dev := device.NewBuilder().WithVectorWidth(256).Build("PermNet")
		ctrl, _ := newRunnerFor(dev, harness.DefaultConfig())

		index := valgen.RandomUint16(rng, 32, 256)
		value := valgen.RandomUint16(rng, 100, 256)

		first, err := harness.NewTestCase("first", index, value, 32, harness.IdentityTransform)
		Expect(err).NotTo(HaveOccurred())
		_, err = ctrl.RunCase(context.Background(), first)
		Expect(err).NotTo(HaveOccurred())

		Expect(ctrl.Reset()).To(Succeed())

		again, err := harness.NewTestCase("again", index, value, 32, harness.IdentityTransform)
		Expect(err).NotTo(HaveOccurred())
		_, err = ctrl.RunCase(context.Background(), again)
		Expect(err).NotTo(HaveOccurred())

		Expect(again.Oracle).To(Equal(first.Oracle))
		Expect(again.Output).To(Equal(first.Output))
	})

	It("should keep running after a mismatch", func() {
		dev := device.NewBuilder().
			WithVectorWidth(256).
			WithCorruptLane(7).
			Build("PermNet")
		_, runner := newRunnerFor(dev, harness.DefaultConfig())

		cases, err := harness.BuildSweep(harness.SweepSpec{
			VectorWidth:  256,
			Codebooks:    []int{4, 32, 256},
			IndexPattern: valgen.PatternRandom,
			ValuePattern: valgen.PatternSequential,
			Transform:    harness.IdentityTransform,
		}, rng)
		Expect(err).NotTo(HaveOccurred())

		report, err := runner.Run(context.Background(), cases)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Total()).To(Equal(3))
		Expect(report.Failed()).To(Equal(3))
		Expect(report.Results[0].Mismatches).To(HaveLen(1))
		Expect(report.Results[0].Mismatches[0].Pos).To(Equal(7))
	})

	It("should stop after the first mismatch when failing fast", func() {
		dev := device.NewBuilder().
			WithVectorWidth(256).
			WithCorruptLane(0).
			Build("PermNet")
		_, runner := newRunnerFor(dev, harness.DefaultConfig())
		runner.WithFailFast(true)

		cases, err := harness.BuildSweep(harness.SweepSpec{
			VectorWidth:  256,
			Codebooks:    allSizes,
			IndexPattern: valgen.PatternRandom,
			ValuePattern: valgen.PatternSequential,
			Transform:    harness.IdentityTransform,
		}, rng)
		Expect(err).NotTo(HaveOccurred())

		report, err := runner.Run(context.Background(), cases)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Total()).To(Equal(1))
	})

	It("should abort the run on a device timeout", func() {
		dev := device.NewBuilder().
			WithVectorWidth(256).
			WithStuckOutValid().
			Build("PermNet")
		cfg := harness.DefaultConfig()
		cfg.MaxPermuteTicks = 64
		_, runner := newRunnerFor(dev, cfg)

		cases, err := harness.BuildSweep(harness.SweepSpec{
			VectorWidth:  256,
			Codebooks:    []int{4, 8},
			IndexPattern: valgen.PatternSequential,
			ValuePattern: valgen.PatternSequential,
			Transform:    harness.IdentityTransform,
		}, rng)
		Expect(err).NotTo(HaveOccurred())

		report, err := runner.Run(context.Background(), cases)
		Expect(err).To(MatchError(harness.ErrDeviceTimeout))
		Expect(report.Total()).To(Equal(0))
		Expect(report.Err).To(MatchError(harness.ErrDeviceTimeout))
		Expect(report.AllPassed()).To(BeFalse())
	})

	It("should recover from a timeout on the next run", func() {
		dev := device.NewBuilder().WithVectorWidth(256).Build("PermNet")
		cfg := harness.DefaultConfig()
		cfg.MaxPermuteTicks = 4
		ctrl, runner := newRunnerFor(dev, cfg)

		slow, err := harness.BuildSweep(harness.SweepSpec{
			VectorWidth:  256,
			Codebooks:    []int{256},
			IndexPattern: valgen.PatternRandom,
			ValuePattern: valgen.PatternSequential,
			Transform:    harness.IdentityTransform,
		}, rng)
		Expect(err).NotTo(HaveOccurred())

		_, err = runner.Run(context.Background(), slow)
		Expect(err).To(MatchError(harness.ErrDeviceTimeout))
		Expect(ctrl.State()).To(Equal(harness.StatePermuteWait))
		Expect(ctrl.Ready()).To(BeFalse())

		cfg.MaxPermuteTicks = 0
		Expect(ctrl.Reconfigure(cfg)).To(Succeed())

		cases, err := harness.BuildSweep(harness.SweepSpec{
			VectorWidth:  256,
			Codebooks:    []int{4, 256},
			IndexPattern: valgen.PatternRandom,
			ValuePattern: valgen.PatternSequential,
			Transform:    harness.IdentityTransform,
		}, rng)
		Expect(err).NotTo(HaveOccurred())

		report, err := runner.Run(context.Background(), cases)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.AllPassed()).To(BeTrue())
		Expect(report.Total()).To(Equal(2))
		Expect(ctrl.Ready()).To(BeTrue())
	})

	It("should keep the vector width when reconfigured", func() {
		dev := device.NewBuilder().WithVectorWidth(256).Build("PermNet")
		ctrl, _ := newRunnerFor(dev, harness.DefaultConfig())

		cfg := harness.DefaultConfig()
		cfg.VectorWidth = 128
		Expect(ctrl.Reconfigure(cfg)).To(MatchError(harness.ErrInvalidConfig))

		cfg = harness.DefaultConfig()
		cfg.CodebookSize = 6
		Expect(ctrl.Reconfigure(cfg)).To(MatchError(harness.ErrInvalidConfig))
		Expect(ctrl.Config()).To(Equal(harness.DefaultConfig()))
	})

	It("should trace the vectors of every case", func() {
		var buf bytes.Buffer
		DeferCleanup(slog.SetDefault, slog.Default())
		slog.SetDefault(slog.New(slog.NewJSONHandler(&buf,
			&slog.HandlerOptions{Level: rtl.LevelTrace})))

		dev := device.NewBuilder().WithVectorWidth(16).Build("PermNet")
		cfg := harness.Config{VectorWidth: 16, SegmentCount: 1, CodebookSize: 4}
		ctrl, _ := newRunnerFor(dev, cfg)

		tc, err := harness.NewTestCase("known",
			valgen.SequentialUint16(4, 16, true),
			valgen.SequentialUint16(16, 16, false),
			4, harness.IdentityTransform)
		Expect(err).NotTo(HaveOccurred())

		_, err = ctrl.RunCase(context.Background(), tc)
		Expect(err).NotTo(HaveOccurred())

		Expect(buf.String()).To(ContainSubstring(`"Behavior":"Vectors"`))
		Expect(buf.String()).To(ContainSubstring(`"Index":[3,2,1,0,3,2,1,0`))
		Expect(buf.String()).To(ContainSubstring(`"Output":[3,2,1,0,7,6,5,4`))
	})

	It("should reject cases of the wrong width", func() {
		dev := device.NewBuilder().WithVectorWidth(256).Build("PermNet")
		ctrl, _ := newRunnerFor(dev, harness.DefaultConfig())

		tc, err := harness.NewTestCase("short",
			make([]uint16, 16), make([]uint16, 16), 4, harness.IdentityTransform)
		Expect(err).NotTo(HaveOccurred())

		_, err = ctrl.RunCase(context.Background(), tc)
		Expect(err).To(MatchError(harness.ErrVectorWidth))
	})
})

var _ = Describe("TestCase", func() {
	It("should compute the oracle up front", func() {
		tc, err := harness.NewTestCase("known",
			[]uint16{0, 3, 1, 2, 2, 0, 3, 1},
			[]uint16{10, 11, 12, 13, 20, 21, 22, 23},
			4, harness.IdentityTransform)
		Expect(err).NotTo(HaveOccurred())
		Expect(tc.Oracle).To(Equal([]uint16{10, 13, 11, 12, 22, 20, 23, 21}))
		Expect(tc.Output).To(BeNil())
		Expect(tc.Passed()).To(BeFalse())
	})

	It("should reject indices outside the codebook", func() {
		_, err := harness.NewTestCase("bad",
			[]uint16{0, 4, 0, 0}, []uint16{1, 2, 3, 4}, 4, harness.IdentityTransform)
		Expect(err).To(MatchError(verify.ErrIndexOutOfRange))
	})

	It("should name sweep cases after their codebook", func() {
		cases, err := harness.BuildSweep(harness.SweepSpec{
			VectorWidth:  16,
			Codebooks:    []int{4, 8},
			IndexPattern: valgen.PatternSequential,
			ValuePattern: valgen.PatternSequential,
			Transform:    harness.IdentityTransform,
			Repeat:       2,
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cases).To(HaveLen(4))
		Expect(cases[0].Name).To(Equal("cb4#0"))
		Expect(cases[3].Name).To(Equal("cb8#1"))
		Expect(cases[2].Index).To(Equal([]uint16{0, 1, 2, 3, 4, 5, 6, 7, 0, 1, 2, 3, 4, 5, 6, 7}))
	})

	It("should reject sweeps with an invalid codebook", func() {
		_, err := harness.BuildSweep(harness.SweepSpec{
			VectorWidth: 16,
			Codebooks:   []int{12},
		}, nil)
		Expect(err).To(MatchError(harness.ErrInvalidConfig))
	})
})
