package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/permnet/api"
	"github.com/sarchlab/permnet/config"
	"github.com/sarchlab/permnet/rtl"
)

// Exit statuses.
const (
	exitOK       = 0
	exitMismatch = 1
	exitError    = 2
)

type options struct {
	configPath     string
	width          int
	segments       int
	codebooks      string
	pattern        string
	seed           int64
	repeat         int
	maxTicks       int
	resetPerCase   bool
	failOnMismatch bool
	logPath        string
	reportPath     string
	monitor        bool
}

func parseFlags(args []string) (*flag.FlagSet, *options, error) {
	o := &options{}

	fs := flag.NewFlagSet("verify-permute", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "YAML sweep configuration")
	fs.IntVar(&o.width, "width", 0, "vector width in 16-bit elements")
	fs.IntVar(&o.segments, "segments", 0, "beats per channel load")
	fs.StringVar(&o.codebooks, "codebooks", "", "comma separated codebook sizes")
	fs.StringVar(&o.pattern, "pattern", "", "index pattern: random, sequential or reversed")
	fs.Int64Var(&o.seed, "seed", 0, "seed of the random patterns")
	fs.IntVar(&o.repeat, "repeat", 1, "cases per codebook")
	fs.IntVar(&o.maxTicks, "max-ticks", 0, "ticks to wait for OutValid")
	fs.BoolVar(&o.resetPerCase, "reset-per-case", false, "assert reset before every case")
	fs.BoolVar(&o.failOnMismatch, "fail-on-mismatch", false, "exit with status 1 if any case fails")
	fs.StringVar(&o.logPath, "log", "", "write a JSON trace log to this file")
	fs.StringVar(&o.reportPath, "report", "", "save the report to this file")
	fs.BoolVar(&o.monitor, "monitor", false, "serve the akita monitor while running")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return fs, o, nil
}

func parseCodebooks(s string) ([]int, error) {
	var sizes []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid codebook %q: %w", f, err)
		}

		sizes = append(sizes, n)
	}

	return sizes, nil
}

// loadSweep reads the config file, if any, and applies only the flags that
// were given on the command line.
func (o *options) loadSweep(fs *flag.FlagSet) (*config.Sweep, error) {
	sweep := config.Default()
	if o.configPath != "" {
		s, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		sweep = s
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			sweep.VectorWidth = o.width
		case "segments":
			sweep.SegmentCount = o.segments
		case "codebooks":
			sweep.Codebooks, err = parseCodebooks(o.codebooks)
		case "pattern":
			sweep.IndexPattern = o.pattern
		case "seed":
			sweep.Seed = o.seed
		case "max-ticks":
			sweep.MaxPermuteTicks = o.maxTicks
		case "reset-per-case":
			sweep.ResetPerCase = o.resetPerCase
		}
	})
	if err != nil {
		return nil, err
	}

	if err := sweep.Validate(); err != nil {
		return nil, err
	}

	return sweep, nil
}

func (o *options) setupLogging() (func(), error) {
	if o.logPath == "" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
		slog.SetDefault(slog.New(handler))
		return func() {}, nil
	}

	f, err := os.Create(o.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: rtl.LevelTrace,
	})
	slog.SetDefault(slog.New(handler))

	return func() { f.Close() }, nil
}

func run(args []string, stdout io.Writer) int {
	fs, o, err := parseFlags(args)
	if err != nil {
		return exitError
	}

	closeLog, err := o.setupLogging()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}
	defer closeLog()

	sweep, err := o.loadSweep(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid sweep: %v\n", err)
		return exitError
	}

	platform, err := config.NewPlatformBuilder().Build("PermNetBench", sweep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build platform: %v\n", err)
		return exitError
	}

	if o.monitor {
		monitor := monitoring.NewMonitor()
		monitor.RegisterEngine(platform.Engine)
		monitor.StartServer()
	}

	driver := api.DriverBuilder{}.
		WithRepeat(o.repeat).
		Build("Driver")
	driver.RegisterPlatform(platform)

	if err := driver.Enqueue(sweep); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate cases: %v\n", err)
		return exitError
	}

	report, runErr := driver.Run(context.Background())
	report.WriteReport(stdout)

	if o.reportPath != "" {
		if err := report.SaveReportToFile(o.reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save report: %v\n", err)
		} else {
			fmt.Fprintf(stdout, "Report saved to %s\n", o.reportPath)
		}
	}

	switch {
	case runErr != nil:
		return exitError
	case o.failOnMismatch && !report.AllPassed():
		return exitMismatch
	default:
		return exitOK
	}
}

func main() {
	atexit.Exit(run(os.Args[1:], os.Stdout))
}
