package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/permnet/api"
	"github.com/sarchlab/permnet/config"
	"github.com/sarchlab/permnet/rtl"
)

// Each beat carries 256 elements, so a 4096-element vector takes 16 beats
// per channel.
const (
	vectorWidth = 4096
	beats       = 16
)

func codebookSweep(driver api.Driver, sweep *config.Sweep) {
	if err := driver.Enqueue(sweep); err != nil {
		panic(err)
	}

	report, err := driver.Run(context.Background())
	report.WriteReport(os.Stdout)
	if err != nil {
		fmt.Println("Run aborted:", err)
	}
}

func main() {
	f, err := os.Create("permute4096.json.log")
	if err != nil {
		panic(err)
	}
	atexit.Register(func() { f.Close() })

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: rtl.LevelTrace,
	})
	slog.SetDefault(slog.New(handler))

	monitor := monitoring.NewMonitor()

	engine := sim.NewSerialEngine()
	monitor.RegisterEngine(engine)

	sweep := config.Default()
	sweep.VectorWidth = vectorWidth
	sweep.SegmentCount = beats
	sweep.Codebooks = nil
	for cb := 4; cb <= vectorWidth; cb <<= 1 {
		sweep.Codebooks = append(sweep.Codebooks, cb)
	}

	platform, err := config.NewPlatformBuilder().
		WithEngine(engine).
		WithFreq(1*sim.GHz).
		Build("PermNet4096", sweep)
	if err != nil {
		panic(err)
	}

	driver := api.DriverBuilder{}.Build("Driver")
	driver.RegisterPlatform(platform)

	monitor.StartServer()

	codebookSweep(driver, sweep)

	atexit.Exit(0)
}
