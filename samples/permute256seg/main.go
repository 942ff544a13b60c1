package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/permnet/api"
	"github.com/sarchlab/permnet/config"
)

func main() {
	engine := sim.NewSerialEngine()

	sweep := config.Default()
	sweep.SegmentCount = 2
	sweep.Codebooks = []int{32}
	sweep.IndexPattern = "random"
	sweep.ValuePattern = "random"
	sweep.ValueRange = 100
	sweep.ResetPerCase = true

	platform, err := config.NewPlatformBuilder().
		WithEngine(engine).
		WithFreq(1*sim.GHz).
		Build("PermNet256Seg", sweep)
	if err != nil {
		panic(err)
	}

	driver := api.DriverBuilder{}.
		WithRepeat(4).
		Build("Driver")
	driver.RegisterPlatform(platform)

	if err := driver.Enqueue(sweep); err != nil {
		panic(err)
	}

	report, err := driver.Run(context.Background())
	report.WriteReport(os.Stdout)
	if err != nil {
		fmt.Println("Run aborted:", err)
	}

	atexit.Exit(0)
}
