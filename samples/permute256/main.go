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

// permute256 runs random 256-element vectors with codebook 32 in a single
// beat per channel.
func permute256(driver api.Driver, sweep *config.Sweep) {
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
	engine := sim.NewSerialEngine()

	sweep := config.Default()
	sweep.Codebooks = []int{32}
	sweep.IndexPattern = "random"
	sweep.ValuePattern = "random"
	sweep.ValueRange = 100

	platform, err := config.NewPlatformBuilder().
		WithEngine(engine).
		WithFreq(1*sim.GHz).
		Build("PermNet256", sweep)
	if err != nil {
		panic(err)
	}

	driver := api.DriverBuilder{}.
		WithRepeat(4).
		Build("Driver")
	driver.RegisterPlatform(platform)

	permute256(driver, sweep)

	atexit.Exit(0)
}
