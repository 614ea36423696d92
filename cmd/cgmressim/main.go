// Command cgmressim wires a worked OCP, a loaded configuration, and a
// forward-Euler plant loop into a runnable closed-loop trajectory,
// written to CSV. It is not part of the core's import graph: the core
// never depends on this package.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nmpc-go/cgmres"
	"github.com/nmpc-go/cgmres/config"
	"github.com/nmpc-go/cgmres/horizon"
	"github.com/nmpc-go/cgmres/ocp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cgmressim:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to a YAML solver/horizon configuration file")
		scenario   = flag.String("scenario", "cartpole", "cartpole or hexacopter")
		outPath    = flag.String("out", "trajectory.csv", "CSV output path")
		duration   = flag.Float64("duration", 10.0, "simulated seconds")
		horizonN   = flag.Int("n", 0, "horizon stage count (0 selects the scenario default)")
	)
	flag.Parse()

	var (
		cfg   cgmres.Config
		sched horizon.Schedule
		err   error
	)
	if *configPath != "" {
		doc, err2 := config.Load(*configPath)
		if err2 != nil {
			return err2
		}
		cfg, sched = doc.Solver, doc.Horizon
	} else {
		cfg, sched, err = defaultConfig(*scenario)
		if err != nil {
			return err
		}
	}

	clock := new(float64)
	var problem ocp.Problem
	var x0 []float64
	n := *horizonN
	switch *scenario {
	case "cartpole":
		problem = ocp.NewCartpole()
		x0 = []float64{0, 0, 0, 0}
		if n == 0 {
			n = 100
		}
	case "hexacopter":
		problem = ocp.NewHexacopter(clock)
		x0 = make([]float64, 12)
		if n == 0 {
			n = 50
		}
	default:
		return fmt.Errorf("unknown scenario %q", *scenario)
	}

	solver, warn, err := cgmres.New(problem, n, cfg, sched)
	if err != nil {
		return err
	}
	if warn != nil {
		fmt.Fprintln(os.Stderr, warn.String())
	}

	out, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	dims := problem.Dims()
	writer := newTrajectoryWriter(out, dims.Nx, dims.Nu)

	logger := solver.Logger()
	logger.Output = os.Stderr
	if cfg.VerboseLevel >= 1 {
		solver.AddObserver(cgmres.LoggingObserver(logger))
	}

	if err := solver.SetUC(make([]float64, dims.Nu)); err != nil {
		return err
	}
	t := 0.0
	if convWarn, err := solver.Solve(t, x0); err != nil {
		return err
	} else if convWarn != nil {
		fmt.Fprintln(os.Stderr, convWarn.String())
	}
	if err := solver.InitXLmd(t, x0); err != nil {
		return err
	}
	if err := solver.InitDummyMu(); err != nil {
		return err
	}

	x := append([]float64(nil), x0...)
	dx := make([]float64, dims.Nx)
	steps := int(*duration / cfg.SamplingTime)
	for i := 0; i < steps; i++ {
		*clock = t
		u, breakdown, err := solver.Update(t, x)
		if err != nil {
			return fmt.Errorf("update at t=%g: %w", t, err)
		}
		if breakdown != nil {
			fmt.Fprintln(os.Stderr, breakdown.String())
		}
		if err := writer.writeSample(t, x, u, solver.LastResidualNorm()); err != nil {
			return err
		}
		x = stepPlant(problem, t, cfg.SamplingTime, x, u, dx)
		t += cfg.SamplingTime
	}
	logger.Flush()
	return writer.flush()
}

func defaultConfig(scenario string) (cgmres.Config, horizon.Schedule, error) {
	cfg := cgmres.Config{
		SamplingTime:            0.001,
		Zeta:                    1000,
		FiniteDifferenceEpsilon: 1e-8,
		MaxIter:                 20,
		OptErrTol:               1e-8,
		VerboseLevel:            1,
		KMax:                    5,
	}
	var sched horizon.Schedule
	var err error
	switch scenario {
	case "cartpole":
		sched, err = horizon.New(2.0, 0, 0)
	case "hexacopter":
		sched, err = horizon.New(1.0, 1.0, 0)
	default:
		return cgmres.Config{}, horizon.Schedule{}, fmt.Errorf("unknown scenario %q", scenario)
	}
	if err != nil {
		return cgmres.Config{}, horizon.Schedule{}, err
	}
	return cfg, sched, nil
}
