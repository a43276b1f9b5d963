// Command qortex runs the state-processing pipeline from the command
// line: process a single input, optionally refine the merged state with
// the convergence optimizer, or replay a recorded trace file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/q0rtex/qortex-go/pkg/accel"
	"github.com/q0rtex/qortex-go/pkg/config"
	"github.com/q0rtex/qortex-go/pkg/datasets"
	"github.com/q0rtex/qortex-go/pkg/logging"
	"github.com/q0rtex/qortex-go/pkg/optimize"
	"github.com/q0rtex/qortex-go/pkg/processor"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file (defaults apply when empty)")
		kind       = flag.String("kind", string(processor.KindQuery), "input kind: command, query or code")
		op         = flag.String("op", "", "transform op override: hadamard, paulix, pauliz, normalize or rotate")
		tracePath  = flag.String("trace", "", "replay a parquet trace file instead of processing arguments")
		refine     = flag.Bool("refine", false, "run the convergence optimizer on the merged state")
	)
	flag.Parse()

	if err := run(*configPath, *kind, *op, *tracePath, *refine, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "qortex: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, kind, op, tracePath string, refine bool, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []processor.Option
	if op != "" {
		if !accel.KnownOp(accel.Op(op)) {
			return fmt.Errorf("unknown op %q", op)
		}
		opts = append(opts, processor.WithOp(accel.Op(op)))
	}

	proc := processor.NewProcessor(cfg, nil, opts...)
	defer proc.Close()

	if tracePath != "" {
		return replayTraces(ctx, proc, tracePath)
	}

	if len(args) == 0 {
		return fmt.Errorf("nothing to process; pass an input string or -trace")
	}

	result, err := proc.ProcessInput(ctx, strings.Join(args, " "), processor.InputKind(kind))
	if err != nil {
		return err
	}

	fmt.Printf("tokens:     %d\n", result.TokenCount)
	fmt.Printf("reality:    %.4f\n", result.RealityScore)
	fmt.Printf("confidence: %.4f\n", result.Confidence)
	fmt.Printf("merged:     %v\n", result.MergedVector.Components())
	fmt.Printf("elapsed:    %s\n", result.Elapsed)

	if !refine {
		return nil
	}

	optimizer := optimize.NewConvergenceOptimizer(nil,
		optimize.WithMaxIterations(cfg.Optimizer.MaxIterations),
		optimize.WithConvergenceThreshold(cfg.Optimizer.ConvergenceThreshold),
		optimize.WithOscillationWindow(cfg.Optimizer.OscillationWindow),
		optimize.WithMomentum(cfg.Optimizer.Momentum),
		optimize.WithOp(accel.Op(cfg.Optimizer.Op)),
	)
	design, err := optimizer.IterativeDesign(ctx, result.MergedVector)
	if err != nil {
		return err
	}

	fmt.Printf("design:     %v\n", design.DesignVector.Components())
	fmt.Printf("iterations: %d\n", design.Iterations)
	fmt.Printf("design confidence: %.4f\n", design.Confidence)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.GetDefaultConfig(), nil
	}
	return config.Load(path)
}

func setupLogging(cfg *config.Config) {
	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.Logging.Level),
		Outputs: []logging.Output{
			logging.NewConsoleOutput(cfg.Logging.UseStderr, logging.WithColor(cfg.Logging.Color)),
		},
	}))
}

func replayTraces(ctx context.Context, proc *processor.Processor, path string) error {
	examples, err := datasets.LoadTraces(ctx, path)
	if err != nil {
		return err
	}

	report, err := datasets.Evaluate(ctx, proc, examples)
	if err != nil {
		return err
	}

	fmt.Printf("traces:          %d\n", report.Total)
	fmt.Printf("passed:          %d\n", report.Passed)
	fmt.Printf("reality failed:  %d\n", report.RealityFailed)
	fmt.Printf("errored:         %d\n", report.Errored)
	if report.Passed > 0 {
		fmt.Printf("mean reality:    %.4f\n", report.MeanReality)
		fmt.Printf("mean confidence: %.4f\n", report.MeanConfidence)
	}
	return nil
}
