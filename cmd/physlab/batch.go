package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/physlab/internal/automation"
	"github.com/san-kum/physlab/internal/optim"
	"github.com/san-kum/physlab/internal/storage"
)

var (
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	metricName string
	gridSpecs  []string
	trials     int
	spawns     int
)

func batchCommands() []*cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of scripted steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [demo]",
		Short: "run a demo across a range of one world parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "gravity", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", -1.62, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", -9.82, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	tuneCmd := &cobra.Command{
		Use:   "tune [demo]",
		Short: "grid-search world parameters minimising a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", []string{"solver_iterations=5,10,20"}, "name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "energy", "metric to minimise")

	mcCmd := &cobra.Command{
		Use:   "montecarlo [demo]",
		Short: "repeat a demo with consecutive seeds and random spawns",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addSceneFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 10, "number of trials")
	mcCmd.Flags().IntVar(&spawns, "spawns", 5, "random spawns per trial (key c)")

	return []*cobra.Command{scenarioCmd, sweepCmd, tuneCmd, mcCmd}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runner := automation.NewRunner(automation.WithStore(st), automation.WithLogger(logger))
	results, err := runner.RunScenario(context.Background(), sc)
	for i, r := range results {
		fmt.Printf("step %d: %s  frames %d  drift %.2e", i+1, r.Result.Demo, r.Result.Frames, r.Result.EnergyDrift)
		if r.RunID != "" {
			fmt.Printf("  saved %s", r.RunID)
		}
		fmt.Println()
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	results, err := automation.RunSweep(context.Background(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	})
	if err != nil {
		return err
	}

	names := make([]string, 0)
	for n := range results[0].Metrics {
		names = append(names, n)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tWARNINGS\n", strings.ToUpper(sweepParam), strings.ToUpper(strings.Join(names, "\t")))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f", r.ParamValue)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4g", r.Metrics[n])
		}
		fmt.Fprintf(w, "\t%d\n", r.Warnings)
	}
	return w.Flush()
}

func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("grid %q: want name=v1,v2", spec)
		}
		var values []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %q: %w", spec, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}

	g := optim.NewGridSearch(names, ranges)
	best, val, all, err := g.Search(context.Background(), optim.FromConfig(cfg), metricName)
	if err != nil {
		return err
	}
	for _, tr := range all {
		fmt.Printf("  %v -> %.6g\n", tr.Params, tr.Value)
	}
	fmt.Printf("\nbest %s = %.6g at %v\n", metricName, val, best)
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	var events []automation.EventSpec
	for i := 0; i < spawns; i++ {
		at := float64(i+1) * cfg.Duration / float64(spawns+2)
		events = append(events,
			automation.EventSpec{At: at, Key: "c"},
			automation.EventSpec{At: at + cfg.FrameDt*2, Key: "c", Up: true})
	}

	results, err := automation.RunMonteCarlo(context.Background(), &automation.MonteCarloConfig{
		Base:      cfg,
		Events:    events,
		NumTrials: trials,
		Seed:      cfg.Seed,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tBODIES\tENERGY\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3f\t%v\n", r.TrialID, r.Seed, r.Bodies, r.FinalEnergy, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable %d  unstable %d\n", stable, unstable)
	return nil
}
