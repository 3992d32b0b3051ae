package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/physlab/internal/analysis"
	"github.com/san-kum/physlab/internal/demo"
	"github.com/san-kum/physlab/internal/experiment"
	"github.com/san-kum/physlab/internal/export"
	"github.com/san-kum/physlab/internal/scene"
	"github.com/san-kum/physlab/internal/sim"
	"github.com/san-kum/physlab/internal/storage"
	"github.com/san-kum/physlab/internal/viz"
)

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s (%s) for %.1fs...\n", cfg.Demo, cfg.Regime, cfg.Duration)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := exp.Metadata()
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}
	if jsonOut != "" {
		if err := writeJSON(jsonOut, meta, runID, result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d  steps: %d  warnings: %d\n", result.Frames, result.StepsTaken, result.Diagnostics.Warnings)
	printMetrics(result.Metrics)
	return nil
}

func writeJSON(path string, meta storage.RunMetadata, runID string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	meta.ID = runID
	return storage.ExportJSON(f, meta, result)
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func compareRegimes(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	opts, err := cfg.DemoOptions()
	if err != nil {
		return err
	}
	comp, err := sim.Component(component)
	if err != nil {
		return err
	}

	regimes := []demo.Regime{demo.Stiff, demo.Soft}
	jobs := sim.Regimes(cfg.Demo, opts, sim.Config{Duration: cfg.Duration, FrameDt: cfg.FrameDt, RecordEvery: 1}, regimes...)
	results, err := sim.RunAll(context.Background(), jobs, sim.WithLogger(logger.WithPrefix("sim")))
	if err != nil {
		return err
	}

	names := map[string]bool{}
	for _, r := range results {
		for name := range r.Metrics {
			names[name] = true
		}
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tSTIFF\tSOFT")
	for _, n := range sorted {
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\n", n, results[0].Metrics[n], results[1].Metrics[n])
	}
	fmt.Fprintf(w, "steps\t%d\t%d\n", results[0].StepsTaken, results[1].StepsTaken)
	if err := w.Flush(); err != nil {
		return err
	}

	if body == "" {
		bodies := results[0].BodyNames()
		if len(bodies) == 0 {
			return nil
		}
		body = bodies[0]
	}
	a := results[0].Series(body, comp)
	b := results[1].Series(body, comp)
	d := analysis.Divergence(a, b)
	if len(d) == 0 {
		return nil
	}
	rate := analysis.SeparationRate(d, cfg.FrameDt, 1e-12)
	fmt.Printf("\n%s.%s divergence: final %.6f, growth rate %.4f /s\n", body, component, d[len(d)-1], rate)
	fmt.Println(asciigraph.Plot(d, asciigraph.Height(8), asciigraph.Width(70), asciigraph.Caption("|stiff - soft|")))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDEMO\tREGIME\tTIME\tDURATION\tSTEP\tINTEG\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%.2e\n",
			run.ID,
			run.Demo,
			run.Regime,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.FixedTimestep,
			run.Integrator,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rec, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(rec.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("demo: %s (%s)\n", meta.Demo, meta.Regime)
	fmt.Printf("samples: %d\n\n", len(rec.Rows))

	columns := []string{"energy"}
	for _, h := range rec.Header {
		if strings.HasSuffix(h, ".y") {
			columns = append(columns, h)
		}
	}
	const maxPlots = 6
	if len(columns) > maxPlots {
		columns = columns[:maxPlots]
	}

	for _, name := range columns {
		data, err := rec.Column(name)
		if err != nil {
			return err
		}
		data = dropNaN(data)
		if len(data) == 0 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func dropNaN(xs []float64) []float64 {
	out := xs[:0:0]
	for _, x := range xs {
		if x == x {
			out = append(out, x)
		}
	}
	return out
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rec, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	times := rec.Times()
	if len(times) < 2 {
		return fmt.Errorf("run too short to analyze")
	}
	dt := times[1] - times[0]

	if body == "" {
		for _, h := range rec.Header {
			if strings.HasSuffix(h, ".x") {
				body = strings.TrimSuffix(h, ".x")
				break
			}
		}
	}
	pos, err := rec.Column(body + "." + component)
	if err != nil {
		return err
	}
	vel, err := rec.Column(body + ".v" + component)
	if err != nil {
		return err
	}

	fmt.Printf("body: %s  component: %s  samples: %d  dt: %.4fs\n\n", body, component, len(pos), dt)

	if spec, err := analysis.PowerSpectrum(pos, dt); err == nil {
		f, p := spec.Peak()
		fmt.Printf("spectral peak:        %.4f Hz (power %.3e)\n", f, p)
	}
	if period, err := analysis.DominantPeriod(pos, dt); err == nil {
		fmt.Printf("dominant period:      %.4f s\n", period)
	} else {
		fmt.Printf("dominant period:      n/a (%v)\n", err)
	}
	if period, err := analysis.ZeroCrossingPeriod(pos, dt); err == nil {
		fmt.Printf("zero-crossing period: %.4f s\n", period)
	}

	pts := analysis.PhasePortrait(pos, vel)
	fmt.Printf("\nphase portrait (%s vs v%s):\n", component, component)
	fmt.Println(analysis.RenderASCII(pts, 60, 20))

	if svgOut != "" {
		svg := export.TrajectoryToSVG(pts, 600, 600, "#00ffcc")
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	return st.ExportRun(os.Stdout, meta.ID)
}

func exportGLTF(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return err
	}
	if _, err := exp.Run(context.Background()); err != nil {
		return err
	}
	s := exp.Simulator()
	proxies := s.Scene().Proxies.All()

	if err := export.WriteGLTF(args[1], proxies, export.DefaultGLTFOptions()); err != nil {
		return fmt.Errorf("export %s: %w", args[1], err)
	}
	fmt.Printf("wrote %s (%d nodes at t=%.2fs)\n", args[1], len(proxies), s.World().Time())

	if svgOut != "" {
		c := viz.NewCanvas(120, 60)
		viz.Rasterize(c, scene.Frame{
			Camera:   *s.Camera(),
			Lighting: s.Scene().Lighting,
			Proxies:  proxies,
		})
		if err := os.WriteFile(svgOut, []byte(export.CanvasToSVG(c, 4, "#00ffcc")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}
