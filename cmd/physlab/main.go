package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/demo"
	"github.com/san-kum/physlab/internal/logging"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	preset     string

	regime     string
	seed       int64
	duration   float64
	frameDt    float64
	fps        int
	throwScale float64
	withAudio  bool
	addr       string

	body      string
	component string
	svgOut    string
	jsonOut   string

	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "physlab",
		Short:        "interactive rigid-body physics lab",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, os.Stderr)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, nil)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".physlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run [demo]",
		Short: "run a demo headless and save the recording",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also write the full result as JSON")

	compareCmd := &cobra.Command{
		Use:   "compare [demo]",
		Short: "run a demo under the stiff and soft contact regimes side by side",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareRegimes,
	}
	addSceneFlags(compareCmd)
	compareCmd.Flags().StringVar(&body, "body", "", "body whose trajectories are compared")
	compareCmd.Flags().StringVar(&component, "component", "y", "x, y, z, vx, vy, vz or speed")

	liveCmd := &cobra.Command{
		Use:   "live [demo]",
		Short: "interactive terminal view (keys + mouse)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui [demo]",
		Short: "interactive raylib window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	addSceneFlags(guiCmd)
	guiCmd.Flags().BoolVar(&withAudio, "audio", false, "play impact sounds")

	serveCmd := &cobra.Command{
		Use:   "serve [demo]",
		Short: "stream a demo to browsers over WebSocket",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServe,
	}
	addSceneFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and body heights of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "period and phase analysis of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&body, "body", "", "body to analyze (default: first recorded)")
	analyzeCmd.Flags().StringVar(&component, "component", "x", "x, y or z")
	analyzeCmd.Flags().StringVar(&svgOut, "svg", "", "write the phase portrait as SVG")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportGLTFCmd := &cobra.Command{
		Use:   "export-gltf [demo] [file]",
		Short: "simulate a demo and write its final frame as .gltf or .glb",
		Args:  cobra.ExactArgs(2),
		RunE:  exportGLTF,
	}
	addSceneFlags(exportGLTFCmd)
	exportGLTFCmd.Flags().StringVar(&svgOut, "svg", "", "also write a wireframe SVG of the frame")

	presetsCmd := &cobra.Command{
		Use:   "presets [demo]",
		Short: "list presets for a demo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for demo: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	demosCmd := &cobra.Command{
		Use:   "demos",
		Short: "list demos",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range demo.List() {
				fmt.Printf("  %-8s %s\n", name, demo.Describe(name))
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [file]",
		Short: "write the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, compareCmd, liveCmd, guiCmd, serveCmd, listCmd, plotCmd, analyzeCmd,
		exportJSONCmd, exportGLTFCmd, presetsCmd, demosCmd, initCmd)
	rootCmd.AddCommand(batchCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&regime, "regime", config.DefaultRegime, "contact regime: stiff or soft")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().Float64Var(&frameDt, "frame-dt", config.DefaultFrameDt, "headless frame interval")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "display frame rate")
	cmd.Flags().Float64Var(&throwScale, "throw-scale", 0, "release velocity factor for dragged bodies")
}

// resolveConfig layers defaults, then a preset or config file, then any
// flag the user set explicitly.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Demo = args[0]
	}
	if preset != "" {
		p := config.GetPreset(cfg.Demo, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Demo))
		}
		cfg = p
	}

	flags := cmd.Flags()
	if flags.Changed("regime") {
		cfg.Regime = regime
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("frame-dt") {
		cfg.FrameDt = frameDt
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("throw-scale") {
		cfg.ThrowScale = throwScale
	}
	if flags.Lookup("audio") != nil && flags.Changed("audio") {
		cfg.Audio = withAudio
	}
	if flags.Lookup("addr") != nil && flags.Changed("addr") {
		cfg.Stream.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
