package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/physlab/internal/demo"
	"github.com/san-kum/physlab/internal/experiment"
	"github.com/san-kum/physlab/internal/gui"
	"github.com/san-kum/physlab/internal/scene"
	"github.com/san-kum/physlab/internal/sim"
	"github.com/san-kum/physlab/internal/stream"
	"github.com/san-kum/physlab/internal/viz"
)

// interactive builds a simulator for a host. With no demo argument and no
// config file the user picks one from a menu.
func interactive(cmd *cobra.Command, args []string) (*sim.Simulator, int, error) {
	if len(args) == 0 && configFile == "" {
		name, err := viz.Pick(demo.List(), demo.Describe)
		if err != nil {
			return nil, 0, err
		}
		if name == "" {
			return nil, 0, nil
		}
		args = []string{name}
	}
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return nil, 0, err
	}
	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return nil, 0, err
	}
	s, err := exp.Setup()
	if err != nil {
		return nil, 0, err
	}
	return s, cfg.FPS, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	s, rate, err := interactive(cmd, args)
	if err != nil || s == nil {
		return err
	}
	m, err := viz.NewModel(s, logger, viz.WithFPS(rate))
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func runGUI(cmd *cobra.Command, args []string) error {
	s, rate, err := interactive(cmd, args)
	if err != nil || s == nil {
		return err
	}
	opts := gui.DefaultOptions()
	opts.FPS = rate
	opts.Audio = withAudio
	opts.Logger = logger
	return gui.Run(s, opts)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return err
	}
	s, err := exp.Setup()
	if err != nil {
		return err
	}

	surface := scene.NewStaticSurface(1280, 720)
	srv := stream.New(s.Push,
		stream.WithLogger(logger.WithPrefix("stream")),
		stream.WithResize(surface.SetSize),
		stream.WithParams(s.Tune))
	sched := scene.NewTickerScheduler(cfg.FPS)
	defer sched.Stop()
	lc := scene.NewLifecycle(srv, sched, scene.WithLogger(logger.WithPrefix("scene")))
	if err := s.Host(lc, surface); err != nil {
		return err
	}
	defer lc.Dispose()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpSrv := &http.Server{Addr: cfg.Stream.Addr, Handler: srv.Handler()}
	errc := make(chan error, 1)
	go func() { errc <- httpSrv.ListenAndServe() }()
	logger.Info("serving", "demo", cfg.Demo, "url", fmt.Sprintf("http://%s/", cfg.Stream.Addr))

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	lc.Dispose()
	shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	select {
	case <-lc.Done():
	case <-shutdown.Done():
		logger.Warn("scene teardown timed out")
	}
	return httpSrv.Shutdown(shutdown)
}
