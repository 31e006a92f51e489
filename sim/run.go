package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openaero/quadx/pkg/airsim"
	"github.com/openaero/quadx/pkg/config"
	"github.com/openaero/quadx/pkg/hal"
	"github.com/openaero/quadx/pkg/pilot"
)

// defaultTicks runs the control loop for ten simulated seconds.
const defaultTicks = 500

// options collects the command line flags.
type options struct {
	ConfigPath string
	Ticks      int
	Throttle   uint8
	Fail       string
	Verbose    bool
}

// run boots the flight core on the simulated airframe and reports how
// the flight ended. The serial console goes to stdout, log lines to
// stderr, so transcripts stay clean when piped.
func run(opts options) error {
	logger := logrus.New()
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger.WithField("path", opts.ConfigPath).Debug("Loaded configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.WithField("signal", sig).Info("Shutting down")
		cancel()
	}()

	board := airsim.New(cfg, os.Stdout, os.Stdin)
	defer board.Close()

	if err := inject(board, cfg, opts.Fail); err != nil {
		return err
	}

	p := pilot.New(board.Drivers(), cfg)

	// The pump blocks in the stdin read between keystrokes, so it is
	// not joined on shutdown; it dies with the process.
	go func() {
		if err := board.Console.Pump(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Debug("Console input closed")
		}
	}()

	boot := logger.WithField("ticks", opts.Ticks)
	if opts.Fail != "" {
		boot = boot.WithField("fail", opts.Fail)
	}
	boot.Info("Booting flight core")

	if err := p.Boot(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Interrupted during boot")
			return nil
		}
		return fmt.Errorf("flight core halted: %w", err)
	}

	if opts.Throttle > 0 {
		logger.WithField("throttle", opts.Throttle).Debug("Raising throttle")
		board.TX.Frame(hal.StickInputs{
			Throttle: opts.Throttle,
			Roll:     0x80,
			Pitch:    0x80,
			Yaw:      0x80,
		})
	}

	runCtx := ctx
	if opts.Ticks > 0 {
		var stop context.CancelFunc
		runCtx, stop = context.WithTimeout(ctx, time.Duration(opts.Ticks)*pilot.TickPeriod)
		defer stop()
	}

	err := p.Run(runCtx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("control loop stopped: %w", err)
	}

	cmds := board.Actuators.Commands()
	trims := p.Trims()
	att := board.Dynamics.Snapshot()
	logger.WithFields(logrus.Fields{
		"rotors": fmt.Sprintf("%d %d %d %d", cmds[0], cmds[1], cmds[2], cmds[3]),
		"trims":  fmt.Sprintf("%d %d %d %d", trims[0], trims[1], trims[2], trims[3]),
		"pitch":  att.Pitch,
		"roll":   att.Roll,
		"yaw":    att.Yaw,
	}).Info("Flight core stopped")

	return nil
}

// inject skews the bench before boot so the named self-test check
// trips. The gyro value parks on the window edge, which the strict
// range check rejects on every retry.
func inject(b *airsim.Board, cfg *config.Config, fail string) error {
	level := [3]int16{0, 0, cfg.Sim.AccelG}
	switch fail {
	case "":
	case "revision":
		b.Bus.LoadCompass(cfg.Calibration.CompassRevision+1, cfg.Sim.MagField, level)
	case "gyro":
		b.ADC.Set(hal.ChanGyroX, cfg.Calibration.GyroMax)
	case "mag":
		b.Bus.LoadCompass(cfg.Calibration.CompassRevision, [3]int16{2000, 0, 0}, level)
	case "accel":
		b.Bus.LoadCompass(cfg.Calibration.CompassRevision, cfg.Sim.MagField,
			[3]int16{0, 0, cfg.Sim.AccelG / 2})
	case "throttle":
		b.TX.Frame(hal.StickInputs{Throttle: 0x40, Roll: 0x80, Pitch: 0x80, Yaw: 0x80})
	default:
		return fmt.Errorf("unknown failure %q, want revision, gyro, mag, accel or throttle", fail)
	}
	return nil
}
