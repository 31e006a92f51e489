// Command quadrpi is the hardware-in-loop bench runner: the flight
// core flies a real CMPS09 compass and PCA9685 ESC bank over the Pi's
// I2C header while the simulated transmitter and rigid body estimator
// stand in for the receiver and IMU fusion.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.bug.st/serial"

	"github.com/openaero/quadx/pkg/airsim"
	"github.com/openaero/quadx/pkg/cmps09"
	"github.com/openaero/quadx/pkg/config"
	"github.com/openaero/quadx/pkg/hal"
	"github.com/openaero/quadx/pkg/pilot"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial console port override (e.g., /dev/ttyAMA0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Flight core halted: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down")
		cancel()
	}()

	conn, err := serial.Open(cfg.Serial.Port, &serial.Mode{BaudRate: cfg.Serial.BaudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", cfg.Serial.Port, err)
	}
	defer conn.Close()
	console := airsim.NewConsole(conn, conn)

	bus := newI2C()
	defer bus.Close()

	// The estimator integrates the same commands the ESCs get, so the
	// loop closes without flight hardware on the bench.
	simActs := airsim.NewActuators()
	dyn := airsim.NewDynamics(cfg.Sim, simActs)
	defer dyn.Close()

	tx := airsim.NewTransmitter()
	tx.Frame(hal.StickInputs{Roll: 0x80, Pitch: 0x80, Yaw: 0x80})

	board := pilot.Board{
		// The Pi header has no analog inputs, so the sensor channels
		// come from the simulated suite.
		ADC:       airsim.NewADC(cfg.Sim),
		Serial:    console,
		Actuators: &tee{hw: newESCBank(bus.bus), sim: simActs},
		Receiver:  tx,
		Compass:   cmps09.New(bus, cfg.Calibration.MagOffsets),
		AHRS:      dyn,
		Monitor:   monitor{},
	}

	p := pilot.New(board, cfg)

	go func() {
		if err := console.Pump(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Console receive stopped: %v", err)
		}
	}()

	if err := p.Boot(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// tee mirrors every actuator call to the sim bank so the estimator
// sees what the ESCs get.
type tee struct {
	hw  hal.Actuators
	sim hal.Actuators
}

var _ hal.Actuators = (*tee)(nil)

func (t *tee) Init(n int) error {
	if err := t.hw.Init(n); err != nil {
		return err
	}
	return t.sim.Init(n)
}

func (t *tee) Set(ch int, value uint16) {
	t.hw.Set(ch, value)
	t.sim.Set(ch, value)
}

func (t *tee) Start() {
	t.hw.Start()
	t.sim.Start()
}

func (t *tee) Stop() {
	t.hw.Stop()
	t.sim.Stop()
}

// monitor reports zero status words; a hosted process has no reset
// cause register to show.
type monitor struct{}

var _ hal.Monitor = monitor{}

func (monitor) StatusRegisters() (sr, cr uint16) { return 0, 0 }
