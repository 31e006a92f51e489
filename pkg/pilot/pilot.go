// Package pilot is the flight core of a four-rotor aircraft: the boot
// self-test sequence, the selector-switch flight modes, the 50 Hz
// stabilisation loop and the serial bench-trim override.
package pilot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openaero/quadx/pkg/config"
	"github.com/openaero/quadx/pkg/hal"
)

const (
	// TickPeriod is the control loop period.
	TickPeriod = 20 * time.Millisecond
	// NumRotors is the number of actuator channels driven.
	NumRotors = 4
)

var (
	// ErrSelfTest wraps every failed boot check.
	ErrSelfTest = errors.New("self test failed")
	// ErrFaulted is returned when the core is latched in the fault
	// state and refuses to fly.
	ErrFaulted = errors.New("flight core is latched in the fault state")
)

// Board collects the drivers the core flies with.
type Board struct {
	ADC       hal.ADC
	Serial    hal.Serial
	Actuators hal.Actuators
	Receiver  hal.Receiver
	Compass   hal.Compass
	AHRS      hal.AHRS
	Monitor   hal.Monitor
}

// Pilot owns the flight state: mode flags, the yaw setpoint, the bench
// trims and the fault latch. Mode and setpoint state belongs to the
// tick loop alone; the trims and the fault latch are shared with the
// serial receive path and guarded by mu.
type Pilot struct {
	board Board
	cfg   *config.Config

	// Tick-loop state.
	modes  ModeSet
	prevSw bool
	setYaw int16

	mu      sync.Mutex
	trims   [NumRotors]uint8
	faulted bool
}

// New wires the core to its drivers. A nil cfg flies the stock unit.
func New(board Board, cfg *config.Config) *Pilot {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pilot{board: board, cfg: cfg}
}

// Boot initialises the drivers and runs the self-test sequence. A
// tripped check reports over the console, latches the fault state and
// returns an error wrapping ErrSelfTest; the platform decides whether
// that means halting forever or exiting to a supervisor. On success
// the estimator and the actuator output stage are running and the trim
// handler is armed.
func (p *Pilot) Boot(ctx context.Context) error {
	if err := p.board.Actuators.Init(NumRotors); err != nil {
		return fmt.Errorf("failed to init actuators: %w", err)
	}
	p.board.Serial.SetInputHandler(p.HandleInput)

	converted := make(chan struct{})
	p.board.ADC.ConvertAll(func() { close(converted) })
	select {
	case <-converted:
	case <-ctx.Done():
		return ctx.Err()
	}

	// Give an operator time to attach to the console.
	if err := sleep(ctx, p.cfg.SelfTest.BootDelay); err != nil {
		return err
	}

	if err := p.selfTest(ctx); err != nil {
		if errors.Is(err, ErrSelfTest) {
			p.fail()
		}
		return err
	}

	p.board.Serial.WriteString("Calibrating sensors..")
	p.board.Serial.WriteEOL()

	p.board.AHRS.Start()
	p.board.Actuators.Start()

	p.board.Serial.WriteString("AHRS loop and actuator signals are running")
	p.board.Serial.WriteEOL()

	p.echo(p.Trims())
	return nil
}

// Run drives the control loop at TickPeriod until ctx is cancelled.
func (p *Pilot) Run(ctx context.Context) error {
	if p.Faulted() {
		return ErrFaulted
	}

	ticker := time.NewTicker(TickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Tick()
		}
	}
}

// Tick runs one control period: mode switches first, then the
// stabilisation pass, then the runtime health hook.
func (p *Pilot) Tick() {
	if p.Faulted() {
		return
	}
	p.updateModes()
	p.updateControl()
	p.healthCheck()
}

// healthCheck is the per-tick hook for runtime monitoring. Nothing is
// checked yet; boot is the only place battery and receiver state gate
// anything.
// TODO: trip on low battery voltage and receiver signal loss in flight.
func (p *Pilot) healthCheck() {}

// fail latches the one-way fault state and reports it. A latched core
// ignores trim input and refuses to tick.
func (p *Pilot) fail() {
	p.mu.Lock()
	p.faulted = true
	p.mu.Unlock()
	p.board.Serial.WriteString("ERROR")
}

// Faulted reports whether the core is latched in the fault state.
func (p *Pilot) Faulted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.faulted
}

// Trims returns the current bench trims.
func (p *Pilot) Trims() [NumRotors]uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trims
}

// sleep blocks for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
