// Package airsim is a software airframe: simulated sensors, rotors and
// attitude dynamics implementing the pkg/hal driver contracts, so the
// flight core can boot and fly with no hardware attached. Readings
// default to the centre of every self-test band; scenario runners can
// reload them out of band to rehearse failures.
package airsim

import (
	"io"

	"github.com/openaero/quadx/pkg/cmps09"
	"github.com/openaero/quadx/pkg/config"
	"github.com/openaero/quadx/pkg/hal"
	"github.com/openaero/quadx/pkg/pilot"
)

// Status words reported in the boot banner.
const (
	statusSR = 0x0080
	statusCR = 0x0000
)

// Board is the assembled simulated airframe. Fields are exported so
// scenario code can reach individual drivers, reload sensor readings
// or drive the transmitter.
type Board struct {
	ADC       *ADC
	Console   *Console
	Actuators *Actuators
	TX        *Transmitter
	Bus       *Bus
	Compass   *cmps09.Device
	Dynamics  *Dynamics
}

// New assembles an airframe from cfg, writing console output to w and
// reading command bytes from r. A nil cfg simulates the stock unit.
// The bench transmitter starts switched on with the throttle down.
func New(cfg *config.Config, w io.Writer, r io.Reader) *Board {
	if cfg == nil {
		cfg = config.Default()
	}

	bus := NewBus(cmps09.DefaultAddr)
	bus.LoadCompass(cfg.Calibration.CompassRevision,
		cfg.Sim.MagField,
		[3]int16{0, 0, cfg.Sim.AccelG})

	acts := NewActuators()
	tx := NewTransmitter()
	tx.Frame(hal.StickInputs{Roll: 0x80, Pitch: 0x80, Yaw: 0x80})

	return &Board{
		ADC:       NewADC(cfg.Sim),
		Console:   NewConsole(w, r),
		Actuators: acts,
		TX:        tx,
		Bus:       bus,
		Compass:   cmps09.New(bus, cfg.Calibration.MagOffsets),
		Dynamics:  NewDynamics(cfg.Sim, acts),
	}
}

// Drivers returns the airframe wired as the flight core's board.
func (b *Board) Drivers() pilot.Board {
	return pilot.Board{
		ADC:       b.ADC,
		Serial:    b.Console,
		Actuators: b.Actuators,
		Receiver:  b.TX,
		Compass:   b.Compass,
		AHRS:      b.Dynamics,
		Monitor:   b,
	}
}

// StatusRegisters reports the fixed simulated status words.
func (b *Board) StatusRegisters() (sr, cr uint16) {
	return statusSR, statusCR
}

var _ hal.Monitor = (*Board)(nil)

// Close stops the attitude dynamics. The airframe is not usable
// afterwards.
func (b *Board) Close() error {
	return b.Dynamics.Close()
}
