// Package cmps09 reads the CMPS09 tilt-compensated compass module over
// the sensor bus: hardware revision, raw magnetometer axes and raw
// accelerometer axes.
package cmps09

import (
	"encoding/binary"
	"fmt"

	"github.com/openaero/quadx/pkg/hal"
)

const (
	// DefaultAddr is the module's 7-bit bus address.
	DefaultAddr = 0x60

	regRevision = 0
	regMagX     = 10
	regAccelX   = 16
)

// Device is a CMPS09 on a bus, carrying the airframe's magnetometer
// calibration.
type Device struct {
	bus     hal.Bus
	addr    uint8
	offsets [3]int16
}

var _ hal.Compass = (*Device)(nil)

// New returns a Device on the default address with the given per-axis
// magnetometer offsets.
func New(bus hal.Bus, offsets [3]int16) *Device {
	return &Device{bus: bus, addr: DefaultAddr, offsets: offsets}
}

// Revision reads the hardware revision byte.
func (d *Device) Revision() (uint8, error) {
	var buf [1]byte
	if err := d.bus.Read(d.addr, regRevision, buf[:]); err != nil {
		return 0, fmt.Errorf("failed to read revision: %w", err)
	}
	return buf[0], nil
}

// Mag reads the raw magnetometer axes. The calibration offsets are not
// applied here.
func (d *Device) Mag() ([3]int16, error) {
	return d.readAxes(regMagX)
}

// Accel reads the raw accelerometer axes.
func (d *Device) Accel() ([3]int16, error) {
	return d.readAxes(regAccelX)
}

// MagOffsets returns the per-axis magnetometer calibration.
func (d *Device) MagOffsets() [3]int16 {
	return d.offsets
}

// readAxes reads three big-endian int16 registers starting at reg.
func (d *Device) readAxes(reg uint8) ([3]int16, error) {
	var buf [6]byte
	if err := d.bus.Read(d.addr, reg, buf[:]); err != nil {
		return [3]int16{}, fmt.Errorf("failed to read axes at reg %d: %w", reg, err)
	}
	var axes [3]int16
	for i := range axes {
		axes[i] = int16(binary.BigEndian.Uint16(buf[2*i:]))
	}
	return axes, nil
}
