package airsim

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/openaero/quadx/pkg/config"
	"github.com/openaero/quadx/pkg/hal"
)

// ADC serves the configured bench readings. Gyro channels hold values
// at the window scale, which is twice the one-shot conversion scale,
// so Convert on a gyro channel returns half the stored value.
type ADC struct {
	mu     sync.Mutex
	values [hal.NumChannels]uint16
}

var _ hal.ADC = (*ADC)(nil)

// NewADC returns an ADC reading the bench values from cfg.
func NewADC(cfg config.SimConfig) *ADC {
	a := &ADC{}
	a.values[hal.ChanGyroX] = cfg.GyroCenter
	a.values[hal.ChanGyroY] = cfg.GyroCenter
	a.values[hal.ChanGyroZ] = cfg.GyroCenter
	a.values[hal.ChanBattery] = cfg.BatteryCounts
	a.values[hal.ChanTemp] = cfg.TempCounts
	return a
}

// Set reloads one channel, for out-of-band failure scenarios. Gyro
// channels take the value at the window scale.
func (a *ADC) Set(ch int, v uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[ch] = v
}

func (a *ADC) Value(ch int) uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.values[ch]
}

func (a *ADC) Convert(ch int) uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ch <= hal.ChanGyroZ {
		return a.values[ch] / 2
	}
	return a.values[ch]
}

func (a *ADC) ConvertAll(done func()) {
	if done != nil {
		done()
	}
}

// Compass register layout emulated by the bus.
const (
	regRevision = 0
	regMag      = 10
	regAccel    = 16
)

// Bus emulates the sensor bus with a single device holding a register
// file.
type Bus struct {
	addr uint8
	mu   sync.Mutex
	regs [256]byte
}

var _ hal.Bus = (*Bus)(nil)

// NewBus returns a Bus with one device at addr, registers zeroed.
func NewBus(addr uint8) *Bus {
	return &Bus{addr: addr}
}

// LoadCompass programs the compass registers: revision byte, then the
// magnetometer and accelerometer axes big-endian. Reloading with a
// wrong revision or an off-scale field rehearses self-test failures.
func (b *Bus) LoadCompass(rev uint8, mag, accel [3]int16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regs[regRevision] = rev
	for i := 0; i < 3; i++ {
		binary.BigEndian.PutUint16(b.regs[regMag+2*i:], uint16(mag[i]))
		binary.BigEndian.PutUint16(b.regs[regAccel+2*i:], uint16(accel[i]))
	}
}

func (b *Bus) Read(addr, reg uint8, p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if addr != b.addr {
		return fmt.Errorf("no device at 0x%02x", addr)
	}
	copy(p, b.regs[reg:])
	return nil
}
