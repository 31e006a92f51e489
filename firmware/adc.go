//go:build tinygo

package main

import (
	"machine"
	"sync"
	"time"

	"github.com/openaero/quadx/pkg/hal"
)

// SAMPLE_INTERVAL paces the background sensor scan.
const SAMPLE_INTERVAL = time.Millisecond

// adc scans the five sensor channels in the background the way the
// free-running conversion chain on the original board did. Gyro
// channels store the sum of two back-to-back conversions, so their
// stored scale is double the one-shot scale.
type adc struct {
	mu      sync.Mutex
	pins    [hal.NumChannels]machine.ADC
	values  [hal.NumChannels]uint16
	started bool
}

var _ hal.ADC = (*adc)(nil)

func newADC() *adc {
	machine.InitADC()

	a := &adc{}
	cfg := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	for i, pin := range [hal.NumChannels]machine.Pin{
		PIN_GYRO_X, PIN_GYRO_Y, PIN_GYRO_Z, PIN_BATTERY, PIN_TEMP,
	} {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		a.pins[i] = machine.ADC{Pin: pin}
		a.pins[i].Configure(cfg)
	}
	return a
}

// raw reads one conversion at the 10-bit count scale the conversion
// factors are calibrated for.
func (a *adc) raw(ch int) uint16 {
	return a.pins[ch].Get() >> 6
}

func (a *adc) scan() {
	for ch := 0; ch < hal.NumChannels; ch++ {
		v := a.raw(ch)
		if ch <= hal.ChanGyroZ {
			v += a.raw(ch)
		}
		a.mu.Lock()
		a.values[ch] = v
		a.mu.Unlock()
	}
}

func (a *adc) Value(ch int) uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.values[ch]
}

func (a *adc) Convert(ch int) uint16 {
	return a.raw(ch)
}

// ConvertAll runs the first full scan, reports it done and leaves the
// background scan running.
func (a *adc) ConvertAll(done func()) {
	a.scan()
	if !a.started {
		a.started = true
		go func() {
			for {
				time.Sleep(SAMPLE_INTERVAL)
				a.scan()
			}
		}()
	}
	done()
}
