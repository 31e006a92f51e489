package main

import (
	"fmt"
	"log"

	"github.com/kidoman/embd"
	"github.com/kidoman/embd/controller/pca9685"

	"github.com/openaero/quadx/pkg/hal"
)

// ESC pulse window on the PCA9685: at 50 Hz one tick is 20ms/4096, so
// the 1 ms idle pulse is 205 ticks and full scale adds another 205.
const (
	escAddr      = 0x40
	escFreq      = 50
	escMinTicks  = 205
	escSpanTicks = 205
	escChannels  = 16
)

// escBank drives the ESCs from the first PCA9685 channels.
type escBank struct {
	pwm      *pca9685.PCA9685
	channels int
}

var _ hal.Actuators = (*escBank)(nil)

func newESCBank(bus embd.I2CBus) *escBank {
	pwm := pca9685.New(bus, escAddr)
	pwm.Freq = escFreq
	return &escBank{pwm: pwm}
}

func (e *escBank) Init(n int) error {
	if n < 1 || n > escChannels {
		return fmt.Errorf("pca9685 has %d channels, not %d", escChannels, n)
	}
	e.channels = n
	return nil
}

// Set maps the full uint16 command range onto the 1 ms to 2 ms pulse.
func (e *escBank) Set(ch int, value uint16) {
	if ch < 0 || ch >= e.channels {
		return
	}
	off := escMinTicks + int(uint32(value)*escSpanTicks>>16)
	if err := e.pwm.SetPwm(ch, 0, off); err != nil {
		log.Printf("Failed to set ESC %d: %v", ch, err)
	}
}

// Start wakes the controller and arms every ESC at the idle pulse.
func (e *escBank) Start() {
	if err := e.pwm.Wake(); err != nil {
		log.Printf("Failed to wake PCA9685: %v", err)
	}
	for ch := 0; ch < e.channels; ch++ {
		e.Set(ch, 0)
	}
}

func (e *escBank) Stop() {
	if err := e.pwm.Sleep(); err != nil {
		log.Printf("Failed to sleep PCA9685: %v", err)
	}
}
