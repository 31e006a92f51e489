//go:build tinygo

package main

import (
	"fmt"
	"machine"
	"sync"
	"time"

	"github.com/openaero/quadx/pkg/hal"
)

// escBank drives the ESCs from TCC0 compare channels sharing one 20ms
// period. Stopped means every output is pinned at the 1ms idle pulse.
type escBank struct {
	mu       sync.Mutex
	tcc      *machine.TCC
	channels []uint8
	running  bool
}

var _ hal.Actuators = (*escBank)(nil)

func (e *escBank) Init(n int) error {
	pins := []machine.Pin{PIN_ESC1, PIN_ESC2, PIN_ESC3, PIN_ESC4}
	if n < 1 || n > len(pins) {
		return fmt.Errorf("have %d esc outputs, asked for %d", len(pins), n)
	}

	e.tcc = machine.TCC0
	if err := e.tcc.Configure(machine.PWMConfig{Period: uint64(20 * time.Millisecond)}); err != nil {
		return fmt.Errorf("failed to configure TCC0 PWM: %w", err)
	}

	e.channels = make([]uint8, n)
	for i := 0; i < n; i++ {
		ch, err := e.tcc.Channel(pins[i])
		if err != nil {
			return fmt.Errorf("failed to claim esc pin %d: %w", i, err)
		}
		e.channels[i] = ch
		e.write(i, 0)
	}
	return nil
}

// write sets one output. The full uint16 command range maps onto the
// 1ms to 2ms pulse window.
func (e *escBank) write(ch int, value uint16) {
	min := uint64(e.tcc.Top()) / 20
	pulse := min + min*uint64(value)>>16
	e.tcc.Set(e.channels[ch], uint32(pulse))
}

func (e *escBank) Set(ch int, value uint16) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ch < 0 || ch >= len(e.channels) || !e.running {
		return
	}
	e.write(ch, value)
}

func (e *escBank) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
	for ch := range e.channels {
		e.write(ch, 0)
	}
}

func (e *escBank) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := range e.channels {
		e.write(ch, 0)
	}
	e.running = false
}
