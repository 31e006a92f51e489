package airsim

import (
	"fmt"
	"sync"

	"github.com/openaero/quadx/pkg/hal"
)

// numRotors is the number of rotor mounts on the simulated frame.
const numRotors = 4

// Actuators records the rotor commands for the dynamics to integrate.
type Actuators struct {
	mu       sync.Mutex
	commands [numRotors]uint16
	running  bool
}

var _ hal.Actuators = (*Actuators)(nil)

// NewActuators returns the rotor bank, output stage stopped.
func NewActuators() *Actuators {
	return &Actuators{}
}

func (a *Actuators) Init(n int) error {
	if n != numRotors {
		return fmt.Errorf("airframe has %d rotor mounts, not %d", numRotors, n)
	}
	return nil
}

func (a *Actuators) Set(ch int, value uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ch < 0 || ch >= numRotors {
		return
	}
	a.commands[ch] = value
}

func (a *Actuators) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = true
}

func (a *Actuators) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = false
}

// Commands returns a consistent snapshot of the four rotor commands.
func (a *Actuators) Commands() [numRotors]uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.commands
}

// Running reports whether the output stage is started.
func (a *Actuators) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Transmitter is the virtual bench transmitter. Like a real decoder it
// starts stale; the first Frame puts it on the air.
type Transmitter struct {
	mu   sync.Mutex
	in   hal.StickInputs
	live bool
}

var _ hal.Receiver = (*Transmitter)(nil)

// NewTransmitter returns a Transmitter that has not transmitted yet.
func NewTransmitter() *Transmitter {
	return &Transmitter{
		in: hal.StickInputs{Roll: 0x80, Pitch: 0x80, Yaw: 0x80},
	}
}

// Frame transmits one decoded stick frame.
func (t *Transmitter) Frame(in hal.StickInputs) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.in = in
	t.live = true
}

// Off switches the transmitter off; the decoder goes stale holding the
// last frame.
func (t *Transmitter) Off() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live = false
}

func (t *Transmitter) Inputs() hal.StickInputs {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.in
}

func (t *Transmitter) NoSignal() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.live
}
