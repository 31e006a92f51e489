//go:build tinygo

package main

import (
	"machine"
	"sync"
	"time"

	"github.com/openaero/quadx/pkg/hal"
)

// iBus framing
const (
	IBUS_HEADER1      = 0x20
	IBUS_HEADER2      = 0x40
	IBUS_NUM_CHANNELS = 14
	IBUS_PACKET_SIZE  = 2 + IBUS_NUM_CHANNELS*2 + 2

	// Receiver channel assignments, AETR plus two aux
	CH_ROLL     = 0
	CH_PITCH    = 1
	CH_THROTTLE = 2
	CH_YAW      = 3
	CH_SWITCH   = 4
	CH_POT      = 5

	// SIGNAL_TIMEOUT marks the link stale when no valid frame arrives.
	SIGNAL_TIMEOUT = 500 * time.Millisecond
)

var rxUART = machine.UART1

// receiver decodes iBus frames from the receiver UART into stick
// inputs. It starts stale and holds the last good frame when the link
// drops.
type receiver struct {
	mu        sync.Mutex
	in        hal.StickInputs
	lastFrame time.Time
}

var _ hal.Receiver = (*receiver)(nil)

func newReceiver() *receiver {
	rxUART.Configure(machine.UARTConfig{BaudRate: IBUS_BAUD_RATE})

	r := &receiver{
		in: hal.StickInputs{Roll: 0x80, Pitch: 0x80, Yaw: 0x80},
	}
	go r.decode()
	return r
}

func (r *receiver) Inputs() hal.StickInputs {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.in
}

func (r *receiver) NoSignal() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFrame.IsZero() || time.Since(r.lastFrame) > SIGNAL_TIMEOUT
}

// decode runs the framing state machine over the receive buffer. A
// frame is the two header bytes, the little-endian channel words and a
// checksum word of 0xffff minus the sum of every preceding byte.
func (r *receiver) decode() {
	var (
		frame [IBUS_PACKET_SIZE]byte
		pos   int
	)
	for {
		if rxUART.Buffered() == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		b, err := rxUART.ReadByte()
		if err != nil {
			continue
		}

		// Resynchronise on the header pair
		if pos == 0 && b != IBUS_HEADER1 {
			continue
		}
		if pos == 1 && b != IBUS_HEADER2 {
			pos = 0
			continue
		}

		frame[pos] = b
		pos++
		if pos < IBUS_PACKET_SIZE {
			continue
		}
		pos = 0

		if !checksumOK(frame[:]) {
			continue
		}
		r.apply(frame[:])
	}
}

func checksumOK(frame []byte) bool {
	var sum uint16
	n := len(frame) - 2
	for _, b := range frame[:n] {
		sum += uint16(b)
	}
	want := uint16(frame[n]) | uint16(frame[n+1])<<8
	return 0xffff-sum == want
}

// apply publishes one decoded frame.
func (r *receiver) apply(frame []byte) {
	ch := func(i int) uint16 {
		return uint16(frame[2+2*i]) | uint16(frame[3+2*i])<<8
	}

	in := hal.StickInputs{
		Throttle:   stickByte(ch(CH_THROTTLE)),
		Roll:       stickByte(ch(CH_ROLL)),
		Pitch:      stickByte(ch(CH_PITCH)),
		Yaw:        stickByte(ch(CH_YAW)),
		ModeSwitch: ch(CH_SWITCH) > 1500,
		ModePot:    stickByte(ch(CH_POT)),
	}

	r.mu.Lock()
	r.in = in
	r.lastFrame = time.Now()
	r.mu.Unlock()
}

// stickByte maps the 1000 to 2000 microsecond range onto the byte
// range the core works in. 1500 lands exactly on the 0x80 centre.
func stickByte(v uint16) uint8 {
	if v < 1000 {
		return 0
	}
	if v > 2000 {
		return 255
	}
	return uint8((uint32(v-1000)*255 + 500) / 1000)
}
