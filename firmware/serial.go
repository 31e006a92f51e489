//go:build tinygo

package main

import (
	"machine"
	"sync"
	"time"

	"github.com/openaero/quadx/pkg/hal"
)

var uart = machine.UART0

// console is the UART console. Writes go straight out; a pump
// goroutine feeds received bytes to the input handler.
type console struct {
	hal.TextWriter

	mu sync.Mutex
	fn func(b byte)
}

var _ hal.Serial = (*console)(nil)

func newConsole() *console {
	uart.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})

	c := &console{}
	c.TextWriter = hal.TextWriter{W: uart}
	go c.pump()
	return c
}

func (c *console) SetInputHandler(fn func(b byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fn = fn
}

// pump polls the receive buffer and hands each byte to the handler.
func (c *console) pump() {
	for {
		for uart.Buffered() > 0 {
			b, err := uart.ReadByte()
			if err != nil {
				break
			}
			c.mu.Lock()
			fn := c.fn
			c.mu.Unlock()
			if fn != nil {
				fn(b)
			}
		}
		time.Sleep(time.Millisecond)
	}
}
