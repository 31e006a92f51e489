//go:build tinygo

package main

import (
	"machine"

	"github.com/openaero/quadx/pkg/hal"
)

// i2c adapts the hardware I2C peripheral to the compass bus contract.
type i2c struct {
	bus *machine.I2C
}

var _ hal.Bus = (*i2c)(nil)

func newBus() *i2c {
	machine.I2C0.Configure(machine.I2CConfig{})
	return &i2c{bus: machine.I2C0}
}

func (b *i2c) Read(addr, reg uint8, p []byte) error {
	return b.bus.ReadRegister(addr, reg, p)
}
