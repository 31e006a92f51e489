package main

import (
	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/all" // Empty import needed to initialize embd library.
	_ "github.com/kidoman/embd/host/rpi" // Empty import needed to initialize embd library.

	"github.com/openaero/quadx/pkg/hal"
)

// i2c adapts the host I2C bus to the compass bus contract.
type i2c struct {
	bus embd.I2CBus
}

var _ hal.Bus = (*i2c)(nil)

// newI2C opens I2C bus 1, the one on the Pi header.
func newI2C() *i2c {
	return &i2c{bus: embd.NewI2CBus(1)}
}

func (b *i2c) Read(addr, reg uint8, p []byte) error {
	return b.bus.ReadFromReg(addr, reg, p)
}

func (b *i2c) Close() error {
	return b.bus.Close()
}
