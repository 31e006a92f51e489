//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"

	"github.com/openaero/quadx/pkg/cmps09"
	"github.com/openaero/quadx/pkg/config"
	"github.com/openaero/quadx/pkg/pilot"
)

// monitor reports the reset status words shown in the boot banner.
type monitor struct{}

func (monitor) StatusRegisters() (sr, cr uint16) {
	// TODO: surface PM RCAUSE here once the samd21 device registers
	// are wired through.
	return 0, 0
}

func main() {
	cfg := config.Default()

	adc := newADC()
	board := pilot.Board{
		ADC:       adc,
		Serial:    newConsole(),
		Actuators: &escBank{},
		Receiver:  newReceiver(),
		Compass:   cmps09.New(newBus(), cfg.Calibration.MagOffsets),
		AHRS:      newAHRS(adc),
		Monitor:   monitor{},
	}

	p := pilot.New(board, cfg)
	ctx := context.Background()

	if err := p.Boot(ctx); err != nil {
		// The failing check already narrated on the console.
		select {}
	}

	_ = p.Run(ctx)

	// Run only returns if the core latches. Cut the outputs and park.
	board.Actuators.Stop()
	select {}
}
