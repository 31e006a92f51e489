//go:build tinygo

package main

import "machine"

const (
	// ESC outputs, all four on TCC0 so they share one 20ms period
	PIN_ESC1 = machine.D1
	PIN_ESC2 = machine.D2
	PIN_ESC3 = machine.D3
	PIN_ESC4 = machine.D6

	// ADC pins
	PIN_GYRO_X  = machine.A0
	PIN_GYRO_Y  = machine.A1
	PIN_GYRO_Z  = machine.A2
	PIN_BATTERY = machine.A3
	PIN_TEMP    = machine.A4

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Serial configuration
	UART_BAUD_RATE = 115200 // Console
	IBUS_BAUD_RATE = 115200 // Receiver
)
