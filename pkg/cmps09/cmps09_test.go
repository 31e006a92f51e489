package cmps09

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaero/quadx/pkg/hal"
)

func TestDevice_Revision(t *testing.T) {
	bus := hal.NewMockBus()
	bus.SetRegs(DefaultAddr, 0, 0x02)

	d := New(bus, [3]int16{})
	rev, err := d.Revision()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x02), rev)
}

func TestDevice_Mag(t *testing.T) {
	bus := hal.NewMockBus()
	// x=0x0140=320, y=0x0118=280, z=0xffd8=-40
	bus.SetRegs(DefaultAddr, 10, 0x01, 0x40, 0x01, 0x18, 0xff, 0xd8)

	d := New(bus, [3]int16{})
	mag, err := d.Mag()
	require.NoError(t, err)
	assert.Equal(t, [3]int16{320, 280, -40}, mag)
}

func TestDevice_Accel(t *testing.T) {
	bus := hal.NewMockBus()
	// x=0, y=0, z=0x400c=16396
	bus.SetRegs(DefaultAddr, 16, 0x00, 0x00, 0x00, 0x00, 0x40, 0x0c)

	d := New(bus, [3]int16{})
	accel, err := d.Accel()
	require.NoError(t, err)
	assert.Equal(t, [3]int16{0, 0, 16396}, accel)
}

func TestDevice_MagOffsets(t *testing.T) {
	d := New(hal.NewMockBus(), [3]int16{15, -30, 7})
	assert.Equal(t, [3]int16{15, -30, 7}, d.MagOffsets())
}

func TestDevice_BusError(t *testing.T) {
	bus := hal.NewMockBus()
	busErr := errors.New("arbitration lost")
	bus.FailWith(busErr)

	d := New(bus, [3]int16{})

	_, err := d.Revision()
	assert.ErrorIs(t, err, busErr)

	_, err = d.Mag()
	assert.ErrorIs(t, err, busErr)

	_, err = d.Accel()
	assert.ErrorIs(t, err, busErr)
}
