package airsim

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaero/quadx/pkg/cmps09"
	"github.com/openaero/quadx/pkg/config"
	"github.com/openaero/quadx/pkg/hal"
	"github.com/openaero/quadx/pkg/pilot"
)

func simConfig() *config.Config {
	cfg := config.Default()
	cfg.SelfTest.BootDelay = 0
	cfg.SelfTest.AccelSettle = 0
	cfg.Sim.NoiseAmp = 0
	return cfg
}

func TestBoard_FlightCoreBootsOnSim(t *testing.T) {
	cfg := simConfig()
	var out bytes.Buffer
	b := New(cfg, &out, strings.NewReader(""))
	defer b.Close()

	p := pilot.New(b.Drivers(), cfg)
	require.NoError(t, p.Boot(context.Background()))

	assert.True(t, b.Actuators.Running())
	assert.Contains(t, out.String(), "Checking if gyro readings in range.. yep")
	assert.Contains(t, out.String(), "Receiver signal: yep")
	assert.Contains(t, out.String(), "AHRS loop and actuator signals are running")
}

func TestBoard_ReloadedRevisionTripsSelfTest(t *testing.T) {
	cfg := simConfig()
	var out bytes.Buffer
	b := New(cfg, &out, strings.NewReader(""))
	defer b.Close()
	b.Bus.LoadCompass(0x01, cfg.Sim.MagField, [3]int16{0, 0, cfg.Sim.AccelG})

	p := pilot.New(b.Drivers(), cfg)
	err := p.Boot(context.Background())
	require.ErrorIs(t, err, pilot.ErrSelfTest)
	assert.True(t, p.Faulted())
	assert.True(t, strings.HasSuffix(out.String(), "ERROR"))
	assert.False(t, b.Actuators.Running())
}

func TestADC_GyroChannelsConvertAtHalfScale(t *testing.T) {
	a := NewADC(config.Default().Sim)

	assert.Equal(t, uint16(0x2fb), a.Value(hal.ChanGyroX))
	assert.Equal(t, uint16(0x17d), a.Convert(hal.ChanGyroX))
	assert.Equal(t, uint16(781), a.Value(hal.ChanBattery))
	assert.Equal(t, uint16(781), a.Convert(hal.ChanBattery))

	a.Set(hal.ChanGyroY, 0x400)
	assert.Equal(t, uint16(0x400), a.Value(hal.ChanGyroY))
	assert.Equal(t, uint16(0x200), a.Convert(hal.ChanGyroY))

	called := false
	a.ConvertAll(func() { called = true })
	assert.True(t, called)
}

func TestBus_CompassRoundTrip(t *testing.T) {
	bus := NewBus(cmps09.DefaultAddr)
	bus.LoadCompass(0x02, [3]int16{320, 280, -40}, [3]int16{0, 0, 16396})
	dev := cmps09.New(bus, [3]int16{})

	rev, err := dev.Revision()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x02), rev)

	mag, err := dev.Mag()
	require.NoError(t, err)
	assert.Equal(t, [3]int16{320, 280, -40}, mag)

	accel, err := dev.Accel()
	require.NoError(t, err)
	assert.Equal(t, [3]int16{0, 0, 16396}, accel)
}

func TestBus_UnknownAddress(t *testing.T) {
	bus := NewBus(cmps09.DefaultAddr)
	err := bus.Read(0x42, 0, make([]byte, 1))
	assert.ErrorContains(t, err, "no device at 0x42")
}

func TestConsole_WritesThrough(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, strings.NewReader(""))

	c.WriteString("trim:")
	c.WriteDec(7)
	c.WriteEOL()

	assert.Equal(t, "trim:7 \r\n", out.String())
}

func TestConsole_PumpDeliversBytes(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, strings.NewReader("qa"))

	var got []byte
	c.SetInputHandler(func(b byte) { got = append(got, b) })

	err := c.Pump(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{'q', 'a'}, got)
}

func TestConsole_PumpHonoursCancellation(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, strings.NewReader("never read"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Pump(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransmitter_StartsStale(t *testing.T) {
	tx := NewTransmitter()
	assert.True(t, tx.NoSignal())
	assert.Equal(t, uint8(0x80), tx.Inputs().Roll)

	tx.Frame(hal.StickInputs{Throttle: 42, Roll: 0x80, Pitch: 0x80, Yaw: 0x80})
	assert.False(t, tx.NoSignal())
	assert.Equal(t, uint8(42), tx.Inputs().Throttle)

	tx.Off()
	assert.True(t, tx.NoSignal())
	assert.Equal(t, uint8(42), tx.Inputs().Throttle)
}

func TestActuators_FixedMountCount(t *testing.T) {
	a := NewActuators()
	require.NoError(t, a.Init(4))
	assert.Error(t, a.Init(3))

	a.Set(1, 9000)
	a.Set(7, 123)
	assert.Equal(t, [4]uint16{0, 9000, 0, 0}, a.Commands())

	assert.False(t, a.Running())
	a.Start()
	assert.True(t, a.Running())
	a.Stop()
	assert.False(t, a.Running())
}
