package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, uint32(323), cfg.Power.VRefCentivolts)
	assert.Equal(t, uint32(991), cfg.Power.DividerTop)
	assert.Equal(t, uint32(241), cfg.Power.DividerBottom)
	assert.Equal(t, uint16(269), cfg.Power.TempOffset)
	assert.Equal(t, uint8(0x02), cfg.Calibration.CompassRevision)
	assert.Equal(t, uint16(0x2a0), cfg.Calibration.GyroMin)
	assert.Equal(t, uint16(0x350), cfg.Calibration.GyroMax)
	assert.Equal(t, uint32(300), cfg.Calibration.MagMin)
	assert.Equal(t, uint32(600), cfg.Calibration.MagMax)
	assert.Equal(t, uint32(0x3f00), cfg.Calibration.AccelMin)
	assert.Equal(t, uint32(0x4070), cfg.Calibration.AccelMax)
	assert.Equal(t, 4*time.Second, cfg.SelfTest.BootDelay)
	assert.Equal(t, 20*time.Millisecond, cfg.SelfTest.AccelSettle)
	assert.Equal(t, uint8(5), cfg.SelfTest.ThrottleIdleMax)
	assert.Equal(t, uint16(0x2fb), cfg.Sim.GyroCenter)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, uint8(0x02), cfg.Calibration.CompassRevision)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB1"
  baud_rate: 57600

power:
  vref_centivolts: 330
  divider_top: 1000
  divider_bottom: 250

calibration:
  mag_offsets: [12, -7, 30]
  compass_revision: 3
  gyro_min: 640
  gyro_max: 900

self_test:
  boot_delay: 1s
  accel_settle: 5ms
  throttle_idle_max: 8
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, uint32(330), cfg.Power.VRefCentivolts)
	assert.Equal(t, uint32(1000), cfg.Power.DividerTop)
	assert.Equal(t, uint32(250), cfg.Power.DividerBottom)
	assert.Equal(t, [3]int16{12, -7, 30}, cfg.Calibration.MagOffsets)
	assert.Equal(t, uint8(3), cfg.Calibration.CompassRevision)
	assert.Equal(t, uint16(640), cfg.Calibration.GyroMin)
	assert.Equal(t, uint16(900), cfg.Calibration.GyroMax)
	assert.Equal(t, time.Second, cfg.SelfTest.BootDelay)
	assert.Equal(t, 5*time.Millisecond, cfg.SelfTest.AccelSettle)
	assert.Equal(t, uint8(8), cfg.SelfTest.ThrottleIdleMax)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, uint16(0x2a0), cfg.Calibration.GyroMin)
	assert.Equal(t, uint32(0x4070), cfg.Calibration.AccelMax)
	assert.Equal(t, uint16(0x2fb), cfg.Sim.GyroCenter)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Calibration.MagOffsets = [3]int16{5, 6, -7}
	cfg.SelfTest.BootDelay = 250 * time.Millisecond

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, [3]int16{5, 6, -7}, loaded.Calibration.MagOffsets)
	assert.Equal(t, 250*time.Millisecond, loaded.SelfTest.BootDelay)
}
