// Package config holds the calibration and tuning data shared by the
// flight core, the simulator and the host tools. Defaults reproduce
// the reference airframe, so a missing file flies the stock unit.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Power       PowerConfig       `yaml:"power"`
	Calibration CalibrationConfig `yaml:"calibration"`
	SelfTest    SelfTestConfig    `yaml:"self_test"`
	Sim         SimConfig         `yaml:"sim"`
}

// SerialConfig contains the console link configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// PowerConfig contains the battery and temperature conversion factors.
// Battery volts = counts * vref * (top+bottom) / (1024 * 100 * bottom),
// temperature = (counts - offset) * scale / 1024.
type PowerConfig struct {
	VRefCentivolts uint32 `yaml:"vref_centivolts"` // ADC reference in hundredths of a volt
	DividerTop     uint32 `yaml:"divider_top"`     // battery divider legs, relative units
	DividerBottom  uint32 `yaml:"divider_bottom"`
	TempOffset     uint16 `yaml:"temp_offset"` // ADC counts at zero output
	TempScale      uint32 `yaml:"temp_scale"`  // internal reference in millivolts
}

// CalibrationConfig contains the sensor calibration and the self-test
// accept bands. The gyro window is open, a zero-rate sample must sit
// strictly inside it; the magnitude bands accept their edge values.
type CalibrationConfig struct {
	MagOffsets      [3]int16 `yaml:"mag_offsets"`      // per-axis magnetometer zero
	CompassRevision uint8    `yaml:"compass_revision"` // expected hardware revision byte

	GyroMin  uint16 `yaml:"gyro_min"` // zero-rate window, doubled ADC counts
	GyroMax  uint16 `yaml:"gyro_max"`
	MagMin   uint32 `yaml:"mag_min"` // field magnitude band
	MagMax   uint32 `yaml:"mag_max"`
	AccelMin uint32 `yaml:"accel_min"` // averaged magnitude band, halved counts
	AccelMax uint32 `yaml:"accel_max"`
}

// SelfTestConfig contains the boot sequence timing and thresholds.
type SelfTestConfig struct {
	BootDelay       time.Duration `yaml:"boot_delay"`        // wait for a terminal to attach
	AccelSettle     time.Duration `yaml:"accel_settle"`      // spacing between accelerometer samples
	ThrottleIdleMax uint8         `yaml:"throttle_idle_max"` // highest throttle accepted as idle
}

// SimConfig contains the simulated airframe parameters.
type SimConfig struct {
	UpdateRate    time.Duration `yaml:"update_rate"`    // estimator step
	GyroCenter    uint16        `yaml:"gyro_center"`    // zero-rate counts, doubled scale
	BatteryCounts uint16        `yaml:"battery_counts"` // battery channel reading
	TempCounts    uint16        `yaml:"temp_counts"`    // temperature channel reading
	MagField      [3]int16      `yaml:"mag_field"`      // raw bench field per axis
	AccelG        int16         `yaml:"accel_g"`        // raw vertical axis at rest
	NoiseAmp      float32       `yaml:"noise_amp"`      // attitude noise, angle units
	TorqueGain    float32       `yaml:"torque_gain"`    // rotor imbalance to angular accel
	Damping       float32       `yaml:"damping"`        // rate decay, 1/s
}

// Default returns the configuration of the reference airframe.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Power: PowerConfig{
			VRefCentivolts: 323,
			DividerTop:     991,
			DividerBottom:  241,
			TempOffset:     269,
			TempScale:      1100,
		},
		Calibration: CalibrationConfig{
			MagOffsets:      [3]int16{0, 0, 0},
			CompassRevision: 0x02,
			GyroMin:         0x2a0,
			GyroMax:         0x350,
			MagMin:          300,
			MagMax:          600,
			AccelMin:        0x3f00,
			AccelMax:        0x4070,
		},
		SelfTest: SelfTestConfig{
			BootDelay:       4 * time.Second,
			AccelSettle:     20 * time.Millisecond,
			ThrottleIdleMax: 5,
		},
		Sim: SimConfig{
			UpdateRate:    10 * time.Millisecond,
			GyroCenter:    0x2fb,
			BatteryCounts: 781,
			TempCounts:    292,
			MagField:      [3]int16{320, 280, -40},
			AccelG:        16396,
			NoiseAmp:      12,
			TorqueGain:    0.02,
			Damping:       2.0,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist
// or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values
// if missing. Calibration zeros mean "unset": a band edge of zero
// would either always or never trip, so the stock value backfills.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Power.VRefCentivolts == 0 {
		c.Power.VRefCentivolts = def.Power.VRefCentivolts
	}
	if c.Power.DividerTop == 0 {
		c.Power.DividerTop = def.Power.DividerTop
	}
	if c.Power.DividerBottom == 0 {
		c.Power.DividerBottom = def.Power.DividerBottom
	}
	if c.Power.TempOffset == 0 {
		c.Power.TempOffset = def.Power.TempOffset
	}
	if c.Power.TempScale == 0 {
		c.Power.TempScale = def.Power.TempScale
	}

	if c.Calibration.CompassRevision == 0 {
		c.Calibration.CompassRevision = def.Calibration.CompassRevision
	}
	if c.Calibration.GyroMin == 0 {
		c.Calibration.GyroMin = def.Calibration.GyroMin
	}
	if c.Calibration.GyroMax == 0 {
		c.Calibration.GyroMax = def.Calibration.GyroMax
	}
	if c.Calibration.MagMin == 0 {
		c.Calibration.MagMin = def.Calibration.MagMin
	}
	if c.Calibration.MagMax == 0 {
		c.Calibration.MagMax = def.Calibration.MagMax
	}
	if c.Calibration.AccelMin == 0 {
		c.Calibration.AccelMin = def.Calibration.AccelMin
	}
	if c.Calibration.AccelMax == 0 {
		c.Calibration.AccelMax = def.Calibration.AccelMax
	}

	if c.SelfTest.AccelSettle == 0 {
		c.SelfTest.AccelSettle = def.SelfTest.AccelSettle
	}

	if c.Sim.UpdateRate == 0 {
		c.Sim.UpdateRate = def.Sim.UpdateRate
	}
	if c.Sim.GyroCenter == 0 {
		c.Sim.GyroCenter = def.Sim.GyroCenter
	}
	if c.Sim.BatteryCounts == 0 {
		c.Sim.BatteryCounts = def.Sim.BatteryCounts
	}
	if c.Sim.TempCounts == 0 {
		c.Sim.TempCounts = def.Sim.TempCounts
	}
	if c.Sim.MagField == ([3]int16{}) {
		c.Sim.MagField = def.Sim.MagField
	}
	if c.Sim.AccelG == 0 {
		c.Sim.AccelG = def.Sim.AccelG
	}
	if c.Sim.TorqueGain == 0 {
		c.Sim.TorqueGain = def.Sim.TorqueGain
	}
	if c.Sim.Damping == 0 {
		c.Sim.Damping = def.Sim.Damping
	}
}
