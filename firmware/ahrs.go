//go:build tinygo

package main

import (
	"sync"
	"time"

	"github.com/openaero/quadx/pkg/hal"
)

const (
	// AHRS_PERIOD is the integration step.
	AHRS_PERIOD = 10 * time.Millisecond
	// CAL_SAMPLES is how many scans the zero-rate calibration averages.
	CAL_SAMPLES = 32
)

// ahrs keeps attitude by integrating the gyro rates against the
// zero-rate point measured at start. The angle scale is uncalibrated
// counts and drifts with gyro bias.
// TODO: fuse the compass accelerometer readings to bleed off the drift.
type ahrs struct {
	adc *adc

	mu  sync.Mutex
	att hal.Attitude

	center           [3]uint16
	pitch, roll, yaw int32
}

var _ hal.AHRS = (*ahrs)(nil)

func newAHRS(a *adc) *ahrs {
	return &ahrs{adc: a}
}

// Start averages the zero-rate point, then integrates in the
// background. The airframe must hold still while it runs.
func (a *ahrs) Start() {
	var sums [3]uint32
	for i := 0; i < CAL_SAMPLES; i++ {
		for axis := 0; axis < 3; axis++ {
			sums[axis] += uint32(a.adc.Value(axis))
		}
		time.Sleep(SAMPLE_INTERVAL)
	}
	for axis := range a.center {
		a.center[axis] = uint16(sums[axis] / CAL_SAMPLES)
	}

	go a.loop()
}

func (a *ahrs) Snapshot() hal.Attitude {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.att
}

func (a *ahrs) loop() {
	for {
		time.Sleep(AHRS_PERIOD)
		a.step()
	}
}

// step folds one gyro reading into the attitude. The scan stores gyro
// channels at double the one-shot scale, so the diff halves back.
func (a *ahrs) step() {
	var rate [3]int16
	for axis := 0; axis < 3; axis++ {
		rate[axis] = int16(a.adc.Value(axis)-a.center[axis]) / 2
	}

	a.pitch += int32(rate[0]) << 8
	a.roll += int32(rate[1]) << 8
	a.yaw += int32(rate[2])

	a.mu.Lock()
	a.att = hal.Attitude{
		Pitch:     a.pitch,
		Roll:      a.roll,
		Yaw:       int16(a.yaw),
		PitchRate: rate[0],
		RollRate:  rate[1],
		YawRate:   rate[2],
	}
	a.mu.Unlock()
}
