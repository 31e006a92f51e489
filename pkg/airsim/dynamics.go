package airsim

import (
	"context"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/openaero/quadx/pkg/config"
	"github.com/openaero/quadx/pkg/hal"
)

// Attitude integration constants. Angles run in the estimator's units,
// 32768 per half turn.
const (
	// levelGain pulls pitch and roll back toward level, 1/s. A real
	// frame has no such luck; it keeps an uncontrolled simulation
	// bounded.
	levelGain = 0.5
	// tiltLimit clamps pitch and roll; past a quarter turn the frame
	// is wrecked anyway and the 16.16 snapshot must not overflow.
	tiltLimit = 8192
	// angleScale converts an angle to the 16.16 snapshot fields.
	angleScale = 65536
)

// Dynamics integrates rotor thrust imbalance into attitude and serves
// it through the estimator contract. Thrust differences across the
// frame's axes produce pitch and roll torque, the diagonal pairs
// produce yaw torque, and rates decay with the configured damping.
type Dynamics struct {
	cfg  config.SimConfig
	acts *Actuators

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	started bool
	att     hal.Attitude

	// Integrator state, attitude units and units per second. Owned by
	// the update goroutine.
	pitch, roll, yaw             float32
	pitchRate, rollRate, yawRate float32
	elapsed                      float32
}

var _ hal.AHRS = (*Dynamics)(nil)

// NewDynamics returns the attitude model at rest and level, driven by
// the commands recorded in acts.
func NewDynamics(cfg config.SimConfig, acts *Actuators) *Dynamics {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dynamics{
		cfg:    cfg,
		acts:   acts,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start launches the update loop. Subsequent calls are no-ops.
func (d *Dynamics) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	go d.run()
}

// Close stops the update loop and waits for it to exit.
func (d *Dynamics) Close() error {
	d.cancel()
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()
	if started {
		<-d.done
	}
	return nil
}

// Snapshot returns the last published attitude frame.
func (d *Dynamics) Snapshot() hal.Attitude {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.att
}

func (d *Dynamics) run() {
	defer close(d.done)
	ticker := time.NewTicker(d.cfg.UpdateRate)
	defer ticker.Stop()
	dt := float32(d.cfg.UpdateRate.Seconds())
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.step(dt)
		}
	}
}

// step advances the model by dt and publishes a snapshot. Rotor
// numbering, top view: 0 front left, 1 front right, 2 rear left,
// 3 rear right, matching the control mixing signs.
func (d *Dynamics) step(dt float32) {
	cmd := d.acts.Commands()
	f := [numRotors]float32{
		float32(cmd[0]), float32(cmd[1]), float32(cmd[2]), float32(cmd[3]),
	}
	pitchTorque := (f[0] + f[2]) - (f[1] + f[3])
	rollTorque := (f[0] + f[1]) - (f[2] + f[3])
	yawTorque := (f[0] + f[3]) - (f[1] + f[2])

	damp := math32.Exp(-d.cfg.Damping * dt)
	d.pitchRate = d.pitchRate*damp + d.cfg.TorqueGain*pitchTorque*dt
	d.rollRate = d.rollRate*damp + d.cfg.TorqueGain*rollTorque*dt
	d.yawRate = d.yawRate*damp + d.cfg.TorqueGain*yawTorque*dt

	d.pitch += d.pitchRate*dt - d.pitch*levelGain*dt
	d.roll += d.rollRate*dt - d.roll*levelGain*dt
	d.yaw += d.yawRate * dt

	d.pitch = math32.Max(-tiltLimit, math32.Min(tiltLimit, d.pitch))
	d.roll = math32.Max(-tiltLimit, math32.Min(tiltLimit, d.roll))
	d.yaw = math32.Mod(d.yaw, 65536)
	if d.yaw >= 32768 {
		d.yaw -= 65536
	} else if d.yaw < -32768 {
		d.yaw += 65536
	}

	d.elapsed += dt
	noisePitch := d.cfg.NoiseAmp * math32.Sin(13*d.elapsed)
	noiseRoll := d.cfg.NoiseAmp * math32.Cos(11*d.elapsed)

	att := hal.Attitude{
		Pitch:     int32((d.pitch + noisePitch) * angleScale),
		Roll:      int32((d.roll + noiseRoll) * angleScale),
		Yaw:       int16(d.yaw),
		PitchRate: int16(d.pitchRate * dt),
		RollRate:  int16(d.rollRate * dt),
		YawRate:   int16(d.yawRate * dt),
	}

	d.mu.Lock()
	d.att = att
	d.mu.Unlock()
}
