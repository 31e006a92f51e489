package pilot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openaero/quadx/pkg/hal"
)

func TestEase(t *testing.T) {
	tests := []struct {
		name string
		e    int16
		want int16
	}{
		{"zero", 0, 0},
		{"small error quarter scale", 512, 128},
		{"small negative quarter scale", -512, -128},
		{"band edge soft limits", 0x400, 0x400 - 0x300},
		{"large error soft limits", 2048, 2048 - 0x300},
		{"large negative soft limits", -2048, -2048 + 0x300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ease(tt.e))
		})
	}
}

func TestUpdateControl_Mixing(t *testing.T) {
	hover := hal.StickInputs{Throttle: 0x40, Roll: 0x80, Pitch: 0x80, Yaw: 0x80}

	tests := []struct {
		name   string
		att    hal.Attitude
		in     hal.StickInputs
		modes  []Mode
		setYaw int16
		want   [NumRotors]uint16
	}{
		{
			name: "level hover spins all rotors equally",
			in:   hover,
			want: [NumRotors]uint16{8192, 8192, 8192, 8192},
		},
		{
			name: "small pitch error corrects at quarter scale",
			att:  hal.Attitude{Pitch: 512 << 16},
			in:   hover,
			want: [NumRotors]uint16{8064, 8320, 8064, 8320},
		},
		{
			name: "large pitch error is soft limited",
			att:  hal.Attitude{Pitch: 2048 << 16},
			in:   hover,
			want: [NumRotors]uint16{6912, 9472, 6912, 9472},
		},
		{
			name: "pitch rate damps the correction",
			att:  hal.Attitude{PitchRate: 400},
			in:   hover,
			want: [NumRotors]uint16{8167, 8217, 8167, 8217},
		},
		{
			name: "roll error splits the left and right pairs",
			att:  hal.Attitude{Roll: 512 << 16},
			in:   hover,
			want: [NumRotors]uint16{8064, 8064, 8320, 8320},
		},
		{
			name: "negated roll error swaps the pairs",
			att:  hal.Attitude{Roll: -512 << 16},
			in:   hover,
			want: [NumRotors]uint16{8320, 8320, 8064, 8064},
		},
		{
			name:  "heading hold clamps the yaw authority",
			att:   hal.Attitude{Yaw: 5000},
			in:    hover,
			modes: []Mode{ModeHeadingHold},
			want:  [NumRotors]uint16{10240, 6144, 6144, 10240},
		},
		{
			name:   "yaw error wraps the short way around",
			att:    hal.Attitude{Yaw: 32000},
			in:     hover,
			modes:  []Mode{ModeHeadingHold},
			setYaw: -32000,
			want:   [NumRotors]uint16{6656, 9728, 9728, 6656},
		},
		{
			name: "yaw stick steers directly without heading hold",
			in:   hal.StickInputs{Throttle: 0x40, Roll: 0x80, Pitch: 0x80, Yaw: 0xc0},
			want: [NumRotors]uint16{6144, 10240, 10240, 6144},
		},
		{
			name:  "pan tilt flies the sticks as centred",
			in:    hal.StickInputs{Throttle: 0x40, Roll: 0x00, Pitch: 0xff, Yaw: 0xff},
			modes: []Mode{ModePanTilt},
			want:  [NumRotors]uint16{8192, 8192, 8192, 8192},
		},
		{
			name: "idle throttle clamps at zero",
			att:  hal.Attitude{Pitch: 2048 << 16},
			in:   hal.StickInputs{Throttle: 0, Roll: 0x80, Pitch: 0x80, Yaw: 0x80},
			want: [NumRotors]uint16{0, 1280, 0, 1280},
		},
		{
			name: "full throttle clamps at the ceiling",
			in:   hal.StickInputs{Throttle: 0xff, Roll: 0x80, Pitch: 0x80, Yaw: 0x80},
			want: [NumRotors]uint16{32000, 32000, 32000, 32000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, b := newControlPilot(t)
			b.ahrs.SetAttitude(tt.att)
			b.rx.Set(tt.in)
			for _, m := range tt.modes {
				p.modes.set(m, true)
			}
			p.setYaw = tt.setYaw

			p.updateControl()

			var got [NumRotors]uint16
			for ch := range got {
				got[ch] = b.acts.Get(ch)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateControl_YawSetpointIntegrates(t *testing.T) {
	p, b := newControlPilot(t)
	p.modes.set(ModeHeadingHold, true)
	b.rx.Set(hal.StickInputs{Throttle: 0x40, Roll: 0x80, Pitch: 0x80, Yaw: 0xff})

	p.updateControl()
	assert.Equal(t, int16(508), p.setYaw)

	var got [NumRotors]uint16
	for ch := range got {
		got[ch] = b.acts.Get(ch)
	}
	assert.Equal(t, [NumRotors]uint16{7684, 8700, 8700, 7684}, got)

	p.updateControl()
	assert.Equal(t, int16(1016), p.setYaw)
}

// Disabling heading hold parks the setpoint on the measured heading,
// so re-enabling it starts from zero yaw error.
func TestUpdateControl_HeadingHoldReengagesAtCurrentYaw(t *testing.T) {
	p, b := newControlPilot(t)
	b.ahrs.SetAttitude(hal.Attitude{Yaw: 5000})
	b.rx.Set(hal.StickInputs{Throttle: 0x40, Roll: 0x80, Pitch: 0x80, Yaw: 0x80})
	p.setYaw = 1234

	p.updateControl()
	assert.Equal(t, int16(5000), p.setYaw)

	p.modes.set(ModeHeadingHold, true)
	p.updateControl()
	for ch := 0; ch < NumRotors; ch++ {
		assert.Equal(t, uint16(8192), b.acts.Get(ch), "rotor %d", ch)
	}
}
