package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrims(t *testing.T) {
	tests := []struct {
		name string
		line string
		want [4]uint8
		ok   bool
	}{
		{"initial echo", "0 0 0 0", [4]uint8{0, 0, 0, 0}, true},
		{"first rotor trimmed", "1 0 0 0", [4]uint8{1, 0, 0, 0}, true},
		{"full scale", "255 254 0 17", [4]uint8{255, 254, 0, 17}, true},
		{"extra spacing", "  3  0 0 0 ", [4]uint8{3, 0, 0, 0}, true},
		{"too few fields", "1 2 3", [4]uint8{}, false},
		{"too many fields", "1 2 3 4 5", [4]uint8{}, false},
		{"field out of byte range", "256 0 0 0", [4]uint8{}, false},
		{"negative field", "-1 0 0 0", [4]uint8{}, false},
		{"diagnostic line", "Battery voltage:12.59V", [4]uint8{}, false},
		{"narrative with four words", "Receiver signal NOPE today", [4]uint8{}, false},
		{"empty", "", [4]uint8{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTrims(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Defaults(t *testing.T) {
	c := New("/dev/null", 0, 0)
	assert.Equal(t, DefaultBaudRate, c.baudRate)
	assert.Equal(t, DefaultBufferSize, c.bufSize)
	assert.False(t, c.IsConnected())
}

func TestClient_ConnectBogusPort(t *testing.T) {
	c := New("/nonexistent/ttyXYZ", 0, 0)
	err := c.Connect()
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to open serial port")
	assert.False(t, c.IsConnected())
}

func TestClient_SendRequiresConnection(t *testing.T) {
	c := New("/dev/null", 0, 0)
	err := c.Send(TrimUp[0])
	assert.ErrorContains(t, err, "not connected")
}

func TestClient_CloseWhenNeverConnected(t *testing.T) {
	c := New("/dev/null", 0, 0)
	assert.NoError(t, c.Close())
}

func TestTrimCommandBytes(t *testing.T) {
	assert.Equal(t, [4]byte{'q', 'w', 'e', 'r'}, TrimUp)
	assert.Equal(t, [4]byte{'a', 's', 'd', 'f'}, TrimDown)
}
