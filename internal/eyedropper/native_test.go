package eyedropper

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge/pkg/colorutil"
)

func TestParseCSSColor(t *testing.T) {
	tests := []struct {
		in   string
		want colorutil.Hex
		ok   bool
	}{
		{"#AABBCC", "#aabbcc", true},
		{"#abc", "#aabbcc", true},
		{"#ffff00000000", "#ff0000", true},
		{"rgb(17,34,51)", "#112233", true},
		{"rgba(17,34,51,0.5)", "#112233", true},
		{"  rgb(0,0,0)\n", "#000000", true},
		{"rgb(300,0,0)", "", false},
		{"red", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := parseCSSColor(tt.in)
		if !tt.ok {
			assert.ErrorIs(t, err, colorutil.ErrInvalidHex, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseAppleColor(t *testing.T) {
	got, err := parseAppleColor("65535, 0, 32896")
	require.NoError(t, err)
	assert.Equal(t, colorutil.Hex("#ff0080"), got)

	_, err = parseAppleColor("User canceled.")
	assert.ErrorIs(t, err, colorutil.ErrInvalidHex)
}

func shellPicker(t *testing.T, script string) *SystemPicker {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh")
	}
	return &SystemPicker{Command: "sh", Args: []string{"-c", script}, parse: parseCSSColor}
}

func TestSystemPickerPicks(t *testing.T) {
	p := shellPicker(t, "echo 'rgb(1,2,3)'")
	h, ok, err := p.PickColor(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, colorutil.Hex("#010203"), h)
}

func TestSystemPickerDismissed(t *testing.T) {
	p := shellPicker(t, "exit 1")
	_, ok, err := p.PickColor(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSystemPickerFailure(t *testing.T) {
	p := shellPicker(t, "echo broken >&2; exit 3")
	_, ok, err := p.PickColor(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "broken")

	p = shellPicker(t, "echo nonsense")
	_, _, err = p.PickColor(context.Background())
	assert.ErrorIs(t, err, colorutil.ErrInvalidHex)
}

func TestSystemPickerCancelled(t *testing.T) {
	p := shellPicker(t, "sleep 5")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := p.PickColor(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestNewSystemPickerKnownCommands(t *testing.T) {
	for _, p := range systemPickers() {
		assert.NotEmpty(t, p.Command)
		assert.NotNil(t, p.parse)
	}
}
