package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRGB(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    Hex
	}{
		{12, 34, 56, "#0c2238"},
		{255, 0, 0, "#ff0000"},
		{0, 0, 0, "#000000"},
		{255, 255, 255, "#ffffff"},
		{251, 191, 36, "#fbbf24"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromRGB(tt.r, tt.g, tt.b))
	}
}

func TestFromColorDropsAlpha(t *testing.T) {
	h, ok := FromColor(color.NRGBA{R: 12, G: 34, B: 56, A: 128})
	require.True(t, ok)
	assert.Equal(t, Hex("#0c2238"), h)

	_, ok = FromColor(color.NRGBA{R: 12, G: 34, B: 56, A: 0})
	assert.False(t, ok)

	_, ok = FromColor(nil)
	assert.False(t, ok)
}

func TestParseStrict(t *testing.T) {
	h, err := Parse("#FBBF24")
	require.NoError(t, err)
	assert.Equal(t, Hex("#fbbf24"), h)

	for _, bad := range []string{"#fff", "fbbf24", "#fbbf2", "#gggggg", ""} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidHex, bad)
	}
}

func TestParseLooseShortForm(t *testing.T) {
	h, err := ParseLoose("#000")
	require.NoError(t, err)
	assert.Equal(t, HexBlack, h)
}

func TestInput(t *testing.T) {
	h, ok := Input("")
	assert.True(t, ok)
	assert.Equal(t, HexBlack, h)

	_, ok = Input("#12")
	assert.False(t, ok)

	h, ok = Input("#A0b0C0")
	assert.True(t, ok)
	assert.Equal(t, Hex("#a0b0c0"), h)
}

func TestContrasting(t *testing.T) {
	assert.Equal(t, Black, HexWhite.Contrasting())
	assert.Equal(t, White, HexBlack.Contrasting())
}

func TestNRGBA(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 12, G: 34, B: 56, A: 255}, Hex("#0c2238").NRGBA())
	assert.Equal(t, Black, Hex("nope").NRGBA())
}
