// Package colorutil provides shared color utilities for the card editor.
package colorutil

import (
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Common colors used throughout the application.
var (
	Black       = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Transparent = color.NRGBA{}
)

// ErrInvalidHex is returned when a string is not a #rrggbb color.
var ErrInvalidHex = errors.New("invalid hex color")

var strictHex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Hex is an opaque RGB color in lower-case "#rrggbb" form. It never carries
// an alpha channel.
type Hex string

const (
	// HexWhite is the default background when nothing paints a point.
	HexWhite Hex = "#ffffff"
	// HexBlack is what an emptied color field resolves to.
	HexBlack Hex = "#000000"
)

// FromRGB builds a Hex from 8-bit channels.
func FromRGB(r, g, b uint8) Hex {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return Hex(c.Hex())
}

// FromColor converts any color to Hex using its non-premultiplied channels.
// It returns false for fully transparent colors.
func FromColor(c color.Color) (Hex, bool) {
	if c == nil {
		return "", false
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 {
		return "", false
	}
	return FromRGB(n.R, n.G, n.B), true
}

// Parse accepts exactly "#rrggbb" (either case) and normalizes it.
func Parse(s string) (Hex, error) {
	if !strictHex.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return Hex(strings.ToLower(s)), nil
}

// ParseLoose accepts "#rgb" as well as "#rrggbb".
func ParseLoose(s string) (Hex, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return Hex(c.Hex()), nil
}

// Input resolves free text typed into a color field: a valid hex is accepted,
// an empty field resolves to black, anything else is rejected.
func Input(s string) (Hex, bool) {
	if s == "" {
		return HexBlack, true
	}
	h, err := Parse(s)
	if err != nil {
		return "", false
	}
	return h, true
}

// NRGBA returns the color as an opaque color.NRGBA. Invalid values are black.
func (h Hex) NRGBA() color.NRGBA {
	c, err := colorful.Hex(string(h))
	if err != nil {
		return Black
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Valid reports whether h is a well-formed "#rrggbb" value.
func (h Hex) Valid() bool {
	return strictHex.MatchString(string(h))
}

// Contrasting returns black or white, whichever reads better on h.
func (h Hex) Contrasting() color.NRGBA {
	c, err := colorful.Hex(string(h))
	if err != nil {
		return White
	}
	l, _, _ := c.Lab()
	if l > 0.6 {
		return Black
	}
	return White
}

func (h Hex) String() string {
	return string(h)
}
