package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/lucasb-eyer/go-colorful"

	"cardforge/pkg/colorutil"
)

// DefaultAccent matches the default card colours.
const DefaultAccent colorutil.Hex = "#fbbf24"

// CardForgeTheme tints the default fyne theme with a card accent colour.
type CardForgeTheme struct {
	Accent colorutil.Hex
}

var _ fyne.Theme = (*CardForgeTheme)(nil)

func (t *CardForgeTheme) accent() colorful.Color {
	h := t.Accent
	if !h.Valid() {
		h = DefaultAccent
	}
	c, _ := colorful.Hex(string(h))
	return c
}

func withAlpha(c colorful.Color, a uint8) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

func (t *CardForgeTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	acc := t.accent()
	switch name {
	case theme.ColorNamePrimary:
		return withAlpha(acc.BlendLab(colorful.Color{}, 0.1), 0xFF)
	case theme.ColorNameSelection:
		return withAlpha(acc, 0x80)
	case theme.ColorNameFocus:
		return withAlpha(acc, 0x60)
	case theme.ColorNameHyperlink:
		return withAlpha(acc.BlendLab(colorful.Color{}, 0.45), 0xFF)
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *CardForgeTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *CardForgeTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *CardForgeTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameInputRadius, theme.SizeNameSelectionRadius:
		return 6
	case theme.SizeNameSeparatorThickness:
		return 2
	default:
		return theme.DefaultTheme().Size(name)
	}
}
