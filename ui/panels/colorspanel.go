package panels

import (
	"fmt"
	"log"
	"strings"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"cardforge/internal/app"
	"cardforge/internal/card"
	"cardforge/internal/eyedropper"
	"cardforge/pkg/colorutil"
	"cardforge/ui/canvas"
)

// ColorControl edits one card colour: a hex entry, a swatch and an
// eyedropper button.
type ColorControl struct {
	field   card.ColorField
	state   *app.State
	overlay *canvas.EyedropperOverlay
	window  fyne.Window

	entry     *widget.Entry
	swatch    *fynecanvas.Rectangle
	pick      *widget.Button
	container fyne.CanvasObject
}

func newColorControl(field card.ColorField, state *app.State, overlay *canvas.EyedropperOverlay) *ColorControl {
	cc := &ColorControl{field: field, state: state, overlay: overlay}

	cc.swatch = newSwatch(40)

	cc.entry = widget.NewEntry()
	cc.entry.SetPlaceHolder("#000000")
	cc.entry.TextStyle = fyne.TextStyle{Monospace: true}
	cc.entry.Validator = func(s string) error {
		if _, ok := colorutil.Input(s); !ok {
			return colorutil.ErrInvalidHex
		}
		return nil
	}
	cc.entry.OnChanged = cc.typed

	cc.pick = widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), cc.startPick)
	if overlay == nil {
		cc.pick.Disable()
	}

	row := container.NewBorder(nil, nil, cc.swatch, cc.pick, cc.entry)
	cc.container = labeled(field.String(), row)
	return cc
}

// typed stores the entry text when it resolves to a colour; partial input
// is left alone until it does.
func (cc *ColorControl) typed(text string) {
	h, ok := colorutil.Input(text)
	if !ok {
		return
	}
	if err := cc.state.SetColor(cc.field, string(h)); err != nil {
		log.Printf("Panels: %s: %v", cc.field, err)
		return
	}
	cc.paint(h)
}

func (cc *ColorControl) startPick() {
	err := cc.overlay.Begin(func(res eyedropper.Result) {
		if res.OK {
			cc.state.PickColor(cc.field, res.Color)
		}
	})
	if err != nil {
		log.Printf("Panels: eyedropper failed: %v", err)
		if cc.window != nil {
			dialog.ShowError(fmt.Errorf("failed to start eyedropper: %w", err), cc.window)
		}
	}
}

// Value returns the colour the entry resolves to.
func (cc *ColorControl) Value() (colorutil.Hex, bool) {
	return colorutil.Input(cc.entry.Text)
}

// SetValue shows h without storing it again.
func (cc *ColorControl) SetValue(h colorutil.Hex) {
	if cur, ok := cc.Value(); !ok || cur != h {
		setEntry(cc.entry, strings.ToLower(string(h)))
	}
	cc.paint(h)
}

func (cc *ColorControl) paint(h colorutil.Hex) {
	cc.swatch.FillColor = h.NRGBA()
	cc.swatch.Refresh()
}

// ColorsPanel holds one ColorControl per card colour.
type ColorsPanel struct {
	state     *app.State
	controls  map[card.ColorField]*ColorControl
	container fyne.CanvasObject
}

// NewColorsPanel creates the colour controls. overlay may be nil, which
// disables the eyedropper buttons.
func NewColorsPanel(state *app.State, overlay *canvas.EyedropperOverlay) *ColorsPanel {
	cp := &ColorsPanel{
		state:    state,
		controls: make(map[card.ColorField]*ColorControl),
	}

	box := container.NewVBox()
	for _, f := range card.ColorFields {
		cc := newColorControl(f, state, overlay)
		cp.controls[f] = cc
		box.Add(cc.container)
	}
	hint := widget.NewLabel("Use the dropper to take a colour from the card.")
	hint.Wrapping = fyne.TextWrapWord
	hint.Importance = widget.LowImportance
	box.Add(hint)
	cp.container = box

	state.On(app.EventColorPicked, func(data interface{}) {
		if pick, ok := data.(app.ColorPick); ok {
			if cc := cp.controls[pick.Field]; cc != nil {
				cc.SetValue(pick.Color)
			}
		}
	})
	return cp
}

// Container returns the panel container.
func (cp *ColorsPanel) Container() fyne.CanvasObject {
	return cp.container
}

// Control returns the control for field.
func (cp *ColorsPanel) Control(field card.ColorField) *ColorControl {
	return cp.controls[field]
}

// SetWindow sets the parent window for dialogs.
func (cp *ColorsPanel) SetWindow(w fyne.Window) {
	for _, cc := range cp.controls {
		cc.window = w
	}
}

// Sync shows the colours of c.
func (cp *ColorsPanel) Sync(c *card.Card) {
	for f, cc := range cp.controls {
		cc.SetValue(c.Colors.Get(f))
	}
}
