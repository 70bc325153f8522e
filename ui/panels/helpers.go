package panels

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"cardforge/internal/card"
)

// parseValue reads an HP or damage entry. Blank or non-numeric text is 0.
func parseValue(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return card.ClampValue(v)
}

// stepValue moves v by one spinner step in direction dir (+1 or -1).
func stepValue(v, dir int) int {
	return card.ClampValue(v + dir*card.ValueStep)
}

// validateValue is the entry validator for HP and damage.
func validateValue(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if v != card.ClampValue(v) {
		return fmt.Errorf("must be between 0 and %d", card.MaxValue)
	}
	return nil
}

// valueControl is a numeric entry with step buttons.
type valueControl struct {
	entry     *widget.Entry
	container fyne.CanvasObject
	onChange  func(int)
	syncing   bool
}

func newValueControl(onChange func(int)) *valueControl {
	vc := &valueControl{onChange: onChange}
	vc.entry = widget.NewEntry()
	vc.entry.Validator = validateValue
	vc.entry.OnChanged = func(text string) {
		if vc.syncing || validateValue(text) != nil {
			return
		}
		vc.onChange(parseValue(text))
	}
	minus := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), func() { vc.step(-1) })
	plus := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() { vc.step(1) })
	vc.container = container.NewBorder(nil, nil, minus, plus, vc.entry)
	return vc
}

func (vc *valueControl) Value() int {
	return parseValue(vc.entry.Text)
}

func (vc *valueControl) step(dir int) {
	vc.entry.SetText(strconv.Itoa(stepValue(vc.Value(), dir)))
}

// SetValue shows v without reporting it back, unless the entry already
// reads as v.
func (vc *valueControl) SetValue(v int) {
	if vc.Value() == v {
		return
	}
	vc.syncing = true
	vc.entry.SetText(strconv.Itoa(v))
	vc.syncing = false
}

// setEntry replaces text without firing OnChanged, unless it already matches.
func setEntry(e *widget.Entry, text string) {
	if e.Text == text {
		return
	}
	cb := e.OnChanged
	e.OnChanged = nil
	e.SetText(text)
	e.OnChanged = cb
}

// labeled stacks a bold caption above obj, as every form row does.
func labeled(text string, obj fyne.CanvasObject) fyne.CanvasObject {
	l := widget.NewLabelWithStyle(text, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	return container.NewVBox(l, obj)
}

// optionSelect is a select mapping labels onto values.
type optionSelect struct {
	Select *widget.Select
	values []string
	labels []string
}

func newOptionSelect(values, labels []string, onChange func(value string)) *optionSelect {
	s := &optionSelect{values: values, labels: labels}
	s.Select = widget.NewSelect(labels, func(label string) {
		for i, l := range s.labels {
			if l == label {
				onChange(s.values[i])
				return
			}
		}
	})
	return s
}

// SetValue selects value without calling back.
func (s *optionSelect) SetValue(value string) {
	for i, v := range s.values {
		if v == value {
			if s.Select.Selected == s.labels[i] {
				return
			}
			cb := s.Select.OnChanged
			s.Select.OnChanged = nil
			s.Select.SetSelected(s.labels[i])
			s.Select.OnChanged = cb
			return
		}
	}
}

// swatch is a rounded colour sample.
func newSwatch(size float32) *fynecanvas.Rectangle {
	r := fynecanvas.NewRectangle(color.Black)
	r.StrokeColor = color.NRGBA{R: 0xD1, G: 0xD5, B: 0xDB, A: 0xFF}
	r.StrokeWidth = 2
	r.CornerRadius = 8
	r.SetMinSize(fyne.NewSize(size, size))
	return r
}
