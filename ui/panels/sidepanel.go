// Package panels provides UI panels for the application.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"cardforge/internal/app"
	"cardforge/internal/card"
	"cardforge/ui/canvas"
)

// Panel provides the editor side panel with tabbed sections.
type Panel struct {
	state     *app.State
	preview   *canvas.CardPreview
	container *container.AppTabs

	// Tab content
	colorsPanel *ColorsPanel
	cardPanel   *CardPanel
	movesPanel  *MovesPanel
	logosPanel  *LogosPanel
}

// NewPanel creates the side panel. The eyedropper buttons drive overlay;
// preview may be nil in which case the reset button does nothing.
func NewPanel(state *app.State, preview *canvas.CardPreview, overlay *canvas.EyedropperOverlay) *Panel {
	p := &Panel{
		state:   state,
		preview: preview,
	}

	p.colorsPanel = NewColorsPanel(state, overlay)
	p.cardPanel = NewCardPanel(state)
	p.movesPanel = NewMovesPanel(state)
	p.logosPanel = NewLogosPanel(state)
	if preview != nil {
		p.cardPanel.OnResetImage(preview.ResetImage)
	}

	p.container = container.NewAppTabs(
		container.NewTabItem("Card", container.NewVScroll(p.cardPanel.Container())),
		container.NewTabItem("Colors", container.NewVScroll(p.colorsPanel.Container())),
		container.NewTabItem("Moves", container.NewVScroll(p.movesPanel.Container())),
		container.NewTabItem("Logos", container.NewVScroll(p.logosPanel.Container())),
	)

	state.On(app.EventCardChanged, func(data interface{}) {
		if c, ok := data.(*card.Card); ok {
			p.Sync(c)
		}
	})
	p.Sync(state.Card())
	return p
}

// Container returns the panel container.
func (p *Panel) Container() fyne.CanvasObject {
	return p.container
}

// Colors returns the colour controls.
func (p *Panel) Colors() *ColorsPanel {
	return p.colorsPanel
}

// Card returns the name, HP, texture and image controls.
func (p *Panel) Card() *CardPanel {
	return p.cardPanel
}

// Moves returns the movement editors.
func (p *Panel) Moves() *MovesPanel {
	return p.movesPanel
}

// Logos returns the logo pickers.
func (p *Panel) Logos() *LogosPanel {
	return p.logosPanel
}

// SetWindow sets the parent window for dialogs.
func (p *Panel) SetWindow(w fyne.Window) {
	p.colorsPanel.SetWindow(w)
}

// OnImportImage sets the callback of the import button.
func (p *Panel) OnImportImage(callback func()) {
	p.cardPanel.OnImportImage(callback)
}

// OnExport sets the callback of the download button.
func (p *Panel) OnExport(callback func()) {
	p.cardPanel.OnExport(callback)
}

// Sync shows every field of c without writing it back.
func (p *Panel) Sync(c *card.Card) {
	p.colorsPanel.Sync(c)
	p.cardPanel.Sync(c)
	p.movesPanel.Sync(c)
	p.logosPanel.Sync(c)
}
