package panels

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"cardforge/internal/app"
	"cardforge/internal/card"
)

// Asset library subdirectories offered by the pickers.
const (
	TexturesDir     = "textures"
	LogosDir        = "logos"
	ClassesDir      = "classes"
	AffiliationsDir = "afiliaciones"
)

// CardPanel edits the name, HP, texture and character image.
type CardPanel struct {
	state     *app.State
	container fyne.CanvasObject

	name    *widget.Entry
	hp      *valueControl
	texture *GridPicker
	image   *widget.Label

	onImport func()
	onReset  func()
	onExport func()
}

// NewCardPanel creates the card panel.
func NewCardPanel(state *app.State) *CardPanel {
	cp := &CardPanel{state: state}

	cp.name = widget.NewEntry()
	cp.name.SetPlaceHolder(card.DefaultName)
	cp.name.OnChanged = func(text string) {
		state.UpdateCard(func(c *card.Card) { c.Name = text })
	}

	cp.hp = newValueControl(func(v int) {
		state.UpdateCard(func(c *card.Card) { c.HP = v })
	})

	textures, err := state.Library.Options(TexturesDir)
	if err != nil {
		log.Printf("Panels: %v", err)
	}
	cp.texture = NewGridPicker(state.Library, textures, func(value string) {
		state.UpdateCard(func(c *card.Card) { c.Texture = value })
	})
	clearTexture := widget.NewButtonWithIcon("No texture", theme.ContentClearIcon(), func() {
		cp.texture.SetSelected("")
		state.UpdateCard(func(c *card.Card) { c.Texture = "" })
	})
	clearTexture.Importance = widget.LowImportance

	cp.image = widget.NewLabel("")
	cp.image.Truncation = fyne.TextTruncateEllipsis
	importBtn := widget.NewButtonWithIcon("Import image...", theme.FolderOpenIcon(), func() {
		if cp.onImport != nil {
			cp.onImport()
		}
	})
	resetBtn := widget.NewButtonWithIcon("Reset position", theme.ViewRestoreIcon(), func() {
		if cp.onReset != nil {
			cp.onReset()
		}
	})
	hint := widget.NewLabel("Double-click the image to move it. Drag to pan, scroll to zoom.")
	hint.Wrapping = fyne.TextWrapWord
	hint.Importance = widget.LowImportance

	exportBtn := widget.NewButtonWithIcon("Download PNG", theme.DownloadIcon(), func() {
		if cp.onExport != nil {
			cp.onExport()
		}
	})
	exportBtn.Importance = widget.HighImportance

	cp.container = container.NewVBox(
		labeled("Name", cp.name),
		labeled("HP", cp.hp.container),
		widget.NewSeparator(),
		labeled("Image", container.NewVBox(cp.image, container.NewGridWithColumns(2, importBtn, resetBtn), hint)),
		widget.NewSeparator(),
		labeled("Texture", container.NewVBox(cp.texture.Container(), clearTexture)),
		widget.NewSeparator(),
		exportBtn,
	)
	return cp
}

// Container returns the panel container.
func (cp *CardPanel) Container() fyne.CanvasObject {
	return cp.container
}

// OnImportImage sets the callback of the import button.
func (cp *CardPanel) OnImportImage(callback func()) {
	cp.onImport = callback
}

// OnResetImage sets the callback of the reset button.
func (cp *CardPanel) OnResetImage(callback func()) {
	cp.onReset = callback
}

// OnExport sets the callback of the download button.
func (cp *CardPanel) OnExport(callback func()) {
	cp.onExport = callback
}

// Sync shows the fields of c.
func (cp *CardPanel) Sync(c *card.Card) {
	setEntry(cp.name, c.Name)
	cp.hp.SetValue(c.HP)
	cp.texture.SetSelected(c.Texture)
	cp.image.SetText(c.Image)
}
