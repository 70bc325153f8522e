package panels

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"cardforge/internal/app"
	"cardforge/internal/card"
	imgpkg "cardforge/internal/image"
)

// LogosPanel picks the footer logos and the affiliation mark.
type LogosPanel struct {
	state     *app.State
	container fyne.CanvasObject

	gen         *optionSelect
	long        *optionSelect
	class       *GridPicker
	affiliation *GridPicker
	marked      *widget.Check
}

func (lp *LogosPanel) options(dir string) []imgpkg.Option {
	opts, err := lp.state.Library.Options(dir)
	if err != nil {
		log.Printf("Panels: %v", err)
	}
	return opts
}

// splitOptions separates values and labels for a select.
func splitOptions(opts []imgpkg.Option) (values, labels []string) {
	for _, o := range opts {
		values = append(values, o.Value)
		labels = append(labels, o.Label)
	}
	return values, labels
}

// NewLogosPanel creates the logos panel.
func NewLogosPanel(state *app.State) *LogosPanel {
	lp := &LogosPanel{state: state}
	update := func(fn func(c *card.Card)) { state.UpdateCard(fn) }

	// The generation and title logos share one directory
	logos := lp.options(LogosDir)
	gv, gl := splitOptions(logos)
	lp.gen = newOptionSelect(gv, gl, func(v string) {
		update(func(c *card.Card) { c.Logos.Gen = v })
	})
	lp.long = newOptionSelect(gv, gl, func(v string) {
		update(func(c *card.Card) { c.Logos.Long = v })
	})

	lp.class = NewGridPicker(state.Library, lp.options(ClassesDir), func(v string) {
		update(func(c *card.Card) { c.Logos.Class = v })
	})

	affiliations := append([]imgpkg.Option{{Value: "", Label: "None"}}, lp.options(AffiliationsDir)...)
	lp.affiliation = NewGridPicker(state.Library, affiliations, func(v string) {
		update(func(c *card.Card) { c.Logos.Affiliation = v })
	})

	lp.marked = widget.NewCheck("Cross out affiliation", func(on bool) {
		update(func(c *card.Card) { c.AffiliationMarked = on })
	})

	lp.container = container.NewVBox(
		container.NewGridWithColumns(2,
			labeled("Generation", lp.gen.Select),
			labeled("Title logo", lp.long.Select)),
		widget.NewSeparator(),
		labeled("Class", lp.class.Container()),
		widget.NewSeparator(),
		labeled("Affiliation", lp.affiliation.Container()),
		lp.marked,
	)
	return lp
}

// Container returns the panel container.
func (lp *LogosPanel) Container() fyne.CanvasObject {
	return lp.container
}

// Sync shows the logos of c.
func (lp *LogosPanel) Sync(c *card.Card) {
	lp.gen.SetValue(c.Logos.Gen)
	lp.long.SetValue(c.Logos.Long)
	lp.class.SetSelected(c.Logos.Class)
	lp.affiliation.SetSelected(c.Logos.Affiliation)
	if lp.marked.Checked != c.AffiliationMarked {
		cb := lp.marked.OnChanged
		lp.marked.OnChanged = nil
		lp.marked.SetChecked(c.AffiliationMarked)
		lp.marked.OnChanged = cb
	}
}
