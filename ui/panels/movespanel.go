package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"cardforge/internal/app"
	"cardforge/internal/card"
)

// movementControls edits one movement slot.
type movementControls struct {
	kind        *optionSelect
	level       *optionSelect
	name        *widget.Entry
	description *widget.Entry
	damage      *valueControl
	damageRow   fyne.CanvasObject
	container   fyne.CanvasObject
}

// MovesPanel edits the two movements.
type MovesPanel struct {
	state     *app.State
	slots     [2]*movementControls
	container fyne.CanvasObject
}

func movementTypeOptions() (values, labels []string) {
	for _, t := range card.MovementTypes {
		values = append(values, string(t))
		labels = append(labels, t.Label())
	}
	return values, labels
}

func levelOptions() (values, labels []string) {
	for _, l := range card.Levels {
		values = append(values, string(l))
		labels = append(labels, l.Label())
	}
	return values, labels
}

// NewMovesPanel creates the movement editors.
func NewMovesPanel(state *app.State) *MovesPanel {
	mp := &MovesPanel{state: state}

	box := container.NewVBox()
	for i := range mp.slots {
		mp.slots[i] = mp.newSlot(i)
		if i > 0 {
			box.Add(widget.NewSeparator())
		}
		box.Add(mp.slots[i].container)
	}
	mp.container = box
	return mp
}

func (mp *MovesPanel) update(i int, fn func(m *card.Movement)) {
	mp.state.UpdateCard(func(c *card.Card) { fn(&c.Movements[i]) })
}

func (mp *MovesPanel) newSlot(i int) *movementControls {
	mc := &movementControls{}

	tv, tl := movementTypeOptions()
	mc.kind = newOptionSelect(tv, tl, func(v string) {
		mp.update(i, func(m *card.Movement) { m.Type = card.MovementType(v) })
		mc.showDamage(card.MovementType(v))
	})
	lv, ll := levelOptions()
	mc.level = newOptionSelect(lv, ll, func(v string) {
		mp.update(i, func(m *card.Movement) { m.Level = card.Level(v) })
	})

	mc.name = widget.NewEntry()
	mc.name.SetPlaceHolder(card.DefaultMoveName)
	mc.name.OnChanged = func(text string) {
		mp.update(i, func(m *card.Movement) { m.Name = text })
	}

	mc.description = widget.NewMultiLineEntry()
	mc.description.Wrapping = fyne.TextWrapWord
	mc.description.SetMinRowsVisible(3)
	mc.description.OnChanged = func(text string) {
		mp.update(i, func(m *card.Movement) { m.Description = text })
	}

	mc.damage = newValueControl(func(v int) {
		mp.update(i, func(m *card.Movement) { m.Damage = v })
	})
	mc.damageRow = labeled("Damage", mc.damage.container)

	title := widget.NewLabelWithStyle(fmt.Sprintf("Movement %d", i+1), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	mc.container = container.NewVBox(
		title,
		container.NewGridWithColumns(2,
			labeled("Type", mc.kind.Select),
			labeled("Level", mc.level.Select)),
		labeled("Name", mc.name),
		labeled("Description", mc.description),
		mc.damageRow,
	)
	return mc
}

// showDamage hides the damage field for abilities, which show an icon.
func (mc *movementControls) showDamage(t card.MovementType) {
	if t.IsAbility() {
		mc.damageRow.Hide()
	} else {
		mc.damageRow.Show()
	}
}

// Container returns the panel container.
func (mp *MovesPanel) Container() fyne.CanvasObject {
	return mp.container
}

// Sync shows the movements of c.
func (mp *MovesPanel) Sync(c *card.Card) {
	for i, mc := range mp.slots {
		m := c.Movements[i]
		mc.kind.SetValue(string(m.Type))
		mc.level.SetValue(string(m.Level))
		setEntry(mc.name, m.Name)
		setEntry(mc.description, m.Description)
		mc.damage.SetValue(m.Damage)
		mc.showDamage(m.Type)
	}
}
