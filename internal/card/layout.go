package card

import (
	"image"
	"image/color"
	"log"
	"strconv"

	imgpkg "cardforge/internal/image"
	"cardforge/internal/scene"
	"cardforge/internal/viewport"
	"cardforge/pkg/colorutil"
	"cardforge/pkg/geometry"
)

// Card geometry in page units.
const (
	Width            = 360.0
	Height           = 600.0
	BorderWidth      = 8.0
	ImageBorderWidth = 5.0
	padding          = 12.0
	headerHeight     = 60.0
	movementHeight   = 92.0
	footerHeight     = 80.0
	gap              = 8.0
)

// Node names for parts of the card that callers look up.
const (
	NodeCard        = "card"
	NodeName        = "name"
	NodeHP          = "hp"
	NodeGenLogo     = "logo.gen"
	NodeImageFrame  = "image.frame"
	NodeImageArea   = "image.area"
	NodeCharacter   = "image.character"
	NodeEditHint    = "image.hint"
	NodeDivider     = "divider"
	NodeClassLogo   = "logo.class"
	NodeLongLogo    = "logo.long"
	NodeAffiliation = "logo.affiliation"
	NodeMark        = "logo.mark"
)

// EditHint is shown over the image while it can be moved.
const EditHint = "Editing (scroll/pinch = zoom, drag = move, double click = exit)"

var (
	white     = colorutil.White
	black     = colorutil.Black
	hintShade = color.NRGBA{0, 0, 0, 128}
)

// Assets resolves asset paths to decoded images.
type Assets interface {
	Load(path string) (*imgpkg.Asset, error)
}

// ImageView is the viewport state the layout needs.
type ImageView struct {
	Transform viewport.Transform
	Editing   bool
}

// Layout is a built card scene.
type Layout struct {
	Root      *scene.Box
	Character *scene.Image
	// Natural is the character image size, zero when it failed to load.
	Natural geometry.Size
	// Area is the clipped region the character image covers.
	Area geometry.Rect
}

// Bounds returns the card rectangle at origin.
func Bounds(origin geometry.Point2D) geometry.Rect {
	return geometry.NewRect(origin.X, origin.Y, Width, Height)
}

// ImageFrame returns the image container including its border.
func ImageFrame(origin geometry.Point2D) geometry.Rect {
	w := Width * 5 / 6
	h := Height * 2 / 5
	return geometry.NewRect(origin.X+(Width-w)/2, origin.Y+BorderWidth+headerHeight, w, h)
}

// ImageArea returns the region inside the image border.
func ImageArea(origin geometry.Point2D) geometry.Rect {
	return ImageFrame(origin).Inset(ImageBorderWidth)
}

// Build lays out c with its top-left corner at origin.
func Build(c *Card, assets Assets, origin geometry.Point2D, view ImageView) *Layout {
	b := &builder{card: c, assets: assets, origin: origin, text: c.Colors.Text.NRGBA()}

	root := scene.NewBox(NodeCard, Bounds(origin))
	root.Fill = c.Colors.Background.NRGBA()
	root.BorderWidth = BorderWidth
	root.BorderColor = c.Colors.Border.NRGBA()
	root.Texture = b.pixels(c.Texture)

	l := &Layout{Root: root}
	root.Add(b.header()...)
	root.Add(b.imageFrame(l, view))
	y := ImageFrame(origin).Y + ImageFrame(origin).Height + gap
	for i := range c.Movements {
		root.Add(b.movement(i, y))
		y += movementHeight
	}

	divider := scene.NewBox(NodeDivider, b.rect(Width*0.05, y, Width*0.9, 2))
	divider.Fill = black
	root.Add(divider)
	root.Add(b.footer(y + gap)...)
	return l
}

type builder struct {
	card   *Card
	assets Assets
	origin geometry.Point2D
	text   color.NRGBA
}

// rect offsets a card-local rectangle by the origin.
func (b *builder) rect(x, y, w, h float64) geometry.Rect {
	return geometry.NewRect(b.origin.X+x, b.origin.Y+y, w, h)
}

func (b *builder) load(path string) *imgpkg.Asset {
	if path == "" || b.assets == nil {
		return nil
	}
	a, err := b.assets.Load(path)
	if err != nil {
		log.Printf("Layout: failed to load %s: %v", path, err)
		return nil
	}
	return a
}

func (b *builder) pixels(path string) image.Image {
	if a := b.load(path); a != nil {
		return a.Image
	}
	return nil
}

// logo places an asset scaled to fit inside cell, keeping its aspect ratio.
func (b *builder) logo(name, path string, cell geometry.Rect) *scene.Image {
	a := b.load(path)
	if a == nil {
		return scene.NewImage(name, cell, path, nil)
	}
	return scene.NewImage(name, FitRect(cell, a.Size()), path, a.Image)
}

func (b *builder) header() []scene.Element {
	top := BorderWidth
	name := scene.NewText(NodeName, b.rect(padding+BorderWidth, top, 190, headerHeight), b.card.Name, 20, b.text)

	hp := scene.NewText(NodeHP, b.rect(212, top, 56, headerHeight), strconv.Itoa(b.card.HP), 20, b.text)
	hp.Align = scene.AlignRight
	label := scene.NewText("hp.label", b.rect(270, top, 28, headerHeight), "HP", 20, b.text)
	label.Bold = true

	gen := b.logo(NodeGenLogo, b.card.Logos.Gen, b.rect(300, top+6, 48, 48))
	return []scene.Element{name, hp, label, gen}
}

func (b *builder) imageFrame(l *Layout, view ImageView) scene.Element {
	frame := scene.NewBox(NodeImageFrame, ImageFrame(b.origin))
	frame.Fill = white
	frame.BorderWidth = ImageBorderWidth
	frame.BorderColor = b.card.Colors.ImageBorder.NRGBA()

	area := scene.NewBox(NodeImageArea, ImageArea(b.origin))
	area.Clip = true
	frame.Add(area)
	l.Area = area.Rect

	rect := area.Rect
	a := b.load(b.card.Image)
	var character *scene.Image
	if a != nil {
		l.Natural = a.Size()
		t := view.Transform
		if t.Scale <= 0 {
			if cover, ok := viewport.CoverScale(l.Natural, area.Rect.Size()); ok {
				t = viewport.Transform{Scale: cover}
			}
		}
		rect = t.ImageRect(l.Natural, area.Rect)
		character = scene.NewImage(NodeCharacter, rect, b.card.Image, a.Image)
	} else {
		character = scene.NewImage(NodeCharacter, rect, b.card.Image, nil)
	}
	area.Add(character)
	l.Character = character

	if view.Editing {
		hint := scene.NewBox(NodeEditHint, geometry.NewRect(area.Rect.X+4, area.Rect.Y+4, area.Rect.Width-8, 16))
		hint.Fill = hintShade
		hint.NoHit = true
		text := scene.NewText(NodeEditHint+".text", hint.Rect.Inset(2), EditHint, 8, white)
		text.NoHit = true
		hint.Add(text)
		area.Add(hint)
	}
	return frame
}

func (b *builder) movement(i int, y float64) scene.Element {
	m := b.card.Movements[i]
	x := padding + BorderWidth
	w := Width - 2*x

	block := scene.NewBox("movement."+movementSlots[i], b.rect(x, y, w, movementHeight))

	typeIcon := scene.NewText(block.Name+".type", b.rect(x, y, 20, 24), TypeIcon(m.Type), 18, b.text)
	typeIcon.Bold = true
	levelIcon := scene.NewText(block.Name+".level", b.rect(x+22, y, 18, 24), LevelIcon(m.Level), 18, b.text)
	name := scene.NewText(block.Name+".name", b.rect(x+42, y, w-42, 24), m.Name, 14, b.text)
	name.Bold = true

	desc := scene.NewText(block.Name+".description", b.rect(x+8, y+26, w-78, 56), m.Description, 10, b.text)
	desc.Wrap = true

	var right *scene.Text
	if icon := RightSide(m.Type); icon != "" {
		right = scene.NewText(block.Name+".icon", b.rect(x+w-64, y+26, 64, 56), icon, 26, b.text)
		right.Align = scene.AlignCenter
	} else {
		right = scene.NewText(block.Name+".damage", b.rect(x+w-64, y+26, 64, 56), strconv.Itoa(m.Damage), 16, b.text)
		right.Align = scene.AlignRight
	}

	block.Add(typeIcon, levelIcon, name, desc, right)
	return block
}

func (b *builder) footer(y float64) []scene.Element {
	inner := b.rect(padding+BorderWidth, y+padding, Width-2*(padding+BorderWidth), footerHeight-2*padding)
	cells := footerCells(inner, b.card.Logos.Affiliation != "")

	out := []scene.Element{
		b.logo(NodeClassLogo, b.card.Logos.Class, cells[0]),
		b.logo(NodeLongLogo, b.card.Logos.Long, cells[1]),
	}
	if len(cells) == 3 {
		cell := scene.NewBox(NodeAffiliation+".cell", cells[2])
		cell.Add(b.logo(NodeAffiliation, b.card.Logos.Affiliation, cells[2]))
		if b.card.AffiliationMarked {
			cell.Add(b.logo(NodeMark, MarkImage, cells[2]))
		}
		out = append(out, cell)
	}
	return out
}

// footerCells splits the footer into 1/5, 3/5 and 1/5 columns with gaps,
// centred when the affiliation column is absent.
func footerCells(inner geometry.Rect, affiliation bool) []geometry.Rect {
	unit := (inner.Width - 2*gap) / 5
	widths := []float64{unit, 3 * unit}
	if affiliation {
		widths = append(widths, unit)
	}
	total := gap * float64(len(widths)-1)
	for _, w := range widths {
		total += w
	}

	x := inner.X + (inner.Width-total)/2
	cells := make([]geometry.Rect, len(widths))
	for i, w := range widths {
		cells[i] = geometry.NewRect(x, inner.Y, w, inner.Height)
		x += w + gap
	}
	return cells
}

// FitRect returns the largest rectangle with the aspect ratio of natural
// that fits centred inside cell.
func FitRect(cell geometry.Rect, natural geometry.Size) geometry.Rect {
	if !natural.Valid() || cell.Empty() {
		return cell
	}
	s := cell.Width / natural.Width
	if h := cell.Height / natural.Height; h < s {
		s = h
	}
	w, h := natural.Width*s, natural.Height*s
	return geometry.NewRect(cell.X+(cell.Width-w)/2, cell.Y+(cell.Height-h)/2, w, h)
}
