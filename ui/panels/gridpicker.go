package panels

import (
	"fmt"
	stdimage "image"
	"image/color"
	"log"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	imgpkg "cardforge/internal/image"
)

const (
	gridInitial = 8
	gridMore    = 9
	gridColumns = 3
	thumbSize   = 96
)

// filterOptions keeps the options whose label contains term, ignoring case.
// A blank term keeps everything.
func filterOptions(opts []imgpkg.Option, term string) []imgpkg.Option {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return opts
	}
	var out []imgpkg.Option
	for _, o := range opts {
		if strings.Contains(strings.ToLower(o.Label), term) {
			out = append(out, o)
		}
	}
	return out
}

// gridPager tracks the search term and how many matches are shown.
type gridPager struct {
	options []imgpkg.Option
	term    string
	visible int
}

func newGridPager(options []imgpkg.Option) *gridPager {
	return &gridPager{options: options, visible: gridInitial}
}

// SetTerm changes the search and shows the first page again.
func (p *gridPager) SetTerm(term string) {
	p.term = term
	p.visible = gridInitial
}

func (p *gridPager) Filtered() []imgpkg.Option {
	return filterOptions(p.options, p.term)
}

// Visible returns the options currently shown.
func (p *gridPager) Visible() []imgpkg.Option {
	f := p.Filtered()
	if p.visible < len(f) {
		return f[:p.visible]
	}
	return f
}

func (p *gridPager) HasMore() bool {
	return p.visible < len(p.Filtered())
}

// Remaining is the number of matches hidden behind "load more".
func (p *gridPager) Remaining() int {
	n := len(p.Filtered()) - p.visible
	if n < 0 {
		return 0
	}
	return n
}

// More reveals the next page, never past the number of matches.
func (p *gridPager) More() {
	n := len(p.Filtered())
	p.visible += gridMore
	if p.visible > n {
		p.visible = n
	}
	if p.visible < gridInitial {
		p.visible = gridInitial
	}
}

// Less collapses back to the first page.
func (p *gridPager) Less() {
	p.visible = gridInitial
}

// Expanded reports whether more than the first page is shown.
func (p *gridPager) Expanded() bool {
	return p.visible > gridInitial
}

// GridPicker is a searchable grid of image options with paging.
type GridPicker struct {
	library  *imgpkg.Library
	pager    *gridPager
	onChange func(value string)

	container fyne.CanvasObject
	search    *widget.Entry
	clear     *widget.Button
	info      *widget.Label
	grid      *fyne.Container
	less      *widget.Button

	mu       sync.Mutex
	selected string
	tiles    []*gridTile
	thumbs   map[string]stdimage.Image
}

// NewGridPicker creates a picker over options. onChange runs when the user
// taps a tile.
func NewGridPicker(library *imgpkg.Library, options []imgpkg.Option, onChange func(value string)) *GridPicker {
	g := &GridPicker{
		library:  library,
		pager:    newGridPager(options),
		onChange: onChange,
		thumbs:   make(map[string]stdimage.Image),
	}

	g.search = widget.NewEntry()
	g.search.SetPlaceHolder("Search...")
	g.search.TextStyle = fyne.TextStyle{Monospace: true}
	g.clear = widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() {
		g.search.SetText("")
	})
	g.clear.Hide()
	g.search.OnChanged = func(text string) {
		g.pager.SetTerm(text)
		if text == "" {
			g.clear.Hide()
		} else {
			g.clear.Show()
		}
		g.refresh()
	}

	g.info = widget.NewLabel("")
	g.info.Alignment = fyne.TextAlignCenter
	g.info.Importance = widget.LowImportance

	g.grid = container.NewGridWithColumns(gridColumns)
	g.less = widget.NewButtonWithIcon("Show less", theme.MenuDropUpIcon(), g.ShowLess)
	g.less.Importance = widget.LowImportance

	g.container = container.NewVBox(
		container.NewBorder(nil, nil, nil, g.clear, g.search),
		g.info,
		g.grid,
		g.less,
	)
	g.refresh()
	return g
}

// Container returns the picker container.
func (g *GridPicker) Container() fyne.CanvasObject {
	return g.container
}

// Selected returns the highlighted value.
func (g *GridPicker) Selected() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selected
}

// SetSelected highlights value without calling onChange.
func (g *GridPicker) SetSelected(value string) {
	g.mu.Lock()
	if g.selected == value {
		g.mu.Unlock()
		return
	}
	g.selected = value
	tiles := g.tiles
	g.mu.Unlock()

	for _, t := range tiles {
		t.setSelected(t.option.Value == value)
	}
}

// SetSearch types term into the search box.
func (g *GridPicker) SetSearch(term string) {
	g.search.SetText(term)
}

// ShowMore reveals the next page of matches.
func (g *GridPicker) ShowMore() {
	g.pager.More()
	g.refresh()
}

// ShowLess collapses back to the first page.
func (g *GridPicker) ShowLess() {
	g.pager.Less()
	g.refresh()
}

// VisibleOptions returns the options currently shown as tiles.
func (g *GridPicker) VisibleOptions() []imgpkg.Option {
	return g.pager.Visible()
}

func (g *GridPicker) pick(value string) {
	g.SetSelected(value)
	if g.onChange != nil {
		g.onChange(value)
	}
}

// thumbnail loads and caches a square preview; an empty value or an
// unreadable file has none.
func (g *GridPicker) thumbnail(value string) stdimage.Image {
	if value == "" || g.library == nil {
		return nil
	}
	g.mu.Lock()
	img, ok := g.thumbs[value]
	g.mu.Unlock()
	if ok {
		return img
	}

	if a, err := g.library.Load(value); err == nil {
		img = a.Thumbnail(thumbSize)
	} else {
		log.Printf("Panels: no thumbnail for %s: %v", value, err)
	}
	g.mu.Lock()
	g.thumbs[value] = img
	g.mu.Unlock()
	return img
}

// refresh rebuilds the tiles for the current page.
func (g *GridPicker) refresh() {
	visible := g.pager.Visible()
	filtered := len(g.pager.Filtered())

	g.mu.Lock()
	selected := g.selected
	g.mu.Unlock()

	tiles := make([]*gridTile, 0, len(visible))
	objects := make([]fyne.CanvasObject, 0, len(visible)+1)
	for _, opt := range visible {
		t := newGridTile(opt, g.thumbnail(opt.Value), g.pick)
		t.selected = opt.Value == selected
		tiles = append(tiles, t)
		objects = append(objects, t)
	}
	if g.pager.HasMore() {
		more := widget.NewButton(fmt.Sprintf("+ Load more (%d)", g.pager.Remaining()), g.ShowMore)
		objects = append(objects, more)
	}

	g.mu.Lock()
	g.tiles = tiles
	g.mu.Unlock()

	switch {
	case filtered == 0:
		g.info.SetText(fmt.Sprintf("No matches for %q", g.search.Text))
	default:
		g.info.SetText(fmt.Sprintf("Showing %d of %d", len(visible), filtered))
	}
	if g.pager.Expanded() {
		g.less.Show()
	} else {
		g.less.Hide()
	}

	g.grid.Objects = objects
	g.grid.Refresh()
}

var (
	captionBackground = color.NRGBA{A: 0x73}
	tileBorder        = color.NRGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0xFF}
)

// gridTile shows one option as a thumbnail with its label.
type gridTile struct {
	widget.BaseWidget

	option   imgpkg.Option
	thumb    stdimage.Image
	selected bool
	onTap    func(value string)

	border *fynecanvas.Rectangle
}

func newGridTile(opt imgpkg.Option, thumb stdimage.Image, onTap func(string)) *gridTile {
	t := &gridTile{option: opt, thumb: thumb, onTap: onTap}
	t.ExtendBaseWidget(t)
	return t
}

func (t *gridTile) setSelected(selected bool) {
	t.selected = selected
	t.Refresh()
}

// Tapped selects the option.
func (t *gridTile) Tapped(*fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap(t.option.Value)
	}
}

func (t *gridTile) CreateRenderer() fyne.WidgetRenderer {
	t.border = fynecanvas.NewRectangle(color.Transparent)
	t.border.StrokeWidth = 2
	t.border.CornerRadius = 6
	t.border.SetMinSize(fyne.NewSize(thumbSize, thumbSize))

	var picture fyne.CanvasObject
	if t.thumb != nil {
		img := fynecanvas.NewImageFromImage(t.thumb)
		img.FillMode = fynecanvas.ImageFillContain
		picture = img
	} else {
		picture = widget.NewIcon(theme.CancelIcon())
	}

	text := fynecanvas.NewText(t.option.Label, color.White)
	text.Alignment = fyne.TextAlignCenter
	text.TextSize = theme.CaptionTextSize()
	caption := container.NewStack(fynecanvas.NewRectangle(captionBackground), text)

	content := container.NewBorder(nil, caption, nil, nil, picture)
	r := &gridTileRenderer{tile: t, root: container.NewStack(t.border, container.NewPadded(content))}
	r.Refresh()
	return r
}

type gridTileRenderer struct {
	tile *gridTile
	root *fyne.Container
}

func (r *gridTileRenderer) Layout(size fyne.Size) {
	r.root.Resize(size)
}

func (r *gridTileRenderer) MinSize() fyne.Size {
	return r.root.MinSize()
}

func (r *gridTileRenderer) Refresh() {
	if r.tile.selected {
		r.tile.border.StrokeColor = theme.PrimaryColor()
		r.tile.border.StrokeWidth = 3
	} else {
		r.tile.border.StrokeColor = tileBorder
		r.tile.border.StrokeWidth = 2
	}
	r.tile.border.Refresh()
}

func (r *gridTileRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.root}
}

func (r *gridTileRenderer) Destroy() {}
