package app

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge/internal/card"
	imgpkg "cardforge/internal/image"
	"cardforge/internal/viewport"
	"cardforge/pkg/colorutil"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// recorder collects events by type.
type recorder map[EventType][]interface{}

func record(s *State, events ...EventType) recorder {
	r := recorder{}
	for _, ev := range events {
		ev := ev
		s.On(ev, func(data interface{}) { r[ev] = append(r[ev], data) })
	}
	return r
}

func TestStateUpdateCard(t *testing.T) {
	s := NewState(nil)
	r := record(s, EventCardChanged, EventModified)

	s.UpdateCard(func(c *card.Card) { c.Name = "Zoro"; c.HP = 20000 })

	got := s.Card()
	assert.Equal(t, "Zoro", got.Name)
	assert.Equal(t, card.MaxValue, got.HP, "normalized")
	require.Len(t, r[EventCardChanged], 1)
	assert.Equal(t, "Zoro", r[EventCardChanged][0].(*card.Card).Name)
	assert.Equal(t, []interface{}{true}, r[EventModified])
	assert.True(t, s.IsModified())

	// Modified only fires on change.
	s.UpdateCard(func(c *card.Card) { c.Name = "Nami" })
	assert.Len(t, r[EventModified], 1)

	got.Name = "mutated"
	assert.Equal(t, "Nami", s.Card().Name, "Card returns a copy")
}

func TestStateSetColor(t *testing.T) {
	s := NewState(nil)
	before := s.Card().Colors

	err := s.SetColor(card.FieldBorder, "#12345")
	assert.ErrorIs(t, err, colorutil.ErrInvalidHex)
	assert.Equal(t, before, s.Card().Colors)
	assert.False(t, s.IsModified())

	require.NoError(t, s.SetColor(card.FieldBorder, "#ABCDEF"))
	assert.Equal(t, colorutil.Hex("#abcdef"), s.Card().Colors.Border)
}

func TestStatePickColor(t *testing.T) {
	s := NewState(nil)
	r := record(s, EventColorPicked)

	s.PickColor(card.FieldText, "#0c2238")
	assert.Equal(t, colorutil.Hex("#0c2238"), s.Card().Colors.Text)
	require.Len(t, r[EventColorPicked], 1)
	assert.Equal(t, ColorPick{Field: card.FieldText, Color: "#0c2238"}, r[EventColorPicked][0])
}

func TestStateSetImageResetsTransform(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.png")
	writeTestPNG(t, path, 40, 20)

	s := NewState(nil)
	s.SetTransform(viewport.Transform{X: 5, Scale: 2})
	r := record(s, EventImageLoaded)

	asset, err := s.SetImage(path)
	require.NoError(t, err)
	assert.Equal(t, 40, asset.Width())
	assert.Equal(t, path, s.Card().Image)
	assert.Equal(t, viewport.Transform{}, s.Card().Transform)
	require.Len(t, r[EventImageLoaded], 1)
	assert.Same(t, asset, r[EventImageLoaded][0])

	_, err = s.SetImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
	assert.Equal(t, path, s.Card().Image, "failed load keeps the old image")

	writeTestPNG(t, path, 10, 10)
	require.NoError(t, s.ReloadImage())
	require.Len(t, r[EventImageLoaded], 2)
	assert.Equal(t, 10, r[EventImageLoaded][1].(*imgpkg.Asset).Width())
}

func TestStateSetTransform(t *testing.T) {
	s := NewState(nil)
	r := record(s, EventTransformChanged, EventCardChanged)

	tr := viewport.Transform{X: 1, Y: 2, Scale: 1.5}
	s.SetTransform(tr)
	s.SetTransform(tr)
	assert.Len(t, r[EventTransformChanged], 1)
	assert.Empty(t, r[EventCardChanged])
	assert.Equal(t, tr, s.Card().Transform)
}

func TestStateEditing(t *testing.T) {
	s := NewState(nil)
	r := record(s, EventEditingChanged)
	s.SetEditing(true)
	s.SetEditing(true)
	s.SetEditing(false)
	assert.Equal(t, []interface{}{true, false}, r[EventEditingChanged])
	assert.False(t, s.Editing())
}

func TestStateProjectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.cardproj")

	s := NewState(nil)
	s.UpdateCard(func(c *card.Card) { c.Name = "Luffy"; c.AffiliationMarked = true })
	r := record(s, EventProjectSaved, EventProjectLoaded, EventCardChanged)

	require.NoError(t, s.SaveProject(path))
	assert.False(t, s.IsModified())
	assert.Equal(t, []interface{}{path}, r[EventProjectSaved])

	s.NewProject()
	assert.Equal(t, card.DefaultName, s.Card().Name)
	assert.Empty(t, s.ProjectPath)

	require.NoError(t, s.LoadProject(path))
	assert.Equal(t, path, s.ProjectPath)
	assert.Equal(t, "Luffy", s.Card().Name)
	assert.True(t, s.Card().AffiliationMarked)
	assert.Equal(t, []interface{}{path}, r[EventProjectLoaded])

	// Saving again keeps the created time.
	s.UpdateCard(func(c *card.Card) { c.HP = 500 })
	created := s.project.Created
	require.NoError(t, s.SaveProject(path))
	assert.Equal(t, created, s.project.Created)

	assert.Error(t, s.LoadProject(filepath.Join(dir, "missing.cardproj")))
	assert.Equal(t, path, s.ProjectPath)
}
