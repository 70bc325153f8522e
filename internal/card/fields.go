package card

import (
	"fmt"
	"math"

	"cardforge/pkg/colorutil"
)

// Field keys under which the editor persists card state.
const (
	KeyBackground  = "colors.bg"
	KeyBorder      = "colors.border"
	KeyImageBorder = "colors.imageBorder"
	KeyText        = "colors.text"
	KeyTexture     = "texture"
	KeyName        = "name"
	KeyHP          = "hp"
	KeyGenLogo     = "logos.gen"
	KeyLongLogo    = "logos.long"
	KeyClassLogo   = "logos.class"
	KeyAffiliation = "logos.affiliation"
	KeyMarked      = "logos.affiliationMarked"
	KeyImage       = "image"
	KeyImageX      = "image.x"
	KeyImageY      = "image.y"
	KeyImageScale  = "image.scale"
)

var movementSlots = [2]string{"one", "two"}

// MovementKey returns the key of a movement attribute, e.g.
// MovementKey(0, "type") is "movements.one.type".
func MovementKey(i int, attr string) string {
	return fmt.Sprintf("movements.%s.%s", movementSlots[i], attr)
}

// Store is the persistence collaborator, keyed by named fields.
type Store interface {
	StringWithFallback(key, fallback string) string
	SetString(key, val string)
	FloatWithFallback(key string, fallback float64) float64
	SetFloat(key string, val float64)
	Bool(key string, fallback bool) bool
	SetBool(key string, val bool)
}

// LoadFields reads a card from the store, falling back to the defaults for
// missing keys.
func LoadFields(s Store) *Card {
	c := New()
	str := func(key string, dst *string) {
		*dst = s.StringWithFallback(key, *dst)
	}
	hex := func(key string, dst *colorutil.Hex) {
		*dst = colorutil.Hex(s.StringWithFallback(key, string(*dst)))
	}
	num := func(key string, dst *int) {
		*dst = int(math.Round(s.FloatWithFallback(key, float64(*dst))))
	}

	hex(KeyBackground, &c.Colors.Background)
	hex(KeyBorder, &c.Colors.Border)
	hex(KeyImageBorder, &c.Colors.ImageBorder)
	hex(KeyText, &c.Colors.Text)
	str(KeyTexture, &c.Texture)
	str(KeyName, &c.Name)
	num(KeyHP, &c.HP)
	str(KeyGenLogo, &c.Logos.Gen)
	str(KeyLongLogo, &c.Logos.Long)
	str(KeyClassLogo, &c.Logos.Class)
	str(KeyAffiliation, &c.Logos.Affiliation)
	c.AffiliationMarked = s.Bool(KeyMarked, c.AffiliationMarked)
	str(KeyImage, &c.Image)
	c.Transform.X = s.FloatWithFallback(KeyImageX, 0)
	c.Transform.Y = s.FloatWithFallback(KeyImageY, 0)
	c.Transform.Scale = s.FloatWithFallback(KeyImageScale, 0)

	for i := range c.Movements {
		m := &c.Movements[i]
		m.Type = MovementType(s.StringWithFallback(MovementKey(i, "type"), string(m.Type)))
		m.Level = Level(s.StringWithFallback(MovementKey(i, "level"), string(m.Level)))
		str(MovementKey(i, "name"), &m.Name)
		str(MovementKey(i, "description"), &m.Description)
		num(MovementKey(i, "damage"), &m.Damage)
	}

	c.Normalize()
	return c
}

// SaveFields writes every field of c to the store.
func SaveFields(s Store, c *Card) {
	s.SetString(KeyBackground, string(c.Colors.Background))
	s.SetString(KeyBorder, string(c.Colors.Border))
	s.SetString(KeyImageBorder, string(c.Colors.ImageBorder))
	s.SetString(KeyText, string(c.Colors.Text))
	s.SetString(KeyTexture, c.Texture)
	s.SetString(KeyName, c.Name)
	s.SetFloat(KeyHP, float64(c.HP))
	s.SetString(KeyGenLogo, c.Logos.Gen)
	s.SetString(KeyLongLogo, c.Logos.Long)
	s.SetString(KeyClassLogo, c.Logos.Class)
	s.SetString(KeyAffiliation, c.Logos.Affiliation)
	s.SetBool(KeyMarked, c.AffiliationMarked)
	s.SetString(KeyImage, c.Image)
	s.SetFloat(KeyImageX, c.Transform.X)
	s.SetFloat(KeyImageY, c.Transform.Y)
	s.SetFloat(KeyImageScale, c.Transform.Scale)

	for i, m := range c.Movements {
		s.SetString(MovementKey(i, "type"), string(m.Type))
		s.SetString(MovementKey(i, "level"), string(m.Level))
		s.SetString(MovementKey(i, "name"), m.Name)
		s.SetString(MovementKey(i, "description"), m.Description)
		s.SetFloat(MovementKey(i, "damage"), float64(m.Damage))
	}
}
