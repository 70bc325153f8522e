// Package card holds the customizable character card: its model, the named
// fields it persists under, its fixed layout and PNG export.
package card

import (
	"cardforge/internal/viewport"
	"cardforge/pkg/colorutil"
	"cardforge/pkg/geometry"
)

// MovementType selects the icon set of a movement.
type MovementType string

const (
	ActiveAttack  MovementType = "active-attack"
	PassiveAttack MovementType = "pasive-attack"
	ActiveHab     MovementType = "active-hab"
	PassiveHab    MovementType = "pasive-hab"
)

// MovementTypes lists the selectable types in panel order.
var MovementTypes = []MovementType{ActiveAttack, PassiveAttack, ActiveHab, PassiveHab}

// Label is the panel text for the type.
func (t MovementType) Label() string {
	switch t {
	case ActiveAttack:
		return "Active attack"
	case PassiveAttack:
		return "Passive attack"
	case ActiveHab:
		return "Active ability"
	case PassiveHab:
		return "Passive ability"
	}
	return string(t)
}

// Valid reports whether t is a known type.
func (t MovementType) Valid() bool {
	for _, v := range MovementTypes {
		if v == t {
			return true
		}
	}
	return false
}

// IsAbility reports whether the movement shows an icon instead of damage.
func (t MovementType) IsAbility() bool {
	return t == ActiveHab || t == PassiveHab
}

// Level marks a movement as raising, lowering or swapping a level.
type Level string

const (
	LevelNone   Level = "none"
	LevelUp     Level = "level-up"
	LevelDown   Level = "level-down"
	LevelChange Level = "level-change"
)

// Levels lists the selectable levels in panel order.
var Levels = []Level{LevelNone, LevelUp, LevelDown, LevelChange}

// Label is the panel text for the level.
func (l Level) Label() string {
	switch l {
	case LevelNone:
		return "None"
	case LevelUp:
		return "Level up"
	case LevelDown:
		return "Level down"
	case LevelChange:
		return "Level change"
	}
	return string(l)
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	for _, v := range Levels {
		if v == l {
			return true
		}
	}
	return false
}

const (
	DefaultName        = "Character Name"
	DefaultHP          = 100
	DefaultMoveName    = "Movement Name"
	DefaultDescription = "Description Movement"
	DefaultDamage      = 100

	// MaxValue bounds HP and damage.
	MaxValue = 10000
	// ValueStep is the spinner increment for HP and damage.
	ValueStep = 25

	DefaultImage = "placeholder_image.png"
	MarkImage    = "utils/aspa.png"
)

// Colors are the four user-picked card colours.
type Colors struct {
	Background  colorutil.Hex `json:"bg"`
	Border      colorutil.Hex `json:"border"`
	ImageBorder colorutil.Hex `json:"imageBorder"`
	Text        colorutil.Hex `json:"text"`
}

// Movement is one of the two attacks or abilities on a card.
type Movement struct {
	Type        MovementType `json:"type"`
	Level       Level        `json:"level"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Damage      int          `json:"damage"`
}

// Logos are asset paths relative to the asset library.
type Logos struct {
	Gen         string `json:"gen"`
	Long        string `json:"long"`
	Class       string `json:"class"`
	Affiliation string `json:"affiliation"`
}

// Card is the complete editable state of one card.
type Card struct {
	Colors            Colors             `json:"colors"`
	Texture           string             `json:"texture"`
	Name              string             `json:"name"`
	HP                int                `json:"hp"`
	Movements         [2]Movement        `json:"movements"`
	Logos             Logos              `json:"logos"`
	AffiliationMarked bool               `json:"affiliationMarked"`
	Image             string             `json:"image"`
	Transform         viewport.Transform `json:"transform"`
}

func defaultMovement() Movement {
	return Movement{
		Type:        ActiveAttack,
		Level:       LevelNone,
		Name:        DefaultMoveName,
		Description: DefaultDescription,
		Damage:      DefaultDamage,
	}
}

// New returns a card with the initial editor state.
func New() *Card {
	return &Card{
		Colors: Colors{
			Background:  "#fbbf24",
			Border:      "#fbbf24",
			ImageBorder: "#fbbf24",
			Text:        colorutil.HexBlack,
		},
		Name:      DefaultName,
		HP:        DefaultHP,
		Movements: [2]Movement{defaultMovement(), defaultMovement()},
		Logos: Logos{
			Gen:   "logos/g4_post.png",
			Long:  "logos/animated_logo.png",
			Class: "classes/piratas.png",
		},
		Image: DefaultImage,
	}
}

// Clone returns a deep copy.
func (c *Card) Clone() *Card {
	cp := *c
	return &cp
}

// ClampValue limits HP and damage to [0, MaxValue].
func ClampValue(v int) int {
	return int(geometry.Clamp(float64(v), 0, MaxValue))
}

// Normalize repairs out-of-range values loaded from disk: invalid colours
// fall back to the defaults, unknown enums to the first option.
func (c *Card) Normalize() {
	def := New()
	fixHex := func(h *colorutil.Hex, fallback colorutil.Hex) {
		if v, err := colorutil.Parse(string(*h)); err == nil {
			*h = v
			return
		}
		*h = fallback
	}
	fixHex(&c.Colors.Background, def.Colors.Background)
	fixHex(&c.Colors.Border, def.Colors.Border)
	fixHex(&c.Colors.ImageBorder, def.Colors.ImageBorder)
	fixHex(&c.Colors.Text, def.Colors.Text)

	c.HP = ClampValue(c.HP)
	for i := range c.Movements {
		m := &c.Movements[i]
		if !m.Type.Valid() {
			m.Type = ActiveAttack
		}
		if !m.Level.Valid() {
			m.Level = LevelNone
		}
		m.Damage = ClampValue(m.Damage)
	}
	if c.Transform.Scale < 0 {
		c.Transform = viewport.Transform{}
	}
}
