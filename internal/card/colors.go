package card

import "cardforge/pkg/colorutil"

// ColorField identifies one of the four card colours.
type ColorField int

const (
	FieldBackground ColorField = iota
	FieldBorder
	FieldImageBorder
	FieldText
)

// ColorFields lists the fields in panel order.
var ColorFields = []ColorField{FieldBackground, FieldBorder, FieldImageBorder, FieldText}

func (f ColorField) String() string {
	switch f {
	case FieldBackground:
		return "Background"
	case FieldBorder:
		return "Border"
	case FieldImageBorder:
		return "Image border"
	case FieldText:
		return "Text"
	}
	return "Unknown"
}

// Key is the persisted field key.
func (f ColorField) Key() string {
	switch f {
	case FieldBackground:
		return KeyBackground
	case FieldBorder:
		return KeyBorder
	case FieldImageBorder:
		return KeyImageBorder
	case FieldText:
		return KeyText
	}
	return ""
}

func (c *Colors) ref(f ColorField) *colorutil.Hex {
	switch f {
	case FieldBackground:
		return &c.Background
	case FieldBorder:
		return &c.Border
	case FieldImageBorder:
		return &c.ImageBorder
	case FieldText:
		return &c.Text
	}
	return nil
}

// Get returns the colour of field f.
func (c Colors) Get(f ColorField) colorutil.Hex {
	if p := c.ref(f); p != nil {
		return *p
	}
	return ""
}

// Set stores h in field f. Unknown fields are ignored.
func (c *Colors) Set(f ColorField, h colorutil.Hex) {
	if p := c.ref(f); p != nil {
		*p = h
	}
}
