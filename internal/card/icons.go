package card

// Icons are drawn with the Go fonts, so each maps to a glyph they carry.
const (
	IconActive  = "☼"
	IconPassive = "○"
	IconUp      = "↑"
	IconDown    = "↓"
	IconChange  = "↔"
)

// TypeIcon is shown before the movement name for attacks.
func TypeIcon(t MovementType) string {
	switch t {
	case ActiveAttack:
		return IconActive
	case PassiveAttack:
		return IconPassive
	}
	return ""
}

// LevelIcon is shown after the type icon.
func LevelIcon(l Level) string {
	switch l {
	case LevelUp:
		return IconUp
	case LevelDown:
		return IconDown
	case LevelChange:
		return IconChange
	}
	return ""
}

// RightSide is the icon shown instead of damage for abilities; attacks
// return "" and show their damage.
func RightSide(t MovementType) string {
	switch t {
	case ActiveHab:
		return IconActive
	case PassiveHab:
		return IconPassive
	}
	return ""
}
