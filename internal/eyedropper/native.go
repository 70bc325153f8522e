package eyedropper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"runtime"
	"strings"

	"cardforge/pkg/colorutil"
)

// SystemPicker runs a desktop colour chooser as a child process and reads
// the chosen colour from its output. Exit status 1 means dismissed.
type SystemPicker struct {
	Command string
	Args    []string
	parse   func(string) (colorutil.Hex, error)
}

func systemPickers() []*SystemPicker {
	if runtime.GOOS == "darwin" {
		return []*SystemPicker{
			{Command: "osascript", Args: []string{"-e", "choose color"}, parse: parseAppleColor},
		}
	}
	return []*SystemPicker{
		{Command: "zenity", Args: []string{"--color-selection", "--title=Pick a card colour"}, parse: parseCSSColor},
		{Command: "kdialog", Args: []string{"--getcolor"}, parse: parseCSSColor},
	}
}

// NewSystemPicker returns the first chooser installed on this host, or nil.
func NewSystemPicker() *SystemPicker {
	for _, p := range systemPickers() {
		if _, err := exec.LookPath(p.Command); err == nil {
			return p
		}
	}
	return nil
}

// PickColor implements NativePicker. Cancelling ctx kills the chooser.
func (p *SystemPicker) PickColor(ctx context.Context) (colorutil.Hex, bool, error) {
	cmd := exec.CommandContext(ctx, p.Command, p.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return "", false, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to run %s: %w (%s)", p.Command, err, strings.TrimSpace(stderr.String()))
	}

	h, err := p.parse(strings.TrimSpace(stdout.String()))
	if err != nil {
		return "", false, err
	}
	return h, true, nil
}

// parseCSSColor reads "#rgb", "#rrggbb", the 48-bit "#rrrrggggbbbb" older
// GTK dialogs print, "rgb(r,g,b)" and "rgba(r,g,b,a)".
func parseCSSColor(s string) (colorutil.Hex, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") && len(s) == 13 {
		s = "#" + s[1:3] + s[5:7] + s[9:11]
	}
	if strings.HasPrefix(s, "#") {
		return colorutil.ParseLoose(s)
	}

	var r, g, b int
	var a float64
	var err error
	switch {
	case strings.HasPrefix(s, "rgba("):
		_, err = fmt.Sscanf(s, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a)
	case strings.HasPrefix(s, "rgb("):
		_, err = fmt.Sscanf(s, "rgb(%d,%d,%d)", &r, &g, &b)
	default:
		err = colorutil.ErrInvalidHex
	}
	if err != nil || !byteRange(r, g, b) {
		return "", fmt.Errorf("%w: %q", colorutil.ErrInvalidHex, s)
	}
	return colorutil.FromRGB(uint8(r), uint8(g), uint8(b)), nil
}

// parseAppleColor reads the "r, g, b" triple of 16-bit channels that
// "choose color" prints.
func parseAppleColor(s string) (colorutil.Hex, error) {
	var r, g, b int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d, %d, %d", &r, &g, &b); err != nil {
		return "", fmt.Errorf("%w: %q", colorutil.ErrInvalidHex, s)
	}
	to8 := func(v int) int { return int(math.Round(float64(v) / 257)) }
	r, g, b = to8(r), to8(g), to8(b)
	if !byteRange(r, g, b) {
		return "", fmt.Errorf("%w: %q", colorutil.ErrInvalidHex, s)
	}
	return colorutil.FromRGB(uint8(r), uint8(g), uint8(b)), nil
}

func byteRange(vs ...int) bool {
	for _, v := range vs {
		if v < 0 || v > 255 {
			return false
		}
	}
	return true
}
