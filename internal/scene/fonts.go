package scene

import (
	"log"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
)

func loadFonts() {
	fontsOnce.Do(func() {
		var err error
		if regularFont, err = truetype.Parse(goregular.TTF); err != nil {
			log.Printf("Scene: failed to parse regular font: %v", err)
		}
		if boldFont, err = truetype.Parse(gobold.TTF); err != nil {
			log.Printf("Scene: failed to parse bold font: %v", err)
			boldFont = regularFont
		}
	})
}

// faceCache holds faces for one render pass. font.Face values are not safe
// for concurrent use, so each pass owns its own.
type faceCache struct {
	faces map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

func newFaceCache() *faceCache {
	loadFonts()
	return &faceCache{faces: make(map[faceKey]font.Face)}
}

func (c *faceCache) face(bold bool, size float64) font.Face {
	k := faceKey{bold: bold, size: size}
	if f, ok := c.faces[k]; ok {
		return f
	}
	ttf := regularFont
	if bold {
		ttf = boldFont
	}
	if ttf == nil {
		return nil
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	c.faces[k] = f
	return f
}

func (c *faceCache) close() {
	for _, f := range c.faces {
		f.Close()
	}
}

// MeasureText returns the advance width of s in page units.
func MeasureText(s string, size float64, bold bool) float64 {
	c := newFaceCache()
	defer c.close()
	f := c.face(bold, size)
	if f == nil {
		return 0
	}
	return fixedToFloat(font.MeasureString(f, s))
}

// wrapLines breaks s into lines no wider than width. Explicit newlines are
// kept and a single overlong word gets a line of its own.
func wrapLines(f font.Face, s string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if fixedToFloat(font.MeasureString(f, candidate)) <= width {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
