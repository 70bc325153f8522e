package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefsRoundTripThroughDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardforge", "preferences.json")
	p := LoadFrom(path)
	assert.Equal(t, "#fbbf24", p.StringWithFallback("colors.bg", "#fbbf24"))

	p.SetString("colors.bg", "#112233")
	p.SetFloat("hp", 250)
	p.SetBool("affiliation.marked", true)
	require.NoError(t, p.Save())

	again := LoadFrom(path)
	assert.Equal(t, "#112233", again.String("colors.bg"))
	assert.Equal(t, 250.0, again.Float("hp"))
	assert.True(t, again.Bool("affiliation.marked", false))
	assert.Equal(t, []string{"affiliation.marked", "colors.bg", "hp"}, again.Keys())
}

func TestPrefsWrongTypeUsesFallback(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "p.json"))
	p.SetString("hp", "lots")
	assert.Equal(t, 100.0, p.FloatWithFallback("hp", 100))
	assert.False(t, p.Bool("hp", false))
}

func TestPrefsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	p := LoadFrom(path)
	assert.Empty(t, p.Keys())
	p.SetString("name", "x")
	assert.True(t, p.Has("name"))
}

func TestPrefsDeletePrefix(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "p.json"))
	p.SetString("colors.bg", "#000000")
	p.SetString("colors.text", "#000000")
	p.SetString("colorsx", "keep")
	p.Delete("colors")
	assert.Equal(t, []string{"colorsx"}, p.Keys())
}
