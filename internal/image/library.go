package image

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNoImage is returned when an empty asset path is requested.
var ErrNoImage = errors.New("no image selected")

// Option is one selectable asset in a subdirectory.
type Option struct {
	Value string // Path relative to the library root, slash separated
	Label string // Human readable name derived from the file name
}

// Library loads assets relative to a root directory and caches them by path.
type Library struct {
	root string

	mu    sync.RWMutex
	cache map[string]*Asset
}

// NewLibrary creates a library rooted at dir.
func NewLibrary(dir string) *Library {
	return &Library{
		root:  dir,
		cache: make(map[string]*Asset),
	}
}

// Root returns the library directory.
func (l *Library) Root() string {
	return l.root
}

// Resolve turns a library-relative path into a filesystem path. Absolute
// paths are returned unchanged.
func (l *Library) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.root, filepath.FromSlash(path))
}

// Load returns the decoded asset, from cache when possible.
func (l *Library) Load(path string) (*Asset, error) {
	if path == "" {
		return nil, ErrNoImage
	}
	full := l.Resolve(path)

	l.mu.RLock()
	a, ok := l.cache[full]
	l.mu.RUnlock()
	if ok {
		return a, nil
	}

	a, err := Load(full)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[full] = a
	l.mu.Unlock()
	return a, nil
}

// Invalidate drops a cached asset so the next Load reads the file again.
func (l *Library) Invalidate(path string) {
	full := l.Resolve(path)
	l.mu.Lock()
	if _, ok := l.cache[full]; ok {
		log.Printf("Library: invalidated %s", full)
	}
	delete(l.cache, full)
	l.mu.Unlock()
}

// Options lists the image files in a library subdirectory, sorted by name.
func (l *Library) Options(dir string) ([]Option, error) {
	entries, err := os.ReadDir(l.Resolve(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var opts []Option
	for _, e := range entries {
		if e.IsDir() || FormatFromPath(e.Name()) == FormatUnknown {
			continue
		}
		opts = append(opts, Option{
			Value: filepath.ToSlash(filepath.Join(dir, e.Name())),
			Label: labelFromFile(e.Name()),
		})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Value < opts[j].Value })
	return opts, nil
}

// labelFromFile turns "g4_post.png" into "G4 post".
func labelFromFile(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return name
	}
	return strings.ToUpper(base[:1]) + base[1:]
}
