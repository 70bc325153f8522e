// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"cardforge/internal/card"
	"cardforge/internal/image"
	"cardforge/internal/project"
	"cardforge/internal/viewport"
	"cardforge/pkg/colorutil"
)

// State holds the application state: the card being edited, the open
// project and the asset library.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	Modified    bool
	project     *project.File

	Config  *Config
	Library *image.Library

	card    *card.Card
	editing bool

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventCardChanged
	EventImageLoaded
	EventTransformChanged
	EventEditingChanged
	EventColorPicked
	EventExported
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// ColorPick is the payload of EventColorPicked.
type ColorPick struct {
	Field card.ColorField
	Color colorutil.Hex
}

// NewState creates a new application state with a default card.
func NewState(cfg *Config) *State {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &State{
		Config:    cfg,
		Library:   image.NewLibrary(cfg.AssetDir),
		card:      card.New(),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	changed := s.Modified != modified
	s.Modified = modified
	s.mu.Unlock()
	if changed {
		s.Emit(EventModified, modified)
	}
}

// IsModified reports whether there are unsaved changes.
func (s *State) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Modified
}

// Card returns a copy of the current card.
func (s *State) Card() *card.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.card.Clone()
}

// UpdateCard applies fn to the card, normalizes it and emits
// EventCardChanged with a copy.
func (s *State) UpdateCard(fn func(c *card.Card)) {
	s.mu.Lock()
	fn(s.card)
	s.card.Normalize()
	c := s.card.Clone()
	s.mu.Unlock()

	s.Emit(EventCardChanged, c)
	s.SetModified(true)
}

// SetCard replaces the card wholesale, e.g. after loading preferences.
func (s *State) SetCard(c *card.Card) {
	c = c.Clone()
	c.Normalize()
	s.mu.Lock()
	s.card = c
	s.mu.Unlock()
	s.Emit(EventCardChanged, c.Clone())
}

// SetColor validates and stores a colour. Invalid input leaves the card
// unchanged and returns the parse error.
func (s *State) SetColor(field card.ColorField, input string) error {
	h, err := colorutil.Parse(input)
	if err != nil {
		return err
	}
	s.UpdateCard(func(c *card.Card) { c.Colors.Set(field, h) })
	return nil
}

// PickColor stores a colour obtained from the eyedropper.
func (s *State) PickColor(field card.ColorField, h colorutil.Hex) {
	s.UpdateCard(func(c *card.Card) { c.Colors.Set(field, h) })
	s.Emit(EventColorPicked, ColorPick{Field: field, Color: h})
}

// SetImage loads a character image and makes it the card image. The
// viewport transform is reset so the new image is fitted afresh.
func (s *State) SetImage(path string) (*image.Asset, error) {
	asset, err := s.Library.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	s.UpdateCard(func(c *card.Card) {
		c.Image = path
		c.Transform = viewport.Transform{}
	})
	log.Printf("Loaded image %s (%dx%d)", filepath.Base(path), asset.Width(), asset.Height())
	s.Emit(EventImageLoaded, asset)
	return asset, nil
}

// ReloadImage drops the cached image and emits EventImageLoaded again,
// keeping the current transform.
func (s *State) ReloadImage() error {
	path := s.Card().Image
	s.Library.Invalidate(path)
	asset, err := s.Library.Load(path)
	if err != nil {
		return fmt.Errorf("failed to reload image: %w", err)
	}
	s.Emit(EventImageLoaded, asset)
	return nil
}

// SetTransform records the viewport transform without emitting
// EventCardChanged; the preview already shows it.
func (s *State) SetTransform(t viewport.Transform) {
	s.mu.Lock()
	if s.card.Transform == t {
		s.mu.Unlock()
		return
	}
	s.card.Transform = t
	s.mu.Unlock()
	s.Emit(EventTransformChanged, t)
	s.SetModified(true)
}

// SetEditing records the image edit mode.
func (s *State) SetEditing(editing bool) {
	s.mu.Lock()
	changed := s.editing != editing
	s.editing = editing
	s.mu.Unlock()
	if changed {
		s.Emit(EventEditingChanged, editing)
	}
}

// Editing reports whether the image is being repositioned.
func (s *State) Editing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editing
}

// NewProject resets to a default card with no project path.
func (s *State) NewProject() {
	s.mu.Lock()
	s.ProjectPath = ""
	s.project = nil
	s.card = card.New()
	s.Modified = false
	c := s.card.Clone()
	s.mu.Unlock()
	s.Emit(EventCardChanged, c)
	s.Emit(EventModified, false)
}

// LoadProject loads a project from the specified path.
func (s *State) LoadProject(path string) error {
	proj, err := project.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.project = proj
	s.card = proj.Card.Clone()
	s.Modified = false
	c := s.card.Clone()
	s.mu.Unlock()

	s.Emit(EventProjectLoaded, path)
	s.Emit(EventCardChanged, c)
	s.Emit(EventModified, false)
	return nil
}

// SaveProject saves the project to the specified path.
func (s *State) SaveProject(path string) error {
	s.mu.Lock()
	proj := s.project
	if proj == nil || s.ProjectPath != path {
		proj = project.New(project.NameFromPath(path), s.card)
		if s.project != nil {
			proj.Created = s.project.Created
		}
	}
	proj.Card = s.card.Clone()
	s.mu.Unlock()

	if err := proj.Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.project = proj
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	s.Emit(EventModified, false)
	return nil
}
