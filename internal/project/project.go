// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cardforge/internal/card"
)

// Extension is the file extension of project files.
const Extension = ".cardproj"

// CurrentVersion is written by Save.
const CurrentVersion = 1

// File represents a card project file (.cardproj).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	Card *card.Card `json:"card"`

	// Character image path (relative to project file). Empty when the card
	// uses an image from the asset library.
	ImagePath string `json:"image,omitempty"`
}

// New creates a new project file holding a copy of c.
func New(name string, c *card.Card) *File {
	if c == nil {
		c = card.New()
	}
	now := time.Now()
	return &File{
		Version:  CurrentVersion,
		Name:     name,
		Created:  now,
		Modified: now,
		Card:     c.Clone(),
	}
}

// NameFromPath derives a project name from its file name.
func NameFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Load loads a project from a .cardproj file. The card is normalized and,
// when the project carries its own image, Card.Image is set to its absolute
// path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", filepath.Base(path), err)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("project version %d is newer than supported version %d", proj.Version, CurrentVersion)
	}
	if proj.Card == nil {
		proj.Card = card.New()
	}
	proj.Card.Normalize()
	if img := proj.GetImagePath(path); img != "" {
		proj.Card.Image = img
	}
	if proj.Name == "" {
		proj.Name = NameFromPath(path)
	}

	return &proj, nil
}

// Save saves the project to a file. An absolute Card.Image is stored
// relative to the project.
func (p *File) Save(path string) error {
	p.Version = CurrentVersion
	p.Modified = time.Now()
	if p.Created.IsZero() {
		p.Created = p.Modified
	}

	out := *p
	if p.Card != nil {
		out.Card = p.Card.Clone()
		if filepath.IsAbs(out.Card.Image) {
			out.SetImage(path, out.Card.Image)
			out.Card.Image = ""
		} else {
			out.ImagePath = ""
		}
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	p.ImagePath = out.ImagePath
	return nil
}

// SetImage sets the image path (relative to project).
func (p *File) SetImage(projectPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), imagePath)
	if err != nil {
		p.ImagePath = imagePath
	} else {
		p.ImagePath = rel
	}
	p.Modified = time.Now()
}

// GetImagePath returns the absolute path to the image, or "" when the
// project has none.
func (p *File) GetImagePath(projectPath string) string {
	if p.ImagePath == "" {
		return ""
	}
	if filepath.IsAbs(p.ImagePath) {
		return p.ImagePath
	}
	return filepath.Join(filepath.Dir(projectPath), p.ImagePath)
}
