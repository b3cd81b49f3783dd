// Package catalog provides template lookup for the task pipeline. The
// pipeline only needs GetTemplateByID; catalog management itself is a thin
// collaborator kept behind a narrow interface so tests can substitute it.
package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/styleforge/styleforge-api/internal/domain"
)

// ErrTemplateNotFound is returned when no template exists with the given ID.
var ErrTemplateNotFound = errors.New("template not found")

// Catalog defines template lookup operations consumed by the task pipeline.
type Catalog interface {
	// GetTemplateByID retrieves a template by its ID.
	// Returns ErrTemplateNotFound if the template does not exist.
	GetTemplateByID(ctx context.Context, id string) (*domain.Template, error)

	// List returns all templates sorted by ID.
	List(ctx context.Context) ([]*domain.Template, error)
}

// MemoryCatalog is a Catalog backed by an in-memory map.
type MemoryCatalog struct {
	mu        sync.RWMutex
	templates map[string]*domain.Template
}

var _ Catalog = (*MemoryCatalog)(nil)

// NewMemoryCatalog creates a MemoryCatalog holding the given templates.
// Invalid templates are rejected.
func NewMemoryCatalog(templates ...*domain.Template) (*MemoryCatalog, error) {
	c := &MemoryCatalog{
		templates: make(map[string]*domain.Template, len(templates)),
	}

	for _, tmpl := range templates {
		if err := tmpl.Validate(); err != nil {
			return nil, err
		}
		c.templates[tmpl.ID] = tmpl
	}

	return c, nil
}

// NewDefaultCatalog creates a MemoryCatalog with the built-in style set.
func NewDefaultCatalog() *MemoryCatalog {
	c, err := NewMemoryCatalog(builtinTemplates()...)
	if err != nil {
		// Built-ins are compile-time constants; a validation failure here
		// is a programming error.
		panic(err)
	}
	return c
}

// GetTemplateByID retrieves a template by its ID.
func (c *MemoryCatalog) GetTemplateByID(ctx context.Context, id string) (*domain.Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tmpl, ok := c.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}

	clone := *tmpl
	return &clone, nil
}

// List returns all templates sorted by ID.
func (c *MemoryCatalog) List(ctx context.Context) ([]*domain.Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	templates := make([]*domain.Template, 0, len(c.templates))
	for _, tmpl := range c.templates {
		clone := *tmpl
		templates = append(templates, &clone)
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].ID < templates[j].ID
	})

	return templates, nil
}

func builtinTemplates() []*domain.Template {
	return []*domain.Template{
		{
			ID:          "watercolor",
			Name:        "Watercolor",
			Description: "Soft washes of translucent color with visible paper grain",
			Prompt:      "Repaint this photo as a delicate watercolor painting with soft translucent washes, gentle color bleeding and visible paper texture",
		},
		{
			ID:          "anime",
			Name:        "Anime",
			Description: "Clean cel-shaded illustration in a modern anime style",
			Prompt:      "Redraw this photo as a modern anime illustration with clean line art, cel shading and expressive lighting",
		},
		{
			ID:          "oil-painting",
			Name:        "Oil Painting",
			Description: "Rich impasto brushwork in a classical oil style",
			Prompt:      "Repaint this photo as a classical oil painting with rich impasto brushstrokes, deep shadows and warm gallery lighting",
		},
		{
			ID:          "cyberpunk",
			Name:        "Cyberpunk",
			Description: "Neon-drenched futuristic city aesthetic",
			Prompt:      "Reimagine this photo in a cyberpunk style with neon lighting, holographic accents and a rain-slicked futuristic city mood",
		},
		{
			ID:          "sketch",
			Name:        "Pencil Sketch",
			Description: "Hand-drawn graphite sketch with crosshatching",
			Prompt:      "Redraw this photo as a hand-drawn graphite pencil sketch with fine crosshatching and subtle smudged shading",
		},
	}
}
