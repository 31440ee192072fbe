// Package catalog maps user-facing model labels to backend identifiers.
package catalog

import (
	"errors"
	"fmt"

	"royal-terminal/internal/config"
)

var ErrUnknownModel = errors.New("unknown model")

const (
	descText  = "For Text Generation"
	descImage = "For Image Generation"
)

// Model describes one selectable model and what the backend needs to route it.
type Model struct {
	Label        string
	BackendModel string
	// Provider is empty when the backend should pick its default
	Provider        string
	Vision          bool
	ImageGeneration bool
	Description     string
}

// AcceptsImage reports whether an image may be attached to a prompt.
func (m Model) AcceptsImage() bool {
	return m.Vision && !m.ImageGeneration
}

// AcceptsFiles reports whether files may be attached to a prompt.
func (m Model) AcceptsFiles() bool {
	return !m.ImageGeneration
}

var DefaultModels = []Model{
	{Label: "GPT 4o", BackendModel: "gpt-4o", Provider: "PollinationsAI", Vision: true, Description: descText},
	{Label: "Deepseek R1", BackendModel: "deepseek-r1", Provider: "PollinationsAI", Description: descText},
	{Label: "Llama 4", BackendModel: "llamascout", Provider: "PollinationsAI", Description: descText},
	{Label: "Dall-E-3", BackendModel: "dall-e-3", ImageGeneration: true, Description: descImage},
	{Label: "Flux", BackendModel: "flux", ImageGeneration: true, Description: descImage},
}

type Catalog struct {
	models  []Model
	byLabel map[string]Model
}

// New validates models and builds a catalog. The first model is the default.
func New(models []Model) (*Catalog, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one model")
	}

	c := &Catalog{
		models:  make([]Model, 0, len(models)),
		byLabel: make(map[string]Model, len(models)),
	}

	for i, m := range models {
		if m.Label == "" {
			return nil, fmt.Errorf("model %d: empty label", i)
		}
		if m.BackendModel == "" {
			return nil, fmt.Errorf("model %q: empty backend model", m.Label)
		}
		if _, exists := c.byLabel[m.Label]; exists {
			return nil, fmt.Errorf("model %q: duplicate label", m.Label)
		}
		if m.Description == "" {
			m.Description = descText
			if m.ImageGeneration {
				m.Description = descImage
			}
		}

		c.models = append(c.models, m)
		c.byLabel[m.Label] = m
	}

	return c, nil
}

// FromConfig builds the catalog from config overrides, or the defaults when
// none are configured.
func FromConfig(entries []config.ModelConfig) (*Catalog, error) {
	if len(entries) == 0 {
		return New(DefaultModels)
	}

	models := make([]Model, len(entries))
	for i, e := range entries {
		models[i] = Model{
			Label:           e.Label,
			BackendModel:    e.BackendModel,
			Provider:        e.Provider,
			Vision:          e.Vision,
			ImageGeneration: e.ImageGeneration,
			Description:     e.Description,
		}
	}
	return New(models)
}

func (c *Catalog) Lookup(label string) (Model, error) {
	m, ok := c.byLabel[label]
	if !ok {
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, label)
	}
	return m, nil
}

func (c *Catalog) Default() Model {
	return c.models[0]
}

func (c *Catalog) Models() []Model {
	out := make([]Model, len(c.models))
	copy(out, c.models)
	return out
}

func (c *Catalog) Labels() []string {
	labels := make([]string, len(c.models))
	for i, m := range c.models {
		labels[i] = m.Label
	}
	return labels
}
