package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

//go:embed default_templates.json
var defaultTemplates []byte

// Catalog is an ordered, read-only collection of templates.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

// rawTemplate mirrors the document shape before enum normalization.
type rawTemplate struct {
	ID                      string     `json:"id"`
	Title                   string     `json:"title"`
	Category                string     `json:"category"`
	Priority                string     `json:"priority"`
	Description             string     `json:"description"`
	SeriesID                string     `json:"seriesId"`
	Conditions              Conditions `json:"conditions"`
	DefaultNotificationTime string     `json:"defaultNotificationTime"`
	Schedule                *Schedule  `json:"schedule"`
}

type document struct {
	Templates []rawTemplate `json:"templates"`
}

// New builds a catalog from already-typed templates. Templates without an
// id and later duplicates of an id are dropped.
func New(templates []Template) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(templates))}
	for _, t := range templates {
		if t.ID == "" {
			log.Printf("[catalog] Skipping template without id (title %q)", t.Title)
			continue
		}
		if _, dup := c.byID[t.ID]; dup {
			log.Printf("[catalog] Skipping duplicate template %q", t.ID)
			continue
		}
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c
}

// Empty returns a catalog with no templates.
func Empty() *Catalog {
	return New(nil)
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return Parse(defaultTemplates)
}

// Parse decodes a JSON document, either a bare array of templates or an
// object with a "templates" array. A document that fails to parse yields an
// empty catalog.
func Parse(data []byte) *Catalog {
	raws, err := decodeJSON(data)
	if err != nil {
		log.Printf("[catalog] Warning: ignoring template document: %v", err)
		return Empty()
	}
	return fromRaw(raws)
}

// LoadFile reads a JSON or YAML (.yaml, .yml) template document. Only a
// read failure is reported; malformed content yields an empty catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raws, err := decodeYAML(data)
		if err != nil {
			log.Printf("[catalog] Warning: ignoring template document %s: %v", path, err)
			return Empty(), nil
		}
		return fromRaw(raws), nil
	default:
		return Parse(data), nil
	}
}

func decodeJSON(data []byte) ([]rawTemplate, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	if trimmed[0] == '[' {
		var raws []rawTemplate
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, err
		}
		return raws, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Templates, nil
}

// decodeYAML expects a top-level "templates" list.
func decodeYAML(data []byte) ([]rawTemplate, error) {
	m, err := yaml.Parser().Unmarshal(data)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(m, ""), nil); err != nil {
		return nil, err
	}
	if !k.Exists("templates") {
		return nil, fmt.Errorf("missing templates list")
	}

	var raws []rawTemplate
	if err := k.UnmarshalWithConf("templates", &raws, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	return raws, nil
}

func fromRaw(raws []rawTemplate) *Catalog {
	templates := make([]Template, 0, len(raws))
	for _, r := range raws {
		templates = append(templates, Template{
			ID:                      r.ID,
			Title:                   r.Title,
			Category:                ParseCategory(r.Category),
			Priority:                ParsePriority(r.Priority),
			Description:             r.Description,
			SeriesID:                r.SeriesID,
			Conditions:              r.Conditions,
			DefaultNotificationTime: r.DefaultNotificationTime,
			Schedule:                r.Schedule,
		})
	}
	return New(templates)
}

// Templates returns a copy of the templates in document order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Get looks a template up by id.
func (c *Catalog) Get(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.templates[i], true
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}
