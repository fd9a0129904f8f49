// Package engine turns catalog templates into per-child suggestions and
// dated occurrences. Everything here is pure: results depend only on the
// catalog, the child, the reference date and the calendar location.
package engine

import (
	"time"

	"github.com/notexe/parentime/internal/catalog"
)

// Engine evaluates a fixed catalog in a fixed calendar location.
type Engine struct {
	catalog *catalog.Catalog
	loc     *time.Location
}

// New creates an engine. A nil catalog behaves as an empty one and a nil
// location as time.Local.
func New(cat *catalog.Catalog, loc *time.Location) *Engine {
	if cat == nil {
		cat = catalog.Empty()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{catalog: cat, loc: loc}
}

// Catalog returns the templates the engine evaluates.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Location returns the calendar location used for date arithmetic.
func (e *Engine) Location() *time.Location {
	return e.loc
}
