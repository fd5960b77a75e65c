package data

import (
	"time"

	"github.com/google/uuid"

	"github.com/paninibuild/panini/internal/locale"
)

// Snapshot is the immutable result of one setup pass. Readers hold a
// reference to one snapshot for the duration of a build; the next setup
// produces a new snapshot instead of mutating this one.
type Snapshot struct {
	Version     string
	CreatedAt   time.Time
	Global      map[string]any
	Collections map[string]Collection
	Locales     locale.Table
}

// NewSnapshot assembles a versioned snapshot from loaded state.
func NewSnapshot(global map[string]any, collections map[string]Collection, locales locale.Table) *Snapshot {
	if global == nil {
		global = map[string]any{}
	}
	if collections == nil {
		collections = map[string]Collection{}
	}
	if locales == nil {
		locales = locale.Table{}
	}
	return &Snapshot{
		Version:     uuid.NewString(),
		CreatedAt:   time.Now(),
		Global:      global,
		Collections: collections,
		Locales:     locales,
	}
}
