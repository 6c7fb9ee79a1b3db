// Package memory implements the command and context stores: an in-memory
// collection per record kind with weighted text search, usage accounting,
// and whole-collection persistence through a snapshot Backend.
package memory

import (
	"context"
	"slices"
	"time"
)

// DefaultCategory is assigned to records added without a category.
const DefaultCategory = "general"

// DefaultLimit is the result size callers use when they have no opinion.
const DefaultLimit = 10

// Header carries the fields every record kind shares. It is embedded in the
// concrete record types so the JSON snapshot stays flat.
type Header struct {
	ID         string     `json:"id"`
	Category   string     `json:"category"`
	Tags       []string   `json:"tags"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsed   *time.Time `json:"lastUsed,omitempty"`
	UsageCount int        `json:"usageCount"`
}

func (h *Header) header() *Header { return h }

// Touch is the usage-accounting step applied on every read by identifier.
func (h *Header) Touch(now time.Time) {
	h.UsageCount++
	t := now
	h.LastUsed = &t
}

func (h Header) clone() Header {
	c := h
	c.Tags = slices.Clone(h.Tags)
	if h.LastUsed != nil {
		t := *h.LastUsed
		c.LastUsed = &t
	}
	return c
}

// Record is satisfied by the pointer types of the record kinds in this
// package.
type Record[R any] interface {
	comparable
	header() *Header
	clone() R
	defaults()
}

// Patch is a partial update. Apply overwrites only the fields it carries.
type Patch[R any] interface {
	Apply(r R)
}

// Backend loads and saves the whole collection as one snapshot.
type Backend[R any] interface {
	Load(ctx context.Context) ([]R, error)
	Save(ctx context.Context, records []R) error
}
