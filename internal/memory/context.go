package memory

import (
	"cmp"
	"context"
)

// HighPriorityThreshold is the lowest priority counted as high.
const HighPriorityThreshold = 3

// Context is a remembered snippet of background text, addressable by a
// short key.
type Context struct {
	Header
	Key      string `json:"key"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Priority int    `json:"priority"`
}

func (c *Context) clone() *Context {
	cp := *c
	cp.Header = c.Header.clone()
	return &cp
}

func (c *Context) defaults() {
	applyHeaderDefaults(&c.Header)
	if c.Priority == 0 {
		c.Priority = 1
	}
}

func byPriority(a, b *Context) int {
	return cmp.Compare(b.Priority, a.Priority)
}

// ContextSchema weights the key highest, then title and content. Ties on
// score are broken by priority before usage.
var ContextSchema = Schema[*Context]{
	Kind: "contexts",
	Fields: []Field[*Context]{
		{Name: "key", Weight: 5, Values: text(func(c *Context) string { return c.Key })},
		{Name: "title", Weight: 3, Values: text(func(c *Context) string { return c.Title })},
		{Name: "content", Weight: 2, Values: text(func(c *Context) string { return c.Content })},
		tagsField[*Context](1),
		categoryField[*Context](1),
	},
	Rank: byPriority,
}

// ContextPatch holds the fields to overwrite in a context. Nil fields are
// left untouched; a non-nil empty Tags clears the tags.
type ContextPatch struct {
	Key      *string
	Title    *string
	Content  *string
	Category *string
	Tags     []string
	Priority *int
}

// Apply implements Patch.
func (p ContextPatch) Apply(c *Context) {
	if p.Key != nil {
		c.Key = *p.Key
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Content != nil {
		c.Content = *p.Content
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Tags != nil {
		c.Tags = append([]string{}, p.Tags...)
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
}

// ContextStats extends Stats with key and priority counts.
type ContextStats struct {
	Stats
	Keys              int `json:"keys"`
	HighPriorityCount int `json:"highPriorityCount"`
}

// ContextStore is the store of remembered contexts.
type ContextStore struct {
	*Store[*Context]
}

// NewContextStore creates a context store persisted through backend.
func NewContextStore(backend Backend[*Context], opts ...Option) *ContextStore {
	return &ContextStore{Store: New(ContextSchema, backend, opts...)}
}

// GetByKey is Get addressed by the key field. When several contexts share a
// key the earliest added one is returned.
func (s *ContextStore) GetByKey(ctx context.Context, key string) (*Context, bool, error) {
	ctx, span := s.obs.StartSpan(ctx, "Store.GetByKey", s.schema.Kind)
	defer span.End()
	s.obs.Metrics().RecordOp(s.schema.Kind, "get_by_key")

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.lookupLocked(func(c *Context) bool { return c.Key == key })
	if !ok {
		return nil, false, nil
	}
	return s.accessLocked(ctx, "get_by_key", id)
}

// Keys returns the distinct keys in ascending order.
func (s *ContextStore) Keys() []string {
	return s.distinct(func(c *Context) []string { return []string{c.Key} })
}

// HighPriority returns up to limit contexts with priority of at least
// HighPriorityThreshold, highest priority first, then by usage count.
func (s *ContextStore) HighPriority(limit int) []*Context {
	s.obs.Metrics().RecordOp(s.schema.Kind, "high_priority")
	high := func(c *Context) bool { return c.Priority >= HighPriorityThreshold }
	return s.query(high, byRankThenUsage(s.schema), max(limit, 0))
}

// Stats summarizes the store including key and priority counts.
func (s *ContextStore) Stats() ContextStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.snapshotLocked()
	st := ContextStats{
		Stats: computeStats(records),
		Keys:  len(distinctSorted(records, func(c *Context) []string { return []string{c.Key} })),
	}
	for _, c := range records {
		if c.Priority >= HighPriorityThreshold {
			st.HighPriorityCount++
		}
	}
	return st
}
