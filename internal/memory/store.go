package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/felixgeelhaar/recall/internal/observe"
	"github.com/google/uuid"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
	obs   *observe.Observer
}

// WithClock overrides the time source used for createdAt and lastUsed.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithObserver attaches logging, tracing and metrics.
func WithObserver(obs *observe.Observer) Option {
	return func(o *options) { o.obs = obs }
}

// Store owns the records of one kind. It keeps them in insertion order so
// every listing is reproducible, and writes the full collection through its
// Backend before any mutating call returns.
//
// All operations are serialized: mutations, and reads by identifier which
// update usage counters, hold the write lock through the snapshot write.
// Records are copied on the way in and out.
type Store[R Record[R]] struct {
	mu      sync.RWMutex
	schema  Schema[R]
	backend Backend[R]
	records map[string]R
	order   []string

	now   func() time.Time
	newID func() string
	obs   *observe.Observer
}

// New creates an empty store. Call Initialize before use to load the
// persisted snapshot.
func New[R Record[R]](schema Schema[R], backend Backend[R], opts ...Option) *Store[R] {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.obs == nil {
		o.obs = observe.Discard()
	}
	return &Store[R]{
		schema:  schema,
		backend: backend,
		records: make(map[string]R),
		now:     o.now,
		newID:   o.newID,
		obs:     o.obs,
	}
}

// Kind returns the schema's record kind.
func (s *Store[R]) Kind() string {
	return s.schema.Kind
}

// Initialize replaces the in-memory collection with the persisted snapshot.
// If the snapshot cannot be loaded for any reason the store starts empty and
// writes an empty snapshot; only that bootstrap write can fail the call.
func (s *Store[R]) Initialize(ctx context.Context) error {
	ctx, span := s.obs.StartSpan(ctx, "Store.Initialize", s.schema.Kind)
	defer span.End()
	s.obs.Metrics().RecordOp(s.schema.Kind, "initialize")

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.backend.Load(ctx)
	if err != nil {
		s.obs.Log().Warn().Str("kind", s.schema.Kind).Err(err).Msg("no usable snapshot, starting empty")
		s.reset(nil)
		return s.saveLocked(ctx, "initialize")
	}

	s.reset(loaded)
	s.obs.Metrics().SetRecords(s.schema.Kind, len(s.order))
	s.obs.Log().Info().Str("kind", s.schema.Kind).Int("records", len(s.order)).Msg("snapshot loaded")
	return nil
}

func (s *Store[R]) reset(loaded []R) {
	s.records = make(map[string]R, len(loaded))
	s.order = make([]string, 0, len(loaded))
	var zero R
	for _, r := range loaded {
		if r == zero {
			continue
		}
		id := r.header().ID
		if id == "" {
			s.obs.Log().Warn().Str("kind", s.schema.Kind).Msg("skipping snapshot record without id")
			continue
		}
		if _, dup := s.records[id]; dup {
			s.obs.Log().Warn().Str("kind", s.schema.Kind).Str("id", id).Msg("skipping duplicate snapshot record")
			continue
		}
		r.defaults()
		s.records[id] = r
		s.order = append(s.order, id)
	}
}

// Add inserts a copy of r under a fresh id and returns that id. The id,
// createdAt and usage fields supplied by the caller are ignored.
func (s *Store[R]) Add(ctx context.Context, r R) (string, error) {
	ctx, span := s.obs.StartSpan(ctx, "Store.Add", s.schema.Kind)
	defer span.End()
	s.obs.Metrics().RecordOp(s.schema.Kind, "add")

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := r.clone()
	h := rec.header()
	h.ID = s.uniqueID()
	h.CreatedAt = s.now()
	h.UsageCount = 0
	h.LastUsed = nil
	rec.defaults()

	s.records[h.ID] = rec
	s.order = append(s.order, h.ID)

	if err := s.saveLocked(ctx, "add"); err != nil {
		delete(s.records, h.ID)
		s.order = s.order[:len(s.order)-1]
		return "", err
	}

	s.obs.Log().Debug().Str("kind", s.schema.Kind).Str("id", h.ID).Msg("record added")
	return h.ID, nil
}

func (s *Store[R]) uniqueID() string {
	for {
		id := s.newID()
		if _, taken := s.records[id]; !taken && id != "" {
			return id
		}
	}
}

// Get returns a copy of the record with the given id and records the access
// (usage count and last-used time). A missing id yields ok == false and no
// write.
func (s *Store[R]) Get(ctx context.Context, id string) (R, bool, error) {
	ctx, span := s.obs.StartSpan(ctx, "Store.Get", s.schema.Kind)
	defer span.End()
	s.obs.Metrics().RecordOp(s.schema.Kind, "get")

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessLocked(ctx, "get", id)
}

// lookupLocked returns the id of the first record, in insertion order, that
// satisfies match.
func (s *Store[R]) lookupLocked(match func(R) bool) (string, bool) {
	for _, id := range s.order {
		if match(s.records[id]) {
			return id, true
		}
	}
	return "", false
}

func (s *Store[R]) accessLocked(ctx context.Context, op, id string) (R, bool, error) {
	var zero R
	r, ok := s.records[id]
	if !ok {
		return zero, false, nil
	}

	h := r.header()
	prevCount, prevUsed := h.UsageCount, h.LastUsed
	h.Touch(s.now())

	if err := s.saveLocked(ctx, op); err != nil {
		h.UsageCount, h.LastUsed = prevCount, prevUsed
		return zero, false, err
	}
	return r.clone(), true, nil
}

// Update applies patch to the record with the given id. The id, createdAt
// and usage fields are preserved whatever the patch does. Record defaults
// are re-applied afterwards, so an empty category becomes DefaultCategory and
// a zero context priority becomes 1, the same values a reload would produce.
// It reports whether the record existed; nothing is written when it did not.
func (s *Store[R]) Update(ctx context.Context, id string, patch Patch[R]) (bool, error) {
	ctx, span := s.obs.StartSpan(ctx, "Store.Update", s.schema.Kind)
	defer span.End()
	s.obs.Metrics().RecordOp(s.schema.Kind, "update")

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[id]
	if !ok {
		return false, nil
	}

	next := cur.clone()
	keep := *cur.header()
	patch.Apply(next)
	h := next.header()
	h.ID = keep.ID
	h.CreatedAt = keep.CreatedAt
	h.UsageCount = keep.UsageCount
	h.LastUsed = keep.LastUsed
	next.defaults()

	s.records[id] = next
	if err := s.saveLocked(ctx, "update"); err != nil {
		s.records[id] = cur
		return false, err
	}

	s.obs.Log().Debug().Str("kind", s.schema.Kind).Str("id", id).Msg("record updated")
	return true, nil
}

// Delete removes the record with the given id. It reports whether a record
// was removed; nothing is written when it was not.
func (s *Store[R]) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := s.obs.StartSpan(ctx, "Store.Delete", s.schema.Kind)
	defer span.End()
	s.obs.Metrics().RecordOp(s.schema.Kind, "delete")

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return false, nil
	}

	idx := slices.Index(s.order, id)
	delete(s.records, id)
	s.order = slices.Delete(s.order, idx, idx+1)

	if err := s.saveLocked(ctx, "delete"); err != nil {
		s.records[id] = r
		s.order = slices.Insert(s.order, idx, id)
		return false, err
	}

	s.obs.Log().Debug().Str("kind", s.schema.Kind).Str("id", id).Msg("record deleted")
	return true, nil
}

// saveLocked writes the full collection. On failure the caller must undo its
// in-memory change.
func (s *Store[R]) saveLocked(ctx context.Context, op string) error {
	ctx, span := s.obs.StartSpan(ctx, "Store.save", s.schema.Kind)
	defer span.End()

	start := time.Now()
	err := s.backend.Save(ctx, s.snapshotLocked())
	s.obs.Metrics().RecordSave(s.schema.Kind, time.Since(start))

	if err != nil {
		span.RecordError(err)
		s.obs.Metrics().RecordPersistFailure(s.schema.Kind)
		s.obs.Log().Error().Str("kind", s.schema.Kind).Str("op", op).Err(err).Msg("snapshot write failed")
		return fmt.Errorf("%w: %s %s: %w", ErrPersist, s.schema.Kind, op, err)
	}
	s.obs.Metrics().SetRecords(s.schema.Kind, len(s.order))
	return nil
}

func (s *Store[R]) snapshotLocked() []R {
	out := make([]R, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// Search returns up to limit records matching query, best first. It never
// touches usage counters.
func (s *Store[R]) Search(query string, limit int) []R {
	matches := s.SearchScored(query, limit)
	out := make([]R, len(matches))
	for i, m := range matches {
		out[i] = m.Record
	}
	return out
}

// SearchScored is Search with the score of each hit.
func (s *Store[R]) SearchScored(query string, limit int) []Match[R] {
	s.obs.Metrics().RecordOp(s.schema.Kind, "search")

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := Rank(s.snapshotLocked(), s.schema, query, limit)
	for i := range matches {
		matches[i].Record = matches[i].Record.clone()
	}
	return matches
}

// All returns every record in insertion order.
func (s *Store[R]) All() []R {
	return s.query(nil, nil, -1)
}

// Len returns the number of records held.
func (s *Store[R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// ListByCategory returns the records whose category equals category,
// ordered by the schema's rank and then by usage count.
func (s *Store[R]) ListByCategory(category string) []R {
	s.obs.Metrics().RecordOp(s.schema.Kind, "list")
	match := func(r R) bool { return r.header().Category == category }
	return s.query(match, byRankThenUsage(s.schema), -1)
}

// MostUsed returns the limit records with the highest usage count.
func (s *Store[R]) MostUsed(limit int) []R {
	s.obs.Metrics().RecordOp(s.schema.Kind, "most_used")
	return s.query(nil, byUsage[R], max(limit, 0))
}

// Recent returns the limit most recently created records.
func (s *Store[R]) Recent(limit int) []R {
	s.obs.Metrics().RecordOp(s.schema.Kind, "recent")
	return s.query(nil, byCreated[R], max(limit, 0))
}

// query filters, stable-sorts and truncates the collection. A negative limit
// means no truncation.
func (s *Store[R]) query(match func(R) bool, order func(a, b R) int, limit int) []R {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]R, 0, len(s.order))
	for _, id := range s.order {
		if r := s.records[id]; match == nil || match(r) {
			out = append(out, r)
		}
	}
	if order != nil {
		slices.SortStableFunc(out, order)
	}
	if limit >= 0 {
		out = truncate(out, limit)
	}
	for i := range out {
		out[i] = out[i].clone()
	}
	return out
}

// Categories returns the distinct categories in ascending order.
func (s *Store[R]) Categories() []string {
	return s.distinct(func(r R) []string { return []string{r.header().Category} })
}

// Tags returns the distinct tags across all records in ascending order.
func (s *Store[R]) Tags() []string {
	return s.distinct(func(r R) []string { return r.header().Tags })
}

func (s *Store[R]) distinct(values func(R) []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return distinctSorted(s.snapshotLocked(), values)
}

func distinctSorted[R any](records []R, values func(R) []string) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for _, v := range values(r) {
			seen[v] = struct{}{}
		}
	}
	out := slices.Sorted(maps.Keys(seen))
	if out == nil {
		out = []string{}
	}
	return out
}

// Stats summarizes the collection.
func (s *Store[R]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return computeStats(s.snapshotLocked())
}
