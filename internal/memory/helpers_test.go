package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errDiskFull = errors.New("disk full")

// fakeBackend records every save and can be told to fail. last holds a
// decoded copy of the most recent snapshot, as a real backend would persist it.
type fakeBackend[R any] struct {
	mu      sync.Mutex
	initial []R
	loadErr error
	saveErr error
	saves   int
	last    []R
}

func (b *fakeBackend[R]) Load(_ context.Context) ([]R, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return b.initial, nil
}

func (b *fakeBackend[R]) Save(_ context.Context, records []R) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	var snapshot []R
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	b.saves++
	b.last = snapshot
	return nil
}

func (b *fakeBackend[R]) saveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

func (b *fakeBackend[R]) snapshot() []R {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func (b *fakeBackend[R]) failSaves(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saveErr = err
}

var epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// stepClock returns a clock advancing one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return epoch.Add(time.Duration(n) * time.Second)
	}
}

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestCommandStore(t *testing.T, initial ...*Command) (*CommandStore, *fakeBackend[*Command]) {
	t.Helper()
	b := &fakeBackend[*Command]{initial: initial}
	s := NewCommandStore(b, WithClock(stepClock()), WithIDGenerator(seqIDs()))
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return s, b
}

func newTestContextStore(t *testing.T, initial ...*Context) (*ContextStore, *fakeBackend[*Context]) {
	t.Helper()
	b := &fakeBackend[*Context]{initial: initial}
	s := NewContextStore(b, WithClock(stepClock()), WithIDGenerator(seqIDs()))
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return s, b
}

// cmdWithUsage builds a persisted command with a given usage count.
func cmdWithUsage(id, category string, usage int) *Command {
	return &Command{
		Header: Header{
			ID:         id,
			Category:   category,
			Tags:       []string{},
			CreatedAt:  epoch,
			UsageCount: usage,
		},
		Command: "cmd " + id,
	}
}

func ids[R Record[R]](records []R) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.header().ID
	}
	return out
}
