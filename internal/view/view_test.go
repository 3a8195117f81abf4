package view

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type row struct {
	ID    string `json:"id"`
	Scope string `json:"scope"`
}

// fakeSource hands out subscriptions whose channels the test controls.
type fakeSource struct {
	mu     sync.Mutex
	chans  map[string]chan Event[row]
	open   int
	closed int
}

func newFakeSource() *fakeSource {
	return &fakeSource{chans: make(map[string]chan Event[row])}
}

func (f *fakeSource) subscribe(scope string) (<-chan Event[row], func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan Event[row], 16)
	f.chans[scope] = ch
	f.open++
	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.closed++
	}, nil
}

func (f *fakeSource) emit(scope string, evt Event[row]) {
	f.mu.Lock()
	ch := f.chans[scope]
	f.mu.Unlock()
	ch <- evt
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestActivateEmptyScopeClearsWithoutFetch(t *testing.T) {
	var fetches atomic.Int64
	v := New(func(ctx context.Context, scope string) ([]row, error) {
		fetches.Add(1)
		return []row{{ID: "a"}}, nil
	}, nil)

	if err := v.Activate(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}
	if len(v.Snapshot()) != 1 {
		t.Fatal("expected one row after first activate")
	}

	if err := v.Activate(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if got := v.Snapshot(); len(got) != 0 {
		t.Errorf("snapshot = %v, want empty", got)
	}
	if v.Loading() {
		t.Error("loading should be false for empty scope")
	}
	if n := fetches.Load(); n != 1 {
		t.Errorf("fetch called %d times, want 1 (none for empty scope)", n)
	}
}

func TestFetchErrorLeavesEmptyState(t *testing.T) {
	v := New(func(ctx context.Context, scope string) ([]row, error) {
		return nil, errors.New("boom")
	}, nil)

	err := v.Activate(context.Background(), "c1")
	if err == nil {
		t.Fatal("expected fetch error to be returned")
	}
	if got := v.Snapshot(); len(got) != 0 {
		t.Errorf("snapshot = %v, want empty", got)
	}
	if v.Loading() {
		t.Error("loading must be reset after a failed fetch")
	}
}

func TestInsertEventAppendsWithoutDedup(t *testing.T) {
	src := newFakeSource()
	v := New(func(ctx context.Context, scope string) ([]row, error) {
		return []row{{ID: "a", Scope: scope}}, nil
	}, src.subscribe)

	if err := v.Activate(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}

	// An insert identical to a fetched row is appended, not merged.
	src.emit("c1", Event[row]{Type: Insert, Row: row{ID: "a", Scope: "c1"}})
	src.emit("c1", Event[row]{Type: Insert, Row: row{ID: "b", Scope: "c1"}})

	waitFor(t, func() bool { return len(v.Snapshot()) == 3 })

	got := v.Snapshot()
	want := []string{"a", "a", "b"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("snapshot[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestUpdateEventTriggersRefetch(t *testing.T) {
	var fetches atomic.Int64
	src := newFakeSource()
	v := New(func(ctx context.Context, scope string) ([]row, error) {
		n := fetches.Add(1)
		if n == 1 {
			return []row{{ID: "a"}}, nil
		}
		return []row{{ID: "a"}, {ID: "b"}}, nil
	}, src.subscribe)

	if err := v.Activate(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}

	src.emit("c1", Event[row]{Type: Update, Row: row{ID: "a"}})

	waitFor(t, func() bool { return len(v.Snapshot()) == 2 })
	if fetches.Load() != 2 {
		t.Errorf("fetch called %d times, want 2", fetches.Load())
	}
}

func TestRapidRescopeDiscardsStaleFetchAndEvents(t *testing.T) {
	release := make(chan struct{})
	src := newFakeSource()
	v := New(func(ctx context.Context, scope string) ([]row, error) {
		if scope == "old" {
			// Simulate a slow response that lands after rescoping.
			<-release
			return []row{{ID: "stale", Scope: "old"}}, nil
		}
		return []row{{ID: "fresh", Scope: scope}}, nil
	}, src.subscribe)

	done := make(chan error, 1)
	go func() { done <- v.Activate(context.Background(), "old") }()

	// Rescope twice while the first fetch is still in flight.
	waitFor(t, func() bool { return v.Loading() })
	if err := v.Activate(context.Background(), "mid"); err != nil {
		t.Fatal(err)
	}
	if err := v.Activate(context.Background(), "new"); err != nil {
		t.Fatal(err)
	}

	// Let the stale response land, and push an event on the old scope's
	// channel. Neither may touch current state.
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	src.emit("mid", Event[row]{Type: Insert, Row: row{ID: "leak", Scope: "mid"}})

	time.Sleep(50 * time.Millisecond)
	got := v.Snapshot()
	if len(got) != 1 || got[0].ID != "fresh" || got[0].Scope != "new" {
		t.Errorf("snapshot = %v, want single fresh row for scope new", got)
	}
}

func TestAtMostOneSubscription(t *testing.T) {
	src := newFakeSource()
	v := New(func(ctx context.Context, scope string) ([]row, error) {
		return nil, nil
	}, src.subscribe)

	for _, scope := range []string{"a", "b", "c"} {
		if err := v.Activate(context.Background(), scope); err != nil {
			t.Fatal(err)
		}
	}

	src.mu.Lock()
	open, closed := src.open, src.closed
	src.mu.Unlock()
	if open-closed != 1 {
		t.Errorf("open-closed = %d, want exactly one live subscription", open-closed)
	}

	v.Deactivate()
	src.mu.Lock()
	open, closed = src.open, src.closed
	src.mu.Unlock()
	if open != closed {
		t.Errorf("after deactivate open=%d closed=%d, want equal", open, closed)
	}
	if len(v.Snapshot()) != 0 {
		t.Error("deactivate must clear state")
	}
}

func TestOnEventCallback(t *testing.T) {
	src := newFakeSource()
	v := New(func(ctx context.Context, scope string) ([]row, error) {
		return nil, nil
	}, src.subscribe)

	events := make(chan Event[row], 4)
	v.OnEvent(func(evt Event[row]) { events <- evt })

	if err := v.Activate(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}
	src.emit("c1", Event[row]{Type: Insert, Row: row{ID: "x"}})

	select {
	case evt := <-events:
		if evt.Type != Insert || evt.Row.ID != "x" {
			t.Errorf("unexpected event %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for callback")
	}
}
