package realtime

import (
	"testing"
)

func TestChangeSubject(t *testing.T) {
	tests := []struct {
		table     string
		scope     string
		eventType EventType
		want      string
	}{
		{"messages", "conv-1", EventInsert, "rt.messages.conv-1.insert"},
		{"conversations", "", EventUpdate, "rt.conversations._.update"},
		{"internal_notes", "conv-2", EventAll, "rt.internal_notes.conv-2.*"},
	}

	for _, tt := range tests {
		if got := changeSubject(tt.table, tt.scope, tt.eventType); got != tt.want {
			t.Errorf("changeSubject(%q, %q, %q) = %q, want %q", tt.table, tt.scope, tt.eventType, got, tt.want)
		}
	}
}

func TestDeliverRacingCloseDropsEvent(t *testing.T) {
	ch := make(chan ChangeEvent, 4)
	s := &Subscription{C: ch, ch: ch}
	s.close = func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(ch)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			s.deliver(ChangeEvent{Table: "messages"})
		}
	}()

	s.Close()
	<-done

	// Deliveries after close must be dropped, not sent on the closed channel.
	s.deliver(ChangeEvent{Table: "messages"})

	for range s.C {
		// Drain whatever landed before the close.
	}
}

func TestSubscriptionCloseIdempotent(t *testing.T) {
	ch := make(chan ChangeEvent)
	closed := 0
	s := &Subscription{C: ch, ch: ch}
	s.close = func() {
		closed++
		close(ch)
	}

	s.Close()
	s.Close()

	if closed != 1 {
		t.Errorf("close ran %d times, want 1", closed)
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
}
