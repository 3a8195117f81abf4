package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/balcaohq/platform/pkg/metrics"
)

// EventType is the kind of row change carried on the feed.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
	// EventAll subscribes to every change type for a scope.
	EventAll EventType = "*"
)

// ChangeEvent is a row-level change pushed to subscribers. Row is the JSON
// snapshot of the affected row.
type ChangeEvent struct {
	Table string          `json:"table"`
	Type  EventType       `json:"type"`
	Scope string          `json:"scope,omitempty"`
	Row   json.RawMessage `json:"row,omitempty"`
	At    time.Time       `json:"at"`
}

// NewChangeEvent builds a change event with the row marshaled to JSON.
func NewChangeEvent(table string, eventType EventType, scope string, row any) (ChangeEvent, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return ChangeEvent{}, fmt.Errorf("failed to marshal row: %w", err)
	}
	return ChangeEvent{
		Table: table,
		Type:  eventType,
		Scope: scope,
		Row:   data,
		At:    time.Now().UTC(),
	}, nil
}

// Publisher publishes change events to the feed.
type Publisher interface {
	PublishChange(ctx context.Context, evt ChangeEvent) error
}

// SubjectPrefix is the prefix for all change-feed subjects.
const SubjectPrefix = "rt"

// changeSubject returns the subject for a change event. An empty scope maps
// to the "_" token so the subject stays well-formed.
func changeSubject(table, scope string, eventType EventType) string {
	if scope == "" {
		scope = "_"
	}
	return fmt.Sprintf("%s.%s.%s.%s", SubjectPrefix, table, scope, eventType)
}

// Feed publishes and subscribes row change events over NATS.
type Feed struct {
	client *Client
}

// NewFeed creates a change feed over an established connection.
func NewFeed(client *Client) *Feed {
	return &Feed{client: client}
}

// PublishChange pushes one change event to every matching subscriber.
func (f *Feed) PublishChange(ctx context.Context, evt ChangeEvent) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	if err := f.client.conn.Publish(changeSubject(evt.Table, evt.Scope, evt.Type), data); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	metrics.ChangeEventsPublished.WithLabelValues(evt.Table, string(evt.Type)).Inc()
	return nil
}

// Subscription is a handle on an open change-feed subscription. It must be
// closed by the consumer; Close is safe to call more than once.
type Subscription struct {
	C <-chan ChangeEvent

	sub    *nats.Subscription
	ch     chan ChangeEvent
	mu     sync.Mutex
	closed bool
	once   sync.Once
	close  func()
}

// Close drains the NATS subscription and closes the event channel.
func (s *Subscription) Close() {
	s.once.Do(s.close)
}

// deliver hands one event to the consumer. Unsubscribe does not wait for an
// in-flight message callback, so the send is guarded by the same lock that
// marks the subscription closed; a delivery racing Close is dropped instead
// of hitting a closed channel.
func (s *Subscription) deliver(evt ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- evt:
	default:
		// Subscriber is full; drop.
	}
}

// Subscribe opens a subscription filtered by table, scope, and event type.
// Events that arrive while the consumer is not ready are dropped rather than
// blocking the feed.
func (f *Feed) Subscribe(table, scope string, eventType EventType) (*Subscription, error) {
	ch := make(chan ChangeEvent, 64)
	s := &Subscription{C: ch, ch: ch}

	sub, err := f.client.conn.Subscribe(changeSubject(table, scope, eventType), func(msg *nats.Msg) {
		var evt ChangeEvent
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			return
		}
		s.deliver(evt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	s.sub = sub
	s.close = func() {
		_ = sub.Unsubscribe()
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(ch)
	}
	return s, nil
}
