package view

import (
	"encoding/json"

	"github.com/balcaohq/platform/internal/realtime"
)

// FeedSource adapts the realtime change feed into a live source for a view
// over one table. The scope handed to the returned SubscribeFunc selects the
// feed filter; rows are decoded from the event's JSON snapshot.
func FeedSource[T any](feed *realtime.Feed, table string) SubscribeFunc[T] {
	return func(scope string) (<-chan Event[T], func(), error) {
		sub, err := feed.Subscribe(table, scope, realtime.EventAll)
		if err != nil {
			return nil, nil, err
		}

		ch := make(chan Event[T], 64)
		go func() {
			defer close(ch)
			for evt := range sub.C {
				var row T
				if len(evt.Row) > 0 {
					if err := json.Unmarshal(evt.Row, &row); err != nil {
						continue
					}
				}
				ch <- Event[T]{Type: EventType(evt.Type), Row: row}
			}
		}()

		return ch, sub.Close, nil
	}
}
