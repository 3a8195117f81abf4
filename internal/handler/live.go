package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/realtime"
	"github.com/balcaohq/platform/internal/service"
	"github.com/balcaohq/platform/internal/view"
	"github.com/balcaohq/platform/pkg/logger"
	"github.com/balcaohq/platform/pkg/metrics"
)

// heartbeatInterval keeps idle SSE connections open through proxies.
const heartbeatInterval = 30 * time.Second

// LiveHandler streams live row changes over SSE. Each connection owns a
// scoped view: the current rows are replayed as a snapshot, then change
// events flow until the client disconnects.
type LiveHandler struct {
	conversations *service.ConversationService
	messages      *service.MessageService
	feed          *realtime.Feed
	logger        *logger.Logger
}

// NewLiveHandler creates a new live streaming handler.
func NewLiveHandler(
	convSvc *service.ConversationService,
	msgSvc *service.MessageService,
	feed *realtime.Feed,
	log *logger.Logger,
) *LiveHandler {
	return &LiveHandler{
		conversations: convSvc,
		messages:      msgSvc,
		feed:          feed,
		logger:        log,
	}
}

// Messages handles GET /api/v1/conversations/{id}/live
func (h *LiveHandler) Messages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	if _, err := h.conversations.Get(ctx, conversationID); err != nil {
		writeServiceError(w, err)
		return
	}

	fetch := func(ctx context.Context, scope string) ([]model.Message, error) {
		return h.messages.List(ctx, scope)
	}
	v := view.New(fetch, view.FeedSource[model.Message](h.feed, service.TableMessages))

	stream(h, w, r, v, conversationID)
}

// Conversations handles GET /api/v1/live/conversations
//
// The conversation feed is global, so the subscription ignores the scope
// and listens on the unscoped subject.
func (h *LiveHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	fetch := func(ctx context.Context, _ string) ([]model.Conversation, error) {
		resp, err := h.conversations.List(ctx, "")
		if err != nil {
			return nil, err
		}
		return resp.Conversations, nil
	}
	subscribe := func(_ string) (<-chan view.Event[model.Conversation], func(), error) {
		return view.FeedSource[model.Conversation](h.feed, service.TableConversations)("")
	}

	stream(h, w, r, view.New(fetch, subscribe), "all")
}

// stream runs one SSE connection over a view: activate, replay the
// snapshot, then forward live events until the client goes away.
func stream[T any](h *LiveHandler, w http.ResponseWriter, r *http.Request, v *view.View[T], scope string) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	events := make(chan view.Event[T], 64)
	v.OnEvent(func(evt view.Event[T]) {
		select {
		case events <- evt:
		default:
			// Slow client; the snapshot event covers the gap.
		}
	})

	if err := v.Activate(ctx, scope); err != nil {
		h.logger.Error("failed to activate live view",
			zap.String("scope", scope), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to open stream")
		return
	}
	defer v.Deactivate()

	sendSSEEvent(w, flusher, "snapshot", v.Snapshot())

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", map[string]time.Time{"at": time.Now().UTC()})

		case evt := <-events:
			if evt.Type == view.Insert {
				sendSSEEvent(w, flusher, "insert", evt.Row)
				continue
			}
			// Updates and deletes invalidate coarsely; resend the list.
			sendSSEEvent(w, flusher, "snapshot", v.Snapshot())
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
