package ws

import (
	"context"
	"net/http"

	"github.com/HerbHall/healthgenie/internal/advisor"
	"github.com/HerbHall/healthgenie/internal/genie"
	"github.com/HerbHall/healthgenie/pkg/plugin"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// Handler provides the WebSocket endpoint streaming connection resolution
// and advice activity to the dashboard.
type Handler struct {
	hub    *Hub
	bus    plugin.EventBus
	logger *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler and subscribes to genie and
// advisor events.
func NewHandler(bus plugin.EventBus, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:    NewHub(logger),
		bus:    bus,
		logger: logger,
	}
	h.subscribeToEvents()
	return h
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/events", h.handleEvents)
}

// handleEvents upgrades the connection to WebSocket and streams lifecycle
// events. The default origin check stays on: the page is served from the
// same host, and nothing else should hold a socket here.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan Message, 256),
		logger: h.logger,
	}

	h.hub.Register(client)

	// Run read and write pumps. When either exits, clean up.
	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	// readPump blocks until client disconnects.
	client.readPump(ctx)

	// Client disconnected -- stop write pump and unregister.
	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

// subscribeToEvents forwards genie resolution and advisor request events
// to all connected WebSocket clients.
func (h *Handler) subscribeToEvents() {
	if h.bus == nil {
		return
	}

	h.bus.Subscribe(genie.TopicResolving, func(_ context.Context, event plugin.Event) {
		ev, ok := event.Payload.(*genie.ResolvingEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageResolving,
			ID:        ev.ResolutionID,
			Timestamp: event.Timestamp,
			Data: ResolvingData{
				Candidates: ev.Candidates,
			},
		})
	})

	h.bus.Subscribe(genie.TopicAttempt, func(_ context.Context, event plugin.Event) {
		ev, ok := event.Payload.(*genie.AttemptEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageAttempt,
			ID:        ev.ResolutionID,
			Timestamp: event.Timestamp,
			Data: AttemptData{
				Attempt: ev.Attempt,
			},
		})
	})

	h.bus.Subscribe(genie.TopicConnected, func(_ context.Context, event plugin.Event) {
		ev, ok := event.Payload.(*genie.ConnectedEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageConnected,
			ID:        ev.ResolutionID,
			Timestamp: event.Timestamp,
			Data: ConnectedData{
				Endpoint:     ev.Endpoint,
				Model:        ev.Model,
				ServerModels: ev.ServerModels,
			},
		})
	})

	h.bus.Subscribe(genie.TopicFailed, func(_ context.Context, event plugin.Event) {
		ev, ok := event.Payload.(*genie.FailedEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageResolveFailed,
			ID:        ev.ResolutionID,
			Timestamp: event.Timestamp,
			Data: ResolveFailedData{
				Attempts:    ev.Attempts,
				Remediation: ev.Remediation,
			},
		})
	})

	h.bus.Subscribe(advisor.TopicAsked, func(_ context.Context, event plugin.Event) {
		ev, ok := event.Payload.(*advisor.AskedEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageAsked,
			ID:        ev.RequestID,
			Timestamp: event.Timestamp,
			Data: AskedData{
				HasBMI: ev.HasBMI,
			},
		})
	})

	h.bus.Subscribe(advisor.TopicAnswered, func(_ context.Context, event plugin.Event) {
		ev, ok := event.Payload.(*advisor.AnsweredEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageAnswered,
			ID:        ev.RequestID,
			Timestamp: event.Timestamp,
			Data: AnsweredData{
				Model:      ev.Model,
				DurationMS: ev.DurationMS,
			},
		})
	})

	h.bus.Subscribe(advisor.TopicFailed, func(_ context.Context, event plugin.Event) {
		ev, ok := event.Payload.(*advisor.FailedEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageAskFailed,
			ID:        ev.RequestID,
			Timestamp: event.Timestamp,
			Data: AskFailedData{
				Code: ev.Code,
			},
		})
	})

	h.logger.Info("subscribed to genie and advisor events for WebSocket broadcasting")
}
