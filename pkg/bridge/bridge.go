// Package bridge exposes a navigation machine over HTTP and WebSocket.
//
// It is the wrap-side of the router adapter boundary: a thin transport
// that forwards navigation commands into a nav.Machine and streams its
// history events out, for shells that drive navigation remotely or for
// inspecting a live navigator.
package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/navguard-dev/navguard/pkg/nav"
)

// writeTimeout bounds each WebSocket write.
const writeTimeout = 10 * time.Second

// Bridge serves a machine's navigation surface.
type Bridge struct {
	machine  *nav.Machine
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// New creates a bridge over the given machine.
func New(machine *nav.Machine, opts ...Option) *Bridge {
	b := &Bridge{
		machine: machine,
		logger:  slog.Default(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Routes returns the chi router serving the navigation surface:
//
//	GET  /location   current location, route name, and parameters
//	GET  /stack      the navigation stack, root first
//	GET  /history    the recorded history events
//	POST /go         {"location": "...", "payload": ...}
//	POST /push       same body as /go
//	POST /replace    same body as /go
//	POST /pop        pops the top entry
//	GET  /ws         WebSocket stream of history events
func (b *Bridge) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/location", b.handleLocation)
	r.Get("/stack", b.handleStack)
	r.Get("/history", b.handleHistory)
	r.Post("/go", b.handleNavigate(b.machine.Go))
	r.Post("/push", b.handleNavigate(b.machine.Push))
	r.Post("/replace", b.handleNavigate(b.machine.Replace))
	r.Post("/pop", b.handlePop)
	r.Get("/ws", b.handleWS)
	return r
}

// navigateRequest is the body of the go/push/replace endpoints.
type navigateRequest struct {
	Location string          `json:"location"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// navigateResponse reports the outcome of a navigation command.
type navigateResponse struct {
	Location string     `json:"location"`
	Event    *nav.Event `json:"event,omitempty"`
}

type locationResponse struct {
	Location    string            `json:"location"`
	RouteName   string            `json:"routeName,omitempty"`
	PathParams  map[string]string `json:"pathParams,omitempty"`
	QueryParams map[string]string `json:"queryParams,omitempty"`
	CanPop      bool              `json:"canPop"`
}

func (b *Bridge) handleLocation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, locationResponse{
		Location:    b.machine.CurrentLocation(),
		RouteName:   b.machine.CurrentRouteName(),
		PathParams:  b.machine.CurrentPathParams(),
		QueryParams: b.machine.CurrentQueryParams(),
		CanPop:      b.machine.CanPop(),
	})
}

func (b *Bridge) handleStack(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stack": b.machine.Stack()})
}

func (b *Bridge) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"history": b.machine.History()})
}

func (b *Bridge) handleNavigate(op func(ctx context.Context, location string, opts ...nav.NavOption) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req navigateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Location == "" {
			http.Error(w, "invalid navigation request", http.StatusBadRequest)
			return
		}

		var opts []nav.NavOption
		if len(req.Payload) > 0 {
			opts = append(opts, nav.WithPayload(req.Payload))
		}
		if err := op(r.Context(), req.Location, opts...); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		resp := navigateResponse{Location: b.machine.CurrentLocation()}
		if e, ok := b.machine.LastEvent(); ok {
			resp.Event = &e
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (b *Bridge) handlePop(w http.ResponseWriter, r *http.Request) {
	popped := b.machine.Pop()
	writeJSON(w, http.StatusOK, map[string]any{
		"popped":   popped,
		"location": b.machine.CurrentLocation(),
	})
}

// handleWS streams history events until the client disconnects.
func (b *Bridge) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := b.machine.Subscribe()
	defer cancel()

	// Reader goroutine: we never expect client frames, but reading
	// surfaces the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(e); err != nil {
				b.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
