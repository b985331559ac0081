package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/mcpdesk/mcpdesk/internal/api"
	"github.com/mcpdesk/mcpdesk/pkg/logging"
)

const (
	maxRequestBody    = 1 << 20
	keepAliveInterval = 30 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Subscriber is the consumer side of the event bus.
type Subscriber interface {
	Subscribe(types ...api.EventType) (<-chan api.Event, func())
}

// Server exposes a Bridge over HTTP.
type Server struct {
	bridge         *Bridge
	events         Subscriber
	allowedOrigins []string
}

// NewServer creates an HTTP front for b. Browsers may only call it from
// allowedOrigins.
func NewServer(b *Bridge, events Subscriber, allowedOrigins []string) *Server {
	return &Server{
		bridge:         b,
		events:         events,
		allowedOrigins: allowedOrigins,
	}
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("POST /api/{channel}", s.handleInvoke)

	return cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mux)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	logging.Info("BridgeServer", "Listening on http://%s", listener.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		httpServer.Close()
		logging.Warn("BridgeServer", "Forced shutdown: %v", err)
	}
	logging.Info("BridgeServer", "Stopped")
	return nil
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type responseBody struct {
	Result any        `json:"result"`
	Error  *errorBody `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Debug("BridgeServer", "Writing response: %v", err)
	}
}

// statusFor maps an error to its HTTP status and JSON-RPC style code.
func statusFor(err error) (int, int) {
	switch {
	case IsUnknownChannel(err):
		return http.StatusNotFound, api.CodeInternalError
	case api.IsNotConnected(err):
		return http.StatusConflict, api.CodeNotConnected
	case api.IsNotFound(err):
		return http.StatusNotFound, api.CodeInternalError
	case api.IsInvalidPayload(err):
		return http.StatusBadRequest, api.CodeInvalidParams
	case api.IsMissingParameter(err), api.IsUnsupportedKind(err):
		return http.StatusBadRequest, api.CodeInvalidParams
	case api.IsConnectFailed(err):
		return http.StatusBadGateway, api.CodeInternalError
	default:
		return http.StatusInternalServerError, api.CodeInternalError
	}
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	channel := r.PathValue("channel")

	var args []json.RawMessage
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, responseBody{Error: &errorBody{Code: api.CodeInvalidParams, Message: err.Error()}})
		return
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &args); err != nil {
			err = &api.InvalidPayloadError{Err: fmt.Errorf("body must be a JSON array of arguments: %w", err)}
			writeJSON(w, http.StatusBadRequest, responseBody{Error: &errorBody{Code: api.CodeInvalidParams, Message: err.Error()}})
			return
		}
	}

	result, err := s.bridge.Invoke(r.Context(), channel, args)
	if err != nil {
		status, code := statusFor(err)
		logging.Debug("BridgeServer", "%s failed: %v", channel, err)
		writeJSON(w, status, responseBody{Error: &errorBody{Code: code, Message: err.Error()}})
		return
	}
	writeJSON(w, http.StatusOK, responseBody{Result: result})
}

// handleEvents streams bus events as Server-Sent Events. The SSE event name
// is the event type.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := s.events.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logging.Warn("BridgeServer", "Dropping unencodable event %s: %v", ev.Type, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
