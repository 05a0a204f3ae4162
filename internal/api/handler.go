// Package api exposes the tank persistence handler over HTTP: one
// resource path with method dispatch, CORS for browser clients, and an
// assistant endpoint that answers questions about the current data.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bodega/internal/assistant"
	"bodega/internal/store"
	"bodega/internal/tank"
)

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type askRequest struct {
	Question string `json:"question"`
}

// Handler serves the tank CRUD API. It is stateless: every request
// re-checks the schema and reads whatever the store currently holds.
type Handler struct {
	store  *store.Store
	bridge *assistant.Bridge
	log    *zap.Logger
}

// New builds a handler. The bridge may be nil when the assistant endpoint
// is not wanted (e.g. in persistence-only tests).
func New(st *store.Store, bridge *assistant.Bridge, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: st, bridge: bridge, log: log}
}

// Routes returns the full mux with observability middleware applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/tanks", h.withObservability("tanks", h.handleTanks))
	mux.Handle("/api/assistant", h.withObservability("assistant", h.handleAssistant))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

func writeCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) handleTanks(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)

	// CORS preflight is answered before anything else touches the store.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx := r.Context()
	if err := h.store.EnsureSchema(ctx); err != nil {
		h.internalError(w, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		tanks, err := h.store.List(ctx)
		if err != nil {
			h.internalError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, tanks)

	case http.MethodPost:
		t, ok := h.decodeTank(w, r, true)
		if !ok {
			return
		}
		if err := h.store.Create(ctx, t); err != nil {
			// Duplicate ids surface as a store uniqueness violation; the
			// wire contract keeps them a generic server error.
			h.internalError(w, err)
			return
		}
		h.writeJSON(w, http.StatusCreated, messageResponse{Message: "Tank created successfully"})

	case http.MethodPut:
		t, ok := h.decodeTank(w, r, false)
		if !ok {
			return
		}
		rows, err := h.store.Update(ctx, t)
		if err != nil {
			h.internalError(w, err)
			return
		}
		if rows == 0 {
			h.log.Warn("update matched no rows", zap.String("id", t.ID))
		}
		h.writeJSON(w, http.StatusOK, messageResponse{Message: "Tank updated successfully"})

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Tank ID is required"})
			return
		}
		rows, err := h.store.Delete(ctx, id)
		if err != nil {
			h.internalError(w, err)
			return
		}
		if rows == 0 {
			h.log.Warn("delete matched no rows", zap.String("id", id))
		}
		h.writeJSON(w, http.StatusOK, messageResponse{Message: "Tank deleted successfully"})

	default:
		h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	}
}

// decodeTank reads and validates a tank payload. The handler enforces the
// same rule set as the client form: form validation is a UX nicety, this
// is the authoritative gate.
func (h *Handler) decodeTank(w http.ResponseWriter, r *http.Request, requireID bool) (tank.Tank, bool) {
	var t tank.Tank
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Request body is required"})
		} else {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body", Details: err.Error()})
		}
		return tank.Tank{}, false
	}
	if err := t.Validate(requireID); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return tank.Tank{}, false
	}
	return t, true
}

func (h *Handler) handleAssistant(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	if h.bridge == nil {
		h.writeJSON(w, http.StatusOK, assistant.Answer{Text: assistant.MsgAPIKeyMissing, Unavailable: true})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Question is required"})
		return
	}

	ctx := r.Context()
	if err := h.store.EnsureSchema(ctx); err != nil {
		h.internalError(w, err)
		return
	}
	tanks, err := h.store.List(ctx)
	if err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.bridge.Ask(ctx, tanks, req.Question))
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	h.log.Error("store error", zap.Error(err))
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "Internal server error",
		Details: err.Error(),
	})
}
