package fakedevice

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/muurk/streammagic/internal/logging"
)

// SMOIP endpoint paths
const (
	PathInfo    = "/smoip/system/info"
	PathSources = "/smoip/system/sources"
	PathState   = "/smoip/zone/state"
)

// Handler serves the SMOIP API for one Device
type Handler struct {
	Device *Device
	Faults *FaultRegistry
}

// NewHandler creates a handler with an empty fault registry
func NewHandler(d *Device) *Handler {
	return &Handler{Device: d, Faults: NewFaultRegistry()}
}

// Router builds a chi router with the SMOIP routes mounted
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestLog)
	h.Routes(r)
	return r
}

// Routes mounts the SMOIP routes on r
func (h *Handler) Routes(r chi.Router) {
	r.Route("/smoip", func(r chi.Router) {
		r.Use(h.Faults.FaultInjection)

		r.Get("/system/info", h.GetInfo)
		r.Get("/system/sources", h.GetSources)
		r.Get("/zone/state", h.ZoneState)
	})
}

// GetInfo handles GET /smoip/system/info
func (h *Handler) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.Device.Info())
}

// GetSources handles GET /smoip/system/sources
func (h *Handler) GetSources(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]any{"sources": h.Device.Sources()})
}

// ZoneState handles GET /smoip/zone/state, applying any mutation parameters
func (h *Handler) ZoneState(w http.ResponseWriter, r *http.Request) {
	state, err := h.Device.Apply(r.URL.Query())
	if err != nil {
		var bad *BadRequestError
		if errors.As(err, &bad) {
			writeError(w, http.StatusBadRequest, bad.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, state)
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{"data": v})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"code": status, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLog logs each request at debug level
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.Debug("fake device request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
