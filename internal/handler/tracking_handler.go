package handler

import (
	"net"
	"net/http"
	"strings"

	"commerce-be/internal/domain"
	"commerce-be/internal/service"
	"commerce-be/pkg/logger"
)

// TrackingHandler handles the event ingestion endpoints
type TrackingHandler struct {
	analytics service.Analytics
	logger    *logger.Logger
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(analytics service.Analytics, logger *logger.Logger) *TrackingHandler {
	return &TrackingHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// TrackView handles POST /api/v1/tracking/view
func (h *TrackingHandler) TrackView(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductViewCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	if req.IPAddress == nil {
		req.IPAddress = realIP(r)
	}
	if req.UserAgent == nil {
		ua := r.UserAgent()
		req.UserAgent = &ua
	}

	view, err := h.analytics.TrackView(r.Context(), &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusCreated, view, h.logger)
}

// TrackActivity handles POST /api/v1/tracking/activity
func (h *TrackingHandler) TrackActivity(w http.ResponseWriter, r *http.Request) {
	var req domain.UserActivityCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	if req.IPAddress == nil {
		req.IPAddress = realIP(r)
	}
	if req.UserAgent == nil {
		ua := r.UserAgent()
		req.UserAgent = &ua
	}

	activity, err := h.analytics.TrackActivity(r.Context(), &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusCreated, activity, h.logger)
}

// TrackSale handles POST /api/v1/tracking/sale
func (h *TrackingHandler) TrackSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	sale, err := h.analytics.TrackSale(r.Context(), &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusCreated, sale, h.logger)
}

// realIP extracts the client IP, honoring proxy headers
func realIP(r *http.Request) *string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// first entry is the originating client
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		return &ip
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return &xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return &host
	}
	return &r.RemoteAddr
}
