package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/PhelelaniM/UrbanMind/internal/coords"
	"github.com/PhelelaniM/UrbanMind/internal/lookup"
	"github.com/PhelelaniM/UrbanMind/internal/parcel"
	"github.com/PhelelaniM/UrbanMind/internal/zoning"
)

// InsightsResponse is the body of GET /api/insights/{code}.
type InsightsResponse struct {
	ZoneCode      string          `json:"zoneCode"`
	Category      string          `json:"category"`
	Fill          string          `json:"fill"`
	PermittedUses []string        `json:"permittedUses"`
	Restrictions  []string        `json:"restrictions"`
	Insights      zoning.Insights `json:"insights"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Parcels int    `json:"parcels"`
}

// handleGetInformation accepts either request shape and always answers 200;
// failures travel in the envelope.
func (h *Handler) handleGetInformation(w http.ResponseWriter, r *http.Request) {
	var req lookup.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.log.Debug("get_information: bad body", zap.Error(err))
		writeJSON(w, http.StatusOK, lookup.Response{
			Success:   false,
			Error:     lookup.MsgInvalidRequest,
			ErrorCode: lookup.CodeInvalidInput,
		})
		return
	}

	writeJSON(w, http.StatusOK, h.svc.Lookup(r.Context(), req))
}

func (h *Handler) handleParcelByKey(w http.ResponseWriter, r *http.Request) {
	resp := h.svc.ByKey(r.Context(), chi.URLParam(r, "key"))
	writeJSON(w, statusFor(resp), resp)
}

func (h *Handler) handleLocate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(q.Get("lat")), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(q.Get("lng")), 64)
	if latErr != nil || lngErr != nil {
		writeJSON(w, http.StatusBadRequest, lookup.Response{
			Success:   false,
			Kind:      lookup.KindCoordinates,
			Error:     lookup.MsgInvalidCoordinates,
			ErrorCode: lookup.CodeInvalidInput,
		})
		return
	}

	resp := h.svc.ByPoint(r.Context(), coords.Point{Lat: lat, Lng: lng})
	writeJSON(w, statusFor(resp), resp)
}

func (h *Handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	catalog := h.svc.Catalog()
	in := catalog.Classify(code)
	uses := catalog.UseRights(code)

	writeJSON(w, http.StatusOK, InsightsResponse{
		ZoneCode:      code,
		Category:      in.Category,
		Fill:          zoning.FillColor(code),
		PermittedUses: uses.PermittedUses,
		Restrictions:  uses.Restrictions,
		Insights:      in,
	})
}

// handleParcelLayer serves the loaded collection as GeoJSON for map
// rendering, each feature carrying its fill colour and category.
func (h *Handler) handleParcelLayer(w http.ResponseWriter, _ *http.Request) {
	if h.parcels == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "parcel layer not loaded"})
		return
	}

	catalog := h.svc.Catalog()
	data, err := parcel.EncodeGeoJSON(h.parcels.Features(), parcel.DefaultFieldMap(), func(f parcel.Feature) map[string]any {
		return map[string]any{
			"fill":     zoning.FillColor(f.ZoneCode),
			"category": catalog.Category(f.ZoneCode),
		}
	})
	if err != nil {
		h.log.Error("parcel layer encode failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "parcel layer unavailable"})
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Parcels: h.parcels.Len()})
}

// statusFor maps a lookup outcome to an HTTP status for the REST routes.
func statusFor(resp lookup.Response) int {
	if resp.Success {
		return http.StatusOK
	}
	switch resp.ErrorCode {
	case lookup.CodeNotFound:
		return http.StatusNotFound
	case lookup.CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
