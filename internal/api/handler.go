package api

import (
	"context"
	"net/http"
	"strconv"

	"valuation_service/internal/domain/model"
)

const (
	modelVersionHeader = "X-Model-Version"

	// DefaultModelVersion is reported when the predictor carries no version.
	DefaultModelVersion = "v2_Global_Multipliers"

	healthMessage = "House Price Prediction API is running"
)

// Estimator prices properties and warms the area cache.
type Estimator interface {
	Predict(ctx context.Context, p model.Property, live bool) (*model.PredictionResult, error)
	Warm(ctx context.Context, lat, lon float64) (model.Insights, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service       Estimator
	store         Pinger
	validator     *Validator
	liveByDefault bool
	modelVersion  func() string
}

func NewHandler(service Estimator, store Pinger, liveByDefault bool, modelVersion func() string) *Handler {
	if modelVersion == nil {
		modelVersion = func() string { return DefaultModelVersion }
	}
	return &Handler{
		service:       service,
		store:         store,
		validator:     NewValidator(),
		liveByDefault: liveByDefault,
		modelVersion:  modelVersion,
	}
}

// WarmupRequest is the body of POST /api/warmup.
type WarmupRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

type WarmupResponse struct {
	Status string `json:"status"`
	Source string `json:"source"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req model.PredictionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		Error(w, r, err)
		return
	}

	live, err := h.liveMode(r)
	if err != nil {
		Error(w, r, err)
		return
	}

	result, err := h.service.Predict(r.Context(), req.Property(), live)
	if err != nil {
		Error(w, r, err)
		return
	}

	w.Header().Set(modelVersionHeader, h.version())
	JSON(w, r, http.StatusOK, result)
}

// liveMode reads the optional ?live= override.
func (h *Handler) liveMode(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("live")
	if raw == "" {
		return h.liveByDefault, nil
	}
	live, err := strconv.ParseBool(raw)
	if err != nil {
		appErr := model.NewAppError(model.ErrCodeValidationInvalidField, "Invalid field: live", err)
		appErr.Details = map[string]any{"field": "live"}
		return false, appErr
	}
	return live, nil
}

func (h *Handler) version() string {
	if v := h.modelVersion(); v != "" {
		return v
	}
	return DefaultModelVersion
}

func (h *Handler) Warmup(w http.ResponseWriter, r *http.Request) {
	var req WarmupRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		Error(w, r, err)
		return
	}

	ins, err := h.service.Warm(r.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, WarmupResponse{Status: "warmed", Source: ins.Source})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Message: healthMessage})
}

// Ready fails with 503 when the store does not answer.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			JSON(w, r, http.StatusServiceUnavailable, ErrorResponse{
				Error:     "store unavailable",
				Code:      string(model.ErrCodeInternalDB),
				RequestID: RequestIDFrom(r.Context()),
			})
			return
		}
	}
	JSON(w, r, http.StatusOK, HealthResponse{Status: "ready"})
}
