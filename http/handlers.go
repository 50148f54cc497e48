package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"stockpredictor/ml"
	"stockpredictor/monitoring"
)

// Channels label where a prediction request came from.
const (
	channelForm      = "form"
	channelAPI       = "api"
	channelWebSocket = "websocket"
)

// Predictor is the model the handlers serve. *ml.Predictor implements it.
type Predictor interface {
	Predict(ctx context.Context, record ml.Record) (float64, error)
	Schema() ml.Schema
	Kind() string
}

// Handlers serves the form page, the JSON API and the live channel from one predictor.
type Handlers struct {
	predictor Predictor
	logger    *zap.Logger
	metrics   *monitoring.PredictionMetrics
	upgrader  websocket.Upgrader
	maxBody   int64
}

func NewHandlers(predictor Predictor, logger *zap.Logger, config ServerConfig) *Handlers {
	origins := config.AllowedOrigins
	return &Handlers{
		predictor: predictor,
		logger:    logger,
		metrics:   monitoring.NewPredictionMetrics(monitoring.NewMetricsCollector()),
		maxBody:   config.MaxBodyBytes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(origins, origin)
			},
		},
	}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /{$}", h.handleFormSubmit)
	mux.Handle("GET /static/", staticHandler())
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/model", h.handleModel)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/ws/predict", h.handlePredictWS)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics serves Prometheus text, or JSON with ?format=json.
func (h *Handlers) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "json" {
		payload, err := h.metrics.Collector().ExportJSON()
		if err != nil {
			h.logger.Error("export metrics", zap.Error(err))
			http.Error(w, "metrics unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Write([]byte(h.metrics.Collector().ExportPrometheus()))
}

func (h *Handlers) handleModel(w http.ResponseWriter, r *http.Request) {
	schema := h.predictor.Schema()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kind":     h.predictor.Kind(),
		"features": schema.Features,
		"target":   schema.Target,
	})
}

// predictResponse is shared by the JSON API and the websocket channel.
// Prediction is omitted when the model returns NaN or an infinity, which JSON
// cannot carry; Text always holds the rendered value.
type predictResponse struct {
	Prediction *float64 `json:"prediction,omitempty"`
	Text       string   `json:"text,omitempty"`
	Target     string   `json:"target,omitempty"`
	Error      string   `json:"error,omitempty"`
	Missing    []string `json:"missing,omitempty"`
	Unexpected []string `json:"unexpected,omitempty"`
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	record, err := decodeRecord(r.Body)
	if err != nil {
		h.metrics.RecordPrediction(channelAPI, monitoring.OutcomeInvalidInput, 0)
		writeJSON(w, http.StatusBadRequest, predictResponse{Error: "invalid record: " + err.Error()})
		return
	}

	status, resp := h.predict(r.Context(), channelAPI, record, printerFor(r))
	writeJSON(w, status, resp)
}

// predict runs one prediction and maps the outcome to a status and response body.
func (h *Handlers) predict(ctx context.Context, channel string, record ml.Record, printer *message.Printer) (int, predictResponse) {
	start := time.Now()
	value, err := h.predictor.Predict(ctx, record)
	if err != nil {
		h.logger.Warn("prediction failed",
			zap.String("request_id", GetRequestID(ctx)),
			zap.String("channel", channel),
			zap.Error(err),
		)
		var mismatch *ml.SchemaMismatchError
		if errors.As(err, &mismatch) {
			h.metrics.RecordPrediction(channel, monitoring.OutcomeSchemaMismatch, time.Since(start))
			return http.StatusUnprocessableEntity, predictResponse{
				Error:      err.Error(),
				Missing:    mismatch.Missing,
				Unexpected: mismatch.Unexpected,
			}
		}
		h.metrics.RecordPrediction(channel, monitoring.OutcomeError, time.Since(start))
		return http.StatusInternalServerError, predictResponse{Error: err.Error()}
	}
	h.metrics.RecordPrediction(channel, monitoring.OutcomeOK, time.Since(start))

	h.logger.Debug("prediction",
		zap.String("request_id", GetRequestID(ctx)),
		zap.Float64("value", value),
	)
	resp := predictResponse{
		Text:   formatPrediction(printer, value),
		Target: h.predictor.Schema().Target,
	}
	if !math.IsNaN(value) && !math.IsInf(value, 0) {
		resp.Prediction = &value
	}
	return http.StatusOK, resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
