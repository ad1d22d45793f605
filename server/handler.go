package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	forecaster "github.com/aouyang1/go-forecaster-server"
)

// predict answers POST /predict. The handler keeps no state between calls.
func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opt.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.metrics.forecastError("too_large")
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		s.metrics.forecastError("read")
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	req, err := DecodeForecastRequest(body)
	if err != nil {
		s.metrics.forecastError("decode")
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	horizon, err := req.Horizon(s.opt.DefaultHorizon)
	if err != nil {
		s.metrics.forecastError("invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	obs, err := req.Observations()
	if err != nil {
		s.metrics.forecastError("invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	points, err := s.engine.Forecast(r.Context(), obs, horizon)
	if err != nil {
		s.writeForecastError(w, r, err)
		return
	}
	s.metrics.observeForecast(len(obs), time.Since(start))

	writeJSON(w, http.StatusOK, ForecastResponse{Prediction: points})
}

func (s *Server) writeForecastError(w http.ResponseWriter, r *http.Request, err error) {
	var fitErr *forecaster.FitError
	switch {
	case errors.Is(err, forecaster.ErrTimeout):
		s.metrics.forecastError("timeout")
		slog.Warn("forecast timed out", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusServiceUnavailable, msgTimeout)
	case errors.Is(err, forecaster.ErrCanceled):
		s.metrics.forecastError("canceled")
		writeError(w, http.StatusServiceUnavailable, forecaster.ErrCanceled.Error())
	case errors.Is(err, forecaster.ErrInvalidHorizon),
		errors.Is(err, forecaster.ErrHorizonTooLarge),
		errors.Is(err, forecaster.ErrInvalidObservation):
		s.metrics.forecastError("invalid")
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &fitErr):
		s.metrics.forecastError("fit")
		slog.Info("unable to fit forecast", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.metrics.forecastError("internal")
		slog.Error("forecast failed", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, msgNotFound)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
