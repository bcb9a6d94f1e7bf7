package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/clients"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/middleware"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/model"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{
		Error:         msg,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

func writeFieldErrors(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{
		Error:         "validation failed",
		CorrelationID: middleware.GetCorrelationID(r.Context()),
		Fields:        fields,
	})
}

// writeUpstreamError maps a failed upstream call onto the response. Client
// errors reported by a service pass through with its message; anything else
// is a bad gateway.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		writeError(w, r, apiErr.StatusCode, apiErr.Message)
		return
	}
	writeError(w, r, http.StatusBadGateway, "upstream request failed: "+err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
