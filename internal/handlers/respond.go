package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type Options struct {
	// ExposeErrors puts the raw error text into 5xx responses. Turn it off
	// for anything facing the public internet.
	ExposeErrors  bool
	MaxUploadSize int64
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func clientError(w http.ResponseWriter, status int, kind, detail string) {
	writeJSON(w, status, ErrorResponse{Error: kind, Detail: detail})
}

func serverError(w http.ResponseWriter, logger *zap.Logger, opts Options, kind string, err error) {
	logger.Error("request failed", zap.String("kind", kind), zap.Error(err))

	detail := "internal server error"
	if opts.ExposeErrors {
		detail = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: kind, Detail: detail})
}
