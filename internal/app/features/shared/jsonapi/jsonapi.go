// internal/app/features/shared/jsonapi/jsonapi.go

// Package jsonapi holds the small helpers every JSON handler uses: response
// writing, request decoding, and the error envelope.
package jsonapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxBodySize caps JSON request bodies at 1 MiB.
const maxBodySize = 1 << 20

// ErrorBody is the envelope every error response carries.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// Write serializes v as the response with the given status.
func Write(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response failed", zap.Error(err))
	}
}

// Error writes an error envelope with the given status.
func Error(w http.ResponseWriter, status int, detail string) {
	Write(w, status, ErrorBody{Detail: detail})
}

// ServerError logs err and writes a generic 500. The client never sees the
// underlying error text.
func ServerError(w http.ResponseWriter, logger *zap.Logger, what string, err error) {
	logger.Error(what, zap.Error(err))
	Error(w, http.StatusInternalServerError, "a server error occurred")
}

// Decode reads the request body into dst, rejecting unknown fields and
// oversized bodies.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// A second value in the body is a malformed request.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
