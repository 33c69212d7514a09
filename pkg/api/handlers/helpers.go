package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/snapfile/snapfile/internal/logger"
	"github.com/snapfile/snapfile/pkg/metadata"
)

// maxBodySize caps JSON request bodies. The API only carries small
// control payloads; file bytes never travel through these endpoints.
const maxBodySize = 1 << 20

// decodeJSONBody decodes the request body into dst. On failure it writes
// a 400 problem response and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			BadRequest(w, "request body is required")
			return false
		}
		BadRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// decodeBodyQuietly decodes the request body into dst, ignoring an empty
// body. Used by endpoints whose response must not depend on the input.
func decodeBodyQuietly(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)

	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeMetadataError maps a metadata error to the matching problem
// response. Unknown errors become a generic 500.
func writeMetadataError(w http.ResponseWriter, err error) {
	var mdErr *metadata.Error
	if !errors.As(err, &mdErr) {
		logger.Error("unexpected metadata error", logger.Err(err))
		InternalServerError(w)
		return
	}

	switch mdErr.Kind {
	case metadata.KindNotFound:
		NotFound(w, mdErr.Message)
	case metadata.KindConflict:
		Conflict(w, mdErr.Message)
	case metadata.KindInvalidOperation:
		BadRequest(w, mdErr.Message)
	default:
		logger.Error("metadata operation failed", logger.Err(err))
		InternalServerError(w)
	}
}
