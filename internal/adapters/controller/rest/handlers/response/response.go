package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

// ErrBodyTooLarge is returned by Decode when the body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("request body too large")

func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Detail writes the {"detail": ...} body used for every non-2xx answer.
func Detail(w http.ResponseWriter, code int, detail string) {
	JSON(w, code, map[string]string{"detail": detail})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Status maps an error to the HTTP status of its kind.
func Status(err error) int {
	if errors.Is(err, ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errorz.Kind(err) {
	case errorz.NotFound:
		return http.StatusNotFound
	case errorz.Conflict:
		return http.StatusConflict
	case errorz.Forbidden:
		return http.StatusForbidden
	case errorz.InvalidInput:
		return http.StatusBadRequest
	case errorz.Unauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Error writes err as a detail response. Errors without a domain kind are
// logged and hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, logger *types.Logger, err error) {
	code := Status(err)
	if code == http.StatusInternalServerError {
		logger.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Detail(w, code, "Internal server error")
		return
	}
	Detail(w, code, err.Error())
}

// Decode reads a JSON body into v.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return errorz.InvalidField(fmt.Sprintf("Invalid request body: %v", err))
	}
	return nil
}
