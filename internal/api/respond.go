package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// HeaderUserID carries the caller's identity on every request.
const HeaderUserID = "X-Sharer-User-Id"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps domain errors to HTTP codes in one place. The message is
// the error text itself so clients see which check failed.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrSelfBooking):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrTimeConflict),
		errors.Is(err, domain.ErrStatusConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTimeRange),
		errors.Is(err, domain.ErrItemUnavailable),
		errors.Is(err, domain.ErrUnknownState),
		errors.Is(err, domain.ErrInvalidPagination),
		errors.Is(err, domain.ErrCommentNotAllowed):
		status = http.StatusBadRequest
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeBadRequest(w http.ResponseWriter, format string, args ...interface{}) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf(format, args...)})
}

// callerID reads the identity header. Zero with false means the header was
// missing or malformed and a response has been written.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(HeaderUserID)
	if raw == "" {
		writeBadRequest(w, "%s header is required", HeaderUserID)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "%s header must be a positive integer", HeaderUserID)
		return 0, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, raw, name string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "%s must be a positive integer", name)
		return 0, false
	}
	return id, true
}

// pageParams reads from/size with the service defaults. Range validation
// stays in the services; only parse failures are rejected here.
func pageParams(w http.ResponseWriter, r *http.Request) (from, size int, ok bool) {
	from = models.DefaultPageFrom
	size = models.DefaultPageSize

	if raw := r.URL.Query().Get("from"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "from must be an integer")
			return 0, 0, false
		}
		from = v
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "size must be an integer")
			return 0, 0, false
		}
		size = v
	}
	return from, size, true
}
