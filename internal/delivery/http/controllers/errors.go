package controllers

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// conflictErrors are domain rule violations reported as 409.
var conflictErrors = []error{
	domain.ErrDuplicateRequest,
	domain.ErrSelfParticipation,
	domain.ErrEventNotPublished,
	domain.ErrCapacityExceeded,
	domain.ErrRequestNotPending,
	domain.ErrInvalidStateForEdit,
	domain.ErrInvalidStateForPublish,
	domain.ErrAlreadyPublished,
	domain.ErrDuplicateEmail,
	domain.ErrDuplicateCategoryName,
	domain.ErrCategoryInUse,
	domain.ErrNotCommentAuthor,
	domain.ErrCommentEditExpired,
}

// writeServiceError maps a service error onto the API error envelope.
// Unknown errors are logged and reported as 500 without detail.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
		return
	}
	for _, sentinel := range conflictErrors {
		if errors.Is(err, sentinel) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, sentinel.Error())
			return
		}
	}
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidEventDate) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
}

// pathID parses a positive int64 path parameter. It writes a 400 and
// returns false on a missing or malformed value.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	s := r.PathValue(name)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryIDs parses a repeated int64 query parameter such as ?ids=1&ids=2.
func queryIDs(r *http.Request, name string) ([]int64, error) {
	values := r.URL.Query()[name]
	ids := make([]int64, 0, len(values))
	for _, s := range values {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// clientIP extracts the caller address for hit recording, preferring
// X-Forwarded-For when a proxy set it.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
