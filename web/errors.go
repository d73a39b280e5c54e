// ABOUTME: JSON response helpers and error to status code mapping
// ABOUTME: Translates desk, schedule and sync sentinel errors into HTTP statuses
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/desk"
	"github.com/harperreed/brokerdesk/schedule"
	crmsync "github.com/harperreed/brokerdesk/sync"
)

type errResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("json encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errResponse{Error: msg})
}

// fail writes err with the status it maps to. Unmapped errors are logged and
// reported as internal errors.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		s.writeError(w, status, "internal error")
		return
	}
	s.writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, desk.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrSlotOccupied),
		errors.Is(err, desk.ErrDuplicateClient):
		return http.StatusConflict
	case errors.Is(err, desk.ErrConfirmationRequired),
		errors.Is(err, desk.ErrEmptyName),
		errors.Is(err, desk.ErrEmptyNote),
		errors.Is(err, desk.ErrInvalidThreshold),
		errors.Is(err, dates.ErrInvalidDate),
		errors.Is(err, crmsync.ErrUnknownSource):
		return http.StatusBadRequest
	case errors.Is(err, schedule.ErrEmptyClient),
		errors.Is(err, schedule.ErrBadDuration),
		errors.Is(err, schedule.ErrOutsideHours),
		errors.Is(err, schedule.ErrUnknownLane),
		errors.Is(err, schedule.ErrPastDate),
		errors.Is(err, crmsync.ErrUnparseableCSV),
		errors.Is(err, crmsync.ErrMissingCredentials):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
