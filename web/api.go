// ABOUTME: JSON API handlers for schedule, clients, notes, sync and settings
// ABOUTME: Each handler decodes the request, calls the desk and maps errors to statuses
package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/harperreed/brokerdesk/followup"
	"github.com/harperreed/brokerdesk/models"
)

type idsRequest struct {
	IDs     []string `json:"ids"`
	Confirm bool     `json:"confirm"`
	Person  string   `json:"person,omitempty"`
}

type brokersRequest struct {
	Brokers []string `json:"brokers"`
}

type thresholdRequest struct {
	Days int `json:"days"`
}

type countResponse struct {
	Changed int `json:"changed"`
}

type credentialStatus struct {
	RedtailUser       string `json:"redtailUser"`
	RedtailKeySet     bool   `json:"redtailKeySet"`
	PipedriveTokenSet bool   `json:"pipedriveTokenSet"`
}

type settingsResponse struct {
	Brokers          []string         `json:"brokers"`
	Lanes            []string         `json:"lanes"`
	OverdueThreshold int              `json:"overdueThreshold"`
	Credentials      credentialStatus `json:"credentials"`
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	week, err := s.desk.Week(r.URL.Query().Get("week"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, week)
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"appointments": s.desk.Appointments()})
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	a, err := s.desk.Appointment(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var req models.Appointment
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	a, err := s.desk.Book(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req models.Appointment
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.ID = chi.URLParam(r, "id")
	a, err := s.desk.UpdateAppointment(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := s.desk.DeleteAppointment(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListClients returns every client with its scheduling status. The q
// parameter narrows the list by name, email or phone.
func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	entries := s.desk.ClientStatuses()
	if q := r.URL.Query().Get("q"); q != "" {
		keep := make(map[string]bool)
		for _, c := range s.desk.FindClients(q) {
			keep[c.ID] = true
		}
		filtered := make([]followup.Entry, 0, len(keep))
		for _, e := range entries {
			if keep[e.Client.ID] {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []followup.Entry{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"clients": entries, "total": len(entries)})
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.desk.Client(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleAddClient(w http.ResponseWriter, r *http.Request) {
	var req models.Client
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c, err := s.desk.AddClient(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	res, err := s.desk.DeleteClient(chi.URLParam(r, "id"), confirm)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := s.desk.BulkDelete(req.IDs, req.Confirm)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBulkAssign(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	n, err := s.desk.BulkAssign(req.IDs, req.Person)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, countResponse{Changed: n})
}

func (s *Server) handleBulkClear(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.writeJSON(w, http.StatusOK, countResponse{Changed: s.desk.BulkClearAssignments(req.IDs)})
}

func (s *Server) handleSetClientBrokers(w http.ResponseWriter, r *http.Request) {
	var req brokersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c, err := s.desk.SetClientBrokers(chi.URLParam(r, "id"), req.Brokers)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	c, err := s.desk.Client(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	notes := s.desk.Notes(c.Name)
	if notes == nil {
		notes = []models.Note{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"client": c.Name, "notes": notes})
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	c, err := s.desk.Client(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req models.Note
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	n, err := s.desk.AddNote(c.Name, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleOverdue(w http.ResponseWriter, r *http.Request) {
	entries := s.desk.Overdue()
	if entries == nil {
		entries = []followup.Entry{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"clients":   entries,
		"threshold": s.desk.Settings().OverdueThreshold,
	})
}

func (s *Server) handleSyncStatuses(w http.ResponseWriter, r *http.Request) {
	statuses := s.desk.SyncStatuses()
	if statuses == nil {
		statuses = []models.SyncState{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"statuses": statuses})
}

// handleSync runs one CRM import to completion. Upstream failures are
// reported as 502 with the message recorded on the sync status.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "sync is not configured")
		return
	}
	res, err := s.syncer.Sync(r.Context(), chi.URLParam(r, "source"))
	if err != nil {
		if status := statusFor(err); status != http.StatusInternalServerError {
			s.writeError(w, status, err.Error())
			return
		}
		s.logger.Warn("sync failed", "source", chi.URLParam(r, "source"), "err", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleImportCSV merges the CSV text in the request body.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "sync is not configured")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	res, err := s.syncer.ImportCSV(string(body))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	st := s.desk.Settings()
	s.writeJSON(w, http.StatusOK, settingsResponse{
		Brokers:          st.Brokers,
		Lanes:            st.Lanes(),
		OverdueThreshold: st.OverdueThreshold,
		Credentials: credentialStatus{
			RedtailUser:       st.Credentials.RedtailUser,
			RedtailKeySet:     st.Credentials.RedtailKey != "",
			PipedriveTokenSet: st.Credentials.PipedriveToken != "",
		},
	})
}

func (s *Server) handleSetBrokers(w http.ResponseWriter, r *http.Request) {
	var req brokersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.writeJSON(w, http.StatusOK, brokersRequest{Brokers: s.desk.SetBrokers(req.Brokers)})
}

func (s *Server) handleSetThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.desk.SetOverdueThreshold(req.Days); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleSetCredentials(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.desk.SetCredentials(req)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="brokerdesk-snapshot.json"`)
	s.writeJSON(w, http.StatusOK, s.desk.Export())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var snap models.Snapshot
	if err := decodeJSON(w, r, &snap); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.desk.Import(snap); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.desk.Export())
}
