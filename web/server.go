// ABOUTME: HTTP server exposing the desk as a JSON API
// ABOUTME: Mounts the API under /api plus the calendar feed and health checks
package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harperreed/brokerdesk/calendar"
	"github.com/harperreed/brokerdesk/desk"
	crmsync "github.com/harperreed/brokerdesk/sync"
)

const maxBodyBytes = 10 << 20

// CalendarName is the display name of the published feed.
const CalendarName = "Broker Desk"

// Syncer runs CRM imports on behalf of the API.
type Syncer interface {
	Sync(ctx context.Context, source string) (*crmsync.Result, error)
	ImportCSV(text string) (*crmsync.Result, error)
}

type Server struct {
	desk   *desk.Desk
	syncer Syncer
	logger *log.Logger
}

func NewServer(d *desk.Desk, syncer Syncer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		desk:   d,
		syncer: syncer,
		logger: logger.WithPrefix("web"),
	}
}

// Handler returns the root router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/calendar.ics", s.handleCalendar)
	r.Mount("/api", s.Routes())

	return r
}

// Routes returns the API router without middleware.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/schedule", s.handleWeek)

	r.Get("/appointments", s.handleListAppointments)
	r.Post("/appointments", s.handleBook)
	r.Get("/appointments/{id}", s.handleGetAppointment)
	r.Put("/appointments/{id}", s.handleUpdateAppointment)
	r.Delete("/appointments/{id}", s.handleDeleteAppointment)

	r.Get("/clients", s.handleListClients)
	r.Post("/clients", s.handleAddClient)
	r.Post("/clients/delete", s.handleBulkDelete)
	r.Post("/clients/assign", s.handleBulkAssign)
	r.Post("/clients/clear-assignments", s.handleBulkClear)
	r.Get("/clients/{id}", s.handleGetClient)
	r.Delete("/clients/{id}", s.handleDeleteClient)
	r.Put("/clients/{id}/brokers", s.handleSetClientBrokers)
	r.Get("/clients/{id}/notes", s.handleListNotes)
	r.Post("/clients/{id}/notes", s.handleAddNote)

	r.Get("/overdue", s.handleOverdue)

	r.Get("/sync", s.handleSyncStatuses)
	r.Post("/sync/{source}", s.handleSync)
	r.Post("/import/csv", s.handleImportCSV)

	r.Get("/settings", s.handleSettings)
	r.Put("/settings/brokers", s.handleSetBrokers)
	r.Put("/settings/threshold", s.handleSetThreshold)
	r.Put("/settings/credentials", s.handleSetCredentials)

	r.Get("/snapshot", s.handleExport)
	r.Put("/snapshot", s.handleImport)

	return r
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := calendar.Filter{Broker: q.Get("broker"), Client: q.Get("client")}
	body := calendar.Feed(s.desk.Appointments(), s.desk.Clock(), filter, CalendarName)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
