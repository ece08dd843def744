package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wedding/internal/service"
	"github.com/Kerhoff/wedding/internal/telemetry"
)

// Options configures the optional parts of the server.
type Options struct {
	// AdminUser and AdminPassword protect /admin with basic auth. The admin
	// routes are not registered when either is empty.
	AdminUser     string
	AdminPassword string
	// ServiceName names the otelhttp server spans.
	ServiceName string
	// Ping backs /healthz. Nil always reports healthy.
	Ping func(ctx context.Context) error
}

// Server provides the RSVP, story and admin JSON API.
type Server struct {
	svc    *service.Service
	logger *logrus.Logger
	opts   Options
	mux    *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, logger *logrus.Logger, opts Options) *Server {
	if opts.ServiceName == "" {
		opts.ServiceName = "wedding"
	}
	s := &Server{svc: svc, logger: logger, opts: opts, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return telemetry.Middleware(s.opts.ServiceName, s.mux)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// API – RSVP
	s.mux.HandleFunc("POST /api/rsvp/lookup", s.handleLookup)
	s.mux.HandleFunc("GET /api/rsvp/guests/{id}", s.handleSelectGuest)
	s.mux.HandleFunc("POST /api/rsvp/guests/{id}/confirm", s.handleConfirm)
	s.mux.HandleFunc("GET /api/rsvp/guests/{id}/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/rsvp/groups/{group}/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/rsvp/guests/{id}/attendance", s.handleAttendance)
	s.mux.HandleFunc("POST /api/rsvp/groups/{group}/attendance", s.handleAttendance)
	s.mux.HandleFunc("POST /api/rsvp/guests/{id}/details", s.handleDetails)
	s.mux.HandleFunc("POST /api/rsvp/groups/{group}/details", s.handleDetails)

	// API – Story timeline
	s.mux.HandleFunc("GET /api/story", s.handleStory)

	// Admin
	if s.opts.AdminUser != "" && s.opts.AdminPassword != "" {
		s.mux.Handle("GET /admin/guests", s.requireAdmin(s.handleAdminListGuests))
		s.mux.Handle("GET /admin/guests/{id}", s.requireAdmin(s.handleAdminGetGuest))
		s.mux.Handle("PUT /admin/guests/{id}", s.requireAdmin(s.handleAdminUpdateGuest))
		s.mux.Handle("GET /admin/guests/{id}/party", s.requireAdmin(s.handleAdminParty))
		s.mux.Handle("GET /admin/summary", s.requireAdmin(s.handleAdminSummary))
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondResult writes a workflow result. Results carrying validation errors
// are 422 so clients can re-render the form; every other view is 200.
func (s *Server) respondResult(w http.ResponseWriter, res *service.Result, err error) {
	if err != nil {
		s.logger.WithError(err).Error("RSVP request failed")
		s.respondError(w, http.StatusInternalServerError, "something went wrong, please try again")
		return
	}
	status := http.StatusOK
	if res.Errors != nil {
		status = http.StatusUnprocessableEntity
	}
	s.respondJSON(w, status, res)
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil || r.Body == http.NoBody {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts the {id} path value and converts it to int64.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, fmt.Errorf("missing id in path")
	}
	return strconv.ParseInt(raw, 10, 64)
}

// pathSubject reads either {id} or {group} into a workflow subject.
func pathSubject(r *http.Request) (service.Subject, error) {
	if raw := r.PathValue("group"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return service.Subject{}, fmt.Errorf("invalid group id %q: %w", raw, err)
		}
		return service.GroupSubject(id), nil
	}
	id, err := pathID(r)
	if err != nil {
		return service.Subject{}, err
	}
	return service.GuestSubject(id), nil
}

// ---------------------------------------------------------------------------
// Story & health
// ---------------------------------------------------------------------------

func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Stories.List(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list story entries")
		s.respondError(w, http.StatusInternalServerError, "failed to list story entries")
		return
	}
	if entries == nil {
		s.respondJSON(w, http.StatusOK, []struct{}{})
		return
	}
	s.respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ping != nil {
		if err := s.opts.Ping(r.Context()); err != nil {
			s.logger.WithError(err).Warn("health check failed")
			s.respondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
