package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/Kerhoff/wedding/internal/service"
)

// requireAdmin guards next with HTTP basic auth against the configured
// admin credentials.
func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	user := []byte(s.opts.AdminUser)
	pass := []byte(s.opts.AdminPassword)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), user) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pass) != 1 {
			s.logger.WithField("remote_addr", r.RemoteAddr).Warn("rejected admin request")
			w.Header().Set("WWW-Authenticate", `Basic realm="wedding admin"`)
			s.respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	})
}

func (s *Server) handleAdminListGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := s.svc.ListGuests(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list guests")
		s.respondError(w, http.StatusInternalServerError, "failed to list guests")
		return
	}
	s.respondJSON(w, http.StatusOK, guests)
}

func (s *Server) handleAdminGetGuest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid guest id")
		return
	}

	guest, err := s.svc.GetGuest(r.Context(), id)
	if service.IsNotFound(err) {
		s.respondError(w, http.StatusNotFound, "guest not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to get guest")
		s.respondError(w, http.StatusInternalServerError, "failed to get guest")
		return
	}
	s.respondJSON(w, http.StatusOK, guest)
}

func (s *Server) handleAdminUpdateGuest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid guest id")
		return
	}

	var req service.GuestOverride
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	guest, verr, err := s.svc.OverrideGuest(r.Context(), id, req)
	switch {
	case service.IsNotFound(err):
		s.respondError(w, http.StatusNotFound, "guest not found")
	case err != nil:
		s.logger.WithError(err).Error("failed to update guest")
		s.respondError(w, http.StatusInternalServerError, "failed to update guest")
	case verr != nil:
		s.respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr})
	default:
		s.respondJSON(w, http.StatusOK, guest)
	}
}

func (s *Server) handleAdminParty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid guest id")
		return
	}

	party, err := s.svc.PartyOf(r.Context(), service.GuestSubject(id))
	if service.IsNotFound(err) {
		s.respondError(w, http.StatusNotFound, "guest not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to load party")
		s.respondError(w, http.StatusInternalServerError, "failed to load party")
		return
	}
	s.respondJSON(w, http.StatusOK, party)
}

func (s *Server) handleAdminSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Summary(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to build summary")
		s.respondError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}
