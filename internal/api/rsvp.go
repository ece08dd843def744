package api

import (
	"net/http"
	"strings"

	"github.com/Kerhoff/wedding/internal/rsvp"
)

type lookupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type confirmRequest struct {
	Confirm string `json:"confirm"` // yes or no
}

type attendanceRequest struct {
	Decisions map[int64]rsvp.Decision `json:"decisions"`
}

type detailsRequest struct {
	Details map[int64]rsvp.Details `json:"details"`
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.svc.Lookup(r.Context(), req.FirstName, req.LastName)
	s.respondResult(w, res, err)
}

func (s *Server) handleSelectGuest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid guest id")
		return
	}

	res, err := s.svc.SelectGuest(r.Context(), id)
	s.respondResult(w, res, err)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid guest id")
		return
	}

	var req confirmRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	var yes bool
	switch strings.ToLower(strings.TrimSpace(req.Confirm)) {
	case "yes":
		yes = true
	case "no":
	default:
		s.respondError(w, http.StatusBadRequest, `confirm must be "yes" or "no"`)
		return
	}

	res, err := s.svc.Confirm(r.Context(), id, yes)
	s.respondResult(w, res, err)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	subject, err := pathSubject(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.svc.Status(r.Context(), subject)
	s.respondResult(w, res, err)
}

func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	subject, err := pathSubject(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req attendanceRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.svc.DeclareAttendance(r.Context(), subject, req.Decisions)
	s.respondResult(w, res, err)
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	subject, err := pathSubject(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req detailsRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.svc.SubmitDetails(r.Context(), subject, req.Details)
	s.respondResult(w, res, err)
}
