package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nexran/nexran/internal/application/allocation"
)

func (s *Server) listUEs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ctl.ListUEs())
}

func (s *Server) createUE(w http.ResponseWriter, r *http.Request) {
	var req allocation.UESpec
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	view, err := s.ctl.CreateUE(req)
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) getUE(w http.ResponseWriter, r *http.Request) {
	view, err := s.ctl.GetUE(chi.URLParam(r, "imsi"))
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) updateUE(w http.ResponseWriter, r *http.Request) {
	var req allocation.UEUpdate
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	view, err := s.ctl.UpdateUE(chi.URLParam(r, "imsi"), req)
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) deleteUE(w http.ResponseWriter, r *http.Request) {
	id, err := s.ctl.DeleteUE(r.Context(), chi.URLParam(r, "imsi"))
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondMutation(w, http.StatusOK, nil, id)
}
