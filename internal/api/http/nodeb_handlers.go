package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nexran/nexran/internal/application/allocation"
	"github.com/nexran/nexran/internal/domain/zylinium"
)

func (s *Server) listNodeBs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ctl.ListNodeBs())
}

func (s *Server) createNodeB(w http.ResponseWriter, r *http.Request) {
	var req allocation.NodeBSpec
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	view, id, err := s.ctl.CreateNodeB(r.Context(), req)
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondMutation(w, http.StatusCreated, view, id)
}

func (s *Server) getNodeB(w http.ResponseWriter, r *http.Request) {
	view, err := s.ctl.GetNodeB(chi.URLParam(r, "name"))
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) updateNodeB(w http.ResponseWriter, r *http.Request) {
	var req allocation.NodeBUpdate
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	view, err := s.ctl.UpdateNodeB(chi.URLParam(r, "name"), req)
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) deleteNodeB(w http.ResponseWriter, r *http.Request) {
	id, err := s.ctl.DeleteNodeB(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondMutation(w, http.StatusOK, nil, id)
}

func (s *Server) setMask(w http.ResponseWriter, r *http.Request) {
	var req zylinium.BlockedMask
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	id, err := s.ctl.SetMask(r.Context(), chi.URLParam(r, "name"), req)
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondMutation(w, http.StatusAccepted, req, id)
}

func (s *Server) bindSlice(w http.ResponseWriter, r *http.Request) {
	view, id, err := s.ctl.BindSlice(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "slice"))
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondMutation(w, http.StatusOK, view, id)
}

func (s *Server) unbindSlice(w http.ResponseWriter, r *http.Request) {
	view, id, err := s.ctl.UnbindSlice(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "slice"))
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondMutation(w, http.StatusOK, view, id)
}
