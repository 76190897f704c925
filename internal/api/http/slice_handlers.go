package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nexran/nexran/internal/application/allocation"
	"github.com/nexran/nexran/internal/domain/slice"
)

type sliceUpdateRequest struct {
	AllocationPolicy slice.PolicyConfig `json:"allocation_policy"`
}

func (s *Server) listSlices(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ctl.ListSlices())
}

func (s *Server) createSlice(w http.ResponseWriter, r *http.Request) {
	var req allocation.SliceSpec
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	view, err := s.ctl.CreateSlice(req)
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) getSlice(w http.ResponseWriter, r *http.Request) {
	view, err := s.ctl.GetSlice(chi.URLParam(r, "name"))
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) updateSlice(w http.ResponseWriter, r *http.Request) {
	var req sliceUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	view, id, err := s.ctl.UpdateSlice(r.Context(), chi.URLParam(r, "name"), req.AllocationPolicy)
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondMutation(w, http.StatusOK, view, id)
}

func (s *Server) deleteSlice(w http.ResponseWriter, r *http.Request) {
	id, err := s.ctl.DeleteSlice(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondMutation(w, http.StatusOK, nil, id)
}

func (s *Server) bindUE(w http.ResponseWriter, r *http.Request) {
	view, id, err := s.ctl.BindUE(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "imsi"))
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondMutation(w, http.StatusOK, view, id)
}

func (s *Server) unbindUE(w http.ResponseWriter, r *http.Request) {
	view, id, err := s.ctl.UnbindUE(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "imsi"))
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondMutation(w, http.StatusOK, view, id)
}
