package server

import (
	"net/http"

	"github.com/mmynk/syncdays/internal/middleware"
	"github.com/mmynk/syncdays/internal/models"
	"github.com/mmynk/syncdays/internal/service"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

type setMemberNameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	group, err := s.groups.Create(r.Context(), req.Name, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.memberGroup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.Join(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSetMemberName(w http.ResponseWriter, r *http.Request) {
	var req setMemberNameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := s.memberGroup(r); err != nil {
		writeError(w, err)
		return
	}
	if err := s.groups.SetMemberName(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.Delete(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// memberGroup loads the group from the request path and checks that the
// requester is a member.
func (s *Server) memberGroup(r *http.Request) (*models.Group, error) {
	group, err := s.groups.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if !group.HasMember(middleware.GetUserID(r.Context())) {
		return nil, &service.AuthorizationError{Reason: "not a member of this group"}
	}
	return group, nil
}
