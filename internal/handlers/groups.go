package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lehmann314159/navigator/internal/models"
	"github.com/lehmann314159/navigator/internal/navigator"
	"github.com/lehmann314159/navigator/internal/repository"
)

type GroupHandler struct {
	repo   *repository.Repository
	logger *log.Logger
}

func NewGroupHandler(repo *repository.Repository, logger *log.Logger) *GroupHandler {
	return &GroupHandler{repo: repo, logger: logger}
}

type groupRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	IsPublic *int   `json:"is_public"`
}

type parentRequest struct {
	ParentID *int64 `json:"parent_id"`
}

type orderRequest struct {
	ParentID *int64  `json:"parent_id"`
	IDs      []int64 `json:"ids"`
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.repo.GetGroups()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// Create appends a new group after its siblings. A sub-group may only be
// created under a top-level group.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, badRequest("name is required"))
		return
	}

	if req.ParentID != nil {
		parent, err := h.repo.GetGroup(*req.ParentID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !parent.IsTopLevel() {
			writeError(w, &navigator.Error{
				Kind:    navigator.KindInvariantViolation,
				Key:     name,
				Message: fmt.Sprintf("parent group %d is itself a sub-group", parent.ID),
			})
			return
		}
	}

	groups, err := h.repo.GetGroups()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := navigator.CheckSiblingName(groups, 0, name, req.ParentID); err != nil {
		writeError(w, err)
		return
	}
	g := models.Group{Name: name, ParentID: req.ParentID, IsPublic: 1}
	if req.IsPublic != nil {
		g.IsPublic = *req.IsPublic
	}
	for _, sibling := range groups {
		if models.SameParent(sibling.ParentID, g.ParentID) {
			g.OrderNum++
		}
	}

	id, err := h.repo.CreateGroup(g)
	if err != nil {
		writeError(w, err)
		return
	}
	g.ID = id
	h.logger.Debug("group created", "id", id, "name", name)
	writeJSON(w, http.StatusCreated, g)
}

// Update renames a group or changes its visibility. Placement is changed
// through SetParent and Order.
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	g, err := h.repo.GetGroup(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" && name != g.Name {
		groups, err := h.repo.GetGroups()
		if err != nil {
			writeError(w, err)
			return
		}
		if err := navigator.CheckSiblingName(groups, g.ID, name, g.ParentID); err != nil {
			writeError(w, err)
			return
		}
		g.Name = name
	}
	if req.IsPublic != nil {
		g.IsPublic = *req.IsPublic
	}

	if err := h.repo.UpdateGroup(*g); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.DeleteGroup(id); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Debug("group deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// SetParent moves a group under another top-level group, or to the top level
// when parent_id is null.
func (h *GroupHandler) SetParent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req parentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.SetGroupParent(id, req.ParentID); err != nil {
		writeError(w, err)
		return
	}

	g, err := h.repo.GetGroup(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// Order rewrites the order of one sibling set. ids must name every sibling
// under parent_id exactly once.
func (h *GroupHandler) Order(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	groups, err := h.repo.GetGroups()
	if err != nil {
		writeError(w, err)
		return
	}
	reordered, err := navigator.ReorderGroups(groups, req.ParentID, req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}

	siblings := []models.Group{}
	for _, g := range reordered {
		if models.SameParent(g.ParentID, req.ParentID) {
			siblings = append(siblings, g)
		}
	}
	if err := h.repo.SetGroupOrder(siblings); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, siblings)
}
