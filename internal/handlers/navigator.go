package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lehmann314159/navigator/internal/document"
	"github.com/lehmann314159/navigator/internal/navigator"
	"github.com/lehmann314159/navigator/internal/repository"
)

type NavigatorHandler struct {
	repo    *repository.Repository
	logger  *log.Logger
	version string
	now     func() time.Time
}

func NewNavigatorHandler(repo *repository.Repository, logger *log.Logger, version string, now func() time.Time) *NavigatorHandler {
	return &NavigatorHandler{repo: repo, logger: logger, version: version, now: now}
}

// Tree returns every group with its sub-groups and sites, as the front page
// renders them.
func (h *NavigatorHandler) Tree(w http.ResponseWriter, r *http.Request) {
	groups, err := h.repo.GetGroups()
	if err != nil {
		writeError(w, err)
		return
	}
	sites, err := h.repo.GetSites(nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, navigator.Project(groups, sites))
}

func (h *NavigatorHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.repo.LoadDocument()
	if err != nil {
		writeError(w, err)
		return
	}
	document.Stamp(doc, h.version, h.now())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="navigator.json"`)
	if err := document.Encode(w, doc); err != nil {
		h.logger.Error("export failed", "err", err)
	}
}

// Import replaces the whole store with the posted document. Documents that
// break the hierarchy rules are refused with their diagnostics.
func (h *NavigatorHandler) Import(w http.ResponseWriter, r *http.Request) {
	doc, err := document.Decode(r.Body)
	if err != nil {
		writeError(w, badRequest("%v", err))
		return
	}

	if diags := navigator.Validate(doc.Groups, doc.Sites); len(diags) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:       "document failed validation",
			Kind:        navigator.KindInvariantViolation,
			Diagnostics: diags,
		})
		return
	}

	if err := h.repo.ReplaceDocument(doc); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("document imported", "groups", len(doc.Groups), "sites", len(doc.Sites), "configs", len(doc.Configs))
	writeJSON(w, http.StatusOK, map[string]int{
		"groups":  len(doc.Groups),
		"sites":   len(doc.Sites),
		"configs": len(doc.Configs),
	})
}
