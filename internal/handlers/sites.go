package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lehmann314159/navigator/internal/models"
	"github.com/lehmann314159/navigator/internal/navigator"
	"github.com/lehmann314159/navigator/internal/repository"
)

type SiteHandler struct {
	repo     *repository.Repository
	logger   *log.Logger
	inserter navigator.Inserter
	now      func() time.Time
}

func NewSiteHandler(repo *repository.Repository, logger *log.Logger, faviconService string, now func() time.Time) *SiteHandler {
	if faviconService == "" {
		faviconService = navigator.DefaultFaviconService
	}
	return &SiteHandler{
		repo:     repo,
		logger:   logger,
		inserter: navigator.Inserter{FaviconService: faviconService},
		now:      now,
	}
}

type siteRequest struct {
	GroupID     int64  `json:"group_id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	IsPublic    *int   `json:"is_public"`
}

type bulkRequest struct {
	GroupID int64              `json:"group_id"`
	Entries []models.BulkEntry `json:"entries"`
}

type bulkResponse struct {
	Inserted    []models.Site          `json:"inserted"`
	Diagnostics []navigator.Diagnostic `json:"diagnostics"`
}

func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	var groupID *int64
	if groupStr := r.URL.Query().Get("group"); groupStr != "" {
		id, err := strconv.ParseInt(groupStr, 10, 64)
		if err != nil {
			writeError(w, badRequest("invalid group %q", groupStr))
			return
		}
		groupID = &id
	}

	sites, err := h.repo.GetSites(groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

// Create appends a site to the end of its group. Without an explicit icon the
// favicon is derived from the site's hostname.
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req siteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	site, err := h.siteFromRequest(req)
	if err != nil {
		writeError(w, err)
		return
	}

	scoped, err := h.repo.GetSites(&site.GroupID)
	if err != nil {
		writeError(w, err)
		return
	}
	site.OrderNum = len(scoped)
	site.CreatedAt = site.UpdatedAt

	id, err := h.repo.CreateSite(site)
	if err != nil {
		writeError(w, err)
		return
	}
	site.ID = id
	h.logger.Debug("site created", "id", id, "group", site.GroupID, "url", site.URL)
	writeJSON(w, http.StatusCreated, site)
}

// Bulk inserts prepared entries into one group the way the maintenance
// insert command does. Entries with unusable URLs are reported, not stored.
func (h *SiteHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

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

	res := h.inserter.InsertBatch(groups, sites, req.GroupID, req.Entries, h.now())
	for _, d := range res.Diagnostics {
		if d.Kind == navigator.KindLookupFailure {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: d.String(), Kind: d.Kind, Diagnostics: res.Diagnostics})
			return
		}
	}

	if err := h.repo.InsertSites(res.Inserted); err != nil {
		writeError(w, err)
		return
	}
	for _, d := range res.Diagnostics {
		h.logger.Warn("entry skipped", "kind", d.Kind, "key", d.Key, "detail", d.Detail)
	}

	resp := bulkResponse{Inserted: res.Inserted, Diagnostics: res.Diagnostics}
	if resp.Inserted == nil {
		resp.Inserted = []models.Site{}
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []navigator.Diagnostic{}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req siteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	existing, err := h.repo.GetSite(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.GroupID == 0 {
		req.GroupID = existing.GroupID
	}

	site, err := h.siteFromRequest(req)
	if err != nil {
		writeError(w, err)
		return
	}
	site.ID = id
	site.OrderNum = existing.OrderNum
	site.CreatedAt = existing.CreatedAt
	if site.GroupID != existing.GroupID {
		// a site that changes group goes to the end of its new group
		scoped, err := h.repo.GetSites(&site.GroupID)
		if err != nil {
			writeError(w, err)
			return
		}
		site.OrderNum = len(scoped)
	}

	if err := h.repo.UpdateSite(site); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.DeleteSite(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// siteFromRequest checks the request fields and the target group, and fills
// in the icon and updated_at.
func (h *SiteHandler) siteFromRequest(req siteRequest) (models.Site, error) {
	name := strings.TrimSpace(req.Name)
	rawURL := strings.TrimSpace(req.URL)
	if name == "" {
		return models.Site{}, badRequest("name is required")
	}
	if rawURL == "" {
		return models.Site{}, badRequest("url is required")
	}
	if _, err := h.repo.GetGroup(req.GroupID); err != nil {
		return models.Site{}, err
	}

	icon := strings.TrimSpace(req.Icon)
	if icon == "" {
		derived, err := navigator.FaviconURL(h.inserter.FaviconService, rawURL)
		if err != nil {
			return models.Site{}, &navigator.Error{
				Kind:    navigator.KindURLParseFailure,
				Key:     rawURL,
				Message: "cannot derive favicon",
				Cause:   err,
			}
		}
		icon = derived
	}

	site := models.Site{
		GroupID:     req.GroupID,
		Name:        name,
		URL:         rawURL,
		Icon:        icon,
		Description: req.Description,
		Notes:       req.Notes,
		IsPublic:    1,
		UpdatedAt:   models.Timestamp(h.now()),
	}
	if req.IsPublic != nil {
		site.IsPublic = *req.IsPublic
	}
	return site, nil
}
