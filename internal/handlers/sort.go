package handlers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lehmann314159/navigator/internal/models"
	"github.com/lehmann314159/navigator/internal/navigator"
	"github.com/lehmann314159/navigator/internal/repository"
)

// SortHandler exposes the single site ordering session. Every edit is
// identified by a token handed out on start; requests carrying another
// token, or naming another scope, are stale.
type SortHandler struct {
	repo   *repository.Repository
	logger *log.Logger
	now    func() time.Time

	mu      sync.Mutex
	session navigator.Session
	token   uuid.UUID
}

func NewSortHandler(repo *repository.Repository, logger *log.Logger, now func() time.Time) *SortHandler {
	return &SortHandler{repo: repo, logger: logger, now: now}
}

type sortState struct {
	Active bool          `json:"active"`
	Scope  int64         `json:"scope,omitempty"`
	Token  string        `json:"token,omitempty"`
	Sites  []models.Site `json:"sites,omitempty"`
}

type moveRequest struct {
	Token  string `json:"token"`
	From   *int   `json:"from"`
	To     *int   `json:"to"`
	SiteID *int64 `json:"site_id"`
	OverID *int64 `json:"over_id"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

// State reports the active edit, if any.
func (h *SortHandler) State(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	scope, ok := h.session.Active()
	if !ok {
		writeJSON(w, http.StatusOK, sortState{})
		return
	}
	writeJSON(w, http.StatusOK, h.state(scope))
}

// Start opens an edit on a group, replacing any edit in progress.
func (h *SortHandler) Start(w http.ResponseWriter, r *http.Request) {
	scope, err := parseID(r, "scope")
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.repo.GetGroup(scope); err != nil {
		writeError(w, err)
		return
	}
	sites, err := h.repo.GetSites(&scope)
	if err != nil {
		writeError(w, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.session.Active(); ok {
		h.logger.Debug("sort edit replaced", "scope", prev)
	}
	if err := h.session.Start(scope, sites); err != nil {
		if navigator.IsKind(err, navigator.KindTooFewSites) {
			h.logger.Debug("group too small to sort", "scope", scope, "sites", len(sites))
		}
		writeError(w, err)
		return
	}
	h.token = uuid.New()
	h.logger.Debug("sort edit started", "scope", scope, "sites", len(sites))
	writeJSON(w, http.StatusOK, h.state(scope))
}

// Move applies one drag step, either by position (from, to) or by dropping
// site_id onto over_id.
func (h *SortHandler) Move(w http.ResponseWriter, r *http.Request) {
	scope, err := parseID(r, "scope")
	if err != nil {
		writeError(w, err)
		return
	}
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.check(scope, req.Token); err != nil {
		writeError(w, err)
		return
	}

	var moved bool
	switch {
	case req.From != nil && req.To != nil:
		moved = h.session.Move(scope, *req.From, *req.To)
	case req.SiteID != nil && req.OverID != nil:
		moved = h.session.MoveSite(scope, *req.SiteID, *req.OverID)
	default:
		writeError(w, badRequest("either from/to or site_id/over_id is required"))
		return
	}
	if !moved {
		writeError(w, badRequest("move is out of range for group %d", scope))
		return
	}
	writeJSON(w, http.StatusOK, h.state(scope))
}

// Save commits the working order. Only the scope's sites are written.
func (h *SortHandler) Save(w http.ResponseWriter, r *http.Request) {
	scope, err := parseID(r, "scope")
	if err != nil {
		writeError(w, err)
		return
	}
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.check(scope, req.Token); err != nil {
		writeError(w, err)
		return
	}

	backing, err := h.repo.GetSites(&scope)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, ok := h.session.Prepare(scope, backing, h.now())
	if !ok {
		writeError(w, staleError(scope))
		return
	}
	// the edit stays open until the write lands so the same token can retry
	if err := h.repo.SaveSiteOrder(scope, updated); err != nil {
		h.logger.Warn("site order not saved", "scope", scope, "err", err)
		writeError(w, err)
		return
	}
	h.session.Finish(scope)
	h.token = uuid.Nil
	h.logger.Info("site order saved", "scope", scope, "sites", len(updated))
	writeJSON(w, http.StatusOK, navigator.SitesOf(updated, scope))
}

// Cancel drops the working order without writing anything.
func (h *SortHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	scope, err := parseID(r, "scope")
	if err != nil {
		writeError(w, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.check(scope, r.URL.Query().Get("token")); err != nil {
		writeError(w, err)
		return
	}
	h.session.Cancel(scope)
	h.token = uuid.Nil
	w.WriteHeader(http.StatusNoContent)
}

// check must be called with mu held.
func (h *SortHandler) check(scope int64, token string) error {
	parsed, err := uuid.Parse(token)
	if err != nil {
		return badRequest("invalid token %q", token)
	}
	active, ok := h.session.Active()
	if !ok || active != scope || parsed != h.token {
		return staleError(scope)
	}
	return nil
}

// state must be called with mu held.
func (h *SortHandler) state(scope int64) sortState {
	sites, _ := h.session.Working(scope)
	return sortState{Active: true, Scope: scope, Token: h.token.String(), Sites: sites}
}

func staleError(scope int64) error {
	return &navigator.Error{
		Kind:    navigator.KindStaleCommit,
		Key:     strconv.FormatInt(scope, 10),
		Message: "no matching sort edit in progress",
	}
}
