package navigator

import (
	"slices"
	"time"

	"github.com/lehmann314159/navigator/internal/models"
)

// MinSortableSites is the smallest scope that can be reordered.
const MinSortableSites = 2

// Session tracks the single in-progress site ordering edit. The zero value is
// idle. A Session is not safe for concurrent use; callers serialize access.
type Session struct {
	edit *edit
}

type edit struct {
	scope   int64
	working []models.Site
}

// Active returns the scope being edited, if any.
func (s *Session) Active() (int64, bool) {
	if s.edit == nil {
		return 0, false
	}
	return s.edit.scope, true
}

// Start begins editing scope with a working copy of the sites it owns.
// Scopes with fewer than MinSortableSites sites are refused with
// TOO_FEW_SITES and the session is left untouched. Starting while another
// scope is active replaces that edit; its later commits become stale.
func (s *Session) Start(scope int64, sites []models.Site) error {
	working := SitesOf(sites, scope)
	if len(working) < MinSortableSites {
		return newError(KindTooFewSites, idKey(scope), "at least %d sites are needed to sort, group %d has %d", MinSortableSites, scope, len(working))
	}
	s.edit = &edit{scope: scope, working: working}
	return nil
}

// Working returns a copy of the working sequence for scope.
func (s *Session) Working(scope int64) ([]models.Site, bool) {
	if !s.editing(scope) {
		return nil, false
	}
	return slices.Clone(s.edit.working), true
}

// Move relocates the site at position from to position to within the
// working copy. It reports false for a stale scope or out-of-range index.
func (s *Session) Move(scope int64, from, to int) bool {
	if !s.editing(scope) {
		return false
	}
	n := len(s.edit.working)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	s.edit.working = moveItem(s.edit.working, from, to)
	return true
}

// MoveSite moves siteID to the position currently held by overID, the way a
// drag ending on another card does.
func (s *Session) MoveSite(scope, siteID, overID int64) bool {
	if !s.editing(scope) {
		return false
	}
	from := slices.IndexFunc(s.edit.working, func(x models.Site) bool { return x.ID == siteID })
	to := slices.IndexFunc(s.edit.working, func(x models.Site) bool { return x.ID == overID })
	if from < 0 || to < 0 {
		return false
	}
	if from != to {
		s.edit.working = moveItem(s.edit.working, from, to)
	}
	return true
}

// Cancel discards the working copy for scope without committing.
func (s *Session) Cancel(scope int64) bool {
	if !s.editing(scope) {
		return false
	}
	s.edit = nil
	return true
}

// Commit writes the working order of scope into backing, returns the new
// collection and ends the edit. It is Prepare followed by Finish, for callers
// whose write cannot fail.
//
// A commit for a scope that is not the active edit is stale: it is ignored,
// backing is returned unchanged with ok=false and the session keeps its
// current edit.
func (s *Session) Commit(scope int64, backing []models.Site, now time.Time) (sites []models.Site, ok bool) {
	sites, ok = s.Prepare(scope, backing, now)
	if ok {
		s.Finish(scope)
	}
	return sites, ok
}

// Prepare computes the collection Commit would return but leaves the edit
// open, so a failed write can be retried. Each site of the scope gets its
// position as order_num; sites that joined the scope after Start follow in
// their existing order and sites that left it are ignored. Nothing outside
// the scope changes, and updated_at moves only on sites whose position did.
func (s *Session) Prepare(scope int64, backing []models.Site, now time.Time) (sites []models.Site, ok bool) {
	if !s.editing(scope) {
		return backing, false
	}

	current := SitesOf(backing, scope)
	present := make(map[int64]bool, len(current))
	for _, site := range current {
		present[site.ID] = true
	}

	order := make(map[int64]int, len(current))
	for _, site := range s.edit.working {
		if present[site.ID] {
			order[site.ID] = len(order)
		}
	}
	for _, site := range current {
		if _, seen := order[site.ID]; !seen {
			order[site.ID] = len(order)
		}
	}

	stamp := models.Timestamp(now)
	out := make([]models.Site, len(backing))
	for i, site := range backing {
		if site.GroupID == scope {
			if pos := order[site.ID]; pos != site.OrderNum {
				site.OrderNum = pos
				site.UpdatedAt = stamp
			}
		}
		out[i] = site
	}
	return out, true
}

// Finish ends the edit of scope once its prepared order has been stored. It
// reports false when scope is not the active edit.
func (s *Session) Finish(scope int64) bool {
	if !s.editing(scope) {
		return false
	}
	s.edit = nil
	return true
}

func (s *Session) editing(scope int64) bool {
	return s.edit != nil && s.edit.scope == scope
}

// moveItem returns items with the element at from relocated to index to.
func moveItem[T any](items []T, from, to int) []T {
	out := slices.Clone(items)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}
