package navigator

import (
	"fmt"

	"github.com/lehmann314159/navigator/internal/models"
)

// Validate reports every structural problem in groups and sites. It never
// changes anything; an empty result means all invariants hold.
func Validate(groups []models.Group, sites []models.Site) []Diagnostic {
	var diags []Diagnostic
	add := func(kind Kind, key, format string, args ...any) {
		diags = append(diags, Diagnostic{Kind: kind, Key: key, Detail: fmt.Sprintf(format, args...)})
	}

	byID := make(map[int64]models.Group, len(groups))
	for _, g := range groups {
		if _, dup := byID[g.ID]; dup {
			add(KindInvariantViolation, idKey(g.ID), "duplicate group id")
			continue
		}
		byID[g.ID] = g
	}

	type sibling struct {
		parent int64
		top    bool
		name   string
	}
	names := map[sibling]bool{}
	for _, g := range groups {
		key := idKey(g.ID)
		if g.ID <= 0 {
			add(KindInvariantViolation, key, "group id must be positive")
		}
		if g.Name == "" {
			add(KindInvariantViolation, key, "group name is empty")
		}

		sib := sibling{top: g.ParentID == nil, name: g.Name}
		if g.ParentID != nil {
			sib.parent = *g.ParentID
		}
		if names[sib] {
			add(KindInvariantViolation, key, "name %q is not unique among its siblings", g.Name)
		}
		names[sib] = true

		if g.ParentID == nil {
			continue
		}
		parent, ok := byID[*g.ParentID]
		switch {
		case *g.ParentID == g.ID:
			add(KindInvariantViolation, key, "group is its own parent")
		case !ok:
			add(KindLookupFailure, key, "parent group %d does not exist", *g.ParentID)
		case parent.ParentID != nil:
			add(KindInvariantViolation, key, "parent group %d is itself a sub-group", parent.ID)
		}
	}

	siteIDs := make(map[int64]bool, len(sites))
	for _, s := range sites {
		key := idKey(s.ID)
		if siteIDs[s.ID] {
			add(KindInvariantViolation, key, "duplicate site id")
		}
		siteIDs[s.ID] = true
		if s.ID <= 0 {
			add(KindInvariantViolation, key, "site id must be positive")
		}
		if _, ok := byID[s.GroupID]; !ok {
			add(KindLookupFailure, key, "site group %d does not exist", s.GroupID)
		}
	}
	return diags
}
