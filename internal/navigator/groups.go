package navigator

import (
	"slices"
	"strings"

	"github.com/lehmann314159/navigator/internal/models"
)

// DeleteGroup removes groupID together with its sub-groups and every site
// owned by a removed group. An unknown id returns the inputs unchanged.
func DeleteGroup(groups []models.Group, sites []models.Site, groupID int64) ([]models.Group, []models.Site, bool) {
	if !slices.ContainsFunc(groups, func(g models.Group) bool { return g.ID == groupID }) {
		return groups, sites, false
	}

	removed := map[int64]bool{groupID: true}
	for _, child := range ChildrenOf(groups, groupID) {
		removed[child.ID] = true
	}

	keptGroups := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		if !removed[g.ID] {
			keptGroups = append(keptGroups, g)
		}
	}
	keptSites := make([]models.Site, 0, len(sites))
	for _, s := range sites {
		if !removed[s.GroupID] {
			keptSites = append(keptSites, s)
		}
	}
	return keptGroups, keptSites, true
}

// CheckSiblingName refuses name for group id under parentID when another
// group there already carries it. Pass id 0 for a group not yet created.
func CheckSiblingName(groups []models.Group, id int64, name string, parentID *int64) error {
	for _, g := range groups {
		if g.ID != id && g.Name == name && models.SameParent(g.ParentID, parentID) {
			key := name
			if id != 0 {
				key = idKey(id)
			}
			return newError(KindInvariantViolation, key, "name %q is not unique among its siblings", name)
		}
	}
	return nil
}

// ReorderGroups rewrites the order_num of the children of parentID (nil for
// the top level) to follow ids. ids must list every sibling exactly once.
func ReorderGroups(groups []models.Group, parentID *int64, ids []int64) ([]models.Group, error) {
	key := "top-level"
	if parentID != nil {
		key = idKey(*parentID)
	}

	pos := make(map[int64]int, len(ids))
	for i, id := range ids {
		if _, dup := pos[id]; dup {
			return groups, newError(KindInvariantViolation, key, "group %d listed twice", id)
		}
		pos[id] = i
	}

	siblings := 0
	for _, g := range groups {
		if !models.SameParent(g.ParentID, parentID) {
			continue
		}
		siblings++
		if _, ok := pos[g.ID]; !ok {
			return groups, newError(KindInvariantViolation, key, "sibling group %d missing from new order", g.ID)
		}
	}
	if siblings != len(ids) {
		return groups, newError(KindInvariantViolation, key, "new order lists %d groups, %d siblings exist", len(ids), siblings)
	}

	out := slices.Clone(groups)
	for i := range out {
		if models.SameParent(out[i].ParentID, parentID) {
			out[i].OrderNum = pos[out[i].ID]
		}
	}
	return out, nil
}

// Suggestion proposes nesting Child under Parent.
type Suggestion struct {
	Child  models.Group
	Parent models.Group
}

// SuggestParents finds top-level groups whose name strictly contains the name
// of another top-level group, a hint that they were meant as its sub-group.
func SuggestParents(groups []models.Group) []Suggestion {
	var tops []models.Group
	for _, g := range groups {
		if g.IsTopLevel() {
			tops = append(tops, g)
		}
	}

	var out []Suggestion
	for _, child := range tops {
		for _, parent := range tops {
			if parent.ID == child.ID || parent.Name == "" || parent.Name == child.Name {
				continue
			}
			if strings.Contains(child.Name, parent.Name) {
				out = append(out, Suggestion{Child: child, Parent: parent})
				break
			}
		}
	}
	return out
}
