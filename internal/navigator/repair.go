package navigator

import (
	"slices"

	"github.com/lehmann314159/navigator/internal/models"
)

// Reparent sets the parent of groupID to newParentID (nil promotes it to the
// top level) and returns the rewritten collection. The input is not modified.
//
// A missing groupID is a no-op: the original collection is returned with
// changed=false and a nil error. A move that would create a cycle, nest
// deeper than two levels or give the group the same name as one of its new
// siblings is refused with an INVARIANT_VIOLATION error and no change. A
// parent that is missing from groups ends the check and the move goes ahead.
func Reparent(groups []models.Group, groupID int64, newParentID *int64) ([]models.Group, bool, error) {
	idx := slices.IndexFunc(groups, func(g models.Group) bool { return g.ID == groupID })
	if idx < 0 {
		return groups, false, nil
	}
	if err := checkReparent(groups, groupID, newParentID); err != nil {
		return groups, false, err
	}
	if models.SameParent(groups[idx].ParentID, newParentID) {
		return groups, false, nil
	}
	if err := CheckSiblingName(groups, groupID, groups[idx].Name, newParentID); err != nil {
		return groups, false, err
	}

	out := slices.Clone(groups)
	if newParentID == nil {
		out[idx].ParentID = nil
	} else {
		out[idx].ParentID = models.Int64(*newParentID)
	}
	return out, true, nil
}

// PromoteToTopLevel is Reparent with a nil parent.
func PromoteToTopLevel(groups []models.Group, groupID int64) ([]models.Group, bool, error) {
	return Reparent(groups, groupID, nil)
}

func checkReparent(groups []models.Group, groupID int64, newParentID *int64) error {
	if newParentID == nil {
		return nil
	}
	key := idKey(groupID)
	byID := indexGroups(groups)

	// Walk upward from the new parent; reaching groupID means a cycle. A parent
	// missing from the collection ends the walk: the caller may be working on
	// a partial slice of the document.
	seen := map[int64]bool{}
	depth := 1
	for cur := newParentID; cur != nil; {
		if *cur == groupID {
			return newError(KindInvariantViolation, key, "group %d cannot be nested under itself or its descendant", groupID)
		}
		if seen[*cur] {
			return newError(KindInvariantViolation, key, "existing parent chain of %d is cyclic", *newParentID)
		}
		seen[*cur] = true
		depth++
		parent, ok := byID[*cur]
		if !ok {
			break
		}
		cur = parent.ParentID
	}
	if depth > 2 {
		return newError(KindInvariantViolation, key, "parent group %d is itself a sub-group", *newParentID)
	}
	if len(ChildrenOf(groups, groupID)) > 0 {
		return newError(KindInvariantViolation, key, "group %d has sub-groups and cannot become one", groupID)
	}
	return nil
}
