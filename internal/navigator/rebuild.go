package navigator

import (
	"fmt"

	"github.com/lehmann314159/navigator/internal/models"
)

// OrderBand is the number of order_num slots reserved per top-level entry
// for its children. A child's order_num is topIndex*OrderBand + childIndex.
const OrderBand = 10

// RebuildResult is a full replacement snapshot. It must never be merged with
// the output of an earlier Rebuild: ids restart at 1 on every call.
type RebuildResult struct {
	Groups []models.Group
	Sites  []models.Site
	// Mapping holds old group id -> new group id for every mapped group.
	Mapping     map[int64]int64
	Diagnostics []Diagnostic
}

// Rebuild renumbers groups to follow tree and rewrites every site's group_id.
//
// Ids are assigned sequentially from 1 in tree order: a top-level node, then
// its children, then the next top-level node. Entries that cannot be located
// are reported as LOOKUP_FAILURE and skipped. Sites whose group failed to map
// keep their original group_id and get a LOOKUP_FAILURE each, keyed by site
// id, which also says when that old id now names one of the new groups.
func Rebuild(groups []models.Group, sites []models.Site, tree []models.TreeNode) RebuildResult {
	res := RebuildResult{
		Groups:  make([]models.Group, 0, len(groups)),
		Mapping: make(map[int64]int64),
	}

	var next int64 = 1
	for topIndex, node := range tree {
		top, ok := findGroup(groups, node.Name, nil)
		if !ok {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:   KindLookupFailure,
				Key:    node.Name,
				Detail: "top-level group not found",
			})
			continue
		}
		if len(node.Children) > OrderBand {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:   KindCapacityExceeded,
				Key:    node.Name,
				Detail: fmt.Sprintf("%d children overflow the order band of %d", len(node.Children), OrderBand),
			})
		}

		topID := next
		next++
		res.Mapping[top.ID] = topID
		res.Groups = append(res.Groups, models.Group{
			ID:       topID,
			Name:     node.Name,
			OrderNum: topIndex,
			IsPublic: top.IsPublic,
		})

		for childIndex, childName := range node.Children {
			child, ok := findGroup(groups, childName, &top.ID)
			if !ok {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Kind:   KindLookupFailure,
					Key:    childName,
					Detail: fmt.Sprintf("sub-group not found under %q", node.Name),
				})
				continue
			}

			childID := next
			next++
			res.Mapping[child.ID] = childID
			res.Groups = append(res.Groups, models.Group{
				ID:       childID,
				Name:     childName,
				ParentID: models.Int64(res.Mapping[top.ID]),
				OrderNum: topIndex*OrderBand + childIndex,
				IsPublic: child.IsPublic,
			})
		}
	}

	res.Sites = RemapSites(sites, res.Mapping)

	rebuilt := indexGroups(res.Groups)
	for _, site := range sites {
		if _, ok := res.Mapping[site.GroupID]; ok {
			continue
		}
		detail := fmt.Sprintf("group %d is not in the tree, site kept as is", site.GroupID)
		if g, clash := rebuilt[site.GroupID]; clash {
			detail += fmt.Sprintf("; id %d now names group %q", g.ID, g.Name)
		}
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind:   KindLookupFailure,
			Key:    idKey(site.ID),
			Detail: detail,
		})
	}
	return res
}

// RemapSites rewrites group_id through mapping. Unmapped sites are kept as is.
func RemapSites(sites []models.Site, mapping map[int64]int64) []models.Site {
	out := make([]models.Site, len(sites))
	for i, s := range sites {
		if id, ok := mapping[s.GroupID]; ok {
			s.GroupID = id
		}
		out[i] = s
	}
	return out
}

// findGroup returns the first group named name whose parent equals parentID
// (nil meaning top-level).
func findGroup(groups []models.Group, name string, parentID *int64) (models.Group, bool) {
	for _, g := range groups {
		if g.Name != name {
			continue
		}
		switch {
		case parentID == nil && g.ParentID == nil:
			return g, true
		case parentID != nil && g.ParentID != nil && *g.ParentID == *parentID:
			return g, true
		}
	}
	return models.Group{}, false
}
