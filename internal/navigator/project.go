package navigator

import (
	"cmp"
	"slices"

	"github.com/lehmann314159/navigator/internal/models"
)

// CompareGroups orders siblings by order_num, then id.
func CompareGroups(a, b models.Group) int {
	if c := cmp.Compare(a.OrderNum, b.OrderNum); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// CompareSites orders sites within a group by order_num, then id.
func CompareSites(a, b models.Site) int {
	if c := cmp.Compare(a.OrderNum, b.OrderNum); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SitesOf returns the sites owned by groupID in display order.
func SitesOf(sites []models.Site, groupID int64) []models.Site {
	out := []models.Site{}
	for _, s := range sites {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, CompareSites)
	return out
}

// ChildrenOf returns the direct sub-groups of parentID in display order.
func ChildrenOf(groups []models.Group, parentID int64) []models.Group {
	var out []models.Group
	for _, g := range groups {
		if g.ParentID != nil && *g.ParentID == parentID {
			out = append(out, g)
		}
	}
	slices.SortStableFunc(out, CompareGroups)
	return out
}

// Project builds the nested read view. Groups whose parent does not resolve
// are shown at the top level so their sites stay reachable.
func Project(groups []models.Group, sites []models.Site) []models.GroupWithSites {
	byID := indexGroups(groups)

	var tops []models.Group
	for _, g := range groups {
		if g.ParentID == nil {
			tops = append(tops, g)
			continue
		}
		if _, ok := byID[*g.ParentID]; !ok {
			tops = append(tops, g)
		}
	}
	slices.SortStableFunc(tops, CompareGroups)

	out := make([]models.GroupWithSites, 0, len(tops))
	for _, top := range tops {
		node := models.GroupWithSites{Group: top, Sites: SitesOf(sites, top.ID)}
		for _, child := range ChildrenOf(groups, top.ID) {
			node.Subgroups = append(node.Subgroups, models.GroupWithSites{
				Group: child,
				Sites: SitesOf(sites, child.ID),
			})
		}
		out = append(out, node)
	}
	return out
}

// Find returns the projected node for id, searching top-level groups and
// their sub-groups.
func Find(tree []models.GroupWithSites, id int64) (models.GroupWithSites, bool) {
	for _, node := range tree {
		if node.ID == id {
			return node, true
		}
		for _, sub := range node.Subgroups {
			if sub.ID == id {
				return sub, true
			}
		}
	}
	return models.GroupWithSites{}, false
}

func indexGroups(groups []models.Group) map[int64]models.Group {
	byID := make(map[int64]models.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	return byID
}
