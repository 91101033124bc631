package models

import "time"

// TimestampLayout is the wall-clock layout used for created_at/updated_at.
const TimestampLayout = "2006-01-02 15:04:05"

type Group struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	OrderNum int    `json:"order_num"`
	IsPublic int    `json:"is_public"`
}

// IsTopLevel reports whether the group has no parent.
func (g Group) IsTopLevel() bool {
	return g.ParentID == nil
}

type Site struct {
	ID          int64  `json:"id"`
	GroupID     int64  `json:"group_id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	OrderNum    int    `json:"order_num"`
	IsPublic    int    `json:"is_public"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// GroupWithSites is a read-side view built from flat groups and sites.
type GroupWithSites struct {
	Group
	Sites     []Site           `json:"sites"`
	Subgroups []GroupWithSites `json:"subgroups,omitempty"`
}

type Document struct {
	Version    string            `json:"version,omitempty"`
	ExportDate string            `json:"exportDate,omitempty"`
	Groups     []Group           `json:"groups"`
	Sites      []Site            `json:"sites"`
	Configs    map[string]string `json:"configs"`
}

// TreeNode is one top-level entry of a canonical target tree.
type TreeNode struct {
	Name     string   `json:"name" toml:"name"`
	Children []string `json:"children" toml:"children"`
}

// BulkEntry is a partial site record prepared outside the navigator.
type BulkEntry struct {
	Name            string `json:"name"`
	OfficialWebsite string `json:"official_website"`
	Description     string `json:"description"`
}

// SameParent reports whether two parent ids name the same parent, treating
// two nils as the top level.
func SameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// Timestamp formats t with TimestampLayout in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
