package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehmann314159/navigator/internal/database"
	"github.com/lehmann314159/navigator/internal/models"
	"github.com/lehmann314159/navigator/internal/navigator"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func seed(t *testing.T, r *Repository) *models.Document {
	t.Helper()
	doc := &models.Document{
		Groups: []models.Group{
			{ID: 2, Name: "常用工具", ParentID: models.Int64(1), OrderNum: 0, IsPublic: 1},
			{ID: 1, Name: "实用工具", OrderNum: 0, IsPublic: 1},
			{ID: 3, Name: "AI工具", OrderNum: 1, IsPublic: 0},
		},
		Sites: []models.Site{
			{ID: 10, GroupID: 2, Name: "a", URL: "https://a.com", OrderNum: 0, IsPublic: 1, CreatedAt: "2025-01-01 00:00:00", UpdatedAt: "2025-01-01 00:00:00"},
			{ID: 11, GroupID: 2, Name: "b", URL: "https://b.com", OrderNum: 1, IsPublic: 1, Notes: "n"},
			{ID: 12, GroupID: 3, Name: "c", URL: "https://c.com", Icon: "https://icons/c", OrderNum: 0, IsPublic: 1},
		},
		Configs: map[string]string{"site.title": "导航"},
	}
	require.NoError(t, r.ReplaceDocument(doc))
	return doc
}

func TestReplaceAndLoadDocument(t *testing.T) {
	r := newRepo(t)
	doc := seed(t, r)

	got, err := r.LoadDocument()
	require.NoError(t, err)

	assert.ElementsMatch(t, doc.Groups, got.Groups)
	assert.ElementsMatch(t, doc.Sites, got.Sites)
	assert.Equal(t, doc.Configs, got.Configs)
	assert.Empty(t, navigator.Validate(got.Groups, got.Sites))
}

func TestReplaceDocumentRejectsDanglingSite(t *testing.T) {
	r := newRepo(t)
	seed(t, r)

	err := r.ReplaceDocument(&models.Document{
		Groups: []models.Group{{ID: 1, Name: "A", IsPublic: 1}},
		Sites:  []models.Site{{ID: 1, GroupID: 404, Name: "x", URL: "https://x.com"}},
	})
	assert.Error(t, err)

	// the previous contents survive the failed replace
	groups, err := r.GetGroups()
	require.NoError(t, err)
	assert.Len(t, groups, 3)
}

func TestDeleteGroupCascades(t *testing.T) {
	r := newRepo(t)
	seed(t, r)

	require.NoError(t, r.DeleteGroup(1))

	groups, err := r.GetGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, int64(3), groups[0].ID)

	sites, err := r.GetSites(nil)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, int64(12), sites[0].ID)

	assert.ErrorIs(t, r.DeleteGroup(1), ErrNotFound)
}

func TestSetGroupParent(t *testing.T) {
	r := newRepo(t)
	seed(t, r)

	require.NoError(t, r.SetGroupParent(3, models.Int64(1)))
	g, err := r.GetGroup(3)
	require.NoError(t, err)
	assert.Equal(t, models.Int64(1), g.ParentID)

	err = r.SetGroupParent(1, models.Int64(3))
	assert.True(t, navigator.IsKind(err, navigator.KindInvariantViolation))

	assert.ErrorIs(t, r.SetGroupParent(3, models.Int64(99)), ErrNotFound)
	assert.ErrorIs(t, r.SetGroupParent(99, nil), ErrNotFound)

	twin, err := r.CreateGroup(models.Group{Name: "常用工具", IsPublic: 1})
	require.NoError(t, err)
	err = r.SetGroupParent(twin, models.Int64(1))
	assert.True(t, navigator.IsKind(err, navigator.KindInvariantViolation))
	g, err = r.GetGroup(twin)
	require.NoError(t, err)
	assert.Nil(t, g.ParentID, "a clashing name leaves the group where it was")

	require.NoError(t, r.SetGroupParent(3, nil))
	g, err = r.GetGroup(3)
	require.NoError(t, err)
	assert.Nil(t, g.ParentID)
}

func TestSaveSiteOrder(t *testing.T) {
	r := newRepo(t)
	seed(t, r)

	sites, err := r.GetSites(nil)
	require.NoError(t, err)

	var s navigator.Session
	require.NoError(t, s.Start(2, sites))
	require.True(t, s.Move(2, 1, 0))
	updated, ok := s.Commit(2, sites, time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC))
	require.True(t, ok)

	require.NoError(t, r.SaveSiteOrder(2, updated))

	scoped, err := r.GetSites(models.Int64(2))
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	assert.Equal(t, int64(11), scoped[0].ID)
	assert.Equal(t, 0, scoped[0].OrderNum)
	assert.Equal(t, int64(10), scoped[1].ID)
	assert.Equal(t, 1, scoped[1].OrderNum)

	other, err := r.GetSite(12)
	require.NoError(t, err)
	assert.Equal(t, 0, other.OrderNum)
}

func TestSitesCRUD(t *testing.T) {
	r := newRepo(t)
	seed(t, r)

	id, err := r.CreateSite(models.Site{GroupID: 3, Name: "d", URL: "https://d.com", OrderNum: 5, IsPublic: 1})
	require.NoError(t, err)

	s, err := r.GetSite(id)
	require.NoError(t, err)
	assert.Equal(t, "https://d.com", s.URL)

	s.Description = "desc"
	require.NoError(t, r.UpdateSite(*s))
	s, err = r.GetSite(id)
	require.NoError(t, err)
	assert.Equal(t, "desc", s.Description)

	require.NoError(t, r.DeleteSite(id))
	_, err = r.GetSite(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.UpdateSite(models.Site{ID: 999, GroupID: 3}), ErrNotFound)
}

func TestConfigs(t *testing.T) {
	r := newRepo(t)

	require.NoError(t, r.SetConfig("theme", "dark"))
	require.NoError(t, r.SetConfig("theme", "light"))

	configs, err := r.GetConfigs()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"theme": "light"}, configs)
}
