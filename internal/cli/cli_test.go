package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehmann314159/navigator/internal/document"
	"github.com/lehmann314159/navigator/internal/models"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(&out, io.Discard, LogInfo)
	c.Now = func() time.Time { return fixedNow }

	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDoc(t *testing.T, doc *models.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "navigator.json")
	require.NoError(t, document.Write(path, doc))
	return path
}

func readDoc(t *testing.T, path string) *models.Document {
	t.Helper()
	doc, err := document.Read(path)
	require.NoError(t, err)
	return doc
}

func TestRebuild(t *testing.T) {
	path := writeDoc(t, &models.Document{
		Groups: []models.Group{
			{ID: 5, Name: "AI工具", OrderNum: 3, IsPublic: 1},
			{ID: 7, Name: "AI办公工具", ParentID: models.Int64(5), IsPublic: 1},
			{ID: 9, Name: "实用工具", OrderNum: 0, IsPublic: 1},
			{ID: 11, Name: "旧分组", IsPublic: 1},
		},
		Sites: []models.Site{{ID: 1, GroupID: 7, Name: "a", URL: "https://a.com", IsPublic: 1}},
	})
	tree := filepath.Join(t.TempDir(), "tree.toml")
	require.NoError(t, os.WriteFile(tree, []byte(`
[[tree]]
name = "实用工具"
children = []

[[tree]]
name = "AI工具"
children = ["AI办公工具", "AI写作工具"]
`), 0644))
	out := filepath.Join(t.TempDir(), "rebuilt.json")

	stdout, err := execute(t, "rebuild", "-f", path, "--tree", tree, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "LOOKUP_FAILURE: AI写作工具")
	assert.Contains(t, stdout, "1 groups are not in the tree")
	assert.Contains(t, stdout, "Rebuilt 3 groups, 1 sites")

	doc := readDoc(t, out)
	assert.Equal(t, []models.Group{
		{ID: 1, Name: "实用工具", OrderNum: 0, IsPublic: 1},
		{ID: 2, Name: "AI工具", OrderNum: 1, IsPublic: 1},
		{ID: 3, Name: "AI办公工具", ParentID: models.Int64(2), OrderNum: 10, IsPublic: 1},
	}, doc.Groups)
	assert.Equal(t, int64(3), doc.Sites[0].GroupID)

	// the input is left alone when --out is given
	assert.Len(t, readDoc(t, path).Groups, 4)
}

func TestRebuildReportsUnmappedSites(t *testing.T) {
	path := writeDoc(t, &models.Document{
		Groups: []models.Group{
			{ID: 1, Name: "Gone", IsPublic: 1},
			{ID: 5, Name: "A", IsPublic: 1},
		},
		Sites: []models.Site{{ID: 100, GroupID: 1, Name: "a", URL: "https://a.com", IsPublic: 1}},
	})
	tree := filepath.Join(t.TempDir(), "tree.toml")
	require.NoError(t, os.WriteFile(tree, []byte("[[tree]]\nname = \"A\"\n"), 0644))

	stdout, err := execute(t, "rebuild", "-f", path, "--tree", tree)
	require.NoError(t, err)
	assert.Contains(t, stdout, "LOOKUP_FAILURE: 100: group 1 is not in the tree")
	assert.Contains(t, stdout, `now names group "A"`)
}

func TestRebuildNeedsTree(t *testing.T) {
	path := writeDoc(t, &models.Document{})
	_, err := execute(t, "rebuild", "-f", path)
	assert.ErrorContains(t, err, "no canonical tree")
}

func TestReparentAndPromote(t *testing.T) {
	path := writeDoc(t, &models.Document{
		Groups: []models.Group{
			{ID: 64, Name: "浏览器", IsPublic: 1},
			{ID: 95, Name: "指纹浏览器", IsPublic: 1},
			{ID: 96, Name: "工具", IsPublic: 1},
			{ID: 97, Name: "下载", ParentID: models.Int64(96), IsPublic: 1},
		},
	})

	_, err := execute(t, "reparent", "95", "64", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, models.Int64(64), readDoc(t, path).Groups[1].ParentID)

	stdout, err := execute(t, "reparent", "96", "64", "-f", path)
	assert.Error(t, err, "a group with sub-groups cannot be nested")
	assert.Contains(t, stdout, "INVARIANT_VIOLATION: 96: group 96 has sub-groups")

	stdout, err = execute(t, "reparent", "404", "64", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Group 404 not found")

	_, err = execute(t, "reparent", "x", "64", "-f", path)
	assert.ErrorContains(t, err, `invalid group id "x"`)

	stdout, err = execute(t, "promote", "95", "97", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Promoted 2 groups")
	for _, g := range readDoc(t, path).Groups {
		assert.Nil(t, g.ParentID, g.Name)
	}
}

func TestReparentRefusesSiblingName(t *testing.T) {
	path := writeDoc(t, &models.Document{
		Groups: []models.Group{
			{ID: 1, Name: "实用工具", IsPublic: 1},
			{ID: 2, Name: "下载", ParentID: models.Int64(1), IsPublic: 1},
			{ID: 3, Name: "下载", IsPublic: 1},
		},
	})

	stdout, err := execute(t, "reparent", "3", "1", "-f", path)
	assert.Error(t, err)
	assert.Contains(t, stdout, `name "下载" is not unique among its siblings`)
	assert.Nil(t, readDoc(t, path).Groups[2].ParentID)
}

func TestDelete(t *testing.T) {
	path := writeDoc(t, &models.Document{
		Groups: []models.Group{
			{ID: 1, Name: "实用工具", IsPublic: 1},
			{ID: 2, Name: "常用工具", ParentID: models.Int64(1), IsPublic: 1},
			{ID: 3, Name: "AI工具", IsPublic: 1},
		},
		Sites: []models.Site{
			{ID: 10, GroupID: 1, Name: "a", URL: "https://a.com", IsPublic: 1},
			{ID: 11, GroupID: 2, Name: "b", URL: "https://b.com", IsPublic: 1},
			{ID: 12, GroupID: 3, Name: "c", URL: "https://c.com", IsPublic: 1},
		},
	})

	stdout, err := execute(t, "delete", "1", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "常用工具 (id 2): 1 sites")
	assert.Contains(t, stdout, "Deleted 2 groups, 2 sites")

	doc := readDoc(t, path)
	assert.Equal(t, []models.Group{{ID: 3, Name: "AI工具", IsPublic: 1}}, doc.Groups)
	require.Len(t, doc.Sites, 1)
	assert.Equal(t, int64(12), doc.Sites[0].ID)

	stdout, err = execute(t, "delete", "1", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Group 1 not found")

	_, err = execute(t, "delete", "x", "-f", path)
	assert.ErrorContains(t, err, `invalid group id "x"`)
}

func TestInsert(t *testing.T) {
	path := writeDoc(t, &models.Document{
		Groups: []models.Group{{ID: 3, Name: "AI工具", IsPublic: 1}},
		Sites:  []models.Site{{ID: 40, GroupID: 3, Name: "a", URL: "https://a.com", OrderNum: 7, IsPublic: 1}},
	})
	entries := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, os.WriteFile(entries, []byte(`[
  {"name": "Kimi", "official_website": "https://kimi.moonshot.cn", "description": "chat"},
  {"name": "Broken", "official_website": "::", "description": ""}
]`), 0644))

	stdout, err := execute(t, "insert", "-f", path, "--batch", "3="+entries, "--batch", "8="+entries)
	require.NoError(t, err)
	assert.Contains(t, stdout, "URL_PARSE_FAILURE")
	assert.Contains(t, stdout, "LOOKUP_FAILURE: 8")
	assert.Contains(t, stdout, "Inserted 1 sites")

	doc := readDoc(t, path)
	require.Len(t, doc.Sites, 2)
	kimi := doc.Sites[1]
	assert.Equal(t, int64(41), kimi.ID)
	assert.Equal(t, 8, kimi.OrderNum)
	assert.Equal(t, "https://www.faviconextractor.com/favicon/kimi.moonshot.cn?larger=true", kimi.Icon)
	assert.Equal(t, "2025-03-14 09:26:53", kimi.CreatedAt)

	_, err = execute(t, "insert", "-f", path, "--batch", "nonsense")
	assert.ErrorContains(t, err, "want GROUP_ID=file.json")
}

func TestVerify(t *testing.T) {
	good := writeDoc(t, &models.Document{
		Groups: []models.Group{
			{ID: 1, Name: "实用工具", IsPublic: 1},
			{ID: 2, Name: "常用工具", ParentID: models.Int64(1), IsPublic: 1},
		},
		Sites: []models.Site{{ID: 1, GroupID: 2, Name: "a", URL: "https://a.com", IsPublic: 1}},
	})
	stdout, err := execute(t, "verify", "-f", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "常用工具 (id 2): 1 sites")
	assert.Contains(t, stdout, "no problems")

	bad := writeDoc(t, &models.Document{
		Groups: []models.Group{{ID: 1, Name: "实用工具", IsPublic: 1}},
		Sites:  []models.Site{{ID: 1, GroupID: 9, Name: "a", URL: "https://a.com", IsPublic: 1}},
	})
	_, err = execute(t, "verify", "-f", bad)
	assert.ErrorContains(t, err, "1 problems found")
}

func TestStampAndCheck(t *testing.T) {
	path := writeDoc(t, &models.Document{Groups: []models.Group{{ID: 1, Name: "A", IsPublic: 1}}})

	_, err := execute(t, "check", path)
	assert.ErrorContains(t, err, "not importable")

	_, err = execute(t, "stamp", "-f", path, "--version", "2.0")
	require.NoError(t, err)
	doc := readDoc(t, path)
	assert.Equal(t, "2.0", doc.Version)
	assert.Equal(t, "2025-03-14T09:26:53Z", doc.ExportDate)

	stdout, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "is importable")
}

func TestAnalyze(t *testing.T) {
	path := writeDoc(t, &models.Document{
		Groups: []models.Group{
			{ID: 1, Name: "浏览器", IsPublic: 1},
			{ID: 2, Name: "指纹浏览器", IsPublic: 1},
		},
	})
	stdout, err := execute(t, "analyze", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "指纹浏览器 (id 2) → 浏览器 (id 1)")
}

func TestImportExport(t *testing.T) {
	dataDir := t.TempDir()
	path := writeDoc(t, &models.Document{
		Groups:  []models.Group{{ID: 1, Name: "实用工具", IsPublic: 1}},
		Sites:   []models.Site{{ID: 1, GroupID: 1, Name: "a", URL: "https://a.com", IsPublic: 1}},
		Configs: map[string]string{"site.title": "导航"},
	})

	_, err := execute(t, "import", path, "--data-dir", dataDir)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "export.json")
	_, err = execute(t, "export", "--data-dir", dataDir, "-o", out)
	require.NoError(t, err)

	doc := readDoc(t, out)
	assert.Equal(t, "1.0", doc.Version)
	assert.Equal(t, "2025-03-14T09:26:53Z", doc.ExportDate)
	assert.Len(t, doc.Groups, 1)
	assert.Len(t, doc.Sites, 1)
	assert.Equal(t, "导航", doc.Configs["site.title"])

	bad := writeDoc(t, &models.Document{
		Sites: []models.Site{{ID: 1, GroupID: 9, Name: "a", URL: "https://a.com"}},
	})
	_, err = execute(t, "import", bad, "--data-dir", dataDir)
	assert.ErrorContains(t, err, "refusing to import")
}
