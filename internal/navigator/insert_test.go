package navigator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehmann314159/navigator/internal/models"
)

var batchTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func TestFaviconURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "plain", url: "https://x.com", want: "https://www.faviconextractor.com/favicon/x.com?larger=true"},
		{name: "path and port", url: "http://app.example.org:8080/download?x=1", want: "https://www.faviconextractor.com/favicon/app.example.org?larger=true"},
		{name: "no scheme", url: "example.com", wantErr: true},
		{name: "empty", url: "", wantErr: true},
		{name: "bad escape", url: "https://%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FaviconURL(DefaultFaviconService, tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInsertBatch(t *testing.T) {
	groups := []models.Group{group(5, "常用app", nil)}
	sites := []models.Site{site(10, 5, 0), site(11, 5, 0)}

	res := Inserter{}.InsertBatch(groups, sites, 5, []models.BulkEntry{
		{Name: "X", OfficialWebsite: "https://x.com", Description: "d"},
	}, batchTime)

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Sites, 3)
	assert.Equal(t, models.Site{
		ID:          12,
		GroupID:     5,
		Name:        "X",
		URL:         "https://x.com",
		Icon:        "https://www.faviconextractor.com/favicon/x.com?larger=true",
		Description: "d",
		OrderNum:    1,
		IsPublic:    1,
		CreatedAt:   "2025-03-14 09:26:53",
		UpdatedAt:   "2025-03-14 09:26:53",
	}, res.Sites[2])
	assert.Len(t, sites, 2, "input must not grow")

	tree := Project(res.Groups, res.Sites)
	require.Len(t, tree, 1)
	assert.Len(t, tree[0].Sites, 3)
}

func TestInsertBatchDropsBadURLs(t *testing.T) {
	groups := []models.Group{group(1, "A", nil)}

	res := Inserter{FaviconService: "icons.local"}.InsertBatch(groups, nil, 1, []models.BulkEntry{
		{Name: "ok", OfficialWebsite: "https://a.com"},
		{Name: "bad", OfficialWebsite: "not a url"},
		{Name: "ok2", OfficialWebsite: "https://b.com/path"},
	}, batchTime)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, KindURLParseFailure, res.Diagnostics[0].Kind)
	assert.Equal(t, "not a url", res.Diagnostics[0].Key)

	require.Len(t, res.Inserted, 2)
	assert.Equal(t, int64(1), res.Inserted[0].ID)
	assert.Equal(t, int64(2), res.Inserted[1].ID)
	assert.Equal(t, 2, res.Inserted[1].OrderNum)
	assert.Equal(t, "https://icons.local/favicon/b.com?larger=true", res.Inserted[1].Icon)
}

func TestInsertBatchUnknownGroup(t *testing.T) {
	sites := []models.Site{site(1, 1, 0)}

	res := Inserter{}.InsertBatch([]models.Group{group(1, "A", nil)}, sites, 99, []models.BulkEntry{
		{Name: "X", OfficialWebsite: "https://x.com"},
	}, batchTime)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, KindLookupFailure, res.Diagnostics[0].Kind)
	assert.Equal(t, "99", res.Diagnostics[0].Key)
	assert.Equal(t, sites, res.Sites)
	assert.Empty(t, res.Inserted)
}

func TestInsertBatchesNeverReuseIDs(t *testing.T) {
	groups := []models.Group{group(66, "电商app", nil), group(67, "常用app", nil)}
	sites := []models.Site{site(100, 66, 7)}

	res := Inserter{}.InsertBatches(groups, sites, []Batch{
		{GroupID: 67, Entries: []models.BulkEntry{{Name: "a", OfficialWebsite: "https://a.com"}, {Name: "b", OfficialWebsite: "https://b.com"}}},
		{GroupID: 66, Entries: []models.BulkEntry{{Name: "c", OfficialWebsite: "https://c.com"}}},
	}, batchTime)

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Sites, 4)
	ids := map[int64]bool{}
	for _, s := range res.Sites {
		assert.False(t, ids[s.ID], "duplicate id %d", s.ID)
		ids[s.ID] = true
	}
	assert.Equal(t, int64(103), res.Sites[3].ID)
	assert.Equal(t, 10, res.Sites[3].OrderNum)
	assert.Equal(t, int64(66), res.Sites[3].GroupID)
	assert.Empty(t, Validate(res.Groups, res.Sites))
}

func TestSequenceFrom(t *testing.T) {
	assert.Equal(t, Sequence{}, SequenceFrom(nil))

	seq := SequenceFrom([]models.Site{site(4, 1, 9), site(2, 1, 3)})
	assert.Equal(t, Sequence{LastID: 4, LastOrder: 9}, seq)

	seq, id, order := seq.Next()
	assert.Equal(t, int64(5), id)
	assert.Equal(t, 10, order)
	assert.Equal(t, Sequence{LastID: 5, LastOrder: 10}, seq)
}
