package navigator

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/lehmann314159/navigator/internal/models"
)

// DefaultFaviconService is the host of the favicon extractor used for icons.
const DefaultFaviconService = "www.faviconextractor.com"

// FaviconURL derives the icon URL for a site from its hostname.
func FaviconURL(service, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return "", fmt.Errorf("%q is not an absolute URL", rawURL)
	}
	return fmt.Sprintf("https://%s/favicon/%s?larger=true", service, u.Hostname()), nil
}

// Sequence hands out site ids and order numbers above the current maxima.
type Sequence struct {
	LastID    int64
	LastOrder int
}

// SequenceFrom starts a sequence after the largest id and order_num in sites.
// An empty collection starts at zero.
func SequenceFrom(sites []models.Site) Sequence {
	var seq Sequence
	for _, s := range sites {
		seq.LastID = max(seq.LastID, s.ID)
		seq.LastOrder = max(seq.LastOrder, s.OrderNum)
	}
	return seq
}

// Next returns the following id and order number.
func (s Sequence) Next() (Sequence, int64, int) {
	s.LastID++
	s.LastOrder++
	return s, s.LastID, s.LastOrder
}

type Batch struct {
	GroupID int64
	Entries []models.BulkEntry
}

type InsertResult struct {
	Groups      []models.Group
	Sites       []models.Site
	Inserted    []models.Site
	Diagnostics []Diagnostic
}

// Inserter appends externally prepared site batches.
type Inserter struct {
	FaviconService string
}

// InsertBatch appends entries to groupID, numbering them after the current
// maxima of sites. Every entry of the batch shares the timestamp now. Entries
// whose URL cannot be parsed are dropped with a URL_PARSE_FAILURE diagnostic.
// An unknown groupID skips the whole batch with LOOKUP_FAILURE.
//
// The nested per-group view is not maintained here; derive it with Project.
func (in Inserter) InsertBatch(groups []models.Group, sites []models.Site, groupID int64, entries []models.BulkEntry, now time.Time) InsertResult {
	res := InsertResult{Groups: groups, Sites: sites}
	if !slices.ContainsFunc(groups, func(g models.Group) bool { return g.ID == groupID }) {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind:   KindLookupFailure,
			Key:    idKey(groupID),
			Detail: fmt.Sprintf("target group missing, %d entries skipped", len(entries)),
		})
		return res
	}

	service := in.FaviconService
	if service == "" {
		service = DefaultFaviconService
	}
	stamp := models.Timestamp(now)

	seq := SequenceFrom(sites)
	for _, e := range entries {
		icon, err := FaviconURL(service, e.OfficialWebsite)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:   KindURLParseFailure,
				Key:    e.OfficialWebsite,
				Detail: fmt.Sprintf("entry %q: %v", e.Name, err),
			})
			continue
		}

		var id int64
		var order int
		seq, id, order = seq.Next()
		res.Inserted = append(res.Inserted, models.Site{
			ID:          id,
			GroupID:     groupID,
			Name:        e.Name,
			URL:         e.OfficialWebsite,
			Icon:        icon,
			Description: e.Description,
			OrderNum:    order,
			IsPublic:    1,
			CreatedAt:   stamp,
			UpdatedAt:   stamp,
		})
	}

	res.Sites = append(slices.Clip(sites), res.Inserted...)
	return res
}

// InsertBatches applies batches in order, recomputing the sequence from the
// latest site collection before each one so ids never collide.
func (in Inserter) InsertBatches(groups []models.Group, sites []models.Site, batches []Batch, now time.Time) InsertResult {
	res := InsertResult{Groups: groups, Sites: sites}
	for _, b := range batches {
		step := in.InsertBatch(res.Groups, res.Sites, b.GroupID, b.Entries, now)
		res.Sites = step.Sites
		res.Inserted = append(res.Inserted, step.Inserted...)
		res.Diagnostics = append(res.Diagnostics, step.Diagnostics...)
	}
	return res
}
