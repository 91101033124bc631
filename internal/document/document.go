package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lehmann314159/navigator/internal/models"
	"github.com/lehmann314159/navigator/internal/navigator"
)

// DefaultVersion is written by Stamp when no version is given.
const DefaultVersion = "1.0"

// groupRecord is the on-disk group shape. Nested sites are written for
// downstream consumers and ignored on read.
type groupRecord struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	ParentID *int64        `json:"parent_id"`
	OrderNum int           `json:"order_num"`
	IsPublic *int          `json:"is_public,omitempty"`
	Sites    []models.Site `json:"sites"`
}

type siteRecord struct {
	models.Site
	IsPublic *int `json:"is_public"`
}

type record struct {
	Version    string            `json:"version,omitempty"`
	ExportDate string            `json:"exportDate,omitempty"`
	Groups     []groupRecord     `json:"groups"`
	Sites      []siteRecord      `json:"sites"`
	Configs    map[string]string `json:"configs"`
}

type outRecord struct {
	Version    string            `json:"version,omitempty"`
	ExportDate string            `json:"exportDate,omitempty"`
	Groups     []groupRecord     `json:"groups"`
	Sites      []models.Site     `json:"sites"`
	Configs    map[string]string `json:"configs"`
}

func Decode(r io.Reader) (*models.Document, error) {
	var rec record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	doc := &models.Document{
		Version:    rec.Version,
		ExportDate: rec.ExportDate,
		Groups:     make([]models.Group, 0, len(rec.Groups)),
		Sites:      make([]models.Site, 0, len(rec.Sites)),
		Configs:    rec.Configs,
	}
	for _, g := range rec.Groups {
		doc.Groups = append(doc.Groups, models.Group{
			ID:       g.ID,
			Name:     g.Name,
			ParentID: g.ParentID,
			OrderNum: g.OrderNum,
			IsPublic: publicFlag(g.IsPublic),
		})
	}
	for _, s := range rec.Sites {
		s.Site.IsPublic = publicFlag(s.IsPublic)
		doc.Sites = append(doc.Sites, s.Site)
	}
	if doc.Configs == nil {
		doc.Configs = map[string]string{}
	}
	return doc, nil
}

// Encode writes doc as indented JSON. Every group carries its sites,
// recomputed from the flat site list.
func Encode(w io.Writer, doc *models.Document) error {
	rec := outRecord{
		Version:    doc.Version,
		ExportDate: doc.ExportDate,
		Groups:     make([]groupRecord, 0, len(doc.Groups)),
		Sites:      doc.Sites,
		Configs:    doc.Configs,
	}
	if rec.Sites == nil {
		rec.Sites = []models.Site{}
	}
	if rec.Configs == nil {
		rec.Configs = map[string]string{}
	}
	for _, g := range doc.Groups {
		public := g.IsPublic
		rec.Groups = append(rec.Groups, groupRecord{
			ID:       g.ID,
			Name:     g.Name,
			ParentID: g.ParentID,
			OrderNum: g.OrderNum,
			IsPublic: &public,
			Sites:    navigator.SitesOf(doc.Sites, g.ID),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rec)
}

func Read(path string) (*models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Write encodes doc to path, replacing the file only after a full encode.
func Write(path string, doc *models.Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Stamp records the format version and export instant on doc.
func Stamp(doc *models.Document, version string, now time.Time) {
	if version == "" {
		version = DefaultVersion
	}
	doc.Version = version
	doc.ExportDate = now.UTC().Format(time.RFC3339)
}

// ReadEntries loads a bulk entry file: a JSON array of
// {name, official_website, description}.
func ReadEntries(path string) ([]models.BulkEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	var entries []models.BulkEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries %s: %w", path, err)
	}
	return entries, nil
}

// publicFlag defaults a missing is_public to public.
func publicFlag(v *int) int {
	if v == nil {
		return 1
	}
	return *v
}
