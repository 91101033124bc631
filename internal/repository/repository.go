package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/lehmann314159/navigator/internal/models"
	"github.com/lehmann314159/navigator/internal/navigator"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Groups

const groupColumns = `id, name, parent_id, order_num, is_public`

func (r *Repository) GetGroups() ([]models.Group, error) {
	rows, err := r.db.Query(`SELECT ` + groupColumns + ` FROM site_groups ORDER BY order_num, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *Repository) GetGroup(id int64) (*models.Group, error) {
	g, err := scanGroup(r.db.QueryRow(`SELECT `+groupColumns+` FROM site_groups WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repository) CreateGroup(g models.Group) (int64, error) {
	result, err := r.db.Exec(`INSERT INTO site_groups (name, parent_id, order_num, is_public) VALUES (?, ?, ?, ?)`,
		g.Name, nullInt64(g.ParentID), g.OrderNum, g.IsPublic)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (r *Repository) UpdateGroup(g models.Group) error {
	return r.exec(fmt.Sprintf("group %d", g.ID), `UPDATE site_groups SET name = ?, order_num = ?, is_public = ? WHERE id = ?`,
		g.Name, g.OrderNum, g.IsPublic, g.ID)
}

// SetGroupParent moves a group, refusing moves that would break the
// two-level hierarchy.
func (r *Repository) SetGroupParent(id int64, parentID *int64) error {
	groups, err := r.GetGroups()
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(groups, func(g models.Group) bool { return g.ID == id }) {
		return fmt.Errorf("group %d: %w", id, ErrNotFound)
	}
	if parentID != nil && !slices.ContainsFunc(groups, func(g models.Group) bool { return g.ID == *parentID }) {
		return fmt.Errorf("parent group %d: %w", *parentID, ErrNotFound)
	}
	if _, _, err := navigator.Reparent(groups, id, parentID); err != nil {
		return err
	}
	return r.exec(fmt.Sprintf("group %d", id), `UPDATE site_groups SET parent_id = ? WHERE id = ?`, nullInt64(parentID), id)
}

// SetGroupOrder writes order_num for each group in one transaction.
func (r *Repository) SetGroupOrder(groups []models.Group) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, g := range groups {
		if _, err := tx.Exec(`UPDATE site_groups SET order_num = ? WHERE id = ?`, g.OrderNum, g.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteGroup removes a group; sub-groups and their sites go with it through
// ON DELETE CASCADE.
func (r *Repository) DeleteGroup(id int64) error {
	return r.exec(fmt.Sprintf("group %d", id), `DELETE FROM site_groups WHERE id = ?`, id)
}

// Sites

const siteColumns = `id, group_id, name, url, icon, description, notes, order_num, is_public, created_at, updated_at`

func (r *Repository) GetSites(groupID *int64) ([]models.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites`
	args := []interface{}{}
	if groupID != nil {
		query += ` WHERE group_id = ?`
		args = append(args, *groupID)
	}
	query += ` ORDER BY group_id, order_num, id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := []models.Site{}
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

func (r *Repository) GetSite(id int64) (*models.Site, error) {
	s, err := scanSite(r.db.QueryRow(`SELECT `+siteColumns+` FROM sites WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("site %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateSite(s models.Site) (int64, error) {
	result, err := r.db.Exec(`INSERT INTO sites (group_id, name, url, icon, description, notes, order_num, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.GroupID, s.Name, s.URL, nullString(s.Icon), nullString(s.Description), nullString(s.Notes),
		s.OrderNum, s.IsPublic, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// InsertSites stores sites that already carry their ids, all or nothing.
func (r *Repository) InsertSites(sites []models.Site) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, s := range sites {
		if err := insertSite(tx, s); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repository) UpdateSite(s models.Site) error {
	return r.exec(fmt.Sprintf("site %d", s.ID), `UPDATE sites SET group_id = ?, name = ?, url = ?, icon = ?, description = ?, notes = ?,
		order_num = ?, is_public = ?, updated_at = ? WHERE id = ?`,
		s.GroupID, s.Name, s.URL, nullString(s.Icon), nullString(s.Description), nullString(s.Notes),
		s.OrderNum, s.IsPublic, s.UpdatedAt, s.ID)
}

func (r *Repository) DeleteSite(id int64) error {
	return r.exec(fmt.Sprintf("site %d", id), `DELETE FROM sites WHERE id = ?`, id)
}

// SaveSiteOrder persists order_num and updated_at for every site of groupID
// in one transaction. Sites of other groups are left alone.
func (r *Repository) SaveSiteOrder(groupID int64, sites []models.Site) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, s := range sites {
		if s.GroupID != groupID {
			continue
		}
		if _, err := tx.Exec(`UPDATE sites SET order_num = ?, updated_at = ? WHERE id = ? AND group_id = ?`,
			s.OrderNum, s.UpdatedAt, s.ID, groupID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Configs

func (r *Repository) GetConfigs() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT name, value FROM configs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := map[string]string{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		configs[name] = value
	}
	return configs, rows.Err()
}

func (r *Repository) SetConfig(name, value string) error {
	_, err := r.db.Exec(`INSERT INTO configs (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`, name, value)
	return err
}

// Documents

func (r *Repository) LoadDocument() (*models.Document, error) {
	groups, err := r.GetGroups()
	if err != nil {
		return nil, err
	}
	sites, err := r.GetSites(nil)
	if err != nil {
		return nil, err
	}
	configs, err := r.GetConfigs()
	if err != nil {
		return nil, err
	}
	return &models.Document{Groups: groups, Sites: sites, Configs: configs}, nil
}

// ReplaceDocument swaps the whole store for doc in one transaction. Foreign
// keys are checked at commit, so a document with dangling references is
// rejected as a whole.
func (r *Repository) ReplaceDocument(doc *models.Document) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`PRAGMA defer_foreign_keys = ON`); err != nil {
		return err
	}
	for _, stmt := range []string{`DELETE FROM sites`, `DELETE FROM site_groups`, `DELETE FROM configs`} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	for _, g := range doc.Groups {
		if _, err := tx.Exec(`INSERT INTO site_groups (id, name, parent_id, order_num, is_public) VALUES (?, ?, ?, ?, ?)`,
			g.ID, g.Name, nullInt64(g.ParentID), g.OrderNum, g.IsPublic); err != nil {
			return fmt.Errorf("insert group %d: %w", g.ID, err)
		}
	}
	for _, s := range doc.Sites {
		if err := insertSite(tx, s); err != nil {
			return err
		}
	}
	for name, value := range doc.Configs {
		if _, err := tx.Exec(`INSERT INTO configs (name, value) VALUES (?, ?)`, name, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertSite(tx *sql.Tx, s models.Site) error {
	if _, err := tx.Exec(`INSERT INTO sites (id, group_id, name, url, icon, description, notes, order_num, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.GroupID, s.Name, s.URL, nullString(s.Icon), nullString(s.Description), nullString(s.Notes),
		s.OrderNum, s.IsPublic, s.CreatedAt, s.UpdatedAt); err != nil {
		return fmt.Errorf("insert site %d: %w", s.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGroup(row scanner) (models.Group, error) {
	var g models.Group
	var parentID sql.NullInt64
	if err := row.Scan(&g.ID, &g.Name, &parentID, &g.OrderNum, &g.IsPublic); err != nil {
		return g, err
	}
	if parentID.Valid {
		g.ParentID = &parentID.Int64
	}
	return g, nil
}

func scanSite(row scanner) (models.Site, error) {
	var s models.Site
	var icon, desc, notes, created, updated sql.NullString
	if err := row.Scan(&s.ID, &s.GroupID, &s.Name, &s.URL, &icon, &desc, &notes,
		&s.OrderNum, &s.IsPublic, &created, &updated); err != nil {
		return s, err
	}
	s.Icon = icon.String
	s.Description = desc.String
	s.Notes = notes.String
	s.CreatedAt = created.String
	s.UpdatedAt = updated.String
	return s, nil
}

// exec runs a single-row statement and maps "no rows affected" to ErrNotFound.
func (r *Repository) exec(what, query string, args ...interface{}) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
