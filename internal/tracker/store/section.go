package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mobiles24/storefront/internal/tracker/model"
)

type SectionStore struct {
	db *sql.DB
}

func NewSectionStore(db *sql.DB) *SectionStore {
	return &SectionStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.ChecklistItem, error) {
	var it model.ChecklistItem
	if err := scanner.Scan(&it.ID, &it.Title, &it.Status, &it.CreatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

// ListSections returns every section with its items, sections in their
// seeded order and items in insertion order.
func (s *SectionStore) ListSections() ([]model.ChecklistSection, error) {
	rows, err := s.db.Query(`SELECT id, title FROM sections ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []model.ChecklistSection
	index := make(map[string]int)
	for rows.Next() {
		var sec model.ChecklistSection
		if err := rows.Scan(&sec.ID, &sec.Title); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sec.Items = []model.ChecklistItem{}
		index[sec.ID] = len(sections)
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := s.db.Query(
		`SELECT section_id, id, title, status, created_at FROM items ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var sectionID string
		var it model.ChecklistItem
		if err := itemRows.Scan(&sectionID, &it.ID, &it.Title, &it.Status, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		i, ok := index[sectionID]
		if !ok {
			continue
		}
		sections[i].Items = append(sections[i].Items, it)
	}
	return sections, itemRows.Err()
}

// GetSection returns a single section with its items, or nil if it does
// not exist.
func (s *SectionStore) GetSection(id string) (*model.ChecklistSection, error) {
	var sec model.ChecklistSection
	err := s.db.QueryRow(`SELECT id, title FROM sections WHERE id = ?`, id).Scan(&sec.ID, &sec.Title)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get section: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, title, status, created_at FROM items WHERE section_id = ? ORDER BY created_at ASC, rowid ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("get section items: %w", err)
	}
	defer rows.Close()

	sec.Items = []model.ChecklistItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		sec.Items = append(sec.Items, *it)
	}
	return &sec, rows.Err()
}

// EnsureSection finds a section whose title matches case-insensitively,
// or creates one with a slug id derived from the title.
func (s *SectionStore) EnsureSection(title string) (*model.ChecklistSection, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("section title is required")
	}

	var id string
	err := s.db.QueryRow(
		`SELECT id FROM sections WHERE LOWER(title) = LOWER(?)`, title).Scan(&id)
	if err == nil {
		return s.GetSection(id)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("find section: %w", err)
	}

	id = slugify(title)
	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sections WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check section id: %w", err)
	}
	if exists > 0 {
		id = id + "-" + uuid.NewString()[:8]
	}

	var maxPos int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(position), 0) FROM sections`).Scan(&maxPos); err != nil {
		return nil, fmt.Errorf("max position: %w", err)
	}

	if _, err := s.db.Exec(
		`INSERT INTO sections (id, title, position) VALUES (?, ?, ?)`,
		id, title, maxPos+1,
	); err != nil {
		return nil, fmt.Errorf("insert section: %w", err)
	}
	return s.GetSection(id)
}

// AddItem inserts a pending item into a section. The section must exist.
func (s *SectionStore) AddItem(sectionID, title string) (*model.ChecklistItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("item title is required")
	}

	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sections WHERE id = ?`, sectionID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check section: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("section %q not found", sectionID)
	}

	id := sectionID + "-" + uuid.NewString()[:8]
	createdAt := time.Now().UTC()
	if _, err := s.db.Exec(
		`INSERT INTO items (id, section_id, title, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, sectionID, title, model.StatusPending, createdAt,
	); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	return &model.ChecklistItem{
		ID:        id,
		Title:     title,
		Status:    model.StatusPending,
		CreatedAt: createdAt,
	}, nil
}

// SetItemStatus updates an item's status and returns the updated item.
func (s *SectionStore) SetItemStatus(sectionID, itemID string, status model.Status) (*model.ChecklistItem, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	result, err := s.db.Exec(
		`UPDATE items SET status = ? WHERE id = ? AND section_id = ?`,
		status, itemID, sectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("update item status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	row := s.db.QueryRow(`SELECT id, title, status, created_at FROM items WHERE id = ?`, itemID)
	it, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// DeleteItem removes an item. When the item was the last one in its
// section, the now-empty section is removed too; the second return
// value reports whether that happened.
func (s *SectionStore) DeleteItem(sectionID, itemID string) (deleted bool, sectionRemoved bool, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM items WHERE id = ? AND section_id = ?`, itemID, sectionID)
	if err != nil {
		return false, false, fmt.Errorf("delete item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, false, nil
	}

	var remaining int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM items WHERE section_id = ?`, sectionID).Scan(&remaining); err != nil {
		return false, false, fmt.Errorf("count remaining: %w", err)
	}
	if remaining == 0 {
		if _, err := tx.Exec(`DELETE FROM sections WHERE id = ?`, sectionID); err != nil {
			return false, false, fmt.Errorf("delete empty section: %w", err)
		}
		sectionRemoved = true
	}

	if err := tx.Commit(); err != nil {
		return false, false, fmt.Errorf("commit: %w", err)
	}
	return true, sectionRemoved, nil
}

// ListItems returns items across all sections, optionally filtered by
// status and a case-insensitive title substring.
func (s *SectionStore) ListItems(status model.Status, query string) ([]model.FlatItem, error) {
	q := `SELECT s.id, s.title, i.id, i.title, i.status, i.created_at
	      FROM items i JOIN sections s ON s.id = i.section_id`
	var args []any
	var where []string
	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("invalid status %q", status)
		}
		where = append(where, `i.status = ?`)
		args = append(args, status)
	}
	if query != "" {
		where = append(where, `LOWER(i.title) LIKE ?`)
		args = append(args, "%"+strings.ToLower(query)+"%")
	}
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY s.position ASC, i.created_at ASC, i.rowid ASC`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []model.FlatItem{}
	for rows.Next() {
		var fi model.FlatItem
		if err := rows.Scan(&fi.SectionID, &fi.SectionTitle, &fi.Item.ID, &fi.Item.Title, &fi.Item.Status, &fi.Item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, fi)
	}
	return items, rows.Err()
}

// Counters tallies items by status across all sections.
func (s *SectionStore) Counters() (*model.Counters, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	defer rows.Close()

	var c model.Counters
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		switch model.Status(status) {
		case model.StatusPending:
			c.Pending = n
		case model.StatusBug:
			c.Bug = n
		case model.StatusResolved:
			c.Resolved = n
		}
		c.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if c.Total > 0 {
		c.ResolvedPct = int(float64(c.Resolved)/float64(c.Total)*100 + 0.5)
	}
	return &c, nil
}

func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
