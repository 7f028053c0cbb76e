package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mobiles24/storefront/internal/catalog"
)

// WishlistStore persists each visitor's liked items, keyed by their
// session id. The stored payload is the full normalized item so the
// wishlist page renders without refetching the catalog.
type WishlistStore struct {
	db *sql.DB
}

func NewWishlistStore(db *sql.DB) *WishlistStore {
	return &WishlistStore{db: db}
}

// List returns the session's wishlist, newest first. Rows whose payload no
// longer decodes are skipped rather than surfaced.
func (s *WishlistStore) List(sessionID string) ([]catalog.PhoneItem, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM wishlist_items WHERE session_id = ? ORDER BY created_at DESC, rowid DESC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	items := []catalog.PhoneItem{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan wishlist row: %w", err)
		}
		var item catalog.PhoneItem
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Contains reports whether the session has wishlisted the item.
func (s *WishlistStore) Contains(sessionID, itemID string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM wishlist_items WHERE session_id = ? AND item_id = ?`,
		sessionID, itemID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check wishlist: %w", err)
	}
	return true, nil
}

// Add stores the item for the session. Adding an item twice is a no-op.
func (s *WishlistStore) Add(sessionID string, item catalog.PhoneItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode wishlist item: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR IGNORE INTO wishlist_items (session_id, item_id, payload) VALUES (?, ?, ?)`,
		sessionID, item.ID, string(payload),
	)
	if err != nil {
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

// Remove deletes the item from the session's wishlist if present.
func (s *WishlistStore) Remove(sessionID, itemID string) error {
	_, err := s.db.Exec(
		`DELETE FROM wishlist_items WHERE session_id = ? AND item_id = ?`,
		sessionID, itemID,
	)
	if err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}

// Toggle adds the item when absent and removes it when present, returning
// whether the item is now wishlisted.
func (s *WishlistStore) Toggle(sessionID string, item catalog.PhoneItem) (bool, error) {
	exists, err := s.Contains(sessionID, item.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, s.Remove(sessionID, item.ID)
	}
	return true, s.Add(sessionID, item)
}

// Count returns the number of wishlisted items for the session.
func (s *WishlistStore) Count(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM wishlist_items WHERE session_id = ?`,
		sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count wishlist: %w", err)
	}
	return n, nil
}
