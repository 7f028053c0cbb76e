package store

import (
	"strings"
	"testing"
	"time"

	"github.com/mobiles24/storefront/internal/tracker/database"
	"github.com/mobiles24/storefront/internal/tracker/model"
)

func setupTestDB(t *testing.T) *SectionStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSectionStore(db)
}

func TestSeededSections(t *testing.T) {
	ss := setupTestDB(t)

	sections, err := ss.ListSections()
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(sections) != 16 {
		t.Fatalf("got %d sections, want 16", len(sections))
	}

	if sections[0].ID != "navbar" {
		t.Errorf("first section = %q, want %q", sections[0].ID, "navbar")
	}
	if len(sections[0].Items) != 2 {
		t.Errorf("navbar has %d items, want 2", len(sections[0].Items))
	}
	if sections[15].ID != "book-now" {
		t.Errorf("last section = %q, want %q", sections[15].ID, "book-now")
	}

	seen := make(map[string]bool)
	for _, sec := range sections {
		if seen[sec.ID] {
			t.Errorf("duplicate section id %q", sec.ID)
		}
		seen[sec.ID] = true
		for _, it := range sec.Items {
			if it.Status != model.StatusPending {
				t.Errorf("seeded item %q status = %q, want pending", it.ID, it.Status)
			}
		}
	}
}

func TestAddItemToExistingSection(t *testing.T) {
	ss := setupTestDB(t)

	item, err := ss.AddItem("hero", "Hero image lazy loads")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if item.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", item.Status)
	}
	if !strings.HasPrefix(item.ID, "hero-") {
		t.Errorf("item id %q should carry the section prefix", item.ID)
	}
	if time.Since(item.CreatedAt) > time.Minute {
		t.Errorf("created_at %v not recent", item.CreatedAt)
	}

	sec, err := ss.GetSection("hero")
	if err != nil {
		t.Fatalf("get section: %v", err)
	}
	if len(sec.Items) != 2 {
		t.Fatalf("hero has %d items, want 2", len(sec.Items))
	}
	if sec.Items[1].ID != item.ID {
		t.Errorf("new item should be last in the section")
	}
}

func TestAddItemMissingSection(t *testing.T) {
	ss := setupTestDB(t)

	if _, err := ss.AddItem("no-such-section", "whatever"); err == nil {
		t.Fatal("expected error for missing section")
	}
}

func TestAddItemEmptyTitle(t *testing.T) {
	ss := setupTestDB(t)

	if _, err := ss.AddItem("hero", "   "); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestEnsureSectionCreatesNew(t *testing.T) {
	ss := setupTestDB(t)

	sec, err := ss.EnsureSection("Checkout Flow")
	if err != nil {
		t.Fatalf("ensure section: %v", err)
	}
	if sec.ID != "checkout-flow" {
		t.Errorf("section id = %q, want %q", sec.ID, "checkout-flow")
	}
	if len(sec.Items) != 0 {
		t.Errorf("new section has %d items, want 0", len(sec.Items))
	}

	sections, err := ss.ListSections()
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(sections) != 17 {
		t.Errorf("got %d sections, want 17", len(sections))
	}
	// New sections sort after the seeded ones
	if sections[16].ID != "checkout-flow" {
		t.Errorf("last section = %q, want checkout-flow", sections[16].ID)
	}
}

func TestEnsureSectionMatchesCaseInsensitively(t *testing.T) {
	ss := setupTestDB(t)

	sec, err := ss.EnsureSection("NAVBAR")
	if err != nil {
		t.Fatalf("ensure section: %v", err)
	}
	if sec.ID != "navbar" {
		t.Errorf("section id = %q, want existing %q", sec.ID, "navbar")
	}

	sections, _ := ss.ListSections()
	if len(sections) != 16 {
		t.Errorf("got %d sections, want 16 (no duplicate created)", len(sections))
	}
}

func TestSetItemStatus(t *testing.T) {
	ss := setupTestDB(t)

	item, err := ss.SetItemStatus("navbar", "nav-1", model.StatusBug)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if item == nil {
		t.Fatal("expected item")
	}
	if item.Status != model.StatusBug {
		t.Errorf("status = %q, want bug", item.Status)
	}

	// Bug -> resolved
	item, err = ss.SetItemStatus("navbar", "nav-1", model.StatusResolved)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if item.Status != model.StatusResolved {
		t.Errorf("status = %q, want resolved", item.Status)
	}

	// Back to pending
	item, err = ss.SetItemStatus("navbar", "nav-1", model.StatusPending)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if item.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", item.Status)
	}
}

func TestSetItemStatusWrongSection(t *testing.T) {
	ss := setupTestDB(t)

	item, err := ss.SetItemStatus("hero", "nav-1", model.StatusBug)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if item != nil {
		t.Error("item id under a different section should not match")
	}
}

func TestSetItemStatusInvalid(t *testing.T) {
	ss := setupTestDB(t)

	if _, err := ss.SetItemStatus("navbar", "nav-1", "closed"); err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestDeleteItemKeepsNonEmptySection(t *testing.T) {
	ss := setupTestDB(t)

	deleted, sectionRemoved, err := ss.DeleteItem("navbar", "nav-1")
	if err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if !deleted {
		t.Fatal("expected item to be deleted")
	}
	if sectionRemoved {
		t.Error("navbar still has nav-2, section should remain")
	}

	sec, _ := ss.GetSection("navbar")
	if sec == nil || len(sec.Items) != 1 {
		t.Fatalf("navbar should remain with 1 item")
	}
}

func TestDeleteLastItemRemovesSection(t *testing.T) {
	ss := setupTestDB(t)

	deleted, sectionRemoved, err := ss.DeleteItem("hero", "hero-1")
	if err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if !deleted {
		t.Fatal("expected item to be deleted")
	}
	if !sectionRemoved {
		t.Error("hero had a single item, section should be removed")
	}

	sec, err := ss.GetSection("hero")
	if err != nil {
		t.Fatalf("get section: %v", err)
	}
	if sec != nil {
		t.Error("hero section should be gone")
	}
}

func TestDeleteItemNotFound(t *testing.T) {
	ss := setupTestDB(t)

	deleted, _, err := ss.DeleteItem("hero", "no-such-item")
	if err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if deleted {
		t.Error("expected no deletion")
	}
}

func TestListItemsFilters(t *testing.T) {
	ss := setupTestDB(t)

	if _, err := ss.SetItemStatus("navbar", "nav-1", model.StatusBug); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if _, err := ss.SetItemStatus("hero", "hero-1", model.StatusResolved); err != nil {
		t.Fatalf("set status: %v", err)
	}

	bugs, err := ss.ListItems(model.StatusBug, "")
	if err != nil {
		t.Fatalf("list bugs: %v", err)
	}
	if len(bugs) != 1 || bugs[0].Item.ID != "nav-1" {
		t.Fatalf("bugs = %+v, want just nav-1", bugs)
	}
	if bugs[0].SectionID != "navbar" || bugs[0].SectionTitle != "Navbar" {
		t.Errorf("bug item should carry section context, got %+v", bugs[0])
	}

	all, err := ss.ListItems("", "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 17 {
		t.Errorf("got %d items, want 17", len(all))
	}

	matched, err := ss.ListItems("", "LOGO")
	if err != nil {
		t.Fatalf("list query: %v", err)
	}
	if len(matched) != 1 || matched[0].Item.ID != "nav-1" {
		t.Fatalf("query LOGO = %+v, want just nav-1", matched)
	}

	none, err := ss.ListItems(model.StatusBug, "hero")
	if err != nil {
		t.Fatalf("list combined: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("bug+hero should match nothing, got %d", len(none))
	}
}

func TestCounters(t *testing.T) {
	ss := setupTestDB(t)

	ss.SetItemStatus("navbar", "nav-1", model.StatusBug)
	ss.SetItemStatus("navbar", "nav-2", model.StatusResolved)
	ss.SetItemStatus("hero", "hero-1", model.StatusResolved)

	c, err := ss.Counters()
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if c.Total != 17 {
		t.Errorf("total = %d, want 17", c.Total)
	}
	if c.Bug != 1 {
		t.Errorf("bug = %d, want 1", c.Bug)
	}
	if c.Resolved != 2 {
		t.Errorf("resolved = %d, want 2", c.Resolved)
	}
	if c.Pending != 14 {
		t.Errorf("pending = %d, want 14", c.Pending)
	}
	// 2 of 17 resolved, rounded to nearest percent
	if c.ResolvedPct != 12 {
		t.Errorf("resolvedPct = %d, want 12", c.ResolvedPct)
	}
}

func TestCountersEmpty(t *testing.T) {
	ss := setupTestDB(t)

	// Clear every item so the percentage denominator is zero
	for _, sec := range mustSections(t, ss) {
		for _, it := range sec.Items {
			if _, _, err := ss.DeleteItem(sec.ID, it.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
		}
	}

	c, err := ss.Counters()
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if c.Total != 0 || c.ResolvedPct != 0 {
		t.Errorf("empty counters = %+v, want zeros", c)
	}
}

func mustSections(t *testing.T, ss *SectionStore) []model.ChecklistSection {
	t.Helper()
	sections, err := ss.ListSections()
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	return sections
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Checkout Flow", "checkout-flow"},
		{"  Payment / Refunds  ", "payment-refunds"},
		{"FAQ", "faq"},
		{"Order #2 Review!", "order-2-review"},
	}
	for _, c := range cases {
		if got := slugify(c.in); got != c.want {
			t.Errorf("slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
