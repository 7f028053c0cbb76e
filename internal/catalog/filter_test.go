package catalog

import (
	"reflect"
	"testing"
)

func TestCompanies(t *testing.T) {
	items := []PhoneItem{
		{Company: "Samsung"},
		{Company: "Apple"},
		{Company: "Samsung"},
		{Company: ""},
		{Company: "Google"},
	}

	got := Companies(items)
	want := []string{"Samsung", "Apple", "Google"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Companies = %v, want %v", got, want)
	}
}

func TestFilterByCompany(t *testing.T) {
	items := []PhoneItem{
		{ID: "1", Company: "Samsung", Model: "Galaxy S21"},
		{ID: "2", Company: "Apple", Model: "iPhone 13"},
	}

	got := Filter(items, "Samsung", "")
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("company filter = %v, want just Samsung", got)
	}

	// "All" and "" disable the company filter
	if got := Filter(items, "All", ""); len(got) != 2 {
		t.Errorf("All = %d items, want 2", len(got))
	}
	if got := Filter(items, "", ""); len(got) != 2 {
		t.Errorf("empty = %d items, want 2", len(got))
	}

	// Company match is exact, not case-insensitive
	if got := Filter(items, "samsung", ""); len(got) != 0 {
		t.Errorf("lowercase company = %v, want no match", got)
	}
}

func TestFilterByQuery(t *testing.T) {
	items := []PhoneItem{
		{ID: "1", Company: "Samsung", Model: "Galaxy S21", Storage: "128GB"},
		{ID: "2", Company: "Apple", Model: "iPhone 13", Storage: "256GB"},
	}

	// Query is case-insensitive and spans company, model and storage
	if got := Filter(items, "", "galaxy"); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("query galaxy = %v", got)
	}
	if got := Filter(items, "", "256"); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("query 256 = %v", got)
	}
	if got := Filter(items, "", "  APPLE  "); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("query with padding = %v", got)
	}
	if got := Filter(items, "", "nokia"); len(got) != 0 {
		t.Errorf("query nokia = %v, want empty", got)
	}

	// Both predicates compose
	if got := Filter(items, "Samsung", "iphone"); len(got) != 0 {
		t.Errorf("company+query mismatch = %v, want empty", got)
	}
}

func TestIsAccessory(t *testing.T) {
	categories := []Category{
		{ID: 3, Name: "Accessories"},
		{ID: 7, Name: "Phones"},
	}

	byID := PhoneItem{Raw: map[string]any{"CategoryID": float64(3)}}
	if !IsAccessory(byID, categories) {
		t.Error("category id 3 should match the Accessories category")
	}

	byName := PhoneItem{Raw: map[string]any{"Category": "accessories"}}
	if !IsAccessory(byName, categories) {
		t.Error("category name should match case-insensitively")
	}

	phone := PhoneItem{Raw: map[string]any{"CategoryID": float64(7)}}
	if IsAccessory(phone, categories) {
		t.Error("the Phones category is not an accessory")
	}

	noRaw := PhoneItem{}
	if IsAccessory(noRaw, categories) {
		t.Error("item without raw payload cannot be an accessory")
	}

	// Without store categories the name substring still decides
	loose := PhoneItem{Raw: map[string]any{"Category": "Mobile Accessories"}}
	if !IsAccessory(loose, nil) {
		t.Error("accessory-named category should match without store categories")
	}
}

func TestAccessoryFallback(t *testing.T) {
	categories := []Category{{ID: 3, Name: "Accessories"}}
	used := []PhoneItem{
		{ID: "used-1", Raw: map[string]any{"CategoryID": float64(3)}},
		{ID: "used-2", Raw: map[string]any{"CategoryID": float64(7)}},
	}

	got := AccessoryFallback(used, categories)
	if len(got) != 1 || got[0].ID != "used-1" {
		t.Errorf("fallback = %v, want just used-1", got)
	}
}
