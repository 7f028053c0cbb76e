package catalog

import (
	"strings"
	"unicode"
)

// soldIndex holds the lookup structures built from one sold feed.
type soldIndex struct {
	byID      map[string]string // bare id -> sold date
	byKey     map[string]string // company|model|storage -> sold date
	byPartial map[string]string // company|model| -> sold date
}

func buildSoldIndex(sold []SoldItem) soldIndex {
	idx := soldIndex{
		byID:      make(map[string]string, len(sold)),
		byKey:     make(map[string]string, len(sold)),
		byPartial: make(map[string]string, len(sold)),
	}
	for _, s := range sold {
		if s.ID != "" {
			setFirst(idx.byID, s.ID, s.SoldDate)
		}
		if s.Company == "" && s.Model == "" {
			continue
		}
		if s.Variant != "" {
			setFirst(idx.byKey, compositeKey(s.Company, s.Model, s.Variant), s.SoldDate)
		}
		// The storage-agnostic key catches feeds that omit variant
		// granularity: it marks every storage of that company+model sold.
		setFirst(idx.byPartial, compositeKey(s.Company, s.Model, ""), s.SoldDate)
	}
	return idx
}

// setFirst keeps the first date seen for a key; later duplicates in the
// feed do not overwrite it.
func setFirst(m map[string]string, key, date string) {
	if _, ok := m[key]; !ok {
		m[key] = date
	}
}

// compositeKey builds the normalized lookup key: lower-cased,
// whitespace-stripped company|model|storage.
func compositeKey(company, model, storage string) string {
	return normToken(company) + "|" + normToken(model) + "|" + normToken(storage)
}

func normToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ApplySoldStatus cross-references used phones against the sold feed and
// returns a new slice with IsSold and the sold date annotated. A phone is
// sold when its bare id matches the feed, or its full composite key
// matches, or its storage-agnostic key matches; the sold date comes from
// the first match checked in that order. Inputs are never mutated.
func ApplySoldStatus(phones []PhoneItem, sold []SoldItem) []PhoneItem {
	idx := buildSoldIndex(sold)

	out := make([]PhoneItem, len(phones))
	for i, p := range phones {
		out[i] = p
		if p.Source != SourceUsed {
			continue
		}

		bareID := strings.TrimPrefix(p.ID, "used-")
		if date, ok := idx.byID[bareID]; ok {
			out[i].IsSold = true
			out[i].SoldOn = date
			continue
		}
		if date, ok := idx.byKey[compositeKey(p.Company, p.Model, p.Storage)]; ok {
			out[i].IsSold = true
			out[i].SoldOn = date
			continue
		}
		if date, ok := idx.byPartial[compositeKey(p.Company, p.Model, "")]; ok {
			out[i].IsSold = true
			out[i].SoldOn = date
		}
	}
	return out
}
