package catalog

import "strings"

// Companies returns the distinct non-empty company names in listing order.
func Companies(items []PhoneItem) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		if it.Company == "" {
			continue
		}
		if _, ok := seen[it.Company]; ok {
			continue
		}
		seen[it.Company] = struct{}{}
		out = append(out, it.Company)
	}
	return out
}

// Filter applies the listing predicates: an exact company match (empty or
// "All" disables it) followed by a case-insensitive substring search over
// "company model storage".
func Filter(items []PhoneItem, company, query string) []PhoneItem {
	query = strings.ToLower(strings.TrimSpace(query))
	filterCompany := company != "" && company != "All"

	out := make([]PhoneItem, 0, len(items))
	for _, it := range items {
		if filterCompany && it.Company != company {
			continue
		}
		if query != "" {
			text := strings.ToLower(strings.TrimSpace(it.Company + " " + it.Model + " " + it.Storage))
			if !strings.Contains(text, query) {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// IsAccessory reports whether a used-phone record belongs to one of the
// store's accessory categories. Used phones double as accessories when the
// dedicated feed comes back empty.
func IsAccessory(item PhoneItem, categories []Category) bool {
	raw := asMap(item.Raw)
	if raw == nil {
		return false
	}
	catID := str(raw["CategoryID"])
	catName := pick(raw, "Category", "CategoryName")

	for _, c := range categories {
		if !strings.Contains(strings.ToLower(c.Name), "accessor") {
			continue
		}
		if catID != "" && catID == str(c.ID) {
			return true
		}
		if catName != "" && strings.EqualFold(catName, c.Name) {
			return true
		}
	}
	return catName != "" && strings.Contains(strings.ToLower(catName), "accessor")
}

// AccessoryFallback selects the used items that stand in for the
// accessories list when the dedicated feed is empty.
func AccessoryFallback(used []PhoneItem, categories []Category) []PhoneItem {
	out := make([]PhoneItem, 0)
	for _, it := range used {
		if IsAccessory(it, categories) {
			out = append(out, it)
		}
	}
	return out
}
