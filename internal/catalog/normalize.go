package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	cdnBase          = "https://phoneo.site"
	placeholderImage = "https://phoneo.site/placeholder-phone.png"

	defaultStoreName    = "Mobiles24"
	defaultAccessoryCo  = "Accessory"
	defaultAccessoryMdl = "Accessory"
)

// str renders a scalar JSON value as a string. Anything that is not a
// string or a number yields "".
func str(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

// pick probes the ordered candidate keys and returns the first non-empty
// string value. Upstream payloads are inconsistent about key naming, so
// every field lookup in this package goes through here.
func pick(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// NormalizeImageURL rewrites a possibly-relative upstream image path into an
// absolute CDN URL. Empty input yields the placeholder image.
func NormalizeImageURL(url string) string {
	if url == "" {
		return placeholderImage
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	if strings.HasPrefix(url, "/") {
		return cdnBase + url
	}
	return cdnBase + "/" + url
}

// NormalizeStoreInfo maps raw shop JSON into a StoreInfo. Total: missing or
// malformed fields fall back to defaults, never an error.
func NormalizeStoreInfo(data map[string]any) StoreInfo {
	if data == nil {
		data = map[string]any{}
	}

	name := pick(data, "ShopName", "Name")
	if name == "" {
		name = defaultStoreName
	}

	info := StoreInfo{
		Name:           name,
		Slogan:         pick(data, "Slogan"),
		Description:    pick(data, "Address"),
		BannerURL:      NormalizeImageURL(pick(data, "Banner", "Cover", "Thumb")),
		Categories:     []Category{},
		FinanceEnabled: str(data["Finance"]) == "1",
		Raw:            data,
	}

	for _, c := range asSlice(data["categories"]) {
		cm := asMap(c)
		if cm == nil {
			continue
		}
		id, _ := strconv.Atoi(str(cm["id"]))
		info.Categories = append(info.Categories, Category{ID: id, Name: str(cm["Name"])})
	}

	pweb := parsePWeb(str(data["PWebDetails"]))
	info.Social = SocialLinks{
		Instagram: str(data["InstaLink"]),
		YouTube:   str(pweb["YoutubeLink"]),
		Facebook:  str(pweb["FacebookLink"]),
		Google:    str(pweb["GoogleReviewLink"]),
		WhatsApp:  str(pweb["WhatsAppChannelLink"]),
	}

	return info
}

// parsePWeb decodes the PWebDetails field, which arrives as a JSON document
// embedded in a string. Malformed input yields an empty map.
func parsePWeb(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// NormalizeUsedPhone maps one raw used-phone record into a PhoneItem.
func NormalizeUsedPhone(item map[string]any) PhoneItem {
	if item == nil {
		item = map[string]any{}
	}

	img := pick(item, "Thumb", "DummyThumb")
	if imgs := asSlice(item["image"]); len(imgs) > 0 {
		if first := asMap(imgs[0]); first != nil {
			if p := str(first["path"]); p != "" {
				img = p
			}
		}
	}

	return PhoneItem{
		ID:      "used-" + str(item["id"]),
		Company: str(item["Company"]),
		Model:   str(item["Model"]),
		Storage: pick(item, "Variant", "Storage"),
		Price:   str(item["SalePrice"]),
		Image:   NormalizeImageURL(img),
		Source:  SourceUsed,
		Raw:     item,
	}
}

// NormalizeUsedPhones maps a raw used-phone list, tolerating non-array input.
func NormalizeUsedPhones(items []any) []PhoneItem {
	out := make([]PhoneItem, 0, len(items))
	for _, it := range items {
		out = append(out, NormalizeUsedPhone(asMap(it)))
	}
	return out
}

// NormalizeNewPhones flattens the new-phone product list: every variant of a
// product becomes its own PhoneItem, inheriting company/model from the
// parent and taking storage/price/image from the variant.
func NormalizeNewPhones(payload any) []PhoneItem {
	products := asSlice(payload)
	var out []PhoneItem

	for _, p := range products {
		pm := asMap(p)
		if pm == nil {
			continue
		}
		for _, v := range asSlice(pm["variant"]) {
			vm := asMap(v)
			if vm == nil {
				continue
			}
			units := unitList(vm["units"])
			price := str(vm["SalePrice"])
			if price == "" {
				price = minUnitPrice(units, true)
			}
			out = append(out, PhoneItem{
				ID:      "new-" + str(pm["id"]) + "-" + str(vm["id"]),
				Company: str(pm["Company"]),
				Model:   str(pm["Model"]),
				Storage: pick(vm, "Storage", "Variant"),
				Price:   price,
				Image:   pickNewPhoneImage(pm, vm),
				Source:  SourceNew,
				IsSold:  allUnitsSold(units),
				Raw:     map[string]any{"product": pm, "variant": vm},
			})
		}
	}
	return out
}

// pickNewPhoneImage prefers the variant's first image (object or bare path),
// then the variant thumb, then the product thumb.
func pickNewPhoneImage(product, variant map[string]any) string {
	if imgs := asSlice(variant["Images"]); len(imgs) > 0 {
		if first := asMap(imgs[0]); first != nil {
			if p := str(first["path"]); p != "" {
				return NormalizeImageURL(p)
			}
		} else if p := str(imgs[0]); p != "" {
			return NormalizeImageURL(p)
		}
	}
	if t := str(variant["Thumb"]); t != "" {
		return NormalizeImageURL(t)
	}
	return NormalizeImageURL(str(product["Thumb"]))
}

// NormalizeAccessories maps the accessories payload, which nests its item
// list under "items" or "data.items" depending on the upstream variant.
func NormalizeAccessories(payload any) []PhoneItem {
	items := AccessoryItems(payload)
	out := make([]PhoneItem, 0, len(items))

	for _, it := range items {
		a := asMap(it)
		if a == nil {
			continue
		}
		units := unitList(a["units"])

		var inStock map[string]any
		for _, u := range units {
			if strings.EqualFold(str(u["Status"]), "InStock") {
				inStock = u
				break
			}
		}

		price := ""
		if inStock != nil {
			price = str(inStock["SalePrice"])
		}
		if price == "" {
			price = minUnitPrice(units, false)
		}

		img := pick(a, "Thumb", "DummyThumb")
		if img == "" && inStock != nil {
			img = str(inStock["Thumb"])
		}

		company := str(a["Company"])
		if company == "" {
			company = defaultAccessoryCo
		}
		model := pick(a, "Model", "Name")
		if model == "" {
			model = defaultAccessoryMdl
		}

		out = append(out, PhoneItem{
			ID:      "acc-" + str(a["id"]),
			Company: company,
			Model:   model,
			Storage: "",
			Price:   price,
			Image:   NormalizeImageURL(img),
			Source:  SourceAccessory,
			IsSold:  allUnitsSold(units),
			Raw:     a,
		})
	}
	return out
}

// AccessoryItems extracts the raw accessory item list from either payload
// shape. Anything unexpected yields an empty list.
func AccessoryItems(payload any) []any {
	m := asMap(payload)
	if m == nil {
		return nil
	}
	if items := asSlice(m["items"]); items != nil {
		return items
	}
	if data := asMap(m["data"]); data != nil {
		return asSlice(data["items"])
	}
	return nil
}

func unitList(v any) []map[string]any {
	raw := asSlice(v)
	out := make([]map[string]any, 0, len(raw))
	for _, u := range raw {
		if um := asMap(u); um != nil {
			out = append(out, um)
		}
	}
	return out
}

// allUnitsSold reports whether every stock unit has status "sold". Zero
// units means not sold.
func allUnitsSold(units []map[string]any) bool {
	if len(units) == 0 {
		return false
	}
	for _, u := range units {
		if !strings.EqualFold(str(u["Status"]), "sold") {
			return false
		}
	}
	return true
}

// minUnitPrice returns the lowest SalePrice across units, optionally
// restricted to in-stock units. The original price text of the winning unit
// is preserved.
func minUnitPrice(units []map[string]any, inStockOnly bool) string {
	best := ""
	bestVal := math.Inf(1)
	for _, u := range units {
		if inStockOnly && !strings.EqualFold(str(u["Status"]), "InStock") {
			continue
		}
		s := str(u["SalePrice"])
		if s == "" {
			continue
		}
		val, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		if val < bestVal {
			bestVal = val
			best = s
		}
	}
	return best
}

// ParseSoldFeed maps the raw sold-items array into SoldItem records,
// tolerating non-array input and missing fields.
func ParseSoldFeed(payload any) []SoldItem {
	raw := asSlice(payload)
	out := make([]SoldItem, 0, len(raw))
	for _, r := range raw {
		m := asMap(r)
		if m == nil {
			continue
		}
		out = append(out, SoldItem{
			ID:       pick(m, "id", "ID"),
			Company:  str(m["Company"]),
			Model:    str(m["Model"]),
			Variant:  pick(m, "Variant", "Storage"),
			SoldDate: pick(m, "SoldDate", "sold_date"),
		})
	}
	return out
}
