package catalog

// Source identifies which upstream feed a catalog item came from.
type Source string

const (
	SourceUsed      Source = "used"
	SourceNew       Source = "new"
	SourceAccessory Source = "accessory"
)

// Category is a shop-defined product grouping.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SocialLinks holds the shop's optional social profiles.
type SocialLinks struct {
	Instagram string `json:"instagram,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Google    string `json:"google,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty"`
}

// StoreInfo is the normalized shop metadata, derived once per load.
type StoreInfo struct {
	Name           string         `json:"name"`
	Slogan         string         `json:"slogan"`
	Description    string         `json:"description"`
	BannerURL      string         `json:"bannerUrl"`
	Categories     []Category     `json:"categories"`
	FinanceEnabled bool           `json:"financeEnabled"`
	Social         SocialLinks    `json:"social"`
	Raw            map[string]any `json:"-"`
}

// PhoneItem is the uniform shape every listing renders from, regardless of
// which feed produced it. IDs are source-prefixed ("used-", "new-", "acc-")
// so the merged used+new+accessory list never collides; detail lookup
// resolves an item purely by scanning for id equality.
type PhoneItem struct {
	ID      string `json:"id"`
	Company string `json:"company"`
	Model   string `json:"model"`
	Storage string `json:"storage"`
	// Price is numeric text; empty means "ask for price".
	Price  string `json:"price"`
	Image  string `json:"image"`
	Source Source `json:"source"`
	IsSold bool   `json:"isSold"`
	SoldOn string `json:"soldOn,omitempty"`
	Raw    any    `json:"raw,omitempty"`
}

// SoldItem is one loosely structured record from the sold feed. It is only
// ever used as a lookup key source, never rendered.
type SoldItem struct {
	ID       string
	Company  string
	Model    string
	Variant  string
	SoldDate string
}
