package models

import "strings"

// Variant classifies a print of a card. Exactly one variant per canonical card.
type Variant string

const (
	VariantNormal     Variant = "Normal"
	VariantFoil       Variant = "Foil"
	VariantEnchanted  Variant = "Enchanted"
	VariantEpic       Variant = "Epic"
	VariantIconic     Variant = "Iconic"
	VariantPromo      Variant = "Promo"
	VariantBorderless Variant = "Borderless"
)

// Slug returns the lowercase form used in image names and local placeholders.
func (v Variant) Slug() string {
	return strings.ToLower(string(v))
}

// LocalImagePrefix marks a synthesized image placeholder instead of a real URL.
// Downstream image tooling uses it to build the "cards needing local images" list.
const LocalImagePrefix = "local:"

// RawSet is the set reference nested inside a raw upstream card.
type RawSet struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// RawImageGroup holds one size-graded group of image URLs.
type RawImageGroup struct {
	Large  string `json:"large,omitempty"`
	Normal string `json:"normal,omitempty"`
	Small  string `json:"small,omitempty"`
}

// RawImageSet is the upstream image_uris object: a digital group plus
// optional flat URLs.
type RawImageSet struct {
	Digital RawImageGroup `json:"digital"`
	Large   string        `json:"large,omitempty"`
	Normal  string        `json:"normal,omitempty"`
	Small   string        `json:"small,omitempty"`
}

// RawCard represents one card record as returned by the upstream catalog API.
// Only the declared fields are consumed; the record is transient and owned by
// the normalization call that consumes it.
type RawCard struct {
	Name            string      `json:"name"`
	Version         string      `json:"version,omitempty"`
	Set             RawSet      `json:"set"`
	CollectorNumber string      `json:"collector_number"`
	Rarity          string      `json:"rarity"`
	Cost            *int        `json:"cost,omitempty"`
	Strength        *int        `json:"strength,omitempty"`
	Willpower       *int        `json:"willpower,omitempty"`
	Lore            *int        `json:"lore,omitempty"`
	Ink             string      `json:"ink,omitempty"`
	Inkwell         bool        `json:"inkwell"`
	Type            []string    `json:"type,omitempty"`
	Classifications []string    `json:"classifications,omitempty"`
	Illustrators    []string    `json:"illustrators,omitempty"`
	Text            string      `json:"text,omitempty"`
	FlavorText      string      `json:"flavor_text,omitempty"`
	ImageURIs       RawImageSet `json:"image_uris"`
}

// CanonicalCard is the normalized card representation written to the per-set
// catalog files. Field names in JSON match the on-disk catalog format.
type CanonicalCard struct {
	EntityID   string  `json:"id"`
	Name       string  `json:"name"`
	Cost       *int    `json:"cost"`
	Type       string  `json:"type"`
	Rarity     string  `json:"rarity"`
	SetName    string  `json:"setName"`
	SetCode    string  `json:"setCode"`
	CardText   string  `json:"cardText"`
	ImageURL   string  `json:"imageUrl"`
	Variant    Variant `json:"variant"`
	CardNumber *int    `json:"cardNumber"`
	UniqueCode string  `json:"uniqueId,omitempty"`
	Inkwell    bool    `json:"inkwell"`
	Strength   *int    `json:"strength"`
	Willpower  *int    `json:"willpower"`
	Lore       *int    `json:"lore"`
	Franchise  string  `json:"franchise"`
	InkColor   string  `json:"inkColor"`
}

// NeedsLocalImage reports whether the card has no real upstream image and
// must be served from the locally bundled image assets.
func (c *CanonicalCard) NeedsLocalImage() bool {
	return c.ImageURL == "" || strings.HasPrefix(c.ImageURL, LocalImagePrefix)
}

// SetCatalog is one per-set catalog file.
type SetCatalog struct {
	SetName   string          `json:"setName"`
	SetCode   string          `json:"setCode"`
	CardCount int             `json:"cardCount"`
	Cards     []CanonicalCard `json:"cards"`
}

// MatchMethod names the reconciliation strategy that established a mapping.
type MatchMethod string

const (
	MatchUniqueCode   MatchMethod = "uniqueCode"
	MatchNameAndSet   MatchMethod = "nameAndSet"
	MatchNumberAndSet MatchMethod = "numberAndSet"
)

// MigrationEntry maps one previous-snapshot entity ID to its successor.
type MigrationEntry struct {
	OldEntityID   string      `json:"oldId"`
	NewEntityID   string      `json:"newId"`
	NewUniqueCode string      `json:"newUniqueId,omitempty"`
	MatchMethod   MatchMethod `json:"matchMethod"`
}

// MigrationMap is the aggregate migration artifact written alongside the
// catalogs. Mappings is a partial function: each old ID appears at most once.
type MigrationMap struct {
	Version       string                    `json:"version"`
	RunDate       string                    `json:"runDate"`
	TotalMappings int                       `json:"totalMappings"`
	Mappings      map[string]MigrationEntry `json:"mappings"`
}
