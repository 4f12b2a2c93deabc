// Package normalize converts raw upstream card records into canonical cards.
package normalize

import (
	"errors"
	"strconv"
	"strings"

	"github.com/BrevinB/InkwellKeeper/internal/config"
	"github.com/BrevinB/InkwellKeeper/internal/identity"
	"github.com/BrevinB/InkwellKeeper/internal/models"
)

// Rejection reasons for records the pipeline skips and counts.
var (
	ErrMissingName = errors.New("card has no name")
	ErrMissingSet  = errors.New("card has no set reference")
)

// Normalizer maps one raw record to one canonical record using the
// configured translation tables.
type Normalizer struct {
	maps config.CatalogMaps
}

func New(maps config.CatalogMaps) *Normalizer {
	return &Normalizer{maps: maps}
}

// Card normalizes a single raw record. A record without a usable name or set
// reference is rejected with a sentinel error; the caller skips and counts it.
func (n *Normalizer) Card(raw *models.RawCard) (*models.CanonicalCard, error) {
	if strings.TrimSpace(raw.Name) == "" {
		return nil, ErrMissingName
	}
	if strings.TrimSpace(raw.Set.Name) == "" {
		return nil, ErrMissingSet
	}

	setName := n.maps.SetName(raw.Set.Name)
	setCode := n.maps.SetCode(setName, raw.Set.Code)
	variant := n.classifyVariant(raw.Rarity, setName)

	// The assembled name is the identity- and display-name from here on;
	// the bare name is never used alone once a version exists.
	name := raw.Name
	if raw.Version != "" {
		name = raw.Name + " - " + raw.Version
	}

	number := parseCollectorNumber(raw.CollectorNumber)

	card := &models.CanonicalCard{
		Name:       name,
		Cost:       raw.Cost,
		Type:       strings.Join(raw.Type, " - "),
		Rarity:     normalizeRarity(raw.Rarity),
		SetName:    setName,
		SetCode:    setCode,
		CardText:   assembleText(raw.Text, raw.FlavorText),
		Variant:    variant,
		CardNumber: number,
		Inkwell:    raw.Inkwell,
		Strength:   raw.Strength,
		Willpower:  raw.Willpower,
		Lore:       raw.Lore,
		InkColor:   raw.Ink,
	}
	card.ImageURL = resolveImage(raw.ImageURIs, identity.UniqueCode(setCode, number), variant)

	return card, nil
}

// classifyVariant walks the ordered keyword rules. Rarity keywords are
// checked before set-name keywords so a promo-set Enchanted card still
// classifies as Enchanted.
func (n *Normalizer) classifyVariant(rarity, setName string) models.Variant {
	rarityLower := strings.ToLower(rarity)
	setLower := strings.ToLower(setName)
	for _, rule := range n.maps.VariantRules {
		if strings.Contains(rarityLower, rule.Keyword) {
			return rule.Variant
		}
		if rule.MatchesSet && strings.Contains(setLower, rule.Keyword) {
			return rule.Variant
		}
	}
	return models.VariantNormal
}

// parseCollectorNumber parses the textual collector number. Alphanumeric
// codes degrade to absent, never to zero: zero stays reserved for an
// explicit "0" from upstream.
func parseCollectorNumber(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	num, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &num
}

// assembleText joins body and flavor text with a blank line; either alone is
// used as-is.
func assembleText(body, flavor string) string {
	if flavor == "" {
		return body
	}
	if body == "" {
		return flavor
	}
	return body + "\n\n" + flavor
}

// resolveImage picks the first present URL in the cascade: digital large,
// normal, small; then the flat large, normal, small. When nothing resolves
// and the card has a unique code, a "local:" placeholder is synthesized so
// downstream tooling can list cards needing bundled images.
func resolveImage(uris models.RawImageSet, uniqueCode string, variant models.Variant) string {
	for _, url := range []string{
		uris.Digital.Large, uris.Digital.Normal, uris.Digital.Small,
		uris.Large, uris.Normal, uris.Small,
	} {
		if url != "" {
			return url
		}
	}
	if uniqueCode == "" {
		return ""
	}
	suffix := ""
	if variant != models.VariantNormal {
		suffix = "-" + variant.Slug()
	}
	return models.LocalImagePrefix + uniqueCode + suffix
}

// normalizeRarity converts upstream rarity spellings like "Super_rare" to
// display form ("Super Rare").
func normalizeRarity(rarity string) string {
	rarity = strings.ReplaceAll(rarity, "_", " ")
	words := strings.Fields(rarity)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
