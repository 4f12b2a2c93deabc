// Package identity derives the stable entity ID and the display unique code
// for a normalized card. IDs must be identical across runs for the same
// logical card+variant and must never collide for differing
// (name, set, number, variant) tuples.
package identity

import (
	"fmt"
	"strings"

	"github.com/BrevinB/InkwellKeeper/internal/models"
)

// nameSanitizer turns an assembled card name into an ID token: spaces become
// underscores, hyphens and apostrophes are dropped.
var nameSanitizer = strings.NewReplacer(" ", "_", "-", "", "'", "")

// UniqueCode builds the print-slot code "{setCode}-{number:03d}". It returns
// the empty string when the collector number is absent; such cards cannot
// participate in uniqueCode-based matching.
func UniqueCode(setCode string, number *int) string {
	if number == nil || setCode == "" {
		return ""
	}
	return fmt.Sprintf("%s-%03d", setCode, *number)
}

// EntityID builds the canonical entity ID from the set name, collector
// number, assembled name, and variant. Normal variants carry no suffix, so
// a Normal and a Foil print of the same slot share an ID root.
func EntityID(setName string, number *int, name string, variant models.Variant) string {
	num := 0
	if number != nil {
		num = *number
	}
	id := fmt.Sprintf("%s_%d_%s",
		strings.ReplaceAll(setName, " ", "_"),
		num,
		nameSanitizer.Replace(name))
	if variant != models.VariantNormal {
		id += "_" + string(variant)
	}
	return id
}

// Apply fills the identity fields of a canonical card in place and returns it.
func Apply(card *models.CanonicalCard) *models.CanonicalCard {
	card.UniqueCode = UniqueCode(card.SetCode, card.CardNumber)
	card.EntityID = EntityID(card.SetName, card.CardNumber, card.Name, card.Variant)
	return card
}
