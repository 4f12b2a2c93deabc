// Package dedupe collapses cards that synthesize to the same entity ID.
package dedupe

import (
	"fmt"

	"github.com/BrevinB/InkwellKeeper/internal/models"
)

// Collision records two cards with differing identity tuples that produced
// the same entity ID. That is a data-quality fault: the first card is kept
// and the condition is surfaced in the run summary instead of one entity
// silently overwriting the other.
type Collision struct {
	EntityID string
	Kept     string
	Dropped  string
}

// Result is the outcome of one dedup pass.
type Result struct {
	Cards      []models.CanonicalCard
	Duplicates int
	Collisions []Collision
}

// Cards drops records whose entity ID was already seen. First occurrence
// wins, so the output is stable for a stable input order. True duplicates
// (same identity tuple) are counted; differing tuples are collisions.
func Cards(cards []models.CanonicalCard) Result {
	res := Result{Cards: make([]models.CanonicalCard, 0, len(cards))}
	seen := make(map[string]string, len(cards))

	for _, card := range cards {
		tuple := identityTuple(&card)
		kept, ok := seen[card.EntityID]
		if !ok {
			seen[card.EntityID] = tuple
			res.Cards = append(res.Cards, card)
			continue
		}
		if kept == tuple {
			res.Duplicates++
			continue
		}
		res.Collisions = append(res.Collisions, Collision{
			EntityID: card.EntityID,
			Kept:     kept,
			Dropped:  tuple,
		})
	}
	return res
}

func identityTuple(c *models.CanonicalCard) string {
	num := "absent"
	if c.CardNumber != nil {
		num = fmt.Sprintf("%d", *c.CardNumber)
	}
	return fmt.Sprintf("name=%s set=%s number=%s variant=%s", c.Name, c.SetName, num, c.Variant)
}
