// Package reconcile matches new canonical cards against the previous
// catalog snapshot and emits the old-ID to new-ID migration entries.
package reconcile

import "github.com/BrevinB/InkwellKeeper/internal/models"

// strategy is one way of finding a card's predecessor in the old snapshot.
type strategy struct {
	method models.MatchMethod
	lookup func(old *Snapshot, card *models.CanonicalCard) (models.CanonicalCard, bool)
}

// strategies are tried in priority order and the first hit wins: an
// incorrect merge would silently attach unrelated user data to the wrong
// entity, so weaker signals are never consulted past a confident hit.
// Append new strategies at the end to preserve precedence.
var strategies = []strategy{
	{models.MatchUniqueCode, matchUniqueCode},
	{models.MatchNameAndSet, matchNameAndSet},
	{models.MatchNumberAndSet, matchNumberAndSet},
}

// matchUniqueCode survives renaming but not renumbering. Cards without a
// unique code skip it.
func matchUniqueCode(old *Snapshot, card *models.CanonicalCard) (models.CanonicalCard, bool) {
	if card.UniqueCode == "" {
		return models.CanonicalCard{}, false
	}
	match, ok := old.byUniqueCode[card.UniqueCode]
	return match, ok
}

// matchNameAndSet survives renumbering but not renaming.
func matchNameAndSet(old *Snapshot, card *models.CanonicalCard) (models.CanonicalCard, bool) {
	match, ok := old.byNameAndSet[nameSetKey{name: card.Name, set: card.SetName}]
	return match, ok
}

// matchNumberAndSet is the weakest signal, useful when unique-code parsing
// failed on the old side but the raw number still matches.
func matchNumberAndSet(old *Snapshot, card *models.CanonicalCard) (models.CanonicalCard, bool) {
	if card.CardNumber == nil {
		return models.CanonicalCard{}, false
	}
	match, ok := old.byNumberAndSet[numberSetKey{number: *card.CardNumber, set: card.SetName}]
	return match, ok
}

// Cards reconciles the deduplicated new cards against the old snapshot.
// A card with no hit under any strategy is a genuinely new entity and emits
// nothing. Each old entity ID is mapped at most once; the first claim wins.
func Cards(old *Snapshot, cards []models.CanonicalCard) []models.MigrationEntry {
	entries := make([]models.MigrationEntry, 0, len(cards))
	mapped := make(map[string]struct{})

	for i := range cards {
		card := &cards[i]
		for _, strat := range strategies {
			match, ok := strat.lookup(old, card)
			if !ok {
				continue
			}
			if _, taken := mapped[match.EntityID]; taken {
				break
			}
			mapped[match.EntityID] = struct{}{}
			entries = append(entries, models.MigrationEntry{
				OldEntityID:   match.EntityID,
				NewEntityID:   card.EntityID,
				NewUniqueCode: card.UniqueCode,
				MatchMethod:   strat.method,
			})
			break
		}
	}
	return entries
}
