package reconcile

import "github.com/BrevinB/InkwellKeeper/internal/models"

type nameSetKey struct {
	name string
	set  string
}

type numberSetKey struct {
	number int
	set    string
}

// Snapshot is a pre-indexed view of the previous catalog. Three separate
// maps, one per match strategy, keep strategy precedence auditable instead
// of sharing one overloaded key space.
type Snapshot struct {
	byUniqueCode   map[string]models.CanonicalCard
	byNameAndSet   map[nameSetKey]models.CanonicalCard
	byNumberAndSet map[numberSetKey]models.CanonicalCard
}

// NewSnapshot returns an empty snapshot, the first-run case: every lookup
// misses and the migration map degenerates to empty.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		byUniqueCode:   make(map[string]models.CanonicalCard),
		byNameAndSet:   make(map[nameSetKey]models.CanonicalCard),
		byNumberAndSet: make(map[numberSetKey]models.CanonicalCard),
	}
}

// BuildSnapshot indexes the given old cards. The first card loaded for a key
// wins, keeping the index deterministic for a sorted load order.
func BuildSnapshot(cards []models.CanonicalCard) *Snapshot {
	s := NewSnapshot()
	for _, card := range cards {
		s.Add(card)
	}
	return s
}

// Add indexes a single old card under every key it can serve.
func (s *Snapshot) Add(card models.CanonicalCard) {
	if card.UniqueCode != "" {
		if _, ok := s.byUniqueCode[card.UniqueCode]; !ok {
			s.byUniqueCode[card.UniqueCode] = card
		}
	}
	if card.Name != "" && card.SetName != "" {
		key := nameSetKey{name: card.Name, set: card.SetName}
		if _, ok := s.byNameAndSet[key]; !ok {
			s.byNameAndSet[key] = card
		}
	}
	if card.CardNumber != nil && card.SetName != "" {
		key := numberSetKey{number: *card.CardNumber, set: card.SetName}
		if _, ok := s.byNumberAndSet[key]; !ok {
			s.byNumberAndSet[key] = card
		}
	}
}

// Empty reports whether the snapshot holds no entries at all.
func (s *Snapshot) Empty() bool {
	return len(s.byUniqueCode) == 0 && len(s.byNameAndSet) == 0 && len(s.byNumberAndSet) == 0
}
