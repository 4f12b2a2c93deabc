package models

import "time"

// CatalogEvent is the envelope published to Kafka for downstream indexers.
type CatalogEvent struct {
	EventType string      `json:"eventType"`
	EventID   string      `json:"eventId"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

// CardEvent is a catalog event carrying a canonical card.
type CardEvent struct {
	CatalogEvent
	Card CanonicalCard `json:"card"`
}

// MigrationEvent is a catalog event carrying one migration entry.
type MigrationEvent struct {
	CatalogEvent
	Mapping MigrationEntry `json:"mapping"`
}
