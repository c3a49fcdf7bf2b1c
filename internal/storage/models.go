package storage

import "time"

// Aggregate record names. One row per aggregate.
const (
	RecordHistory  = "history"
	RecordPinned   = "pinned"
	RecordSnippets = "snippets"
	RecordSettings = "settings"
)

// AggregateRecord is the gorm model backing every repository: one
// serialized record per aggregate, keyed by name. Encrypted is only
// meaningful for the history record and is round-tripped untouched.
type AggregateRecord struct {
	Name      string `gorm:"primaryKey;size:32"`
	Data      []byte `gorm:"type:blob;not null"`
	Encrypted bool   `gorm:"not null;default:false"`
	UpdatedAt time.Time
}
