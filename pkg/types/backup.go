package types

import "time"

// CurrentBackupVersion is the only payload version this build emits
// and accepts. Imports of any other version are rejected whole.
const CurrentBackupVersion = 1

// BackupPayload bundles the full history and pinned lists for
// export/import as one versioned unit.
type BackupPayload struct {
	Version    int                   `json:"version"`
	ExportedAt time.Time             `json:"exported_at"`
	History    []ClipboardItem       `json:"history"`
	Pinned     []PinnedClipboardItem `json:"pinned"`
}
