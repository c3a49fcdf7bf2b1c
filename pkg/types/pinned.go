package types

import "time"

// PinnedClipboardItem wraps a snapshot of a history item taken at pin
// time. Later history mutations (including eviction of the original
// entry) do not affect the pin. Pins live in their own store with
// their own hard capacity.
type PinnedClipboardItem struct {
	Item     ClipboardItem `json:"item"`
	PinnedAt time.Time     `json:"pinned_at"`
	Title    string        `json:"title,omitempty"`
}

// NewPinnedItem snapshots item into a pin.
func NewPinnedItem(item ClipboardItem, title string) PinnedClipboardItem {
	return PinnedClipboardItem{
		Item:     item,
		PinnedAt: time.Now(),
		Title:    title,
	}
}
