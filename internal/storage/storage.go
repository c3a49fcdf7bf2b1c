// Package storage defines the persistence repository contracts, one
// repository per aggregate. Each aggregate persists as a single
// serialized record; a save either fully succeeds or leaves the prior
// durable state intact.
package storage

import (
	"context"
	"errors"

	"clipvault/pkg/types"
)

// ErrNotFound is returned by Load methods when the aggregate has never
// been saved. Callers treat it as "start empty", not as a failure.
var ErrNotFound = errors.New("storage: record not found")

// HistoryRepository stores the rolling history as an opaque blob. The
// engine is the sole decision-maker on the encrypted flag; the
// repository just stores whatever bytes it is given and hands the flag
// back on load so the engine knows whether to decrypt.
type HistoryRepository interface {
	SaveHistory(ctx context.Context, data []byte, encrypted bool) error
	LoadHistory(ctx context.Context) (data []byte, encrypted bool, err error)
	ClearHistory(ctx context.Context) error
}

// PinnedRepository stores the pinned list.
type PinnedRepository interface {
	SavePinned(ctx context.Context, items []types.PinnedClipboardItem) error
	LoadPinned(ctx context.Context) ([]types.PinnedClipboardItem, error)
	ClearPinned(ctx context.Context) error
}

// SnippetRepository stores the snippet list.
type SnippetRepository interface {
	SaveSnippets(ctx context.Context, snippets []types.Snippet) error
	LoadSnippets(ctx context.Context) ([]types.Snippet, error)
	ClearSnippets(ctx context.Context) error
}

// SettingsRepository stores the settings record.
type SettingsRepository interface {
	SaveSettings(ctx context.Context, settings types.Settings) error
	LoadSettings(ctx context.Context) (types.Settings, error)
	ClearSettings(ctx context.Context) error
}

// Repositories bundles all four aggregates. Implementations manage
// their lifecycle as one unit.
type Repositories interface {
	HistoryRepository
	PinnedRepository
	SnippetRepository
	SettingsRepository
	Close() error
}

// Config holds storage configuration.
type Config struct {
	DBPath string // Path to the SQLite database file
}
