package types

import "errors"

// Engine error codes. Three bands: domain-invariant violations,
// application/runtime failures and infrastructure failures. Callers
// match with errors.Is; the engine wraps these with operation context.
var (
	// Domain invariants.
	ErrClipboardHistoryItemNotFound = errors.New("clipboard history item not found")
	ErrClipboardImageTooLarge       = errors.New("clipboard image exceeds maximum persisted size")
	ErrPinnedItemNotFound           = errors.New("pinned item not found")
	ErrPinnedItemsLimitExceeded     = errors.New("pinned items limit exceeded")
	ErrPinnedItemDuplicate          = errors.New("item is already pinned")
	ErrSnippetNotFound              = errors.New("snippet not found")
	ErrSettingsRangeInvalid         = errors.New("settings value out of range")
	ErrSettingsShortcutInvalid      = errors.New("settings shortcut is malformed")

	// Application workflow.
	ErrStateInitializationFailed = errors.New("engine state initialization failed")
	ErrPartialStateLoaded        = errors.New("engine started with partially loaded state")
	ErrMonitorUnavailable        = errors.New("clipboard monitor unavailable on this platform")
	ErrEncryptionKeyUnavailable  = errors.New("history encryption requires a configured passphrase")

	// Infrastructure.
	ErrDataFormatInvalid = errors.New("persisted data format invalid")
)
