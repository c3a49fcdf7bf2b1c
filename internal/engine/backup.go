package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clipvault/internal/logger"
	"clipvault/pkg/types"
)

// ExportBackup serializes the current history and pinned lists into a
// versioned payload. The blob round-trips through ImportBackup.
func (e *Engine) ExportBackup(ctx context.Context) ([]byte, error) {
	const op = "ExportBackup"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	payload := types.BackupPayload{
		Version:    types.CurrentBackupVersion,
		ExportedAt: time.Now(),
		History:    make([]types.ClipboardItem, len(e.history)),
		Pinned:     make([]types.PinnedClipboardItem, len(e.pinned)),
	}
	copy(payload.History, e.history)
	copy(payload.Pinned, e.pinned)
	e.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, opErr(op, fmt.Errorf("backup encode: %w", err))
	}
	return data, nil
}

// ImportBackup parses and validates the payload, then atomically
// replaces both in-memory lists and their persisted stores. A payload
// that fails parsing, version check or item validation is rejected
// whole; existing state is untouched.
func (e *Engine) ImportBackup(ctx context.Context, data []byte) error {
	const op = "ImportBackup"

	var payload types.BackupPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return opErr(op, types.ErrDataFormatInvalid)
	}
	if payload.Version != types.CurrentBackupVersion {
		return opErr(op, fmt.Errorf("unsupported backup version %d: %w", payload.Version, types.ErrDataFormatInvalid))
	}
	for _, item := range payload.History {
		if err := item.Validate(); err != nil {
			return opErr(op, err)
		}
	}
	for _, pin := range payload.Pinned {
		if err := pin.Item.Validate(); err != nil {
			return opErr(op, err)
		}
	}

	e.mu.Lock()
	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}
	history := payload.History
	if limit := e.settings.EffectiveHistoryLimit(); len(history) > limit {
		history = history[:limit]
	}
	pinned := payload.Pinned
	if len(pinned) > types.MaxPinnedItems {
		pinned = pinned[:types.MaxPinnedItems]
	}
	e.history = history
	e.pinned = pinned
	e.selectedID = ""
	e.generation++
	gen := e.generation
	snap := e.snapshotLocked()
	e.mu.Unlock()

	// Persist synchronously so the imported state is durable before
	// the call returns; a storage failure here leaves memory
	// consistent and is healed by the next flush.
	if err := e.persistSnapshot(context.WithoutCancel(ctx), snap); err != nil {
		e.log.Warn("backup import persisted lazily", logger.Err(err))
	}

	e.stateChanged(gen)
	return nil
}
