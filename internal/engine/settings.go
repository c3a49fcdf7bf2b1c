package engine

import (
	"context"

	"clipvault/pkg/types"
)

// SaveSettings validates and applies a new settings record. The record
// is persisted before the in-memory commit so a validation or storage
// failure leaves the held settings untouched. A smaller effective
// history limit truncates the already-held history on the same call.
func (e *Engine) SaveSettings(ctx context.Context, settings types.Settings) error {
	const op = "SaveSettings"
	if err := settings.Validate(); err != nil {
		return opErr(op, err)
	}
	if settings.EncryptHistory && e.crypter == nil {
		return opErr(op, types.ErrEncryptionKeyUnavailable)
	}

	e.mu.Lock()
	if err := e.setRepo.SaveSettings(ctx, settings); err != nil {
		e.mu.Unlock()
		return opErr(op, err)
	}

	history := e.history
	if limit := settings.EffectiveHistoryLimit(); len(history) > limit {
		history = make([]types.ClipboardItem, limit)
		copy(history, e.history[:limit])
	}

	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}

	e.settings = settings
	e.history = history
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	if e.isRunning() && e.monitor != nil {
		e.monitor.UpdateCaptureRichText(settings.CaptureRichText)
	}

	e.stateChanged(gen)
	return nil
}

func (e *Engine) isRunning() bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.running
}
