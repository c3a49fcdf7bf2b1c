package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clipvault/internal/logger"
	"clipvault/pkg/types"
)

const finalFlushTimeout = 5 * time.Second

// snapshot is the immutable unit handed from the mutation path to the
// flush worker.
type snapshot struct {
	generation uint64
	history    []types.ClipboardItem
	pinned     []types.PinnedClipboardItem
	snippets   []types.Snippet
	settings   types.Settings
}

// snapshotLocked copies the current state. Caller holds e.mu.
func (e *Engine) snapshotLocked() snapshot {
	snap := snapshot{
		generation: e.generation,
		history:    make([]types.ClipboardItem, len(e.history)),
		pinned:     make([]types.PinnedClipboardItem, len(e.pinned)),
		snippets:   make([]types.Snippet, len(e.snippets)),
		settings:   e.settings,
	}
	copy(snap.history, e.history)
	copy(snap.pinned, e.pinned)
	copy(snap.snippets, e.snippets)
	return snap
}

// StartRuntime starts the flush worker and subscribes to the clipboard
// monitor with the current rich-text setting. Calling it on a running
// engine is a no-op; a platform without a monitor starts everything
// else and reports ErrMonitorUnavailable so the caller can degrade.
func (e *Engine) StartRuntime(ctx context.Context) error {
	const op = "StartRuntime"

	e.mu.Lock()
	initialized := e.initialized
	captureRichText := e.settings.CaptureRichText
	e.mu.Unlock()
	if !initialized {
		return opErr(op, types.ErrStateInitializationFailed)
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.running {
		return nil
	}

	flushCtx, cancel := context.WithCancel(context.Background())
	e.flushCancel = cancel
	e.flushDone = make(chan struct{})
	go e.flushLoop(flushCtx, e.flushDone)

	e.running = true
	e.monitorActive = false

	if e.monitor == nil {
		return opErr(op, types.ErrMonitorUnavailable)
	}
	if err := e.monitor.Start(e.handleCapture, captureRichText); err != nil {
		if errors.Is(err, types.ErrMonitorUnavailable) {
			e.log.Warn("clipboard monitor unavailable, capture disabled", logger.Err(err))
			return opErr(op, err)
		}
		cancel()
		<-e.flushDone
		e.running = false
		return opErr(op, fmt.Errorf("monitor start: %w", err))
	}
	e.monitorActive = true
	return nil
}

// StopRuntime stops the monitor before tearing down the flush worker,
// then drains one final flush so the durable state matches memory.
func (e *Engine) StopRuntime(ctx context.Context) error {
	const op = "StopRuntime"

	e.runMu.Lock()
	defer e.runMu.Unlock()
	if !e.running {
		return nil
	}

	if e.monitorActive {
		if err := e.monitor.Stop(); err != nil {
			return opErr(op, fmt.Errorf("monitor stop: %w", err))
		}
		e.monitorActive = false
	}

	e.flushCancel()
	select {
	case <-e.flushDone:
	case <-ctx.Done():
		return ctx.Err()
	}
	e.running = false
	return nil
}

// handleCapture is the monitor callback. Flush failures never fail the
// capture; rejection errors flow back so the monitor knows the capture
// was not accepted.
func (e *Engine) handleCapture(item types.ClipboardItem) error {
	return e.AddClipboardItem(context.Background(), item)
}

// markDirty coalesces: a burst of mutations leaves at most one pending
// token, and the worker always flushes the latest snapshot.
func (e *Engine) markDirty() {
	select {
	case e.dirty <- struct{}{}:
	default:
	}
}

// flushLoop drains the dirty channel until cancelled, then performs a
// final best-effort flush.
func (e *Engine) flushLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			select {
			case <-e.dirty:
				final, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
				if err := e.flush(final); err != nil {
					e.log.Error("final flush failed", logger.Err(err))
				}
				cancel()
			default:
			}
			return
		case <-e.dirty:
			if err := e.flush(ctx); err != nil {
				// Retried on the next state change.
				e.log.Warn("persistence flush failed", logger.Err(err))
			}
		}
	}
}

func (e *Engine) flush(ctx context.Context) error {
	e.mu.Lock()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	return e.persistSnapshot(ctx, snap)
}

// persistSnapshot writes one snapshot to all four repositories.
// flushMu serializes writers; a snapshot older than the last flushed
// generation is dropped so racing writers cannot regress the durable
// state.
func (e *Engine) persistSnapshot(ctx context.Context, snap snapshot) error {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()
	if snap.generation <= e.lastFlushedGen && snap.generation != 0 {
		return nil
	}

	data, err := json.Marshal(snap.history)
	if err != nil {
		return fmt.Errorf("history encode: %w", err)
	}
	// Never downgrade to cleartext: with encryption on and no key the
	// flush fails and the durable state keeps its previous contents.
	encrypted := false
	if snap.settings.EncryptHistory {
		if e.crypter == nil {
			return fmt.Errorf("history flush: %w", types.ErrEncryptionKeyUnavailable)
		}
		if data, err = e.crypter.Encrypt(data); err != nil {
			return fmt.Errorf("history encrypt: %w", err)
		}
		encrypted = true
	}
	if err := e.histRepo.SaveHistory(ctx, data, encrypted); err != nil {
		return fmt.Errorf("history save: %w", err)
	}
	if err := e.pinRepo.SavePinned(ctx, snap.pinned); err != nil {
		return fmt.Errorf("pinned save: %w", err)
	}
	if err := e.snipRepo.SaveSnippets(ctx, snap.snippets); err != nil {
		return fmt.Errorf("snippets save: %w", err)
	}
	if err := e.setRepo.SaveSettings(ctx, snap.settings); err != nil {
		return fmt.Errorf("settings save: %w", err)
	}

	e.lastFlushedGen = snap.generation
	return nil
}
