package engine

import (
	"context"

	"clipvault/pkg/types"
)

// AddClipboardItem applies one capture. Retention rules, in order:
// capture filtering (remember-history off, incognito, excluded source
// app) makes the call a no-op success; an oversized image is rejected
// without mutating state; a capture content-equivalent to the current
// head replaces the head instead of stacking a duplicate; after
// insertion the history is truncated to the effective limit, oldest
// first. Dedup is head-only on purpose: copying the same text twice in
// a row collapses, identical content separated by other captures does
// not.
func (e *Engine) AddClipboardItem(ctx context.Context, item types.ClipboardItem) error {
	const op = "AddClipboardItem"
	if err := item.Validate(); err != nil {
		return opErr(op, err)
	}

	e.mu.Lock()
	settings := e.settings
	if !settings.RememberHistory || settings.IncognitoMode || settings.IsExcluded(item.SourceApp) {
		e.mu.Unlock()
		return nil
	}
	if item.Type == types.TypeImage && int64(len(item.Content)) > settings.MaxImageBytes {
		e.mu.Unlock()
		return opErr(op, types.ErrClipboardImageTooLarge)
	}

	// Build the replacement list off-state so a cancellation commits
	// nothing.
	var next []types.ClipboardItem
	if len(e.history) > 0 && types.EquivalentContent(e.history[0], item) {
		next = make([]types.ClipboardItem, len(e.history))
		copy(next, e.history)
		next[0] = item
	} else {
		next = make([]types.ClipboardItem, 0, len(e.history)+1)
		next = append(next, item)
		next = append(next, e.history...)
		if limit := settings.EffectiveHistoryLimit(); len(next) > limit {
			next = next[:limit]
		}
	}

	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}

	e.history = next
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.stateChanged(gen)
	return nil
}

// DeleteClipboardItem removes one history entry by id.
func (e *Engine) DeleteClipboardItem(ctx context.Context, id string) error {
	const op = "DeleteClipboardItem"

	e.mu.Lock()
	index := -1
	for i, item := range e.history {
		if item.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		e.mu.Unlock()
		return opErr(op, types.ErrClipboardHistoryItemNotFound)
	}

	next := make([]types.ClipboardItem, 0, len(e.history)-1)
	next = append(next, e.history[:index]...)
	next = append(next, e.history[index+1:]...)

	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}

	e.history = next
	if e.selectedID == id {
		e.selectedID = ""
	}
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.stateChanged(gen)
	return nil
}

// ClearClipboardHistory wipes the rolling history. Pinned items are
// untouched. Clearing an already-empty history succeeds.
func (e *Engine) ClearClipboardHistory(ctx context.Context) error {
	e.mu.Lock()
	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.history = nil
	e.selectedID = ""
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.stateChanged(gen)
	return nil
}

// SelectClipboardItem marks the item (history or pinned) the next
// paste acts on.
func (e *Engine) SelectClipboardItem(ctx context.Context, id string) error {
	const op = "SelectClipboardItem"

	e.mu.Lock()
	if _, ok := e.findLocked(id); !ok {
		e.mu.Unlock()
		return opErr(op, types.ErrClipboardHistoryItemNotFound)
	}
	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.selectedID = id
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.stateChanged(gen)
	return nil
}

// CopyClipboardItem puts the item's content back on the system
// clipboard.
func (e *Engine) CopyClipboardItem(ctx context.Context, id string) error {
	const op = "CopyClipboardItem"

	e.mu.Lock()
	item, ok := e.findLocked(id)
	e.mu.Unlock()
	if !ok {
		return opErr(op, types.ErrClipboardHistoryItemNotFound)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.writer.SetClipboardContent(item); err != nil {
		return opErr(op, err)
	}
	return nil
}

// PasteClipboardItem writes the item to the clipboard and replays the
// paste keystroke into the previously focused window. An empty id
// pastes the current selection.
func (e *Engine) PasteClipboardItem(ctx context.Context, id string) error {
	const op = "PasteClipboardItem"

	e.mu.Lock()
	if id == "" {
		id = e.selectedID
	}
	item, ok := e.findLocked(id)
	e.mu.Unlock()
	if !ok {
		return opErr(op, types.ErrClipboardHistoryItemNotFound)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.writer.SetClipboardContent(item); err != nil {
		return opErr(op, err)
	}
	if err := e.writer.PasteToPreviousWindow(); err != nil {
		return opErr(op, err)
	}
	return nil
}
