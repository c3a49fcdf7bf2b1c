package engine

import (
	"context"

	"clipvault/pkg/types"
)

// TogglePin pins the identified history item, or unpins it if the id
// already names a pin snapshot. Pin capacity is a hard stop: at
// MaxPinnedItems the pin fails instead of evicting, unlike the rolling
// history's silent eviction.
func (e *Engine) TogglePin(ctx context.Context, id, title string) error {
	const op = "TogglePin"

	e.mu.Lock()
	if e.pinIndexLocked(id) >= 0 {
		e.mu.Unlock()
		return e.UnpinClipboardItem(ctx, id)
	}

	item, ok := e.findLocked(id)
	if !ok {
		e.mu.Unlock()
		return opErr(op, types.ErrClipboardHistoryItemNotFound)
	}
	if len(e.pinned) >= types.MaxPinnedItems {
		e.mu.Unlock()
		return opErr(op, types.ErrPinnedItemsLimitExceeded)
	}
	for _, pin := range e.pinned {
		if types.EquivalentContent(pin.Item, item) {
			e.mu.Unlock()
			return opErr(op, types.ErrPinnedItemDuplicate)
		}
	}

	next := make([]types.PinnedClipboardItem, 0, len(e.pinned)+1)
	next = append(next, e.pinned...)
	next = append(next, types.NewPinnedItem(item, title))

	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}

	e.pinned = next
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.stateChanged(gen)
	return nil
}

// UnpinClipboardItem removes the pin whose snapshot carries the given
// original item id.
func (e *Engine) UnpinClipboardItem(ctx context.Context, id string) error {
	const op = "UnpinClipboardItem"

	e.mu.Lock()
	index := e.pinIndexLocked(id)
	if index < 0 {
		e.mu.Unlock()
		return opErr(op, types.ErrPinnedItemNotFound)
	}

	next := make([]types.PinnedClipboardItem, 0, len(e.pinned)-1)
	next = append(next, e.pinned[:index]...)
	next = append(next, e.pinned[index+1:]...)

	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}

	e.pinned = next
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.stateChanged(gen)
	return nil
}

// UpdatePinTitle sets the custom title on an existing pin.
func (e *Engine) UpdatePinTitle(ctx context.Context, id, title string) error {
	const op = "UpdatePinTitle"

	e.mu.Lock()
	index := e.pinIndexLocked(id)
	if index < 0 {
		e.mu.Unlock()
		return opErr(op, types.ErrPinnedItemNotFound)
	}

	next := make([]types.PinnedClipboardItem, len(e.pinned))
	copy(next, e.pinned)
	next[index].Title = title

	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}

	e.pinned = next
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.stateChanged(gen)
	return nil
}

// pinIndexLocked finds the pin holding the original item id. Caller
// holds e.mu.
func (e *Engine) pinIndexLocked(id string) int {
	for i, pin := range e.pinned {
		if pin.Item.ID == id {
			return i
		}
	}
	return -1
}
