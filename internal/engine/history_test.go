package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"clipvault/pkg/types"
)

func TestAddClipboardItem_Prepends(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if err := e.AddClipboardItem(ctx, textItem(text)); err != nil {
			t.Fatalf("add %q failed: %v", text, err)
		}
	}

	items := e.ClipboardItems()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Text != "third" || items[2].Text != "first" {
		t.Errorf("history not most-recent-first: %q ... %q", items[0].Text, items[2].Text)
	}
}

func TestAddClipboardItem_SequentialDedup(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	first := textItem("same text")
	second := textItem("same text")
	if err := e.AddClipboardItem(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := e.AddClipboardItem(ctx, second); err != nil {
		t.Fatal(err)
	}

	items := e.ClipboardItems()
	if len(items) != 1 {
		t.Fatalf("sequential duplicates should collapse, got %d items", len(items))
	}
	// The head is replaced by the newer capture, not kept.
	if items[0].ID != second.ID {
		t.Error("dedup should keep the most recent capture")
	}
}

func TestAddClipboardItem_DedupIsHeadOnly(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if err := e.AddClipboardItem(ctx, textItem("repeat")); err != nil {
		t.Fatal(err)
	}
	if err := e.AddClipboardItem(ctx, types.NewImageItem([]byte{0xff, 0xd8}, "")); err != nil {
		t.Fatal(err)
	}
	if err := e.AddClipboardItem(ctx, textItem("repeat")); err != nil {
		t.Fatal(err)
	}

	items := e.ClipboardItems()
	if len(items) != 3 {
		t.Fatalf("identical content separated by another capture must stack, got %d items", len(items))
	}
	if items[0].Text != "repeat" || items[2].Text != "repeat" {
		t.Errorf("unexpected order: %v", items)
	}
}

func TestAddClipboardItem_EvictsOldest(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	settings := e.Settings()
	settings.LimitHistory = true
	settings.MaxHistoryItems = types.MinHistoryItems
	if err := e.SaveSettings(ctx, settings); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < types.MinHistoryItems+5; i++ {
		if err := e.AddClipboardItem(ctx, textItem(fmt.Sprintf("item %d", i))); err != nil {
			t.Fatal(err)
		}
	}

	items := e.ClipboardItems()
	if len(items) != types.MinHistoryItems {
		t.Fatalf("history length = %d, want %d", len(items), types.MinHistoryItems)
	}
	if items[0].Text != fmt.Sprintf("item %d", types.MinHistoryItems+4) {
		t.Errorf("newest item missing, head = %q", items[0].Text)
	}
	if items[len(items)-1].Text != "item 5" {
		t.Errorf("oldest surviving item = %q, want %q", items[len(items)-1].Text, "item 5")
	}
}

func TestAddClipboardItem_OversizedImage(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	settings := e.Settings()
	settings.MaxImageBytes = 4
	if err := e.SaveSettings(ctx, settings); err != nil {
		t.Fatal(err)
	}

	err := e.AddClipboardItem(ctx, types.NewImageItem([]byte{1, 2, 3, 4, 5}, ""))
	if !errors.Is(err, types.ErrClipboardImageTooLarge) {
		t.Errorf("expected ErrClipboardImageTooLarge, got %v", err)
	}
	if len(e.ClipboardItems()) != 0 {
		t.Error("rejected capture must not enter the history")
	}

	// Exactly at the cap is accepted.
	if err := e.AddClipboardItem(ctx, types.NewImageItem([]byte{1, 2, 3, 4}, "")); err != nil {
		t.Errorf("image at the cap should be accepted: %v", err)
	}
}

func TestAddClipboardItem_CaptureFiltering(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Settings)
		item   types.ClipboardItem
	}{
		{"remember history off", func(s *types.Settings) { s.RememberHistory = false }, textItem("ignored")},
		{"incognito", func(s *types.Settings) { s.IncognitoMode = true }, textItem("ignored")},
		{"excluded app", func(s *types.Settings) { s.ExcludedAppIDs = []string{"com.example.vault"} },
			types.NewTextItem(types.TypeText, "ignored", "com.example.Vault")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			ctx := context.Background()

			settings := e.Settings()
			tt.mutate(&settings)
			if err := e.SaveSettings(ctx, settings); err != nil {
				t.Fatal(err)
			}
			gen := e.Generation()
			saves := e.store.saves()

			if err := e.AddClipboardItem(ctx, tt.item); err != nil {
				t.Fatalf("filtered capture must be a no-op success: %v", err)
			}
			if len(e.ClipboardItems()) != 0 {
				t.Error("filtered capture must not enter the history")
			}
			if e.Generation() != gen {
				t.Error("filtered capture must not bump the generation")
			}
			if e.store.saves() != saves {
				t.Error("filtered capture must not trigger persistence")
			}
		})
	}
}

func TestAddClipboardItem_CancelledContext(t *testing.T) {
	e := newTestEngine(t)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.AddClipboardItem(cancelled, textItem("never lands"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(e.ClipboardItems()) != 0 {
		t.Error("cancelled capture must leave state untouched")
	}
	if e.Generation() != 0 {
		t.Error("cancelled capture must not bump the generation")
	}
}

func TestDeleteClipboardItem(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	item := textItem("doomed")
	if err := e.AddClipboardItem(ctx, item); err != nil {
		t.Fatal(err)
	}
	if err := e.AddClipboardItem(ctx, textItem("stays")); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectClipboardItem(ctx, item.ID); err != nil {
		t.Fatal(err)
	}

	if err := e.DeleteClipboardItem(ctx, item.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	items := e.ClipboardItems()
	if len(items) != 1 || items[0].Text != "stays" {
		t.Errorf("unexpected history after delete: %v", items)
	}
	if _, ok := e.SelectedItem(); ok {
		t.Error("deleting the selected item must clear the selection")
	}

	err := e.DeleteClipboardItem(ctx, item.ID)
	if !errors.Is(err, types.ErrClipboardHistoryItemNotFound) {
		t.Errorf("expected ErrClipboardHistoryItemNotFound, got %v", err)
	}
}

func TestClearClipboardHistory_KeepsPins(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	item := textItem("pin me")
	if err := e.AddClipboardItem(ctx, item); err != nil {
		t.Fatal(err)
	}
	if err := e.TogglePin(ctx, item.ID, ""); err != nil {
		t.Fatal(err)
	}
	if err := e.AddClipboardItem(ctx, textItem("loose")); err != nil {
		t.Fatal(err)
	}

	if err := e.ClearClipboardHistory(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if len(e.ClipboardItems()) != 0 {
		t.Error("history should be empty after clear")
	}
	if len(e.PinnedItems()) != 1 {
		t.Error("clearing history must not touch pins")
	}

	// Clearing again is still a success.
	if err := e.ClearClipboardHistory(ctx); err != nil {
		t.Errorf("clearing an empty history should succeed: %v", err)
	}
}

func TestSelectCopyPaste(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	item := textItem("payload")
	if err := e.AddClipboardItem(ctx, item); err != nil {
		t.Fatal(err)
	}

	if err := e.SelectClipboardItem(ctx, "missing"); !errors.Is(err, types.ErrClipboardHistoryItemNotFound) {
		t.Errorf("selecting a missing id: got %v", err)
	}
	if err := e.SelectClipboardItem(ctx, item.ID); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if selected, ok := e.SelectedItem(); !ok || selected.ID != item.ID {
		t.Error("selection not visible in snapshot")
	}

	if err := e.CopyClipboardItem(ctx, item.ID); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if set, ok := e.writer.lastSet(); !ok || set.ID != item.ID {
		t.Error("copy must write the item to the system clipboard")
	}
	if e.writer.pastes != 0 {
		t.Error("copy must not replay the paste keystroke")
	}

	// Empty id pastes the selection.
	if err := e.PasteClipboardItem(ctx, ""); err != nil {
		t.Fatalf("paste failed: %v", err)
	}
	if e.writer.pastes != 1 {
		t.Errorf("paste count = %d, want 1", e.writer.pastes)
	}

	if err := e.PasteClipboardItem(ctx, "missing"); !errors.Is(err, types.ErrClipboardHistoryItemNotFound) {
		t.Errorf("pasting a missing id: got %v", err)
	}
}

func TestPasteClipboardItem_PinnedItem(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	item := textItem("pinned payload")
	if err := e.AddClipboardItem(ctx, item); err != nil {
		t.Fatal(err)
	}
	if err := e.TogglePin(ctx, item.ID, ""); err != nil {
		t.Fatal(err)
	}
	if err := e.ClearClipboardHistory(ctx); err != nil {
		t.Fatal(err)
	}

	// The history entry is gone; the pin snapshot still pastes.
	if err := e.PasteClipboardItem(ctx, item.ID); err != nil {
		t.Fatalf("pasting a pinned item failed: %v", err)
	}
}

func TestConcurrentMutations(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				item := textItem(fmt.Sprintf("worker %d item %d", g, i))
				if err := e.AddClipboardItem(ctx, item); err != nil {
					t.Errorf("add failed: %v", err)
					return
				}
				if i%5 == 0 {
					// Deletes race with adds; not-found is fine, corruption is not.
					_ = e.DeleteClipboardItem(ctx, item.ID)
				}
			}
		}(g)
	}
	wg.Wait()

	items := e.ClipboardItems()
	if len(items) > e.Settings().EffectiveHistoryLimit() {
		t.Errorf("history exceeds effective limit: %d", len(items))
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			t.Errorf("duplicate id in history: %s", item.ID)
		}
		seen[item.ID] = true
	}
}
