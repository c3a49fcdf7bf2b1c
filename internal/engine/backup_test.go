package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"clipvault/pkg/types"
)

func TestBackup_RoundTrip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	pinned := textItem("pinned entry")
	if err := e.AddClipboardItem(ctx, pinned); err != nil {
		t.Fatal(err)
	}
	if err := e.TogglePin(ctx, pinned.ID, "keep"); err != nil {
		t.Fatal(err)
	}
	if err := e.AddClipboardItem(ctx, textItem("loose entry")); err != nil {
		t.Fatal(err)
	}

	data, err := e.ExportBackup(ctx)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if err := e.ClearClipboardHistory(ctx); err != nil {
		t.Fatal(err)
	}
	if err := e.UnpinClipboardItem(ctx, pinned.ID); err != nil {
		t.Fatal(err)
	}

	if err := e.ImportBackup(ctx, data); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	items := e.ClipboardItems()
	if len(items) != 2 || items[0].Text != "loose entry" {
		t.Errorf("history not restored: %v", items)
	}
	pins := e.PinnedItems()
	if len(pins) != 1 || pins[0].Title != "keep" {
		t.Errorf("pins not restored: %v", pins)
	}

	// Import persists synchronously.
	stored, _, err := e.store.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("imported history not durable: %v", err)
	}
	var decoded []types.ClipboardItem
	if err := json.Unmarshal(stored, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 {
		t.Errorf("durable history has %d items, want 2", len(decoded))
	}
}

func TestImportBackup_Garbage(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if err := e.AddClipboardItem(ctx, textItem("precious")); err != nil {
		t.Fatal(err)
	}

	err := e.ImportBackup(ctx, []byte("{not json"))
	if !errors.Is(err, types.ErrDataFormatInvalid) {
		t.Fatalf("expected ErrDataFormatInvalid, got %v", err)
	}
	if len(e.ClipboardItems()) != 1 {
		t.Error("failed import must leave existing state untouched")
	}
}

func TestImportBackup_WrongVersion(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if err := e.AddClipboardItem(ctx, textItem("precious")); err != nil {
		t.Fatal(err)
	}

	payload := types.BackupPayload{Version: types.CurrentBackupVersion + 1}
	data, _ := json.Marshal(payload)
	err := e.ImportBackup(ctx, data)
	if !errors.Is(err, types.ErrDataFormatInvalid) {
		t.Fatalf("expected ErrDataFormatInvalid, got %v", err)
	}
	if len(e.ClipboardItems()) != 1 {
		t.Error("failed import must leave existing state untouched")
	}
}

func TestImportBackup_InvalidItemRejectsWholePayload(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if err := e.AddClipboardItem(ctx, textItem("precious")); err != nil {
		t.Fatal(err)
	}

	payload := types.BackupPayload{
		Version: types.CurrentBackupVersion,
		History: []types.ClipboardItem{
			textItem("fine"),
			{ID: "", Type: types.TypeText, Text: "missing id"},
		},
	}
	data, _ := json.Marshal(payload)
	if err := e.ImportBackup(ctx, data); err == nil {
		t.Fatal("expected validation failure")
	}
	items := e.ClipboardItems()
	if len(items) != 1 || items[0].Text != "precious" {
		t.Error("partially valid payload must not be applied at all")
	}
}

func TestImportBackup_ClampsToLimits(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	settings := e.Settings()
	settings.LimitHistory = true
	settings.MaxHistoryItems = types.MinHistoryItems
	if err := e.SaveSettings(ctx, settings); err != nil {
		t.Fatal(err)
	}

	payload := types.BackupPayload{Version: types.CurrentBackupVersion}
	for i := 0; i < types.MinHistoryItems*2; i++ {
		payload.History = append(payload.History, textItem("h"))
	}
	data, _ := json.Marshal(payload)
	if err := e.ImportBackup(ctx, data); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if got := len(e.ClipboardItems()); got != types.MinHistoryItems {
		t.Errorf("imported history length = %d, want %d", got, types.MinHistoryItems)
	}
}
