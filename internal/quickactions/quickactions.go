// Package quickactions implements the higher-level one-item operations
// the UI exposes (save to file, base64, URL encode/decode, edit and
// resubmit). They compose the engine's primitives and never mutate
// history in place.
package quickactions

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"clipvault/internal/clipboard"
	"clipvault/internal/engine"
	"clipvault/pkg/types"
)

// Actions operates on items resolved through the engine.
type Actions struct {
	engine *engine.Engine
}

// New wires the façade to its engine.
func New(eng *engine.Engine) *Actions {
	return &Actions{engine: eng}
}

// resolve finds the item in the engine's exposed views, history first.
func (a *Actions) resolve(id string) (types.ClipboardItem, error) {
	for _, item := range a.engine.ClipboardItems() {
		if item.ID == id {
			return item, nil
		}
	}
	for _, pin := range a.engine.PinnedItems() {
		if pin.Item.ID == id {
			return pin.Item, nil
		}
	}
	return types.ClipboardItem{}, types.ErrClipboardHistoryItemNotFound
}

// SaveToFile writes the item's payload under dir and returns the path.
// Extension follows the payload: .png for images, .txt otherwise.
func (a *Actions) SaveToFile(ctx context.Context, id, dir string) (string, error) {
	item, err := a.resolve(id)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := item.CapturedAt.Format("20060102-150405")
	var path string
	var data []byte
	if item.Type == types.TypeImage {
		path = filepath.Join(dir, fmt.Sprintf("clip-%s.png", stamp))
		data = item.Content
	} else {
		path = filepath.Join(dir, fmt.Sprintf("clip-%s.txt", stamp))
		data = []byte(item.PlainText())
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write clip file: %w", err)
	}
	return path, nil
}

// Base64Encode returns the payload encoded as standard base64.
func (a *Actions) Base64Encode(ctx context.Context, id string) (string, error) {
	item, err := a.resolve(id)
	if err != nil {
		return "", err
	}
	if item.Type == types.TypeImage {
		return base64.StdEncoding.EncodeToString(item.Content), nil
	}
	return base64.StdEncoding.EncodeToString([]byte(item.PlainText())), nil
}

// URLEncode percent-escapes the item's text.
func (a *Actions) URLEncode(ctx context.Context, id string) (string, error) {
	item, err := a.resolve(id)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(item.PlainText()), nil
}

// URLDecode reverses percent-escaping; malformed input is a data
// format error.
func (a *Actions) URLDecode(ctx context.Context, id string) (string, error) {
	item, err := a.resolve(id)
	if err != nil {
		return "", err
	}
	decoded, err := url.QueryUnescape(item.PlainText())
	if err != nil {
		return "", fmt.Errorf("not a url-encoded payload: %w", types.ErrDataFormatInvalid)
	}
	return decoded, nil
}

// EditAndResubmit captures the edited text as a brand-new item instead
// of rewriting the original, preserving the audit trail. The new item
// inherits the original's source application.
func (a *Actions) EditAndResubmit(ctx context.Context, id, editedText string) (types.ClipboardItem, error) {
	original, err := a.resolve(id)
	if err != nil {
		return types.ClipboardItem{}, err
	}
	if editedText == "" {
		return types.ClipboardItem{}, types.ErrDataFormatInvalid
	}

	item := types.NewTextItem(clipboard.ClassifyText(editedText), editedText, original.SourceApp)
	item.CapturedAt = time.Now()
	if err := a.engine.AddClipboardItem(ctx, item); err != nil {
		return types.ClipboardItem{}, err
	}
	return item, nil
}
