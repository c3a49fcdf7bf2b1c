//go:build darwin

package clipboard

import (
	"fmt"
	"os/exec"

	"github.com/progrium/darwinkit/macos/appkit"

	"clipvault/pkg/types"
)

// pasteboardWriter writes items back to the general pasteboard and
// drives the paste keystroke in the previously focused window.
type pasteboardWriter struct {
	pasteboard appkit.Pasteboard
}

// NewWriter returns the darwin pasteboard writer.
func NewWriter() Writer {
	return &pasteboardWriter{pasteboard: appkit.Pasteboard_GeneralPasteboard()}
}

func (w *pasteboardWriter) SetClipboardContent(item types.ClipboardItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	w.pasteboard.ClearContents()

	switch item.Type {
	case types.TypeImage:
		if !w.pasteboard.SetDataForType(item.Content, appkit.PasteboardType("public.png")) {
			return fmt.Errorf("failed to write image to pasteboard")
		}
	case types.TypeFile:
		if !w.pasteboard.SetStringForType(item.FilePath, appkit.PasteboardType("public.file-url")) {
			return fmt.Errorf("failed to write file url to pasteboard")
		}
	case types.TypeRichText:
		if item.RichText.HTML != "" {
			w.pasteboard.SetStringForType(item.RichText.HTML, appkit.PasteboardType("public.html"))
		}
		if item.RichText.RTF != "" {
			w.pasteboard.SetStringForType(item.RichText.RTF, appkit.PasteboardType("public.rtf"))
		}
		if !w.pasteboard.SetStringForType(item.RichText.PlainText, appkit.PasteboardType("public.utf8-plain-text")) {
			return fmt.Errorf("failed to write rich text to pasteboard")
		}
	default:
		if !w.pasteboard.SetStringForType(item.PlainText(), appkit.PasteboardType("public.utf8-plain-text")) {
			return fmt.Errorf("failed to write text to pasteboard")
		}
	}
	return nil
}

// PasteToPreviousWindow synthesizes Cmd+V via System Events. Requires
// accessibility permission; the error message from osascript says so.
func (w *pasteboardWriter) PasteToPreviousWindow() error {
	cmd := exec.Command("osascript", "-e",
		`tell application "System Events" to keystroke "v" using command down`)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to synthesize paste keystroke: %v: %s", err, out)
	}
	return nil
}
