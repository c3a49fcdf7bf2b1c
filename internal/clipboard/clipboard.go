// Package clipboard abstracts the platform clipboard: observing
// changes (Monitor) and writing content back / pasting (Writer).
package clipboard

import "clipvault/pkg/types"

// CaptureFunc is invoked once per detected clipboard change. Its
// return value tells the monitor whether the capture was accepted.
type CaptureFunc func(item types.ClipboardItem) error

// Monitor is the engine's only inbound event source. The platform
// delivers at most one capture callback at a time.
type Monitor interface {
	// Start begins observation. Calling Start on a running monitor
	// is an error; callers serialize Start/Stop themselves.
	Start(onCapture CaptureFunc, captureRichText bool) error

	// UpdateCaptureRichText changes whether markup forms are captured
	// without restarting the monitor.
	UpdateCaptureRichText(enabled bool)

	Stop() error
}

// Writer places content on the system clipboard and drives the
// auto-paste action. The engine resolves which item to act on; the
// Writer owns the OS focus/window semantics.
type Writer interface {
	SetClipboardContent(item types.ClipboardItem) error
	PasteToPreviousWindow() error
}
