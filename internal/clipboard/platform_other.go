//go:build !darwin

package clipboard

import "clipvault/pkg/types"

// unsupportedMonitor satisfies Monitor on platforms without a
// clipboard binding. The daemon still serves its API and persisted
// state; it just cannot observe new captures.
type unsupportedMonitor struct{}

// NewMonitor returns a monitor whose Start reports
// ErrMonitorUnavailable.
func NewMonitor() Monitor {
	return unsupportedMonitor{}
}

func (unsupportedMonitor) Start(CaptureFunc, bool) error { return types.ErrMonitorUnavailable }
func (unsupportedMonitor) UpdateCaptureRichText(bool)    {}
func (unsupportedMonitor) Stop() error                   { return nil }

type unsupportedWriter struct{}

// NewWriter returns a writer whose operations report
// ErrMonitorUnavailable.
func NewWriter() Writer {
	return unsupportedWriter{}
}

func (unsupportedWriter) SetClipboardContent(types.ClipboardItem) error {
	return types.ErrMonitorUnavailable
}

func (unsupportedWriter) PasteToPreviousWindow() error {
	return types.ErrMonitorUnavailable
}
