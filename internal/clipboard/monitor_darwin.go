//go:build darwin

package clipboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/progrium/darwinkit/macos/appkit"

	"clipvault/pkg/types"
)

const pollInterval = 500 * time.Millisecond

// pasteboardMonitor polls the general pasteboard change count and
// reads new content when it moves.
type pasteboardMonitor struct {
	mu              sync.Mutex
	pasteboard      appkit.Pasteboard
	onCapture       CaptureFunc
	captureRichText bool
	changeCount     int
	stopChan        chan struct{}
	running         bool
}

// NewMonitor returns the darwin pasteboard monitor.
func NewMonitor() Monitor {
	return &pasteboardMonitor{
		pasteboard: appkit.Pasteboard_GeneralPasteboard(),
	}
}

func (m *pasteboardMonitor) Start(onCapture CaptureFunc, captureRichText bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return fmt.Errorf("pasteboard monitor already started")
	}
	m.onCapture = onCapture
	m.captureRichText = captureRichText
	m.changeCount = m.pasteboard.ChangeCount()
	m.stopChan = make(chan struct{})
	m.running = true

	go func(stop chan struct{}) {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.checkForChanges()
			case <-stop:
				return
			}
		}
	}(m.stopChan)

	return nil
}

func (m *pasteboardMonitor) UpdateCaptureRichText(enabled bool) {
	m.mu.Lock()
	m.captureRichText = enabled
	m.mu.Unlock()
}

func (m *pasteboardMonitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil
	}
	close(m.stopChan)
	m.running = false
	return nil
}

func (m *pasteboardMonitor) checkForChanges() {
	m.mu.Lock()
	current := m.pasteboard.ChangeCount()
	if current == m.changeCount {
		m.mu.Unlock()
		return
	}
	m.changeCount = current
	onCapture := m.onCapture
	richText := m.captureRichText
	item, ok := m.readItem(richText)
	m.mu.Unlock()

	if ok && onCapture != nil {
		// Callback return only signals whether the capture was
		// accepted; a rejection is not a monitor failure.
		_ = onCapture(item)
	}
}

// readItem reads the current pasteboard content, most specific
// representation first. Caller holds m.mu.
func (m *pasteboardMonitor) readItem(richText bool) (types.ClipboardItem, bool) {
	sourceApp := m.sourceApp()

	plain := m.pasteboard.StringForType(appkit.PasteboardType("public.utf8-plain-text"))

	if richText && plain != "" {
		html := m.pasteboard.StringForType(appkit.PasteboardType("public.html"))
		rtf := m.pasteboard.StringForType(appkit.PasteboardType("public.rtf"))
		if html != "" || rtf != "" {
			bundle := types.RichTextBundle{PlainText: plain, HTML: html, RTF: rtf}
			return types.NewRichTextItem(bundle, sourceApp), true
		}
	}

	if plain != "" {
		return types.NewTextItem(ClassifyText(plain), plain, sourceApp), true
	}

	if data := m.pasteboard.DataForType(appkit.PasteboardType("public.png")); len(data) > 0 {
		return types.NewImageItem(data, sourceApp), true
	}
	if data := m.pasteboard.DataForType(appkit.PasteboardType("public.tiff")); len(data) > 0 {
		return types.NewImageItem(data, sourceApp), true
	}

	if fileURL := m.pasteboard.StringForType(appkit.PasteboardType("public.file-url")); fileURL != "" {
		return types.NewFileItem(fileURL, sourceApp), true
	}

	return types.ClipboardItem{}, false
}

// sourceApp resolves the application the content came from: pasteboard
// metadata first, then the frontmost application.
func (m *pasteboardMonitor) sourceApp() string {
	if bundleID := m.pasteboard.StringForType(appkit.PasteboardType("com.apple.pasteboard.bundleid")); bundleID != "" {
		return bundleID
	}
	if app := appkit.Workspace_SharedWorkspace().FrontmostApplication(); app.BundleIdentifier() != "" {
		return app.BundleIdentifier()
	}
	return ""
}
