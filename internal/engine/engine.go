// Package engine owns the canonical clipboard state: the rolling
// history, the pinned list, snippets and settings. All mutation goes
// through it, one logical operation at a time; readers get immutable
// snapshots and are notified through registered state-change handlers.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"clipvault/internal/clipboard"
	"clipvault/internal/crypto"
	"clipvault/internal/logger"
	"clipvault/internal/storage"
	"clipvault/pkg/types"
)

// StateChangeHandler is implemented by components that need to re-read
// the engine's views after a mutation. The generation lets consumers
// drop stale notifications.
type StateChangeHandler interface {
	HandleStateChange(generation uint64)
}

// Options wires the engine's collaborators. Monitor, Writer and
// Crypter may be nil; the corresponding operations then report their
// unavailability instead of panicking.
type Options struct {
	History  storage.HistoryRepository
	Pinned   storage.PinnedRepository
	Snippets storage.SnippetRepository
	Settings storage.SettingsRepository
	Crypter  crypto.Service
	Monitor  clipboard.Monitor
	Writer   clipboard.Writer
	Log      logger.Logger
}

// Engine is the clipboard state & retention engine.
type Engine struct {
	mu          sync.Mutex
	history     []types.ClipboardItem
	pinned      []types.PinnedClipboardItem
	snippets    []types.Snippet
	settings    types.Settings
	selectedID  string
	generation  uint64
	initialized bool

	histRepo storage.HistoryRepository
	pinRepo  storage.PinnedRepository
	snipRepo storage.SnippetRepository
	setRepo  storage.SettingsRepository
	crypter  crypto.Service
	monitor  clipboard.Monitor
	writer   clipboard.Writer
	log      logger.Logger

	handlerMu sync.RWMutex
	handlers  []StateChangeHandler

	// dirty is the single-slot coalescing queue feeding the flush
	// worker; flushMu serializes the writes themselves.
	dirty           chan struct{}
	flushMu         sync.Mutex
	lastFlushedGen  uint64
	runMu           sync.Mutex
	running         bool
	monitorActive   bool
	flushCancel     context.CancelFunc
	flushDone       chan struct{}
}

// New builds an engine. Call Initialize before anything else.
func New(opts Options) *Engine {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		histRepo: opts.History,
		pinRepo:  opts.Pinned,
		snipRepo: opts.Snippets,
		setRepo:  opts.Settings,
		crypter:  opts.Crypter,
		monitor:  opts.Monitor,
		writer:   opts.Writer,
		log:      log,
		settings: types.DefaultSettings(),
		dirty:    make(chan struct{}, 1),
	}
}

// Initialize loads settings, history, pinned items and snippets from
// their repositories, in that order: the settings must be known before
// the history is trimmed to the effective limit. A failed settings or
// history load is fatal (ErrStateInitializationFailed); failed pinned
// or snippet loads degrade to empty state and are reported as
// ErrPartialStateLoaded.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}

	settings, err := e.setRepo.LoadSettings(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		settings = types.DefaultSettings()
	} else if err != nil {
		return opErr("Initialize", fmt.Errorf("%w: settings load: %v", types.ErrStateInitializationFailed, err))
	}

	history, err := e.loadHistory(ctx)
	if err != nil {
		return opErr("Initialize", fmt.Errorf("%w: history load: %v", types.ErrStateInitializationFailed, err))
	}
	if limit := settings.EffectiveHistoryLimit(); len(history) > limit {
		history = history[:limit]
	}

	partial := false
	pinned, err := e.pinRepo.LoadPinned(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		e.log.Warn("pinned items load failed, starting with empty pinned state", logger.Err(err))
		pinned, partial = nil, true
	}

	snippets, err := e.snipRepo.LoadSnippets(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		e.log.Warn("snippets load failed, starting with empty snippet state", logger.Err(err))
		snippets, partial = nil, true
	}

	e.settings = settings
	e.history = history
	e.pinned = pinned
	e.snippets = snippets
	e.initialized = true

	if partial {
		return types.ErrPartialStateLoaded
	}
	return nil
}

// loadHistory fetches and decodes the history blob, decrypting when
// the stored record says it was written encrypted.
func (e *Engine) loadHistory(ctx context.Context) ([]types.ClipboardItem, error) {
	data, encrypted, err := e.histRepo.LoadHistory(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if encrypted {
		if e.crypter == nil {
			return nil, fmt.Errorf("history is encrypted but no encryption key is configured")
		}
		if data, err = e.crypter.Decrypt(data); err != nil {
			return nil, err
		}
	}
	var history []types.ClipboardItem
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("history decode: %w", types.ErrDataFormatInvalid)
	}
	return history, nil
}

// RegisterHandler adds a state-change subscriber. Handlers must not
// block; slow consumers should hand off internally.
func (e *Engine) RegisterHandler(handler StateChangeHandler) {
	e.handlerMu.Lock()
	e.handlers = append(e.handlers, handler)
	e.handlerMu.Unlock()
}

// stateChanged schedules a persistence flush and fans the zero-payload
// notification out to registered handlers. Called after e.mu is
// released.
func (e *Engine) stateChanged(generation uint64) {
	e.markDirty()

	e.handlerMu.RLock()
	handlers := e.handlers
	e.handlerMu.RUnlock()
	for _, h := range handlers {
		h.HandleStateChange(generation)
	}
}

// ClipboardItems returns a snapshot of the rolling history,
// most-recent-first.
func (e *Engine) ClipboardItems() []types.ClipboardItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.ClipboardItem, len(e.history))
	copy(out, e.history)
	return out
}

// PinnedItems returns a snapshot of the pinned list.
func (e *Engine) PinnedItems() []types.PinnedClipboardItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.PinnedClipboardItem, len(e.pinned))
	copy(out, e.pinned)
	return out
}

// Snippets returns a snapshot of the snippet list.
func (e *Engine) Snippets() []types.Snippet {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.Snippet, len(e.snippets))
	copy(out, e.snippets)
	return out
}

// Settings returns the current settings record.
func (e *Engine) Settings() types.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Generation returns the mutation counter. It increments on every
// committed state change, so callers can detect stale reads.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// SelectedItem returns the currently selected item, if any.
func (e *Engine) SelectedItem() (types.ClipboardItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findLocked(e.selectedID)
}

// findLocked looks an item up by id, history first, then pin
// snapshots. Caller holds e.mu.
func (e *Engine) findLocked(id string) (types.ClipboardItem, bool) {
	if id == "" {
		return types.ClipboardItem{}, false
	}
	for _, item := range e.history {
		if item.ID == id {
			return item, true
		}
	}
	for _, pin := range e.pinned {
		if pin.Item.ID == id {
			return pin.Item, true
		}
	}
	return types.ClipboardItem{}, false
}
