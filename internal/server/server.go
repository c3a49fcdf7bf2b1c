// Package server exposes the engine to UI processes over a local HTTP
// API plus a websocket channel for state-change notifications.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"clipvault/internal/engine"
	"clipvault/internal/logger"
	"clipvault/internal/quickactions"
	"clipvault/pkg/types"
)

const maxBackupUploadBytes = 256 * 1024 * 1024

// Config holds server configuration.
type Config struct {
	Port    int
	DataDir string // directory holding the pid file
}

// Server serves the engine's views and commands.
type Server struct {
	engine  *engine.Engine
	actions *quickactions.Actions
	hub     *Hub
	srv     *http.Server
	pid     *pidFile
	log     logger.Logger
	config  Config
}

// New builds a server and subscribes its websocket hub to the engine's
// state-change notifications.
func New(eng *engine.Engine, actions *quickactions.Actions, log logger.Logger, config Config) *Server {
	hub := newHub(log)
	eng.RegisterHandler(hub)
	return &Server{
		engine:  eng,
		actions: actions,
		hub:     hub,
		log:     log,
		config:  config,
	}
}

// Start refuses to run next to a live instance, then serves until Stop.
func (s *Server) Start() error {
	pid, err := newPIDFile(s.config.DataDir)
	if err != nil {
		return err
	}
	if other, err := pid.read(); err == nil && other != 0 && isRunning(other) {
		return fmt.Errorf("another instance is already running (pid %d)", other)
	}
	if err := pid.write(); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	s.pid = pid

	go s.hub.run()

	s.srv = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.config.Port),
		Handler: s.routes(),
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		s.pid.remove()
		return fmt.Errorf("http server error on %s: %w", s.srv.Addr, err)
	case <-time.After(100 * time.Millisecond):
		s.log.Info("api server listening", logger.String("addr", s.srv.Addr))
		return nil
	}
}

// Stop shuts the server down and releases the pid file.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.hub.stop()
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	if s.pid != nil {
		if err := s.pid.remove(); err != nil {
			s.log.Warn("failed to remove pid file", logger.Err(err))
		}
	}
	return nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/status", s.handleStatus)
	r.Get("/ws", s.serveWs)

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", s.handleListItems)
		r.Delete("/items", s.handleClearItems)
		r.Get("/items/{id}", s.handleGetItem)
		r.Delete("/items/{id}", s.handleDeleteItem)
		r.Post("/items/{id}/select", s.handleSelectItem)
		r.Post("/items/{id}/copy", s.handleCopyItem)
		r.Post("/items/{id}/paste", s.handlePasteItem)
		r.Post("/items/{id}/pin", s.handleTogglePin)
		r.Post("/items/{id}/edit", s.handleEditItem)
		r.Post("/items/{id}/actions/{action}", s.handleQuickAction)

		r.Get("/pinned", s.handleListPinned)
		r.Delete("/pinned/{id}", s.handleUnpin)
		r.Put("/pinned/{id}/title", s.handlePinTitle)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleSaveSettings)

		r.Get("/snippets", s.handleListSnippets)
		r.Post("/snippets", s.handleSaveSnippet)
		r.Delete("/snippets/{id}", s.handleDeleteSnippet)
		r.Post("/snippets/{id}/resolve", s.handleResolveSnippet)

		r.Get("/backup", s.handleExportBackup)
		r.Post("/backup", s.handleImportBackup)
	})

	return r
}

// writeError maps engine error bands to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrClipboardHistoryItemNotFound),
		errors.Is(err, types.ErrPinnedItemNotFound),
		errors.Is(err, types.ErrSnippetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrPinnedItemsLimitExceeded),
		errors.Is(err, types.ErrPinnedItemDuplicate):
		status = http.StatusConflict
	case errors.Is(err, types.ErrSettingsRangeInvalid),
		errors.Is(err, types.ErrSettingsShortcutInvalid),
		errors.Is(err, types.ErrDataFormatInvalid),
		errors.Is(err, types.ErrEncryptionKeyUnavailable),
		errors.Is(err, types.ErrClipboardImageTooLarge):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrMonitorUnavailable):
		status = http.StatusNotImplemented
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":     "ok",
		"generation": s.engine.Generation(),
		"time":       time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.ClipboardItems())
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, item := range s.engine.ClipboardItems() {
		if item.ID == id {
			writeJSON(w, item)
			return
		}
	}
	// History first, then pin snapshots, matching the engine's own
	// lookup: an evicted-but-pinned item stays addressable.
	for _, pin := range s.engine.PinnedItems() {
		if pin.Item.ID == id {
			writeJSON(w, pin.Item)
			return
		}
	}
	s.writeError(w, types.ErrClipboardHistoryItemNotFound)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteClipboardItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearItems(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ClearClipboardHistory(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectItem(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.SelectClipboardItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleCopyItem(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.CopyClipboardItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handlePasteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.PasteClipboardItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleTogglePin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, types.ErrDataFormatInvalid)
			return
		}
	}
	if err := s.engine.TogglePin(r.Context(), chi.URLParam(r, "id"), body.Title); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleEditItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, types.ErrDataFormatInvalid)
		return
	}
	item, err := s.actions.EditAndResubmit(r.Context(), chi.URLParam(r, "id"), body.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, item)
}

func (s *Server) handleQuickAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var result string
	var err error
	switch action := chi.URLParam(r, "action"); action {
	case "save-file":
		var body struct {
			Dir string `json:"dir"`
		}
		if decodeErr := json.NewDecoder(r.Body).Decode(&body); decodeErr != nil || body.Dir == "" {
			s.writeError(w, types.ErrDataFormatInvalid)
			return
		}
		result, err = s.actions.SaveToFile(r.Context(), id, body.Dir)
	case "base64":
		result, err = s.actions.Base64Encode(r.Context(), id)
	case "url-encode":
		result, err = s.actions.URLEncode(r.Context(), id)
	case "url-decode":
		result, err = s.actions.URLDecode(r.Context(), id)
	default:
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"result": result})
}

func (s *Server) handleListPinned(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.PinnedItems())
}

func (s *Server) handleUnpin(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.UnpinClipboardItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePinTitle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, types.ErrDataFormatInvalid)
		return
	}
	if err := s.engine.UpdatePinTitle(r.Context(), chi.URLParam(r, "id"), body.Title); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.Settings())
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings types.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.writeError(w, types.ErrDataFormatInvalid)
		return
	}
	if err := s.engine.SaveSettings(r.Context(), settings); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListSnippets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.Snippets())
}

func (s *Server) handleSaveSnippet(w http.ResponseWriter, r *http.Request) {
	var snippet types.Snippet
	if err := json.NewDecoder(r.Body).Decode(&snippet); err != nil {
		s.writeError(w, types.ErrDataFormatInvalid)
		return
	}
	saved, err := s.engine.SaveSnippet(r.Context(), snippet)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, saved)
}

func (s *Server) handleDeleteSnippet(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteSnippet(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResolveSnippet(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		s.writeError(w, types.ErrDataFormatInvalid)
		return
	}
	resolved, err := s.engine.ResolveSnippet(r.Context(), chi.URLParam(r, "id"), values)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"result": resolved})
}

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := s.engine.ExportBackup(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="clipvault-backup.json"`)
	w.Write(data)
}

func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBackupUploadBytes))
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to read backup payload: %w", err))
		return
	}
	if err := s.engine.ImportBackup(r.Context(), data); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
