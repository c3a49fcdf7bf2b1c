// Package sqlite persists aggregate records in a SQLite database via
// gorm. Saves run inside a transaction, so a crash mid-save leaves the
// previous record intact.
package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"clipvault/internal/storage"
	"clipvault/pkg/types"
)

// Store implements storage.Repositories on SQLite.
type Store struct {
	db *gorm.DB
}

// New opens (creating if needed) the database at config.DBPath and
// migrates the schema.
func New(config storage.Config) (*Store, error) {
	if dir := filepath.Dir(config.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(config.DBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&storage.AggregateRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) saveRecord(ctx context.Context, name string, data []byte, encrypted bool) error {
	record := storage.AggregateRecord{Name: name, Data: data, Encrypted: encrypted}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "encrypted", "updated_at"}),
		}).Create(&record).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save %s record: %w", name, err)
	}
	return nil
}

func (s *Store) loadRecord(ctx context.Context, name string) (*storage.AggregateRecord, error) {
	var record storage.AggregateRecord
	err := s.db.WithContext(ctx).First(&record, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s record: %w", name, err)
	}
	return &record, nil
}

func (s *Store) clearRecord(ctx context.Context, name string) error {
	err := s.db.WithContext(ctx).Delete(&storage.AggregateRecord{}, "name = ?", name).Error
	if err != nil {
		return fmt.Errorf("failed to clear %s record: %w", name, err)
	}
	return nil
}

// SaveHistory implements storage.HistoryRepository. The blob is opaque;
// the encrypted flag is the engine's decision and is stored untouched.
func (s *Store) SaveHistory(ctx context.Context, data []byte, encrypted bool) error {
	return s.saveRecord(ctx, storage.RecordHistory, data, encrypted)
}

// LoadHistory implements storage.HistoryRepository.
func (s *Store) LoadHistory(ctx context.Context) ([]byte, bool, error) {
	record, err := s.loadRecord(ctx, storage.RecordHistory)
	if err != nil {
		return nil, false, err
	}
	return record.Data, record.Encrypted, nil
}

// ClearHistory implements storage.HistoryRepository.
func (s *Store) ClearHistory(ctx context.Context) error {
	return s.clearRecord(ctx, storage.RecordHistory)
}

// SavePinned implements storage.PinnedRepository.
func (s *Store) SavePinned(ctx context.Context, items []types.PinnedClipboardItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode pinned items: %w", err)
	}
	return s.saveRecord(ctx, storage.RecordPinned, data, false)
}

// LoadPinned implements storage.PinnedRepository.
func (s *Store) LoadPinned(ctx context.Context) ([]types.PinnedClipboardItem, error) {
	record, err := s.loadRecord(ctx, storage.RecordPinned)
	if err != nil {
		return nil, err
	}
	var items []types.PinnedClipboardItem
	if err := json.Unmarshal(record.Data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode pinned items: %w", types.ErrDataFormatInvalid)
	}
	return items, nil
}

// ClearPinned implements storage.PinnedRepository.
func (s *Store) ClearPinned(ctx context.Context) error {
	return s.clearRecord(ctx, storage.RecordPinned)
}

// SaveSnippets implements storage.SnippetRepository.
func (s *Store) SaveSnippets(ctx context.Context, snippets []types.Snippet) error {
	data, err := json.Marshal(snippets)
	if err != nil {
		return fmt.Errorf("failed to encode snippets: %w", err)
	}
	return s.saveRecord(ctx, storage.RecordSnippets, data, false)
}

// LoadSnippets implements storage.SnippetRepository.
func (s *Store) LoadSnippets(ctx context.Context) ([]types.Snippet, error) {
	record, err := s.loadRecord(ctx, storage.RecordSnippets)
	if err != nil {
		return nil, err
	}
	var snippets []types.Snippet
	if err := json.Unmarshal(record.Data, &snippets); err != nil {
		return nil, fmt.Errorf("failed to decode snippets: %w", types.ErrDataFormatInvalid)
	}
	return snippets, nil
}

// ClearSnippets implements storage.SnippetRepository.
func (s *Store) ClearSnippets(ctx context.Context) error {
	return s.clearRecord(ctx, storage.RecordSnippets)
}

// SaveSettings implements storage.SettingsRepository.
func (s *Store) SaveSettings(ctx context.Context, settings types.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return s.saveRecord(ctx, storage.RecordSettings, data, false)
}

// LoadSettings implements storage.SettingsRepository.
func (s *Store) LoadSettings(ctx context.Context) (types.Settings, error) {
	record, err := s.loadRecord(ctx, storage.RecordSettings)
	if err != nil {
		return types.Settings{}, err
	}
	var settings types.Settings
	if err := json.Unmarshal(record.Data, &settings); err != nil {
		return types.Settings{}, fmt.Errorf("failed to decode settings: %w", types.ErrDataFormatInvalid)
	}
	return settings, nil
}

// ClearSettings implements storage.SettingsRepository.
func (s *Store) ClearSettings(ctx context.Context) error {
	return s.clearRecord(ctx, storage.RecordSettings)
}
