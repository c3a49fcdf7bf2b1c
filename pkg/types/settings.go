package types

import (
	"strings"
	"time"
)

// Capacity bounds. HardMaxHistoryItems is the ceiling the effective
// history limit can never exceed regardless of configuration;
// MinHistoryItems is the floor a configured cap is clamped up to.
const (
	HardMaxHistoryItems = 1000
	MinHistoryItems     = 10
	MaxPinnedItems      = 50

	DefaultMaxHistoryItems = 200
	DefaultMaxImageBytes   = 10 * 1024 * 1024
	MaxImageBytesCeiling   = 100 * 1024 * 1024
)

// Settings is the process-wide configuration record. It is treated as
// an immutable value: updates replace the whole record.
type Settings struct {
	RememberHistory bool `json:"remember_history"`
	LimitHistory    bool `json:"limit_history"`
	// MaxHistoryItems is the raw configured cap. Consumers must go
	// through EffectiveHistoryLimit, never this field directly.
	MaxHistoryItems int      `json:"max_history_items"`
	MaxImageBytes   int64    `json:"max_image_bytes"`
	CaptureRichText bool     `json:"capture_rich_text"`
	EncryptHistory  bool     `json:"encrypt_history"`
	IncognitoMode   bool     `json:"incognito_mode"`
	ExcludedAppIDs  []string `json:"excluded_app_ids,omitempty"`
	AutoPaste       bool     `json:"auto_paste"`

	ToggleShortcut   string        `json:"toggle_shortcut"`
	EdgeTriggerDelay time.Duration `json:"edge_trigger_delay"`
}

// DefaultSettings returns the configuration a fresh installation runs with.
func DefaultSettings() Settings {
	return Settings{
		RememberHistory:  true,
		LimitHistory:     true,
		MaxHistoryItems:  DefaultMaxHistoryItems,
		MaxImageBytes:    DefaultMaxImageBytes,
		CaptureRichText:  true,
		ToggleShortcut:   "ctrl+shift+v",
		EdgeTriggerDelay: 300 * time.Millisecond,
	}
}

// EffectiveHistoryLimit derives the maximum rolling-history length the
// eviction algorithm enforces: the configured cap clamped into
// [MinHistoryItems, HardMaxHistoryItems] when limiting is enabled,
// else the hard maximum.
func (s Settings) EffectiveHistoryLimit() int {
	if !s.LimitHistory {
		return HardMaxHistoryItems
	}
	limit := s.MaxHistoryItems
	if limit < MinHistoryItems {
		limit = MinHistoryItems
	}
	if limit > HardMaxHistoryItems {
		limit = HardMaxHistoryItems
	}
	return limit
}

// IsExcluded reports whether captures from the given application
// identifier are filtered out. Comparison is case-insensitive.
func (s Settings) IsExcluded(appID string) bool {
	if appID == "" {
		return false
	}
	for _, id := range s.ExcludedAppIDs {
		if strings.EqualFold(id, appID) {
			return true
		}
	}
	return false
}

// Validate range-checks numeric fields and the shortcut format.
// A failed validation never partially applies.
func (s Settings) Validate() error {
	if s.MaxHistoryItems < 1 || s.MaxHistoryItems > HardMaxHistoryItems {
		return ErrSettingsRangeInvalid
	}
	if s.MaxImageBytes < 1 || s.MaxImageBytes > MaxImageBytesCeiling {
		return ErrSettingsRangeInvalid
	}
	if s.EdgeTriggerDelay < 0 || s.EdgeTriggerDelay > 5*time.Second {
		return ErrSettingsRangeInvalid
	}
	if s.ToggleShortcut != "" {
		if err := validateShortcut(s.ToggleShortcut); err != nil {
			return err
		}
	}
	return nil
}

// validateShortcut accepts "mod[+mod...]+key" where mod is one of
// ctrl, alt, shift, cmd and key is a single printable rune or a
// function key name (f1..f24).
func validateShortcut(shortcut string) error {
	parts := strings.Split(strings.ToLower(shortcut), "+")
	if len(parts) < 2 {
		return ErrSettingsShortcutInvalid
	}
	key := parts[len(parts)-1]
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "ctrl", "alt", "shift", "cmd":
		default:
			return ErrSettingsShortcutInvalid
		}
	}
	if len(key) == 1 {
		return nil
	}
	if strings.HasPrefix(key, "f") && len(key) <= 3 {
		for _, r := range key[1:] {
			if r < '0' || r > '9' {
				return ErrSettingsShortcutInvalid
			}
		}
		return nil
	}
	return ErrSettingsShortcutInvalid
}
