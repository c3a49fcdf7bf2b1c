package types

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemType classifies the payload of a captured clipboard item.
type ItemType string

const (
	TypeText     ItemType = "text"
	TypeImage    ItemType = "image"
	TypeColor    ItemType = "color"
	TypeCode     ItemType = "code"
	TypeURL      ItemType = "url"
	TypeEmail    ItemType = "email"
	TypePhone    ItemType = "phone"
	TypeJSON     ItemType = "json"
	TypeFile     ItemType = "file"
	TypeRichText ItemType = "richtext"
)

// RichTextBundle carries the plain-text form of a rich capture plus
// whichever markup forms the source application provided.
type RichTextBundle struct {
	PlainText string `json:"plain_text"`
	HTML      string `json:"html,omitempty"`
	RTF       string `json:"rtf,omitempty"`
}

// ClipboardItem is an immutable snapshot of one clipboard capture.
// Exactly one payload field is set, determined by Type: Text for the
// text family (Text, Color, Code, URL, Email, Phone, JSON), Content
// for Image, FilePath for File and RichText for RichText. Use the
// constructors below; they keep the type/payload pairing honest.
type ClipboardItem struct {
	ID         string          `json:"id"`
	Type       ItemType        `json:"type"`
	CapturedAt time.Time       `json:"captured_at"`
	SourceApp  string          `json:"source_app,omitempty"`
	Text       string          `json:"text,omitempty"`
	Content    []byte          `json:"content,omitempty"`
	FilePath   string          `json:"file_path,omitempty"`
	RichText   *RichTextBundle `json:"rich_text,omitempty"`
}

// NewTextItem builds a text-family item. itemType must be one of the
// text family types; anything else is coerced to TypeText.
func NewTextItem(itemType ItemType, text, sourceApp string) ClipboardItem {
	if !isTextFamily(itemType) {
		itemType = TypeText
	}
	return ClipboardItem{
		ID:         uuid.NewString(),
		Type:       itemType,
		CapturedAt: time.Now(),
		SourceApp:  sourceApp,
		Text:       text,
	}
}

// NewImageItem builds an image item from encoded image bytes.
func NewImageItem(content []byte, sourceApp string) ClipboardItem {
	return ClipboardItem{
		ID:         uuid.NewString(),
		Type:       TypeImage,
		CapturedAt: time.Now(),
		SourceApp:  sourceApp,
		Content:    content,
	}
}

// NewFileItem builds a file item from a copied filesystem path.
func NewFileItem(path, sourceApp string) ClipboardItem {
	return ClipboardItem{
		ID:         uuid.NewString(),
		Type:       TypeFile,
		CapturedAt: time.Now(),
		SourceApp:  sourceApp,
		FilePath:   path,
	}
}

// NewRichTextItem builds a rich-text item. The bundle's plain-text
// form is what equivalence and text-oriented actions operate on.
func NewRichTextItem(bundle RichTextBundle, sourceApp string) ClipboardItem {
	return ClipboardItem{
		ID:         uuid.NewString(),
		Type:       TypeRichText,
		CapturedAt: time.Now(),
		SourceApp:  sourceApp,
		RichText:   &bundle,
	}
}

func isTextFamily(t ItemType) bool {
	switch t {
	case TypeText, TypeColor, TypeCode, TypeURL, TypeEmail, TypePhone, TypeJSON:
		return true
	}
	return false
}

// Validate checks the type/payload invariant.
func (c ClipboardItem) Validate() error {
	if c.ID == "" {
		return ErrDataFormatInvalid
	}
	switch {
	case isTextFamily(c.Type):
		if c.Text == "" {
			return ErrDataFormatInvalid
		}
	case c.Type == TypeImage:
		if len(c.Content) == 0 {
			return ErrDataFormatInvalid
		}
	case c.Type == TypeFile:
		if c.FilePath == "" {
			return ErrDataFormatInvalid
		}
	case c.Type == TypeRichText:
		if c.RichText == nil || c.RichText.PlainText == "" {
			return ErrDataFormatInvalid
		}
	default:
		return ErrDataFormatInvalid
	}
	return nil
}

// PlainText returns the textual form of the payload, or "" for items
// that have no textual form (images).
func (c ClipboardItem) PlainText() string {
	switch {
	case isTextFamily(c.Type):
		return c.Text
	case c.Type == TypeFile:
		return c.FilePath
	case c.Type == TypeRichText && c.RichText != nil:
		return c.RichText.PlainText
	}
	return ""
}

// EquivalentContent reports whether two items carry the same content
// under type-specific comparison: ordinal compare for the text family,
// byte-exact compare for images, case-insensitive path compare for
// files and plain-text compare for rich text. Identity (ID, timestamp,
// source app) is deliberately ignored; this is the dedup relation.
func EquivalentContent(a, b ClipboardItem) bool {
	if a.Type != b.Type {
		return false
	}
	switch {
	case isTextFamily(a.Type):
		return a.Text == b.Text
	case a.Type == TypeImage:
		return bytes.Equal(a.Content, b.Content)
	case a.Type == TypeFile:
		return strings.EqualFold(a.FilePath, b.FilePath)
	case a.Type == TypeRichText:
		if a.RichText == nil || b.RichText == nil {
			return a.RichText == b.RichText
		}
		return a.RichText.PlainText == b.RichText.PlainText
	}
	return false
}
