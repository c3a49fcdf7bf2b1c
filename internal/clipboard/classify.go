package clipboard

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"clipvault/pkg/types"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,20}$`)
	colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
)

// ClassifyText maps captured plain text onto the most specific item
// type. Falls back to TypeText.
func ClassifyText(text string) types.ItemType {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return types.TypeText
	case colorPattern.MatchString(trimmed):
		return types.TypeColor
	case emailPattern.MatchString(trimmed):
		return types.TypeEmail
	case phonePattern.MatchString(trimmed):
		return types.TypePhone
	case looksLikeURL(trimmed):
		return types.TypeURL
	case looksLikeJSON(trimmed):
		return types.TypeJSON
	}
	return types.TypeText
}

func looksLikeURL(s string) bool {
	if strings.ContainsAny(s, " \n\t") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func looksLikeJSON(s string) bool {
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return false
	}
	return json.Valid([]byte(s))
}
