package types

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Snippet is a reusable text template with {name} placeholders.
type Snippet struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Template  string    `json:"template"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSnippet builds a snippet with a fresh identity.
func NewSnippet(name, template string) Snippet {
	return Snippet{
		ID:        uuid.NewString(),
		Name:      name,
		Template:  template,
		CreatedAt: time.Now(),
	}
}

// PlaceholderNames extracts the placeholder names in order of first
// appearance, de-duplicated.
func (s Snippet) PlaceholderNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(s.Template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Resolve substitutes the supplied values by literal replacement.
// Placeholders with no supplied value are left verbatim.
func (s Snippet) Resolve(values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(s.Template, func(match string) string {
		name := match[1 : len(match)-1]
		if v, ok := values[name]; ok {
			return v
		}
		return match
	})
}
