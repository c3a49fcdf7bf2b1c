package engine

import (
	"context"
	"fmt"

	"clipvault/pkg/types"
)

// SaveSnippet creates or updates a snippet, keyed by id. A snippet
// without an id gets a fresh identity.
func (e *Engine) SaveSnippet(ctx context.Context, snippet types.Snippet) (types.Snippet, error) {
	const op = "SaveSnippet"
	if snippet.Name == "" || snippet.Template == "" {
		return types.Snippet{}, opErr(op, fmt.Errorf("snippet name and template are required: %w", types.ErrDataFormatInvalid))
	}
	if snippet.ID == "" {
		snippet = types.NewSnippet(snippet.Name, snippet.Template)
	}

	e.mu.Lock()
	next := make([]types.Snippet, len(e.snippets))
	copy(next, e.snippets)
	updated := false
	for i, existing := range next {
		if existing.ID == snippet.ID {
			next[i] = snippet
			updated = true
			break
		}
	}
	if !updated {
		next = append(next, snippet)
	}

	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return types.Snippet{}, err
	}

	e.snippets = next
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.stateChanged(gen)
	return snippet, nil
}

// DeleteSnippet removes a snippet by id.
func (e *Engine) DeleteSnippet(ctx context.Context, id string) error {
	const op = "DeleteSnippet"

	e.mu.Lock()
	index := -1
	for i, snippet := range e.snippets {
		if snippet.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		e.mu.Unlock()
		return opErr(op, types.ErrSnippetNotFound)
	}

	next := make([]types.Snippet, 0, len(e.snippets)-1)
	next = append(next, e.snippets[:index]...)
	next = append(next, e.snippets[index+1:]...)

	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}

	e.snippets = next
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	e.stateChanged(gen)
	return nil
}

// ResolveSnippet substitutes placeholder values and returns the
// resulting text. Unknown placeholders stay verbatim.
func (e *Engine) ResolveSnippet(ctx context.Context, id string, values map[string]string) (string, error) {
	const op = "ResolveSnippet"

	e.mu.Lock()
	var found *types.Snippet
	for i := range e.snippets {
		if e.snippets[i].ID == id {
			found = &e.snippets[i]
			break
		}
	}
	if found == nil {
		e.mu.Unlock()
		return "", opErr(op, types.ErrSnippetNotFound)
	}
	snippet := *found
	e.mu.Unlock()

	return snippet.Resolve(values), nil
}
