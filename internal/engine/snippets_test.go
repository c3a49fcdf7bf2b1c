package engine

import (
	"context"
	"errors"
	"testing"

	"clipvault/pkg/types"
)

func TestSaveSnippet_CreateAndUpdate(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	saved, err := e.SaveSnippet(ctx, types.Snippet{Name: "sig", Template: "Regards, {name}"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("created snippet must get an id")
	}

	saved.Template = "Best, {name}"
	updated, err := e.SaveSnippet(ctx, saved)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != saved.ID {
		t.Error("updating must keep the id")
	}

	snippets := e.Snippets()
	if len(snippets) != 1 || snippets[0].Template != "Best, {name}" {
		t.Errorf("unexpected snippet list: %+v", snippets)
	}
}

func TestSaveSnippet_RequiresNameAndTemplate(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.SaveSnippet(ctx, types.Snippet{Name: "", Template: "x"}); !errors.Is(err, types.ErrDataFormatInvalid) {
		t.Errorf("missing name: got %v", err)
	}
	if _, err := e.SaveSnippet(ctx, types.Snippet{Name: "x", Template: ""}); !errors.Is(err, types.ErrDataFormatInvalid) {
		t.Errorf("missing template: got %v", err)
	}
}

func TestDeleteSnippet(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	saved, err := e.SaveSnippet(ctx, types.Snippet{Name: "tmp", Template: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.DeleteSnippet(ctx, saved.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(e.Snippets()) != 0 {
		t.Error("snippet should be gone")
	}
	if err := e.DeleteSnippet(ctx, saved.ID); !errors.Is(err, types.ErrSnippetNotFound) {
		t.Errorf("expected ErrSnippetNotFound, got %v", err)
	}
}

func TestResolveSnippet(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	saved, err := e.SaveSnippet(ctx, types.Snippet{Name: "greeting", Template: "Hello {name}, ref {ref}"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := e.ResolveSnippet(ctx, saved.ID, map[string]string{"name": "Ada"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != "Hello Ada, ref {ref}" {
		t.Errorf("resolve = %q", got)
	}

	if _, err := e.ResolveSnippet(ctx, "no-such-id", nil); !errors.Is(err, types.ErrSnippetNotFound) {
		t.Errorf("expected ErrSnippetNotFound, got %v", err)
	}
}
