package program

import (
	"context"
	"errors"
	"fmt"
	"testing"

	errorslib "github.com/goliatone/go-errors"
)

func TestAsGoErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		category errorslib.Category
		code     string
	}{
		{NewError(KindValidation, "bad input", nil), errorslib.CategoryValidation, "validation"},
		{NewError(KindNotFound, "missing", nil), errorslib.CategoryNotFound, "not_found"},
		{context.DeadlineExceeded, errorslib.CategoryOperation, "timeout"},
		{context.Canceled, errorslib.CategoryOperation, "canceled"},
		{NewError(KindNotImpl, "later", nil), errorslib.CategoryOperation, "not_implemented"},
		{NewError(KindAsset, "logo unavailable", nil), errorslib.CategoryExternal, "asset_unavailable"},
		{NewError(KindRender, "layout failed", nil), errorslib.CategoryInternal, "render_failed"},
		{NewError(KindInternal, "boom", nil), errorslib.CategoryInternal, "internal"},
		{errors.New("plain"), errorslib.CategoryInternal, "internal"},
	}

	for _, tc := range cases {
		mapped := AsGoError(tc.err)
		if mapped == nil {
			t.Fatalf("expected mapping for %v", tc.err)
		}
		if mapped.Category != tc.category {
			t.Fatalf("expected category %s, got %s", tc.category, mapped.Category)
		}
		if mapped.TextCode != tc.code {
			t.Fatalf("expected text code %s, got %s", tc.code, mapped.TextCode)
		}
	}
}

func TestAsGoErrorKeepsMessageAndPassesThrough(t *testing.T) {
	if AsGoError(nil) != nil {
		t.Fatalf("expected nil mapping for nil error")
	}
	mapped := AsGoError(NewError(KindInternal, "failed to generate program pdf", errors.New("font")))
	if mapped.Message != "failed to generate program pdf" {
		t.Fatalf("expected kind message, got %q", mapped.Message)
	}
	if again := AsGoError(mapped); again != mapped {
		t.Fatalf("expected go-errors values to pass through")
	}
}

func TestKindFromWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NewError(KindNotFound, "conference not found", nil))
	if KindFromError(wrapped) != KindNotFound {
		t.Fatalf("expected not_found through wrapping")
	}
	if KindFromError(nil) != "" {
		t.Fatalf("expected empty kind for nil")
	}
	inner := errors.New("disk")
	err := NewError(KindInternal, "write", inner)
	if !errors.Is(err, inner) || err.Error() != "write: disk" {
		t.Fatalf("unexpected wrapping %v", err)
	}
}
