package storefs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goliatone/go-program/program"
)

func TestStore_PutOpenDelete(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	ref, err := store.Put(context.Background(), "programs/run-1/Summit_Program_2025.pdf", bytes.NewBufferString("%PDF-1.3"), program.ArtifactMeta{
		Filename: "Summit_Program_2025.pdf",
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref.Meta.Size != 8 {
		t.Fatalf("expected size 8, got %d", ref.Meta.Size)
	}
	if ref.Meta.CreatedAt.IsZero() {
		t.Fatalf("expected created_at set")
	}
	if ref.Meta.ContentType != "application/pdf" {
		t.Fatalf("expected pdf content type, got %q", ref.Meta.ContentType)
	}

	reader, meta, err := store.Open(context.Background(), "programs/run-1/Summit_Program_2025.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.3" {
		t.Fatalf("expected payload, got %q", string(data))
	}
	if meta.Filename != "Summit_Program_2025.pdf" || meta.ContentType != "application/pdf" {
		t.Fatalf("unexpected meta: %+v", meta)
	}

	if err := store.Delete(context.Background(), "programs/run-1/Summit_Program_2025.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, _, err = store.Open(context.Background(), "programs/run-1/Summit_Program_2025.pdf")
	var perr *program.ProgramError
	if !errors.As(err, &perr) || perr.Kind != program.KindNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.Delete(context.Background(), "programs/run-1/Summit_Program_2025.pdf"); err != nil {
		t.Fatalf("expected repeated delete to succeed, got %v", err)
	}
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, key := range []string{"", "/", "doc.pdf.meta.json"} {
		_, err := store.Put(context.Background(), key, bytes.NewBufferString("x"), program.ArtifactMeta{})
		var perr *program.ProgramError
		if !errors.As(err, &perr) || perr.Kind != program.KindValidation {
			t.Fatalf("key %q: expected validation error, got %v", key, err)
		}
	}
}

func TestStore_ListOrdersByCreation(t *testing.T) {
	store := NewStore(t.TempDir())
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []struct {
		key string
		at  time.Time
	}{
		{"programs/b/late.xlsx", base.Add(2 * time.Hour)},
		{"programs/a/early.pdf", base},
		{"other/skip.json", base.Add(time.Hour)},
	}
	for _, entry := range entries {
		if _, err := store.Put(context.Background(), entry.key, bytes.NewBufferString("data"), program.ArtifactMeta{CreatedAt: entry.at}); err != nil {
			t.Fatalf("put %s: %v", entry.key, err)
		}
	}

	refs, err := store.List(context.Background(), "programs/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0].Key != "programs/a/early.pdf" || refs[1].Key != "programs/b/late.xlsx" {
		t.Fatalf("unexpected order: %v, %v", refs[0].Key, refs[1].Key)
	}
	if refs[1].Meta.Size != 4 || refs[1].Meta.Filename != "late.xlsx" {
		t.Fatalf("unexpected meta: %+v", refs[1].Meta)
	}
}

func TestStore_ListMissingRoot(t *testing.T) {
	store := NewStore(t.TempDir() + "/missing")
	refs, err := store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("expected no refs, got %d", len(refs))
	}
}

func TestStore_CanceledContext(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, "programs/x.pdf", bytes.NewBufferString("x"), program.ArtifactMeta{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
