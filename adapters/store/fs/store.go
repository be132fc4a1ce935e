package storefs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-program/program"
)

const sidecarSuffix = ".meta.json"

// Store keeps rendered program documents on disk. Each document has a JSON
// sidecar holding its metadata.
type Store struct {
	Root string
	Now  func() time.Time
}

// NewStore creates a store rooted at root.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

type sidecar struct {
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Filename    string    `json:"filename"`
	CreatedAt   time.Time `json:"created_at"`
}

// Put writes a document atomically under key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, meta program.ArtifactMeta) (program.ArtifactRef, error) {
	target, err := s.prepare(ctx, key)
	if err != nil {
		return program.ArtifactRef{}, err
	}
	if r == nil {
		return program.ArtifactRef{}, program.NewError(program.KindValidation, "artifact reader is required", nil)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return program.ArtifactRef{}, err
	}
	size, err := writeAtomic(dir, ".program-*", func(w io.Writer) (int64, error) {
		return io.Copy(w, r)
	}, target)
	if err != nil {
		return program.ArtifactRef{}, err
	}

	meta.Size = size
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	if meta.Filename == "" {
		meta.Filename = path.Base(key)
	}
	if meta.ContentType == "" {
		meta.ContentType = program.ContentType(program.NormalizeFormat(program.Format(strings.TrimPrefix(filepath.Ext(target), "."))))
	}

	payload, err := json.Marshal(sidecar(meta))
	if err != nil {
		return program.ArtifactRef{}, err
	}
	if _, err := writeAtomic(dir, ".meta-*", func(w io.Writer) (int64, error) {
		n, err := w.Write(payload)
		return int64(n), err
	}, target+sidecarSuffix); err != nil {
		return program.ArtifactRef{}, err
	}

	return program.ArtifactRef{Key: key, Meta: meta}, nil
}

// Open returns a reader for the document stored under key.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, program.ArtifactMeta, error) {
	target, err := s.prepare(ctx, key)
	if err != nil {
		return nil, program.ArtifactMeta{}, err
	}

	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, program.ArtifactMeta{}, program.NewError(program.KindNotFound, fmt.Sprintf("artifact %q not found", key), err)
		}
		return nil, program.ArtifactMeta{}, err
	}

	meta := readSidecar(target)
	if meta.Size == 0 {
		if info, err := file.Stat(); err == nil {
			meta.Size = info.Size()
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = info.ModTime()
			}
		}
	}
	if meta.Filename == "" {
		meta.Filename = path.Base(key)
	}
	return file, meta, nil
}

// Delete removes the document and its sidecar. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	target, err := s.prepare(ctx, key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(target + sidecarSuffix); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns the documents stored under prefix, oldest first.
func (s *Store) List(ctx context.Context, prefix string) ([]program.ArtifactRef, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, err
	}

	refs := make([]program.ArtifactRef, 0)
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, sidecarSuffix) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(key, strings.TrimPrefix(prefix, "/")) {
			return nil
		}
		meta := readSidecar(p)
		if meta.Filename == "" {
			meta.Filename = d.Name()
		}
		if meta.CreatedAt.IsZero() || meta.Size == 0 {
			if info, err := d.Info(); err == nil {
				meta.Size = info.Size()
				if meta.CreatedAt.IsZero() {
					meta.CreatedAt = info.ModTime()
				}
			}
		}
		refs = append(refs, program.ArtifactRef{Key: key, Meta: meta})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Meta.CreatedAt.Equal(refs[j].Meta.CreatedAt) {
			return refs[i].Key < refs[j].Key
		}
		return refs[i].Meta.CreatedAt.Before(refs[j].Meta.CreatedAt)
	})
	return refs, nil
}

func (s *Store) check(ctx context.Context) error {
	if s == nil {
		return program.NewError(program.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return program.NewError(program.KindValidation, "store root is required", nil)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) prepare(ctx context.Context, key string) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", program.NewError(program.KindValidation, "artifact key is required", nil)
	}
	if strings.HasSuffix(key, sidecarSuffix) {
		return "", program.NewError(program.KindValidation, "artifact key uses a reserved suffix", nil)
	}
	return s.resolvePath(key)
}

func (s *Store) resolvePath(key string) (string, error) {
	clean := path.Clean("/" + key)
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" || rel == "." {
		return "", program.NewError(program.KindValidation, "invalid artifact key", nil)
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", program.NewError(program.KindValidation, "artifact key escapes root", nil)
	}
	return target, nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// writeAtomic writes through a temp file in dir and renames it onto target.
func writeAtomic(dir, pattern string, fill func(io.Writer) (int64, error), target string) (int64, error) {
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	n, err := fill(tmp)
	if err != nil {
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	return n, os.Rename(tmp.Name(), target)
}

func readSidecar(target string) program.ArtifactMeta {
	data, err := os.ReadFile(target + sidecarSuffix)
	if err != nil {
		return program.ArtifactMeta{}
	}
	var meta sidecar
	if err := json.Unmarshal(data, &meta); err != nil {
		return program.ArtifactMeta{}
	}
	return program.ArtifactMeta(meta)
}
