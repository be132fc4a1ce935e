package program

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore stores artifacts in memory (test/dev only).
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data []byte
	meta ArtifactMeta
}

// NewMemoryStore creates an in-memory artifact store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

// Put stores an artifact.
func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error) {
	_ = ctx
	if key == "" {
		return ArtifactRef{}, NewError(KindValidation, "artifact key is required", nil)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ArtifactRef{}, err
	}
	meta.Size = int64(len(data))
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}

	s.mu.Lock()
	s.objects[key] = memoryObject{data: data, meta: meta}
	s.mu.Unlock()

	return ArtifactRef{Key: key, Meta: meta}, nil
}

// Open reads an artifact.
func (s *MemoryStore) Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error) {
	_ = ctx
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ArtifactMeta{}, NewError(KindNotFound, fmt.Sprintf("artifact %q not found", key), nil)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.meta, nil
}

// Delete removes an artifact.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	_ = ctx
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// MemorySource serves conferences from memory (test/dev only). It applies
// the same selection rules as the database sources.
type MemorySource struct {
	mu          sync.RWMutex
	conferences []Conference
	programs    []Program
	sessions    []Session
}

// NewMemorySource creates an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

// AddConference stores a conference.
func (s *MemorySource) AddConference(conf Conference) {
	s.mu.Lock()
	s.conferences = append(s.conferences, conf)
	s.mu.Unlock()
}

// AddProgram stores a program.
func (s *MemorySource) AddProgram(prog Program) {
	s.mu.Lock()
	s.programs = append(s.programs, prog)
	s.mu.Unlock()
}

// AddSessions stores sessions.
func (s *MemorySource) AddSessions(sessions ...Session) {
	s.mu.Lock()
	s.sessions = append(s.sessions, sessions...)
	s.mu.Unlock()
}

// Load returns the selected conference with its published program and
// published sessions ordered by day and start time.
func (s *MemorySource) Load(ctx context.Context, query SourceQuery) (Bundle, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Bundle{}, err
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conf *Conference
	for i := range s.conferences {
		candidate := s.conferences[i]
		if query.ConferenceID != "" && candidate.ID == query.ConferenceID ||
			query.ConferenceID == "" && candidate.IsActive {
			conf = &candidate
			break
		}
	}
	if conf == nil {
		return Bundle{}, NewError(KindNotFound, "conference not found", nil)
	}

	var prog *Program
	for i := range s.programs {
		candidate := s.programs[i]
		if candidate.ConferenceID == conf.ID && IsPublished(candidate.Status) {
			prog = &candidate
			break
		}
	}
	if prog == nil {
		return Bundle{}, NewError(KindNotFound, fmt.Sprintf("no published program for conference %q", conf.ID), nil)
	}

	sessions := make([]Session, 0)
	for _, session := range s.sessions {
		if session.ProgramID == prog.ID && IsPublished(session.Status) {
			sessions = append(sessions, session)
		}
	}
	SortSessions(sessions)

	return Bundle{Conference: conf, Program: prog, Sessions: sessions}, nil
}

// IsPublished reports whether a status marks a published record.
func IsPublished(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusPublished)
}

// SortSessions orders sessions by day then start time, keeping input order
// for ties.
func SortSessions(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Day != sessions[j].Day {
			return sessions[i].Day < sessions[j].Day
		}
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})
}
