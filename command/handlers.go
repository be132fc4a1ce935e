package command

import (
	"context"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-program/program"
)

const defaultRetention = 7 * 24 * time.Hour

// ProgramRunner renders program documents.
type ProgramRunner interface {
	Run(ctx context.Context, req program.Request) (program.Document, error)
}

// GenerateProgramHandler handles program generation.
type GenerateProgramHandler struct {
	Runner ProgramRunner
}

func NewGenerateProgramHandler(runner ProgramRunner) *GenerateProgramHandler {
	return &GenerateProgramHandler{Runner: runner}
}

func (h *GenerateProgramHandler) Execute(ctx context.Context, msg GenerateProgram) error {
	if h == nil || h.Runner == nil {
		return errors.New("program runner is required", errors.CategoryInternal).
			WithTextCode("RUNNER_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	doc, err := h.Runner.Run(ctx, msg.Request())
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = doc
	}
	if res := gcmd.ResultFromContext[program.Document](ctx); res != nil {
		res.Store(doc)
	}
	return nil
}

// ArtifactCleaner lists and removes stored documents.
type ArtifactCleaner interface {
	List(ctx context.Context, prefix string) ([]program.ArtifactRef, error)
	Delete(ctx context.Context, key string) error
}

// CleanupArtifactsHandler removes expired program documents.
type CleanupArtifactsHandler struct {
	Store     ArtifactCleaner
	Retention time.Duration
	Config    gcmd.HandlerConfig
	Clock     func() time.Time
	Logger    program.Logger
}

func NewCleanupArtifactsHandler(store ArtifactCleaner, retention time.Duration) *CleanupArtifactsHandler {
	return &CleanupArtifactsHandler{
		Store:     store,
		Retention: retention,
		Config:    gcmd.HandlerConfig{Expression: "30 3 * * *"},
		Clock:     time.Now,
	}
}

func (h *CleanupArtifactsHandler) Execute(ctx context.Context, msg CleanupArtifacts) error {
	if h == nil || h.Store == nil {
		return errors.New("artifact store is required", errors.CategoryInternal).
			WithTextCode("STORE_REQUIRED")
	}
	now := msg.Now
	if now.IsZero() {
		if h.Clock != nil {
			now = h.Clock()
		} else {
			now = time.Now()
		}
	}
	retention := h.Retention
	if retention <= 0 {
		retention = defaultRetention
	}
	prefix := msg.Prefix
	if prefix == "" {
		prefix = "programs/"
	}

	refs, err := h.Store.List(ctx, prefix)
	if err != nil {
		return err
	}
	cutoff := now.Add(-retention)
	count := 0
	for _, ref := range refs {
		if !ref.Meta.CreatedAt.Before(cutoff) {
			continue
		}
		if err := h.Store.Delete(ctx, ref.Key); err != nil {
			return err
		}
		count++
	}
	if h.Logger != nil && count > 0 {
		h.Logger.Infof("removed %d program artifacts older than %s", count, cutoff.Format(time.RFC3339))
	}

	if msg.Result != nil {
		*msg.Result = count
	}
	if res := gcmd.ResultFromContext[int](ctx); res != nil {
		res.Store(count)
	}
	return nil
}

func (h *CleanupArtifactsHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), CleanupArtifacts{})
	}
}

func (h *CleanupArtifactsHandler) CronOptions() gcmd.HandlerConfig {
	return h.Config
}

// CLIHandler exposes cleanup via CLI.
func (h *CleanupArtifactsHandler) CLIHandler() any {
	return &cleanupCLI{handler: h}
}

// CLIOptions describes cleanup CLI metadata.
func (h *CleanupArtifactsHandler) CLIOptions() gcmd.CLIConfig {
	return gcmd.CLIConfig{
		Path:        []string{"program-cleanup"},
		Description: "Remove expired program documents",
		Group:       "programs",
	}
}

type cleanupCLI struct {
	handler *CleanupArtifactsHandler
	Prefix  string `kong:"name='prefix',help='Only remove documents under this key prefix'"`
}

func (c *cleanupCLI) Run() error {
	if c == nil || c.handler == nil {
		return errors.New("cleanup handler is required", errors.CategoryInternal).
			WithTextCode("CLEANUP_HANDLER_REQUIRED")
	}
	return c.handler.Execute(context.Background(), CleanupArtifacts{Prefix: c.Prefix})
}
