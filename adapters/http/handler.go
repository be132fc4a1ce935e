package programhttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-program/program"
	"github.com/goliatone/go-router"
)

const defaultBasePath = "/programs"

// Config configures the HTTP adapter.
type Config struct {
	BasePath string
	Runner   *program.Runner
	// Store serves previously stored documents. Optional.
	Store  program.ArtifactStore
	Logger program.Logger
	// Timeout bounds a single render. Zero means no limit.
	Timeout time.Duration
	// DefaultFormat and DefaultTimezone apply when the query omits them.
	DefaultFormat   program.Format
	DefaultTimezone string
}

// RouteRegistrar is the part of a go-router router the handler needs.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// Handler exposes program download endpoints.
type Handler struct {
	cfg Config
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = program.NopLogger{}
	}
	return &Handler{cfg: cfg}
}

// RegisterRoutes registers the download routes on r.
func (h *Handler) RegisterRoutes(r RouteRegistrar) {
	if r == nil {
		return
	}
	base := h.basePath()
	r.Get(base+"/download", h.Download)
	r.Get(base+"/artifacts", h.Artifacts)
	r.Get(base+"/artifacts/:id/:filename", h.Artifact)
	r.Get(base+"/:conferenceID/download", h.Download)
}

// Download renders a program and returns it as an attachment. Without a
// conference id the active conference is used.
func (h *Handler) Download(c router.Context) error {
	if c == nil {
		return nil
	}
	if h == nil || h.cfg.Runner == nil {
		return WriteError(c, program.NewError(program.KindInternal, "program runner is not configured", nil))
	}
	req, err := h.parseRequest(c)
	if err != nil {
		return WriteError(c, err)
	}

	ctx := c.Context()
	if h.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.Timeout)
		defer cancel()
	}

	doc, err := h.cfg.Runner.Run(ctx, req)
	if err != nil {
		h.cfg.Logger.Errorf("program download failed: %v", err)
		return WriteError(c, err)
	}

	attachment(c, doc.Filename, doc.ContentType)
	c.SetHeader("X-Program-Id", doc.ID)
	if doc.Artifact != nil {
		c.SetHeader("X-Program-Artifact", doc.Artifact.Key)
	}
	return c.Status(http.StatusOK).Send(doc.Bytes)
}

// Artifact sends a stored document. The route parameters address keys
// written by the runner: programs/{id}/{filename}.
func (h *Handler) Artifact(c router.Context) error {
	if c == nil {
		return nil
	}
	if h == nil || h.cfg.Store == nil {
		return WriteError(c, program.NewError(program.KindNotImpl, "artifact store is not configured", nil))
	}
	id := strings.TrimSpace(c.Param("id"))
	filename := strings.TrimSpace(c.Param("filename"))
	if id == "" || filename == "" {
		return WriteError(c, program.NewError(program.KindValidation, "artifact id and filename are required", nil))
	}
	key := strings.Join([]string{"programs", id, filename}, "/")

	reader, meta, err := h.cfg.Store.Open(c.Context(), key)
	if err != nil {
		return WriteError(c, err)
	}
	defer reader.Close()

	payload, err := io.ReadAll(reader)
	if err != nil {
		return WriteError(c, err)
	}
	attachment(c, meta.Filename, meta.ContentType)
	return c.Status(http.StatusOK).Send(payload)
}

type artifactLister interface {
	List(ctx context.Context, prefix string) ([]program.ArtifactRef, error)
}

// Artifacts lists stored documents when the store supports listing.
func (h *Handler) Artifacts(c router.Context) error {
	if c == nil {
		return nil
	}
	var lister artifactLister
	if h != nil {
		lister, _ = h.cfg.Store.(artifactLister)
	}
	if lister == nil {
		return WriteError(c, program.NewError(program.KindNotImpl, "artifact listing is not supported", nil))
	}
	refs, err := lister.List(c.Context(), c.Query("prefix", "programs/"))
	if err != nil {
		return WriteError(c, err)
	}
	items := make([]artifactResponse, 0, len(refs))
	for _, ref := range refs {
		items = append(items, artifactResponse{
			Key:         ref.Key,
			Filename:    ref.Meta.Filename,
			ContentType: ref.Meta.ContentType,
			Size:        ref.Meta.Size,
			CreatedAt:   ref.Meta.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, listResponse{Artifacts: items})
}

func (h *Handler) basePath() string {
	if h == nil || strings.TrimSpace(h.cfg.BasePath) == "" {
		return defaultBasePath
	}
	return "/" + strings.Trim(h.cfg.BasePath, "/")
}

func (h *Handler) parseRequest(c router.Context) (program.Request, error) {
	req := program.Request{
		Query:  program.SourceQuery{ConferenceID: strings.TrimSpace(c.Param("conferenceID"))},
		Format: program.NormalizeFormat(program.Format(c.Query("format", string(h.cfg.DefaultFormat)))),
		Hall:   strings.TrimSpace(c.Query("hall")),
		Options: program.RenderOptions{
			Format: program.FormatOptions{Timezone: strings.TrimSpace(c.Query("tz", h.cfg.DefaultTimezone))},
			JSON:   program.JSONOptions{Indent: queryBool(c, "indent")},
			SQLite: program.SQLiteOptions{TableName: c.Query("table")},
		},
		Store: queryBool(c, "store"),
	}
	if raw := strings.TrimSpace(c.Query("day")); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 0 {
			return program.Request{}, program.NewError(program.KindValidation, fmt.Sprintf("invalid day %q", raw), err)
		}
		req.Day = day
	}
	return req, nil
}

func queryBool(c router.Context, name string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(name)))
	return err == nil && value
}

func attachment(c router.Context, filename, contentType string) {
	if contentType != "" {
		c.SetHeader("Content-Type", contentType)
	}
	if filename != "" {
		c.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	}
}

// WriteError writes err as a JSON error body with the matching status.
func WriteError(c router.Context, err error) error {
	ge := program.AsGoError(err)
	return c.JSON(statusForError(ge), errorResponse{
		Error: errorBody{Message: ge.Message, Code: ge.TextCode},
	})
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.TextCode == "not_implemented" {
		return http.StatusNotImplemented
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryExternal:
		return http.StatusBadGateway
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
