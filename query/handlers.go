package query

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-program/program"
)

// ScheduleHandler returns the schedule as the embed page shows it.
type ScheduleHandler struct {
	Source program.Source
}

func NewScheduleHandler(source program.Source) *ScheduleHandler {
	return &ScheduleHandler{Source: source}
}

func (h *ScheduleHandler) Query(ctx context.Context, msg ProgramSchedule) (program.EmbedView, error) {
	if h == nil || h.Source == nil {
		return program.EmbedView{}, errors.New("program source is required", errors.CategoryInternal).
			WithTextCode("SOURCE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return program.EmbedView{}, err
	}

	bundle, err := h.Source.Load(ctx, program.SourceQuery{ConferenceID: msg.ConferenceID})
	if err != nil {
		return program.EmbedView{}, program.AsGoError(err)
	}
	if err := program.ValidateBundle(bundle); err != nil {
		return program.EmbedView{}, program.AsGoError(err)
	}
	if msg.Day > program.DayCount(bundle.Program, bundle.Sessions) {
		return program.EmbedView{}, errors.New(fmt.Sprintf("day %d is out of range", msg.Day), errors.CategoryValidation).
			WithTextCode("INVALID_DAY")
	}

	sessions := program.FilterByHall(bundle.Sessions, msg.Hall)
	if msg.Day > 0 {
		sessions = program.SessionsByDay(sessions, msg.Day)
	}
	times, err := program.TimeFormatterFor(program.FormatOptions{Timezone: msg.Timezone})
	if err != nil {
		return program.EmbedView{}, program.AsGoError(err)
	}
	return program.BuildEmbedView(program.RenderInput{
		Conference: bundle.Conference,
		Program:    bundle.Program,
		Sessions:   sessions,
	}, times), nil
}

// ArtifactLister lists stored documents.
type ArtifactLister interface {
	List(ctx context.Context, prefix string) ([]program.ArtifactRef, error)
}

// StoredProgramsHandler lists stored program documents.
type StoredProgramsHandler struct {
	Store ArtifactLister
}

func NewStoredProgramsHandler(store ArtifactLister) *StoredProgramsHandler {
	return &StoredProgramsHandler{Store: store}
}

func (h *StoredProgramsHandler) Query(ctx context.Context, msg StoredPrograms) ([]program.ArtifactRef, error) {
	if h == nil || h.Store == nil {
		return nil, errors.New("artifact store is required", errors.CategoryInternal).
			WithTextCode("STORE_REQUIRED")
	}
	prefix := msg.Prefix
	if prefix == "" {
		prefix = "programs/"
	}
	return h.Store.List(ctx, prefix)
}
