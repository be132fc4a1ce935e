package command

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-program/program"
)

// PublishRequest describes one document the publish run regenerates.
type PublishRequest struct {
	ConferenceID string         `json:"conferenceId,omitempty"`
	Format       program.Format `json:"format"`
	Day          int            `json:"day,omitempty"`
	Hall         string         `json:"hall,omitempty"`
	Timezone     string         `json:"timezone,omitempty"`
}

func (r PublishRequest) message() GenerateProgram {
	return GenerateProgram{
		ConferenceID: r.ConferenceID,
		Format:       r.Format,
		Day:          r.Day,
		Hall:         r.Hall,
		Timezone:     r.Timezone,
		Store:        true,
	}
}

// PublishLoader loads publish requests from a source.
type PublishLoader func(ctx context.Context) ([]PublishRequest, error)

// PublishCommand regenerates and stores program documents from CLI or cron.
type PublishCommand struct {
	runner     ProgramRunner
	loader     PublishLoader
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     PublishLimits
	sleep      func(time.Duration)
}

// PublishOption customizes publish commands.
type PublishOption func(*PublishCommand)

// PublishLimits bounds publish throughput.
type PublishLimits struct {
	MaxRequests int
	MinInterval time.Duration
}

// WithPublishCLIConfig overrides CLI configuration.
func WithPublishCLIConfig(cfg gcmd.CLIConfig) PublishOption {
	return func(cmd *PublishCommand) {
		cmd.cliConfig = cfg
	}
}

// WithPublishCronConfig overrides cron configuration.
func WithPublishCronConfig(cfg gcmd.HandlerConfig) PublishOption {
	return func(cmd *PublishCommand) {
		cmd.cronConfig = cfg
	}
}

// WithPublishLimits overrides publish limits.
func WithPublishLimits(limits PublishLimits) PublishOption {
	return func(cmd *PublishCommand) {
		cmd.limits = limits
	}
}

// NewPublishCommand creates the publish CLI/Cron command.
func NewPublishCommand(runner ProgramRunner, loader PublishLoader, opts ...PublishOption) *PublishCommand {
	cmd := &PublishCommand{
		runner: runner,
		loader: loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"program-publish"},
			Description: "Regenerate stored program documents",
			Group:       "programs",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 * * * *"},
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// CronHandler executes a scheduled publish run.
func (c *PublishCommand) CronHandler() func() error {
	return func() error {
		_, err := c.run(context.Background(), "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *PublishCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *PublishCommand) CLIHandler() any {
	return &publishCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *PublishCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

func (c *PublishCommand) run(ctx context.Context, from string) (int, error) {
	if c == nil {
		return 0, errors.New("publish command is nil", errors.CategoryInternal).
			WithTextCode("PUBLISH_CMD_NIL")
	}
	if c.runner == nil {
		return 0, errors.New("program runner is required", errors.CategoryValidation).
			WithTextCode("RUNNER_REQUIRED")
	}

	requests, err := c.loadRequests(ctx, from)
	if err != nil {
		return 0, err
	}

	handler := NewGenerateProgramHandler(c.runner)
	count := 0
	for _, item := range requests {
		if c.limits.MaxRequests > 0 && count >= c.limits.MaxRequests {
			break
		}
		if err := handler.Execute(ctx, item.message()); err != nil {
			return count, err
		}
		count++
		if c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
	}
	return count, nil
}

func (c *PublishCommand) loadRequests(ctx context.Context, from string) ([]PublishRequest, error) {
	if strings.TrimSpace(from) != "" {
		return loadPublishRequestsFromFile(from)
	}
	if c.loader == nil {
		return nil, errors.New("publish loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type publishCLI struct {
	cmd  *PublishCommand
	From string `kong:"name='from',help='Path to JSON publish requests'"`
}

func (c *publishCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("publish command is required", errors.CategoryInternal).
			WithTextCode("PUBLISH_CMD_NIL")
	}
	_, err := c.cmd.run(context.Background(), c.From)
	return err
}

func loadPublishRequestsFromFile(path string) ([]PublishRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read publish file failed").
			WithTextCode("PUBLISH_FILE_READ")
	}

	var requests []PublishRequest
	if err := json.Unmarshal(content, &requests); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "publish file invalid JSON").
			WithTextCode("PUBLISH_FILE_INVALID")
	}
	return requests, nil
}

// BuildPublishRequests returns one request per format for a conference.
// An empty format list publishes the PDF only.
func BuildPublishRequests(conferenceID string, formats ...program.Format) []PublishRequest {
	if len(formats) == 0 {
		formats = []program.Format{program.FormatPDF}
	}
	requests := make([]PublishRequest, 0, len(formats))
	for _, format := range formats {
		if strings.TrimSpace(string(format)) == "" {
			continue
		}
		requests = append(requests, PublishRequest{ConferenceID: conferenceID, Format: format})
	}
	return requests
}
