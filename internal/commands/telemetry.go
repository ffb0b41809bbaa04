package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-content-blocks/internal/logging"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
)

// TelemetryStatus is the outcome category of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess TelemetryStatus = "success"
	// TelemetryStatusRejected marks failures caused by the caller's content,
	// such as a library cycle or a restricted placement.
	TelemetryStatusRejected     TelemetryStatus = "rejected"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a command outcome. Error is the categorised error
// returned to the caller.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once after every execution that passed validation.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs outcomes: rejections at warn, failures at error.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = EnsureLogger(logger)
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logging.FromContext(ctx, logger), info.Fields)
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusRejected:
			entry.Warn("command.execute.rejected", append(args, "error", info.Error)...)
		case TelemetryStatusContextError:
			entry.Error("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", info.Error)...)
		}
	}
}

func outcome(ctx context.Context, err error) (TelemetryStatus, error) {
	switch {
	case err == nil && ctx.Err() == nil:
		return TelemetryStatusSuccess, nil
	case err == nil || ctx.Err() != nil:
		if err != nil && goerrors.IsWrapped(err) {
			return TelemetryStatusContextError, err
		}
		return TelemetryStatusContextError, WrapContextError(ctx.Err())
	}
	wrapped := WrapExecuteError(err)
	if goerrors.IsCategory(wrapped, goerrors.CategoryValidation) {
		return TelemetryStatusRejected, wrapped
	}
	return TelemetryStatusFailed, wrapped
}
