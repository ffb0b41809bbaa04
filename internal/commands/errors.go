package commands

import (
	"context"
	"errors"

	"github.com/goliatone/go-content-blocks/internal/blocks"
	goerrors "github.com/goliatone/go-errors"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
	commandPlacementCode    = "PLACEMENT_RESTRICTED"
	commandLibraryCycleCode = "LIBRARY_CYCLE_DETECTED"
)

// WrapValidationError tags err as a validation failure.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

// WrapContextError tags cancellation and deadline failures.
func WrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

// WrapExecuteError tags a handler failure. Library cycles and restricted
// placements are reported as validation failures since the caller's input
// caused them.
func WrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	var cycle *blocks.CycleError
	switch {
	case errors.As(err, &cycle):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "library content contains a cycle").
			WithTextCode(commandLibraryCycleCode)
	case errors.Is(err, blocks.ErrPlacementRestricted):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "placement not allowed").
			WithTextCode(commandPlacementCode)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(commandExecuteFailed)
}
