package blockscmd

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/commands"
	"github.com/goliatone/go-content-blocks/internal/logging"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	duplicateHostMessageType = "contentblocks.blocks.host.duplicate"
	deleteHostMessageType    = "contentblocks.blocks.host.delete"
	checkLibraryMessageType  = "contentblocks.blocks.library.check"
)

// DuplicateHostCommand copies the block content of one host onto another.
type DuplicateHostCommand struct {
	Source blocks.Host `json:"source"`
	Target blocks.Host `json:"target"`
}

// Type implements command.Message.
func (DuplicateHostCommand) Type() string { return duplicateHostMessageType }

// Validate satisfies command.Message.
func (m DuplicateHostCommand) Validate() error {
	if err := validateHost("source", m.Source); err != nil {
		return err
	}
	if err := validateHost("target", m.Target); err != nil {
		return err
	}
	if m.Source == m.Target {
		return blocks.ErrDuplicateSameHost
	}
	return nil
}

// DeleteHostCommand removes every block instance attached to a host.
type DeleteHostCommand struct {
	Host blocks.Host `json:"host"`
}

// Type implements command.Message.
func (DeleteHostCommand) Type() string { return deleteHostMessageType }

// Validate satisfies command.Message.
func (m DeleteHostCommand) Validate() error {
	return validateHost("host", m.Host)
}

// CheckLibraryCommand verifies that a library does not include itself
// through its own content.
type CheckLibraryCommand struct {
	LibraryID uuid.UUID `json:"library_id"`
}

// Type implements command.Message.
func (CheckLibraryCommand) Type() string { return checkLibraryMessageType }

// Validate satisfies command.Message.
func (m CheckLibraryCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.LibraryID, validation.By(notNilUUID)),
	)
}

// NewDuplicateHostHandler returns a handler duplicating host content through service.
func NewDuplicateHostHandler(service blocks.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[DuplicateHostCommand]) *commands.Handler[DuplicateHostCommand] {
	logger = commands.EnsureLogger(logger)
	return commands.NewHandler[DuplicateHostCommand](func(ctx context.Context, msg DuplicateHostCommand) error {
		if !gates.blocksEnabled() {
			return ErrBlocksModuleDisabled
		}
		copied, err := service.DuplicateHost(ctx, msg.Source, msg.Target)
		if err != nil {
			return err
		}
		logging.WithFields(logger, map[string]any{
			"source":    msg.Source.String(),
			"target":    msg.Target.String(),
			"instances": len(copied),
		}).Info("blocks.command.host.duplicated")
		return nil
	},
		append([]commands.HandlerOption[DuplicateHostCommand]{
			commands.WithLogger[DuplicateHostCommand](logger),
			commands.WithOperation[DuplicateHostCommand]("blocks.host.duplicate"),
		}, opts...)...,
	)
}

// NewDeleteHostHandler returns a handler removing host content through service.
func NewDeleteHostHandler(service blocks.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[DeleteHostCommand]) *commands.Handler[DeleteHostCommand] {
	logger = commands.EnsureLogger(logger)
	return commands.NewHandler[DeleteHostCommand](func(ctx context.Context, msg DeleteHostCommand) error {
		if !gates.blocksEnabled() {
			return ErrBlocksModuleDisabled
		}
		return service.DeleteHost(ctx, msg.Host)
	},
		append([]commands.HandlerOption[DeleteHostCommand]{
			commands.WithLogger[DeleteHostCommand](logger),
			commands.WithOperation[DeleteHostCommand]("blocks.host.delete"),
		}, opts...)...,
	)
}

// NewCheckLibraryHandler returns a handler running cycle detection on a
// library. A cycle surfaces as a validation error carrying the
// *blocks.CycleError.
func NewCheckLibraryHandler(service blocks.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CheckLibraryCommand]) *commands.Handler[CheckLibraryCommand] {
	logger = commands.EnsureLogger(logger)
	return commands.NewHandler[CheckLibraryCommand](func(ctx context.Context, msg CheckLibraryCommand) error {
		if !gates.blocksEnabled() {
			return ErrBlocksModuleDisabled
		}
		return service.CheckLibrary(ctx, msg.LibraryID)
	},
		append([]commands.HandlerOption[CheckLibraryCommand]{
			commands.WithLogger[CheckLibraryCommand](logger),
			commands.WithOperation[CheckLibraryCommand]("blocks.library.check"),
		}, opts...)...,
	)
}

// notNilUUID rejects uuid.Nil, which ozzo's Required treats as present.
func notNilUUID(value any) error {
	if id, _ := value.(uuid.UUID); id == uuid.Nil {
		return errors.New("cannot be nil")
	}
	return nil
}

func validateHost(name string, host blocks.Host) error {
	err := validation.ValidateStruct(&host,
		validation.Field(&host.Class, validation.Required, validation.By(notBlank)),
		validation.Field(&host.ID, validation.Required, validation.By(notBlank)),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
