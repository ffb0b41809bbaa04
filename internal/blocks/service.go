package blocks

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-blocks/fields"
	"github.com/goliatone/go-content-blocks/internal/logging"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
	"github.com/google/uuid"
)

type Service interface {
	RegisterBlockType(ctx context.Context, input RegisterBlockTypeInput) (*BlockType, error)
	GetBlockType(ctx context.Context, id uuid.UUID) (*BlockType, error)
	GetBlockTypeByKeyname(ctx context.Context, keyname string) (*BlockType, error)
	ListBlockTypes(ctx context.Context) ([]*BlockType, error)
	DuplicateBlockType(ctx context.Context, input DuplicateBlockTypeInput) (*BlockType, error)

	CreateLibrary(ctx context.Context, input CreateLibraryInput) (*Library, error)
	GetLibrary(ctx context.Context, id uuid.UUID) (*Library, error)
	ListLibraries(ctx context.Context) ([]*Library, error)

	AttachInstance(ctx context.Context, input AttachInstanceInput) (*Instance, error)
	DetachInstance(ctx context.Context, id uuid.UUID) error
	ReplaceHostContent(ctx context.Context, host Host, instances []*Instance) ([]*Instance, error)
	LoadHost(ctx context.Context, host Host) ([]*Instance, error)
	DeleteHost(ctx context.Context, host Host) error
	DuplicateHost(ctx context.Context, source, target Host) ([]*Instance, error)

	CheckLibrary(ctx context.Context, libraryID uuid.UUID) error
	LoadLibraryContent(ctx context.Context, libraryID uuid.UUID) ([]*Instance, error)
	ListLibraryUsage(ctx context.Context, libraryID uuid.UUID) ([]Host, error)
	ListOfferable(ctx context.Context, host Host, slot string) (*Offerable, error)

	SyncRegistry(ctx context.Context) error
}

// RegisterBlockTypeInput describes a block type to store. A zero ID is
// replaced by a generated one.
type RegisterBlockTypeInput struct {
	ID               uuid.UUID
	Name             string
	Keyname          string
	Category         string
	Description      *string
	Enabled          bool
	IsContainer      bool
	GuidelineVisible bool
	TemplatePath     *string
	Fields           []*fields.Node
	Themes           []Variant
	Options          []Variant
	Layouts          []Variant
	Restrictions     []RestrictionRule
}

// Validate checks the required attributes of the input.
func (in RegisterBlockTypeInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Keyname, validation.Required, validation.Length(1, 128)),
	)
}

// DuplicateBlockTypeInput selects the block type to copy and the identity of
// the copy. Blank names derive from the source.
type DuplicateBlockTypeInput struct {
	SourceID uuid.UUID
	Name     string
	Keyname  string
}

// CreateLibraryInput describes a library to store.
type CreateLibraryInput struct {
	Name                string
	Keyname             string
	AccessibleInContent bool
	IsEnabled           bool
	IsNavigationMenu    bool
	TemplatePath        *string
	CSSClass            string
	Restrictions        []RestrictionRule
}

// Validate checks the required attributes of the input.
func (in CreateLibraryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Keyname, validation.Required, validation.Length(1, 128)),
	)
}

// AttachInstanceInput places a block type or a library on a host slot.
type AttachInstanceInput struct {
	Host        Host
	Slot        string
	Position    int
	BlockTypeID *uuid.UUID
	LibraryID   *uuid.UUID
	ThemeID     *uuid.UUID
	OptionID    *uuid.UUID
	LayoutID    *uuid.UUID
	Values      []*FieldValue
}

// Offerable lists what may be placed on a host slot.
type Offerable struct {
	BlockTypes []*BlockType
	Libraries  []*Library
}

var (
	ErrBlockTypeInvalid         = errors.New("blocks: block type invalid")
	ErrBlockTypeExists          = errors.New("blocks: block type keyname already exists")
	ErrBlockTypeDisabled        = errors.New("blocks: block type disabled")
	ErrContainerHasFields       = errors.New("blocks: container block types cannot declare value fields")
	ErrLibraryInvalid           = errors.New("blocks: library invalid")
	ErrLibraryExists            = errors.New("blocks: library keyname already exists")
	ErrRestrictionInvalid       = errors.New("blocks: restriction rule invalid")
	ErrInstanceHostRequired     = errors.New("blocks: instance host required")
	ErrInstanceSlotRequired     = errors.New("blocks: instance slot required")
	ErrInstancePositionInvalid  = errors.New("blocks: instance position cannot be negative")
	ErrInstanceTargetRequired   = errors.New("blocks: instance must reference a block type or a library")
	ErrInstanceTargetAmbiguous  = errors.New("blocks: instance cannot reference both a block type and a library")
	ErrPlacementRestricted      = errors.New("blocks: placement not allowed on host slot")
	ErrDuplicateSameHost        = errors.New("blocks: duplication source and target hosts are identical")
	ErrBlockTypeSourceIDMissing = errors.New("blocks: duplication source id required")
)

var restrictionValuePattern = regexp.MustCompile(`^[^:\s]+:[^:\s]+$`)

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

func WithRegistry(reg *Registry) ServiceOption {
	return func(s *service) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithLogger wires the logger used for cycle and sync reporting.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRestrictionEnforcement toggles restriction checks on placement.
func WithRestrictionEnforcement(enabled bool) ServiceOption {
	return func(s *service) {
		s.enforceRestrictions = enabled
	}
}

type service struct {
	blockTypes          BlockTypeRepository
	libraries           LibraryRepository
	instances           InstanceRepository
	now                 func() time.Time
	id                  IDGenerator
	registry            *Registry
	logger              interfaces.Logger
	enforceRestrictions bool
}

func NewService(blockTypes BlockTypeRepository, libraries LibraryRepository, instances InstanceRepository, opts ...ServiceOption) Service {
	s := &service{
		blockTypes:          blockTypes,
		libraries:           libraries,
		instances:           instances,
		now:                 time.Now,
		id:                  uuid.New,
		logger:              logging.NoOp(),
		enforceRestrictions: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) RegisterBlockType(ctx context.Context, input RegisterBlockTypeInput) (*BlockType, error) {
	blockType, err := s.buildBlockType(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.blockTypes.GetByKeyname(ctx, blockType.Keyname); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockTypeExists, blockType.Keyname)
	} else if !isNotFound(err) {
		return nil, err
	}
	return s.blockTypes.Create(ctx, blockType)
}

func (s *service) GetBlockType(ctx context.Context, id uuid.UUID) (*BlockType, error) {
	return s.blockTypes.GetByID(ctx, id)
}

func (s *service) GetBlockTypeByKeyname(ctx context.Context, keyname string) (*BlockType, error) {
	return s.blockTypes.GetByKeyname(ctx, NormalizeKeyname(keyname))
}

func (s *service) ListBlockTypes(ctx context.Context) ([]*BlockType, error) {
	return s.blockTypes.List(ctx)
}

func (s *service) DuplicateBlockType(ctx context.Context, input DuplicateBlockTypeInput) (*BlockType, error) {
	if input.SourceID == uuid.Nil {
		return nil, ErrBlockTypeSourceIDMissing
	}
	source, err := s.blockTypes.GetByID(ctx, input.SourceID)
	if err != nil {
		return nil, err
	}

	keyname := NormalizeKeyname(input.Keyname)
	if keyname == "" {
		keyname = source.Keyname + "-copy"
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = source.Name + " (copy)"
	}
	if _, err := s.blockTypes.GetByKeyname(ctx, keyname); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockTypeExists, keyname)
	} else if !isNotFound(err) {
		return nil, err
	}

	dup := Duplicate(NewDuplication(s.id), source)
	dup.Name = name
	dup.Keyname = keyname
	now := s.now()
	dup.CreatedAt = now
	dup.UpdatedAt = now
	return s.blockTypes.Create(ctx, dup)
}

func (s *service) CreateLibrary(ctx context.Context, input CreateLibraryInput) (*Library, error) {
	input.Keyname = NormalizeKeyname(firstNonBlank(input.Keyname, input.Name))
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLibraryInvalid, err)
	}
	if err := validateRestrictions(input.Restrictions); err != nil {
		return nil, err
	}
	if _, err := s.libraries.GetByKeyname(ctx, input.Keyname); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrLibraryExists, input.Keyname)
	} else if !isNotFound(err) {
		return nil, err
	}

	now := s.now()
	library := &Library{
		ID:                  s.id(),
		Name:                strings.TrimSpace(input.Name),
		Keyname:             input.Keyname,
		AccessibleInContent: input.AccessibleInContent,
		IsEnabled:           input.IsEnabled,
		IsNavigationMenu:    input.IsNavigationMenu,
		TemplatePath:        trimmedPtr(input.TemplatePath),
		CSSClass:            strings.TrimSpace(input.CSSClass),
		Restrictions:        append([]RestrictionRule(nil), input.Restrictions...),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return s.libraries.Create(ctx, library)
}

func (s *service) GetLibrary(ctx context.Context, id uuid.UUID) (*Library, error) {
	return s.libraries.GetByID(ctx, id)
}

func (s *service) ListLibraries(ctx context.Context) ([]*Library, error) {
	return s.libraries.List(ctx)
}

func (s *service) AttachInstance(ctx context.Context, input AttachInstanceInput) (*Instance, error) {
	instance := &Instance{
		HostClass:   input.Host.Class,
		HostID:      input.Host.ID,
		Slot:        input.Slot,
		Position:    input.Position,
		BlockTypeID: input.BlockTypeID,
		LibraryID:   input.LibraryID,
		ThemeID:     input.ThemeID,
		OptionID:    input.OptionID,
		LayoutID:    input.LayoutID,
		Values:      input.Values,
	}
	prepared, err := s.prepareInstance(ctx, input.Host, instance)
	if err != nil {
		return nil, err
	}

	if input.Host.IsLibrary() && prepared.ReferencesLibrary() {
		current, err := s.instances.ListByHost(ctx, input.Host)
		if err != nil {
			return nil, err
		}
		if err := s.checkLibraryHost(ctx, input.Host, append(current, prepared)); err != nil {
			return nil, err
		}
	}
	return s.instances.Create(ctx, prepared)
}

func (s *service) DetachInstance(ctx context.Context, id uuid.UUID) error {
	return s.instances.Delete(ctx, id)
}

// ReplaceHostContent swaps the whole content of host. Library hosts are
// checked for inclusion cycles before anything is written, and a failed
// write keeps the previous content.
func (s *service) ReplaceHostContent(ctx context.Context, host Host, instances []*Instance) ([]*Instance, error) {
	if err := validateHost(host); err != nil {
		return nil, err
	}
	prepared := make([]*Instance, 0, len(instances))
	for _, instance := range instances {
		if instance == nil {
			continue
		}
		next, err := s.prepareInstance(ctx, host, instance)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, next)
	}
	if host.IsLibrary() {
		if err := s.checkLibraryHost(ctx, host, prepared); err != nil {
			return nil, err
		}
	}

	return s.instances.ReplaceByHost(ctx, host, prepared)
}

// LoadHost returns the content of host with block type and library
// references resolved. Instances whose reference is missing are returned
// unresolved.
func (s *service) LoadHost(ctx context.Context, host Host) ([]*Instance, error) {
	instances, err := s.instances.ListByHost(ctx, host)
	if err != nil {
		return nil, err
	}
	blockTypes := map[uuid.UUID]*BlockType{}
	libraries := map[uuid.UUID]*Library{}
	for _, instance := range instances {
		switch {
		case instance.BlockTypeID != nil:
			id := *instance.BlockTypeID
			blockType, ok := blockTypes[id]
			if !ok {
				blockType, err = s.blockTypes.GetByID(ctx, id)
				if err != nil && !isNotFound(err) {
					return nil, err
				}
				blockTypes[id] = blockType
			}
			instance.BlockType = blockType
		case instance.LibraryID != nil:
			id := *instance.LibraryID
			library, ok := libraries[id]
			if !ok {
				library, err = s.libraries.GetByID(ctx, id)
				if err != nil && !isNotFound(err) {
					return nil, err
				}
				libraries[id] = library
			}
			instance.Library = library
		}
	}
	return instances, nil
}

func (s *service) DeleteHost(ctx context.Context, host Host) error {
	if err := validateHost(host); err != nil {
		return err
	}
	return s.instances.DeleteByHost(ctx, host)
}

// DuplicateHost copies the content of source onto target with fresh
// identities, replacing whatever target held.
func (s *service) DuplicateHost(ctx context.Context, source, target Host) ([]*Instance, error) {
	if err := validateHost(source); err != nil {
		return nil, err
	}
	if err := validateHost(target); err != nil {
		return nil, err
	}
	if source == target {
		return nil, ErrDuplicateSameHost
	}
	content, err := s.instances.ListByHost(ctx, source)
	if err != nil {
		return nil, err
	}
	dup := DuplicateAll(NewDuplication(s.id), content)
	for _, instance := range dup {
		instance.HostClass = target.Class
		instance.HostID = target.ID
	}
	return s.ReplaceHostContent(ctx, target, dup)
}

// CheckLibrary reports a *CycleError when the stored content of the library
// includes the library itself.
func (s *service) CheckLibrary(ctx context.Context, libraryID uuid.UUID) error {
	if _, err := s.libraries.GetByID(ctx, libraryID); err != nil {
		return err
	}
	content, err := s.LoadLibraryContent(ctx, libraryID)
	if err != nil {
		return err
	}
	return s.checkLibraryHost(ctx, LibraryHost(libraryID), content)
}

func (s *service) LoadLibraryContent(ctx context.Context, libraryID uuid.UUID) ([]*Instance, error) {
	return s.instances.ListByHost(ctx, LibraryHost(libraryID))
}

// ListLibraryUsage returns the distinct hosts including the library.
func (s *service) ListLibraryUsage(ctx context.Context, libraryID uuid.UUID) ([]Host, error) {
	instances, err := s.instances.ListByLibrary(ctx, libraryID)
	if err != nil {
		return nil, err
	}
	seen := make(map[Host]struct{}, len(instances))
	hosts := make([]Host, 0, len(instances))
	for _, instance := range instances {
		host := instance.Host()
		if _, ok := seen[host]; ok {
			continue
		}
		seen[host] = struct{}{}
		hosts = append(hosts, host)
	}
	return hosts, nil
}

func (s *service) ListOfferable(ctx context.Context, host Host, slot string) (*Offerable, error) {
	if err := validateHost(host); err != nil {
		return nil, err
	}
	blockTypes, err := s.blockTypes.List(ctx)
	if err != nil {
		return nil, err
	}
	libraries, err := s.libraries.List(ctx)
	if err != nil {
		return nil, err
	}

	offerable := &Offerable{}
	for _, blockType := range blockTypes {
		if blockType.Enabled && IsOfferable(blockType.Restrictions, host.Class, host.ID, slot) {
			offerable.BlockTypes = append(offerable.BlockTypes, blockType)
		}
	}
	for _, library := range libraries {
		if !library.IsEnabled {
			continue
		}
		if host.IsLibrary() && host.ID == library.ID.String() {
			continue
		}
		if IsOfferable(library.Restrictions, host.Class, host.ID, slot) {
			offerable.Libraries = append(offerable.Libraries, library)
		}
	}
	return offerable, nil
}

// SyncRegistry upserts every registered definition by keyname. Existing
// block types keep their identity.
func (s *service) SyncRegistry(ctx context.Context) error {
	if s.registry == nil {
		return nil
	}
	var errs []error
	for _, input := range s.registry.List() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.syncDefinition(ctx, input); err != nil {
			errs = append(errs, fmt.Errorf("blocks: sync %s: %w", input.Keyname, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logging.WithFields(s.logger, map[string]any{
		"definitions": s.registry.Len(),
	}).Debug("blocks.registry.synced")
	return nil
}

func (s *service) syncDefinition(ctx context.Context, input RegisterBlockTypeInput) error {
	existing, err := s.blockTypes.GetByKeyname(ctx, NormalizeKeyname(input.Keyname))
	if err != nil {
		if !isNotFound(err) {
			return err
		}
		_, err = s.RegisterBlockType(ctx, input)
		return err
	}

	input.ID = existing.ID
	blockType, err := s.buildBlockType(input)
	if err != nil {
		return err
	}
	blockType.CreatedAt = existing.CreatedAt
	_, err = s.blockTypes.Update(ctx, blockType)
	return err
}

func (s *service) buildBlockType(input RegisterBlockTypeInput) (*BlockType, error) {
	input.Keyname = NormalizeKeyname(firstNonBlank(input.Keyname, input.Name))
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlockTypeInvalid, err)
	}
	if err := validateRestrictions(input.Restrictions); err != nil {
		return nil, err
	}

	nodes := make([]*fields.Node, 0, len(input.Fields))
	for _, node := range input.Fields {
		if node == nil {
			continue
		}
		clone := node.Clone()
		if clone.ID == uuid.Nil {
			clone.ID = s.id()
		}
		clone.Keyname = strings.TrimSpace(clone.Keyname)
		if clone.Keyname == "" {
			return nil, fmt.Errorf("%w: field %s has no keyname", ErrBlockTypeInvalid, clone.ID)
		}
		if input.IsContainer && !isStructuralField(clone.Type) {
			return nil, fmt.Errorf("%w: %s", ErrContainerHasFields, clone.Keyname)
		}
		nodes = append(nodes, clone)
	}
	if _, err := fields.NewTree(nodes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBlockTypeInvalid, err)
	}

	id := input.ID
	if id == uuid.Nil {
		id = s.id()
	}
	now := s.now()
	return &BlockType{
		ID:               id,
		Name:             strings.TrimSpace(input.Name),
		Keyname:          input.Keyname,
		Category:         strings.TrimSpace(input.Category),
		Description:      trimmedPtr(input.Description),
		Enabled:          input.Enabled,
		IsContainer:      input.IsContainer,
		GuidelineVisible: input.GuidelineVisible,
		TemplatePath:     trimmedPtr(input.TemplatePath),
		Fields:           nodes,
		Themes:           s.variants(input.Themes),
		Options:          s.variants(input.Options),
		Layouts:          s.variants(input.Layouts),
		Restrictions:     append([]RestrictionRule(nil), input.Restrictions...),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (s *service) variants(src []Variant) []Variant {
	if len(src) == 0 {
		return nil
	}
	out := make([]Variant, 0, len(src))
	for _, variant := range src {
		variant.Keyname = NormalizeKeyname(firstNonBlank(variant.Keyname, variant.Title))
		if variant.Keyname == "" {
			continue
		}
		if variant.ID == uuid.Nil {
			variant.ID = s.id()
		}
		out = append(out, variant)
	}
	return out
}

func (s *service) prepareInstance(ctx context.Context, host Host, instance *Instance) (*Instance, error) {
	if err := validateHost(host); err != nil {
		return nil, err
	}
	prepared := instance.Clone()
	prepared.HostClass = host.Class
	prepared.HostID = host.ID
	prepared.Slot = strings.TrimSpace(prepared.Slot)
	if prepared.Slot == "" {
		return nil, ErrInstanceSlotRequired
	}
	if prepared.Position < 0 {
		return nil, ErrInstancePositionInvalid
	}
	switch {
	case prepared.BlockTypeID == nil && prepared.LibraryID == nil:
		return nil, ErrInstanceTargetRequired
	case prepared.BlockTypeID != nil && prepared.LibraryID != nil:
		return nil, ErrInstanceTargetAmbiguous
	}

	var rules []RestrictionRule
	if prepared.BlockTypeID != nil {
		blockType, err := s.blockTypes.GetByID(ctx, *prepared.BlockTypeID)
		if err != nil {
			return nil, err
		}
		rules = blockType.Restrictions
	} else {
		library, err := s.libraries.GetByID(ctx, *prepared.LibraryID)
		if err != nil {
			return nil, err
		}
		rules = library.Restrictions
	}
	if s.enforceRestrictions && !IsOfferable(rules, host.Class, host.ID, prepared.Slot) {
		return nil, fmt.Errorf("%w: %s slot %s", ErrPlacementRestricted, host, prepared.Slot)
	}

	if prepared.ID == uuid.Nil {
		prepared.ID = s.id()
	}
	s.assignValueIDs(prepared.Values)
	now := s.now()
	if prepared.CreatedAt.IsZero() {
		prepared.CreatedAt = now
	}
	prepared.UpdatedAt = now
	return prepared, nil
}

func (s *service) assignValueIDs(values []*FieldValue) {
	for _, value := range values {
		if value == nil {
			continue
		}
		if value.ID == uuid.Nil {
			value.ID = s.id()
		}
		for _, group := range value.Groups {
			if group == nil {
				continue
			}
			if group.ID == uuid.Nil {
				group.ID = s.id()
			}
			s.assignValueIDs(group.Values)
		}
	}
}

func (s *service) checkLibraryHost(ctx context.Context, host Host, content []*Instance) error {
	libraryID, err := uuid.Parse(host.ID)
	if err != nil {
		return fmt.Errorf("%w: library host id %q", ErrInstanceHostRequired, host.ID)
	}
	err = CheckLibraryContent(ctx, libraryID, content, s)
	var cycleErr *CycleError
	if errors.As(err, &cycleErr) {
		logging.WithFields(s.logger, map[string]any{
			"library_id":  libraryID.String(),
			"instance_id": cycleErr.Instance.ID.String(),
		}).Warn("blocks.library.cycle_detected")
	}
	return err
}

func validateHost(host Host) error {
	if strings.TrimSpace(host.Class) == "" || strings.TrimSpace(host.ID) == "" {
		return ErrInstanceHostRequired
	}
	return nil
}

func validateRestrictions(rules []RestrictionRule) error {
	for i := range rules {
		rule := rules[i]
		err := validation.ValidateStruct(&rule,
			validation.Field(&rule.Value, validation.Required, validation.Match(restrictionValuePattern)),
			validation.Field(&rule.Condition, validation.Required, validation.In(RestrictionInclude, RestrictionExclude)),
		)
		if err != nil {
			return fmt.Errorf("%w: rule %d: %v", ErrRestrictionInvalid, i, err)
		}
	}
	return nil
}

func isStructuralField(tag fields.TypeTag) bool {
	return tag == fields.TypeContainer || tag == fields.TypeSeparator
}

func isNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
