package blocks

import (
	cbblocks "github.com/goliatone/go-content-blocks/blocks"
	"github.com/google/uuid"
)

type (
	Host                 = cbblocks.Host
	Variant              = cbblocks.Variant
	RestrictionRule      = cbblocks.RestrictionRule
	RestrictionCondition = cbblocks.RestrictionCondition
	BlockType            = cbblocks.BlockType
	Library              = cbblocks.Library
	Instance             = cbblocks.Instance
	FieldValue           = cbblocks.FieldValue
	FieldValueGroup      = cbblocks.FieldValueGroup
	ValueOptions         = cbblocks.ValueOptions
	LinkType             = cbblocks.LinkType
)

const (
	LibraryHostClass   = cbblocks.LibraryHostClass
	RestrictionInclude = cbblocks.RestrictionInclude
	RestrictionExclude = cbblocks.RestrictionExclude

	LinkNone     = cbblocks.LinkNone
	LinkInternal = cbblocks.LinkInternal
	LinkExternal = cbblocks.LinkExternal
	LinkFile     = cbblocks.LinkFile
	LinkPhone    = cbblocks.LinkPhone
	LinkEmail    = cbblocks.LinkEmail
)

// LibraryHost returns the host owning the content of a library.
func LibraryHost(id uuid.UUID) Host { return cbblocks.LibraryHost(id) }

// ParseLinkType normalises raw link types, accepting legacy spellings.
func ParseLinkType(raw string) LinkType { return cbblocks.ParseLinkType(raw) }
