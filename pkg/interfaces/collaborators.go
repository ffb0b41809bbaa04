package interfaces

import "context"

// EntityLookup resolves a host-application record by class and identifier.
// Implementations return (nil, nil) when the record does not exist.
type EntityLookup interface {
	Resolve(ctx context.Context, entityClass, id string) (any, error)
}

// URLParameterResolver produces the URL parameter associated with an entity
// targeted by an internal link.
type URLParameterResolver interface {
	ResolveURLParameter(ctx context.Context, entityClass, id string) (any, error)
}

// FileResolver turns stored image/file handles into URLs and thumbnails. The
// hydration engine never calls it; it passes raw value nodes through so
// renderers can resolve them lazily.
type FileResolver interface {
	ResolveFile(ctx context.Context, handle string) (*ResolvedFile, error)
}

// ResolvedFile describes a file handle resolved by a FileResolver.
type ResolvedFile struct {
	URL        string            `json:"url"`
	MimeType   string            `json:"mime_type,omitempty"`
	Thumbnails map[string]string `json:"thumbnails,omitempty"`
}

// VideoMetadata carries the subset of provider metadata used to enrich
// hydrated movie fields.
type VideoMetadata struct {
	Title          string
	ThumbnailSmall string
}

// VideoMetadataFetcher loads provider metadata for a video key.
type VideoMetadataFetcher interface {
	FetchVideoMetadata(ctx context.Context, provider, key string) (*VideoMetadata, error)
}
