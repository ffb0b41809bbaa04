package noop

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-content-blocks/pkg/interfaces"
)

// ErrVideoMetadataDisabled is returned by the video metadata fetcher stub.
var ErrVideoMetadataDisabled = errors.New("noop: video metadata disabled")

// Entities returns an entity lookup that never finds a record.
func Entities() interfaces.EntityLookup {
	return entityAdapter{}
}

type entityAdapter struct{}

func (entityAdapter) Resolve(context.Context, string, string) (any, error) {
	return nil, nil
}

// URLParameters returns a resolver that yields no URL parameter.
func URLParameters() interfaces.URLParameterResolver {
	return urlParameterAdapter{}
}

type urlParameterAdapter struct{}

func (urlParameterAdapter) ResolveURLParameter(context.Context, string, string) (any, error) {
	return nil, nil
}

// Files returns a resolver that uses the stored handle as the URL.
func Files() interfaces.FileResolver {
	return fileAdapter{}
}

type fileAdapter struct{}

func (fileAdapter) ResolveFile(_ context.Context, handle string) (*interfaces.ResolvedFile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, nil
	}
	return &interfaces.ResolvedFile{URL: handle}, nil
}

// VideoMetadata returns a fetcher that always fails, so movie fields keep
// their parsed shape.
func VideoMetadata() interfaces.VideoMetadataFetcher {
	return videoAdapter{}
}

type videoAdapter struct{}

func (videoAdapter) FetchVideoMetadata(context.Context, string, string) (*interfaces.VideoMetadata, error) {
	return nil, ErrVideoMetadataDisabled
}
