package media

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-content-blocks/internal/logging"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
)

// Resolver parses movie URLs and enriches Vimeo videos through an optional
// metadata fetcher. Fetch failures leave the parsed video untouched.
type Resolver struct {
	fetcher interfaces.VideoMetadataFetcher
	timeout time.Duration
	logger  interfaces.Logger
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithMetadataFetcher enables metadata enrichment.
func WithMetadataFetcher(fetcher interfaces.VideoMetadataFetcher) ResolverOption {
	return func(r *Resolver) {
		r.fetcher = fetcher
	}
}

// WithTimeout bounds every metadata fetch.
func WithTimeout(timeout time.Duration) ResolverOption {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

func WithLogger(logger interfaces.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		timeout: 3 * time.Second,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve returns the video described by raw.
func (r *Resolver) Resolve(ctx context.Context, raw string) Video {
	video := ParseVideoURL(raw)
	if r == nil || r.fetcher == nil || video.Type != ProviderVimeo {
		return video
	}

	meta, err := r.fetch(ctx, video.Key)
	if err != nil || meta == nil {
		logging.WithFields(r.logger, map[string]any{
			"provider": ProviderVimeo,
			"key":      video.Key,
			"error":    errString(err),
		}).Warn("media.vimeo.fetch_failed")
		return video
	}
	return EnrichVimeo(video, meta.Title, meta.ThumbnailSmall)
}

// fetch calls the fetcher under the resolver timeout. A panicking fetcher is
// reported as an error.
func (r *Resolver) fetch(ctx context.Context, key string) (meta *interfaces.VideoMetadata, err error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	defer func() {
		if recovered := recover(); recovered != nil {
			meta, err = nil, fmt.Errorf("video metadata fetcher panicked: %v", recovered)
		}
	}()
	return r.fetcher.FetchVideoMetadata(fetchCtx, ProviderVimeo, key)
}

func errString(err error) string {
	if err == nil {
		return "empty metadata"
	}
	return err.Error()
}
