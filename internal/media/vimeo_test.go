package media_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-content-blocks/internal/media"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
)

func TestVimeoFetcherDecodesMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/video/555.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":555,"title":"Launch","thumbnail_small":"https://i.vimeocdn.com/video/1-d_100x75"}]`))
	}))
	defer server.Close()

	fetcher := media.NewVimeoFetcher(server.URL+"/video/%s.json", server.Client(), time.Second)
	meta, err := fetcher.FetchVideoMetadata(context.Background(), media.ProviderVimeo, "555")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if meta.Title != "Launch" || meta.ThumbnailSmall != "https://i.vimeocdn.com/video/1-d_100x75" {
		t.Fatalf("unexpected metadata %+v", meta)
	}

	if _, err := fetcher.FetchVideoMetadata(context.Background(), media.ProviderVimeo, "777"); !errors.Is(err, media.ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
	if _, err := fetcher.FetchVideoMetadata(context.Background(), media.ProviderYouTube, "x"); !errors.Is(err, media.ErrProviderUnsupported) {
		t.Fatalf("expected ErrProviderUnsupported, got %v", err)
	}
}

func TestResolverEnrichesVimeo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"title":"Launch","thumbnail_small":"https://i.vimeocdn.com/video/1-d_100x75"}]`))
	}))
	defer server.Close()

	resolver := media.NewResolver(media.WithMetadataFetcher(media.NewVimeoFetcher(server.URL+"/%s", server.Client(), time.Second)))
	video := resolver.Resolve(context.Background(), "https://vimeo.com/555")
	if video.Title != "Launch" || video.Thumbnail == nil {
		t.Fatalf("expected enriched video, got %+v", video)
	}
}

type slowFetcher struct{}

func (slowFetcher) FetchVideoMetadata(ctx context.Context, _, _ string) (*interfaces.VideoMetadata, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestResolverDegradesOnFailure(t *testing.T) {
	resolver := media.NewResolver(media.WithMetadataFetcher(slowFetcher{}), media.WithTimeout(10*time.Millisecond))
	video := resolver.Resolve(context.Background(), "https://vimeo.com/555")
	if video.Type != media.ProviderVimeo || video.Key != "555" {
		t.Fatalf("expected parsed vimeo video, got %+v", video)
	}
	if video.Title != "" || video.Thumbnail != nil {
		t.Fatalf("expected no enrichment after a failed fetch")
	}

	if got := resolver.Resolve(context.Background(), "https://youtu.be/ABC123"); got.Type != media.ProviderYouTube {
		t.Fatalf("expected youtube videos to bypass the fetcher")
	}
}

type panickingFetcher struct{}

func (panickingFetcher) FetchVideoMetadata(context.Context, string, string) (*interfaces.VideoMetadata, error) {
	panic("vimeo client exploded")
}

func TestResolverRecoversFromPanickingFetcher(t *testing.T) {
	resolver := media.NewResolver(media.WithMetadataFetcher(panickingFetcher{}))
	video := resolver.Resolve(context.Background(), "https://vimeo.com/777")
	if video.Type != media.ProviderVimeo || video.Key != "777" {
		t.Fatalf("expected parsed vimeo video, got %+v", video)
	}
	if video.Title != "" {
		t.Fatalf("expected no enrichment after a panicking fetch, got %q", video.Title)
	}
}
