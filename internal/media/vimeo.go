package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-content-blocks/pkg/interfaces"
)

var (
	ErrProviderUnsupported = errors.New("media: video provider unsupported")
	ErrVideoNotFound       = errors.New("media: video metadata not found")
	ErrEndpointRequired    = errors.New("media: vimeo endpoint required")
)

// DefaultVimeoEndpoint is the public v2 metadata endpoint; %s receives the video key.
const DefaultVimeoEndpoint = "https://vimeo.com/api/v2/video/%s.json"

// VimeoFetcher loads video metadata from the Vimeo v2 JSON API.
type VimeoFetcher struct {
	client   *http.Client
	endpoint string
}

var _ interfaces.VideoMetadataFetcher = (*VimeoFetcher)(nil)

// NewVimeoFetcher builds a fetcher. A nil client gets a client bounded by timeout.
func NewVimeoFetcher(endpoint string, client *http.Client, timeout time.Duration) *VimeoFetcher {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultVimeoEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &VimeoFetcher{client: client, endpoint: endpoint}
}

type vimeoVideo struct {
	Title          string `json:"title"`
	ThumbnailSmall string `json:"thumbnail_small"`
}

// FetchVideoMetadata implements interfaces.VideoMetadataFetcher.
func (f *VimeoFetcher) FetchVideoMetadata(ctx context.Context, provider, key string) (*interfaces.VideoMetadata, error) {
	if provider != ProviderVimeo {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnsupported, provider)
	}
	if f == nil || f.endpoint == "" {
		return nil, ErrEndpointRequired
	}

	target := fmt.Sprintf(f.endpoint, url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("media: build vimeo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: vimeo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, key)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("media: vimeo responded %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("media: read vimeo response: %w", err)
	}
	var videos []vimeoVideo
	if err := json.Unmarshal(body, &videos); err != nil {
		return nil, fmt.Errorf("media: decode vimeo response: %w", err)
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, key)
	}
	return &interfaces.VideoMetadata{
		Title:          videos[0].Title,
		ThumbnailSmall: videos[0].ThumbnailSmall,
	}, nil
}
