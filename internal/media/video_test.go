package media_test

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-content-blocks/internal/media"
	"github.com/google/go-cmp/cmp"
)

func TestParseVideoURL(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantTyp string
		wantKey string
		wantURL string
	}{
		{"short youtube", "https://youtu.be/ABC123", media.ProviderYouTube, "ABC123", "https://www.youtube.com/embed/ABC123"},
		{"watch youtube", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=1", media.ProviderYouTube, "dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"vimeo", "https://vimeo.com/555", media.ProviderVimeo, "555", "https://player.vimeo.com/video/555"},
		{"mp4", "https://example.com/x.mp4", media.ProviderDefault, "", "https://example.com/x.mp4"},
		{"youtube without id", "https://www.youtube.com/channel/foo", media.ProviderDefault, "", "https://www.youtube.com/channel/foo"},
		{"vimeo without id", "https://vimeo.com/channels/staff", media.ProviderDefault, "", "https://vimeo.com/channels/staff"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := media.ParseVideoURL(tc.raw)
			if got.Type != tc.wantTyp || got.Key != tc.wantKey || got.URL != tc.wantURL {
				t.Fatalf("unexpected video %+v", got)
			}
		})
	}
}

func TestYouTubeThumbnails(t *testing.T) {
	video := media.ParseVideoURL("https://youtu.be/ABC123")
	want := &media.Thumbnail{
		Path:    "https://img.youtube.com/vi/ABC123/",
		Default: "https://img.youtube.com/vi/ABC123/maxresdefault.jpg",
	}
	if diff := cmp.Diff(want, video.Thumbnail); diff != "" {
		t.Fatalf("unexpected thumbnail (-want +got):\n%s", diff)
	}
	if video.Title != "Video Youtube ABC123" {
		t.Fatalf("unexpected title %q", video.Title)
	}
}

func TestEnrichVimeo(t *testing.T) {
	video := media.EnrichVimeo(media.ParseVideoURL("https://vimeo.com/555"), "Launch", "https://i.vimeocdn.com/video/123-abc-d_100x75")
	if video.Title != "Launch" {
		t.Fatalf("expected title Launch, got %q", video.Title)
	}
	if video.Thumbnail == nil || video.Thumbnail.Path != "https://i.vimeocdn.com/video/123-abc-d_" {
		t.Fatalf("unexpected thumbnail %+v", video.Thumbnail)
	}
	if video.Thumbnail.Default != "https://i.vimeocdn.com/video/123-abc-d_1980" {
		t.Fatalf("unexpected default thumbnail %q", video.Thumbnail.Default)
	}
}

func TestVideoMarshalJSON(t *testing.T) {
	passthrough, err := json.Marshal(media.ParseVideoURL("https://example.com/x.mp4"))
	if err != nil {
		t.Fatalf("marshal passthrough: %v", err)
	}
	if string(passthrough) != `{"type":"default","url":"https://example.com/x.mp4"}` {
		t.Fatalf("unexpected passthrough json %s", passthrough)
	}

	vimeo, err := json.Marshal(media.ParseVideoURL("https://vimeo.com/555"))
	if err != nil {
		t.Fatalf("marshal vimeo: %v", err)
	}
	want := `{"type":"vimeo","key":"555","url":"https://player.vimeo.com/video/555","title":null,"thumbnail":null}`
	if string(vimeo) != want {
		t.Fatalf("unexpected vimeo json %s", vimeo)
	}
}
