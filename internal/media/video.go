package media

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	ProviderDefault = "default"
	ProviderYouTube = "youtube"
	ProviderVimeo   = "vimeo"
)

var (
	youtuShortPattern = regexp.MustCompile(`youtu\.\w*/([\w-]+)`)
	youtubeIDPattern  = regexp.MustCompile(`v=([\w-]+)`)
	vimeoIDPattern    = regexp.MustCompile(`vimeo\.com/(\d+)`)
	vimeoThumbSuffix  = regexp.MustCompile(`-d_(.*)`)
)

// Video describes an embeddable video extracted from a movie field URL.
type Video struct {
	Type      string
	Key       string
	URL       string
	Title     string
	Thumbnail *Thumbnail
}

// Thumbnail holds a thumbnail base path and its default rendition.
type Thumbnail struct {
	Path    string `json:"path"`
	Default string `json:"default"`
}

// IsDefault reports whether the URL is passed through untouched.
func (v Video) IsDefault() bool {
	return v.Type == ProviderDefault
}

// MarshalJSON encodes provider videos as {type, key, url, title, thumbnail}
// and passthrough videos as {type, url}.
func (v Video) MarshalJSON() ([]byte, error) {
	if v.IsDefault() || v.Type == "" {
		return json.Marshal(struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		}{Type: ProviderDefault, URL: v.URL})
	}
	var title *string
	if v.Title != "" {
		title = &v.Title
	}
	return json.Marshal(struct {
		Type      string     `json:"type"`
		Key       string     `json:"key"`
		URL       string     `json:"url"`
		Title     *string    `json:"title"`
		Thumbnail *Thumbnail `json:"thumbnail"`
	}{v.Type, v.Key, v.URL, title, v.Thumbnail})
}

// ParseVideoURL sniffs YouTube and Vimeo URLs. Anything it cannot extract an
// identifier from degrades to a passthrough video.
func ParseVideoURL(raw string) Video {
	trimmed := strings.TrimSpace(raw)
	passthrough := Video{Type: ProviderDefault, URL: trimmed}
	if trimmed == "" {
		return passthrough
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "youtu."):
		if key := firstGroup(youtuShortPattern, trimmed); key != "" {
			return youtubeVideo(key)
		}
	case strings.Contains(lower, "youtube"):
		if key := firstGroup(youtubeIDPattern, trimmed); key != "" {
			return youtubeVideo(key)
		}
	case strings.Contains(lower, "vimeo.com"):
		if key := firstGroup(vimeoIDPattern, trimmed); key != "" {
			return Video{
				Type: ProviderVimeo,
				Key:  key,
				URL:  "https://player.vimeo.com/video/" + key,
			}
		}
	}
	return passthrough
}

func youtubeVideo(key string) Video {
	path := "https://img.youtube.com/vi/" + key + "/"
	return Video{
		Type:  ProviderYouTube,
		Key:   key,
		URL:   "https://www.youtube.com/embed/" + key,
		Title: "Video Youtube " + key,
		Thumbnail: &Thumbnail{
			Path:    path,
			Default: path + "maxresdefault.jpg",
		},
	}
}

// EnrichVimeo applies provider metadata to a Vimeo video. The small
// thumbnail URL is cut after its "-d_" marker to obtain a sizeable path.
func EnrichVimeo(video Video, title, thumbnailSmall string) Video {
	video.Title = strings.TrimSpace(title)
	if thumbnailSmall = strings.TrimSpace(thumbnailSmall); thumbnailSmall != "" {
		path := vimeoThumbSuffix.ReplaceAllString(thumbnailSmall, "-d_")
		video.Thumbnail = &Thumbnail{Path: path, Default: path + "1980"}
	}
	return video
}

func firstGroup(pattern *regexp.Regexp, value string) string {
	matches := pattern.FindStringSubmatch(value)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}
