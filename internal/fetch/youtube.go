// Package fetch - youtube.go resolves video metadata through the public oEmbed endpoint.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultOEmbedEndpoint is YouTube's oEmbed endpoint.
const DefaultOEmbedEndpoint = "https://www.youtube.com/oembed"

var youTubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`),
}

// YouTubeVideoID extracts the 11-character video ID from the common YouTube URL formats.
func YouTubeVideoID(videoURL string) (string, bool) {
	for _, re := range youTubeIDPatterns {
		if m := re.FindStringSubmatch(videoURL); len(m) > 1 {
			return m[1], true
		}
	}
	return "", false
}

// VideoInfo is the subset of an oEmbed response used to describe a video.
type VideoInfo struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// Text renders the video info as prompt-ready text.
func (v VideoInfo) Text() string {
	var sb strings.Builder
	if v.Title != "" {
		sb.WriteString("Video title: ")
		sb.WriteString(v.Title)
	}
	if v.AuthorName != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Channel: ")
		sb.WriteString(v.AuthorName)
	}
	return sb.String()
}

// YouTubeInfo fetches oEmbed metadata for a video URL from endpoint.
func YouTubeInfo(ctx context.Context, endpoint, videoURL string, opts *Options) (*VideoInfo, error) {
	if endpoint == "" {
		endpoint = DefaultOEmbedEndpoint
	}
	q := url.Values{}
	q.Set("url", videoURL)
	q.Set("format", "json")

	res, err := URL(ctx, endpoint+"?"+q.Encode(), opts)
	if err != nil {
		return nil, err
	}

	var info VideoInfo
	if err := json.Unmarshal([]byte(res.Body), &info); err != nil {
		return nil, &Error{URL: videoURL, Message: "invalid oEmbed response", Cause: err}
	}
	if info.Title == "" {
		return nil, &Error{URL: videoURL, Message: fmt.Sprintf("no title in oEmbed response from %s", endpoint)}
	}
	return &info, nil
}
