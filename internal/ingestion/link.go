package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/swzro/builders/internal/fetch"
	"github.com/swzro/builders/internal/types"
)

// DefaultLinkConcurrency bounds how many links are fetched at once.
const DefaultLinkConcurrency = 4

var platformTypes = map[fetch.Platform]types.DetectedType{
	fetch.PlatformGitHub:  types.TypeCodeHost,
	fetch.PlatformFigma:   types.TypeDesignTool,
	fetch.PlatformNotion:  types.TypeDocumentTool,
	fetch.PlatformYouTube: types.TypeVideo,
	fetch.PlatformWebsite: types.TypeGenericWebsite,
}

// ClassifyLink maps a URL onto its detected source type.
func ClassifyLink(url string) types.DetectedType {
	return platformTypes[fetch.DetectPlatform(url)]
}

// LinkExtractor fetches links and reduces them to readable text.
type LinkExtractor struct {
	FetchOptions *fetch.Options
	// Renderer, when set, re-renders client-side pages and pages with too little text.
	Renderer fetch.Renderer
	// OEmbedEndpoint overrides the YouTube oEmbed endpoint.
	OEmbedEndpoint string
	Concurrency    int
}

// NewLinkExtractor returns an extractor using the given fetch options and optional renderer.
func NewLinkExtractor(opts *fetch.Options, renderer fetch.Renderer) *LinkExtractor {
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	return &LinkExtractor{
		FetchOptions: opts,
		Renderer:     renderer,
		Concurrency:  DefaultLinkConcurrency,
	}
}

// ExtractLink fetches one link. Failures never escape: they become a placeholder text
// so the rest of a batch can proceed.
func (e *LinkExtractor) ExtractLink(ctx context.Context, url string) types.SourceItem {
	platform := fetch.DetectPlatform(url)
	item := types.SourceItem{
		Kind:         types.SourceLink,
		Provenance:   url,
		DetectedType: platformTypes[platform],
	}

	text, err := e.linkText(ctx, url, platform)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("link fetch failed")
		item.Text = fmt.Sprintf("(fetch error: %s)", fetchErrorMessage(err))
		return item
	}
	if strings.TrimSpace(text) == "" {
		text = "(no readable content)"
	}

	item.Text = Truncate(text, MaxItemChars)
	return item
}

// ExtractLinks extracts every link concurrently. Output order matches input order.
func (e *LinkExtractor) ExtractLinks(ctx context.Context, urls []string) []types.SourceItem {
	items := make([]types.SourceItem, len(urls))

	var g errgroup.Group
	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultLinkConcurrency
	}
	g.SetLimit(limit)

	for i, url := range urls {
		g.Go(func() error {
			items[i] = e.ExtractLink(ctx, url)
			return nil
		})
	}
	_ = g.Wait()

	return items
}

func (e *LinkExtractor) linkText(ctx context.Context, url string, platform fetch.Platform) (string, error) {
	if platform == fetch.PlatformYouTube {
		if _, ok := fetch.YouTubeVideoID(url); ok {
			info, err := fetch.YouTubeInfo(ctx, e.OEmbedEndpoint, url, e.FetchOptions)
			if err == nil {
				return info.Text(), nil
			}
			log.Debug().Err(err).Str("url", url).Msg("oEmbed lookup failed, fetching page")
		}
	}

	res, err := fetch.URL(ctx, url, e.FetchOptions)
	if err != nil {
		return "", err
	}

	switch fetch.ClassifyContentType(res.ContentType) {
	case fetch.ContentHTML:
		text := htmlText(res.Body, platform)
		if e.Renderer != nil && (fetch.RendersClientSide(platform) || fetch.ShouldUseBrowser(text)) {
			rendered, rerr := e.Renderer.Render(ctx, url)
			if rerr != nil {
				log.Debug().Err(rerr).Str("url", url).Msg("browser render failed, using HTTP content")
			} else if rt := htmlText(rendered, platform); len(rt) > len(text) {
				text = rt
			}
		}
		return text, nil
	case fetch.ContentJSON, fetch.ContentText:
		return CleanText(res.Body), nil
	default:
		return fmt.Sprintf("(unsupported content type: %s)", fetch.MediaType(res.ContentType)), nil
	}
}

// htmlText combines page metadata with the main readable text.
func htmlText(html string, platform fetch.Platform) string {
	meta := fetch.ExtractMeta(html)
	main, err := fetch.ExtractMainText(html, fetch.PlatformContentSelectors(platform), fetch.PlatformNoiseSelectors(platform)...)
	if err != nil {
		main = ""
	}

	var parts []string
	if meta.Title != "" && !strings.Contains(main, meta.Title) {
		parts = append(parts, "Title: "+meta.Title)
	}
	if meta.Description != "" && !strings.Contains(main, meta.Description) {
		parts = append(parts, "Description: "+meta.Description)
	}
	if main != "" {
		parts = append(parts, main)
	}
	return CleanText(strings.Join(parts, "\n\n"))
}

func fetchErrorMessage(err error) string {
	var fe *fetch.Error
	if errors.As(err, &fe) {
		if fe.Cause != nil {
			return fe.Message + ": " + fe.Cause.Error()
		}
		return fe.Message
	}
	return err.Error()
}
