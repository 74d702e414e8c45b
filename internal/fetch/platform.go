// Package fetch - platform.go provides platform detection and platform-specific selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known hosting platform for build evidence.
type Platform string

const (
	// PlatformGitHub is the GitHub code host
	PlatformGitHub Platform = "github"
	// PlatformFigma is the Figma design tool
	PlatformFigma Platform = "figma"
	// PlatformNotion is the Notion document tool
	PlatformNotion Platform = "notion"
	// PlatformYouTube is the YouTube video platform
	PlatformYouTube Platform = "youtube"
	// PlatformWebsite is any other website
	PlatformWebsite Platform = "website"
)

var platformHosts = []struct {
	platform Platform
	hosts    []string
}{
	{PlatformGitHub, []string{"github.com"}},
	{PlatformFigma, []string{"figma.com"}},
	{PlatformNotion, []string{"notion.so"}},
	{PlatformYouTube, []string{"youtube.com", "youtu.be"}},
}

// DetectPlatform identifies the platform from a URL's host.
// Checks run in a fixed order and the first match wins.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil {
		return PlatformWebsite
	}

	host := strings.ToLower(parsed.Host)
	if host == "" {
		return PlatformWebsite
	}

	for _, entry := range platformHosts {
		for _, h := range entry.hosts {
			if strings.Contains(host, h) {
				return entry.platform
			}
		}
	}

	return PlatformWebsite
}

// RendersClientSide reports whether the platform serves little content without JavaScript.
func RendersClientSide(platform Platform) bool {
	return platform == PlatformFigma || platform == PlatformNotion
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformGitHub:
		return []string{
			"article.markdown-body", // README
			"#readme",
			"[data-testid='repository-container-header']",
			".repository-content",
			"main",
		}
	case PlatformNotion:
		return []string{
			".notion-page-content",
			".notion-frame",
			"main",
			"article",
		}
	case PlatformFigma:
		return []string{
			"[data-testid='community-resource-description']",
			".community_file_description",
			"main",
		}
	case PlatformYouTube:
		return []string{
			"#description",
			"ytd-watch-metadata",
			"main",
		}
	default:
		return DefaultTextSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		// Forms and sign-in prompts
		"form",
		".signup-prompt",
		"[role='dialog']",

		// Social and share buttons
		".social-share",
		".share-buttons",
		".social-links",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformGitHub:
		return append(common,
			".file-navigation",
			".js-repo-nav",
			".BorderGrid-row .Counter",
			"[data-testid='latest-commit']",
			".Box-header",
		)
	case PlatformNotion:
		return append(common,
			".notion-topbar",
			".notion-sidebar",
		)
	case PlatformYouTube:
		return append(common,
			"#comments",
			"#related",
			"ytd-masthead",
		)
	default:
		return common
	}
}
