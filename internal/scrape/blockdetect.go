package scrape

import "strings"

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
	BlockDenied     BlockType = "access_denied"
)

// Challenge pages are short; long documents that merely mention these
// phrases are real content.
const maxChallengeLen = 2000

// DetectBlock checks scraped content for signs that the provider returned
// an anti-bot challenge instead of the page. It never fails a scrape; the
// result is only logged.
func DetectBlock(content string) (bool, BlockType) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || len(trimmed) > maxChallengeLen {
		return false, BlockNone
	}

	lower := strings.ToLower(trimmed)

	// Cloudflare challenge page markers.
	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "just a moment") && strings.Contains(lower, "cloudflare") ||
		strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
		return true, BlockCloudflare
	}

	// Captcha markers.
	if strings.Contains(lower, "captcha") {
		return true, BlockCaptcha
	}

	if strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "403 forbidden") ||
		strings.Contains(lower, "attention required") {
		return true, BlockDenied
	}

	// JS-only shell.
	if strings.Contains(lower, "enable javascript") ||
		strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
		return true, BlockJSShell
	}

	return false, BlockNone
}
