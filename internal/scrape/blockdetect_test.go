package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		blocked bool
		kind    BlockType
	}{
		{"empty", "   ", false, BlockNone},
		{"normal page", "# Acme\n\nWe build widgets for industrial customers.", false, BlockNone},
		{"cloudflare check", "Checking your browser before accessing acme.com", true, BlockCloudflare},
		{"cloudflare moment", "Just a moment...\nPerformance & security by Cloudflare", true, BlockCloudflare},
		{"captcha", "Please solve the CAPTCHA to continue", true, BlockCaptcha},
		{"denied", "Access Denied\nYou don't have permission", true, BlockDenied},
		{"js shell", "<noscript>You need to enable JavaScript to run this app.</noscript>", true, BlockJSShell},
		{"long page mentioning captcha", strings.Repeat("Real article text. ", 150) + "captcha", false, BlockNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, kind := DetectBlock(tt.content)
			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, tt.kind, kind)
		})
	}
}
