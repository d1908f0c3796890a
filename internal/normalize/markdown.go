// Package normalize turns provider output into Markdown and renders the
// HTML preview.
package normalize

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/sells-group/scrape-playground/internal/model"
)

// IsLikelyHTML reports whether content looks like HTML rather than Markdown.
func IsLikelyHTML(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "<")
}

// Elements dropped before conversion; they never carry readable content.
const noiseSelector = "head, script, style, noscript, template"

var converterOptions = &md.Options{
	HeadingStyle:     "atx",
	CodeBlockStyle:   "fenced",
	Fence:            "```",
	BulletListMarker: "-",
	EmDelimiter:      "_",
	StrongDelimiter:  "**",
	LinkStyle:        "inlined",
}

// HTMLToMarkdown converts HTML to Markdown with ATX headings, keeping
// links and images as inline Markdown links.
func HTMLToMarkdown(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", &model.ConversionError{Op: "html_to_markdown", Err: err}
	}
	doc.Find(noiseSelector).Remove()

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", &model.ConversionError{Op: "html_to_markdown", Err: err}
	}

	opts := *converterOptions
	converter := md.NewConverter("", true, &opts)
	out, err := converter.ConvertString(body)
	if err != nil {
		return "", &model.ConversionError{Op: "html_to_markdown", Err: err}
	}
	return strings.TrimSpace(out), nil
}

var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	// Raw HTML passes through so embedded screenshots render in the preview.
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// MarkdownToHTML renders Markdown to an HTML fragment.
func MarkdownToHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(content), &buf); err != nil {
		return "", &model.ConversionError{Op: "markdown_to_html", Err: err}
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

var imageRe = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)

// ResolveRelativeImages rewrites Markdown image targets that are not
// already absolute (http, https, data) into absolute URLs resolved
// against baseURL. Everything else in content is left as is.
func ResolveRelativeImages(content, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return content
	}

	return imageRe.ReplaceAllStringFunc(content, func(match string) string {
		m := imageRe.FindStringSubmatch(match)
		alt, target, title := m[1], m[2], ""
		// A target may be followed by an optional quoted title.
		if i := strings.IndexAny(target, " \t"); i >= 0 {
			target, title = target[:i], target[i:]
		}
		if hasAbsoluteScheme(target) {
			return match
		}
		ref, err := url.Parse(target)
		if err != nil {
			return match
		}
		return "![" + alt + "](" + base.ResolveReference(ref).String() + title + ")"
	})
}

func hasAbsoluteScheme(target string) bool {
	for _, prefix := range []string{"http://", "https://", "data:"} {
		if strings.HasPrefix(target, prefix) {
			return true
		}
	}
	return false
}
