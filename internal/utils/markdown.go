package utils

import (
	"bytes"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

const renderedTTL = 10 * time.Minute

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown converts a post body to sanitized HTML.
func RenderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}

	sanitized := policy.SanitizeBytes(buf.Bytes())

	return EnhanceHTMLContent(string(sanitized))
}

// RenderMarkdownCached is RenderMarkdown memoized under key. Callers put a
// version (e.g. the post's UpdatedAt) in the key so edits miss the cache.
func RenderMarkdownCached(key, source string) template.HTML {
	if cached := GetCache().Get(key); cached != nil {
		if h, ok := cached.(template.HTML); ok {
			return h
		}
	}
	h := RenderMarkdown(source)
	GetCache().Set(key, h, renderedTTL)
	return h
}
