// Package render converts model output and stored messages between
// Markdown, sanitised HTML and plain text.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithUnsafe()),
	)
	policy = bluemonday.UGCPolicy()
)

// MarkdownToHTML renders Markdown (raw HTML included) and strips anything
// unsafe for display.
func MarkdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return Sanitize(buf.String()), nil
}

func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// EscapeText prepares a plain-text message for HTML display.
func EscapeText(s string) string {
	s = html.EscapeString(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>")
}

// MessageHTML returns display markup for a stored message body.
func MessageHTML(text string, isHTML bool) string {
	if isHTML {
		return Sanitize(text)
	}
	return EscapeText(text)
}

const blockTags = "p, div, li, h1, h2, h3, h4, h5, h6, tr, pre, blockquote"

// PlainText flattens HTML to readable text, one line per block element.
func PlainText(htmlText string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return htmlText
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockTags).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		sel.PrependHtml("- ")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
