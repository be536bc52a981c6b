// Package richtext normalizes user-entered text: pasted HTML in book
// descriptions becomes Markdown, and comments are reduced to plain text.
package richtext

import (
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// htmlTagPattern detects the tags editors and web pages typically paste.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|u|strong|em|a|ul|ol|li|h[1-6]|blockquote|table|tr|td)[\s>/]`)

var whitespace = regexp.MustCompile(`\s+`)

// ContainsHTML reports whether s looks like HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// ToMarkdown converts HTML to Markdown. Text without markup is only
// trimmed; a failed conversion falls back to PlainText.
func ToMarkdown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return PlainText(s)
	}
	return strings.TrimSpace(markdown)
}

// PlainText strips tags, decodes entities and collapses whitespace.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(whitespace.ReplaceAllString(b.String(), " "))
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch tag := string(name); tag {
			case "br", "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteByte(' ')
			case "script", "style":
				// Drop their contents along with the tag.
				if tt == html.StartTagToken {
					skipUntilEnd(z, tag)
				}
			}
		}
	}
}

func skipUntilEnd(z *html.Tokenizer, tag string) {
	for {
		switch z.Next() {
		case html.ErrorToken:
			return
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				return
			}
		}
	}
}

// Excerpt shortens s to at most n runes, cutting at a word boundary when
// one is near and appending an ellipsis.
func Excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndexAny(cut, " \n\t"); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:-") + "…"
}
