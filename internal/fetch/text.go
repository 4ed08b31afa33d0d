package fetch

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// MaxFallbackDescription caps description text taken from main or body.
const MaxFallbackDescription = 5000

var descriptionClassPattern = regexp.MustCompile(`(?i)(description|details|content)`)

// VisibleText returns the text under sel with each text node trimmed and joined by single
// spaces. Script, style and noscript content is skipped.
func VisibleText(sel *goquery.Selection) string {
	return CollapseWhitespace(strings.Join(TextNodes(sel), " "))
}

// TextNodes returns the trimmed, non-empty visible text nodes under sel in document order.
func TextNodes(sel *goquery.Selection) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				out = append(out, t)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}

// CollapseWhitespace replaces every run of whitespace with a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// HasClass reports whether any class token of sel matches pattern.
func HasClass(sel *goquery.Selection, pattern *regexp.Regexp) bool {
	class, ok := sel.Attr("class")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(class) {
		if pattern.MatchString(token) {
			return true
		}
	}
	return false
}

// ExtractDescription returns the description text of a detail page. Known job board platforms
// use their own selectors; otherwise the first div whose class mentions description, details or
// content wins, then the first such section, falling back to main or body truncated to MaxFallbackDescription.
func ExtractDescription(body []byte, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", &Error{URL: pageURL, Message: "failed to parse HTML", Cause: err}
	}
	doc.Find("script, style, noscript").Remove()

	platform := DetectPlatform(pageURL)
	if platform != PlatformUnknown {
		doc.Find(strings.Join(PlatformNoiseSelectors(platform), ", ")).Remove()
		for _, selector := range PlatformDescriptionSelectors(platform) {
			if text := VisibleText(doc.Find(selector).First()); text != "" {
				return text, nil
			}
		}
	}

	for _, tag := range []string{"div", "section"} {
		block := doc.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return HasClass(s, descriptionClassPattern)
		}).First()
		if block.Length() > 0 {
			return VisibleText(block), nil
		}
	}

	fallback := doc.Find("main").First()
	if fallback.Length() == 0 {
		fallback = doc.Find("body").First()
	}
	return TruncateRunes(VisibleText(fallback), MaxFallbackDescription), nil
}
