package extract

import (
	"bytes"
	"html"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"

	"github.com/hyperifyio/shortly/internal/summarize"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
}

// Options holds the thresholds used by the container heuristics.
type Options struct {
	// MinContainerChars is the text length an article/main container must
	// exceed to be used as the whole page text.
	MinContainerChars int
	// MinParagraphChars is the length a <p> must exceed to count as content
	// in the paragraph fallback.
	MinParagraphChars int
	// MedianRatio keeps paragraphs at least this fraction of the median
	// long-paragraph length.
	MedianRatio float64
}

// DefaultOptions mirrors what works on typical news and blog pages.
func DefaultOptions() Options {
	return Options{MinContainerChars: 200, MinParagraphChars: 40, MedianRatio: 0.4}
}

// ContentSelectors are tried in order after <article>.
var ContentSelectors = []string{
	"main",
	"[role=main]",
	".main-content",
	".article-body",
	".post-content",
	".entry-content",
}

var titlePolicy = bluemonday.StrictPolicy()

// FromHTML extracts readable text using DefaultOptions.
func FromHTML(input []byte) Document {
	return FromHTMLWithOptions(input, DefaultOptions())
}

// FromHTMLWithOptions picks the page text the way a reader would: an
// <article> or well-known content container with enough text, otherwise the
// long paragraphs of the page, otherwise the whole body. The result is
// passed through summarize.Normalize.
func FromHTMLWithOptions(input []byte, opts Options) Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil || doc == nil {
		return Document{}
	}
	title := findTitle(doc)
	return Document{Title: title, Text: summarize.Normalize(pickText(doc, opts))}
}

func findTitle(doc *goquery.Document) string {
	t := strings.TrimSpace(doc.Find("head title").First().Text())
	if t == "" {
		t = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	// Strict policy drops any markup left in the title and escapes entities.
	return strings.TrimSpace(html.UnescapeString(titlePolicy.Sanitize(t)))
}

func pickText(doc *goquery.Document, opts Options) string {
	if text, ok := containerText(doc.Find("article").First(), opts.MinContainerChars); ok {
		return text
	}
	for _, sel := range ContentSelectors {
		if text, ok := containerText(doc.Find(sel).First(), opts.MinContainerChars); ok {
			return text
		}
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		p := strings.TrimSpace(innerText(s))
		if utf8.RuneCountInString(p) > opts.MinParagraphChars {
			paragraphs = append(paragraphs, p)
		}
	})
	if len(paragraphs) == 0 {
		return innerText(doc.Find("body").First())
	}
	return strings.Join(nearMedian(paragraphs, opts.MedianRatio), "\n\n")
}

// nearMedian keeps paragraphs whose length is at least ratio times the median
// length, preserving order.
func nearMedian(paragraphs []string, ratio float64) []string {
	lengths := make([]int, len(paragraphs))
	for i, p := range paragraphs {
		lengths[i] = utf8.RuneCountInString(p)
	}
	sorted := append([]int(nil), lengths...)
	sort.Ints(sorted)
	median := float64(sorted[len(sorted)/2])
	floor := ratio * median
	out := make([]string, 0, len(paragraphs))
	for i, p := range paragraphs {
		if float64(lengths[i]) >= floor {
			out = append(out, p)
		}
	}
	return out
}

func containerText(sel *goquery.Selection, min int) (string, bool) {
	if sel == nil || sel.Length() == 0 {
		return "", false
	}
	text := innerText(sel)
	if utf8.RuneCountInString(strings.TrimSpace(text)) > min {
		return text, true
	}
	return "", false
}

// innerText renders the first node of sel roughly like a browser would:
// block elements start new lines, boilerplate containers are skipped.
func innerText(sel *goquery.Selection) string {
	if sel == nil || len(sel.Nodes) == 0 {
		return ""
	}
	var b strings.Builder
	collectText(&b, sel.Nodes[0], false)
	return normalizeWhitespace(b.String())
}

func collectText(b *strings.Builder, n *xhtml.Node, inPre bool) {
	if n.Type == xhtml.ElementNode {
		if isBoilerplateContainer(n) {
			return
		}
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "template", "nav", "footer", "aside", "iframe":
			return
		case "pre":
			inPre = true
		case "br", "hr":
			b.WriteString("\n")
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol", "div", "section", "blockquote", "tr":
			b.WriteString("\n")
		}
	}

	if n.Type == xhtml.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\n", " ")
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == xhtml.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
			b.WriteString("\n\n")
		case "li", "div", "section", "tr", "pre":
			b.WriteString("\n")
		}
	}
}

// isBoilerplateContainer reports elements that look like cookie or consent banners.
func isBoilerplateContainer(n *xhtml.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "role" && key != "aria-label" && !strings.HasPrefix(key, "data-") {
			continue
		}
		val := strings.ToLower(attr.Val)
		if containsAny(val, []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// normalizeWhitespace trims every line, collapses internal space runs and
// keeps at most one blank line between blocks.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, trimmed)
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
