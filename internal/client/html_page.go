package client

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	sniffLength   = 512
	summaryLength = 120
)

// IsHTMLPage reports whether body is an HTML document rather than a feed.
// Feeds are often served as text/html, so only the content is inspected.
func IsHTMLPage(body string) bool {
	head := body
	if len(head) > sniffLength {
		head = head[:sniffLength]
	}
	head = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(head, "\ufeff")))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// DescribeHTMLPage returns the page title, or the start of its visible text.
func DescribeHTMLPage(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "unparseable HTML page"
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if runes := []rune(text); len(runes) > summaryLength {
		text = string(runes[:summaryLength]) + "..."
	}
	if text == "" {
		return "empty HTML page"
	}
	return text
}
