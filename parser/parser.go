// Package parser extracts books, authors and series from catalog pages.
//
// Every function here is a pure transformation of page text: there is no
// network or filesystem access and no state is kept between calls, so the
// functions may be used concurrently.  Pages that lack an expected section
// give empty results rather than errors.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	authorHref = regexp.MustCompile(`/a/(\d+)`)
	bookHref   = regexp.MustCompile(`/b/(\d+)`)
	seriesHref = regexp.MustCompile(`/s/(\d+)`)
	// A book's own page, without /read, /fb2 or other action suffixes.
	bookPageHref = regexp.MustCompile(`^/b/(\d+)$`)
	yearInParens = regexp.MustCompile(`\((\d{4})\)`)
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

// newDocument parses the page.  The HTML parser accepts any input, so the
// only possible error is from reading, which cannot fail on a string.
func newDocument(page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return doc
}

// cleanText collapses all runs of whitespace into single spaces.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// normalize prepares text for case-insensitive substring matching.
func normalize(text string) string {
	return cases.Fold().String(norm.NFC.String(cleanText(text)))
}

// containsFolded checks if text contains the marker, ignoring case.
func containsFolded(text, marker string) bool {
	return strings.Contains(normalize(text), normalize(marker))
}

// hrefId returns the identifier captured by the pattern in the link's href.
func hrefId(link *goquery.Selection, pattern *regexp.Regexp) string {
	href, ok := link.Attr("href")
	if !ok {
		return ""
	}
	match := pattern.FindStringSubmatch(href)
	if match == nil {
		return ""
	}
	return match[1]
}

// linksMatching returns the anchors under the selection whose href matches
// the pattern, in document order.
func linksMatching(sel *goquery.Selection, pattern *regexp.Regexp) *goquery.Selection {
	return sel.Find("a[href]").FilterFunction(func(_ int, link *goquery.Selection) bool {
		return hrefId(link, pattern) != ""
	})
}

// parseYear returns the four digit year captured by the pattern, if any.
func parseYear(text string, pattern *regexp.Regexp) *int {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	year, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	return &year
}
