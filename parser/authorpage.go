package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/mook/flibusta/model"
)

// Layout is the way an author page groups its books.
type Layout int

const (
	// LayoutSeriesGrouped lists books grouped under their series.
	LayoutSeriesGrouped Layout = iota
	// LayoutDateGrouped lists books under headers with the date they were
	// added, most recent first.
	LayoutDateGrouped
)

func (l Layout) String() string {
	if l == LayoutDateGrouped {
		return "date-grouped"
	}
	return "series-grouped"
}

// Date headers on date-grouped pages.
const dateHeaderSelector = "h4"

// Link labels of the read and download actions listed next to each book.
var actionLabels = map[string]struct{}{
	"(читать)":       {},
	"(fb2)":          {},
	"(epub)":         {},
	"(mobi)":         {},
	"(скачать epub)": {},
	"(скачать pdf)":  {},
}

// DetectLayout decides how the author page groups its books.
func DetectLayout(page string) Layout {
	return detectLayout(newDocument(page))
}

// detectLayout looks only at the first date header candidate: if it holds a
// date the whole page is date-grouped.
func detectLayout(doc *goquery.Document) Layout {
	first := doc.Find(dateHeaderSelector).First()
	if first.Length() > 0 && model.IsAddedDate(cleanText(first.Text())) {
		return LayoutDateGrouped
	}
	return LayoutSeriesGrouped
}

// ParseAuthorName returns the name in the heading of an author page.
func ParseAuthorName(page string) string {
	return cleanText(newDocument(page).Find("h1").First().Text())
}

// ParseAuthorBooks returns the books on an author (or series) page, each book
// once.  If knownAuthor is not empty it is used as the only author of every
// book.  Books on date-grouped pages carry the date they were added.
func ParseAuthorBooks(page string, knownAuthor string) []model.Book {
	doc := newDocument(page)
	if detectLayout(doc) == LayoutDateGrouped {
		return parseDateGroupedBooks(doc, knownAuthor)
	}
	return parseSeriesGroupedBooks(doc, knownAuthor)
}

// bookPageLinks returns the links to book pages, skipping action links.
func bookPageLinks(sel *goquery.Selection) *goquery.Selection {
	return linksMatching(sel, bookPageHref).FilterFunction(func(_ int, link *goquery.Selection) bool {
		_, isAction := actionLabels[cleanText(link.Text())]
		return !isAction
	})
}

func parseDateGroupedBooks(doc *goquery.Document, knownAuthor string) []model.Book {
	books := []model.Book{}
	seen := make(map[string]struct{})
	var current model.AddedDate

	doc.Find(dateHeaderSelector + ", div").Each(func(_ int, element *goquery.Selection) {
		if element.Is(dateHeaderSelector) {
			if text := cleanText(element.Text()); model.IsAddedDate(text) {
				current = model.AddedDate(text[:len("DD.MM.YYYY")])
			}
			return
		}
		if current == "" {
			return
		}
		bookPageLinks(element).Each(func(_ int, link *goquery.Selection) {
			// Links inside nested containers are handled with that container.
			if !link.Closest("div").IsSelection(element) {
				return
			}
			id := hrefId(link, bookPageHref)
			if _, ok := seen[id]; ok {
				return
			}
			book, ok := parseBookBlock(element, link, knownAuthor)
			if !ok {
				return
			}
			book.AddedDate = model.Ptr(current)
			books = append(books, book)
			seen[id] = struct{}{}
		})
	})
	return books
}

func parseSeriesGroupedBooks(doc *goquery.Document, knownAuthor string) []model.Book {
	books := []model.Book{}
	seen := make(map[string]struct{})

	bookPageLinks(doc.Selection).Each(func(_ int, link *goquery.Selection) {
		id := hrefId(link, bookPageHref)
		if _, ok := seen[id]; ok {
			return
		}
		book, ok := parseBookBlock(link.Parent(), link, knownAuthor)
		if !ok {
			return
		}
		books = append(books, book)
		seen[id] = struct{}{}
	})
	return books
}
