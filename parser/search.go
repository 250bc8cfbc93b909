package parser

import (
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/mook/flibusta/model"
)

// Headings of the search result sections: "Найденные писатели" and
// "Найденные книги".
const (
	writersHeading = "писатели"
	booksHeading   = "книги"
)

var booksCountMatcher = regexp.MustCompile(`\((\d+)\s+книг`)

// resultList finds the list following the first heading that contains the
// marker.  The returned selection is empty if there is no such heading, or no
// list before the next heading.
func resultList(doc *goquery.Document, marker string) *goquery.Selection {
	list := doc.Selection.Slice(0, 0)
	doc.Find(headingSelector).EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if !containsFolded(heading.Text(), marker) {
			return true
		}
		list = heading.NextUntil(headingSelector).Filter("ul, ol").First()
		return false
	})
	return list
}

// ParseAuthorsSearch returns the authors listed on a search results page.
func ParseAuthorsSearch(page string) []model.Author {
	authors := []model.Author{}
	resultList(newDocument(page), writersHeading).ChildrenFiltered("li").Each(func(_ int, item *goquery.Selection) {
		if author, ok := parseAuthorItem(item); ok {
			authors = append(authors, author)
		}
	})
	return authors
}

func parseAuthorItem(item *goquery.Selection) (model.Author, bool) {
	link := linksMatching(item, authorHref).First()
	id := hrefId(link, authorHref)
	if id == "" {
		return model.Author{}, false
	}
	return model.Author{
		Id:         id,
		Name:       cleanText(link.Text()),
		BooksCount: booksCount(item.Text()),
	}, true
}

// booksCount reads the "(630 книг)" count; it is zero when missing.
func booksCount(text string) int {
	match := booksCountMatcher.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	count, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return count
}

// ParseBooksSearch returns the books listed on a search results page.  Search
// results never include the publication year.
func ParseBooksSearch(page string) []model.Book {
	books := []model.Book{}
	resultList(newDocument(page), booksHeading).ChildrenFiltered("li").Each(func(_ int, item *goquery.Selection) {
		if book, ok := parseBookItem(item); ok {
			books = append(books, book)
		}
	})
	return books
}

func parseBookItem(item *goquery.Selection) (model.Book, bool) {
	link := linksMatching(item, bookHref).First()
	id := hrefId(link, bookHref)
	title := cleanText(link.Text())
	if id == "" || title == "" {
		return model.Book{}, false
	}
	var authors []string
	linksMatching(item, authorHref).Each(func(_ int, author *goquery.Selection) {
		if name := cleanText(author.Text()); name != "" {
			authors = append(authors, name)
		}
	})
	if len(authors) == 0 {
		authors = []string{model.UnknownAuthor}
	}
	return model.Book{Id: id, Title: title, Authors: authors}, true
}
