package parser

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/mook/flibusta/model"
)

// "(пер. Имя Фамилия)" marks the linked people as translators.
var translatorMarker = regexp.MustCompile(`\(\s*пер\.`)

// Series links wrap their name in this element.
const seriesNameSelector = "span.h8"

// parseBookBlock builds a book from a link to its page and the element that
// contains it.  It fails if there is no identifier or title.
func parseBookBlock(block, link *goquery.Selection, knownAuthor string) (model.Book, bool) {
	id := hrefId(link, bookHref)
	title := cleanText(link.Text())
	if id == "" || title == "" {
		return model.Book{}, false
	}
	book := model.Book{
		Id:      id,
		Title:   title,
		Authors: blockAuthors(block, knownAuthor),
		Year:    parseYear(block.Text(), yearInParens),
	}
	if series := blockSeries(block); series != nil {
		book.SeriesId = &series.Id
		book.SeriesName = &series.Name
	}
	return book, true
}

// blockAuthors works out the authors of a book.  A known author always takes
// precedence over anything in the markup.  Without one, a block that credits
// a translator cannot tell authors and translators apart, so the author is
// unknown; otherwise every linked author is used.
func blockAuthors(block *goquery.Selection, knownAuthor string) []string {
	if knownAuthor != "" {
		return []string{knownAuthor}
	}
	if translatorMarker.MatchString(block.Text()) {
		return []string{model.UnknownAuthor}
	}
	var authors []string
	seen := make(map[string]struct{})
	linksMatching(block, authorHref).Each(func(_ int, link *goquery.Selection) {
		name := cleanText(link.Text())
		if _, ok := seen[name]; ok || name == "" {
			return
		}
		seen[name] = struct{}{}
		authors = append(authors, name)
	})
	if len(authors) == 0 {
		return []string{model.UnknownAuthor}
	}
	return authors
}

// blockSeries returns the first series linked in the block.  Any later
// series links in the same block are ignored.
func blockSeries(block *goquery.Selection) *model.Series {
	var series *model.Series
	linksMatching(block, seriesHref).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		series = seriesFromLink(link)
		return series == nil
	})
	return series
}

// seriesFromLink reads a series link of the form
// <a href="/s/18510"><span class="h8">Name</span></a>.
func seriesFromLink(link *goquery.Selection) *model.Series {
	span := link.Find(seriesNameSelector).First()
	if span.Length() == 0 {
		return nil
	}
	id := hrefId(link, seriesHref)
	name := cleanText(span.Text())
	if id == "" || name == "" {
		return nil
	}
	return &model.Series{Id: id, Name: name}
}
