package opds

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/mook/flibusta/model"
)

const (
	atomNamespace   = "http://www.w3.org/2005/Atom"
	dcTermNamespace = "http://purl.org/dc/terms/"

	acquisitionFeedType = "application/atom+xml;profile=opds-catalog;kind=acquisition"
	navigationFeedType  = "application/atom+xml;profile=opds-catalog;kind=navigation"
)

type entryLink struct {
	Type  string `xml:"type,attr"`
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr,omitempty"`
}

type dcTerm struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type entryText struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type Entry struct {
	XMLName xml.Name
	Title   string      `xml:"title"`
	Author  []string    `xml:"author>name,omitempty"`
	Id      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Issued  *dcTerm     `xml:"issued,omitempty"`
	Summary *entryText  `xml:"summary,omitempty"`
	Content *entryText  `xml:"content,omitempty"`
	Links   []entryLink `xml:"link"`
}

// EntryId is the stable identifier of the catalog page at the given URL.
func EntryId(pageURL string) string {
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(pageURL)).String()
}

func newEntry(title, pageURL, updated string) *Entry {
	return &Entry{
		XMLName: xml.Name{Local: "entry", Space: atomNamespace},
		Title:   title,
		Id:      EntryId(pageURL),
		Updated: updated,
	}
}

// MakeEntry creates an acquisition entry for a book; bookURL is the book's
// page on the catalog site.
func MakeEntry(book model.Book, bookURL string, updated string) *Entry {
	entry := newEntry(book.Title, bookURL, updated)
	entry.Author = book.Authors[:]
	if book.HasYear() {
		entry.Issued = &dcTerm{
			XMLName: xml.Name{Space: dcTermNamespace, Local: "issued"},
			Value:   strconv.Itoa(*book.Year),
		}
	}
	if book.Description != nil {
		entry.Summary = &entryText{Type: "text", Value: *book.Description}
	}
	if series := book.Series(); series != nil {
		entry.Content = &entryText{Type: "text", Value: "Серия: " + series.Name}
	}
	entry.Links = []entryLink{
		{
			Type: "application/epub+zip",
			Href: fmt.Sprintf("/get/epub/%s", book.Id),
			Rel:  "http://opds-spec.org/acquisition",
		},
		{
			Type: "image/jpeg",
			Href: fmt.Sprintf("/get/thumb/%s", book.Id),
			Rel:  "http://opds-spec.org/image/thumbnail",
		},
		{
			Type: "text/html",
			Href: bookURL,
			Rel:  "alternate",
		},
	}
	if series := book.Series(); series != nil {
		entry.Links = append(entry.Links, entryLink{
			Type:  acquisitionFeedType,
			Href:  fmt.Sprintf("/opds/series/%s", series.Id),
			Rel:   "related",
			Title: series.Name,
		})
	}
	return entry
}

// MakeAuthorEntry creates a navigation entry leading to an author's books.
func MakeAuthorEntry(author model.Author, authorURL string, updated string) *Entry {
	entry := newEntry(author.Name, authorURL, updated)
	if author.BooksCount > 0 {
		entry.Content = &entryText{Type: "text", Value: fmt.Sprintf("%d книг", author.BooksCount)}
	}
	entry.Links = []entryLink{
		{
			Type: acquisitionFeedType,
			Href: fmt.Sprintf("/opds/author/%s", author.Id),
			Rel:  "subsection",
		},
		{
			Type: navigationFeedType,
			Href: fmt.Sprintf("/opds/author/%s/series", author.Id),
			Rel:  "related",
		},
	}
	return entry
}

// MakeSeriesEntry creates a navigation entry leading to the books in a
// series.
func MakeSeriesEntry(series model.Series, seriesURL string, updated string) *Entry {
	entry := newEntry(series.Name, seriesURL, updated)
	entry.Links = []entryLink{
		{
			Type: acquisitionFeedType,
			Href: fmt.Sprintf("/opds/series/%s", series.Id),
			Rel:  "subsection",
		},
	}
	return entry
}
