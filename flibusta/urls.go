package flibusta

import (
	"net/url"
	"strings"
)

// Author page orders.
const (
	OrderDefault = ""
	OrderDate    = "date"
)

func (c *Client) resolve(path string) string {
	return strings.TrimRight(c.baseURL, "/") + path
}

// SearchURL is the page listing authors and books matching the query.
func (c *Client) SearchURL(query string) string {
	return c.resolve("/booksearch?ask=" + url.QueryEscape(query))
}

// AuthorURL is the page listing the books of an author, in the given order.
func (c *Client) AuthorURL(authorId string, order string) string {
	path := "/a/" + url.PathEscape(authorId)
	if order != OrderDefault {
		path += "?order=" + url.QueryEscape(order)
	}
	return c.resolve(path)
}

func (c *Client) BookURL(bookId string) string {
	return c.resolve("/b/" + url.PathEscape(bookId))
}

func (c *Client) SeriesURL(seriesId string) string {
	return c.resolve("/s/" + url.PathEscape(seriesId))
}

// DownloadURLs lists the URLs a book file may be downloaded from, in the
// order they should be tried.
func (c *Client) DownloadURLs(bookId string) []string {
	book := c.BookURL(bookId)
	return []string{book + "/epub", book + "/download"}
}

// ResolveURL makes a link found on a catalog page absolute.
func (c *Client) ResolveURL(link string) string {
	target, err := url.Parse(link)
	if err != nil {
		return link
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return link
	}
	return base.ResolveReference(target).String()
}
