// Package catalog composes page fetching, parsing and sorting into the
// operations offered to the command line and the OPDS server.
package catalog

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/mook/flibusta/flibusta"
	"github.com/mook/flibusta/model"
	"github.com/mook/flibusta/parser"
)

// Fetcher retrieves catalog pages and files; *flibusta.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Open(ctx context.Context, url string) (io.ReadCloser, error)
	Download(ctx context.Context, url string, suggestedFilename string) (string, error)

	SearchURL(query string) string
	AuthorURL(authorId string, order string) string
	BookURL(bookId string) string
	SeriesURL(seriesId string) string
	DownloadURLs(bookId string) []string
	ResolveURL(link string) string
}

const (
	DefaultLimit     = 50
	maxFilenameRunes = 100
)

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

type Service struct {
	fetcher Fetcher
	logger  *logrus.Logger
}

func NewService(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher, logger: logrus.StandardLogger()}
}

func (s *Service) WithLogger(logger *logrus.Logger) *Service {
	s.logger = logger
	return s
}

// SearchBooks lists the books matching a title or author query.
func (s *Service) SearchBooks(ctx context.Context, query string) ([]model.Book, error) {
	page, err := s.fetcher.Fetch(ctx, s.fetcher.SearchURL(query))
	if err != nil {
		return nil, fmt.Errorf("could not search books for %q: %w", query, err)
	}
	books := parser.ParseBooksSearch(page)
	s.logger.Debugf("Found %d books for %q", len(books), query)
	return books, nil
}

// SearchAuthors lists the authors matching a name query.
func (s *Service) SearchAuthors(ctx context.Context, query string) ([]model.Author, error) {
	page, err := s.fetcher.Fetch(ctx, s.fetcher.SearchURL(query))
	if err != nil {
		return nil, fmt.Errorf("could not search authors for %q: %w", query, err)
	}
	authors := parser.ParseAuthorsSearch(page)
	s.logger.Debugf("Found %d authors for %q", len(authors), query)
	return authors, nil
}

// BooksByAuthor lists up to limit books by the given author.  When sorting
// by date, the site is asked for its date-grouped layout so that the books
// carry the date they were added.
func (s *Service) BooksByAuthor(ctx context.Context, authorId string, limit int, sort model.SortMode) ([]model.Book, error) {
	order := flibusta.OrderDefault
	if sort == model.SortByDate {
		order = flibusta.OrderDate
	}
	page, err := s.fetcher.Fetch(ctx, s.fetcher.AuthorURL(authorId, order))
	if err != nil {
		return nil, fmt.Errorf("could not get books by author %s: %w", authorId, err)
	}
	books := parser.ParseAuthorBooks(page, parser.ParseAuthorName(page))
	s.logger.Debugf("Author %s has %d books (%s layout)", authorId, len(books), parser.DetectLayout(page))
	return model.SortAndLimit(books, limit, sort), nil
}

// BookDetails returns the detail page of a book.  The returned book always
// carries the requested identifier, whatever the page itself links to.
func (s *Service) BookDetails(ctx context.Context, bookId string) (model.Book, error) {
	page, err := s.fetcher.Fetch(ctx, s.fetcher.BookURL(bookId))
	if err != nil {
		return model.Book{}, fmt.Errorf("could not get details of book %s: %w", bookId, err)
	}
	book, ok := parser.ParseBookDetails(page)
	if !ok {
		return model.Book{}, fmt.Errorf("could not read details of book %s", bookId)
	}
	book.Id = bookId
	return book, nil
}

// DownloadBook saves the EPUB of a book, trying each download location in
// turn; it returns the saved path.
func (s *Service) DownloadBook(ctx context.Context, bookId string) (string, error) {
	suggested := fmt.Sprintf("book_%s.epub", bookId)
	if book, err := s.BookDetails(ctx, bookId); err != nil {
		s.logger.Debugf("Using generic file name for book %s: %v", bookId, err)
	} else {
		suggested = SafeFilename(book.Title) + ".epub"
	}

	var lastErr error
	for _, url := range s.fetcher.DownloadURLs(bookId) {
		path, err := s.fetcher.Download(ctx, url, suggested)
		if err == nil {
			s.logger.Debugf("Downloaded book %s to %s", bookId, path)
			return path, nil
		}
		if !flibusta.IsTransportError(err) {
			return "", fmt.Errorf("could not download book %s: %w", bookId, err)
		}
		s.logger.Debugf("Could not download book %s from %s: %v", bookId, url, err)
		lastErr = err
	}
	if lastErr == nil {
		return "", fmt.Errorf("could not download book %s: no download locations", bookId)
	}
	return "", fmt.Errorf("could not download book %s from any location: %w", bookId, lastErr)
}

// AuthorSeries lists the series the author's books belong to.
func (s *Service) AuthorSeries(ctx context.Context, authorId string) ([]model.Series, error) {
	page, err := s.fetcher.Fetch(ctx, s.fetcher.AuthorURL(authorId, flibusta.OrderDefault))
	if err != nil {
		return nil, fmt.Errorf("could not get series by author %s: %w", authorId, err)
	}
	return parser.ParseAuthorSeries(page), nil
}

// SeriesBooks lists the books in a series.
func (s *Service) SeriesBooks(ctx context.Context, seriesId string) ([]model.Book, error) {
	page, err := s.fetcher.Fetch(ctx, s.fetcher.SeriesURL(seriesId))
	if err != nil {
		return nil, fmt.Errorf("could not get books in series %s: %w", seriesId, err)
	}
	return parser.ParseAuthorBooks(page, ""), nil
}

// BookCover opens the cover image of a book.  The caller must close it.
func (s *Service) BookCover(ctx context.Context, bookId string) (io.ReadCloser, error) {
	book, err := s.BookDetails(ctx, bookId)
	if err != nil {
		return nil, err
	}
	if book.CoverURL == nil {
		return nil, fmt.Errorf("book %s has no cover: %w", bookId, ErrNoCover)
	}
	cover, err := s.fetcher.Open(ctx, s.fetcher.ResolveURL(*book.CoverURL))
	if err != nil {
		return nil, fmt.Errorf("could not get cover of book %s: %w", bookId, err)
	}
	return cover, nil
}

// SafeFilename replaces characters that are not allowed in file names, and
// shortens long titles.
func SafeFilename(title string) string {
	safe := unsafeFilenameChars.ReplaceAllString(title, "_")
	if runes := []rune(safe); len(runes) > maxFilenameRunes {
		safe = string(runes[:maxFilenameRunes-3]) + "..."
	}
	return safe
}
