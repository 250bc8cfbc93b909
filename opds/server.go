package opds

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"

	"github.com/mook/flibusta/catalog"
	"github.com/mook/flibusta/flibusta"
	"github.com/mook/flibusta/model"
)

// Library is the set of catalog operations the server exposes;
// *catalog.Service implements it.
type Library interface {
	SearchBooks(ctx context.Context, query string) ([]model.Book, error)
	SearchAuthors(ctx context.Context, query string) ([]model.Author, error)
	BooksByAuthor(ctx context.Context, authorId string, limit int, sort model.SortMode) ([]model.Book, error)
	AuthorSeries(ctx context.Context, authorId string) ([]model.Series, error)
	SeriesBooks(ctx context.Context, seriesId string) ([]model.Book, error)
	DownloadBook(ctx context.Context, bookId string) (string, error)
	BookCover(ctx context.Context, bookId string) (io.ReadCloser, error)
}

// Pages builds links to the catalog site; used for entry identifiers.
type Pages interface {
	AuthorURL(authorId string, order string) string
	BookURL(bookId string) string
	SeriesURL(seriesId string) string
}

type Server struct {
	*http.Server
	library Library
	pages   Pages
	limit   int // Default number of books per author feed
}

func NewServer(library Library, pages Pages) *Server {
	mux := http.NewServeMux()
	server := &Server{
		Server:  &http.Server{Handler: mux},
		library: library,
		pages:   pages,
		limit:   catalog.DefaultLimit,
	}
	mux.HandleFunc("GET /opds", server.HandleSearchBooks)
	mux.HandleFunc("GET /opds/authors", server.HandleSearchAuthors)
	mux.HandleFunc("GET /opds/author/{id}", server.HandleAuthorBooks)
	mux.HandleFunc("GET /opds/author/{id}/series", server.HandleAuthorSeries)
	mux.HandleFunc("GET /opds/series/{id}", server.HandleSeriesBooks)
	mux.HandleFunc("GET /get/epub/{id}", server.HandleDownload)
	mux.HandleFunc("GET /get/thumb/{id}", server.HandleThumb)

	return server
}

func (s *Server) WithAddr(addr string) *Server {
	s.Addr = addr
	return s
}

func (s *Server) WithLimit(limit int) *Server {
	s.limit = limit
	return s
}

func writeError(w http.ResponseWriter, statusCode int, msg string) {
	w.WriteHeader(statusCode)
	if _, err := io.WriteString(w, msg); err != nil {
		logrus.Warnf("Error writing error response %s: %v", msg, err)
	}
}

// writeFailure reports a failed catalog operation; failures reaching the
// catalog site are reported as a bad gateway.
func writeFailure(w http.ResponseWriter, err error) {
	logrus.Errorf("%v", err)
	var transportErr *flibusta.TransportError
	if errors.As(err, &transportErr) {
		if transportErr.StatusCode == http.StatusNotFound {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeFeed(w http.ResponseWriter, feed *Feed, feedType string) {
	buf, err := xml.Marshal(feed)
	if err != nil {
		logrus.Errorf("Failed to marshal feed %s: %v", feed.Id, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error rendering catalog: %v", err))
		return
	}
	w.Header().Set("Content-Type", feedType)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(buf)
}

func (s *Server) bookEntries(books []model.Book) []*Entry {
	updated := Now()
	entries := make([]*Entry, 0, len(books))
	for _, book := range books {
		entries = append(entries, MakeEntry(book, s.pages.BookURL(book.Id), updated))
	}
	return entries
}

// HandleSearchBooks handles requests for path /opds?q=
func (s *Server) HandleSearchBooks(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query().Get("q")
	if query == "" {
		writeFeed(w, MakeCatalog("Flibusta", "/opds", navigationFeedType, []*Entry{}, ""), navigationFeedType)
		return
	}
	books, err := s.library.SearchBooks(req.Context(), query)
	if err != nil {
		writeFailure(w, err)
		return
	}
	feed := MakeCatalog(fmt.Sprintf("Книги: %s", query), req.URL.RequestURI(), acquisitionFeedType, s.bookEntries(books), "")
	writeFeed(w, feed, acquisitionFeedType)
}

// HandleSearchAuthors handles requests for path /opds/authors?q=
func (s *Server) HandleSearchAuthors(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Missing search query")
		return
	}
	authors, err := s.library.SearchAuthors(req.Context(), query)
	if err != nil {
		writeFailure(w, err)
		return
	}
	updated := Now()
	entries := make([]*Entry, 0, len(authors))
	for _, author := range authors {
		entries = append(entries, MakeAuthorEntry(author, s.pages.AuthorURL(author.Id, flibusta.OrderDefault), updated))
	}
	feed := MakeCatalog(fmt.Sprintf("Авторы: %s", query), req.URL.RequestURI(), navigationFeedType, entries, updated)
	writeFeed(w, feed, navigationFeedType)
}

// HandleAuthorBooks handles requests for path /opds/author/:id, optionally
// with sort and limit parameters.
func (s *Server) HandleAuthorBooks(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	sort, err := model.ParseSortMode(req.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := s.limit
	if value := req.URL.Query().Get("limit"); value != "" {
		if limit, err = strconv.Atoi(value); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to convert %s to a limit", value))
			return
		}
	}
	books, err := s.library.BooksByAuthor(req.Context(), id, limit, sort)
	if err != nil {
		writeFailure(w, err)
		return
	}
	title := fmt.Sprintf("Автор %s", id)
	if len(books) > 0 && len(books[0].Authors) > 0 {
		title = books[0].Authors[0]
	}
	feed := MakeCatalog(title, req.URL.RequestURI(), acquisitionFeedType, s.bookEntries(books), "")
	writeFeed(w, feed, acquisitionFeedType)
}

// HandleAuthorSeries handles requests for path /opds/author/:id/series
func (s *Server) HandleAuthorSeries(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	series, err := s.library.AuthorSeries(req.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	updated := Now()
	entries := make([]*Entry, 0, len(series))
	for _, item := range series {
		entries = append(entries, MakeSeriesEntry(item, s.pages.SeriesURL(item.Id), updated))
	}
	feed := MakeCatalog(fmt.Sprintf("Серии автора %s", id), req.URL.RequestURI(), navigationFeedType, entries, updated)
	writeFeed(w, feed, navigationFeedType)
}

// HandleSeriesBooks handles requests for path /opds/series/:id
func (s *Server) HandleSeriesBooks(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	books, err := s.library.SeriesBooks(req.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	title := fmt.Sprintf("Серия %s", id)
	if len(books) > 0 && books[0].SeriesName != nil {
		title = *books[0].SeriesName
	}
	feed := MakeCatalog(title, req.URL.RequestURI(), acquisitionFeedType, s.bookEntries(books), "")
	writeFeed(w, feed, acquisitionFeedType)
}

// HandleDownload handles requests for path /get/epub/:id
func (s *Server) HandleDownload(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	filePath, err := s.library.DownloadBook(req.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Missing epub for book id %s", id))
		} else {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Could not read epub for book id %s", id))
		}
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "application/epub+zip")
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(filePath)})
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	_, _ = io.Copy(w, file) // Ignore any errors
}

// HandleThumb handles requests for /get/thumb/:id
func (s *Server) HandleThumb(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	cover, err := s.library.BookCover(req.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNoCover) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Missing cover for book id %s", id))
			return
		}
		writeFailure(w, err)
		return
	}
	defer cover.Close()

	img, _, err := image.Decode(cover)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to decode cover image")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	_ = jpeg.Encode(w, Thumbnail(img), nil) // Ignore any errors
}

// Thumbnail scales an image to fit within 60x80, keeping its aspect ratio.
func Thumbnail(img image.Image) image.Image {
	aspect := float64(img.Bounds().Dx()*80) / float64(img.Bounds().Dy()*60)
	width := 60
	height := 80
	if aspect > 1 {
		// Picture is squat, scale down the height
		height = max(1, int(float64(height)/aspect))
	} else {
		// Picture is tall, scale down the width
		width = max(1, int(float64(width)*aspect))
	}

	thumb := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, img.Bounds(), draw.Src, nil)
	return thumb
}
