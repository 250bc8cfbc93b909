package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/mook/flibusta/cache"
	"github.com/mook/flibusta/catalog"
	"github.com/mook/flibusta/config"
	"github.com/mook/flibusta/flibusta"
	"github.com/mook/flibusta/model"
	"github.com/mook/flibusta/opds"
)

const usage = `Usage: flibusta [flags] <command> [arguments]

Commands:
  search-books <query>       Search for books by title or author name
  search-authors <query>     Search for authors by name
  author-books <author id>   List books by an author
  book <book id>             Show the details of a book
  download <book id>         Download the EPUB of a book
  author-series <author id>  List the series of an author
  series-books <series id>   List the books in a series
  serve                      Run the OPDS server

Flags:
`

// app holds everything a command needs.
type app struct {
	cfg     *config.Config
	client  *flibusta.Client
	service *catalog.Service
	pages   *cache.Redis
	limit   int
	sort    model.SortMode
	out     io.Writer
}

func main() {
	configPath := pflag.StringP("config", "c", "", "Path to YAML configuration file")
	verbose := pflag.CountP("verbose", "v", "Produce more detailed messages")
	quiet := pflag.CountP("quiet", "q", "Produce fewer messages")
	baseURL := pflag.String("base-url", "", "Catalog site to use")
	downloadDir := pflag.StringP("download-dir", "d", "", "Directory to save books in")
	addr := pflag.StringP("addr", "a", "", "Address for the OPDS server to listen on")
	limit := pflag.IntP("limit", "n", catalog.DefaultLimit, "Maximum number of books by an author to list")
	sortBy := pflag.StringP("sort", "s", string(model.SortByDate), `Order of books by an author: "date" (newest first) or "default"`)
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	logrus.SetLevel(logrus.Level(int(logrus.InfoLevel) + *verbose - *quiet))
	if pflag.NArg() < 1 {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("error loading configuration: %v", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *downloadDir != "" {
		cfg.DownloadDir = *downloadDir
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	sortMode, err := model.ParseSortMode(*sortBy)
	if err != nil {
		logrus.Fatal(err)
	}

	client := flibusta.NewClient().
		WithBaseURL(cfg.BaseURL).
		WithUserAgent(cfg.UserAgent).
		WithTimeout(cfg.Timeout).
		WithDownloadDir(cfg.DownloadDir)
	var pages *cache.Redis
	if cfg.Redis.Addr != "" {
		pages = cache.NewRedis(cfg.Redis.Addr, cfg.Redis.TTL)
		if err = pages.Ping(context.Background()); err != nil {
			logrus.Warnf("Not caching pages: %v", err)
			_ = pages.Close()
			pages = nil
		} else {
			client.WithCache(pages)
		}
	}

	a := &app{
		cfg:     cfg,
		client:  client,
		service: catalog.NewService(client),
		pages:   pages,
		limit:   *limit,
		sort:    sortMode,
		out:     os.Stdout,
	}
	if err = a.execute(context.Background(), pflag.Arg(0), pflag.Args()[1:]); err != nil {
		logrus.Fatal(err)
	}
}

// execute runs the command, then releases the page cache whether or not the
// command succeeded.
func (a *app) execute(ctx context.Context, command string, args []string) error {
	err := a.run(ctx, command, args)
	if a.pages != nil {
		if closeErr := a.pages.Close(); closeErr != nil {
			logrus.WithError(closeErr).Warn("Could not close page cache")
		}
	}
	return err
}

// argument returns the single argument of a command; queries may span
// several words.
func argument(command string, args []string, joined bool) (string, error) {
	if joined && len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if len(args) != 1 {
		return "", fmt.Errorf("%s takes exactly one argument", command)
	}
	return args[0], nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	if command == "serve" {
		return a.serve(ctx)
	}
	joined := strings.HasPrefix(command, "search-")
	arg, err := argument(command, args, joined)
	if err != nil {
		return err
	}
	switch command {
	case "search-books":
		books, err := a.service.SearchBooks(ctx, arg)
		if err != nil {
			return err
		}
		writeBooks(a.out, books)
	case "search-authors":
		authors, err := a.service.SearchAuthors(ctx, arg)
		if err != nil {
			return err
		}
		writeAuthors(a.out, authors)
	case "author-books":
		books, err := a.service.BooksByAuthor(ctx, arg, a.limit, a.sort)
		if err != nil {
			return err
		}
		writeAuthorBooks(a.out, books, "author", arg)
	case "book":
		book, err := a.service.BookDetails(ctx, arg)
		if err != nil {
			return err
		}
		writeBookDetails(a.out, book)
	case "download":
		path, err := a.service.DownloadBook(ctx, arg)
		if err != nil {
			return fmt.Errorf("failed to download book %s: %w", arg, err)
		}
		fmt.Fprintf(a.out, "Book downloaded successfully: %s\n", path)
	case "author-series":
		series, err := a.service.AuthorSeries(ctx, arg)
		if err != nil {
			return err
		}
		writeSeries(a.out, series, arg)
	case "series-books":
		books, err := a.service.SeriesBooks(ctx, arg)
		if err != nil {
			return err
		}
		writeAuthorBooks(a.out, books, "series", arg)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

// serve runs the OPDS server until interrupted.
func (a *app) serve(ctx context.Context) error {
	server := opds.NewServer(a.service, a.client).WithAddr(a.cfg.ListenAddr).WithLimit(a.limit)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		// Stop the server on shutdown
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		defer signal.Stop(ch)
		select {
		case <-ch:
			logrus.Info("Received interrupt, shutting down...")
		case <-ctx.Done():
		}
		err := server.Shutdown(context.Background())
		cancel()
		if err != nil {
			return fmt.Errorf("error shutting down server: %w", err)
		}
		return nil
	})
	grp.Go(func() error {
		// Start the OPDS server
		logrus.Infof("Serving OPDS catalog on %s", server.Addr)
		err := server.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		cancel()
		return fmt.Errorf("error closing server: %w", err)
	})

	return grp.Wait()
}
