package flibusta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultBaseURL   = "https://flibusta.is"
	DefaultUserAgent = "Mozilla/5.0 (compatible; BookBot/1.0)"
	DefaultTimeout   = 30 * time.Second
)

// PageCache stores fetched pages by URL.
type PageCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, page string) error
}

// Client fetches pages and files from the catalog.
type Client struct {
	baseURL     string // Root of the catalog site
	userAgent   string
	timeout     time.Duration
	downloadDir string // Where downloaded books are saved
	httpClient  *http.Client
	cache       PageCache // Optional
}

// NewClient creates a client for the default catalog site.
func NewClient() *Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New never fails
		panic(err)
	}
	return &Client{
		baseURL:     DefaultBaseURL,
		userAgent:   DefaultUserAgent,
		timeout:     DefaultTimeout,
		downloadDir: ".",
		httpClient:  &http.Client{Jar: jar},
	}
}

func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

func (c *Client) WithUserAgent(userAgent string) *Client {
	c.userAgent = userAgent
	return c
}

func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

func (c *Client) WithDownloadDir(downloadDir string) *Client {
	c.downloadDir = downloadDir
	return c
}

func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

func (c *Client) WithCache(cache PageCache) *Client {
	c.cache = cache
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) DownloadDir() string {
	return c.downloadDir
}

// get issues a GET request; the caller must close the response body.  The
// returned cancel function releases the request deadline and must be called
// once the body is consumed.
func (c *Client) get(ctx context.Context, url string) (*http.Response, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	logrus.Debugf("Fetching %s", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, &TransportError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		cancel()
		return nil, nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, cancel, nil
}

// Fetch returns the text of the page at the given URL, decoded to UTF-8.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if c.cache != nil {
		page, ok, err := c.cache.Get(ctx, url)
		if err != nil {
			logrus.Warnf("could not read %s from cache: %v", url, err)
		} else if ok {
			logrus.Debugf("Using cached %s", url)
			return page, nil
		}
	}

	resp, cancel, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer cancel()
	defer resp.Body.Close()

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &TransportError{URL: url, Err: fmt.Errorf("could not decode page: %w", err)}
	}
	buf, err := io.ReadAll(reader)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	page := string(buf)

	if c.cache != nil {
		if err = c.cache.Set(ctx, url, page); err != nil {
			logrus.Warnf("could not cache %s: %v", url, err)
		}
	}
	return page, nil
}

// Open returns the body of the resource at the given URL, such as a cover
// image.  The caller must close it.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, cancel, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return &cancelingBody{ReadCloser: resp.Body, cancel: cancel}, nil
}

// cancelingBody releases the request context when the body is closed.
type cancelingBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelingBody) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}
