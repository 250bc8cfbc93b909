package flibusta

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fallback for Content-Disposition headers that mime cannot parse, such as
// unquoted names containing spaces.
var dispositionFilename = regexp.MustCompile(`filename\*?=['"]?([^'";]+)`)

// Download saves the file at the given URL into the download directory,
// returning the path it was saved to.  The name sent by the server is used if
// there is one; otherwise the suggested name is used.
func (c *Client) Download(ctx context.Context, url string, suggestedFilename string) (string, error) {
	resp, cancel, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer cancel()
	defer resp.Body.Close()

	filename := safeFilename(responseFilename(resp.Header.Get("Content-Disposition")))
	if filename == "" {
		filename = safeFilename(suggestedFilename)
	}
	if filename == "" {
		return "", fmt.Errorf("no file name for %s", url)
	}

	if err = os.MkdirAll(c.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create download directory %s: %w", c.downloadDir, err)
	}
	filePath := filepath.Join(c.downloadDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("could not create %s: %w", filePath, err)
	}
	if _, err = io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(filePath)
		return "", &TransportError{URL: url, Err: err}
	}
	if err = file.Close(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("could not close %s: %w", filePath, err)
	}
	logrus.Debugf("Saved %s to %s", url, filePath)
	return filePath, nil
}

// responseFilename extracts the file name from a Content-Disposition header.
func responseFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	if match := dispositionFilename.FindStringSubmatch(disposition); match != nil {
		return match[1]
	}
	return ""
}

// safeFilename strips any directories from a name, so that it stays within
// the download directory.
func safeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
