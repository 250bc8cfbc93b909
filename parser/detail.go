package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mook/flibusta/model"
)

const (
	mainRegionSelector        = "#main"
	downloadContainerSelector = "div.download-links"
	annotationHeading         = "Аннотация"
	translationMarker         = "Перевод:"
)

var (
	formatSuffix = regexp.MustCompile(`(?i)\s*\((?:fb2|epub|mobi|pdf|djvu|rtf|txt|docx?|html?)\)\s*$`)
	editionYear  = regexp.MustCompile(`(?i)издание\s+(\d{4})\s*г`)
	// Older revisions of the page printed "Год: 2023".
	labeledYear     = regexp.MustCompile(`Год:\s*(\d{4})`)
	fileSizeMatcher = regexp.MustCompile(`(?i)размер файла:\s*(\d+K)`)
	coverSrc        = regexp.MustCompile(`/i/`)
)

// ParseBookDetails reads a book page.  The identifier is taken from links on
// the page; callers that know which book they requested should overwrite it.
// It fails if the page has no title.
func ParseBookDetails(page string) (model.Book, bool) {
	doc := newDocument(page)
	region := mainRegion(doc)
	title := detailTitle(doc)
	if title == "" {
		return model.Book{}, false
	}
	regionText := region.Text()
	book := model.Book{
		Id:            detailId(doc),
		Title:         title,
		Authors:       []string{detailAuthor(region)},
		Year:          detailYear(regionText),
		FileSize:      detailFileSize(regionText),
		Description:   detailDescription(region),
		CoverURL:      detailCover(region),
		DownloadLinks: downloadLinks(doc),
	}
	return book, true
}

// ExtractDownloadLinks returns the download links of a book page, keyed by
// format.
func ExtractDownloadLinks(page string) map[string]string {
	return downloadLinks(newDocument(page))
}

// mainRegion is the content area of a book page, or the whole body if the
// page does not mark one.
func mainRegion(doc *goquery.Document) *goquery.Selection {
	if region := doc.Find(mainRegionSelector).First(); region.Length() > 0 {
		return region
	}
	return doc.Find("body").First()
}

func detailTitle(doc *goquery.Document) string {
	title := cleanText(doc.Find("h1").First().Text())
	return strings.TrimSpace(formatSuffix.ReplaceAllString(title, ""))
}

// detailId finds the book identifier in the download links, falling back to
// any link to a book.
func detailId(doc *goquery.Document) string {
	for _, scope := range []*goquery.Selection{doc.Find(downloadContainerSelector), doc.Selection} {
		if id := hrefId(linksMatching(scope, bookHref).First(), bookHref); id != "" {
			return id
		}
	}
	return ""
}

// detailAuthor takes the first linked author, unless the translation credit
// comes before the link, in which case it is the translator.
func detailAuthor(region *goquery.Selection) string {
	link := linksMatching(region, authorHref).First()
	name := cleanText(link.Text())
	if name == "" {
		return model.UnknownAuthor
	}
	if containsFolded(textBefore(region.Get(0), link.Get(0)), translationMarker) {
		return model.UnknownAuthor
	}
	return name
}

// textBefore returns the text under root that precedes target in document
// order.
func textBefore(root, target *html.Node) string {
	var sb strings.Builder
	var walk func(node *html.Node) bool
	walk = func(node *html.Node) bool {
		if node == target {
			return true
		}
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}
		return false
	}
	walk(root)
	return sb.String()
}

func detailYear(text string) *int {
	if year := parseYear(text, editionYear); year != nil {
		return year
	}
	return parseYear(text, labeledYear)
}

// detailFileSize keeps the size as displayed, such as "1234K".
func detailFileSize(text string) *string {
	match := fileSizeMatcher.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	return &match[1]
}

func detailCover(region *goquery.Selection) *string {
	var cover *string
	region.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if coverSrc.MatchString(src) {
			cover = &src
			return false
		}
		return true
	})
	return cover
}

// detailDescription collects the text after the annotation heading, up to the
// next structural element.
func detailDescription(region *goquery.Selection) *string {
	heading := region.Find(headingSelector).FilterFunction(func(_ int, h *goquery.Selection) bool {
		return containsFolded(h.Text(), annotationHeading)
	}).First()
	if heading.Length() == 0 {
		return nil
	}
	var parts []string
	for node := heading.Get(0).NextSibling; node != nil; node = node.NextSibling {
		if isDescriptionBoundary(node) {
			break
		}
		parts = appendText(parts, node)
	}
	description := cleanText(strings.Join(parts, " "))
	if description == "" {
		return nil
	}
	return &description
}

var descriptionBoundaries = map[atom.Atom]bool{
	atom.H1:    true,
	atom.H2:    true,
	atom.H3:    true,
	atom.H4:    true,
	atom.H5:    true,
	atom.H6:    true,
	atom.Hr:    true,
	atom.Form:  true,
	atom.Table: true,
}

func isDescriptionBoundary(node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	if descriptionBoundaries[node.DataAtom] {
		return true
	}
	for _, attr := range node.Attr {
		if attr.Key == "id" {
			return true
		}
	}
	return false
}

// appendText adds every text node under node, skipping scripts and styles.
func appendText(parts []string, node *html.Node) []string {
	switch {
	case node.Type == html.TextNode:
		return append(parts, node.Data)
	case node.Type != html.ElementNode:
		return parts
	case node.DataAtom == atom.Script || node.DataAtom == atom.Style:
		return parts
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		parts = appendText(parts, child)
	}
	return parts
}

// downloadLinks reads the download container.  A later link of the same
// format replaces an earlier one.
func downloadLinks(doc *goquery.Document) map[string]string {
	links := make(map[string]string)
	doc.Find(downloadContainerSelector).Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if strings.Contains(href, "/epub") {
			links["epub"] = href
		}
		if strings.Contains(href, "/download") {
			links["download"] = href
		}
	})
	return links
}
