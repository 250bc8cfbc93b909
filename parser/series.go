package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/mook/flibusta/model"
	"github.com/mook/flibusta/util"
)

// ParseAuthorSeries returns the series linked from an author or series page,
// in the order they first appear.
func ParseAuthorSeries(page string) []model.Series {
	var series []model.Series
	linksMatching(newDocument(page).Selection, seriesHref).Each(func(_ int, link *goquery.Selection) {
		if s := seriesFromLink(link); s != nil {
			series = append(series, *s)
		}
	})
	return util.Unique(series, func(s model.Series) string { return s.Id })
}
