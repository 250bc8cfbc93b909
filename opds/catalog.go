package opds

import (
	"encoding/xml"
	"time"
)

type feedLink struct {
	Type string `xml:"type,attr"`
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type Feed struct {
	XMLName xml.Name
	Title   string     `xml:"title"`
	Author  string     `xml:"author>name"`
	Id      string     `xml:"id"`
	Updated string     `xml:"updated"`
	Links   []feedLink `xml:"link"`
	Entries []*Entry
}

// Now is the update time used for generated feeds.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// MakeCatalog creates an OPDS feed with the given entries.  self is the path
// of the feed, and feedType its OPDS kind.  If updatedDate is empty, the
// current time is used.
func MakeCatalog(title, self, feedType string, entries []*Entry, updatedDate string) *Feed {
	if updatedDate == "" {
		updatedDate = Now()
	}
	return &Feed{
		XMLName: xml.Name{Space: atomNamespace, Local: "feed"},
		Title:   title,
		Author:  "Flibusta",
		Id:      "flibusta:" + self,
		Updated: updatedDate,
		Links: []feedLink{
			{
				Type: navigationFeedType,
				Rel:  "start",
				Href: "/opds",
			},
			{
				Type: feedType,
				Rel:  "self",
				Href: self,
			},
			{
				Type: "application/atom+xml",
				Rel:  "search",
				Href: "/opds?q={searchTerms}",
			},
		},
		Entries: entries,
	}
}
