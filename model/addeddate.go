package model

import (
	"regexp"
	"strings"
)

// AddedDate is the date a book was added to an author listing, kept in the
// DD.MM.YYYY form the catalog displays it in.
type AddedDate string

var addedDateMatcher = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}`)

// IsAddedDate checks whether the text starts with a DD.MM.YYYY date.
func IsAddedDate(text string) bool {
	return addedDateMatcher.MatchString(text)
}

// Valid reports whether the date is in DD.MM.YYYY form.
func (d AddedDate) Valid() bool {
	return IsAddedDate(string(d))
}

// SortKey returns the date as YYYY.MM.DD so that dates compare correctly as
// strings.  Dates that do not have three parts are returned unchanged.
func (d AddedDate) SortKey() string {
	parts := strings.Split(string(d), ".")
	if len(parts) != 3 {
		return string(d)
	}
	return parts[2] + "." + parts[1] + "." + parts[0]
}

func (d AddedDate) String() string {
	return string(d)
}
