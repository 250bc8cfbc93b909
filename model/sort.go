package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mook/flibusta/util"
)

type SortMode string

const (
	// SortDefault keeps books in the order the catalog lists them.
	SortDefault SortMode = "default"
	// SortByDate puts the most recently added books first.
	SortByDate SortMode = "date"
)

// ParseSortMode converts user input into a SortMode.  The "alphabet" mode of
// the catalog is the order it lists books in, so it maps to SortDefault.
func ParseSortMode(input string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "default", "alphabet":
		return SortDefault, nil
	case "date", "recent", "recency":
		return SortByDate, nil
	}
	return "", fmt.Errorf("unknown sort mode %q", input)
}

// SortBooks returns the books in the order given by the sort mode.  The input
// slice is not modified.
//
// Sorting by date uses the added date when any book has one: dated books come
// first, newest first, followed by the undated ones in their original order.
// Otherwise, if every book has a year, books are sorted by year, newest first.
// Anything else keeps the input order.
func SortBooks(books []Book, mode SortMode) []Book {
	result := append([]Book(nil), books...)
	if mode != SortByDate || len(result) < 2 {
		return result
	}
	hasDate := func(b Book) bool { return b.HasAddedDate() }
	hasYear := func(b Book) bool { return b.HasYear() }
	switch {
	case util.Any(result, hasDate):
		sort.SliceStable(result, func(i, j int) bool {
			left, right := result[i], result[j]
			if !left.HasAddedDate() || !right.HasAddedDate() {
				return left.HasAddedDate() && !right.HasAddedDate()
			}
			return left.AddedDate.SortKey() > right.AddedDate.SortKey()
		})
	case util.All(result, hasYear):
		sort.SliceStable(result, func(i, j int) bool {
			return *result[i].Year > *result[j].Year
		})
	}
	return result
}

// LimitBooks truncates the books to at most limit entries.  A limit of zero
// or less gives no books.
func LimitBooks(books []Book, limit int) []Book {
	if limit <= 0 {
		return []Book{}
	}
	if limit > len(books) {
		limit = len(books)
	}
	return books[:limit]
}

// SortAndLimit sorts the books, then applies the limit.
func SortAndLimit(books []Book, limit int, mode SortMode) []Book {
	return LimitBooks(SortBooks(books, mode), limit)
}
