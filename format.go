package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mook/flibusta/model"
)

func yearSuffix(book model.Book) string {
	if !book.HasYear() {
		return ""
	}
	return fmt.Sprintf(" (%d)", *book.Year)
}

// linkFormats lists the download formats of a book in a stable order.
func linkFormats(book model.Book) []string {
	formats := make([]string, 0, len(book.DownloadLinks))
	for format := range book.DownloadLinks {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func writeBooks(w io.Writer, books []model.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found for the given query.")
		return
	}
	fmt.Fprintf(w, "Found %d books:\n\n", len(books))
	for _, book := range books {
		fmt.Fprintf(w, "• %s by %s%s\n", book.Title, strings.Join(book.Authors, ", "), yearSuffix(book))
		fmt.Fprintf(w, "  ID: %s\n\n", book.Id)
	}
}

func writeAuthors(w io.Writer, authors []model.Author) {
	if len(authors) == 0 {
		fmt.Fprintln(w, "No authors found for the given query.")
		return
	}
	fmt.Fprintf(w, "Found %d authors:\n\n", len(authors))
	for _, author := range authors {
		fmt.Fprintf(w, "• %s - %d books\n", author.Name, author.BooksCount)
		fmt.Fprintf(w, "  ID: %s\n\n", author.Id)
	}
}

// writeAuthorBooks lists the books on an author or series page.
func writeAuthorBooks(w io.Writer, books []model.Book, kind string, id string) {
	if len(books) == 0 {
		fmt.Fprintf(w, "No books found for %s ID: %s\n", kind, id)
		return
	}
	if kind == "series" {
		fmt.Fprintf(w, "Found %d books in this series:\n\n", len(books))
	} else {
		fmt.Fprintf(w, "Found %d books by this %s:\n\n", len(books), kind)
	}
	for _, book := range books {
		fmt.Fprintf(w, "• %s%s\n", book.Title, yearSuffix(book))
		fmt.Fprintf(w, "  ID: %s\n", book.Id)
		if book.HasAddedDate() {
			fmt.Fprintf(w, "  Added: %s\n", *book.AddedDate)
		}
		if series := book.Series(); series != nil {
			fmt.Fprintf(w, "  Series: %s (ID: %s)\n", series.Name, series.Id)
		}
		if len(book.DownloadLinks) > 0 {
			links := make([]string, 0, len(book.DownloadLinks))
			for _, format := range linkFormats(book) {
				links = append(links, fmt.Sprintf("%s (%s)", format, book.DownloadLinks[format]))
			}
			fmt.Fprintf(w, "  Download: %s\n", strings.Join(links, ", "))
		}
		fmt.Fprintln(w)
	}
}

func writeBookDetails(w io.Writer, book model.Book) {
	year, fileSize := "Unknown", "Unknown"
	if book.HasYear() {
		year = fmt.Sprintf("%d", *book.Year)
	}
	if book.FileSize != nil {
		fileSize = *book.FileSize
	}
	fmt.Fprint(w, "Book Details:\n\n")
	fmt.Fprintf(w, "Title: %s\n", book.Title)
	fmt.Fprintf(w, "Authors: %s\n", strings.Join(book.Authors, ", "))
	fmt.Fprintf(w, "Year: %s\n", year)
	fmt.Fprintf(w, "File Size: %s\n", fileSize)
	if series := book.Series(); series != nil {
		fmt.Fprintf(w, "Series: %s (ID: %s)\n", series.Name, series.Id)
	}
	fmt.Fprintln(w)
	if book.Description != nil {
		fmt.Fprintf(w, "Description:\n%s\n\n", *book.Description)
	}
	if len(book.DownloadLinks) > 0 {
		fmt.Fprintln(w, "Download Links:")
		for _, format := range linkFormats(book) {
			fmt.Fprintf(w, "• %s: %s\n", format, book.DownloadLinks[format])
		}
	}
}

func writeSeries(w io.Writer, series []model.Series, authorId string) {
	if len(series) == 0 {
		fmt.Fprintf(w, "No series found for author ID: %s\n", authorId)
		return
	}
	fmt.Fprintf(w, "Found %d series:\n\n", len(series))
	for _, item := range series {
		fmt.Fprintf(w, "• %s\n", item.Name)
		fmt.Fprintf(w, "  ID: %s\n\n", item.Id)
	}
}
