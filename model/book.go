package model

// UnknownAuthor is used when the author of a book cannot be determined from
// the markup.
const UnknownAuthor = "Unknown Author"

type Book struct {
	Id            string
	Title         string
	Authors       []string
	Year          *int              `json:",omitempty"`
	Description   *string           `json:",omitempty"`
	FileSize      *string           `json:",omitempty"`
	SeriesName    *string           `json:",omitempty"`
	SeriesId      *string           `json:",omitempty"`
	AddedDate     *AddedDate        `json:",omitempty"`
	CoverURL      *string           `json:",omitempty"`
	DownloadLinks map[string]string `json:",omitempty"`
}

type Author struct {
	Id         string
	Name       string
	BooksCount int
}

// Series is a reference to a series listed on an author or series page.
type Series struct {
	Id   string
	Name string
}

// HasAddedDate reports whether the book carries a date it was added to the
// author listing.
func (b *Book) HasAddedDate() bool {
	return b.AddedDate != nil && *b.AddedDate != ""
}

// HasYear reports whether the book carries a publication year.
func (b *Book) HasYear() bool {
	return b.Year != nil && *b.Year != 0
}

// Series returns the series the book belongs to, if any.
func (b *Book) Series() *Series {
	if b.SeriesId == nil || b.SeriesName == nil {
		return nil
	}
	return &Series{Id: *b.SeriesId, Name: *b.SeriesName}
}

// Ptr returns a pointer to the given value, for filling optional fields.
func Ptr[T any](v T) *T {
	return &v
}
