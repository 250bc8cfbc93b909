package catalog

import "errors"

// ErrNoCover is returned when a book page does not show a cover image.
var ErrNoCover = errors.New("no cover image")
