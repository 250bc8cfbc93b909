package model_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mook/flibusta/model"
	"github.com/mook/flibusta/util"
)

func dated(id, date string) model.Book {
	book := model.Book{Id: id, Title: "Книга " + id, Authors: []string{model.UnknownAuthor}}
	if date != "" {
		book.AddedDate = model.Ptr(model.AddedDate(date))
	}
	return book
}

func published(id string, year int) model.Book {
	book := model.Book{Id: id, Title: "Книга " + id, Authors: []string{model.UnknownAuthor}}
	if year != 0 {
		book.Year = model.Ptr(year)
	}
	return book
}

func ids(books []model.Book) []string {
	return util.Map(books, func(b model.Book) string { return b.Id })
}

func TestParseSortMode(t *testing.T) {
	for input, expected := range map[string]model.SortMode{
		"":         model.SortDefault,
		"default":  model.SortDefault,
		"alphabet": model.SortDefault,
		"date":     model.SortByDate,
		" DATE ":   model.SortByDate,
		"recency":  model.SortByDate,
	} {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			mode, err := model.ParseSortMode(input)
			require.NoError(t, err)
			assert.Equal(t, expected, mode)
		})
	}
	_, err := model.ParseSortMode("popularity")
	assert.Error(t, err)
}

func TestSortBooks(t *testing.T) {
	t.Run("by added date", func(t *testing.T) {
		books := []model.Book{
			dated("1", "11.06.2025"),
			dated("2", ""),
			dated("3", "17.06.2025"),
			dated("4", "01.01.2026"),
			dated("5", ""),
		}
		sorted := model.SortBooks(books, model.SortByDate)
		assert.Equal(t, []string{"4", "3", "1", "2", "5"}, ids(sorted))
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(books), "modified the input")
	})
	t.Run("by year", func(t *testing.T) {
		books := []model.Book{published("1", 1977), published("2", 2013), published("3", 1986)}
		assert.Equal(t, []string{"2", "3", "1"}, ids(model.SortBooks(books, model.SortByDate)))
	})
	t.Run("partial years", func(t *testing.T) {
		books := []model.Book{published("1", 1977), published("2", 0), published("3", 2013)}
		assert.Equal(t, []string{"1", "2", "3"}, ids(model.SortBooks(books, model.SortByDate)))
	})
	t.Run("dates win over years", func(t *testing.T) {
		books := []model.Book{published("1", 2020), dated("2", "01.01.2000")}
		assert.Equal(t, []string{"2", "1"}, ids(model.SortBooks(books, model.SortByDate)))
	})
	t.Run("default keeps order", func(t *testing.T) {
		books := []model.Book{dated("1", "01.01.2000"), dated("2", "01.01.2020")}
		assert.Equal(t, []string{"1", "2"}, ids(model.SortBooks(books, model.SortDefault)))
	})
	t.Run("random dates", func(t *testing.T) {
		books := util.RandomList(50, func() model.Book {
			date := ""
			if util.RandomId()[0]%2 == 0 {
				date = util.RandomAddedDate()
			}
			return dated(util.RandomId(), date)
		})
		books = append(books, dated("last", ""), dated("first", "01.01.2099"))
		sorted := model.SortBooks(books, model.SortByDate)
		require.Len(t, sorted, len(books))
		assert.Equal(t, "first", sorted[0].Id)
		seenUndated := false
		for i, book := range sorted {
			if !book.HasAddedDate() {
				seenUndated = true
				continue
			}
			assert.False(t, seenUndated, "dated book %s after an undated one", book.Id)
			if i > 0 && sorted[i-1].HasAddedDate() {
				assert.GreaterOrEqual(t, sorted[i-1].AddedDate.SortKey(), book.AddedDate.SortKey())
			}
		}
	})
}

func TestLimitBooks(t *testing.T) {
	books := []model.Book{dated("1", ""), dated("2", ""), dated("3", "")}
	assert.Equal(t, []string{"1", "2"}, ids(model.LimitBooks(books, 2)))
	assert.Equal(t, []string{"1", "2", "3"}, ids(model.LimitBooks(books, 10)))
	assert.Empty(t, model.LimitBooks(books, 0))
	assert.Empty(t, model.LimitBooks(books, -1))
	assert.Empty(t, model.LimitBooks(nil, 5))
}

func TestSortAndLimit(t *testing.T) {
	books := []model.Book{
		dated("1", "11.06.2025"),
		dated("2", ""),
		dated("3", "17.06.2025"),
	}
	assert.Equal(t, []string{"3", "1"}, ids(model.SortAndLimit(books, 2, model.SortByDate)))
	assert.Equal(t, []string{"1", "2"}, ids(model.SortAndLimit(books, 2, model.SortDefault)))
	assert.Empty(t, model.SortAndLimit(books, 0, model.SortByDate))
}
