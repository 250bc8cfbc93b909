package parser_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mook/flibusta/model"
	"github.com/mook/flibusta/parser"
	"github.com/mook/flibusta/util"
	"github.com/mook/flibusta/util/assertx"
)

func findBook(t *testing.T, books []model.Book, id string) model.Book {
	t.Helper()
	book := util.Find(books, func(b model.Book) bool { return b.Id == id })
	require.NotNil(t, book, "could not find book %s", id)
	return *book
}

func bookIds(books []model.Book) []string {
	return util.Map(books, func(b model.Book) string { return b.Id })
}

func TestDetectLayout(t *testing.T) {
	cases := []struct {
		name     string
		page     string
		expected parser.Layout
	}{
		{
			name:     "date headers",
			page:     "<h4>17.06.2025</h4><div></div>",
			expected: parser.LayoutDateGrouped,
		},
		{
			name:     "sort header",
			page:     "<h4>Сортировать по: дате</h4><h4>17.06.2025</h4>",
			expected: parser.LayoutSeriesGrouped,
		},
		{
			name:     "no headers",
			page:     "<div><a href=\"/b/1\">Книга</a></div>",
			expected: parser.LayoutSeriesGrouped,
		},
		{
			name:     "empty",
			page:     "",
			expected: parser.LayoutSeriesGrouped,
		},
		{
			name:     "date in other heading",
			page:     "<h3>17.06.2025</h3>",
			expected: parser.LayoutSeriesGrouped,
		},
	}
	for _, testcase := range cases {
		t.Run(testcase.name, func(t *testing.T) {
			assert.Equal(t, testcase.expected, parser.DetectLayout(testcase.page))
		})
	}
	assert.Equal(t, "date-grouped", parser.LayoutDateGrouped.String())
	assert.Equal(t, "series-grouped", parser.LayoutSeriesGrouped.String())
}

func TestParseAuthorBooksWithDates(t *testing.T) {
	page := readPage(t, "author_dates.html")
	require.Equal(t, parser.LayoutDateGrouped, parser.DetectLayout(page))
	books := parser.ParseAuthorBooks(page, "")

	assert.Equal(t, []string{"831271", "830578", "417291", "512345"}, bookIds(books))
	for _, book := range books {
		assert.True(t, book.HasAddedDate(), "book %s has no added date", book.Id)
	}

	first := findBook(t, books, "831271")
	assert.Equal(t, "После заката", first.Title)
	assert.Equal(t, model.AddedDate("17.06.2025"), *first.AddedDate)
	assert.Equal(t, []string{model.UnknownAuthor}, first.Authors)
	if assert.NotNil(t, first.SeriesId) && assert.NotNil(t, first.SeriesName) {
		assert.Equal(t, "14873", *first.SeriesId)
		assert.Equal(t, "Сразу после заката", *first.SeriesName)
	}
	assert.Nil(t, first.Year)

	second := findBook(t, books, "830578")
	assert.Equal(t, "Четыре сезона", second.Title)
	assert.Equal(t, model.AddedDate("11.06.2025"), *second.AddedDate)
	assert.Nil(t, second.Series())

	grouped := findBook(t, books, "417291")
	assert.Equal(t, model.AddedDate("11.06.2025"), *grouped.AddedDate)
	assert.Equal(t, &model.Series{Id: "18510", Name: "Кинг, Стивен. Романы"}, grouped.Series())
	if assert.NotNil(t, grouped.Year) {
		assert.Equal(t, 1977, *grouped.Year)
	}
}

func TestParseAuthorBooksWithSeries(t *testing.T) {
	page := readPage(t, "author_series.html")
	require.Equal(t, parser.LayoutSeriesGrouped, parser.DetectLayout(page))
	books := parser.ParseAuthorBooks(page, "")

	assert.Equal(t, []string{"417291", "512345", "600001"}, bookIds(books))
	for _, book := range books {
		assert.Nil(t, book.AddedDate)
		assert.NotEmpty(t, book.Title)
	}

	shining := findBook(t, books, "417291")
	assert.Equal(t, "Сияние", shining.Title)
	assert.Equal(t, &model.Series{Id: "18510", Name: "Кинг, Стивен. Романы"}, shining.Series())
	if assert.NotNil(t, shining.Year) {
		assert.Equal(t, 1977, *shining.Year)
	}

	translated := findBook(t, books, "512345")
	assert.Equal(t, []string{model.UnknownAuthor}, translated.Authors)

	coauthored := findBook(t, books, "600001")
	assert.Equal(t, []string{"Стивен Кинг", "Питер Страуб"}, coauthored.Authors)

	assertx.Any(t, books, func(b model.Book) bool { return b.Series() == nil })
}

func TestParseAuthorBooksKnownAuthor(t *testing.T) {
	for _, name := range []string{"author_dates.html", "author_series.html"} {
		t.Run(name, func(t *testing.T) {
			books := parser.ParseAuthorBooks(readPage(t, name), "Стивен Кинг")
			require.NotEmpty(t, books)
			for _, book := range books {
				assert.Equal(t, []string{"Стивен Кинг"}, book.Authors, "book %s", book.Title)
			}
		})
	}
}

func TestParseAuthorBooksTranslatorBlock(t *testing.T) {
	page := `<div><input type="checkbox"> - <a href="/b/830578">Четыре сезона</a>
		(пер. <a href="/a/174283">Виктор Вячеславович Антонов</a>)
		<span style="size">2392K, 504 с.</span></div>`

	books := parser.ParseAuthorBooks(page, "")
	require.Len(t, books, 1)
	assert.Equal(t, "830578", books[0].Id)
	assert.Equal(t, []string{model.UnknownAuthor}, books[0].Authors)
	assert.Nil(t, books[0].Series())

	books = parser.ParseAuthorBooks(page, "Стивен Кинг")
	require.Len(t, books, 1)
	assert.Equal(t, []string{"Стивен Кинг"}, books[0].Authors)
}

func TestParseAuthorBooksDeduplicates(t *testing.T) {
	t.Run("series layout", func(t *testing.T) {
		page := `<p><a href="/b/5">Книга</a> (<a href="/s/1"><span class="h8">Серия</span></a>)</p>
			<p><a href="/s/2"><span class="h8">Другая серия</span></a> <a href="/b/5">Книга</a></p>`
		books := parser.ParseAuthorBooks(page, "")
		assert.Equal(t, []string{"5"}, bookIds(books))
	})
	t.Run("date layout", func(t *testing.T) {
		page := `<h4>02.01.2024</h4><div><a href="/b/5">Книга</a> <a href="/b/5">Книга</a></div>
			<h4>01.01.2024</h4><div><a href="/b/5">Книга</a></div>`
		books := parser.ParseAuthorBooks(page, "")
		require.Equal(t, []string{"5"}, bookIds(books))
		assert.Equal(t, model.AddedDate("02.01.2024"), *books[0].AddedDate)
	})
}

func TestParseAuthorBooksEmpty(t *testing.T) {
	assert.Empty(t, parser.ParseAuthorBooks("", ""))
	assert.Empty(t, parser.ParseAuthorBooks(`<h4>01.01.2024</h4><div>Нет книг</div>`, ""))
	assert.Empty(t, parser.ParseAuthorBooks(`<div><a href="/b/1/read">(читать)</a></div>`, ""))
}

func TestParseAuthorName(t *testing.T) {
	assert.Equal(t, "Стивен Кинг", parser.ParseAuthorName(readPage(t, "author_series.html")))
	assert.Empty(t, parser.ParseAuthorName("<div>no heading</div>"))
}

func TestParseAuthorBooksConcurrently(t *testing.T) {
	pages := []string{readPage(t, "author_dates.html"), readPage(t, "author_series.html")}
	expected := util.Map(pages, func(page string) []model.Book { return parser.ParseAuthorBooks(page, "") })

	var wg sync.WaitGroup
	results := make([][]model.Book, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = parser.ParseAuthorBooks(pages[i%len(pages)], "")
		}(i)
	}
	wg.Wait()
	for i, result := range results {
		assert.Equal(t, expected[i%len(pages)], result)
	}
}
