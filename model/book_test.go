package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mook/flibusta/model"
)

func TestSeries(t *testing.T) {
	t.Run("no series", func(t *testing.T) {
		book := model.Book{Id: "1", Title: "Книга"}
		assert.Nil(t, book.Series())
	})
	t.Run("partial series", func(t *testing.T) {
		book := model.Book{Id: "1", SeriesId: model.Ptr("7")}
		assert.Nil(t, book.Series())
	})
	t.Run("valid series", func(t *testing.T) {
		book := model.Book{
			Id:         "1",
			SeriesId:   model.Ptr("18510"),
			SeriesName: model.Ptr("Кинг, Стивен. Романы"),
		}
		assert.Equal(t, &model.Series{Id: "18510", Name: "Кинг, Стивен. Романы"}, book.Series())
	})
}

func TestOptionalFields(t *testing.T) {
	book := model.Book{}
	assert.False(t, book.HasAddedDate())
	assert.False(t, book.HasYear())

	book.AddedDate = model.Ptr(model.AddedDate(""))
	book.Year = model.Ptr(0)
	assert.False(t, book.HasAddedDate())
	assert.False(t, book.HasYear())

	book.AddedDate = model.Ptr(model.AddedDate("17.06.2025"))
	book.Year = model.Ptr(1977)
	assert.True(t, book.HasAddedDate())
	assert.True(t, book.HasYear())
}
