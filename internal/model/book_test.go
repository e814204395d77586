package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAuthorSortKey(t *testing.T) {
	cases := []struct {
		author string
		want   string
	}{
		{"William Gibson", "Gibson,William"},
		{"Iain M. Banks", "Banks,Iain M."},
		{"Plato", "Plato,"},
		{"  Alastair Reynolds  ", "Reynolds,Alastair"},
		{"", ""},
	}
	for _, tc := range cases {
		b := Book{Author: tc.author}
		b.SetAuthorSortKey()
		assert.Equal(t, tc.want, b.AuthorLastName, "author %q", tc.author)
	}
}

func TestEqualIgnoresSortKey(t *testing.T) {
	a := Book{Title: "Neuromancer", Author: "William Gibson", Genre: "Science Fiction", Publisher: "Ace", Year: "1984", Price: "14.77"}
	b := a
	b.AuthorLastName = "Gibson,William"
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))

	c := a
	c.Price = "15.00"
	assert.False(t, a.Equal(c))
}

func TestGenreFromString(t *testing.T) {
	assert.Equal(t, GenreScienceFiction, GenreFromString("Science Fiction"))
	assert.Equal(t, GenreNonfiction, GenreFromString("Nonfiction"))
	// matching is case-sensitive
	assert.Equal(t, GenreUnknown, GenreFromString("science fiction"))
	assert.Equal(t, GenreUnknown, GenreFromString("Poetry"))
}

func TestGenresOrder(t *testing.T) {
	names := Genres()
	assert.Len(t, names, 11)
	assert.Equal(t, "Science Fiction", names[0])
	assert.Equal(t, "Nonfiction", names[len(names)-1])
}

func TestLess(t *testing.T) {
	scifi := Book{Title: "Neuromancer", Author: "William Gibson", Genre: "Science Fiction"}
	fiction := Book{Title: "Imperium", Author: "Robert Harris", Genre: "Fiction"}
	assert.True(t, Less(scifi, fiction), "genre order wins")

	burning := Book{Title: "Burning Chrome", Author: "William Gibson", Genre: "Science Fiction"}
	assert.True(t, Less(burning, scifi), "title breaks the tie")
	assert.False(t, Less(scifi, burning))
}

func TestTrim(t *testing.T) {
	b := Book{Title: "  Neuromancer ", Author: " William Gibson", Year: "1984 ", Price: " 14.77"}
	b.Trim()
	assert.Equal(t, "Neuromancer", b.Title)
	assert.Equal(t, "William Gibson", b.Author)
	assert.Equal(t, "1984", b.Year)
	assert.Equal(t, "14.77", b.Price)
}
