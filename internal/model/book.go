package model

import "strings"

// Book is one catalog record as it is stored in the search index. The
// author_last_name field is derived from the author name on write and exists
// only so that results can be sorted surname-first; it is ignored when two
// records are compared for equality.
type Book struct {
	Title          string `json:"title"`
	Author         string `json:"author"`
	AuthorLastName string `json:"author_last_name,omitempty"`
	Genre          string `json:"genre"`
	Publisher      string `json:"publisher"`
	Year           string `json:"year"`
	Price          string `json:"price"`
}

// SetAuthorSortKey derives the surname-first sort key from the author name.
// "Iain M. Banks" becomes "Banks,Iain M.".
func (b *Book) SetAuthorSortKey() {
	author := strings.TrimSpace(b.Author)
	if author == "" {
		b.AuthorLastName = ""
		return
	}
	parts := strings.Fields(author)
	var sb strings.Builder
	sb.WriteString(parts[len(parts)-1])
	sb.WriteString(",")
	for _, p := range parts[:len(parts)-1] {
		sb.WriteString(p)
		sb.WriteString(" ")
	}
	b.AuthorLastName = strings.TrimSpace(sb.String())
}

// Equal reports structural equality over all fields except the derived
// author sort key.
func (b Book) Equal(other Book) bool {
	return b.Title == other.Title &&
		b.Author == other.Author &&
		b.Genre == other.Genre &&
		b.Publisher == other.Publisher &&
		b.Year == other.Year &&
		b.Price == other.Price
}

// Trim removes leading and trailing whitespace from every user-entered field.
func (b *Book) Trim() {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Genre = strings.TrimSpace(b.Genre)
	b.Publisher = strings.TrimSpace(b.Publisher)
	b.Year = strings.TrimSpace(b.Year)
	b.Price = strings.TrimSpace(b.Price)
}
