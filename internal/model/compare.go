package model

import "strings"

// Less orders books by genre (enum order), then author, then title. Author
// and title comparisons are case-insensitive. Used for stable display order
// when the backend's sort is not available (e.g. merged result lists).
func Less(a, b Book) bool {
	ga, gb := GenreFromString(a.Genre), GenreFromString(b.Genre)
	if ga != gb {
		return ga < gb
	}
	if c := strings.Compare(strings.ToLower(a.Author), strings.ToLower(b.Author)); c != 0 {
		return c < 0
	}
	return strings.ToLower(a.Title) < strings.ToLower(b.Title)
}
