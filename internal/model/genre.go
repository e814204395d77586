package model

// Genre is the fixed set of book genres. Matching is case-sensitive: the
// stored genre string must be exactly one of these values.
type Genre int

const (
	GenreUnknown Genre = iota
	GenreScienceFiction
	GenreFiction
	GenreHistory
	GenreComputerScience
	GenreFinance
	GenreMathematics
	GenreCurrentEvents
	GenreScience
	GenreCooking
	GenreTravel
	GenreNonfiction
)

var genreNames = map[Genre]string{
	GenreScienceFiction:  "Science Fiction",
	GenreFiction:         "Fiction",
	GenreHistory:         "History",
	GenreComputerScience: "Computer Science",
	GenreFinance:         "Finance",
	GenreMathematics:     "Mathematics",
	GenreCurrentEvents:   "Current Events",
	GenreScience:         "Science",
	GenreCooking:         "Cooking",
	GenreTravel:          "Travel",
	GenreNonfiction:      "Nonfiction",
}

func (g Genre) String() string {
	if name, ok := genreNames[g]; ok {
		return name
	}
	return "Unknown"
}

// GenreFromString maps a genre name to its enum value, GenreUnknown if the
// name is not in the fixed set.
func GenreFromString(name string) Genre {
	for g, n := range genreNames {
		if n == name {
			return g
		}
	}
	return GenreUnknown
}

// Genres returns the genre names in display order.
func Genres() []string {
	names := make([]string, 0, len(genreNames))
	for g := GenreScienceFiction; g <= GenreNonfiction; g++ {
		names = append(names, g.String())
	}
	return names
}
