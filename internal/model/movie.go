package model

// Movie is a cached copy of an external catalog (TMDB) record.  It is
// materialized the first time an admin schedules a show for the movie and
// is immutable afterwards.  Genres and Casts are stored as JSON columns in
// MySQL and unmarshalled into the slice types below.
//
// Fields:
//  ID               – external catalog identifier (TMDB movie id as string).
//  Title            – display title.
//  Overview         – synopsis text.
//  PosterPath       – relative poster image path on the catalog CDN.
//  BackdropPath     – relative backdrop image path.
//  Genres           – list of genre id/name pairs.
//  Casts            – cast list (name and profile image).
//  ReleaseDate      – release date as YYYY-MM-DD.
//  OriginalLanguage – ISO language code.
//  Tagline          – marketing tagline, may be empty.
//  VoteAverage      – catalog rating.
//  Runtime          – runtime in minutes.
type Movie struct {
	ID               string       `json:"_id"`
	Title            string       `json:"title"`
	Overview         string       `json:"overview"`
	PosterPath       string       `json:"poster_path"`
	BackdropPath     string       `json:"backdrop_path"`
	Genres           []Genre      `json:"genres"`
	Casts            []CastMember `json:"casts"`
	ReleaseDate      string       `json:"release_date"`
	OriginalLanguage string       `json:"original_language"`
	Tagline          string       `json:"tagline"`
	VoteAverage      float64      `json:"vote_average"`
	Runtime          uint32       `json:"runtime"`
}

// Genre is a single catalog genre entry.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CastMember is one entry of a movie's cast list.  Only the fields the
// frontend renders are kept.
type CastMember struct {
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
}
