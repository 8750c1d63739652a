package tmdb

// PageResponse is the paged list envelope shared by list/search/discover endpoints
type PageResponse struct {
	Page         int        `json:"page"`
	Results      []MovieDTO `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// MovieDTO is a list entry. Nullable fields are pointers.
type MovieDTO struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate *string `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

// GenreDTO is a genre entry
type GenreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreListResponse is the response of /genre/movie/list
type GenreListResponse struct {
	Genres []GenreDTO `json:"genres"`
}

// CastDTO is one credited actor
type CastDTO struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

// CreditsDTO is the credits block appended to the details response
type CreditsDTO struct {
	Cast []CastDTO `json:"cast"`
}

// DetailsDTO is the response of /movie/{id}?append_to_response=credits
type DetailsDTO struct {
	MovieDTO
	IMDbID   string      `json:"imdb_id"`
	Overview string      `json:"overview"`
	Tagline  string      `json:"tagline"`
	Runtime  int         `json:"runtime"`
	Genres   []GenreDTO  `json:"genres"`
	Credits  *CreditsDTO `json:"credits,omitempty"`
}

// ErrorResponse is the error body returned with non-2xx statuses
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

// OMDBRating is one entry of the OMDB Ratings array
type OMDBRating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// OMDBResponse is the subset of the OMDB lookup-by-IMDb-ID response we use
type OMDBResponse struct {
	Rated    string       `json:"Rated"`
	Awards   string       `json:"Awards"`
	Plot     string       `json:"Plot"`
	Ratings  []OMDBRating `json:"Ratings"`
	Response string       `json:"Response"` // "True" or "False"
	Error    string       `json:"Error"`
}
