package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrMovieNotFound indicates the requested movie does not exist
	ErrMovieNotFound = errors.New("movie not found")

	// ErrServerOffline indicates the metadata service is unreachable
	ErrServerOffline = errors.New("metadata service is unreachable")

	// ErrAuthFailed indicates the API key or access token was rejected
	ErrAuthFailed = errors.New("metadata API credentials are invalid")

	// ErrInvalidCategory indicates a list category outside the supported set
	ErrInvalidCategory = errors.New("invalid movie category")

	// ErrInvalidKey indicates a list key that cannot be parsed
	ErrInvalidKey = errors.New("invalid list key")

	// ErrEmptyPage indicates a fetch returned neither a page nor an error
	ErrEmptyPage = errors.New("page fetch returned no data")

	// ErrNotInWatchlist indicates a watched-flag change for a movie that is not in the watchlist
	ErrNotInWatchlist = errors.New("movie is not in the watchlist")

	// ErrStoreClosed indicates an operation on a store after Close
	ErrStoreClosed = errors.New("store is closed")
)
