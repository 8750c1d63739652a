package domain

import "context"

// PageFetcher fetches one page of a paginated list identified by key.
// Keys are the accumulator keys produced by the catalog package
// ("trending", "category:popular", "genre:28", "search:alien").
type PageFetcher interface {
	FetchPage(ctx context.Context, key string, page int) (*Page, error)
}

// MetadataClient is the network surface of the metadata service.
type MetadataClient interface {
	Trending(ctx context.Context, page int) (*Page, error)
	Category(ctx context.Context, category string, page int) (*Page, error)
	DiscoverGenre(ctx context.Context, genreID, page int) (*Page, error)
	Search(ctx context.Context, query string, page int) (*Page, error)
	Genres(ctx context.Context) ([]Genre, error)
	Details(ctx context.Context, movieID int) (*MovieDetails, error)
}
