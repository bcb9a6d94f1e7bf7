package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidFilter wraps filter validation failures so callers can map them
// to a client error without inspecting the message.
var ErrInvalidFilter = errors.New("invalid listing filter")

type Searcher interface {
	SearchListings(ctx context.Context, f Filter) (Page, error)
}

// Query translates UI filter state into listing page requests.
type Query struct {
	searcher    Searcher
	defaultSize int
	logger      *slog.Logger
}

func NewQuery(searcher Searcher, defaultSize int, logger *slog.Logger) *Query {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Query{searcher: searcher, defaultSize: defaultSize, logger: logger.With("component", "listing-query")}
}

func (q *Query) Search(ctx context.Context, f Filter) (Page, error) {
	if err := f.Validate(); err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	f = f.Normalize(q.defaultSize)

	page, err := q.searcher.SearchListings(ctx, f)
	if err != nil {
		q.logger.WarnContext(ctx, "listing search failed", "page", f.Page, "error", err)
		return Page{}, err
	}
	if page.Data == nil {
		page.Data = []Listing{}
	}
	if page.CurrentPage == 0 {
		page.CurrentPage = f.Page
	}
	if page.PageSize == 0 {
		page.PageSize = f.Size
	}
	return page, nil
}
