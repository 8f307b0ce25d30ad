package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// FetchAllPageSize размер страницы при выборке «всех» записей.
const FetchAllPageSize = 1000

// Page страница списка в формате API: {results, count, next, previous}.
type Page[T any] struct {
	Results  []T     `json:"results"`
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// List одна страница списка.
func List[T any](ctx context.Context, c *Client, path string, query url.Values) (*Page[T], error) {
	var p Page[T]
	if err := c.Get(ctx, path, query, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchAll собирает все страницы по ссылкам next. Если в query явно задан page,
// возвращается ровно эта страница. Повтор уже полученной ссылки next считается
// ошибкой протокола (ErrPaginationLoop).
func FetchAll[T any](ctx context.Context, c *Client, path string, query url.Values) (*Page[T], error) {
	q := url.Values{}
	for k, vs := range query {
		q[k] = append([]string(nil), vs...)
	}
	if q.Get("page") != "" {
		return List[T](ctx, c, path, q)
	}
	if q.Get("page_size") == "" {
		q.Set("page_size", strconv.Itoa(FetchAllPageSize))
	}

	first, err := List[T](ctx, c, path, q)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	if self, err := c.resolve(path, q); err == nil {
		seen[self] = true
	}

	all := first.Results
	next := first.Next
	for next != nil && *next != "" {
		if seen[*next] {
			return nil, fmt.Errorf("%w: %s", ErrPaginationLoop, *next)
		}
		seen[*next] = true

		page, err := List[T](ctx, c, *next, nil)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		next = page.Next
	}
	if all == nil {
		all = []T{}
	}
	return &Page[T]{Results: all, Count: len(all)}, nil
}
