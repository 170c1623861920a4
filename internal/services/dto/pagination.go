package dto

import (
	"net/url"
	"strconv"
)

// PageQuery - общие параметры пагинации
type PageQuery struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// PageResult - страница результата сервиса
type PageResult[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// HasNext - есть ли следующая страница
func (p *PageResult[T]) HasNext() bool {
	return int64(p.Page*p.PageSize) < p.Total
}

// Paginated - единый конверт списков: {count, next, previous, results}
type Paginated[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPaginated строит конверт; next/previous - абсолютные ссылки на соседние страницы
func NewPaginated[T any](result *PageResult[T], requestURL *url.URL) *Paginated[T] {
	out := &Paginated[T]{
		Count:   result.Total,
		Results: result.Items,
	}
	if out.Results == nil {
		out.Results = []T{}
	}
	if requestURL == nil {
		return out
	}
	if result.HasNext() {
		link := pageLink(requestURL, result.Page+1)
		out.Next = &link
	}
	if result.Page > 1 {
		link := pageLink(requestURL, result.Page-1)
		out.Previous = &link
	}
	return out
}

func pageLink(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
