// Package dto holds the wire shapes shared by every HTTP handler.
package dto

import (
	"net/url"
	"strconv"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Detail    string             `json:"detail" example:"Not found."`
	Code      string             `json:"code,omitempty" example:"NOT_FOUND"`
	ProductID *int64             `json:"product_id,omitempty"`
	Errors    []ValidationDetail `json:"errors,omitempty"`
	RequestID string             `json:"request_id,omitempty"`
}

// ValidationDetail names one invalid field
type ValidationDetail struct {
	Field   string `json:"field" example:"customer_email"`
	Message string `json:"message" example:"Invalid email format"`
}

// NewErrorResponse creates an error body
func NewErrorResponse(code, detail string) ErrorResponse {
	return ErrorResponse{Detail: detail, Code: code}
}

// NewValidationErrorResponse creates a 400 body listing invalid fields
func NewValidationErrorResponse(details []ValidationDetail) ErrorResponse {
	return ErrorResponse{
		Detail: "Request validation failed.",
		Code:   ErrCodeValidation,
		Errors: details,
	}
}

// PageResponse is a page of a paginated listing. Next and Previous are
// absolute links to the neighbouring pages, or null at either end.
type PageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPageResponse builds a page from its items and the request URL. The
// "page" query parameter of base is replaced in the neighbour links.
func NewPageResponse[T any](results []T, count int64, page int, hasNext, hasPrevious bool, base *url.URL) PageResponse[T] {
	if results == nil {
		results = []T{}
	}
	resp := PageResponse[T]{Count: count, Results: results}
	if hasNext {
		link := pageLink(base, page+1)
		resp.Next = &link
	}
	if hasPrevious {
		link := pageLink(base, page-1)
		resp.Previous = &link
	}
	return resp
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

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
}
