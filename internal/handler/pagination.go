package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sakif/snippets-api/internal/service"
)

// pageEnvelope is the list-response wrapper shared by the snippet and user
// listings.
//
// Next and Previous are absolute URLs to the adjacent pages, or null at
// the edges, so a client can walk the collection without building URLs
// itself.
type pageEnvelope struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// parsePagination reads the page/page_size query params.
//
// FORGIVING ON PURPOSE: a listing endpoint should never 400 over
// pagination. Garbage, zero, or negative values fall back to the defaults,
// and oversized page_size is clamped by the service.
func parsePagination(r *http.Request) (page, pageSize int) {
	q := r.URL.Query()

	page = 1
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		page = n
	}

	pageSize = service.DefaultPageSize
	if n, err := strconv.Atoi(q.Get("page_size")); err == nil && n > 0 {
		pageSize = n
	}
	if pageSize > service.MaxPageSize {
		pageSize = service.MaxPageSize
	}

	return page, pageSize
}

// newPageEnvelope wraps one page of results with count and neighbor links.
func newPageEnvelope(r *http.Request, count, page, pageSize int, results any) pageEnvelope {
	env := pageEnvelope{
		Count:   count,
		Results: results,
	}

	if page*pageSize < count {
		next := pageURL(r, page+1)
		env.Next = &next
	}
	if page > 1 {
		prev := pageURL(r, page-1)
		env.Previous = &prev
	}

	return env
}

// pageURL rebuilds the request URL with the page param replaced, as an
// absolute URL. Other query params (filters, page_size) carry over so the
// links stay within the same filtered view.
func pageURL(r *http.Request, page int) string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	// Behind a proxy the original scheme arrives in a header.
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}

	return fmt.Sprintf("%s://%s%s", scheme, r.Host, u.RequestURI())
}
