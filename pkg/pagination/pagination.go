package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: defaultPerPage}
}

// Parse extracts pagination parameters from an HTTP request, rejecting
// malformed or out-of-range values so handlers can answer 400 instead of
// silently clamping.
func Parse(r *http.Request) (Params, error) {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		v, err := strconv.Atoi(page)
		if err != nil || v < 1 {
			return Params{}, errors.New("page must be a valid positive integer")
		}
		p.Page = v
	}

	if perPage := r.URL.Query().Get("per_page"); perPage != "" {
		v, err := strconv.Atoi(perPage)
		if err != nil || v < 1 || v > maxPerPage {
			return Params{}, fmt.Errorf("per_page must be a valid integer between 1 and %d", maxPerPage)
		}
		p.PerPage = v
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p, nil
}

// FromRequest extracts pagination parameters from an HTTP request, clamping
// per_page to the allowed maximum. Invalid values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if perPage := r.URL.Query().Get("per_page"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= maxPerPage {
			p.PerPage = v
		}
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// Normalize clamps the params to valid ranges and recomputes the offset.
func (p *Params) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	p.Offset = (p.Page - 1) * p.PerPage
}
