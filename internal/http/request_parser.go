// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"net/http"
	"net/url"
	"strings"
)

// RevenueParams holds the revenue form fields of a request.
type RevenueParams struct {
	ASICID string
	Start  string
	End    string
}

// ParseRevenueParams extracts the form fields. Missing fields are left empty;
// the form decides which are required.
func ParseRevenueParams(form url.Values) RevenueParams {
	return RevenueParams{
		ASICID: sanitizeInput(form.Get("asic")),
		Start:  sanitizeInput(form.Get("start")),
		End:    sanitizeInput(form.Get("end")),
	}
}

// IsHTMX reports whether the request was issued by HTMX rather than a plain
// form submission.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
