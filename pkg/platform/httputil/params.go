package httputil

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
)

// PathAddress parses the wallet address in the named route parameter.
func PathAddress(r *http.Request, name string) (domain.Address, error) {
	addr, err := domain.ParseAddress(chi.URLParam(r, name))
	if err != nil {
		return "", dErrors.New(dErrors.CodeValidation, name+" must be 0x followed by 40 hex digits")
	}
	return addr, nil
}

// PathSequence parses the positive record number in the named route parameter.
func PathSequence(r *http.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, name+" must be a positive integer")
	}
	return n, nil
}

// QueryLimit reads ?limit=N, returning def when absent.
func QueryLimit(r *http.Request, def, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > max {
		return 0, dErrors.Newf(dErrors.CodeValidation, "limit must be between 1 and %d", max)
	}
	return n, nil
}
