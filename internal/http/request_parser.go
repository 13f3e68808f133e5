// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for decoding request bodies and parsing
// list filters from query strings.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cashflow/internal/core"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON object from the request body into dst. An empty
// body leaves dst untouched. Errors are validation errors, except when an
// UnmarshalJSON implementation already returned a domain error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	err := dec.Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case errors.Is(err, core.ErrValidation):
		return err
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return core.Invalidf("request body too large")
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return core.Invalidf("invalid value for %s", typeErr.Field)
	}
	return core.Invalidf("invalid JSON body")
}

// ParseLedgerFilter reads the list filters and paging parameters of a
// ledger listing. Absent or blank parameters disable their filter.
func ParseLedgerFilter(query url.Values) (core.LedgerFilter, error) {
	f := core.LedgerFilter{
		Search:   sanitizeInput(query.Get("search")),
		Category: sanitizeInput(query.Get("category")),
	}

	var err error
	if f.Page, err = intParam(query, "page"); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(query, "limit"); err != nil {
		return f, err
	}
	if f.MinAmount, err = amountParam(query, "minAmount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = amountParam(query, "maxAmount"); err != nil {
		return f, err
	}
	if f.StartDate, err = dateParam(query, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = dateParam(query, "endDate"); err != nil {
		return f, err
	}
	return f, nil
}

func intParam(query url.Values, name string) (int, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.Invalidf("%s must be a number", name)
	}
	return n, nil
}

func amountParam(query url.Values, name string) (*core.Money, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return nil, nil
	}
	m, err := core.MoneyFromString(v)
	if err != nil || m.Cents < 0 {
		return nil, core.Invalidf("%s must be a non-negative amount", name)
	}
	return &m, nil
}

func dateParam(query url.Values, name string) (*core.Date, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return nil, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
