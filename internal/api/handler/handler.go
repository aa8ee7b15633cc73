// Package handler provides HTTP handlers for the area forecast API.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/api/models"
	"github.com/areaforecast/areaforecast/internal/api/response"
	"github.com/areaforecast/areaforecast/internal/forecast"
)

// writeError maps err to a Problem response and logs it at a level
// matching its severity.
func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	if response.FromError(w, r, err) {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		return
	}
	if errors.Is(err, forecast.ErrUpstreamUnavailable) {
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream unavailable")
	}
}

// queryParams collects parse failures for query string values.
type queryParams struct {
	r      *http.Request
	errors []models.FieldError
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{r: r}
}

func (q *queryParams) fail(field, message, code string) {
	q.errors = append(q.errors, models.FieldError{Field: field, Message: message, Code: code})
}

func (q *queryParams) raw(name string) string {
	return strings.TrimSpace(q.r.URL.Query().Get(name))
}

// requiredFloat parses a mandatory float parameter.
func (q *queryParams) requiredFloat(name string) float64 {
	v := q.raw(name)
	if v == "" {
		q.fail(name, "is required", "REQUIRED")
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		q.fail(name, "must be a number", "INVALID_NUMBER")
		return 0
	}
	return f
}

// optionalInt parses an integer parameter, returning def when absent.
func (q *queryParams) optionalInt(name string, def int) int {
	v := q.raw(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.fail(name, "must be an integer", "INVALID_NUMBER")
		return def
	}
	return n
}

// optionalBool parses a boolean parameter, returning false when absent.
func (q *queryParams) optionalBool(name string) bool {
	v := q.raw(name)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.fail(name, "must be true or false", "INVALID_BOOLEAN")
		return false
	}
	return b
}

// requiredString returns a mandatory non-blank parameter.
func (q *queryParams) requiredString(name string) string {
	v := q.raw(name)
	if v == "" {
		q.fail(name, "is required", "REQUIRED")
	}
	return v
}

// valid writes a 400 response and returns false if any parameter failed.
func (q *queryParams) valid(w http.ResponseWriter) bool {
	if len(q.errors) == 0 {
		return true
	}
	response.BadRequest(w, q.r, "invalid query parameters", q.errors)
	return false
}
