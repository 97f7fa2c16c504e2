package entity

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"liveqa/lib/validate"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	SortByCreatedAt   = "createdAt"
	SortBySessionDate = "sessionDate"
	SortByName        = "name"

	SortAsc  = "asc"
	SortDesc = "desc"
)

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes totalPages as ceil(total/limit), zero for an empty set.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 && total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

type PageQuery struct {
	Page  int `json:"page" validate:"min=1"`
	Limit int `json:"limit" validate:"min=1,max=100"`
}

// Offset saturates at math.MaxInt for pages too far out to address.
func (q PageQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// ParsePageQuery reads page and limit, falling back to defaults when absent.
func ParsePageQuery(values url.Values) (*PageQuery, error) {
	q := &PageQuery{}
	var errs []error
	var err error
	if q.Page, err = intParam(values, "page", DefaultPage); err != nil {
		errs = append(errs, err)
	}
	if q.Limit, err = intParam(values, "limit", DefaultLimit); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, validate.Merge(errs...)
	}
	if err = validate.Struct(q); err != nil {
		return nil, err
	}
	return q, nil
}

type SessionListQuery struct {
	PageQuery
	SortBy    string `json:"sortBy" validate:"oneof=createdAt sessionDate name"`
	SortOrder string `json:"sortOrder" validate:"oneof=asc desc"`
}

func (q SessionListQuery) Ascending() bool {
	return q.SortOrder == SortAsc
}

func ParseSessionListQuery(values url.Values) (*SessionListQuery, error) {
	q := &SessionListQuery{
		SortBy:    stringParam(values, "sortBy", SortByCreatedAt),
		SortOrder: stringParam(values, "sortOrder", SortDesc),
	}
	var errs []error
	var err error
	if q.Page, err = intParam(values, "page", DefaultPage); err != nil {
		errs = append(errs, err)
	}
	if q.Limit, err = intParam(values, "limit", DefaultLimit); err != nil {
		errs = append(errs, err)
	}
	if err = validate.Struct(q); err != nil {
		errs = append(errs, err)
	}
	if err = validate.Merge(errs...); err != nil {
		return nil, err
	}
	return q, nil
}

// ParseIncludeAnswered accepts true/1/false/0 in any case; absent means false.
func ParseIncludeAnswered(values url.Values) (bool, error) {
	if !values.Has("includeAnswered") {
		return false, nil
	}
	switch strings.ToLower(values.Get("includeAnswered")) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, validate.NewError("includeAnswered", "includeAnswered must be one of: true, false, 1, 0")
}

func intParam(values url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validate.NewError(name, fmt.Sprintf("%s must be a number", name))
	}
	return v, nil
}

func stringParam(values url.Values, name, def string) string {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return def
	}
	return raw
}
