package entity

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"testing"

	"liveqa/lib/validate"
)

func details(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *validate.Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return ve.Details
}

func TestParseSessionListQuery_Defaults(t *testing.T) {
	q, err := ParseSessionListQuery(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page != 1 || q.Limit != 20 || q.SortBy != "createdAt" || q.SortOrder != "desc" {
		t.Fatalf("unexpected defaults: %+v", q)
	}
	if q.Offset() != 0 {
		t.Fatalf("unexpected offset: %d", q.Offset())
	}
}

func TestParseSessionListQuery_Valid(t *testing.T) {
	q, err := ParseSessionListQuery(url.Values{
		"page":      {"3"},
		"limit":     {"100"},
		"sortBy":    {"sessionDate"},
		"sortOrder": {"asc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Offset() != 200 || !q.Ascending() || q.SortBy != SortBySessionDate {
		t.Fatalf("unexpected query: %+v", q)
	}
}

func TestParseSessionListQuery_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		field  string
		msg    string
	}{
		{"page zero", url.Values{"page": {"0"}}, "page", "page must be at least 1"},
		{"page not a number", url.Values{"page": {"abc"}}, "page", "page must be a number"},
		{"limit too big", url.Values{"limit": {"101"}}, "limit", "limit must not exceed 100"},
		{"limit zero", url.Values{"limit": {"0"}}, "limit", "limit must be at least 1"},
		{"bad sortBy", url.Values{"sortBy": {"speaker"}}, "sortBy", "sortBy must be one of: createdAt, sessionDate, name"},
		{"bad sortOrder", url.Values{"sortOrder": {"up"}}, "sortOrder", "sortOrder must be one of: asc, desc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSessionListQuery(tt.values)
			d := details(t, err)
			if d[tt.field] != tt.msg {
				t.Fatalf("details[%s] = %q, want %q (all: %v)", tt.field, d[tt.field], tt.msg, d)
			}
		})
	}
}

func TestParsePageQuery(t *testing.T) {
	q, err := ParsePageQuery(url.Values{"page": {"2"}, "limit": {"5"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Offset() != 5 {
		t.Fatalf("unexpected offset: %d", q.Offset())
	}
	if _, err := ParsePageQuery(url.Values{"limit": {"x"}}); err == nil {
		t.Fatal("expected error for non-numeric limit")
	}
}

func TestParseIncludeAnswered(t *testing.T) {
	tests := []struct {
		raw     string
		present bool
		want    bool
		wantErr bool
	}{
		{present: false, want: false},
		{raw: "true", present: true, want: true},
		{raw: "TRUE", present: true, want: true},
		{raw: "1", present: true, want: true},
		{raw: "False", present: true, want: false},
		{raw: "0", present: true, want: false},
		{raw: "yes", present: true, wantErr: true},
		{raw: "", present: true, wantErr: true},
	}
	for _, tt := range tests {
		values := url.Values{}
		if tt.present {
			values.Set("includeAnswered", tt.raw)
		}
		got, err := ParseIncludeAnswered(values)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseIncludeAnswered(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		limit, total, want int
	}{
		{20, 0, 0},
		{20, 1, 1},
		{20, 20, 1},
		{20, 21, 2},
		{7, 50, 8},
	}
	for _, tt := range tests {
		p := NewPagination(1, tt.limit, tt.total)
		if p.TotalPages != tt.want {
			t.Fatalf("NewPagination(limit=%d,total=%d).TotalPages = %d, want %d", tt.limit, tt.total, p.TotalPages, tt.want)
		}
	}
}

func TestPageQueryOffsetSaturates(t *testing.T) {
	tests := []struct {
		page, limit, want int
	}{
		{1, 20, 0},
		{3, 20, 40},
		{math.MaxInt, 20, math.MaxInt},
		{math.MaxInt/100 + 2, 100, math.MaxInt},
	}
	for _, tt := range tests {
		q := PageQuery{Page: tt.page, Limit: tt.limit}
		if got := q.Offset(); got != tt.want {
			t.Fatalf("Offset(page=%d,limit=%d) = %d, want %d", tt.page, tt.limit, got, tt.want)
		}
	}

	values := url.Values{}
	values.Set("page", strconv.Itoa(math.MaxInt))
	q, err := ParseSessionListQuery(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Offset() < 0 {
		t.Fatalf("offset wrapped: %d", q.Offset())
	}
}
