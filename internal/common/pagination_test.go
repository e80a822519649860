package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	testCases := []struct {
		name          string
		page, limit   int
		wantPage      int
		wantLimit     int
		wantOffsetVal int
	}{
		{name: "defaults", page: 0, limit: 0, wantPage: 1, wantLimit: 10, wantOffsetVal: 0},
		{name: "negative", page: -3, limit: -1, wantPage: 1, wantLimit: 10, wantOffsetVal: 0},
		{name: "clamped limit", page: 2, limit: 500, wantPage: 2, wantLimit: 100, wantOffsetVal: 100},
		{name: "as given", page: 3, limit: 20, wantPage: 3, wantLimit: 20, wantOffsetVal: 40},
		{name: "max int page", page: math.MaxInt64, limit: 10, wantPage: MaxPage, wantLimit: 10, wantOffsetVal: (MaxPage - 1) * 10},
		{name: "huge page and limit", page: 1e17, limit: 1000, wantPage: MaxPage, wantLimit: 100, wantOffsetVal: (MaxPage - 1) * 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, limit := NormalizePage(tc.page, tc.limit)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantLimit, limit)
			assert.Equal(t, tc.wantOffsetVal, Offset(page, limit))
		})
	}
}

func TestOffset(t *testing.T) {
	testCases := []struct {
		name        string
		page, limit int
		expected    int
	}{
		{name: "first page", page: 1, limit: 10, expected: 0},
		{name: "second page", page: 2, limit: 25, expected: 25},
		{name: "zero limit", page: 4, limit: 0, expected: 0},
		{name: "overflowing product", page: math.MaxInt64, limit: 100, expected: math.MaxInt},
		{name: "just below overflow", page: math.MaxInt/2 + 1, limit: 2, expected: math.MaxInt - 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			off := Offset(tc.page, tc.limit)
			assert.GreaterOrEqual(t, off, 0)
			assert.Equal(t, tc.expected, off)
		})
	}
}

func TestNewPagination(t *testing.T) {
	testCases := []struct {
		name               string
		page, limit, total int
		expected           Pagination
	}{
		{
			name:     "empty",
			page:     1, limit: 10, total: 0,
			expected: Pagination{Page: 1, Limit: 10, Total: 0, Pages: 0},
		},
		{
			name:     "first of three",
			page:     1, limit: 10, total: 25,
			expected: Pagination{Page: 1, Limit: 10, Total: 25, Pages: 3, HasNext: true},
		},
		{
			name:     "middle",
			page:     2, limit: 10, total: 25,
			expected: Pagination{Page: 2, Limit: 10, Total: 25, Pages: 3, HasNext: true, HasPrev: true},
		},
		{
			name:     "last exact",
			page:     2, limit: 10, total: 20,
			expected: Pagination{Page: 2, Limit: 10, Total: 20, Pages: 2, HasPrev: true},
		},
		{
			name:     "capped page past the end",
			page:     MaxPage, limit: 10, total: 20,
			expected: Pagination{Page: MaxPage, Limit: 10, Total: 20, Pages: 2, HasPrev: true},
		},
		{
			name:     "past the end",
			page:     5, limit: 10, total: 20,
			expected: Pagination{Page: 5, Limit: 10, Total: 20, Pages: 2, HasPrev: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NewPagination(tc.page, tc.limit, tc.total))
		})
	}
}
