package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"not found", "NOT_FOUND", http.StatusNotFound},
		{"already exists", "ALREADY_EXISTS", http.StatusConflict},
		{"concurrency conflict", "CONCURRENCY_CONFLICT", http.StatusConflict},
		{"insufficient stock", "INSUFFICIENT_STOCK", http.StatusBadRequest},
		{"invalid input", ErrCodeInvalidInput, http.StatusBadRequest},
		{"invalid state", "INVALID_STATE", http.StatusBadRequest},
		{"bad request", ErrCodeBadRequest, http.StatusBadRequest},
		{"internal error", ErrCodeInternal, http.StatusInternalServerError},
		{"unknown code falls back to 500", "SOMETHING_ELSE", http.StatusInternalServerError},
		{"empty code falls back to 500", "", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "order not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Nil(t, resp.Meta)
	if assert.NotNil(t, resp.Error) {
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
		assert.Equal(t, "order not found", resp.Error.Message)
	}
}

func TestNewSuccessResponse(t *testing.T) {
	data := map[string]string{"id": "abc"}
	resp := NewSuccessResponse(data)

	assert.True(t, resp.Success)
	assert.Equal(t, data, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		page       int
		pageSize   int
		totalPages int
	}{
		{"exact multiple", 40, 1, 20, 2},
		{"with remainder", 41, 1, 20, 3},
		{"single partial page", 5, 1, 20, 1},
		{"empty result", 0, 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]string{}, tt.total, tt.page, tt.pageSize)

			assert.True(t, resp.Success)
			if assert.NotNil(t, resp.Meta) {
				assert.Equal(t, tt.total, resp.Meta.Total)
				assert.Equal(t, tt.page, resp.Meta.Page)
				assert.Equal(t, tt.pageSize, resp.Meta.PageSize)
				assert.Equal(t, tt.totalPages, resp.Meta.TotalPages)
			}
		})
	}
}

func TestListRequestNormalize(t *testing.T) {
	tests := []struct {
		name          string
		req           ListRequest
		expectedPage  int
		expectedLimit int
	}{
		{"zero values get defaults", ListRequest{}, 1, 20},
		{"negative page clamped", ListRequest{Page: -3, Limit: 10}, 1, 10},
		{"limit above cap clamped", ListRequest{Page: 2, Limit: 500}, 2, 100},
		{"valid values untouched", ListRequest{Page: 4, Limit: 50}, 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize()
			assert.Equal(t, tt.expectedPage, tt.req.Page)
			assert.Equal(t, tt.expectedLimit, tt.req.Limit)
		})
	}
}
