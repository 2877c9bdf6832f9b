package usecase

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/api"
	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryLabel(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "5.3"},
		{time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), "31.12"},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.FixedZone("UTC+2", 2*3600)), "1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, HistoryLabel(entity.BudgetHistoryEntry{CreatedAt: tt.at}))
		})
	}
}

func TestBuildSeriesKeepsOrder(t *testing.T) {
	history := []entity.BudgetHistoryEntry{
		{CreatedAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Balance: decimal.NewFromInt(10)},
		{CreatedAt: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), Balance: decimal.NewFromInt(-4)},
	}

	series := BuildSeries(history)
	require.Len(t, series, 2)
	assert.Equal(t, "5.3", series[0].Label)
	assert.Equal(t, "6.3", series[1].Label)
	assert.True(t, decimal.NewFromInt(-4).Equal(series[1].Value))

	assert.Empty(t, BuildSeries(nil))
	points := toSeriesPoints(series)
	assert.InDelta(t, -4.0, points[1].Value, 1e-9)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "budget already exists",
		UserMessage(fmt.Errorf("wrapped: %w", &api.Error{StatusCode: 409, Message: "budget already exists"}), "default"))
	assert.Equal(t, "request failed with status code 502 (Bad Gateway)",
		UserMessage(&api.Error{StatusCode: 502}, "default"))
	assert.Equal(t, "dial tcp: connection refused",
		UserMessage(errors.New("dial tcp: connection refused"), "default"))
	assert.Equal(t, "default", UserMessage(errors.New(""), "default"))
	assert.Equal(t, "default", UserMessage(nil, "default"))
}
