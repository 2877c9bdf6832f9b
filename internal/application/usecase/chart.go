package usecase

import (
	"fmt"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
)

// HistoryLabel formats a timestamp as "day.month" (1-based month, no year).
// The timestamp is used as received; no timezone conversion is applied.
func HistoryLabel(entry entity.BudgetHistoryEntry) string {
	return fmt.Sprintf("%d.%d", entry.CreatedAt.Day(), int(entry.CreatedAt.Month()))
}

// BuildSeries maps the balance history onto chart points, keeping the order.
func BuildSeries(history []entity.BudgetHistoryEntry) []entity.ChartPoint {
	points := make([]entity.ChartPoint, 0, len(history))
	for _, entry := range history {
		points = append(points, entity.ChartPoint{Label: HistoryLabel(entry), Value: entry.Balance})
	}
	return points
}

// toSeriesPoints converte os pontos para o tipo usado pelo console.
func toSeriesPoints(points []entity.ChartPoint) []types.SeriesPoint {
	out := make([]types.SeriesPoint, len(points))
	for i, p := range points {
		out[i] = types.SeriesPoint{Label: p.Label, Value: p.Value.InexactFloat64()}
	}
	return out
}
