package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDashboard() entity.Dashboard {
	balance := decimal.RequireFromString("69.50")
	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	return entity.Dashboard{
		User:    &entity.User{ID: "4", Email: "a@b.com", FirstName: "Ada", LastName: "Byron"},
		Budget:  &entity.Budget{ID: 9, Currency: entity.CurrencyEUR, Amount: decimal.NewFromInt(100)},
		Balance: &balance,
		Series: []entity.ChartPoint{
			{Label: "5.3", Value: decimal.NewFromInt(100)},
			{Label: "5.3", Value: balance},
		},
		Categories: []entity.Category{{ID: 1, Name: "Food"}},
		Transactions: []entity.Transaction{
			{ID: 11, Amount: decimal.RequireFromString("30.5"), Type: entity.Withdrawal, CategoryID: 1, BudgetID: 9, Note: "paid [rent] for [March]", CreatedAt: created},
			{ID: 12, Amount: decimal.NewFromInt(5), Type: entity.Deposit, CategoryID: 77, BudgetID: 9, CreatedAt: created},
		},
	}
}

func newTestRepo() *ExportRepositoryImpl {
	return &ExportRepositoryImpl{now: func() time.Time { return time.Date(2024, 3, 6, 12, 30, 0, 0, time.UTC) }}
}

func TestExportToCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := newTestRepo().ExportToCSV(sampleDashboard(), "report", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_20240306_123000.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"ID", "Date", "Type", "Category", "Amount", "Currency", "Note"}, records[0])
	assert.Equal(t, []string{"11", "2024-03-05", "Expense", "Food", "30.50", "EUR", "paid [rent] for [March]"}, records[1])
	assert.Equal(t, "#77", records[2][3])
}

func TestExportToJSON(t *testing.T) {
	path, err := newTestRepo().ExportToJSON(sampleDashboard(), "report", t.TempDir())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded entity.Dashboard
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NotNil(t, decoded.Budget)
	assert.Equal(t, entity.CurrencyEUR, decoded.Budget.Currency)
	assert.Len(t, decoded.Transactions, 2)
	assert.Len(t, decoded.Series, 2)
}

func TestExportToPDF(t *testing.T) {
	path, err := newTestRepo().ExportToPDF(sampleDashboard(), "report", t.TempDir())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportToPDFWithoutBudget(t *testing.T) {
	path, err := newTestRepo().ExportToPDF(entity.Dashboard{NeedsBudget: true}, "empty", t.TempDir())
	require.NoError(t, err)
	assert.FileExists(t, path)
}
