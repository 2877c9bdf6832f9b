package entity

import "github.com/shopspring/decimal"

// ChartPoint is one point of the balance history series.
type ChartPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Dashboard is the view model produced by the dashboard use case.
type Dashboard struct {
	User             *User                `json:"user,omitempty"`
	Budget           *Budget              `json:"budget"`
	Balance          *decimal.Decimal     `json:"balance"`
	History          []BudgetHistoryEntry `json:"history"`
	Series           []ChartPoint         `json:"series"`
	Categories       []Category           `json:"categories"`
	CustomCategories []Category           `json:"custom_categories"`
	Transactions     []Transaction        `json:"transactions"`
	NeedsBudget      bool                 `json:"needs_budget"`
}

// CategoryName resolves a category id against system and custom categories.
func (d Dashboard) CategoryName(id int64) string {
	for _, c := range d.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	for _, c := range d.CustomCategories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}
