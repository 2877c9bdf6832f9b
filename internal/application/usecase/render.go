package usecase

import (
	"fmt"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
	"github.com/pterm/pterm"
)

// RenderNotices imprime e descarta os avisos pendentes.
func (uc *DashboardUseCase) RenderNotices() int {
	notices := uc.notices.Drain()
	for _, n := range notices {
		uc.console.LogError("%s", n.Message)
	}
	return len(notices)
}

// RenderDashboard exibe saudação, saldo, histórico e as últimas transações.
// limit <= 0 mostra todas as transações.
func (uc *DashboardUseCase) RenderDashboard(limit int) {
	d := uc.Dashboard()

	if d.User != nil {
		uc.console.Printf("\n%s\n%s\n",
			pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprintf("Welcome, %s", d.User.FullName()),
			pterm.FgGray.Sprint(d.User.Email))
	}

	if d.NeedsBudget {
		uc.console.LogWarning("You don't have a budget yet. Create one with `finly budget create --currency USD --amount 100`.")
		return
	}
	if d.Budget == nil {
		uc.console.LogWarning("Budget data is unavailable.")
		return
	}

	balance := pterm.FgGray.Sprint("-")
	if d.Balance != nil {
		style := pterm.NewStyle(pterm.FgGreen, pterm.Bold)
		if d.Balance.IsNegative() {
			style = pterm.NewStyle(pterm.FgRed, pterm.Bold)
		}
		balance = style.Sprintf("%s", d.Balance.StringFixed(2))
	}
	uc.console.Printf("\n%s %s %s\n", pterm.FgYellow.Sprint("Current balance:"), balance, d.Budget.Currency)

	uc.console.DisplayBalanceHistory("Balance History", toSeriesPoints(d.Series))

	uc.RenderTransactions(limit)
}

// RenderTransactions exibe a tabela de transações, mais recentes primeiro.
func (uc *DashboardUseCase) RenderTransactions(limit int) {
	d := uc.Dashboard()

	if len(d.Transactions) == 0 {
		uc.console.LogInfo("No transactions yet.")
		return
	}

	currency := ""
	if d.Budget != nil {
		currency = string(d.Budget.Currency)
	}

	table := uc.console.CreateTable()
	table.AddColumn("ID")
	table.AddColumn("Date")
	table.AddColumn("Type")
	table.AddColumn("Category")
	table.AddColumn("Amount")
	table.AddColumn("Note")

	shown := d.Transactions
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, tx := range shown {
		amount := pterm.FgGreen.Sprintf("+%s %s", tx.Amount.StringFixed(2), currency)
		if tx.Type == entity.Withdrawal {
			amount = pterm.FgRed.Sprintf("-%s %s", tx.Amount.StringFixed(2), currency)
		}
		table.AddRow(
			fmt.Sprintf("%d", tx.ID),
			formatTxDate(tx),
			tx.Type.Label(),
			categoryName(d, tx.CategoryID),
			amount,
			tx.Note,
		)
	}
	uc.console.Print(table.Render())

	if len(shown) < len(d.Transactions) {
		uc.console.LogInfo("Showing %d of %d transactions. Use --all to see every one.", len(shown), len(d.Transactions))
	}
}

// RenderCategories lista as categorias; custom restringe às do usuário.
func (uc *DashboardUseCase) RenderCategories(custom bool) {
	d := uc.Dashboard()

	categories := d.Categories
	if custom {
		categories = d.CustomCategories
	}
	if len(categories) == 0 {
		uc.console.LogInfo("No categories found.")
		return
	}

	table := uc.console.CreateTable()
	table.AddColumn("ID")
	table.AddColumn("Name")
	table.AddColumn("Kind")
	for _, c := range categories {
		kind := pterm.FgGray.Sprint("system")
		if c.IsUserCategory {
			kind = pterm.FgMagenta.Sprint("custom")
		}
		table.AddRow(fmt.Sprintf("%d", c.ID), c.Name, kind)
	}
	uc.console.Print(table.Render())
}

// Export grava o estado atual do dashboard em cada formato pedido.
func (uc *DashboardUseCase) Export(args *types.CLIArgs) {
	if args.ReportName == "" || len(args.ReportType) == 0 {
		return
	}
	data := uc.Dashboard()

	for _, reportType := range args.ReportType {
		switch reportType {
		case "csv":
			csvPath, err := uc.exportRepo.ExportToCSV(data, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to CSV: %s", csvPath)
			}
		case "json":
			jsonPath, err := uc.exportRepo.ExportToJSON(data, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to JSON: %s", jsonPath)
			}
		case "pdf":
			pdfPath, err := uc.exportRepo.ExportToPDF(data, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to PDF: %s", pdfPath)
			}
		default:
			uc.console.LogWarning("Unknown report type %q, skipping", reportType)
		}
	}
}

func formatTxDate(tx entity.Transaction) string {
	if tx.CreatedAt.IsZero() {
		return "-"
	}
	return tx.CreatedAt.Format("2006-01-02")
}

func categoryName(d entity.Dashboard, id int64) string {
	if name := d.CategoryName(id); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", id)
}
