package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/diillson/finly-dashboard-go/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{now: time.Now}
}

// --- Funções de Exportação do Dashboard ---

func (r *ExportRepositoryImpl) ExportToCSV(data entity.Dashboard, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	headers := []string{"ID", "Date", "Type", "Category", "Amount", "Currency", "Note"}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	currency := ""
	if data.Budget != nil {
		currency = string(data.Budget.Currency)
	}

	for _, tx := range data.Transactions {
		record := []string{
			fmt.Sprintf("%d", tx.ID),
			formatDate(tx.CreatedAt),
			tx.Type.Label(),
			categoryLabel(data, tx.CategoryID),
			tx.Amount.StringFixed(2),
			currency,
			tx.Note,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToJSON(data entity.Dashboard, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(data entity.Dashboard, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{92, 158, 173}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	sectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	}

	pdf.AddPage()

	// Cabeçalho
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	title := "  Budget Report"
	if data.User != nil {
		title = fmt.Sprintf("  Budget Report: %s", data.User.FullName())
	}
	pdf.CellFormat(0, 12, tr(title), "", 1, "L", true, 0, "")
	if data.User != nil {
		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("  %s", data.User.Email)), "", 1, "L", true, 0, "")
	}
	pdf.Ln(10)

	sectionTitle("Current Balance")
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 12, tr(balanceText(data)), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	sectionTitle("Balance History")
	if len(data.Series) == 0 {
		pdf.MultiCell(190, 5, tr("No history available."), "", "L", false)
	} else {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 7, "Date", "B", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, "Balance", "B", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, p := range data.Series {
			pdf.CellFormat(40, 6, tr(p.Label), "", 0, "L", false, 0, "")
			pdf.CellFormat(50, 6, tr(p.Value.StringFixed(2)), "", 1, "R", false, 0, "")
		}
	}
	pdf.Ln(8)

	sectionTitle("Transactions")
	if len(data.Transactions) == 0 {
		pdf.MultiCell(190, 5, tr("No transactions yet."), "", "L", false)
	} else {
		widths := []float64{28, 25, 40, 30, 67}
		pdf.SetFont("Arial", "B", 10)
		for i, h := range []string{"Date", "Type", "Category", "Amount", "Note"} {
			pdf.CellFormat(widths[i], 7, h, "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, tx := range data.Transactions {
			amount := tx.Amount.StringFixed(2)
			if tx.Type == entity.Withdrawal {
				pdf.SetTextColor(192, 0, 0)
				amount = "-" + amount
			} else {
				pdf.SetTextColor(0, 128, 0)
				amount = "+" + amount
			}
			pdf.CellFormat(widths[0], 6, tr(formatDate(tx.CreatedAt)), "", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, tr(tx.Type.Label()), "", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 6, tr(categoryLabel(data, tx.CategoryID)), "", 0, "L", false, 0, "")
			pdf.CellFormat(widths[3], 6, tr(amount), "", 0, "L", false, 0, "")
			pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
			pdf.CellFormat(widths[4], 6, tr(tx.Note), "", 1, "L", false, 0, "")
		}
	}

	// Rodapé
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	footerText := fmt.Sprintf("Generated by Finly Dashboard (Go) | %s", r.now().Format("2006-01-02"))
	pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func (r *ExportRepositoryImpl) generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := r.now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

func balanceText(data entity.Dashboard) string {
	if data.Budget == nil {
		return "No budget"
	}
	if data.Balance == nil {
		return fmt.Sprintf("- %s", data.Budget.Currency)
	}
	return fmt.Sprintf("%s %s", data.Balance.StringFixed(2), data.Budget.Currency)
}

func categoryLabel(data entity.Dashboard, id int64) string {
	if name := data.CategoryName(id); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
