package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"section8-underwriter/internal/core/domain"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Offers"

// Ширина колонок листа в порядке domain.ExportColumns
var exportColumnWidths = map[string]float64{
	"Quality":             14,
	"Address":             38,
	"Rent Source":         34,
	"Repair Tier":         16,
	"Condition":           18,
	"Distress Keywords":   30,
	"Inspection Flags":    60,
	"Listing Description": 60,
	"Desc Source":         24,
	"Zillow Insight":      40,
	"Price Reduction":     18,
	"Agent Name":          22,
	"Agent Email":         28,
}

const defaultColumnWidth = 14

// Колонки с денежным форматом
var moneyColumns = map[string]bool{
	"List Price": true, "Zip Median Home Value": true, "Your Offer": true, "Max Buyer Price": true,
	"DSCR Max (uncapped)": true, "DSCR Headroom": true, "Wholesale Fee": true, "Closing Costs": true,
	"Down Payment": true, "Loan Amount": true, "Est. Buyer CF ($/mo)": true, "Monthly EGI": true,
	"Monthly Variable Expenses": true, "Monthly Mortgage": true, "Monthly Taxes": true,
	"Monthly Insurance": true, "Repair Low": true, "Repair High": true, "Tax Assessed Value": true,
	"S8 Rent ($/mo)": true,
}

// WriteXLSX пишет офферный лист: стилизованный закрепленный заголовок,
// ширина колонок и денежный формат числовых полей
func WriteXLSX(w io.Writer, deals []domain.DealRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("sheet: failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("sheet: failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("sheet: failed to create header style: %w", err)
	}
	moneyFmt := "$#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return fmt.Errorf("sheet: failed to create money style: %w", err)
	}

	header := make([]interface{}, len(domain.ExportColumns))
	for i, c := range domain.ExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("sheet: failed to write header: %w", err)
	}

	last, err := excelize.ColumnNumberToName(len(domain.ExportColumns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("sheet: failed to style header: %w", err)
	}

	for i, d := range deals {
		row := d.ExportRow()
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("sheet: failed to write row %d: %w", i+2, err)
		}
	}

	for i, c := range domain.ExportColumns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width, ok := exportColumnWidths[c]
		if !ok {
			width = defaultColumnWidth
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("sheet: failed to set width of %s: %w", c, err)
		}
		if moneyColumns[c] && len(deals) > 0 {
			if err := f.SetCellStyle(sheetName, col+"2", col+strconv.Itoa(len(deals)+1), moneyStyle); err != nil {
				return fmt.Errorf("sheet: failed to style %s: %w", c, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("sheet: failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("sheet: failed to write workbook: %w", err)
	}
	return nil
}

// WriteCSV пишет офферный лист в CSV с тем же порядком колонок
func WriteCSV(w io.Writer, deals []domain.DealRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ExportColumns); err != nil {
		return fmt.Errorf("sheet: failed to write csv header: %w", err)
	}
	record := make([]string, len(domain.ExportColumns))
	for _, d := range deals {
		for i, v := range d.ExportRow() {
			record[i] = formatCSVValue(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("sheet: failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCSVValue(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Write выбирает writer по формату
func Write(w io.Writer, format Format, deals []domain.DealRecord) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, deals)
	case FormatCSV:
		return WriteCSV(w, deals)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ContentType - MIME-тип выгрузки для HTTP-ответа
func ContentType(format Format) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
