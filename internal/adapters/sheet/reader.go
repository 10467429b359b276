package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"section8-underwriter/internal/core/domain"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported sheet format")
	ErrMissingColumns    = errors.New("missing required columns")
)

// FormatFromFilename определяет формат по расширению файла
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

type field int

const (
	fieldAddress field = iota
	fieldZip
	fieldBedrooms
	fieldListPrice
	fieldDescription
	fieldSqft
	fieldAgentName
	fieldAgentEmail
)

var fieldNames = map[field]string{
	fieldAddress:   "Address",
	fieldZip:       "Zip",
	fieldBedrooms:  "Bedrooms",
	fieldListPrice: "List Price",
}

var requiredFields = []field{fieldAddress, fieldZip, fieldBedrooms, fieldListPrice}

// Синонимы заголовков после приведения к нижнему регистру без пробелов и "_"
var headerAliases = map[string]field{
	"address": fieldAddress, "addr": fieldAddress, "streetaddress": fieldAddress, "propertyaddress": fieldAddress,

	"zip": fieldZip, "zipcode": fieldZip, "postalcode": fieldZip, "postal": fieldZip,

	"bedrooms": fieldBedrooms, "beds": fieldBedrooms, "bed": fieldBedrooms, "br": fieldBedrooms,
	"bdrms": fieldBedrooms, "bdrm": fieldBedrooms,

	"listprice": fieldListPrice, "price": fieldListPrice, "mlsamount": fieldListPrice, "askingprice": fieldListPrice,
	"listingprice": fieldListPrice, "amount": fieldListPrice, "saleprice": fieldListPrice, "list": fieldListPrice,

	"description": fieldDescription, "desc": fieldDescription, "remarks": fieldDescription,
	"publicremarks": fieldDescription, "notes": fieldDescription, "listingremarks": fieldDescription,
	"agentremarks": fieldDescription,

	"sqft": fieldSqft, "squarefeet": fieldSqft, "squarefootage": fieldSqft, "livingarea": fieldSqft, "sqfeet": fieldSqft,

	"agentname": fieldAgentName, "listingagent": fieldAgentName, "agent": fieldAgentName,
	"agentemail": fieldAgentEmail, "email": fieldAgentEmail, "listingagentemail": fieldAgentEmail,
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "").Replace(h)
}

// ReadProperties читает список объектов из CSV или XLSX (первый лист)
func ReadProperties(r io.Reader, format Format) ([]domain.PropertyInput, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sheet: failed to read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("sheet: failed to open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, fmt.Errorf("sheet: workbook has no sheets")
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("sheet: failed to read rows: %w", err)
	}
	return rows, nil
}

func parseRows(rows [][]string) ([]domain.PropertyInput, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", ErrMissingColumns)
	}

	columns := make(map[field]int)
	for i, h := range rows[0] {
		if f, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, seen := columns[f]; !seen {
				columns[f] = i
			}
		}
	}

	var missing []string
	for _, f := range requiredFields {
		if _, ok := columns[f]; !ok {
			missing = append(missing, fieldNames[f])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	cell := func(row []string, f field) string {
		i, ok := columns[f]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]domain.PropertyInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		out = append(out, domain.PropertyInput{
			Address:     cell(row, fieldAddress),
			Zip:         parseZip(cell(row, fieldZip)),
			Bedrooms:    int(parseNumber(cell(row, fieldBedrooms))),
			ListPrice:   parseNumber(cell(row, fieldListPrice)),
			SquareFeet:  int(parseNumber(cell(row, fieldSqft))),
			Description: cell(row, fieldDescription),
			AgentName:   cell(row, fieldAgentName),
			AgentEmail:  cell(row, fieldAgentEmail),
		})
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseNumber убирает "$" и разделители тысяч; нечисловое значение, NaN и Inf дают 0
func parseNumber(raw string) float64 {
	s := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseZip превращает числовую ячейку "46205.0" в "46205", остальное оставляет как есть
func parseZip(raw string) string {
	if v, err := strconv.ParseFloat(raw, 64); err == nil && strings.Contains(raw, ".") {
		return strconv.Itoa(int(v))
	}
	return raw
}
