package hud

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"section8-underwriter/internal/core/domain"
	"section8-underwriter/internal/core/underwriting"

	"github.com/xuri/excelize/v2"
)

type columnKind int

const (
	columnIgnored columnKind = iota
	columnZip
	columnFMR
	columnPS110
)

type columnRole struct {
	kind     columnKind
	bedrooms int
}

// classifyHeader сопоставляет заголовок колонки книги HUD с полем строки.
// В книге заголовки многострочные: "SAFMR\n2BR - 110%\nPayment Standard"
func classifyHeader(header string) columnRole {
	h := strings.ToUpper(strings.Join(strings.Fields(header), " "))
	if strings.Contains(h, "ZIP") {
		return columnRole{kind: columnZip}
	}
	for beds := 0; beds <= domain.MaxBedrooms; beds++ {
		if !strings.Contains(h, fmt.Sprintf("%dBR", beds)) {
			continue
		}
		switch {
		case strings.Contains(h, "110"):
			return columnRole{kind: columnPS110, bedrooms: beds}
		case strings.Contains(h, "90"):
			return columnRole{kind: columnIgnored}
		default:
			return columnRole{kind: columnFMR, bedrooms: beds}
		}
	}
	return columnRole{kind: columnIgnored}
}

// ParseSAFMRWorkbook читает первый лист книги SAFMR
func ParseSAFMRWorkbook(r io.Reader) ([]domain.RentTableRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("hud: failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("hud: workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("hud: failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	roles := make([]columnRole, len(rows[0]))
	zipCol := -1
	for i, h := range rows[0] {
		roles[i] = classifyHeader(h)
		if roles[i].kind == columnZip && zipCol < 0 {
			zipCol = i
		}
	}
	if zipCol < 0 {
		return nil, fmt.Errorf("hud: workbook has no zip column")
	}

	out := make([]domain.RentTableRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if zipCol >= len(cells) {
			continue
		}
		zip := strings.TrimSpace(cells[zipCol])
		if zip == "" {
			continue
		}
		row := domain.RentTableRow{Zip: underwriting.NormalizeZip(zip)}
		for i, cell := range cells {
			if i == zipCol {
				continue
			}
			role := roles[i]
			switch role.kind {
			case columnFMR:
				row.FMR[role.bedrooms] = parseRentCell(cell)
			case columnPS110:
				row.PS110[role.bedrooms] = parseRentCell(cell)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// parseRentCell понимает "1,650", "$1650" и "1650.0"; все остальное дает 0
func parseRentCell(cell string) int {
	s := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(cell))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int(v + 0.5)
}
