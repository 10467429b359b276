package sheet

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"section8-underwriter/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadProperties_CSVAliases(t *testing.T) {
	input := "Property Address,ZIP_Code,Beds,Asking Price,Public Remarks,Sq Ft,Listing Agent,Email\n" +
		"\"12 Elm St, Indianapolis, IN\",46205,3,\"$85,000\",Investor special needs TLC,1100,Jane Roe,jane@example.test\n" +
		",,,,,,,\n" +
		"9 Oak Ave,501,,bad,,,,\n"

	props, err := ReadProperties(strings.NewReader(input), FormatCSV)
	require.NoError(t, err)
	require.Len(t, props, 2)

	p := props[0]
	assert.Equal(t, "12 Elm St, Indianapolis, IN", p.Address)
	assert.Equal(t, "46205", p.Zip)
	assert.Equal(t, 3, p.Bedrooms)
	assert.Equal(t, 85000.0, p.ListPrice)
	assert.Equal(t, "Investor special needs TLC", p.Description)
	assert.Equal(t, 1100, p.SquareFeet)
	assert.Equal(t, "Jane Roe", p.AgentName)
	assert.Equal(t, "jane@example.test", p.AgentEmail)

	assert.Equal(t, "501", props[1].Zip)
	assert.Equal(t, 0, props[1].Bedrooms)
	assert.Equal(t, 0.0, props[1].ListPrice)
}

func TestReadProperties_MissingColumns(t *testing.T) {
	_, err := ReadProperties(strings.NewReader("Address,Price\nx,1\n"), FormatCSV)
	require.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "Zip, Bedrooms")
}

func TestReadProperties_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Address", "Zip", "Bedrooms", "List Price"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"12 Elm St", 46205, 2, 64900.5}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	props, err := ReadProperties(&buf, FormatXLSX)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "46205", props[0].Zip)
	assert.Equal(t, 2, props[0].Bedrooms)
	assert.Equal(t, 64900.5, props[0].ListPrice)
}

func TestFormatFromFilename(t *testing.T) {
	f, err := FormatFromFilename("list.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatFromFilename("/tmp/list.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatFromFilename("list.ods")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 150000.0, parseNumber(" $150,000 "))
	assert.Equal(t, 0.0, parseNumber("n/a"))
	assert.Equal(t, 0.0, parseNumber("-5"))
	for _, raw := range []string{"NaN", "nan", "Inf", "+Inf", "Infinity", "-inf"} {
		assert.Equal(t, 0.0, parseNumber(raw), raw)
	}
	assert.Equal(t, "46205", parseZip("46205.0"))
	assert.Equal(t, "46205-1234", parseZip("46205-1234"))
}

func sampleDeals() []domain.DealRecord {
	return []domain.DealRecord{{
		Quality:   domain.TierGreenLight,
		Input:     domain.PropertyInput{Address: "12 Elm St", Zip: "46205", Bedrooms: 3, ListPrice: 85000},
		Rent:      domain.RentRecord{Amount: 1650, Source: "HUD SAFMR FY2026 (100% FMR, zip 46205)"},
		Offer:     domain.OfferResult{Viable: true, YourOffer: 72815.53, MaxBuyerPrice: 85000},
		Condition: domain.ConditionGood,
		Flags:     []string{"a", "b"},
	}}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleDeals()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.ExportColumns, records[0])
	assert.Equal(t, "Green Light", records[1][0])
	assert.Equal(t, "85000", records[1][5])
	assert.Equal(t, "72815.53", records[1][11])
	assert.Equal(t, "a | b", records[1][30])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleDeals()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, sheetName, f.GetSheetName(0))
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Quality", rows[0][0])
	assert.Equal(t, "12 Elm St", rows[1][1])

	v, err := f.GetCellValue(sheetName, "L2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "72815.53", v)
}
