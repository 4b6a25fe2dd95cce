package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/boirefacile/backend-go/internal/models"
)

type Format int

const (
	FormatXLSX Format = iota
	FormatCSV
)

// Column labels of the bar dataset.
const (
	ColumnName      = "Nom"
	ColumnAddress   = "Adresse"
	ColumnPrice     = "Prix"
	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
	ColumnHappyHour = "Happy Hour"
)

var requiredColumns = []string{ColumnName, ColumnAddress, ColumnLatitude, ColumnLongitude}

// FormatFor picks the dataset format from a file or object name.
func FormatFor(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// Parse reads a tabular bar dataset. The first non-blank row is the header.
// Rows are kept even when some fields are unusable; see parseRow.
func Parse(r io.Reader, format Format) ([]models.Bar, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		rows, err = readXLSX(r)
	}
	if err != nil {
		return nil, err
	}
	return rowsToBars(rows)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = sniffDelimiter(data)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return rows, nil
}

// sniffDelimiter chooses ';' when the header line uses it more than ','.
func sniffDelimiter(data []byte) rune {
	line, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func rowsToBars(rows [][]string) ([]models.Bar, error) {
	start := 0
	for start < len(rows) && blank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, errors.New("dataset has no header row")
	}

	columns := indexColumns(rows[start])
	for _, name := range requiredColumns {
		if _, ok := columns[strings.ToLower(name)]; !ok {
			return nil, &MissingColumnError{Column: name}
		}
	}

	bars := make([]models.Bar, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		if blank(row) {
			continue
		}
		bars = append(bars, parseRow(row, columns))
	}
	return bars, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, label := range header {
		key := strings.ToLower(strings.TrimSpace(label))
		if _, seen := columns[key]; !seen && key != "" {
			columns[key] = i
		}
	}
	return columns
}

// parseRow extracts what it can from a row. Unusable coordinates become NaN
// so the bar is still listed but never ranked; a blank happy hour becomes
// models.HappyHourNotSpecified.
func parseRow(row []string, columns map[string]int) models.Bar {
	field := func(name string) string {
		i, ok := columns[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	happyHour := field(ColumnHappyHour)
	if happyHour == "" {
		happyHour = models.HappyHourNotSpecified
	}

	return models.Bar{
		Name:      field(ColumnName),
		Address:   field(ColumnAddress),
		Price:     models.Price(field(ColumnPrice)),
		HappyHour: happyHour,
		Latitude:  parseCoordinate(field(ColumnLatitude), 90),
		Longitude: parseCoordinate(field(ColumnLongitude), 180),
	}
}

func parseCoordinate(s string, limit float64) models.Coordinate {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < -limit || v > limit {
		return models.Coordinate(math.NaN())
	}
	return models.Coordinate(v)
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
