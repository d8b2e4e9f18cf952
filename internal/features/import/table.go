package import_feature

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is the content of an uploaded sheet with the header row split off
type Table struct {
	Headers []string
	Rows    []map[string]any
}

// ReadTable parses a .csv or .xlsx file. Only the first sheet of a workbook
// is read.
func ReadTable(r io.Reader, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(r)
	case ".xlsx":
		return readExcel(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

func readCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	headers = cleanHeaders(headers)

	t := &Table{Headers: headers}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		t.Rows = append(t.Rows, toRow(headers, rec))
	}
	return t, nil
}

func readExcel(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	headers := cleanHeaders(rows[0])
	t := &Table{Headers: headers}
	for _, row := range rows[1:] {
		t.Rows = append(t.Rows, toRow(headers, row))
	}
	return t, nil
}

func cleanHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

func toRow(headers, cells []string) map[string]any {
	row := make(map[string]any, len(headers))
	for i, value := range cells {
		if i < len(headers) && headers[i] != "" {
			row[headers[i]] = strings.TrimSpace(value)
		}
	}
	return row
}
