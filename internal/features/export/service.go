package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"go-agrofleet/internal/features/filter_session"
	"go-agrofleet/internal/features/inventory"
	ft "go-agrofleet/pkg/filtertoken"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// batchSize is the page size used to walk the filtered result set
const batchSize = inventory.MaxPageSize

// File is a rendered export
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Rows        int
}

type ExportService interface {
	ExportSession(ctx context.Context, userID, sessionID string, format Format) (*File, error)
	ExportFiltered(ctx context.Context, resource inventory.Resource, filters ft.Consolidated, format Format) (*File, error)
}

type ExportServiceImpl struct {
	Inventory inventory.InventoryService
	Sessions  filter_session.FilterSessionService
	Logger    *zap.Logger
	now       func() time.Time
}

func NewExportService(inv inventory.InventoryService, sessions filter_session.FilterSessionService, logger *zap.Logger) ExportService {
	return &ExportServiceImpl{
		Inventory: inv,
		Sessions:  sessions,
		Logger:    logger,
		now:       time.Now,
	}
}

// ExportSession writes every record matched by the session's active tokens
func (s *ExportServiceImpl) ExportSession(ctx context.Context, userID, sessionID string, format Format) (*File, error) {
	resource, tokens, err := s.Sessions.Tokens(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.ExportFiltered(ctx, resource, ft.Consolidate(tokens), format)
}

func (s *ExportServiceImpl) ExportFiltered(ctx context.Context, resource inventory.Resource, filters ft.Consolidated, format Format) (*File, error) {
	if format != FormatCSV && format != FormatXLSX {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	schema, err := s.Inventory.Schema(resource)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	for page := 1; ; page++ {
		result, err := s.Inventory.ListFiltered(ctx, resource, filters, page, batchSize)
		if err != nil {
			return nil, err
		}
		rows = append(rows, result.Data...)
		if len(result.Data) < batchSize || int64(len(rows)) >= result.Total {
			break
		}
	}

	columns := append([]string{"id"}, schema.Columns...)
	name := fmt.Sprintf("%s_%s.%s", resource, s.now().Format("20060102_150405"), format)

	var file *File
	switch format {
	case FormatCSV:
		data, err := writeCSV(columns, rows)
		if err != nil {
			return nil, err
		}
		file = &File{Name: name, ContentType: "text/csv; charset=utf-8", Data: data}
	case FormatXLSX:
		data, err := writeExcel(string(resource), columns, rows)
		if err != nil {
			return nil, err
		}
		file = &File{Name: name, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Data: data}
	}
	file.Rows = len(rows)

	s.Logger.Info("inventory exported",
		zap.String("resource", string(resource)),
		zap.String("format", string(format)),
		zap.Int("rows", file.Rows),
	)
	return file, nil
}

func writeCSV(columns []string, rows []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = inventory.FormatValue(row[col])
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func writeExcel(sheetName string, columns []string, rows []map[string]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			switch v := row[col].(type) {
			case float64, int64, int:
				f.SetCellValue(sheetName, cell, v)
			default:
				f.SetCellValue(sheetName, cell, inventory.FormatValue(v))
			}
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
