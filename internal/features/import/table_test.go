package import_feature

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadTableCSV(t *testing.T) {
	src := "\ufeffCódigo, Nombre ,Año\nM-1, Tractor 5075E ,2018\nM-2,Sembradora\n"

	table, err := ReadTable(strings.NewReader(src), "maquinas.CSV")
	require.NoError(t, err)

	assert.Equal(t, []string{"Código", "Nombre", "Año"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, map[string]any{"Código": "M-1", "Nombre": "Tractor 5075E", "Año": "2018"}, table.Rows[0])
	assert.Equal(t, map[string]any{"Código": "M-2", "Nombre": "Sembradora"}, table.Rows[1])
}

func TestReadTableExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"codigo", "precio"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"R-10", 125.5}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := ReadTable(&buf, "repuestos.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"codigo", "precio"}, table.Headers)
	assert.Equal(t, []map[string]any{{"codigo": "R-10", "precio": "125.5"}}, table.Rows)
}

func TestReadTableRejectsOtherFormats(t *testing.T) {
	_, err := ReadTable(strings.NewReader("{}"), "datos.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
