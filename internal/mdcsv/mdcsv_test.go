package mdcsv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Catálogo de maquinaria

Texto introductorio sin registros.

## Tractor **JD 6110**
- **Marca:** John Deere
- **Modelo**: 6110M
- **Estado:** *Operativa*
- Ubicación: Galpón norte

## Sin datos

Una sección vacía.

## Cosechadora
Marca: Claas
Año: ` + "`2019`" + `
horas_uso: 1200
- Documentación: https://example.com/manual
`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, []string{"Marca", "Modelo", "Estado", "Ubicación", "Año", "horas_uso", "Documentación"}, doc.Keys)
	require.Len(t, doc.Records, 2)

	assert.Equal(t, "Tractor JD 6110", doc.Records[0].Name)
	assert.Equal(t, map[string]string{
		"Marca":     "John Deere",
		"Modelo":    "6110M",
		"Estado":    "Operativa",
		"Ubicación": "Galpón norte",
	}, doc.Records[0].Fields)

	assert.Equal(t, "Cosechadora", doc.Records[1].Name)
	assert.Equal(t, "2019", doc.Records[1].Fields["Año"])
	assert.Equal(t, "1200", doc.Records[1].Fields["horas_uso"])
	assert.Equal(t, "https://example.com/manual", doc.Records[1].Fields["Documentación"])
}

func TestStripEmphasis(t *testing.T) {
	cases := map[string]string{
		"**negrita**":          "negrita",
		"__negrita__":          "negrita",
		"*cursiva*":            "cursiva",
		"`código`":             "código",
		"***ambas***":          "ambas",
		"motor_diesel":         "motor_diesel",
		"  sin marcas  ":       "sin marcas",
		"**A** y *B* con `C`": "A y B con C",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripEmphasis(in), in)
	}
}

func TestConvert(t *testing.T) {
	var out bytes.Buffer
	n, err := Convert(strings.NewReader(sample), &out, ';')
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "nombre;Marca;Modelo;Estado;Ubicación;Año;horas_uso;Documentación", lines[0])
	assert.Equal(t, "Tractor JD 6110;John Deere;6110M;Operativa;Galpón norte;;;", lines[1])
	assert.Equal(t, "Cosechadora;Claas;;;;2019;1200;https://example.com/manual", lines[2])
}

func TestConvertWithoutRecords(t *testing.T) {
	var out bytes.Buffer
	_, err := Convert(strings.NewReader("# Solo título\n\n## Vacía\n"), &out, 0)
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Empty(t, out.String())
}
