package inventory

import (
	"testing"
	"time"

	ft "go-agrofleet/pkg/filtertoken"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func machines(t *testing.T) Schema {
	t.Helper()
	s, err := SchemaFor(ResourceMachines)
	require.NoError(t, err)
	return s
}

func TestBuildQuery(t *testing.T) {
	filters := ft.Consolidated{
		"categoria": []string{"Tractores", "Cosechadoras"},
		"search":    []string{"john"},
		"nombre":    []string{"serie 5"},
		"anioMin":   "2015",
		"fechaMax":  "2023-06-30",
	}

	q, err := BuildQuery(machines(t), filters)
	require.NoError(t, err)
	assert.Equal(t, ResourceMachines, q.Resource)
	require.Len(t, q.Conditions, 5)

	// lexical key order: anioMin, categoria, fechaMax, nombre, search
	assert.Equal(t, Condition{Attrs: []string{"anio"}, Op: OpGte, Values: []string{"2015"}, Bound: 2015.0}, q.Conditions[0])
	assert.Equal(t, Condition{Attrs: []string{"categoria"}, Op: OpIn, Values: []string{"Tractores", "Cosechadoras"}}, q.Conditions[1])
	assert.Equal(t, OpLte, q.Conditions[2].Op)
	assert.Equal(t, []string{"fecha_adquisicion"}, q.Conditions[2].Attrs)
	assert.Equal(t, time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), q.Conditions[2].Bound)
	assert.Equal(t, Condition{Attrs: []string{"nombre"}, Op: OpContainsAny, Values: []string{"serie 5"}}, q.Conditions[3])
	assert.Equal(t, OpContainsAny, q.Conditions[4].Op)
	assert.Equal(t, []string{"nombre", "marca", "modelo", "codigo"}, q.Conditions[4].Attrs)
}

func TestBuildQueryEmpty(t *testing.T) {
	q, err := BuildQuery(machines(t), ft.Consolidated{})
	require.NoError(t, err)
	assert.Empty(t, q.Conditions)
}

func TestBuildQueryErrors(t *testing.T) {
	suppliers, err := SchemaFor(ResourceSuppliers)
	require.NoError(t, err)

	tests := []struct {
		name    string
		schema  Schema
		filters ft.Consolidated
		want    error
	}{
		{"range on resource without it", suppliers, ft.Consolidated{"precioMin": "10"}, ErrUnknownField},
		{"unknown field", machines(t), ft.Consolidated{"color": []string{"verde"}}, ErrUnknownField},
		{"field not on resource", machines(t), ft.Consolidated{"prioridad": []string{"Alta"}}, ErrUnknownField},
		{"non numeric year", machines(t), ft.Consolidated{"anioMin": "dos mil"}, ErrInvalidValue},
		{"bad date", machines(t), ft.Consolidated{"fechaMin": "30/06/2023"}, ErrInvalidValue},
		{"list for a bound", machines(t), ft.Consolidated{"anioMax": []string{"2020"}}, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildQuery(tt.schema, tt.filters)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRepairsMapPrecioToCosto(t *testing.T) {
	s, err := SchemaFor(ResourceRepairs)
	require.NoError(t, err)

	q, err := BuildQuery(s, ft.Consolidated{"precioMax": "1500.5"})
	require.NoError(t, err)
	require.Len(t, q.Conditions, 1)
	assert.Equal(t, []string{"costo"}, q.Conditions[0].Attrs)
	assert.Equal(t, 1500.5, q.Conditions[0].Bound)
}

func TestNormalize(t *testing.T) {
	data := map[string]any{
		"codigo":            "MAQ-001",
		"anio":              "2018",
		"precio":            int64(45000),
		"fecha_adquisicion": "2020-03-15",
	}
	require.NoError(t, Normalize(machines(t), data))

	assert.Equal(t, 2018.0, data["anio"])
	assert.Equal(t, 45000.0, data["precio"])
	assert.Equal(t, time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), data["fecha_adquisicion"])
	assert.Equal(t, "MAQ-001", data["codigo"])
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	err := Normalize(machines(t), map[string]any{"anio": "viejo"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	err = Normalize(machines(t), map[string]any{"fecha_adquisicion": true})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestNormalizeDropsEmptyDate(t *testing.T) {
	data := map[string]any{"fecha_adquisicion": ""}
	require.NoError(t, Normalize(machines(t), data))
	assert.NotContains(t, data, "fecha_adquisicion")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "2015", FormatValue(2015.0))
	assert.Equal(t, "12.5", FormatValue(12.5))
	assert.Equal(t, "7", FormatValue(int32(7)))
	assert.Equal(t, "2024-01-02", FormatValue(time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, "true", FormatValue(true))
}

func TestSchemaFor(t *testing.T) {
	_, err := SchemaFor("tractores")
	assert.ErrorIs(t, err, ErrUnknownResource)

	assert.Equal(t, []Resource{ResourceMachines, ResourceSuppliers, ResourceRepairs, ResourceParts, ResourceUsers}, Resources())
}

func TestSchemaAccepts(t *testing.T) {
	s := machines(t)
	assert.True(t, s.Accepts(ft.FieldSearch))
	assert.True(t, s.Accepts(ft.FieldCategoria))
	assert.True(t, s.Accepts(ft.FieldAnioMin))
	assert.True(t, s.Accepts(ft.FieldFechaMax))
	assert.False(t, s.Accepts(ft.FieldPrioridad))
	assert.False(t, s.Accepts("color"))

	for _, family := range []ft.Field{ft.FieldAnio, ft.FieldPrecio, ft.FieldFecha} {
		assert.False(t, s.Accepts(family), "%s is only set through its bounds", family)
	}

	parts, err := SchemaFor(ResourceParts)
	require.NoError(t, err)
	assert.True(t, parts.Accepts(ft.FieldPrecioMin))
	assert.False(t, parts.Accepts(ft.FieldAnioMin))
}

func TestSchemaFilterInputsBuildQueries(t *testing.T) {
	s := machines(t)
	inputs := s.FilterInputs()
	assert.Equal(t, []ft.Field{
		ft.FieldSearch,
		ft.FieldCategoria, ft.FieldCodigo, ft.FieldEstado, ft.FieldNombre, ft.FieldUbicacion,
		ft.FieldAnioMin, ft.FieldAnioMax, ft.FieldPrecioMin, ft.FieldPrecioMax, ft.FieldFechaMin, ft.FieldFechaMax,
	}, inputs)

	for _, f := range inputs {
		value := "1"
		if f == ft.FieldFechaMin || f == ft.FieldFechaMax {
			value = "2020-01-01"
		}
		_, err := BuildQuery(s, ft.FromValues(map[string][]string{string(f): {value}}))
		assert.NoError(t, err, "input %s", f)
	}
}

func TestSchemaCheckCriterion(t *testing.T) {
	s := machines(t)

	tests := []struct {
		name string
		c    ft.Criterion
		err  error
	}{
		{"scalar", ft.Criterion{Field: ft.FieldCategoria, Value: "Tractores"}, nil},
		{"search", ft.Criterion{Field: ft.FieldSearch, Value: "john"}, nil},
		{"range", ft.Criterion{Field: ft.FieldAnio, Range: &ft.Range{Min: "2010"}}, nil},
		{"range on scalar field", ft.Criterion{Field: ft.FieldCategoria, Range: &ft.Range{Min: "a", Max: "b"}}, ErrInvalidValue},
		{"scalar on range family", ft.Criterion{Field: ft.FieldPrecio, Value: "100"}, ErrInvalidValue},
		{"both set", ft.Criterion{Field: ft.FieldAnio, Value: "2010", Range: &ft.Range{Min: "2010"}}, ErrInvalidValue},
		{"empty range", ft.Criterion{Field: ft.FieldAnio, Range: &ft.Range{}}, ErrInvalidValue},
		{"empty value", ft.Criterion{Field: ft.FieldEstado}, ErrInvalidValue},
		{"bound as field", ft.Criterion{Field: ft.FieldAnioMin, Value: "2010"}, ErrUnknownField},
		{"not on resource", ft.Criterion{Field: ft.FieldPrioridad, Value: "Alta"}, ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CheckCriterion(tt.c)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}

	parts, err := SchemaFor(ResourceParts)
	require.NoError(t, err)
	assert.ErrorIs(t, parts.CheckCriterion(ft.Criterion{Field: ft.FieldAnio, Range: &ft.Range{Min: "2010"}}), ErrUnknownField)
}
