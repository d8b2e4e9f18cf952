package filtertoken

import (
	"sort"
	"strings"
)

// Field identifies a filter input or the field family a token belongs to.
type Field string

const (
	FieldSearch    Field = "search"
	FieldCategoria Field = "categoria"
	FieldUbicacion Field = "ubicacion"
	FieldEstado    Field = "estado"
	FieldCodigo    Field = "codigo"
	FieldNombre    Field = "nombre"
	FieldContacto  Field = "contacto"
	FieldTipo      Field = "tipo"
	FieldPrioridad Field = "prioridad"

	FieldAnio   Field = "anio"
	FieldPrecio Field = "precio"
	FieldFecha  Field = "fecha"

	FieldAnioMin   Field = "anioMin"
	FieldAnioMax   Field = "anioMax"
	FieldPrecioMin Field = "precioMin"
	FieldPrecioMax Field = "precioMax"
	FieldFechaMin  Field = "fechaMin"
	FieldFechaMax  Field = "fechaMax"
)

// RangeFamily pairs the min/max inputs that collapse into one range token.
type RangeFamily struct {
	Field Field
	Min   Field
	Max   Field

	both    string // label prefix when both bounds are set
	minOnly string
	maxOnly string
}

var families = []RangeFamily{
	{Field: FieldAnio, Min: FieldAnioMin, Max: FieldAnioMax, both: "Años", minOnly: "Año mín", maxOnly: "Año máx"},
	{Field: FieldPrecio, Min: FieldPrecioMin, Max: FieldPrecioMax, both: "Precio", minOnly: "Precio mín", maxOnly: "Precio máx"},
	{Field: FieldFecha, Min: FieldFechaMin, Max: FieldFechaMax, both: "Fechas", minOnly: "Desde", maxOnly: "Hasta"},
}

// inputOrder is the order in which ApplyCurrent walks scalar inputs, so that
// tokens come out in the same order the filter panel lists them.
var inputOrder = []Field{
	FieldSearch, FieldCodigo, FieldNombre, FieldContacto,
	FieldCategoria, FieldUbicacion, FieldEstado, FieldTipo, FieldPrioridad,
	FieldPrecio, FieldFecha,
	FieldAnioMin, FieldAnioMax, FieldPrecioMin, FieldPrecioMax, FieldFechaMin, FieldFechaMax,
}

var labelPrefix = map[Field]string{
	FieldSearch:    "Búsqueda",
	FieldCategoria: "Categoría",
	FieldUbicacion: "Ubicación",
	FieldEstado:    "Estado",
	FieldCodigo:    "Código",
	FieldNombre:    "Nombre",
	FieldContacto:  "Contacto",
	FieldTipo:      "Tipo",
	FieldPrioridad: "Prioridad",
	FieldPrecio:    "Precio",
	FieldFecha:     "Fecha",
	FieldAnio:      "Año",
}

var icons = map[Field]string{
	FieldSearch:    "search",
	FieldCategoria: "tag",
	FieldUbicacion: "map-pin",
	FieldEstado:    "activity",
	FieldCodigo:    "hash",
	FieldNombre:    "type",
	FieldContacto:  "user",
	FieldTipo:      "layers",
	FieldPrioridad: "alert-triangle",
	FieldAnio:      "calendar",
	FieldPrecio:    "dollar-sign",
	FieldFecha:     "clock",
}

// Families returns the range families in application order.
func Families() []RangeFamily {
	out := make([]RangeFamily, len(families))
	copy(out, families)
	return out
}

// FamilyOf returns the range family whose token field is f.
func FamilyOf(f Field) (RangeFamily, bool) {
	for _, fam := range families {
		if fam.Field == f {
			return fam, true
		}
	}
	return RangeFamily{}, false
}

// FamilyOfBound returns the family owning the min or max input f.
func FamilyOfBound(f Field) (RangeFamily, bool) {
	for _, fam := range families {
		if fam.Min == f || fam.Max == f {
			return fam, true
		}
	}
	return RangeFamily{}, false
}

// IsRangeBound reports whether f is one of the six min/max inputs.
func IsRangeBound(f Field) bool {
	_, ok := FamilyOfBound(f)
	return ok
}

// IsAccumulating reports whether f is a free-text field whose consolidated
// value collects every distinct applied value.
func IsAccumulating(f Field) bool {
	switch f {
	case FieldSearch, FieldCodigo, FieldNombre, FieldContacto:
		return true
	}
	return false
}

// Icon returns the presentation handle for f. Tokens do not carry it.
func Icon(f Field) string {
	if icon, ok := icons[f]; ok {
		return icon
	}
	return "filter"
}

// Label renders the display text of a token built from field and value.
// value is either a string or a Range.
func Label(field Field, value any) string {
	if r, ok := value.(Range); ok {
		fam, known := FamilyOf(field)
		if !known {
			fam = RangeFamily{both: string(field), minOnly: string(field) + " mín", maxOnly: string(field) + " máx"}
		}
		switch {
		case r.Min != "" && r.Max != "":
			return fam.both + ": " + r.Min + " - " + r.Max
		case r.Min != "":
			return fam.minOnly + ": " + r.Min
		default:
			return fam.maxOnly + ": " + r.Max
		}
	}

	text, _ := value.(string)
	if prefix, ok := labelPrefix[field]; ok {
		return prefix + ": " + text
	}
	return string(field) + ": " + text
}

// State is the temporary, not yet applied filter input.
type State map[Field]string

// DefaultState returns an all-empty State holding every known input.
func DefaultState() State {
	s := make(State, len(inputOrder))
	for _, f := range inputOrder {
		s[f] = ""
	}
	return s
}

// Clone returns an independent copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// HasInput reports whether any input holds a non-empty value.
func (s State) HasInput() bool {
	for _, v := range s {
		if v != "" {
			return true
		}
	}
	return false
}

func (s State) reset() {
	for k := range s {
		s[k] = ""
	}
}

// keys returns the inputs of s with the known ones first, in panel order,
// followed by any other key in lexical order.
func (s State) keys() []Field {
	known := make(map[Field]bool, len(inputOrder))
	out := make([]Field, 0, len(s))
	for _, f := range inputOrder {
		known[f] = true
		if _, ok := s[f]; ok {
			out = append(out, f)
		}
	}

	var extra []Field
	for f := range s {
		if !known[f] {
			extra = append(extra, f)
		}
	}
	sort.Slice(extra, func(i, j int) bool {
		return strings.Compare(string(extra[i]), string(extra[j])) < 0
	})
	return append(out, extra...)
}
