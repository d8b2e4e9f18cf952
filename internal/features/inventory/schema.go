package inventory

import (
	"fmt"
	"sort"

	ft "go-agrofleet/pkg/filtertoken"
)

var schemas = map[Resource]Schema{
	ResourceMachines: {
		Resource:    ResourceMachines,
		Columns:     []string{"codigo", "nombre", "marca", "modelo", "categoria", "ubicacion", "estado", "anio", "precio", "fecha_adquisicion", "horas_uso"},
		Required:    []string{"codigo", "nombre"},
		SearchAttrs: []string{"nombre", "marca", "modelo", "codigo"},
		Fields: map[ft.Field]string{
			ft.FieldCodigo:    "codigo",
			ft.FieldNombre:    "nombre",
			ft.FieldCategoria: "categoria",
			ft.FieldUbicacion: "ubicacion",
			ft.FieldEstado:    "estado",
		},
		Ranges: map[ft.Field]RangeAttr{
			ft.FieldAnio:   {Attr: "anio", Kind: KindNumber},
			ft.FieldPrecio: {Attr: "precio", Kind: KindNumber},
			ft.FieldFecha:  {Attr: "fecha_adquisicion", Kind: KindDate},
		},
	},
	ResourceParts: {
		Resource:    ResourceParts,
		Columns:     []string{"codigo", "nombre", "categoria", "ubicacion", "estado", "stock", "precio", "proveedor", "maquina_compatible"},
		Required:    []string{"codigo", "nombre"},
		SearchAttrs: []string{"nombre", "codigo", "proveedor", "maquina_compatible"},
		Fields: map[ft.Field]string{
			ft.FieldCodigo:    "codigo",
			ft.FieldNombre:    "nombre",
			ft.FieldCategoria: "categoria",
			ft.FieldUbicacion: "ubicacion",
			ft.FieldEstado:    "estado",
		},
		Ranges: map[ft.Field]RangeAttr{
			ft.FieldPrecio: {Attr: "precio", Kind: KindNumber},
		},
	},
	ResourceSuppliers: {
		Resource:    ResourceSuppliers,
		Columns:     []string{"nombre", "contacto", "telefono", "email", "categoria", "ubicacion", "estado"},
		Required:    []string{"nombre"},
		SearchAttrs: []string{"nombre", "contacto", "email"},
		Fields: map[ft.Field]string{
			ft.FieldNombre:    "nombre",
			ft.FieldContacto:  "contacto",
			ft.FieldCategoria: "categoria",
			ft.FieldUbicacion: "ubicacion",
			ft.FieldEstado:    "estado",
		},
	},
	ResourceRepairs: {
		Resource:    ResourceRepairs,
		Columns:     []string{"codigo", "maquina", "tipo", "prioridad", "estado", "fecha", "costo", "tecnico", "descripcion"},
		Required:    []string{"maquina", "tipo"},
		SearchAttrs: []string{"maquina", "tecnico", "descripcion"},
		Fields: map[ft.Field]string{
			ft.FieldCodigo:    "codigo",
			ft.FieldTipo:      "tipo",
			ft.FieldPrioridad: "prioridad",
			ft.FieldEstado:    "estado",
		},
		Ranges: map[ft.Field]RangeAttr{
			ft.FieldPrecio: {Attr: "costo", Kind: KindNumber},
			ft.FieldFecha:  {Attr: "fecha", Kind: KindDate},
		},
	},
	ResourceUsers: {
		Resource:    ResourceUsers,
		Columns:     []string{"nombre", "email", "tipo", "estado"},
		Required:    []string{"nombre", "email"},
		SearchAttrs: []string{"nombre", "email"},
		Fields: map[ft.Field]string{
			ft.FieldNombre: "nombre",
			ft.FieldTipo:   "tipo",
			ft.FieldEstado: "estado",
		},
	},
}

// SchemaFor returns the schema of resource
func SchemaFor(resource Resource) (Schema, error) {
	s, ok := schemas[resource]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	return s, nil
}

// Resources lists every known resource in lexical order
func Resources() []Resource {
	out := make([]Resource, 0, len(schemas))
	for r := range schemas {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
