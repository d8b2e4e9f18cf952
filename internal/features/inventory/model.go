package inventory

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go-agrofleet/pkg/filtertoken"
)

var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrUnknownField    = errors.New("unknown filter field")
	ErrInvalidValue    = errors.New("invalid filter value")
	ErrNotFound        = errors.New("item not found")
)

// Resource names one inventory collection
type Resource string

const (
	ResourceMachines  Resource = "maquinas"
	ResourceParts     Resource = "repuestos"
	ResourceSuppliers Resource = "proveedores"
	ResourceRepairs   Resource = "reparaciones"
	ResourceUsers     Resource = "usuarios"
)

// AttrKind is the stored type of an attribute used in range filters
type AttrKind int

const (
	KindText AttrKind = iota
	KindNumber
	KindDate
)

// DateLayout is the format of date bounds and exported dates
const DateLayout = "2006-01-02"

// RangeAttr is the attribute a range family filters on
type RangeAttr struct {
	Attr string
	Kind AttrKind
}

// Schema describes how the filter fields of one resource map to attributes
type Schema struct {
	Resource    Resource
	Columns     []string
	Required    []string
	SearchAttrs []string
	Fields      map[filtertoken.Field]string
	Ranges      map[filtertoken.Field]RangeAttr
}

// Kind returns the stored kind of attr
func (s Schema) Kind(attr string) AttrKind {
	for _, r := range s.Ranges {
		if r.Attr == attr {
			return r.Kind
		}
	}
	return KindText
}

// Accepts reports whether field may be set as a filter input on this
// resource. Range families are reachable only through their min and max
// inputs.
func (s Schema) Accepts(field filtertoken.Field) bool {
	if field == filtertoken.FieldSearch {
		return len(s.SearchAttrs) > 0
	}
	if _, ok := s.Fields[field]; ok {
		return true
	}
	if fam, ok := filtertoken.FamilyOfBound(field); ok {
		_, ok = s.Ranges[fam.Field]
		return ok
	}
	return false
}

// FilterInputs lists the fields Accepts allows, in a stable order.
func (s Schema) FilterInputs() []filtertoken.Field {
	var out []filtertoken.Field
	if len(s.SearchAttrs) > 0 {
		out = append(out, filtertoken.FieldSearch)
	}
	fields := make([]string, 0, len(s.Fields))
	for f := range s.Fields {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, f := range fields {
		out = append(out, filtertoken.Field(f))
	}
	for _, fam := range filtertoken.Families() {
		if _, ok := s.Ranges[fam.Field]; ok {
			out = append(out, fam.Min, fam.Max)
		}
	}
	return out
}

// CheckCriterion validates a stored criterion against the resource: range
// families take a non-empty Range and no Value, every other field takes a
// Value and no Range.
func (s Schema) CheckCriterion(c filtertoken.Criterion) error {
	if fam, ok := filtertoken.FamilyOf(c.Field); ok {
		if _, ok := s.Ranges[fam.Field]; !ok {
			return fmt.Errorf("%w: %s on %s", ErrUnknownField, c.Field, s.Resource)
		}
		if c.Value != "" || c.Range == nil || c.Range.Empty() {
			return fmt.Errorf("%w: %s needs a range", ErrInvalidValue, c.Field)
		}
		return nil
	}
	if filtertoken.IsRangeBound(c.Field) || !s.Accepts(c.Field) {
		return fmt.Errorf("%w: %s on %s", ErrUnknownField, c.Field, s.Resource)
	}
	if c.Range != nil || c.Value == "" {
		return fmt.Errorf("%w: %s needs a single value", ErrInvalidValue, c.Field)
	}
	return nil
}

// Item is one stored inventory record
type Item struct {
	ID        string         `json:"id" bson:"_id"`
	Resource  Resource       `json:"resource" bson:"resource"`
	Data      map[string]any `json:"data" bson:"data"`
	CreatedBy string         `json:"created_by" bson:"created_by"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
	Deleted   bool           `json:"-" bson:"deleted"`
}

// Flatten returns the item data with the system fields merged in
func (i *Item) Flatten() map[string]any {
	flat := make(map[string]any, len(i.Data)+4)
	for k, v := range i.Data {
		flat[k] = v
	}
	flat["id"] = i.ID
	flat["created_at"] = i.CreatedAt
	flat["updated_at"] = i.UpdatedAt
	flat["created_by"] = i.CreatedBy
	return flat
}

// ListOptions controls paging and order of a listing
type ListOptions struct {
	Limit     int64
	Offset    int64
	SortBy    string
	SortOrder int // 1 ascending, -1 descending
}

// Page is one page of filtered results
type Page struct {
	Data    []map[string]any         `json:"data"`
	Total   int64                    `json:"total"`
	Page    int                      `json:"page"`
	Limit   int                      `json:"limit"`
	Filters filtertoken.Consolidated `json:"filters"`
}
