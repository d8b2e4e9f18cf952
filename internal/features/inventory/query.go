package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ft "go-agrofleet/pkg/filtertoken"
)

// Operator is how a condition compares an attribute
type Operator string

const (
	OpIn          Operator = "in"           // attribute equals one of Values
	OpContainsAny Operator = "contains_any" // any of Attrs contains any of Values, case-insensitive
	OpGte         Operator = "gte"
	OpLte         Operator = "lte"
)

// Condition is one store-neutral predicate of a Query
type Condition struct {
	Attrs  []string
	Op     Operator
	Values []string
	Bound  any // float64 or time.Time for OpGte / OpLte
}

// Query is a consolidated filter mapping compiled against a resource schema.
// Conditions are combined with AND.
type Query struct {
	Resource   Resource
	Conditions []Condition
}

// BuildQuery compiles filters for resource. Keys are visited in lexical
// order so the compiled query is stable.
func BuildQuery(schema Schema, filters ft.Consolidated) (Query, error) {
	q := Query{Resource: schema.Resource}

	for _, key := range filters.Keys() {
		field := ft.Field(key)

		if fam, ok := ft.FamilyOfBound(field); ok {
			cond, err := rangeCondition(schema, fam, field, filters[key])
			if err != nil {
				return Query{}, err
			}
			q.Conditions = append(q.Conditions, cond)
			continue
		}

		values := filters.Values(key)
		if len(values) == 0 {
			continue
		}

		if field == ft.FieldSearch {
			if len(schema.SearchAttrs) == 0 {
				return Query{}, fmt.Errorf("%w: %s on %s", ErrUnknownField, key, schema.Resource)
			}
			q.Conditions = append(q.Conditions, Condition{Attrs: schema.SearchAttrs, Op: OpContainsAny, Values: values})
			continue
		}

		attr, ok := schema.Fields[field]
		if !ok {
			return Query{}, fmt.Errorf("%w: %s on %s", ErrUnknownField, key, schema.Resource)
		}
		op := OpIn
		if ft.IsAccumulating(field) {
			op = OpContainsAny
		}
		q.Conditions = append(q.Conditions, Condition{Attrs: []string{attr}, Op: op, Values: values})
	}

	return q, nil
}

func rangeCondition(schema Schema, fam ft.RangeFamily, bound ft.Field, raw any) (Condition, error) {
	ra, ok := schema.Ranges[fam.Field]
	if !ok {
		return Condition{}, fmt.Errorf("%w: %s on %s", ErrUnknownField, bound, schema.Resource)
	}

	s, ok := raw.(string)
	if !ok {
		return Condition{}, fmt.Errorf("%w: %s must be a single value", ErrInvalidValue, bound)
	}

	v, err := parseBound(ra.Kind, s)
	if err != nil {
		return Condition{}, fmt.Errorf("%w: %s=%q", ErrInvalidValue, bound, s)
	}

	op := OpGte
	if bound == fam.Max {
		op = OpLte
	}
	return Condition{Attrs: []string{ra.Attr}, Op: op, Values: []string{s}, Bound: v}, nil
}

func parseBound(kind AttrKind, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch kind {
	case KindNumber:
		return strconv.ParseFloat(s, 64)
	case KindDate:
		return parseDate(s)
	}
	return s, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Normalize converts the range attributes of data to their stored kind so
// that range filters compare numbers and dates, not strings. Unparseable
// values are rejected.
func Normalize(schema Schema, data map[string]any) error {
	for _, ra := range schema.Ranges {
		raw, ok := data[ra.Attr]
		if !ok || raw == nil {
			continue
		}
		switch ra.Kind {
		case KindNumber:
			n, err := toFloat(raw)
			if err != nil {
				return fmt.Errorf("%w: %s=%v", ErrInvalidValue, ra.Attr, raw)
			}
			data[ra.Attr] = n
		case KindDate:
			switch v := raw.(type) {
			case time.Time:
				data[ra.Attr] = v.UTC()
			case string:
				if v == "" {
					delete(data, ra.Attr)
					continue
				}
				t, err := parseDate(v)
				if err != nil {
					return fmt.Errorf("%w: %s=%v", ErrInvalidValue, ra.Attr, raw)
				}
				data[ra.Attr] = t.UTC()
			default:
				return fmt.Errorf("%w: %s=%v", ErrInvalidValue, ra.Attr, raw)
			}
		}
	}
	return nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	return 0, fmt.Errorf("not a number: %T", v)
}

// FormatValue renders a stored value for catalogs and exports
func FormatValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(tv), 'f', -1, 32)
	case int:
		return strconv.Itoa(tv)
	case int32:
		return strconv.FormatInt(int64(tv), 10)
	case int64:
		return strconv.FormatInt(tv, 10)
	case time.Time:
		return tv.UTC().Format(DateLayout)
	case fmt.Stringer:
		return tv.String()
	}
	return fmt.Sprintf("%v", v)
}
