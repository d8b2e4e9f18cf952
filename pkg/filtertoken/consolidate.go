package filtertoken

import (
	"net/url"
	"sort"
)

// Consolidated is the flat query mapping derived from the active tokens.
// Range bounds map to a single string (anioMin, precioMax, ...); every other
// key maps to a []string of distinct values in first-applied order.
type Consolidated map[string]any

// Consolidate folds tokens, in order, into a query mapping.
func Consolidate(tokens []Token) Consolidated {
	out := Consolidated{}
	for _, t := range tokens {
		if r, ok := t.Range(); ok {
			fam, known := FamilyOf(t.Field)
			if !known {
				continue
			}
			// later tokens of a family overwrite earlier bounds
			if r.Min != "" {
				out[string(fam.Min)] = r.Min
			}
			if r.Max != "" {
				out[string(fam.Max)] = r.Max
			}
			continue
		}

		v, ok := t.Text()
		if !ok {
			continue
		}
		// accumulating text fields and categorical fields fold the same way
		key := string(t.Field)
		existing, _ := out[key].([]string)
		if !contains(existing, v) {
			out[key] = append(existing, v)
		}
	}
	return out
}

// Values returns the list stored under key.
func (c Consolidated) Values(key string) []string {
	v, _ := c[key].([]string)
	return v
}

// Bound returns the scalar stored under key.
func (c Consolidated) Bound(key string) (string, bool) {
	v, ok := c[key].(string)
	return v, ok
}

// Keys returns the keys of c in lexical order.
func (c Consolidated) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of c.
func (c Consolidated) Clone() Consolidated {
	out := make(Consolidated, len(c))
	for k, v := range c {
		switch tv := v.(type) {
		case []string:
			out[k] = append([]string(nil), tv...)
		default:
			out[k] = v
		}
	}
	return out
}

// Encode renders c as URL query values, one entry per list element.
func (c Consolidated) Encode() url.Values {
	q := url.Values{}
	for _, k := range c.Keys() {
		switch v := c[k].(type) {
		case []string:
			for _, s := range v {
				q.Add(k, s)
			}
		case string:
			q.Set(k, v)
		}
	}
	return q
}

// FromValues parses query values back into the consolidated shape. Range
// bounds keep their last value; other keys keep distinct non-empty values.
func FromValues(values map[string][]string) Consolidated {
	out := Consolidated{}
	for k, vs := range values {
		if IsRangeBound(Field(k)) {
			for i := len(vs) - 1; i >= 0; i-- {
				if vs[i] != "" {
					out[k] = vs[i]
					break
				}
			}
			continue
		}
		var list []string
		for _, v := range vs {
			if v != "" && !contains(list, v) {
				list = append(list, v)
			}
		}
		if len(list) > 0 {
			out[k] = list
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
