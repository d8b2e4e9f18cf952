package filtertoken

// Range is the value of a range token. Either bound may be empty.
type Range struct {
	Min string `json:"min" bson:"min"`
	Max string `json:"max" bson:"max"`
}

// Empty reports whether neither bound is set.
func (r Range) Empty() bool {
	return r.Min == "" && r.Max == ""
}

// Token is one applied, removable filter criterion. Value holds a string for
// scalar fields and a Range for range families.
type Token struct {
	ID    string `json:"id"`
	Field Field  `json:"field"`
	Value any    `json:"value"`
	Label string `json:"label"`
}

// Range returns the token's range value, if it has one.
func (t Token) Range() (Range, bool) {
	r, ok := t.Value.(Range)
	return r, ok
}

// Text returns the token's scalar value, if it has one.
func (t Token) Text() (string, bool) {
	s, ok := t.Value.(string)
	return s, ok
}

func (t Token) matches(field Field, value any) bool {
	if t.Field != field {
		return false
	}
	switch v := value.(type) {
	case Range:
		r, ok := t.Range()
		return ok && r == v
	case string:
		s, ok := t.Text()
		return ok && s == v
	}
	return false
}

// Criterion is the storage form of a token: no id, no label, and a typed
// value instead of an interface.
type Criterion struct {
	Field Field  `json:"field" bson:"field"`
	Value string `json:"value,omitempty" bson:"value,omitempty"`
	Range *Range `json:"range,omitempty" bson:"range,omitempty"`
}

// Criterion returns the storage form of t.
func (t Token) Criterion() Criterion {
	if r, ok := t.Range(); ok {
		return Criterion{Field: t.Field, Range: &r}
	}
	s, _ := t.Text()
	return Criterion{Field: t.Field, Value: s}
}

// value returns the token value the criterion describes, or nil when it
// describes nothing.
func (c Criterion) value() any {
	if c.Range != nil {
		if c.Range.Empty() {
			return nil
		}
		return *c.Range
	}
	if c.Value == "" {
		return nil
	}
	return c.Value
}

// Criteria converts tokens to their storage form, preserving order.
func Criteria(tokens []Token) []Criterion {
	out := make([]Criterion, len(tokens))
	for i, t := range tokens {
		out[i] = t.Criterion()
	}
	return out
}
