package filtertoken

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsolidate(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
		want   Consolidated
	}{
		{
			name: "empty",
			want: Consolidated{},
		},
		{
			name: "accumulating search keeps insertion order",
			tokens: []Token{
				{ID: "1", Field: FieldSearch, Value: "abc"},
				{ID: "2", Field: FieldSearch, Value: "xyz"},
				{ID: "3", Field: FieldSearch, Value: "abc"},
			},
			want: Consolidated{"search": []string{"abc", "xyz"}},
		},
		{
			name: "price range",
			tokens: []Token{
				{ID: "1", Field: FieldPrecio, Value: Range{Min: "10", Max: "50"}},
			},
			want: Consolidated{"precioMin": "10", "precioMax": "50"},
		},
		{
			name: "later range overwrites bounds it sets",
			tokens: []Token{
				{ID: "1", Field: FieldAnio, Value: Range{Min: "2000", Max: "2010"}},
				{ID: "2", Field: FieldAnio, Value: Range{Min: "2005"}},
			},
			want: Consolidated{"anioMin": "2005", "anioMax": "2010"},
		},
		{
			name: "categorical fields become lists",
			tokens: []Token{
				{ID: "1", Field: FieldCategoria, Value: "Tractores"},
				{ID: "2", Field: FieldEstado, Value: "Operativo"},
				{ID: "3", Field: FieldCategoria, Value: "Cosechadoras"},
			},
			want: Consolidated{
				"categoria": []string{"Tractores", "Cosechadoras"},
				"estado":    []string{"Operativo"},
			},
		},
		{
			name: "scalar value on a range family field is categorical",
			tokens: []Token{
				{ID: "1", Field: FieldPrecio, Value: "100"},
			},
			want: Consolidated{"precio": []string{"100"}},
		},
		{
			name: "range on unknown family is ignored",
			tokens: []Token{
				{ID: "1", Field: Field("peso"), Value: Range{Min: "1"}},
			},
			want: Consolidated{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Consolidate(tt.tokens))
		})
	}
}

func TestConsolidatedCloneIsDeep(t *testing.T) {
	c := Consolidated{"search": []string{"abc"}, "anioMin": "2000"}
	clone := c.Clone()
	clone.Values("search")[0] = "changed"
	assert.Equal(t, "abc", c.Values("search")[0])
}

func TestConsolidatedEncodeAndParse(t *testing.T) {
	c := Consolidated{
		"categoria": []string{"Tractores", "Cosechadoras"},
		"precioMin": "10",
	}
	q := c.Encode()
	assert.Equal(t, "categoria=Tractores&categoria=Cosechadoras&precioMin=10", q.Encode())
	assert.Equal(t, c, FromValues(q))
}

func TestFromValues(t *testing.T) {
	got := FromValues(url.Values{
		"estado":    {"Operativo", "", "Operativo", "Taller"},
		"anioMax":   {"2010", "2020", ""},
		"ubicacion": {""},
	})
	assert.Equal(t, Consolidated{
		"estado":  []string{"Operativo", "Taller"},
		"anioMax": "2020",
	}, got)
}

func TestConsolidatedAccessors(t *testing.T) {
	c := Consolidated{"search": []string{"a"}, "fechaMin": "2024-01-01"}
	assert.Equal(t, []string{"a"}, c.Values("search"))
	assert.Nil(t, c.Values("fechaMin"))

	v, ok := c.Bound("fechaMin")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01", v)

	_, ok = c.Bound("search")
	assert.False(t, ok)
	assert.Equal(t, []string{"fechaMin", "search"}, c.Keys())
}
