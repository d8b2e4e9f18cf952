package inventory

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleQuery() Query {
	return Query{
		Resource: ResourceMachines,
		Conditions: []Condition{
			{Attrs: []string{"anio"}, Op: OpGte, Values: []string{"2015"}, Bound: 2015.0},
			{Attrs: []string{"categoria"}, Op: OpIn, Values: []string{"Tractores"}},
			{Attrs: []string{"nombre", "marca"}, Op: OpContainsAny, Values: []string{"5075e"}},
			{Attrs: []string{"fecha_adquisicion"}, Op: OpLte, Values: []string{"2023-01-01"}, Bound: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestCompileMongo(t *testing.T) {
	got := CompileMongo(sampleQuery())

	want := bson.M{"$and": []bson.M{
		{"resource": ResourceMachines, "deleted": bson.M{"$ne": true}},
		{"data.anio": bson.M{"$gte": 2015.0}},
		{"data.categoria": bson.M{"$in": []string{"Tractores"}}},
		{"$or": []bson.M{
			{"data.nombre": primitive.Regex{Pattern: "5075e", Options: "i"}},
			{"data.marca": primitive.Regex{Pattern: "5075e", Options: "i"}},
		}},
		{"data.fecha_adquisicion": bson.M{"$lte": time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}},
	}}
	assert.Equal(t, want, got)
}

func TestCompileMongoQuotesRegex(t *testing.T) {
	got := CompileMongo(Query{
		Resource:   ResourceParts,
		Conditions: []Condition{{Attrs: []string{"codigo"}, Op: OpContainsAny, Values: []string{"F.1+"}}},
	})

	and := got["$and"].([]bson.M)
	assert.Equal(t, bson.M{"data.codigo": primitive.Regex{Pattern: `F\.1\+`, Options: "i"}}, and[1])
}

func TestCompileSQL(t *testing.T) {
	where, args := CompileSQL(sampleQuery())

	assert.Equal(t,
		"resource = $1 AND NOT deleted"+
			" AND (data->>$2)::numeric >= $3"+
			" AND data->>$4 = ANY($5)"+
			" AND (data->>$7 ILIKE ANY($6) OR data->>$8 ILIKE ANY($6))"+
			" AND (data->>$9)::timestamptz <= $10",
		where)

	assert.Equal(t, []any{
		"maquinas",
		"anio", 2015.0,
		"categoria", pq.Array([]string{"Tractores"}),
		pq.Array([]string{"%5075e%"}), "nombre", "marca",
		"fecha_adquisicion", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}
