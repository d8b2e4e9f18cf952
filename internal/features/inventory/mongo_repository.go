package inventory

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	Collection *mongo.Collection
}

func NewMongoRepository(collection *mongo.Collection) *MongoRepository {
	return &MongoRepository{Collection: collection}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "resource", Value: 1}, {Key: "deleted", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "resource", Value: 1}, {Key: "data.codigo", Value: 1}}},
		{Keys: bson.D{{Key: "resource", Value: 1}, {Key: "data.categoria", Value: 1}}},
	})
	return err
}

func (r *MongoRepository) Create(ctx context.Context, item *Item) error {
	_, err := r.Collection.InsertOne(ctx, item)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, resource Resource, id string) (*Item, error) {
	var item Item
	err := r.Collection.FindOne(ctx, bson.M{"_id": id, "resource": resource, "deleted": bson.M{"$ne": true}}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	normalizeDecoded(&item)
	return &item, nil
}

func (r *MongoRepository) Update(ctx context.Context, resource Resource, id string, data map[string]any) error {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range data {
		set["data."+k] = v
	}

	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id, "resource": resource, "deleted": bson.M{"$ne": true}}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, resource Resource, id string) error {
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "resource": resource},
		bson.M{"$set": bson.M{"deleted": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context, q Query, opts ListOptions) ([]Item, error) {
	findOptions := options.Find()
	if opts.Limit > 0 {
		findOptions.SetLimit(opts.Limit)
	}
	findOptions.SetSkip(opts.Offset)

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := opts.SortOrder
	if sortOrder == 0 {
		sortOrder = -1
	}
	sortKey := sortBy
	if sortBy != "_id" && sortBy != "created_at" && sortBy != "updated_at" {
		sortKey = "data." + sortBy
	}
	findOptions.SetSort(bson.D{{Key: sortKey, Value: sortOrder}})

	cursor, err := r.Collection.Find(ctx, CompileMongo(q), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	for i := range items {
		normalizeDecoded(&items[i])
	}
	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context, q Query) (int64, error) {
	return r.Collection.CountDocuments(ctx, CompileMongo(q))
}

func (r *MongoRepository) Distinct(ctx context.Context, resource Resource, attr string) ([]string, error) {
	raw, err := r.Collection.Distinct(ctx, "data."+attr, bson.M{"resource": resource, "deleted": bson.M{"$ne": true}})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s := FormatValue(decodedValue(v)); s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *MongoRepository) Bounds(ctx context.Context, resource Resource, attr string) (any, any, error) {
	field := "$data." + attr
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"resource": resource, "deleted": bson.M{"$ne": true}, "data." + attr: bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "min": bson.M{"$min": field}, "max": bson.M{"$max": field}}}},
	}

	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, nil, err
	}
	defer cursor.Close(ctx)

	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, nil, fmt.Errorf("failed to read bounds: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return decodedValue(rows[0]["min"]), decodedValue(rows[0]["max"]), nil
}

// CompileMongo translates q into a filter over the inventory_items collection
func CompileMongo(q Query) bson.M {
	and := []bson.M{{"resource": q.Resource, "deleted": bson.M{"$ne": true}}}

	for _, c := range q.Conditions {
		switch c.Op {
		case OpIn:
			and = append(and, bson.M{"data." + c.Attrs[0]: bson.M{"$in": c.Values}})
		case OpContainsAny:
			var or []bson.M
			for _, attr := range c.Attrs {
				for _, v := range c.Values {
					or = append(or, bson.M{"data." + attr: primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}})
				}
			}
			if len(or) == 1 {
				and = append(and, or[0])
			} else {
				and = append(and, bson.M{"$or": or})
			}
		case OpGte:
			and = append(and, bson.M{"data." + c.Attrs[0]: bson.M{"$gte": c.Bound}})
		case OpLte:
			and = append(and, bson.M{"data." + c.Attrs[0]: bson.M{"$lte": c.Bound}})
		}
	}

	return bson.M{"$and": and}
}

func normalizeDecoded(item *Item) {
	for k, v := range item.Data {
		item.Data[k] = decodedValue(v)
	}
}

func decodedValue(v any) any {
	switch tv := v.(type) {
	case primitive.DateTime:
		return tv.Time().UTC()
	case int32:
		return int64(tv)
	}
	return v
}
