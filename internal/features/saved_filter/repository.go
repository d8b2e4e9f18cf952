package saved_filter

import (
	"context"
	"errors"
	"time"

	"go-agrofleet/internal/database"
	"go-agrofleet/internal/features/inventory"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SavedFilterRepository interface {
	Create(ctx context.Context, filter *SavedFilter) error
	Get(ctx context.Context, id string) (*SavedFilter, error)
	Update(ctx context.Context, filter *SavedFilter) error
	Delete(ctx context.Context, id string) error
	FindByUser(ctx context.Context, userID string, resource inventory.Resource) ([]SavedFilter, error)
	FindPublic(ctx context.Context, resource inventory.Resource) ([]SavedFilter, error)
	ClearDefault(ctx context.Context, userID string, resource inventory.Resource) error
}

type SavedFilterRepositoryImpl struct {
	collection *mongo.Collection
}

func NewSavedFilterRepository(db *database.MongodbDB) SavedFilterRepository {
	return &SavedFilterRepositoryImpl{
		collection: db.DB.Collection("saved_filters"),
	}
}

func (r *SavedFilterRepositoryImpl) Create(ctx context.Context, filter *SavedFilter) error {
	filter.CreatedAt = time.Now()
	filter.UpdatedAt = filter.CreatedAt

	_, err := r.collection.InsertOne(ctx, filter)
	return err
}

func (r *SavedFilterRepositoryImpl) Get(ctx context.Context, id string) (*SavedFilter, error) {
	var filter SavedFilter
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&filter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrFilterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &filter, nil
}

func (r *SavedFilterRepositoryImpl) Update(ctx context.Context, filter *SavedFilter) error {
	filter.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": filter.ID}, filter)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrFilterNotFound
	}
	return nil
}

func (r *SavedFilterRepositoryImpl) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrFilterNotFound
	}
	return nil
}

func (r *SavedFilterRepositoryImpl) FindByUser(ctx context.Context, userID string, resource inventory.Resource) ([]SavedFilter, error) {
	return r.find(ctx, bson.M{"user_id": userID, "resource": resource})
}

func (r *SavedFilterRepositoryImpl) FindPublic(ctx context.Context, resource inventory.Resource) ([]SavedFilter, error) {
	return r.find(ctx, bson.M{"is_public": true, "resource": resource})
}

// ClearDefault unsets the default flag on every filter of the user for resource
func (r *SavedFilterRepositoryImpl) ClearDefault(ctx context.Context, userID string, resource inventory.Resource) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "resource": resource, "is_default": true},
		bson.M{"$set": bson.M{"is_default": false, "updated_at": time.Now()}},
	)
	return err
}

func (r *SavedFilterRepositoryImpl) find(ctx context.Context, query bson.M) ([]SavedFilter, error) {
	opts := options.Find().SetSort(bson.D{{Key: "is_default", Value: -1}, {Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	filters := []SavedFilter{}
	if err = cursor.All(ctx, &filters); err != nil {
		return nil, err
	}
	return filters, nil
}
