package import_feature

import (
	"context"
	"errors"
	"time"

	"go-agrofleet/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ImportRepository interface {
	Create(ctx context.Context, job *ImportJob) error
	Get(ctx context.Context, id string) (*ImportJob, error)
	Update(ctx context.Context, job *ImportJob) error
	FindByUserID(ctx context.Context, userID string, limit int64) ([]ImportJob, error)
	UpdateStatus(ctx context.Context, id string, status ImportStatus) error
}

type ImportRepositoryImpl struct {
	collection *mongo.Collection
}

func NewImportRepository(db *database.MongodbDB) ImportRepository {
	return &ImportRepositoryImpl{
		collection: db.DB.Collection("import_jobs"),
	}
}

func (r *ImportRepositoryImpl) Create(ctx context.Context, job *ImportJob) error {
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	job.Status = ImportStatusPending

	_, err := r.collection.InsertOne(ctx, job)
	return err
}

func (r *ImportRepositoryImpl) Get(ctx context.Context, id string) (*ImportJob, error) {
	var job ImportJob
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ImportRepositoryImpl) Update(ctx context.Context, job *ImportJob) error {
	job.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": job.ID}, job)
	return err
}

func (r *ImportRepositoryImpl) FindByUserID(ctx context.Context, userID string, limit int64) ([]ImportJob, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	jobs := []ImportJob{}
	if err = cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *ImportRepositoryImpl) UpdateStatus(ctx context.Context, id string, status ImportStatus) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == ImportStatusCompleted || status == ImportStatusFailed {
		set["completed_at"] = time.Now()
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}
