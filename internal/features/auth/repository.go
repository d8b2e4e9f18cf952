package auth

import (
	"context"
	"errors"

	"go-agrofleet/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	EnsureIndexes(ctx context.Context) error
}

type AccountRepositoryImpl struct {
	collection *mongo.Collection
}

func NewAccountRepository(db *database.MongodbDB) AccountRepository {
	return &AccountRepositoryImpl{
		collection: db.DB.Collection("accounts"),
	}
}

func (r *AccountRepositoryImpl) Create(ctx context.Context, account *Account) error {
	_, err := r.collection.InsertOne(ctx, account)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAccountExists
	}
	return err
}

func (r *AccountRepositoryImpl) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var account Account
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
