package users

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepo struct {
	Coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{Coll: db.Collection("users")}
}

// EnsureIndexes makes email unique.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.Coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoRepo) Create(ctx context.Context, user User) error {
	_, err := r.Coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *MongoRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.findOne(ctx, bson.M{"_id": userID})
}

func (r *MongoRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepo) UpsertOAuth(ctx context.Context, user User) (User, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := bson.M{
		"$set": bson.M{"name": user.Name, "image": user.Image, "updatedAt": user.UpdatedAt},
		"$setOnInsert": bson.M{
			"_id":       user.ID,
			"provider":  user.Provider,
			"createdAt": user.CreatedAt,
		},
	}
	var out User
	err := r.Coll.FindOneAndUpdate(ctx, bson.M{"email": user.Email}, update, opts).Decode(&out)
	if err != nil {
		return User{}, err
	}
	return out, nil
}

func (r *MongoRepo) findOne(ctx context.Context, filter bson.M) (User, error) {
	var user User
	err := r.Coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

var _ Repo = (*MongoRepo)(nil)
