package chats

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores each chat as one document with embedded messages.
type MongoRepo struct {
	Coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{Coll: db.Collection("chats")}
}

func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.Coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (r *MongoRepo) Create(ctx context.Context, chat Chat) error {
	if chat.Messages == nil {
		chat.Messages = []Message{}
	}
	_, err := r.Coll.InsertOne(ctx, chat)
	return err
}

func (r *MongoRepo) GetByID(ctx context.Context, userID, chatID string) (Chat, error) {
	var chat Chat
	err := r.Coll.FindOne(ctx, bson.M{"_id": chatID, "userId": userID}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Chat{}, ErrNotFound
	}
	if err != nil {
		return Chat{}, err
	}
	return chat, nil
}

func (r *MongoRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Chat, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"messages": 0})

	cur, err := r.Coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Chat{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepo) AppendMessages(ctx context.Context, userID, chatID string, updatedAt time.Time, msgs ...Message) error {
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{"_id": chatID, "userId": userID},
		bson.M{
			"$push": bson.M{"messages": bson.M{"$each": msgs}},
			"$set":  bson.M{"updatedAt": updatedAt},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*MongoRepo)(nil)
