package auth

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepository interface {
	Upsert(ctx context.Context, session *Session) error
	FindByPhone(ctx context.Context, phoneNumber string) (*Session, error)
	DeleteByPhone(ctx context.Context, phoneNumber string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	collection *mongo.Collection
}

func NewSessionRepository(collection *mongo.Collection) SessionRepository {
	_ = EnsureSessionIndexes(context.Background(), collection)
	return &sessionRepository{
		collection: collection,
	}
}

func (r *sessionRepository) Upsert(ctx context.Context, session *Session) error {

	filter := bson.M{"phone_number": session.PhoneNumber}
	update := bson.M{"$set": session}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}

	return nil
}

func (r *sessionRepository) FindByPhone(ctx context.Context, phoneNumber string) (*Session, error) {

	var session Session

	err := r.collection.FindOne(ctx, bson.M{"phone_number": phoneNumber}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *sessionRepository) DeleteByPhone(ctx context.Context, phoneNumber string) error {

	_, err := r.collection.DeleteOne(ctx, bson.M{"phone_number": phoneNumber})
	if err != nil {
		return err
	}

	return nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {

	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

func EnsureSessionIndexes(ctx context.Context, coll *mongo.Collection) error {

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone_number", Value: 1}},
			Options: options.Index().SetName("phone_number_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}
