package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"akabo/internal/adapters"
	"akabo/internal/domain/user"
	errs "akabo/internal/errors"
)

type MongoUserStorage struct {
	adapter *adapters.AdapterMongo
	log     *zap.SugaredLogger
}

func NewMongoUserStorage(adapter *adapters.AdapterMongo, log *zap.SugaredLogger) *MongoUserStorage {
	return &MongoUserStorage{adapter: adapter, log: log}
}

func (m *MongoUserStorage) collection() *mongo.Collection {
	return m.adapter.Database.Collection("users")
}

func (m *MongoUserStorage) GetByUID(ctx context.Context, uid string) (user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result user.User
	err := m.collection().FindOne(ctx, bson.M{"uid": uid}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, errs.ErrNoMatch
	} else if err != nil {
		m.log.Errorf("failed to get user %s: %v", uid, err)
		return user.User{}, errs.ErrInternal
	}
	return result, nil
}

func (m *MongoUserStorage) Exists(ctx context.Context, uid string) (bool, error) {
	_, err := m.GetByUID(ctx, uid)
	if errors.Is(err, errs.ErrNoMatch) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (m *MongoUserStorage) Create(ctx context.Context, u user.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := m.collection().InsertOne(ctx, u); err != nil {
		m.log.Errorf("failed to insert user %s: %v", u.UID, err)
		return errs.ErrInternal
	}
	return nil
}

// AddWin increments the user's win counter. The increment is a single
// atomic document update, so no cross-user lock ordering is needed when a
// game settles both participants.
func (m *MongoUserStorage) AddWin(ctx context.Context, uid string) error {
	return m.inc(ctx, uid, "wins")
}

func (m *MongoUserStorage) AddLoss(ctx context.Context, uid string) error {
	return m.inc(ctx, uid, "losses")
}

func (m *MongoUserStorage) inc(ctx context.Context, uid string, field string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := m.collection().UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{"$inc": bson.M{field: 1}},
	)
	if err != nil {
		m.log.Errorf("failed to increment %s for user %s: %v", field, uid, err)
		return errs.ErrInternal
	}
	if res.MatchedCount == 0 {
		return errs.ErrNoMatch
	}
	return nil
}
