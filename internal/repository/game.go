package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"akabo/internal/adapters"
	"akabo/internal/domain/game"
	errs "akabo/internal/errors"
)

type MongoGameStorage struct {
	adapter *adapters.AdapterMongo
	log     *zap.SugaredLogger
}

func NewMongoGameStorage(adapter *adapters.AdapterMongo, log *zap.SugaredLogger) *MongoGameStorage {
	return &MongoGameStorage{adapter: adapter, log: log}
}

func (m *MongoGameStorage) collection() *mongo.Collection {
	return m.adapter.Database.Collection("games")
}

func (m *MongoGameStorage) Insert(ctx context.Context, g game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := m.collection().InsertOne(ctx, g); err != nil {
		m.log.Errorf("failed to insert game %s: %v", g.UUID, err)
		return errs.ErrInternal
	}
	return nil
}

func (m *MongoGameStorage) GetByUUID(ctx context.Context, uuid string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result game.Game
	err := m.collection().FindOne(ctx, bson.M{"uuid": uuid}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, errs.ErrNoMatch
	} else if err != nil {
		m.log.Errorf("failed to get game %s: %v", uuid, err)
		return game.Game{}, errs.ErrInternal
	}
	return result, nil
}

// Games are never deleted; finished ones stay as history.
func (m *MongoGameStorage) Update(ctx context.Context, g game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := m.collection().ReplaceOne(ctx, bson.M{"uuid": g.UUID}, g)
	if err != nil {
		m.log.Errorf("failed to update game %s: %v", g.UUID, err)
		return errs.ErrInternal
	}
	if res.MatchedCount == 0 {
		return errs.ErrNoMatch
	}
	return nil
}
