package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"akabo/internal/adapters"
	"akabo/internal/domain/ticket"
	errs "akabo/internal/errors"
)

type MongoTicketStorage struct {
	adapter *adapters.AdapterMongo
	log     *zap.SugaredLogger
}

func NewMongoTicketStorage(adapter *adapters.AdapterMongo, log *zap.SugaredLogger) *MongoTicketStorage {
	return &MongoTicketStorage{adapter: adapter, log: log}
}

func (m *MongoTicketStorage) collection() *mongo.Collection {
	return m.adapter.Database.Collection("tickets")
}

func (m *MongoTicketStorage) Insert(ctx context.Context, t ticket.MatchTicket) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := m.collection().InsertOne(ctx, t); err != nil {
		m.log.Errorf("failed to insert ticket %s: %v", t.UUID, err)
		return errs.ErrInternal
	}
	return nil
}

func (m *MongoTicketStorage) GetByUUID(ctx context.Context, uuid string) (ticket.MatchTicket, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result ticket.MatchTicket
	err := m.collection().FindOne(ctx, bson.M{"uuid": uuid}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ticket.MatchTicket{}, errs.ErrNoMatch
	} else if err != nil {
		m.log.Errorf("failed to get ticket %s: %v", uuid, err)
		return ticket.MatchTicket{}, errs.ErrInternal
	}
	return result, nil
}

// HasUnfilledByUID reports whether the user currently holds an open ticket.
// Filled tickets do not count; they are historical pointers to games.
func (m *MongoTicketStorage) HasUnfilledByUID(ctx context.Context, uid string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"uid": uid, "gameuuid": ""}
	err := m.collection().FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	} else if err != nil {
		m.log.Errorf("failed to query tickets for uid %s: %v", uid, err)
		return false, errs.ErrInternal
	}
	return true, nil
}

// ListValid returns unfilled, non-expired tickets ordered oldest created
// first. The ordering is the pairing policy: the longest-waiting player is
// matched first.
func (m *MongoTicketStorage) ListValid(ctx context.Context, now time.Time) ([]ticket.MatchTicket, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"gameuuid": "",
		"expires":  bson.M{"$gt": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: 1}})

	cursor, err := m.collection().Find(ctx, filter, opts)
	if err != nil {
		m.log.Errorf("failed to list valid tickets: %v", err)
		return nil, errs.ErrInternal
	}
	defer cursor.Close(ctx)

	var result []ticket.MatchTicket
	if err := cursor.All(ctx, &result); err != nil {
		m.log.Errorf("failed to decode valid tickets: %v", err)
		return nil, errs.ErrInternal
	}
	return result, nil
}

func (m *MongoTicketStorage) Update(ctx context.Context, t ticket.MatchTicket) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := m.collection().ReplaceOne(ctx, bson.M{"uuid": t.UUID}, t)
	if err != nil {
		m.log.Errorf("failed to update ticket %s: %v", t.UUID, err)
		return errs.ErrInternal
	}
	if res.MatchedCount == 0 {
		return errs.ErrNoMatch
	}
	return nil
}

func (m *MongoTicketStorage) Delete(ctx context.Context, uuid string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := m.collection().DeleteOne(ctx, bson.M{"uuid": uuid})
	if err != nil {
		m.log.Errorf("failed to delete ticket %s: %v", uuid, err)
		return errs.ErrInternal
	}
	if res.DeletedCount == 0 {
		return errs.ErrNoMatch
	}
	return nil
}
