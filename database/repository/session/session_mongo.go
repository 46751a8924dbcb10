package sessionRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"barberflow/models"
	"barberflow/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	sessionCachePrefix = "conv:sess:"
	sessionCacheTTL    = 30 * time.Minute
)

// MongoSessionRepo implements SessionRepository using MongoDB, with a
// Redis read-through cache in front. Mongo stays authoritative; the
// cache only short-circuits reads for conversations already in flight.
type MongoSessionRepo struct {
	coll  *mongo.Collection
	cache *redis.Client
}

// NewMongoSessionRepo creates a new SessionRepository backed by the
// given database and cache client.
func NewMongoSessionRepo(db *mongo.Database, cache *redis.Client) SessionRepository {
	return &MongoSessionRepo{
		coll:  db.Collection("sessions"),
		cache: cache,
	}
}

// EnsureIndexes creates the partial unique index that enforces at most
// one active session per (shop, phone). Concurrent first messages both
// try the upsert; the index guarantees only one row survives.
func (r *MongoSessionRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "phone", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	return nil
}

func (r *MongoSessionRepo) cacheKey(shopID, phone string) string {
	return sessionCachePrefix + shopID + ":" + phone
}

// Acquire returns the active session for (shopID, phone). A cache hit
// means the conversation is already in flight, so no creation race is
// possible and Mongo is skipped. On a miss the session is claimed with
// a single upsert; the filter carries active:true so the upserted
// document lands inside the partial unique index.
func (r *MongoSessionRepo) Acquire(ctx context.Context, shopID, phone string) (*models.Session, bool, error) {
	key := r.cacheKey(shopID, phone)
	if data, err := r.cache.Get(ctx, key).Result(); err == nil {
		var cached models.Session
		if jsonErr := json.Unmarshal([]byte(data), &cached); jsonErr == nil && cached.Active {
			cached.LastActiveAt = time.Now().UTC()
			return &cached, false, nil
		}
	} else if err != redis.Nil {
		utils.GetLogger().Warn("session cache read failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"shop_id": shopID, "phone": phone, "active": true}
	update := bson.M{
		"$set": bson.M{"last_active_at": now},
		"$setOnInsert": bson.M{
			"id":         uuid.New().String(),
			"phase":      models.PhaseWelcome,
			"context":    bson.M{},
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var session models.Session
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&session); err != nil {
		return nil, false, fmt.Errorf("failed to acquire session for %s: %w", phone, err)
	}

	// A freshly inserted document carries the same timestamp in both
	// fields; an existing one keeps its older created_at.
	created := session.CreatedAt.Equal(session.LastActiveAt)

	r.writeCache(ctx, &session)
	return &session, created, nil
}

// Save persists the session's mutable state and refreshes the cache.
func (r *MongoSessionRepo) Save(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	session.LastActiveAt = time.Now().UTC()
	filter := bson.M{"id": session.ID}
	update := bson.M{"$set": session}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("session %s not found", session.ID)
	}

	r.writeCache(ctx, session)
	return nil
}

// Retire deactivates the session and drops it from the cache. The row
// stays in Mongo for audit; the partial index no longer covers it.
func (r *MongoSessionRepo) Retire(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	session.Active = false
	session.Phase = models.PhaseCompleted
	session.LastActiveAt = time.Now().UTC()

	filter := bson.M{"id": session.ID}
	update := bson.M{"$set": bson.M{
		"active":         false,
		"phase":          models.PhaseCompleted,
		"last_active_at": session.LastActiveAt,
	}}

	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to retire session %s: %w", session.ID, err)
	}

	if err := r.cache.Del(ctx, r.cacheKey(session.ShopID, session.Phone)).Err(); err != nil {
		utils.GetLogger().Warn("session cache delete failed", zap.Error(err))
	}
	return nil
}

func (r *MongoSessionRepo) writeCache(ctx context.Context, session *models.Session) {
	b, err := json.Marshal(session)
	if err != nil {
		return
	}
	key := r.cacheKey(session.ShopID, session.Phone)
	if err := r.cache.Set(ctx, key, b, sessionCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("session cache write failed", zap.Error(err))
	}
}
