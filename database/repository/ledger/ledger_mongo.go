package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"barberflow/models"
	"barberflow/utils"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// LedgerRepository is the processed-message ledger. Meta redelivers
// webhook payloads it thinks were lost; claiming each message id before
// acting makes redelivery harmless.
type LedgerRepository interface {
	// Claim records the message id. It returns true when this call is
	// the first to see the id, false when the message was already
	// handled.
	Claim(ctx context.Context, messageID, shopID, phone string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

// messageInserter is the slice of *mongo.Collection Claim needs.
type messageInserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// claimCache is the slice of *redis.Client Claim needs.
type claimCache interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// MongoLedgerRepo implements LedgerRepository with Mongo as the arbiter
// and a Redis SETNX fast path that keeps repeat deliveries off the
// database.
type MongoLedgerRepo struct {
	coll     *mongo.Collection
	inserter messageInserter
	cache    claimCache
}

// NewMongoLedgerRepo creates a new LedgerRepository backed by the given
// database and cache client.
func NewMongoLedgerRepo(db *mongo.Database, cache *redis.Client) LedgerRepository {
	coll := db.Collection("processed_messages")
	return &MongoLedgerRepo{
		coll:     coll,
		inserter: coll,
		cache:    cache,
	}
}

// EnsureIndexes creates the TTL index that expires ledger rows after
// their retention window. The _id is the message id itself, so no
// separate unique index is needed.
func (r *MongoLedgerRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create ledger indexes: %w", err)
	}
	return nil
}

// Claim records the message id, returning true only for the first
// caller. The Redis SETNX answers repeat deliveries cheaply; the Mongo
// insert on _id decides races and survives cache loss.
func (r *MongoLedgerRepo) Claim(ctx context.Context, messageID, shopID, phone string) (bool, error) {
	cacheKey := utils.DedupCachePrefix + messageID
	fresh, err := r.cache.SetNX(ctx, cacheKey, 1, utils.DedupCacheTTL).Result()
	if err != nil {
		utils.GetLogger().Warn("dedup cache unavailable, falling back to ledger", zap.Error(err))
	} else if !fresh {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	record := models.ProcessedMessage{
		MessageID:   messageID,
		Phone:       phone,
		ShopID:      shopID,
		ProcessedAt: now,
		ExpiresAt:   now.Add(utils.DedupCacheTTL),
	}
	if _, err := r.inserter.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		// The cache key was set but the ledger never confirmed the
		// claim. Release it so a redelivery can try again instead of
		// being swallowed for the whole TTL.
		if delErr := r.cache.Del(ctx, cacheKey).Err(); delErr != nil {
			utils.GetLogger().Warn("failed to release dedup cache key after ledger error",
				zap.String("message_id", messageID), zap.Error(delErr))
		}
		return false, fmt.Errorf("failed to claim message %s: %w", messageID, err)
	}
	return true, nil
}
