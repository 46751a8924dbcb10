package ledgerRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"barberflow/utils"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeInserter struct {
	inserted int
	err      error
}

func (f *fakeInserter) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.inserted++
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.InsertOneResult{}, nil
}

type fakeCache struct {
	fresh    bool
	setnxErr error
	deleted  []string
}

func (f *fakeCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(f.fresh, f.setnxErr)
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.deleted = append(f.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

func newLedgerFixture(cache *fakeCache, inserter *fakeInserter) *MongoLedgerRepo {
	return &MongoLedgerRepo{inserter: inserter, cache: cache}
}

func TestClaimFirstDeliveryIsFresh(t *testing.T) {
	cache := &fakeCache{fresh: true}
	inserter := &fakeInserter{}
	repo := newLedgerFixture(cache, inserter)

	fresh, err := repo.Claim(context.Background(), "wamid.1", "shop-1", "5511999998888")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, 1, inserter.inserted)
}

func TestClaimCacheHitSkipsLedger(t *testing.T) {
	cache := &fakeCache{fresh: false}
	inserter := &fakeInserter{}
	repo := newLedgerFixture(cache, inserter)

	fresh, err := repo.Claim(context.Background(), "wamid.1", "shop-1", "5511999998888")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Zero(t, inserter.inserted, "a cache hit answers without touching Mongo")
}

func TestClaimCacheOutageFallsBackToLedger(t *testing.T) {
	cache := &fakeCache{setnxErr: errors.New("connection refused")}
	inserter := &fakeInserter{}
	repo := newLedgerFixture(cache, inserter)

	fresh, err := repo.Claim(context.Background(), "wamid.1", "shop-1", "5511999998888")
	require.NoError(t, err)
	assert.True(t, fresh, "Mongo stays the arbiter when Redis is down")
	assert.Equal(t, 1, inserter.inserted)
}

func TestClaimDuplicateInsertMeansAlreadyHandled(t *testing.T) {
	cache := &fakeCache{fresh: true}
	inserter := &fakeInserter{err: mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	}}
	repo := newLedgerFixture(cache, inserter)

	fresh, err := repo.Claim(context.Background(), "wamid.1", "shop-1", "5511999998888")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Empty(t, cache.deleted, "the winner's cache entry stays put")
}

func TestClaimLedgerErrorReleasesCacheKey(t *testing.T) {
	// If the insert fails after SETNX succeeded, the cached key must be
	// dropped or a later redelivery would be swallowed for the whole
	// TTL without the message ever being processed.
	cache := &fakeCache{fresh: true}
	inserter := &fakeInserter{err: errors.New("server selection timeout")}
	repo := newLedgerFixture(cache, inserter)

	fresh, err := repo.Claim(context.Background(), "wamid.1", "shop-1", "5511999998888")
	require.Error(t, err)
	assert.False(t, fresh)
	require.Len(t, cache.deleted, 1)
	assert.Equal(t, utils.DedupCachePrefix+"wamid.1", cache.deleted[0])
}
