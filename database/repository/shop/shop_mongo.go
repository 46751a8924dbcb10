package shopRepo

import (
	"context"
	"encoding/json"
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

// MongoShopRepo implements ShopRepository using MongoDB with a Redis
// cache over the read-heavy lookups.
type MongoShopRepo struct {
	shopColl    *mongo.Collection
	barberColl  *mongo.Collection
	serviceColl *mongo.Collection
	cache       *redis.Client
}

// NewMongoShopRepo creates a new ShopRepository backed by the given
// database and cache client.
func NewMongoShopRepo(db *mongo.Database, cache *redis.Client) ShopRepository {
	return &MongoShopRepo{
		shopColl:    db.Collection("shops"),
		barberColl:  db.Collection("barbers"),
		serviceColl: db.Collection("services"),
		cache:       cache,
	}
}

// EnsureIndexes creates lookup and uniqueness indexes across the three
// registry collections.
func (r *MongoShopRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	shopIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone_number_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.shopColl.Indexes().CreateMany(ctx, shopIndexes); err != nil {
		return fmt.Errorf("failed to create shop indexes: %w", err)
	}

	barberIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "display_order", Value: 1}}},
	}
	if _, err := r.barberColl.Indexes().CreateMany(ctx, barberIndexes); err != nil {
		return fmt.Errorf("failed to create barber indexes: %w", err)
	}

	serviceIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "key", Value: 1}, {Key: "shop_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.serviceColl.Indexes().CreateMany(ctx, serviceIndexes); err != nil {
		return fmt.Errorf("failed to create service indexes: %w", err)
	}
	return nil
}

// GetByPhoneNumberID resolves the WhatsApp routing id to a shop. The
// result is cached because every inbound message performs this lookup.
func (r *MongoShopRepo) GetByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.Shop, error) {
	key := utils.CatalogCachePrefix + "route:" + phoneNumberID
	if data, err := r.cache.Get(ctx, key).Result(); err == nil {
		var cached models.Shop
		if jsonErr := json.Unmarshal([]byte(data), &cached); jsonErr == nil {
			return &cached, nil
		}
	} else if err != redis.Nil {
		utils.GetLogger().Warn("shop route cache read failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var shop models.Shop
	filter := bson.M{"phone_number_id": phoneNumberID, "active": true}
	if err := r.shopColl.FindOne(ctx, filter).Decode(&shop); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve phone number id %s: %w", phoneNumberID, err)
	}

	r.cacheSet(ctx, key, &shop)
	return &shop, nil
}

// GetShop retrieves a shop by id.
func (r *MongoShopRepo) GetShop(ctx context.Context, id string) (*models.Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var shop models.Shop
	if err := r.shopColl.FindOne(ctx, bson.M{"id": id}).Decode(&shop); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch shop %s: %w", id, err)
	}
	return &shop, nil
}

// ListShops retrieves all shops.
func (r *MongoShopRepo) ListShops(ctx context.Context) ([]models.Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.shopColl.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer cursor.Close(ctx)

	var shops []models.Shop
	for cursor.Next(ctx) {
		var s models.Shop
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode shop: %w", err)
		}
		shops = append(shops, s)
	}
	return shops, cursor.Err()
}

// CreateShop inserts a new shop document.
func (r *MongoShopRepo) CreateShop(ctx context.Context, shop *models.Shop) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	shop.CreatedAt = now
	shop.UpdatedAt = now

	if _, err := r.shopColl.InsertOne(ctx, shop); err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}
	return nil
}

// UpdateShop modifies an existing shop document and invalidates its
// routing cache entry.
func (r *MongoShopRepo) UpdateShop(ctx context.Context, shop *models.Shop) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	shop.UpdatedAt = time.Now().UTC()
	result, err := r.shopColl.UpdateOne(ctx, bson.M{"id": shop.ID}, bson.M{"$set": shop})
	if err != nil {
		return fmt.Errorf("failed to update shop %s: %w", shop.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("shop %s not found", shop.ID)
	}

	r.cacheDel(ctx,
		utils.CatalogCachePrefix+"route:"+shop.PhoneNumberID,
	)
	return nil
}

func (r *MongoShopRepo) cacheSet(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, b, utils.CatalogCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("catalog cache write failed", zap.Error(err))
	}
}

func (r *MongoShopRepo) cacheDel(ctx context.Context, keys ...string) {
	if err := r.cache.Del(ctx, keys...).Err(); err != nil {
		utils.GetLogger().Warn("catalog cache delete failed", zap.Error(err))
	}
}
