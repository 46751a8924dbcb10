package shopRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"barberflow/models"
	"barberflow/utils"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func servicesCacheKey(shopID string) string {
	return utils.CatalogCachePrefix + "services:" + shopID
}

// ActiveServices returns the catalog as the shop's customers see it:
// global entries (empty shop_id) overridden per-key by shop-specific
// ones, sorted by display order. The merged list is cached per shop.
func (r *MongoShopRepo) ActiveServices(ctx context.Context, shopID string) ([]models.Service, error) {
	key := servicesCacheKey(shopID)
	if data, err := r.cache.Get(ctx, key).Result(); err == nil {
		var cached []models.Service
		if jsonErr := json.Unmarshal([]byte(data), &cached); jsonErr == nil {
			return cached, nil
		}
	} else if err != redis.Nil {
		utils.GetLogger().Warn("service catalog cache read failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"active":  true,
		"shop_id": bson.M{"$in": bson.A{"", shopID}},
	}
	cursor, err := r.serviceColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service catalog: %w", err)
	}
	defer cursor.Close(ctx)

	merged := make(map[string]models.Service)
	for cursor.Next(ctx) {
		var s models.Service
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode service: %w", err)
		}
		existing, ok := merged[s.Key]
		// Shop-specific entries win over global ones for the same key.
		if !ok || (existing.ShopID == "" && s.ShopID != "") {
			merged[s.Key] = s
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	services := make([]models.Service, 0, len(merged))
	for _, s := range merged {
		services = append(services, s)
	}
	sort.Slice(services, func(i, j int) bool {
		if services[i].DisplayOrder != services[j].DisplayOrder {
			return services[i].DisplayOrder < services[j].DisplayOrder
		}
		return services[i].Key < services[j].Key
	})

	r.cacheSet(ctx, key, services)
	return services, nil
}

// GetService resolves one catalog key for the shop, honoring the
// shop-specific override when both exist. Unknown or inactive keys
// return nil.
func (r *MongoShopRepo) GetService(ctx context.Context, shopID, key string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"key":     key,
		"active":  true,
		"shop_id": bson.M{"$in": bson.A{"", shopID}},
	}
	cursor, err := r.serviceColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service %s: %w", key, err)
	}
	defer cursor.Close(ctx)

	var found *models.Service
	for cursor.Next(ctx) {
		var s models.Service
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode service: %w", err)
		}
		if found == nil || (found.ShopID == "" && s.ShopID != "") {
			svc := s
			found = &svc
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return found, nil
}

// CreateService inserts a catalog entry and invalidates the shop's
// merged view. Global entries are left to expire by TTL on other shops.
func (r *MongoShopRepo) CreateService(ctx context.Context, service *models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	service.CreatedAt = now
	service.UpdatedAt = now

	if _, err := r.serviceColl.InsertOne(ctx, service); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("service key %s already exists in this scope", service.Key)
		}
		return fmt.Errorf("failed to create service: %w", err)
	}

	if service.ShopID != "" {
		r.cacheDel(ctx, servicesCacheKey(service.ShopID))
	}
	return nil
}

// UpdateService modifies a catalog entry and invalidates the shop's
// merged view.
func (r *MongoShopRepo) UpdateService(ctx context.Context, service *models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	service.UpdatedAt = time.Now().UTC()
	filter := bson.M{"key": service.Key, "shop_id": service.ShopID}
	result, err := r.serviceColl.UpdateOne(ctx, filter, bson.M{"$set": service})
	if err != nil {
		return fmt.Errorf("failed to update service %s: %w", service.Key, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("service %s not found", service.Key)
	}

	if service.ShopID != "" {
		r.cacheDel(ctx, servicesCacheKey(service.ShopID))
	}
	return nil
}
