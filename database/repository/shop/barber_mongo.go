package shopRepo

import (
	"context"
	"fmt"
	"time"

	"barberflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActiveBarbers returns the shop's active barbers in display order.
func (r *MongoShopRepo) ActiveBarbers(ctx context.Context, shopID string) ([]models.Barber, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"shop_id": shopID, "active": true}
	opts := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.barberColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list barbers for shop %s: %w", shopID, err)
	}
	defer cursor.Close(ctx)

	var barbers []models.Barber
	for cursor.Next(ctx) {
		var b models.Barber
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode barber: %w", err)
		}
		barbers = append(barbers, b)
	}
	return barbers, cursor.Err()
}

// GetBarber retrieves one barber, scoped to the shop so a barber id
// from another shop never resolves.
func (r *MongoShopRepo) GetBarber(ctx context.Context, shopID, barberID string) (*models.Barber, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var barber models.Barber
	filter := bson.M{"id": barberID, "shop_id": shopID}
	if err := r.barberColl.FindOne(ctx, filter).Decode(&barber); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch barber %s: %w", barberID, err)
	}
	return &barber, nil
}

// CreateBarber inserts a new barber document.
func (r *MongoShopRepo) CreateBarber(ctx context.Context, barber *models.Barber) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	barber.CreatedAt = now
	barber.UpdatedAt = now

	if _, err := r.barberColl.InsertOne(ctx, barber); err != nil {
		return fmt.Errorf("failed to create barber: %w", err)
	}
	return nil
}

// UpdateBarber modifies an existing barber document.
func (r *MongoShopRepo) UpdateBarber(ctx context.Context, barber *models.Barber) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	barber.UpdatedAt = time.Now().UTC()
	result, err := r.barberColl.UpdateOne(ctx, bson.M{"id": barber.ID, "shop_id": barber.ShopID}, bson.M{"$set": barber})
	if err != nil {
		return fmt.Errorf("failed to update barber %s: %w", barber.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("barber %s not found", barber.ID)
	}
	return nil
}
