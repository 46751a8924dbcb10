package bookingRepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barberflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new BookingRepository backed by the
// given database.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	return &MongoBookingRepo{coll: db.Collection("bookings")}
}

// EnsureIndexes creates the uniqueness and query indexes. slot_key is
// sparse unique: only documents that still hold their slot carry the
// field, so released slots are immediately claimable again.
func (r *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slot_key", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "barber_id", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "phone", Value: 1}, {Key: "date", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

// Create inserts a new booking document. The caller must have set
// SlotKey; a duplicate-key error here means the slot or code lost a
// race and is translated by the service layer.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its internal id, scoped to the shop.
func (r *MongoBookingRepo) GetByID(ctx context.Context, shopID, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	filter := bson.M{"id": id, "shop_id": shopID}
	if err := r.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// GetByCode retrieves a booking by its human-facing code.
func (r *MongoBookingRepo) GetByCode(ctx context.Context, shopID, code string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	filter := bson.M{"code": strings.ToUpper(strings.TrimSpace(code)), "shop_id": shopID}
	if err := r.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking by code: %w", err)
	}
	return &booking, nil
}

// CodeInUse reports whether any booking currently carries the code.
func (r *MongoBookingRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"code": code})
	if err != nil {
		return false, fmt.Errorf("failed to check booking code: %w", err)
	}
	return count > 0, nil
}

// BlockingForDay returns the bookings still occupying slots for one
// barber and date, ordered by start time.
func (r *MongoBookingRepo) BlockingForDay(ctx context.Context, shopID, barberID, date string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"shop_id":   shopID,
		"barber_id": barberID,
		"date":      date,
		"status":    bson.M{"$nin": bson.A{models.BookingCancelled, models.BookingRescheduled}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings for %s on %s: %w", barberID, date, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

// UpcomingForPhone returns a customer's future slot-holding bookings,
// earliest first. Zero-padded date and HH:MM strings compare correctly
// as plain strings.
func (r *MongoBookingRepo) UpcomingForPhone(ctx context.Context, shopID, phone, fromDate, fromTime string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"shop_id": shopID,
		"phone":   phone,
		"status":  bson.M{"$nin": bson.A{models.BookingCancelled, models.BookingRescheduled, models.BookingCompleted, models.BookingNoShow}},
		"$or": bson.A{
			bson.M{"date": bson.M{"$gt": fromDate}},
			bson.M{"date": fromDate, "start_time": bson.M{"$gt": fromTime}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching upcoming bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

// ListForDay returns every booking for the shop and date regardless of
// status, for the staff view.
func (r *MongoBookingRepo) ListForDay(ctx context.Context, shopID, date string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"shop_id": shopID, "date": date}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings for %s: %w", date, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

// Cancel conditionally releases a customer-owned booking. The filter
// only matches bookings that still hold their slot, so a completed or
// already-cancelled booking returns nil without touching anything.
// Unsetting slot_key in the same update frees the slot atomically.
func (r *MongoBookingRepo) Cancel(ctx context.Context, shopID, phone, bookingID string, to models.BookingStatus) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":      bookingID,
		"shop_id": shopID,
		"phone":   phone,
		"status":  bson.M{"$in": bson.A{models.BookingPending, models.BookingConfirmed}},
	}
	update := bson.M{
		"$set":   bson.M{"status": to, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"slot_key": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error cancelling booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

// UpdateStatus applies a staff transition from the booking's current
// status. Moving into a non-blocking status releases the slot key;
// moving back into a blocking one re-claims it, and a duplicate-key
// error means another booking took the slot in the meantime.
func (r *MongoBookingRepo) UpdateStatus(ctx context.Context, booking *models.Booking, to models.BookingStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": to, "updated_at": time.Now().UTC()}
	update := bson.M{"$set": set}
	if !to.Blocks() {
		update["$unset"] = bson.M{"slot_key": ""}
	} else if !booking.Status.Blocks() {
		set["slot_key"] = models.SlotKey(booking.ShopID, booking.BarberID, booking.Date, booking.StartTime)
	}

	filter := bson.M{"id": booking.ID, "shop_id": booking.ShopID, "status": booking.Status}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating booking %s status: %w", booking.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking %s status changed concurrently", booking.ID)
	}

	booking.Status = to
	return nil
}
