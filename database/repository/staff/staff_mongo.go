package staffRepo

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

// StaffRepository manages admin-API accounts.
type StaffRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.StaffUser, error)
	GetByID(ctx context.Context, id string) (*models.StaffUser, error)
	ListByShop(ctx context.Context, shopID string) ([]models.StaffUser, error)
	Create(ctx context.Context, user *models.StaffUser) error
	Update(ctx context.Context, user *models.StaffUser) error
	EnsureIndexes(ctx context.Context) error
}

// MongoStaffRepo implements StaffRepository using MongoDB.
type MongoStaffRepo struct {
	coll *mongo.Collection
}

// NewMongoStaffRepo creates a new StaffRepository backed by the given
// database.
func NewMongoStaffRepo(db *mongo.Database) StaffRepository {
	return &MongoStaffRepo{coll: db.Collection("staff_users")}
}

// EnsureIndexes creates the uniqueness indexes for staff accounts.
func (r *MongoStaffRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create staff indexes: %w", err)
	}
	return nil
}

// GetByEmail retrieves a staff account by email. Missing accounts
// return nil so the login path can answer uniformly.
func (r *MongoStaffRepo) GetByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.StaffUser
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch staff user by email: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a staff account by id.
func (r *MongoStaffRepo) GetByID(ctx context.Context, id string) (*models.StaffUser, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.StaffUser
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch staff user %s: %w", id, err)
	}
	return &user, nil
}

// ListByShop retrieves the staff accounts scoped to one shop.
func (r *MongoStaffRepo) ListByShop(ctx context.Context, shopID string) ([]models.StaffUser, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"shop_id": shopID}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list staff for shop %s: %w", shopID, err)
	}
	defer cursor.Close(ctx)

	var users []models.StaffUser
	for cursor.Next(ctx) {
		var u models.StaffUser
		if err := cursor.Decode(&u); err != nil {
			return nil, fmt.Errorf("failed to decode staff user: %w", err)
		}
		users = append(users, u)
	}
	return users, cursor.Err()
}

// Create inserts a new staff account.
func (r *MongoStaffRepo) Create(ctx context.Context, user *models.StaffUser) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("staff email %s already registered", user.Email)
		}
		return fmt.Errorf("failed to create staff user: %w", err)
	}
	return nil
}

// Update modifies an existing staff account.
func (r *MongoStaffRepo) Update(ctx context.Context, user *models.StaffUser) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user.UpdatedAt = time.Now().UTC()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": user.ID}, bson.M{"$set": user})
	if err != nil {
		return fmt.Errorf("failed to update staff user %s: %w", user.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("staff user %s not found", user.ID)
	}
	return nil
}
