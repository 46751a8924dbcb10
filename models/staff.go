package models

import "time"

// StaffRole controls what a staff account may touch through the admin API.
type StaffRole string

const (
	RoleOwner   StaffRole = "owner"   // Full control including staff management
	RoleManager StaffRole = "manager" // Shop settings, catalog, barbers, bookings
	RoleFront   StaffRole = "front"   // Booking status updates only
)

// Valid reports whether r is a defined staff role.
func (r StaffRole) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleFront:
		return true
	}
	return false
}

// StaffUser is an admin-API account scoped to one shop. Password hashes
// are bcrypt and never leave the database layer.
type StaffUser struct {
	ID           string    `bson:"id" json:"id"`
	ShopID       string    `bson:"shop_id" json:"shop_id" validate:"required"`
	Email        string    `bson:"email" json:"email" validate:"required,email"` // Unique index
	Name         string    `bson:"name" json:"name" validate:"required"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Role         StaffRole `bson:"role" json:"role"`
	Active       bool      `bson:"active" json:"active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// CanManageCatalog reports whether the role may edit services, barbers
// and shop settings.
func (r StaffRole) CanManageCatalog() bool {
	return r == RoleOwner || r == RoleManager
}

// CanManageStaff reports whether the role may create or disable staff
// accounts.
func (r StaffRole) CanManageStaff() bool {
	return r == RoleOwner
}
