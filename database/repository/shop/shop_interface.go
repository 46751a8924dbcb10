package shopRepo

import (
	"context"

	"barberflow/models"
)

// ShopRepository is the registry of shops, their barbers, and the
// service catalog. Lookups that feed the conversation hot path
// (routing, active catalog, active barbers) are cached; mutations go
// straight to Mongo and drop the affected cache entries.
type ShopRepository interface {
	// GetByPhoneNumberID resolves the WhatsApp routing id to a shop.
	// Unknown ids return nil, not an error.
	GetByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.Shop, error)
	GetShop(ctx context.Context, id string) (*models.Shop, error)
	ListShops(ctx context.Context) ([]models.Shop, error)
	CreateShop(ctx context.Context, shop *models.Shop) error
	UpdateShop(ctx context.Context, shop *models.Shop) error

	// ActiveBarbers returns the shop's active barbers in display order.
	ActiveBarbers(ctx context.Context, shopID string) ([]models.Barber, error)
	GetBarber(ctx context.Context, shopID, barberID string) (*models.Barber, error)
	CreateBarber(ctx context.Context, barber *models.Barber) error
	UpdateBarber(ctx context.Context, barber *models.Barber) error

	// ActiveServices returns the catalog as the shop's customers see
	// it: global entries overridden per-key by shop-specific ones, in
	// display order.
	ActiveServices(ctx context.Context, shopID string) ([]models.Service, error)
	GetService(ctx context.Context, shopID, key string) (*models.Service, error)
	CreateService(ctx context.Context, service *models.Service) error
	UpdateService(ctx context.Context, service *models.Service) error

	EnsureIndexes(ctx context.Context) error
}
