package handlers

import (
	"net/http"

	shopRepo "barberflow/database/repository/shop"
	"barberflow/middleware"
	"barberflow/models"
	"barberflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// ShopHandler serves shop, barber and service-catalog management for
// the admin API. Every route is staff-authenticated; shop-scoped staff
// only touch their own shop, platform admins (empty shop claim) touch
// any.
type ShopHandler struct {
	Shops shopRepo.ShopRepository
}

// NewShopHandler creates a ShopHandler.
func NewShopHandler(shops shopRepo.ShopRepository) *ShopHandler {
	return &ShopHandler{Shops: shops}
}

// canAccessShop reports whether the caller's claims cover the shop.
func canAccessShop(c *gin.Context, shopID string) bool {
	claims, ok := middleware.StaffClaims(c)
	if !ok {
		return false
	}
	return claims.ShopID == "" || claims.ShopID == shopID
}

// canManageCatalog reports whether the caller may mutate the shop's
// catalog and settings.
func canManageCatalog(c *gin.Context, shopID string) bool {
	claims, ok := middleware.StaffClaims(c)
	if !ok {
		return false
	}
	if claims.ShopID != "" && claims.ShopID != shopID {
		return false
	}
	return claims.ShopID == "" || models.StaffRole(claims.Role).CanManageCatalog()
}

// CreateShop registers a new shop. Platform admin only.
func (h *ShopHandler) CreateShop(c *gin.Context) {
	claims, ok := middleware.StaffClaims(c)
	if !ok || claims.ShopID != "" {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "platform admin required")
		return
	}

	var shop models.Shop
	if err := c.ShouldBindJSON(&shop); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	shop.ID = uuid.New().String()
	shop.Active = true
	if err := validate.Struct(&shop); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid shop", err.Error())
		return
	}

	if err := h.Shops.CreateShop(c.Request.Context(), &shop); err != nil {
		utils.JSONError(c, http.StatusConflict, "Conflict", err.Error())
		return
	}
	c.JSON(http.StatusCreated, shop)
}

// ListShops returns all shops for admins, the caller's own shop for
// scoped staff.
func (h *ShopHandler) ListShops(c *gin.Context) {
	claims, ok := middleware.StaffClaims(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "missing claims")
		return
	}

	if claims.ShopID != "" {
		shop, err := h.Shops.GetShop(c.Request.Context(), claims.ShopID)
		if err != nil || shop == nil {
			utils.JSONError(c, http.StatusNotFound, "Not Found", "shop not found")
			return
		}
		c.JSON(http.StatusOK, []models.Shop{*shop})
		return
	}

	shops, err := h.Shops.ListShops(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to list shops")
		return
	}
	c.JSON(http.StatusOK, shops)
}

// GetShop returns one shop.
func (h *ShopHandler) GetShop(c *gin.Context) {
	shopID := c.Param("id")
	if !canAccessShop(c, shopID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "not your shop")
		return
	}

	shop, err := h.Shops.GetShop(c.Request.Context(), shopID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to fetch shop")
		return
	}
	if shop == nil {
		utils.JSONError(c, http.StatusNotFound, "Not Found", "shop not found")
		return
	}
	c.JSON(http.StatusOK, shop)
}

// UpdateShopSettings replaces the shop's scheduling settings. The
// settings are validated as a whole so a half-set lunch window cannot
// land.
func (h *ShopHandler) UpdateShopSettings(c *gin.Context) {
	shopID := c.Param("id")
	if !canManageCatalog(c, shopID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "manager role required")
		return
	}

	shop, err := h.Shops.GetShop(c.Request.Context(), shopID)
	if err != nil || shop == nil {
		utils.JSONError(c, http.StatusNotFound, "Not Found", "shop not found")
		return
	}

	var settings models.ShopSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	if err := validate.Struct(&settings); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid settings", err.Error())
		return
	}

	shop.Settings = settings
	if err := h.Shops.UpdateShop(c.Request.Context(), shop); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to update shop")
		return
	}
	c.JSON(http.StatusOK, shop)
}

// ListBarbers returns the shop's active barbers.
func (h *ShopHandler) ListBarbers(c *gin.Context) {
	shopID := c.Param("id")
	if !canAccessShop(c, shopID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "not your shop")
		return
	}

	barbers, err := h.Shops.ActiveBarbers(c.Request.Context(), shopID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to list barbers")
		return
	}
	c.JSON(http.StatusOK, barbers)
}

// CreateBarber adds a barber to the shop.
func (h *ShopHandler) CreateBarber(c *gin.Context) {
	shopID := c.Param("id")
	if !canManageCatalog(c, shopID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "manager role required")
		return
	}

	var barber models.Barber
	if err := c.ShouldBindJSON(&barber); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	barber.ID = uuid.New().String()
	barber.ShopID = shopID
	barber.Active = true
	if err := validate.Struct(&barber); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid barber", err.Error())
		return
	}

	if err := h.Shops.CreateBarber(c.Request.Context(), &barber); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to create barber")
		return
	}
	c.JSON(http.StatusCreated, barber)
}

// UpdateBarber modifies a barber's schedule, ordering or active flag.
func (h *ShopHandler) UpdateBarber(c *gin.Context) {
	shopID := c.Param("id")
	if !canManageCatalog(c, shopID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "manager role required")
		return
	}

	existing, err := h.Shops.GetBarber(c.Request.Context(), shopID, c.Param("barberId"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to fetch barber")
		return
	}
	if existing == nil {
		utils.JSONError(c, http.StatusNotFound, "Not Found", "barber not found")
		return
	}

	var barber models.Barber
	if err := c.ShouldBindJSON(&barber); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	barber.ID = existing.ID
	barber.ShopID = shopID
	barber.CreatedAt = existing.CreatedAt
	if err := validate.Struct(&barber); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid barber", err.Error())
		return
	}

	if err := h.Shops.UpdateBarber(c.Request.Context(), &barber); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to update barber")
		return
	}
	c.JSON(http.StatusOK, barber)
}

// ListServices returns the catalog as the shop's customers see it.
func (h *ShopHandler) ListServices(c *gin.Context) {
	shopID := c.Param("id")
	if !canAccessShop(c, shopID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "not your shop")
		return
	}

	services, err := h.Shops.ActiveServices(c.Request.Context(), shopID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to list services")
		return
	}
	c.JSON(http.StatusOK, services)
}

// CreateService adds a shop-specific catalog entry. It shadows a global
// entry with the same key for this shop.
func (h *ShopHandler) CreateService(c *gin.Context) {
	shopID := c.Param("id")
	if !canManageCatalog(c, shopID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "manager role required")
		return
	}

	var service models.Service
	if err := c.ShouldBindJSON(&service); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	service.ShopID = shopID
	service.Active = true
	if err := validate.Struct(&service); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid service", err.Error())
		return
	}

	if err := h.Shops.CreateService(c.Request.Context(), &service); err != nil {
		utils.JSONError(c, http.StatusConflict, "Conflict", err.Error())
		return
	}
	c.JSON(http.StatusCreated, service)
}

// UpdateService modifies a shop-specific catalog entry.
func (h *ShopHandler) UpdateService(c *gin.Context) {
	shopID := c.Param("id")
	if !canManageCatalog(c, shopID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "manager role required")
		return
	}

	var service models.Service
	if err := c.ShouldBindJSON(&service); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	service.Key = c.Param("key")
	service.ShopID = shopID
	if err := validate.Struct(&service); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid service", err.Error())
		return
	}

	if err := h.Shops.UpdateService(c.Request.Context(), &service); err != nil {
		utils.JSONError(c, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	c.JSON(http.StatusOK, service)
}
